package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the ledger journal",
	Long: `Query and display ledger entries mirrored to the SQLite journal.

Subcommands:
  entry  - Get one entry by id
  order  - Show the history of one order
  today  - List entries recorded today
  day    - List entries recorded on a specific day

Examples:
  papertrader journal entry 01JKX8B6Q4...
  papertrader journal order 7
  papertrader journal day 2025-02-12`,
}

var journalEntryCmd = &cobra.Command{
	Use:   "entry <entry-id>",
	Short: "Get details of a specific ledger entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalEntry,
}

var journalOrderCmd = &cobra.Command{
	Use:   "order <order-id>",
	Short: "Show every entry for one order",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalOrder,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List entries recorded today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List entries recorded on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalEntryCmd)
	journalCmd.AddCommand(journalOrderCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (default from config)")
}

// openJournalDB opens the SQLite journal named by --db or the config.
func openJournalDB() (*journal.SQLite, *time.Location, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Session.Location()
	if err != nil {
		return nil, nil, err
	}

	path := journalDBPath
	if path == "" {
		path = cfg.Journal.DBPath
	}
	if path == "" {
		return nil, nil, fmt.Errorf("no journal database: pass --db or set journal.db_path")
	}

	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	return j, loc, nil
}

func runJournalEntry(cmd *cobra.Command, args []string) error {
	j, _, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	e, err := j.GetEntry(args[0])
	if err != nil {
		return fmt.Errorf("get entry: %w", err)
	}

	fmt.Println(journal.FormatEntryOrg(e))
	return nil
}

func runJournalOrder(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("order id %q: %w", args[0], err)
	}

	j, _, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.ListEntriesByOrder(id)
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}

	fmt.Println(journal.FormatEntriesOrg(entries))
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	j, loc, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	return printDay(j, loc, time.Now().In(loc).Format("2006-01-02"))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	j, loc, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	return printDay(j, loc, args[0])
}

func printDay(j *journal.SQLite, loc *time.Location, day string) error {
	start, end, err := dayBounds(loc, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	entries, err := j.ListEntriesBetween(start, end)
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}

	fmt.Println(journal.FormatEntriesOrg(entries))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
