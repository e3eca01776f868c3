package market

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidContract is returned when a contract identifier cannot be decoded.
var ErrInvalidContract = errors.New("invalid contract identifier")

// ContractMultiplier is the number of shares one contract settles into.
const ContractMultiplier = 100

const (
	contractPrefix = "O:"
	strikeScale    = 1000
	strikeDigits   = 8
)

// Right is the option right.
type Right string

const (
	Call Right = "C"
	Put  Right = "P"
)

// Contract is the decoded form of an identifier such as O:NVDA250221C00139000.
type Contract struct {
	Underlying string
	Expiration time.Time // midnight UTC of the expiration date
	Right      Right
	Strike     decimal.Decimal
	Multiplier int64
}

// ParseContract decodes O:{UNDERLYING}{YYMMDD}{C|P}{STRIKE*1000 as 8 digits}.
// The underlying is the run of upper-case letters before the first digit,
// the year is 2000+YY and the eight strike digits divided by 1000 give the
// strike.
func ParseContract(id string) (Contract, error) {
	if !strings.HasPrefix(id, contractPrefix) {
		return Contract{}, fmt.Errorf("%w: %q missing %q prefix", ErrInvalidContract, id, contractPrefix)
	}
	body := id[len(contractPrefix):]

	i := 0
	for i < len(body) && body[i] >= 'A' && body[i] <= 'Z' {
		i++
	}
	if i == 0 {
		return Contract{}, fmt.Errorf("%w: %q has no underlying", ErrInvalidContract, id)
	}
	underlying := body[:i]
	rest := body[i:]

	if len(rest) != 6+1+strikeDigits {
		return Contract{}, fmt.Errorf("%w: %q has %d characters after the underlying, want %d",
			ErrInvalidContract, id, len(rest), 6+1+strikeDigits)
	}
	if !allDigits(rest[:6]) {
		return Contract{}, fmt.Errorf("%w: %q bad expiration %q", ErrInvalidContract, id, rest[:6])
	}

	exp, err := time.Parse("060102", rest[:6])
	if err != nil {
		return Contract{}, fmt.Errorf("%w: %q bad expiration: %v", ErrInvalidContract, id, err)
	}
	// time.Parse maps YY 69..99 to 19YY; identifiers always mean 20YY.
	if exp.Year() < 2000 {
		exp = exp.AddDate(100, 0, 0)
	}

	right := Right(rest[6:7])
	if right != Call && right != Put {
		return Contract{}, fmt.Errorf("%w: %q bad right %q", ErrInvalidContract, id, right)
	}

	digits := rest[7:]
	if !allDigits(digits) {
		return Contract{}, fmt.Errorf("%w: %q bad strike %q", ErrInvalidContract, id, digits)
	}
	raw, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Contract{}, fmt.Errorf("%w: %q bad strike %q", ErrInvalidContract, id, digits)
	}

	return Contract{
		Underlying: underlying,
		Expiration: exp,
		Right:      right,
		Strike:     decimal.New(raw, 0).Div(decimal.New(strikeScale, 0)),
		Multiplier: ContractMultiplier,
	}, nil
}

// String formats the contract back into its identifier.
func (c Contract) String() string {
	raw := c.Strike.Mul(decimal.New(strikeScale, 0)).Round(0).IntPart()
	return fmt.Sprintf("%s%s%s%s%08d", contractPrefix, c.Underlying, c.Expiration.Format("060102"), c.Right, raw)
}

// ExpiresAt returns the expiration date at midnight in loc.
func (c Contract) ExpiresAt(loc *time.Location) time.Time {
	y, m, d := c.Expiration.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// IsContract reports whether id looks like an option contract identifier.
func IsContract(id string) bool {
	return strings.HasPrefix(id, contractPrefix)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
