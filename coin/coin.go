package coin

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/obridge/weave/codec"
	"github.com/obridge/weave/errors"
)

// IsTicker is the RegExp to ensure valid asset identifiers. Native coin uses
// a short ticker, tokens may use their mint address.
var IsTicker = regexp.MustCompile(`^[a-zA-Z0-9]{2,64}$`).MatchString

// Coin is an amount of a single asset, expressed in its smallest unit.
type Coin struct {
	Ticker string `json:"ticker"`
	Amount uint64 `json:"amount"`
}

// NewCoin creates a new coin object
func NewCoin(amount uint64, ticker string) Coin {
	return Coin{Ticker: ticker, Amount: amount}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(amount uint64, ticker string) *Coin {
	c := NewCoin(amount, ticker)
	return &c
}

// Validate returns an error if the ticker is not valid. A zero amount is a
// valid coin.
func (c Coin) Validate() error {
	if !IsTicker(c.Ticker) {
		return errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", c.Ticker)
	}
	return nil
}

// IsZero returns true if this coin holds no value.
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

// IsPositive returns true if this coin holds some value.
func (c Coin) IsPositive() bool {
	return c.Amount > 0
}

// SameType returns true if both coins represent the same asset.
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Equals returns true if all fields are identical
func (c Coin) Equals(o Coin) bool {
	return c == o
}

// Add combines two coins.
// Returns error if they are of different
// currencies, or if the combination would cause
// an overflow
func (c Coin) Add(o Coin) (Coin, error) {
	// A zero value without a ticker does not influence the result.
	if c.Ticker == "" && c.IsZero() {
		return o, nil
	}
	if o.Ticker == "" && o.IsZero() {
		return c, nil
	}
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "adding %s to %s", o.Ticker, c.Ticker)
	}
	sum := c.Amount + o.Amount
	if sum < c.Amount {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%s + %s", c, o)
	}
	return Coin{Ticker: c.Ticker, Amount: sum}, nil
}

// Subtract given amount. It fails with ErrAmount if the value is not
// sufficient.
func (c Coin) Subtract(o Coin) (Coin, error) {
	if o.IsZero() {
		return c, nil
	}
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "subtracting %s from %s", o.Ticker, c.Ticker)
	}
	if c.Amount < o.Amount {
		return Coin{}, errors.Wrapf(errors.ErrAmount, "cannot subtract %s from %s", o, c)
	}
	return Coin{Ticker: c.Ticker, Amount: c.Amount - o.Amount}, nil
}

// Compare will check values of two coins, without
// inspecting the currency code.
//
// Returns 1 if c is larger, -1 if o is larger, 0 if equal
func (c Coin) Compare(o Coin) int {
	switch {
	case c.Amount > o.Amount:
		return 1
	case c.Amount < o.Amount:
		return -1
	default:
		return 0
	}
}

// IsGTE returns true if c is the same type and at least as large as o.
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Amount >= o.Amount
}

// String provides a human readable representation of the coin, for
// example "2500 SOL".
func (c Coin) String() string {
	if c.Ticker == "" {
		return strconv.FormatUint(c.Amount, 10)
	}
	return fmt.Sprintf("%d %s", c.Amount, c.Ticker)
}

// ParseCoin parses the "<amount> <ticker>" representation.
func ParseCoin(raw string) (Coin, error) {
	chunks := strings.Fields(raw)
	if len(chunks) != 2 {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid coin %q", raw)
	}
	amount, err := strconv.ParseUint(chunks[0], 10, 64)
	if err != nil {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid amount %q", chunks[0])
	}
	c := Coin{Ticker: chunks[1], Amount: amount}
	return c, c.Validate()
}

// UnmarshalJSON accepts both the object form and the "<amount> <ticker>"
// string form, which is convenient in genesis files.
func (c *Coin) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		parsed, err := ParseCoin(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	type plain Coin
	var p plain
	if err := json.Unmarshal(raw, &p); err != nil {
		return errors.Wrap(errors.ErrInput, "invalid coin json")
	}
	*c = Coin(p)
	return nil
}

func (c *Coin) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		String(1, c.Ticker).
		Uint64(2, c.Amount).
		Result()
}

func (c *Coin) Unmarshal(raw []byte) error {
	*c = Coin{}
	d := codec.NewDecoder(raw)
	for {
		field, _, err := d.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch field {
		case 1:
			c.Ticker, err = d.String()
		case 2:
			c.Amount, err = d.Uint64()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "coin")
		}
	}
}
