package coin

import (
	"sort"

	"github.com/obridge/weave/errors"
)

// Coins is a set of coins, at most one per ticker, kept sorted by ticker
// and never holding a zero value.
type Coins []*Coin

// Validate returns an error if the set is not normalized or any coin is
// invalid.
func (cs Coins) Validate() error {
	for i, c := range cs {
		if c == nil {
			return errors.Wrapf(errors.ErrEmpty, "coin %d", i)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if c.IsZero() {
			return errors.Wrapf(errors.ErrAmount, "zero value of %s", c.Ticker)
		}
		if i > 0 && cs[i-1].Ticker >= c.Ticker {
			return errors.Wrap(errors.ErrState, "coins not sorted or duplicated")
		}
	}
	return nil
}

// Balance returns the amount held for given ticker.
func (cs Coins) Balance(ticker string) Coin {
	for _, c := range cs {
		if c.Ticker == ticker {
			return *c
		}
	}
	return Coin{Ticker: ticker}
}

// Add returns a new set with given coin added.
func (cs Coins) Add(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs.clone(), nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	sum, err := cs.Balance(c.Ticker).Add(c)
	if err != nil {
		return nil, err
	}
	return cs.set(sum), nil
}

// Subtract returns a new set with given coin removed. It fails with
// ErrAmount if the balance is not sufficient.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs.clone(), nil
	}
	diff, err := cs.Balance(c.Ticker).Subtract(c)
	if err != nil {
		return nil, err
	}
	return cs.set(diff), nil
}

// IsEmpty returns true if no value is held.
func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

func (cs Coins) clone() Coins {
	res := make(Coins, 0, len(cs))
	for _, c := range cs {
		cpy := *c
		res = append(res, &cpy)
	}
	return res
}

// set returns a copy with the balance of c.Ticker replaced by c.
func (cs Coins) set(c Coin) Coins {
	res := make(Coins, 0, len(cs)+1)
	for _, x := range cs {
		if x.Ticker == c.Ticker {
			continue
		}
		cpy := *x
		res = append(res, &cpy)
	}
	if !c.IsZero() {
		res = append(res, &c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Ticker < res[j].Ticker })
	return res
}
