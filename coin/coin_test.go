package coin

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/weavetest/assert"
)

func TestCoinArithmetic(t *testing.T) {
	cases := map[string]struct {
		a, b   Coin
		add    Coin
		addErr *errors.Error
		sub    Coin
		subErr *errors.Error
	}{
		"same ticker": {
			a:   NewCoin(10, "SOL"),
			b:   NewCoin(3, "SOL"),
			add: NewCoin(13, "SOL"),
			sub: NewCoin(7, "SOL"),
		},
		"insufficient": {
			a:      NewCoin(3, "SOL"),
			b:      NewCoin(10, "SOL"),
			add:    NewCoin(13, "SOL"),
			subErr: errors.ErrAmount,
		},
		"different tickers": {
			a:      NewCoin(3, "SOL"),
			b:      NewCoin(1, "USDC"),
			addErr: errors.ErrCurrency,
			subErr: errors.ErrCurrency,
		},
		"overflow": {
			a:      NewCoin(math.MaxUint64, "SOL"),
			b:      NewCoin(1, "SOL"),
			addErr: errors.ErrOverflow,
			sub:    NewCoin(math.MaxUint64-1, "SOL"),
		},
		"zero without ticker": {
			a:      Coin{},
			b:      NewCoin(5, "SOL"),
			add:    NewCoin(5, "SOL"),
			subErr: errors.ErrCurrency,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := tc.a.Add(tc.b)
			assert.IsErr(t, tc.addErr, err)
			if tc.addErr == nil {
				assert.Equal(t, tc.add, got)
			}
			got, err = tc.a.Subtract(tc.b)
			assert.IsErr(t, tc.subErr, err)
			if tc.subErr == nil {
				assert.Equal(t, tc.sub, got)
			}
		})
	}
}

func TestCoinParseAndJSON(t *testing.T) {
	c, err := ParseCoin("2500 SOL")
	assert.Nil(t, err)
	assert.Equal(t, NewCoin(2500, "SOL"), c)
	assert.Equal(t, "2500 SOL", c.String())

	_, err = ParseCoin("many SOL")
	assert.IsErr(t, errors.ErrInput, err)
	_, err = ParseCoin("12 $")
	assert.IsErr(t, errors.ErrCurrency, err)

	var fromString, fromObject Coin
	assert.Nil(t, json.Unmarshal([]byte(`"7 USDC"`), &fromString))
	assert.Nil(t, json.Unmarshal([]byte(`{"ticker":"USDC","amount":7}`), &fromObject))
	assert.Equal(t, fromString, fromObject)
}

func TestCoinSerialization(t *testing.T) {
	c := NewCoin(1<<40, "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
	raw, err := c.Marshal()
	assert.Nil(t, err)
	var got Coin
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, c, got)
}

func TestCoins(t *testing.T) {
	var cs Coins
	cs, err := cs.Add(NewCoin(10, "USDC"))
	assert.Nil(t, err)
	cs, err = cs.Add(NewCoin(5, "SOL"))
	assert.Nil(t, err)
	cs, err = cs.Add(NewCoin(5, "SOL"))
	assert.Nil(t, err)
	assert.Nil(t, cs.Validate())
	assert.Equal(t, "SOL", cs[0].Ticker)
	assert.Equal(t, NewCoin(10, "SOL"), cs.Balance("SOL"))

	_, err = cs.Subtract(NewCoin(11, "SOL"))
	assert.IsErr(t, errors.ErrAmount, err)

	cs, err = cs.Subtract(NewCoin(10, "SOL"))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(cs))
	assert.Equal(t, NewCoin(0, "SOL"), cs.Balance("SOL"))

	bad := Coins{NewCoinp(1, "USDC"), NewCoinp(1, "SOL")}
	assert.IsErr(t, errors.ErrState, bad.Validate())
}
