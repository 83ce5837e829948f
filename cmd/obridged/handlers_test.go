package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/obridge/weave"
	"github.com/obridge/weave/app"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/monitor"
	"github.com/obridge/weave/store"
	"github.com/obridge/weave/weavetest"
	"github.com/obridge/weave/x/cash"
	"github.com/obridge/weave/x/htlc"
	"github.com/obridge/weave/x/lock"
	"github.com/obridge/weave/x/settings"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

type testServer struct {
	handler http.Handler
	alice   weave.Condition
	bob     weave.Condition
}

func newTestServer(t *testing.T, devSubmit bool) *testServer {
	t.Helper()

	ts := &testServer{
		alice: weavetest.NewCondition(),
		bob:   weavetest.NewCondition(),
	}
	state := map[string]interface{}{
		"cash": []cash.GenesisAccount{
			{Address: ts.alice.Address(), Coins: []coin.Coin{coin.NewCoin(5000, "SOL")}},
		},
		"settings": map[string]interface{}{
			"admin":       weavetest.NewCondition().Address(),
			"fee_rate_bp": 100,
			"max_fees":    []map[string]interface{}{{"ticker": "SOL", "max_fee": 5}},
		},
	}
	raw, err := json.Marshal(map[string]interface{}{"chain_id": "test-chain", "app_state": state})
	require.NoError(t, err)
	gen, err := app.ParseGenesis(raw)
	require.NoError(t, err)

	metrics := prometheus.NewRegistry()
	bank := cash.NewController(cash.NewBucket())
	handler, initializer := stack(bank, metrics, monitor.NewJournal(0))
	l := app.NewLedger(store.MemStore(), handler, app.WithClock(func() time.Time { return time.Unix(1000, 0) }))
	require.NoError(t, l.InitGenesis(gen, initializer))

	conf := &configuration{DevSubmit: devSubmit, CORSOrigins: []string{"*"}}
	ts.handler = routes(conf, l, bank, metrics, log.NewNopLogger())
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	r := httptest.NewRequest(method, path, &payload)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, r)
	return w
}

func TestEscrowLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t, true)

	preimage := bytes.Repeat([]byte{7}, lock.PreimageSize)
	id := bytes.Repeat([]byte{1}, 16)
	prepare := map[string]interface{}{
		"signers": []weave.Condition{ts.alice},
		"msg": &htlc.PrepareMsg{
			Metadata: &weave.Metadata{Schema: 1},
			ID:       id,
			From:     ts.alice.Address(),
			To:       ts.bob.Address(),
			Amount:   coin.NewCoinp(1000, "SOL"),
			Lock: &lock.HashTimeLock{
				Hash:                   lock.Keccak256(preimage),
				AgreementReachedTime:   1000,
				ExpectedSingleStepTime: 100,
				TolerantSingleStepTime: 10,
				EarliestRefundTime:     1331,
			},
			Direction: lock.Out,
		},
	}

	w := ts.do(t, "POST", "/operations/htlc/prepare?check=true", prepare)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, "POST", "/operations/htlc/prepare", prepare)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), hex.EncodeToString(id))

	// The same ID cannot be used twice.
	w = ts.do(t, "POST", "/operations/htlc/prepare", prepare)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "GET", "/escrows/"+hex.EncodeToString(id), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var single struct {
		Key   string      `json:"key"`
		Value htlc.Escrow `json:"value"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &single))
	// One percent fee capped at 5.
	assert.Equal(t, coin.NewCoinp(5, "SOL"), single.Value.Fee)
	assert.Equal(t, lock.Out, single.Value.Direction)

	w = ts.do(t, "GET", "/escrows?recipient="+ts.bob.Address().String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list struct {
		Objects []json.RawMessage `json:"objects"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Objects, 1)

	confirm := map[string]interface{}{
		"signers": []weave.Condition{ts.alice},
		"msg": &htlc.ConfirmMsg{
			Metadata:  &weave.Metadata{Schema: 1},
			ID:        id,
			Preimage:  preimage,
			Direction: lock.Out,
		},
	}
	w = ts.do(t, "POST", "/operations/htlc/confirm", confirm)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, "GET", "/escrows/"+hex.EncodeToString(id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, "GET", "/balances/"+ts.bob.Address().String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var balance struct {
		Coins coin.Coins `json:"coins"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &balance))
	assert.Equal(t, uint64(995), balance.Coins.Balance("SOL").Amount)

	w = ts.do(t, "GET", "/metrics", nil)
	assert.Contains(t, w.Body.String(), `obridge_operations_total{code="0",path="htlc/confirm",phase="deliver"} 1`)
}

func TestQueries(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(t, "GET", "/info", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test-chain")

	w = ts.do(t, "GET", "/gconf/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reg settings.Registry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	assert.Equal(t, uint32(100), reg.FeeRateBp)

	w = ts.do(t, "GET", "/gconf/htlc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(t, "GET", "/gconf/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, "GET", "/feecaps/SOL", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"max_fee": 5`)

	w = ts.do(t, "GET", "/escrows", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, "GET", "/swaps/zz", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, "GET", "/swaps?from="+ts.alice.Address().String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, "GET", "/balances/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Submission is disabled unless explicitly enabled.
	w = ts.do(t, "POST", "/operations/cash/send", map[string]interface{}{})
	assert.True(t, w.Code == http.StatusNotFound || w.Code == http.StatusMethodNotAllowed)
	assert.False(t, strings.Contains(w.Body.String(), "data"))
}
