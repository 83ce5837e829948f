package main

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/obridge/weave"
	"github.com/obridge/weave/app"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/gconf"
	"github.com/obridge/weave/orm"
	"github.com/obridge/weave/x/cash"
	"github.com/obridge/weave/x/htlc"
	"github.com/obridge/weave/x/settings"
	"github.com/obridge/weave/x/swap"
	"github.com/tendermint/tendermint/libs/log"
)

type InfoHandler struct {
	Ledger *app.Ledger
}

func (h *InfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	JSONResp(w, http.StatusOK, struct {
		ChainID string `json:"chain_id"`
		Height  int64  `json:"height"`
	}{
		ChainID: h.Ledger.ChainID(),
		Height:  h.Ledger.Height(),
	})
}

// EscrowsHandler serves hash time locked escrows, either a single one by
// its hex encoded ID or all escrows of a depositor or a recipient.
type EscrowsHandler struct {
	Ledger *app.Ledger
	Logger log.Logger
	bucket orm.ModelBucket
}

func NewEscrowsHandler(l *app.Ledger, logger log.Logger) *EscrowsHandler {
	return &EscrowsHandler{Ledger: l, Logger: logger, bucket: htlc.NewBucket()}
}

func (h *EscrowsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if id := chi.URLParam(r, "id"); id != "" {
		key, err := hex.DecodeString(id)
		if err != nil {
			JSONErr(w, http.StatusBadRequest, "id must be hex encoded")
			return
		}
		var escrow htlc.Escrow
		err = h.Ledger.View(func(db weave.ReadOnlyKVStore) error {
			return h.bucket.One(db, key, &escrow)
		})
		if err != nil {
			writeErr(w, h.Logger, err)
			return
		}
		JSONResp(w, http.StatusOK, KeyValue{Key: key, Value: &escrow})
		return
	}

	index, value, err := indexFilter(r, "from", "recipient")
	if err != nil {
		JSONErr(w, http.StatusBadRequest, err.Error())
		return
	}
	var escrows []*htlc.Escrow
	var keys [][]byte
	err = h.Ledger.View(func(db weave.ReadOnlyKVStore) error {
		keys, err = h.bucket.ByIndex(db, index, value, &escrows)
		return err
	})
	if err != nil {
		writeErr(w, h.Logger, err)
		return
	}
	objects := make([]KeyValue, len(keys))
	for i := range keys {
		objects[i] = KeyValue{Key: keys[i], Value: escrows[i]}
	}
	JSONResp(w, http.StatusOK, struct {
		Objects []KeyValue `json:"objects"`
	}{
		Objects: objects,
	})
}

// SwapsHandler serves swaps, either a single one by its hex encoded ID or
// all swaps of an initiator.
type SwapsHandler struct {
	Ledger *app.Ledger
	Logger log.Logger
	bucket orm.ModelBucket
}

func NewSwapsHandler(l *app.Ledger, logger log.Logger) *SwapsHandler {
	return &SwapsHandler{Ledger: l, Logger: logger, bucket: swap.NewBucket()}
}

func (h *SwapsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if id := chi.URLParam(r, "id"); id != "" {
		key, err := hex.DecodeString(id)
		if err != nil {
			JSONErr(w, http.StatusBadRequest, "id must be hex encoded")
			return
		}
		var s swap.Swap
		err = h.Ledger.View(func(db weave.ReadOnlyKVStore) error {
			return h.bucket.One(db, key, &s)
		})
		if err != nil {
			writeErr(w, h.Logger, err)
			return
		}
		JSONResp(w, http.StatusOK, KeyValue{Key: key, Value: &s})
		return
	}

	index, value, err := indexFilter(r, "from")
	if err != nil {
		JSONErr(w, http.StatusBadRequest, err.Error())
		return
	}
	var swaps []*swap.Swap
	var keys [][]byte
	err = h.Ledger.View(func(db weave.ReadOnlyKVStore) error {
		keys, err = h.bucket.ByIndex(db, index, value, &swaps)
		return err
	})
	if err != nil {
		writeErr(w, h.Logger, err)
		return
	}
	objects := make([]KeyValue, len(keys))
	for i := range keys {
		objects[i] = KeyValue{Key: keys[i], Value: swaps[i]}
	}
	JSONResp(w, http.StatusOK, struct {
		Objects []KeyValue `json:"objects"`
	}{
		Objects: objects,
	})
}

// indexFilter returns the first of the named query parameters that is
// present, decoded as an address.
func indexFilter(r *http.Request, names ...string) (string, []byte, error) {
	q := r.URL.Query()
	for _, name := range names {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		addr, err := weave.ParseAddress(raw)
		if err != nil {
			return "", nil, errors.Wrapf(err, "%s filter", name)
		}
		return name, addr, nil
	}
	return "", nil, errors.Wrapf(errors.ErrEmpty, "one of %s filters is required", strings.Join(names, ", "))
}

// GconfHandler serves the configuration of an extension.
type GconfHandler struct {
	Ledger *app.Ledger
	Logger log.Logger
	Confs  map[string]func() gconf.Configuration
}

func (h *GconfHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pkg := chi.URLParam(r, "pkg")
	fn, ok := h.Confs[pkg]
	if !ok {
		JSONErr(w, http.StatusNotFound, "unknown configuration")
		return
	}
	conf := fn()
	err := h.Ledger.View(func(db weave.ReadOnlyKVStore) error {
		return gconf.Load(db, pkg, conf)
	})
	if err != nil {
		writeErr(w, h.Logger, err)
		return
	}
	JSONResp(w, http.StatusOK, conf)
}

// FeeCapHandler serves the fee cap declared for an asset.
type FeeCapHandler struct {
	Ledger *app.Ledger
	Logger log.Logger
}

func (h *FeeCapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	var fc settings.AssetFeeCap
	err := h.Ledger.View(func(db weave.ReadOnlyKVStore) error {
		return settings.NewAssetFeeCapBucket().One(db, []byte(ticker), &fc)
	})
	if err != nil {
		writeErr(w, h.Logger, err)
		return
	}
	JSONResp(w, http.StatusOK, &fc)
}

// BalanceHandler serves all coins held by an address.
type BalanceHandler struct {
	Ledger *app.Ledger
	Logger log.Logger
	Bank   cash.Controller
}

func (h *BalanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	addr, err := weave.ParseAddress(chi.URLParam(r, "address"))
	if err != nil || len(addr) == 0 {
		JSONErr(w, http.StatusBadRequest, "invalid address")
		return
	}
	var coins coin.Coins
	err = h.Ledger.View(func(db weave.ReadOnlyKVStore) error {
		coins, err = h.Bank.Balance(db, addr)
		return err
	})
	if err != nil {
		writeErr(w, h.Logger, err)
		return
	}
	if coins == nil {
		coins = coin.Coins{}
	}
	JSONResp(w, http.StatusOK, struct {
		Address weave.Address `json:"address"`
		Coins   coin.Coins    `json:"coins"`
	}{
		Address: addr,
		Coins:   coins,
	})
}

// SubmitHandler executes an operation. Signers are taken from the request
// as is, so it must be enabled only for development.
type SubmitHandler struct {
	Ledger *app.Ledger
	Logger log.Logger
	Msgs   map[string]func() weave.Msg
}

func (h *SubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "ext") + "/" + chi.URLParam(r, "name")
	fn, ok := h.Msgs[path]
	if !ok {
		JSONErr(w, http.StatusNotFound, "unknown operation")
		return
	}
	msg := fn()
	req := struct {
		Signers []weave.Condition `json:"signers"`
		Msg     weave.Msg         `json:"msg"`
	}{
		Msg: msg,
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		JSONErr(w, http.StatusBadRequest, "cannot decode request: "+err.Error())
		return
	}

	op := &app.Operation{Msg: msg, Signers: req.Signers}
	if r.URL.Query().Get("check") == "true" {
		res, err := h.Ledger.Check(r.Context(), op)
		if err != nil {
			writeErr(w, h.Logger, err)
			return
		}
		JSONResp(w, http.StatusOK, struct {
			Log          string `json:"log"`
			GasAllocated int64  `json:"gas_allocated"`
		}{
			Log:          res.Log,
			GasAllocated: res.GasAllocated,
		})
		return
	}

	res, err := h.Ledger.Deliver(r.Context(), op)
	if err != nil {
		writeErr(w, h.Logger, err)
		return
	}
	JSONResp(w, http.StatusOK, struct {
		Data hexbytes `json:"data"`
		Log  string   `json:"log"`
	}{
		Data: res.Data,
		Log:  res.Log,
	})
}

type KeyValue struct {
	Key   hexbytes  `json:"key"`
	Value orm.Model `json:"value"`
}

// hexbytes is a byte type that JSON serialize to hex encoded string.
type hexbytes []byte

func (b hexbytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(b))
}

// writeErr writes the error with a status matching its kind. Internal
// errors are logged and never exposed.
func writeErr(w http.ResponseWriter, logger log.Logger, err error) {
	code, desc := errors.Info(err, false)
	var status int
	switch {
	case errors.ErrNotFound.Is(err):
		status = http.StatusNotFound
	case errors.ErrUnauthorized.Is(err):
		status = http.StatusForbidden
	case errors.IsInternal(err):
		logger.Error("request failed", "err", err)
		status = http.StatusInternalServerError
		desc = http.StatusText(status)
	default:
		status = http.StatusBadRequest
	}
	JSONResp(w, status, struct {
		Errors []string `json:"errors"`
		Code   uint32   `json:"code"`
	}{
		Errors: []string{desc},
		Code:   code,
	})
}

// JSONResp write content as JSON encoded response.
func JSONResp(w http.ResponseWriter, code int, content interface{}) {
	b, err := json.MarshalIndent(content, "", "\t")
	if err != nil {
		code = http.StatusInternalServerError
		b = []byte(`{"errors":["Internal Server Error"]}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

// JSONErr write single error as JSON encoded response.
func JSONErr(w http.ResponseWriter, code int, errText string) {
	resp := struct {
		Errors []string `json:"errors"`
	}{
		Errors: []string{errText},
	}
	JSONResp(w, code, resp)
}
