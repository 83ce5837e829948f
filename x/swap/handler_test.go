package swap

import (
	"context"
	"testing"

	"github.com/obridge/weave"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/store"
	"github.com/obridge/weave/weavetest"
	"github.com/obridge/weave/weavetest/assert"
	"github.com/obridge/weave/x/cash"
	"github.com/obridge/weave/x/lock"
	"github.com/obridge/weave/x/settings"
)

type testEnv struct {
	db      weave.KVStore
	auth    *weavetest.CtxAuth
	bank    cash.Controller
	prepare PrepareHandler
	confirm ConfirmHandler
	refund  RefundHandler

	alice, bob, feeCollector weave.Condition
}

// newTestEnv returns an environment where alice holds SOL, bob holds USDC,
// the fee rate is 10% and the USDC fee is capped at 50.
func newTestEnv(t testing.TB, withFeeRecipient bool) *testEnv {
	t.Helper()

	env := &testEnv{
		db:           store.MemStore(),
		auth:         &weavetest.CtxAuth{Key: "auth"},
		bank:         cash.NewController(cash.NewBucket()),
		alice:        weavetest.NewCondition(),
		bob:          weavetest.NewCondition(),
		feeCollector: weavetest.NewCondition(),
	}
	bucket := NewBucket()
	env.prepare = PrepareHandler{auth: env.auth, bucket: bucket, bank: env.bank, fees: settings.NewFeeCalculator()}
	env.confirm = ConfirmHandler{auth: env.auth, bucket: bucket, bank: env.bank}
	env.refund = RefundHandler{bucket: bucket, bank: env.bank}

	reg := &settings.Registry{
		Metadata:  &weave.Metadata{Schema: 1},
		Admin:     weavetest.NewCondition().Address(),
		FeeRateBp: 1000,
	}
	if withFeeRecipient {
		reg.FeeRecipient = env.feeCollector.Address()
	}
	assert.Nil(t, settings.SaveRegistry(env.db, reg))
	err := settings.NewAssetFeeCapBucket().Put(env.db, []byte("USDC"), &settings.AssetFeeCap{
		Metadata: &weave.Metadata{Schema: 1},
		Ticker:   "USDC",
		MaxFee:   50,
	})
	assert.Nil(t, err)

	assert.Nil(t, env.bank.IssueCoins(env.db, env.alice.Address(), coin.NewCoin(10000, "SOL")))
	assert.Nil(t, env.bank.IssueCoins(env.db, env.bob.Address(), coin.NewCoin(10000, "USDC")))
	return env
}

func (env *testEnv) ctx(now weave.UnixTime, signers ...weave.Condition) weave.Context {
	ctx := weave.WithBlockTime(context.Background(), now.Time())
	return env.auth.SetConditions(ctx, signers...)
}

func (env *testEnv) balance(t testing.TB, addr weave.Address, ticker string) uint64 {
	t.Helper()
	coins, err := env.bank.Balance(env.db, addr)
	assert.Nil(t, err)
	return coins.Balance(ticker).Amount
}

func (env *testEnv) prepareMsg(id []byte, to weave.Address) *PrepareMsg {
	return &PrepareMsg{
		Metadata: &weave.Metadata{Schema: 1},
		ID:       id,
		From:     env.alice.Address(),
		To:       to,
		Src:      coin.NewCoinp(1000, "SOL"),
		Dst:      coin.NewCoinp(1000, "USDC"),
		Lock:     &lock.DeadlineLock{AgreementReachedTime: 1000, StepTime: 50},
	}
}

func swapID(n uint64) []byte {
	return append(weavetest.SequenceID(n), weavetest.SequenceID(n)...)
}

// check runs fn against a cache of the test store that is always
// discarded, the way the ledger checks operations.
func (env *testEnv) check(fn func(db weave.KVStore) error) error {
	cache := env.db.(weave.CacheableKVStore).CacheWrap()
	defer cache.Discard()
	return fn(cache)
}

func TestPrepare(t *testing.T) {
	cases := map[string]struct {
		now     weave.UnixTime
		mutate  func(msg *PrepareMsg)
		signer  func(env *testEnv) weave.Condition
		wantErr *errors.Error
	}{
		"success": {
			now: 1050,
		},
		"after the deadline": {
			now:     1051,
			wantErr: lock.ErrDeadlineExceeded,
		},
		"zero source": {
			now:     1000,
			mutate:  func(msg *PrepareMsg) { msg.Src = coin.NewCoinp(0, "SOL") },
			wantErr: errors.ErrAmount,
		},
		"zero destination": {
			now:     1000,
			mutate:  func(msg *PrepareMsg) { msg.Dst = nil },
			wantErr: errors.ErrAmount,
		},
		"not signed by the initiator": {
			now:     1000,
			signer:  func(env *testEnv) weave.Condition { return env.bob },
			wantErr: errors.ErrUnauthorized,
		},
		"missing lock": {
			now:     1000,
			mutate:  func(msg *PrepareMsg) { msg.Lock = nil },
			wantErr: errors.ErrEmpty,
		},
		"initiator cannot pay": {
			now:     1000,
			mutate:  func(msg *PrepareMsg) { msg.Src = coin.NewCoinp(10001, "SOL") },
			wantErr: errors.ErrAmount,
		},
		"long ID": {
			now:    1000,
			mutate: func(msg *PrepareMsg) { msg.ID = append(msg.ID, msg.ID...) },
		},
		"20 byte ID": {
			now:     1000,
			mutate:  func(msg *PrepareMsg) { msg.ID = append(msg.ID, 1, 2, 3, 4) },
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			env := newTestEnv(t, true)
			msg := env.prepareMsg(swapID(1), env.bob.Address())
			if tc.mutate != nil {
				tc.mutate(msg)
			}
			signer := env.alice
			if tc.signer != nil {
				signer = tc.signer(env)
			}
			ctx := env.ctx(tc.now, signer)
			tx := &weavetest.Tx{Msg: msg}

			err := env.check(func(db weave.KVStore) error {
				_, err := env.prepare.Check(ctx, db, tx)
				return err
			})
			assert.IsErr(t, tc.wantErr, err)
			_, err = env.prepare.Deliver(ctx, env.db, tx)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}

			var swap Swap
			assert.Nil(t, env.prepare.bucket.One(env.db, msg.ID, &swap))
			assert.Equal(t, coin.NewCoinp(100, "SOL"), swap.SrcFee)
			// Percentage fee is 100, capped at 50.
			assert.Equal(t, coin.NewCoinp(50, "USDC"), swap.DstFee)
			assert.Equal(t, uint64(1000), env.balance(t, SwapAddress(msg.ID), "SOL"))
			assert.Equal(t, uint64(9000), env.balance(t, env.alice.Address(), "SOL"))
		})
	}
}

func TestConfirm(t *testing.T) {
	stranger := weavetest.NewCondition()

	cases := map[string]struct {
		bindTo  bool
		now     weave.UnixTime
		signer  func(env *testEnv) weave.Condition
		mutate  func(env *testEnv, msg *ConfirmMsg)
		wantErr *errors.Error
	}{
		"counterparty on the deadline": {
			bindTo: true,
			now:    1100,
			signer: func(env *testEnv) weave.Condition { return env.bob },
		},
		"counterparty bound on confirmation": {
			now:    1000,
			signer: func(env *testEnv) weave.Condition { return env.bob },
		},
		"too late": {
			bindTo:  true,
			now:     1101,
			signer:  func(env *testEnv) weave.Condition { return env.bob },
			wantErr: lock.ErrDeadlineExceeded,
		},
		"not the counterparty": {
			bindTo:  true,
			now:     1000,
			signer:  func(*testEnv) weave.Condition { return stranger },
			wantErr: errors.ErrUnauthorized,
		},
		"initiator cannot bind itself": {
			now:     1000,
			signer:  func(env *testEnv) weave.Condition { return env.alice },
			wantErr: errors.ErrUnauthorized,
		},
		"recipient mismatch": {
			bindTo:  true,
			now:     1000,
			signer:  func(env *testEnv) weave.Condition { return env.bob },
			mutate:  func(env *testEnv, msg *ConfirmMsg) { msg.Recipient = env.alice.Address() },
			wantErr: settings.ErrAccountMismatch,
		},
		"counterparty cannot pay": {
			now:     1000,
			signer:  func(*testEnv) weave.Condition { return stranger },
			wantErr: errors.ErrAmount,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			env := newTestEnv(t, true)
			id := swapID(1)
			var to weave.Address
			if tc.bindTo {
				to = env.bob.Address()
			}
			_, err := env.prepare.Deliver(env.ctx(1000, env.alice), env.db, &weavetest.Tx{Msg: env.prepareMsg(id, to)})
			assert.Nil(t, err)

			msg := &ConfirmMsg{Metadata: &weave.Metadata{Schema: 1}, ID: id}
			if tc.mutate != nil {
				tc.mutate(env, msg)
			}
			ctx := env.ctx(tc.now, tc.signer(env))
			tx := &weavetest.Tx{Msg: msg}
			err = env.check(func(db weave.KVStore) error {
				_, err := env.confirm.Check(ctx, db, tx)
				return err
			})
			assert.IsErr(t, tc.wantErr, err)

			// Run on a cache so that a failed operation leaves no trace,
			// as the ledger does.
			cache := env.db.(weave.CacheableKVStore).CacheWrap()
			_, err = env.confirm.Deliver(ctx, cache, tx)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				cache.Discard()
				assert.Nil(t, env.confirm.bucket.Has(env.db, id))
				return
			}
			assert.Nil(t, cache.Write())

			assert.IsErr(t, errors.ErrNotFound, env.confirm.bucket.Has(env.db, id))
			assert.Equal(t, uint64(950), env.balance(t, env.alice.Address(), "USDC"))
			assert.Equal(t, uint64(9000), env.balance(t, env.alice.Address(), "SOL"))
			assert.Equal(t, uint64(900), env.balance(t, env.bob.Address(), "SOL"))
			assert.Equal(t, uint64(9000), env.balance(t, env.bob.Address(), "USDC"))
			assert.Equal(t, uint64(100), env.balance(t, env.feeCollector.Address(), "SOL"))
			assert.Equal(t, uint64(50), env.balance(t, env.feeCollector.Address(), "USDC"))
			assert.Equal(t, uint64(0), env.balance(t, SwapAddress(id), "SOL"))
		})
	}
}

func TestConfirmWithoutFeeRecipient(t *testing.T) {
	env := newTestEnv(t, false)
	id := swapID(1)
	_, err := env.prepare.Deliver(env.ctx(1000, env.alice), env.db, &weavetest.Tx{Msg: env.prepareMsg(id, nil)})
	assert.Nil(t, err)

	msg := &ConfirmMsg{Metadata: &weave.Metadata{Schema: 1}, ID: id}
	_, err = env.confirm.Deliver(env.ctx(1000, env.bob), env.db, &weavetest.Tx{Msg: msg})
	assert.Nil(t, err)

	// Fees stay with the party that would have paid them.
	assert.Equal(t, uint64(950), env.balance(t, env.alice.Address(), "USDC"))
	assert.Equal(t, uint64(9100), env.balance(t, env.alice.Address(), "SOL"))
	assert.Equal(t, uint64(900), env.balance(t, env.bob.Address(), "SOL"))
	assert.Equal(t, uint64(9050), env.balance(t, env.bob.Address(), "USDC"))
}

func TestRefund(t *testing.T) {
	env := newTestEnv(t, true)
	id := swapID(1)
	_, err := env.prepare.Deliver(env.ctx(1000, env.alice), env.db, &weavetest.Tx{Msg: env.prepareMsg(id, env.bob.Address())})
	assert.Nil(t, err)

	refund := &weavetest.Tx{Msg: &RefundMsg{Metadata: &weave.Metadata{Schema: 1}, ID: id}}

	// Refund is allowed only strictly after the confirm deadline.
	_, err = env.refund.Deliver(env.ctx(1100), env.db, refund)
	assert.IsErr(t, lock.ErrNotRefundable, err)
	_, err = env.refund.Deliver(env.ctx(1101), env.db, refund)
	assert.Nil(t, err)
	assert.Equal(t, uint64(10000), env.balance(t, env.alice.Address(), "SOL"))
	assert.Equal(t, uint64(0), env.balance(t, env.feeCollector.Address(), "SOL"))

	// The swap is closed for good.
	_, err = env.refund.Deliver(env.ctx(1101), env.db, refund)
	assert.IsErr(t, errors.ErrNotFound, err)
	confirm := &weavetest.Tx{Msg: &ConfirmMsg{Metadata: &weave.Metadata{Schema: 1}, ID: id}}
	_, err = env.confirm.Deliver(env.ctx(1050, env.bob), env.db, confirm)
	assert.IsErr(t, errors.ErrNotFound, err)
}
