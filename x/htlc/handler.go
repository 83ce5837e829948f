package htlc

import (
	"encoding/hex"

	"github.com/obridge/weave"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/gconf"
	"github.com/obridge/weave/orm"
	"github.com/obridge/weave/x"
	"github.com/obridge/weave/x/cash"
	"github.com/obridge/weave/x/lock"
	"github.com/obridge/weave/x/settings"
)

const (
	prepareCost int64 = 300
	confirmCost int64 = 100
	refundCost  int64 = 0
)

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, cashctrl cash.Controller) {
	bucket := NewBucket()
	r.Handle(PrepareMsg{}.Path(), PrepareHandler{
		auth:   auth,
		bucket: bucket,
		bank:   cashctrl,
		fees:   settings.NewFeeCalculator(),
	})
	r.Handle(ConfirmMsg{}.Path(), ConfirmHandler{auth: auth, bucket: bucket, bank: cashctrl})
	r.Handle(RefundMsg{}.Path(), RefundHandler{bucket: bucket, bank: cashctrl})
	r.Handle(UpdateConfigurationMsg{}.Path(), gconf.NewUpdateConfigurationHandler(
		packageName, &Configuration{}, auth, registryAdmin))
}

// registryAdmin allows the settings administrator to create the first
// configuration.
func registryAdmin(db weave.ReadOnlyKVStore) (weave.Address, error) {
	reg, err := settings.LoadRegistry(db)
	if err != nil {
		return nil, err
	}
	return reg.Admin, nil
}

// PrepareHandler creates an escrow and moves the deposit into it.
type PrepareHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
	fees   settings.FeeCalculator
}

var _ weave.Handler = PrepareHandler{}

// Check runs the whole preparation, so that a deposit the depositor cannot
// pay is rejected. The ledger discards all changes made while checking.
func (h PrepareHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.prepare(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: prepareCost}, nil
}

func (h PrepareHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, escrow, err := h.prepare(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("escrow prepared",
		"uuid", hex.EncodeToString(msg.ID),
		"direction", msg.Direction,
		"amount", msg.Amount.String(),
		"fee", escrow.Fee.String())
	return &weave.DeliverResult{Data: msg.ID}, nil
}

// prepare creates the escrow and moves the deposit together with the
// storage reservation into it.
func (h PrepareHandler) prepare(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*PrepareMsg, *Escrow, error) {
	msg, reg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, nil, err
	}

	fee, err := h.fees.Quote(db, reg, *msg.Amount)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fee")
	}
	escrow := &Escrow{
		Metadata:  &weave.Metadata{Schema: 1},
		From:      msg.From,
		To:        msg.To,
		Amount:    msg.Amount,
		Fee:       &fee,
		Lock:      msg.Lock,
		Direction: msg.Direction,
		Memo:      msg.Memo,
		Address:   EscrowAddress(msg.ID),
	}
	if r := reg.ReservationCoin(); r.IsPositive() {
		escrow.Reservation = &r
	}
	if err := h.bucket.Create(db, msg.ID, escrow); err != nil {
		return nil, nil, err
	}

	if err := h.bank.MoveCoins(db, msg.From, escrow.Address, *msg.Amount); err != nil {
		return nil, nil, errors.Wrap(err, "deposit")
	}
	if escrow.Reservation != nil {
		if err := h.bank.MoveCoins(db, msg.From, escrow.Address, *escrow.Reservation); err != nil {
			return nil, nil, errors.Wrap(err, "reservation")
		}
	}
	return msg, escrow, nil
}

func (h PrepareHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*PrepareMsg, *settings.Registry, error) {
	var msg PrepareMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.From) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "depositor signature required")
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := lock.CanPrepare(now, msg.Lock, msg.Direction); err != nil {
		return nil, nil, err
	}
	if err := msg.Lock.CheckRefundTime(); err != nil {
		return nil, nil, err
	}
	reg, err := settings.LoadRegistry(db)
	if err != nil {
		return nil, nil, err
	}
	return &msg, reg, nil
}

// ConfirmHandler releases an escrow to its recipient.
type ConfirmHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ weave.Handler = ConfirmHandler{}

func (h ConfirmHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: confirmCost}, nil
}

func (h ConfirmHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, escrow, reg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	payout, err := escrow.Payout()
	if err != nil {
		return nil, errors.Wrap(err, "payout")
	}
	if err := h.bank.MoveCoins(db, escrow.Address, escrow.To, payout); err != nil {
		return nil, errors.Wrap(err, "payout")
	}
	// Without a fee recipient the fee is given back to the depositor.
	feeDest := x.AnyAddress(reg.FeeRecipient, escrow.From)
	if err := h.bank.MoveCoins(db, escrow.Address, feeDest, *escrow.Fee); err != nil {
		return nil, errors.Wrap(err, "fee")
	}
	if err := closeEscrow(db, h.bucket, h.bank, msg.ID, escrow); err != nil {
		return nil, err
	}

	weave.GetLogger(ctx).Info("escrow confirmed",
		"uuid", hex.EncodeToString(msg.ID),
		"payout", payout.String(),
		"fee", escrow.Fee.String())
	return &weave.DeliverResult{Data: msg.ID}, nil
}

func (h ConfirmHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*ConfirmMsg, *Escrow, *settings.Registry, error) {
	var msg ConfirmMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	var escrow Escrow
	if err := h.bucket.One(db, msg.ID, &escrow); err != nil {
		return nil, nil, nil, errors.Wrap(err, "escrow")
	}
	if err := escrow.Lock.CheckPreimage(msg.Preimage); err != nil {
		return nil, nil, nil, err
	}
	if escrow.Direction != msg.Direction {
		return nil, nil, nil, errors.Wrapf(ErrInvalidDirection, "escrow is %s", escrow.Direction)
	}
	reg, err := settings.LoadRegistry(db)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(msg.Recipient) != 0 && !msg.Recipient.Equals(escrow.To) {
		return nil, nil, nil, errors.Wrap(settings.ErrAccountMismatch, "recipient")
	}
	if len(msg.FeeRecipient) != 0 && !msg.FeeRecipient.Equals(reg.FeeRecipient) {
		return nil, nil, nil, errors.Wrap(settings.ErrAccountMismatch, "fee recipient")
	}

	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	byDepositor := h.auth.HasAddress(ctx, escrow.From)
	if w := escrow.Lock.ConfirmWindow(escrow.Direction, byDepositor); !w.Contains(now) {
		return nil, nil, nil, errors.Wrapf(lock.ErrDeadlineExceeded, "confirm window %d to %d", w.From, w.Until)
	}

	policy, err := loadConfirmPolicy(db)
	if err != nil {
		return nil, nil, nil, err
	}
	if policy == ConfirmByParties && !byDepositor && !h.auth.HasAddress(ctx, escrow.To) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "only escrow parties can confirm")
	}
	return &msg, &escrow, reg, nil
}

// RefundHandler returns an expired escrow to the depositor.
type RefundHandler struct {
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ weave.Handler = RefundHandler{}

func (h RefundHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: refundCost}, nil
}

func (h RefundHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, escrow, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bank.MoveCoins(db, escrow.Address, escrow.From, *escrow.Amount); err != nil {
		return nil, errors.Wrap(err, "refund")
	}
	if err := closeEscrow(db, h.bucket, h.bank, msg.ID, escrow); err != nil {
		return nil, err
	}

	weave.GetLogger(ctx).Info("escrow refunded",
		"uuid", hex.EncodeToString(msg.ID),
		"amount", escrow.Amount.String())
	return &weave.DeliverResult{Data: msg.ID}, nil
}

func (h RefundHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*RefundMsg, *Escrow, error) {
	var msg RefundMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	var escrow Escrow
	if err := h.bucket.One(db, msg.ID, &escrow); err != nil {
		return nil, nil, errors.Wrap(err, "escrow")
	}
	if escrow.Direction != msg.Direction {
		return nil, nil, errors.Wrapf(ErrInvalidDirection, "escrow is %s", escrow.Direction)
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := lock.CanRefund(now, escrow.Lock); err != nil {
		return nil, nil, err
	}
	return &msg, &escrow, nil
}

// closeEscrow returns the reservation to the depositor and deletes the
// escrow. Deleting an escrow makes any following confirm or refund fail.
func closeEscrow(db weave.KVStore, bucket orm.ModelBucket, bank cash.Controller, id []byte, e *Escrow) error {
	if e.Reservation != nil {
		if err := bank.MoveCoins(db, e.Address, e.From, *e.Reservation); err != nil {
			return errors.Wrap(err, "reservation")
		}
	}
	if err := bucket.Delete(db, id); err != nil {
		return errors.Wrap(err, "delete escrow")
	}
	return nil
}

func blockNow(ctx weave.Context) (weave.UnixTime, error) {
	now, ok := weave.BlockUnixTime(ctx)
	if !ok {
		return 0, errors.Wrap(errors.ErrHuman, "block time not present in context")
	}
	return now, nil
}
