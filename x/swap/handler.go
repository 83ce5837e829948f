package swap

import (
	"encoding/hex"

	"github.com/obridge/weave"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/orm"
	"github.com/obridge/weave/x"
	"github.com/obridge/weave/x/cash"
	"github.com/obridge/weave/x/lock"
	"github.com/obridge/weave/x/settings"
)

const (
	prepareCost int64 = 300
	confirmCost int64 = 200
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
}

// PrepareHandler creates a swap and deposits the source amount.
type PrepareHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
	fees   settings.FeeCalculator
}

var _ weave.Handler = PrepareHandler{}

// Check runs the whole preparation against db, which the ledger discards,
// so that a deposit the initiator cannot pay is rejected.
func (h PrepareHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.prepare(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: prepareCost}, nil
}

func (h PrepareHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.prepare(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("swap prepared",
		"uuid", hex.EncodeToString(msg.ID),
		"src", msg.Src.String(),
		"dst", msg.Dst.String())
	return &weave.DeliverResult{Data: msg.ID}, nil
}

func (h PrepareHandler) prepare(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*PrepareMsg, error) {
	msg, reg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	srcFee, err := h.fees.Quote(db, reg, *msg.Src)
	if err != nil {
		return nil, errors.Wrap(err, "source fee")
	}
	dstFee, err := h.fees.Quote(db, reg, *msg.Dst)
	if err != nil {
		return nil, errors.Wrap(err, "destination fee")
	}
	swap := &Swap{
		Metadata: &weave.Metadata{Schema: 1},
		From:     msg.From,
		To:       msg.To,
		Src:      msg.Src,
		SrcFee:   &srcFee,
		Dst:      msg.Dst,
		DstFee:   &dstFee,
		Lock:     msg.Lock,
		Memo:     msg.Memo,
		Address:  SwapAddress(msg.ID),
	}
	if r := reg.ReservationCoin(); r.IsPositive() {
		swap.Reservation = &r
	}
	if err := h.bucket.Create(db, msg.ID, swap); err != nil {
		return nil, err
	}

	if err := h.bank.MoveCoins(db, msg.From, swap.Address, *msg.Src); err != nil {
		return nil, errors.Wrap(err, "deposit")
	}
	if swap.Reservation != nil {
		if err := h.bank.MoveCoins(db, msg.From, swap.Address, *swap.Reservation); err != nil {
			return nil, errors.Wrap(err, "reservation")
		}
	}
	return msg, nil
}

func (h PrepareHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*PrepareMsg, *settings.Registry, error) {
	var msg PrepareMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.From) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "initiator signature required")
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := lock.CanPrepare(now, msg.Lock, lock.Out); err != nil {
		return nil, nil, err
	}
	reg, err := settings.LoadRegistry(db)
	if err != nil {
		return nil, nil, err
	}
	return &msg, reg, nil
}

// ConfirmHandler settles both legs of a swap.
type ConfirmHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ weave.Handler = ConfirmHandler{}

// Check settles both legs against db, which the ledger discards, so that a
// counterparty that cannot pay the destination leg is rejected.
func (h ConfirmHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.confirm(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: confirmCost}, nil
}

func (h ConfirmHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, swap, err := h.confirm(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("swap confirmed",
		"uuid", hex.EncodeToString(msg.ID),
		"counterparty", swap.To)
	return &weave.DeliverResult{Data: msg.ID}, nil
}

func (h ConfirmHandler) confirm(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*ConfirmMsg, *Swap, error) {
	msg, swap, reg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, nil, err
	}

	// Destination leg, paid by the counterparty.
	dstNet, err := swap.Dst.Subtract(*swap.DstFee)
	if err != nil {
		return nil, nil, errors.Wrap(err, "destination")
	}
	if err := h.bank.MoveCoins(db, swap.To, swap.From, dstNet); err != nil {
		return nil, nil, errors.Wrap(err, "destination")
	}
	// Without a fee recipient fees stay with their payer.
	if reg.HasFeeRecipient() {
		if err := h.bank.MoveCoins(db, swap.To, reg.FeeRecipient, *swap.DstFee); err != nil {
			return nil, nil, errors.Wrap(err, "destination fee")
		}
	}

	// Source leg, paid from the deposit.
	srcNet, err := swap.Src.Subtract(*swap.SrcFee)
	if err != nil {
		return nil, nil, errors.Wrap(err, "source")
	}
	if err := h.bank.MoveCoins(db, swap.Address, swap.To, srcNet); err != nil {
		return nil, nil, errors.Wrap(err, "source")
	}
	feeDest := x.AnyAddress(reg.FeeRecipient, swap.From)
	if err := h.bank.MoveCoins(db, swap.Address, feeDest, *swap.SrcFee); err != nil {
		return nil, nil, errors.Wrap(err, "source fee")
	}

	if err := closeSwap(db, h.bucket, h.bank, msg.ID, swap); err != nil {
		return nil, nil, err
	}
	return msg, swap, nil
}

func (h ConfirmHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*ConfirmMsg, *Swap, *settings.Registry, error) {
	var msg ConfirmMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	var swap Swap
	if err := h.bucket.One(db, msg.ID, &swap); err != nil {
		return nil, nil, nil, errors.Wrap(err, "swap")
	}

	if len(swap.To) == 0 {
		signer := x.MainSigner(ctx, h.auth)
		if signer == nil {
			return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "counterparty signature required")
		}
		swap.To = signer.Address()
	} else if !h.auth.HasAddress(ctx, swap.To) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "counterparty signature required")
	}
	if swap.To.Equals(swap.From) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "initiator cannot be the counterparty")
	}

	reg, err := settings.LoadRegistry(db)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(msg.Recipient) != 0 && !msg.Recipient.Equals(swap.To) {
		return nil, nil, nil, errors.Wrap(settings.ErrAccountMismatch, "recipient")
	}
	if len(msg.FeeRecipient) != 0 && !msg.FeeRecipient.Equals(reg.FeeRecipient) {
		return nil, nil, nil, errors.Wrap(settings.ErrAccountMismatch, "fee recipient")
	}

	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	if deadline := swap.Lock.ConfirmDeadline(); now > deadline {
		return nil, nil, nil, errors.Wrapf(lock.ErrDeadlineExceeded, "confirm deadline %d", deadline)
	}
	return &msg, &swap, reg, nil
}

// RefundHandler returns the deposit of an expired swap to its initiator.
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
	msg, swap, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bank.MoveCoins(db, swap.Address, swap.From, *swap.Src); err != nil {
		return nil, errors.Wrap(err, "refund")
	}
	if err := closeSwap(db, h.bucket, h.bank, msg.ID, swap); err != nil {
		return nil, err
	}

	weave.GetLogger(ctx).Info("swap refunded",
		"uuid", hex.EncodeToString(msg.ID),
		"src", swap.Src.String())
	return &weave.DeliverResult{Data: msg.ID}, nil
}

func (h RefundHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*RefundMsg, *Swap, error) {
	var msg RefundMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	var swap Swap
	if err := h.bucket.One(db, msg.ID, &swap); err != nil {
		return nil, nil, errors.Wrap(err, "swap")
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := lock.CanRefund(now, swap.Lock); err != nil {
		return nil, nil, err
	}
	return &msg, &swap, nil
}

func closeSwap(db weave.KVStore, bucket orm.ModelBucket, bank cash.Controller, id []byte, s *Swap) error {
	if s.Reservation != nil {
		if err := bank.MoveCoins(db, s.Address, s.From, *s.Reservation); err != nil {
			return errors.Wrap(err, "reservation")
		}
	}
	if err := bucket.Delete(db, id); err != nil {
		return errors.Wrap(err, "delete swap")
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
