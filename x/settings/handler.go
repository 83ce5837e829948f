package settings

import (
	"github.com/obridge/weave"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/gconf"
	"github.com/obridge/weave/orm"
	"github.com/obridge/weave/x"
)

const (
	initializeCost     int64 = 100
	changeSettingsCost int64 = 50
)

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r weave.Registry, auth x.Authenticator) {
	caps := NewAssetFeeCapBucket()
	r.Handle(InitializeMsg{}.Path(), InitializeHandler{auth: auth})
	r.Handle(ChangeAdminMsg{}.Path(), ChangeAdminHandler{auth: auth})
	r.Handle(SetFeeRecipientMsg{}.Path(), SetFeeRecipientHandler{auth: auth})
	r.Handle(SetFeeRateMsg{}.Path(), SetFeeRateHandler{auth: auth})
	r.Handle(SetMaxFeeForTokenMsg{}.Path(), SetMaxFeeForTokenHandler{auth: auth, caps: caps})
	r.Handle(SetReservationMsg{}.Path(), SetReservationHandler{auth: auth})
}

// InitializeHandler creates the registry.
type InitializeHandler struct {
	auth x.Authenticator
}

var _ weave.Handler = InitializeHandler{}

func (h InitializeHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: initializeCost}, nil
}

func (h InitializeHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	reg := &Registry{
		Metadata: &weave.Metadata{Schema: 1},
		Admin:    msg.Admin,
	}
	if err := SaveRegistry(db, reg); err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("registry initialized", "admin", msg.Admin)
	return &weave.DeliverResult{}, nil
}

func (h InitializeHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*InitializeMsg, error) {
	var msg InitializeMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	switch ok, err := gconf.Exists(db, registryPkg); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrap(errors.ErrDuplicate, "registry already initialized")
	}
	return &msg, nil
}

// adminRegistry loads the registry and ensures that the administrator
// signed the operation.
func adminRegistry(ctx weave.Context, auth x.Authenticator, db weave.KVStore) (*Registry, error) {
	reg, err := LoadRegistry(db)
	if err != nil {
		return nil, err
	}
	if !auth.HasAddress(ctx, reg.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}
	return reg, nil
}

// ChangeAdminHandler transfers the administration of the registry.
type ChangeAdminHandler struct {
	auth x.Authenticator
}

var _ weave.Handler = ChangeAdminHandler{}

func (h ChangeAdminHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: changeSettingsCost}, nil
}

func (h ChangeAdminHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, reg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	reg.Admin = msg.NewAdmin
	if err := SaveRegistry(db, reg); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{}, nil
}

func (h ChangeAdminHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*ChangeAdminMsg, *Registry, error) {
	var msg ChangeAdminMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	reg, err := adminRegistry(ctx, h.auth, db)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, msg.NewAdmin) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "new admin signature required")
	}
	return &msg, reg, nil
}

// SetFeeRecipientHandler changes the address collecting fees.
type SetFeeRecipientHandler struct {
	auth x.Authenticator
}

var _ weave.Handler = SetFeeRecipientHandler{}

func (h SetFeeRecipientHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: changeSettingsCost}, nil
}

func (h SetFeeRecipientHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, reg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	reg.FeeRecipient = msg.FeeRecipient
	if err := SaveRegistry(db, reg); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{}, nil
}

func (h SetFeeRecipientHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SetFeeRecipientMsg, *Registry, error) {
	var msg SetFeeRecipientMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	reg, err := adminRegistry(ctx, h.auth, db)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, msg.FeeRecipient) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "fee recipient signature required")
	}
	return &msg, reg, nil
}

// SetFeeRateHandler changes the fee rate.
type SetFeeRateHandler struct {
	auth x.Authenticator
}

var _ weave.Handler = SetFeeRateHandler{}

func (h SetFeeRateHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: changeSettingsCost}, nil
}

func (h SetFeeRateHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, reg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	reg.FeeRateBp = msg.FeeRateBp
	if err := SaveRegistry(db, reg); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{}, nil
}

func (h SetFeeRateHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SetFeeRateMsg, *Registry, error) {
	var msg SetFeeRateMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	reg, err := adminRegistry(ctx, h.auth, db)
	if err != nil {
		return nil, nil, err
	}
	return &msg, reg, nil
}

// SetMaxFeeForTokenHandler declares the fee cap of an asset.
type SetMaxFeeForTokenHandler struct {
	auth x.Authenticator
	caps orm.ModelBucket
}

var _ weave.Handler = SetMaxFeeForTokenHandler{}

func (h SetMaxFeeForTokenHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: changeSettingsCost}, nil
}

func (h SetMaxFeeForTokenHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, reg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	fc := &AssetFeeCap{
		Metadata: &weave.Metadata{Schema: 1},
		Ticker:   msg.Ticker,
		MaxFee:   msg.MaxFee,
		Payer:    x.AnyAddress(msg.Payer, reg.Admin),
	}
	if err := h.caps.Put(db, []byte(fc.Ticker), fc); err != nil {
		return nil, errors.Wrap(err, "store fee cap")
	}
	return &weave.DeliverResult{}, nil
}

func (h SetMaxFeeForTokenHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SetMaxFeeForTokenMsg, *Registry, error) {
	var msg SetMaxFeeForTokenMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	reg, err := adminRegistry(ctx, h.auth, db)
	if err != nil {
		return nil, nil, err
	}
	if len(msg.Payer) != 0 && !h.auth.HasAddress(ctx, msg.Payer) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "payer signature required")
	}
	return &msg, reg, nil
}

// SetReservationHandler changes the reservation charged per escrow.
type SetReservationHandler struct {
	auth x.Authenticator
}

var _ weave.Handler = SetReservationHandler{}

func (h SetReservationHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: changeSettingsCost}, nil
}

func (h SetReservationHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, reg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	reg.Reservation = nil
	if msg.Reservation != nil && !msg.Reservation.IsZero() {
		reg.Reservation = coin.NewCoinp(msg.Reservation.Amount, msg.Reservation.Ticker)
	}
	if err := SaveRegistry(db, reg); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{}, nil
}

func (h SetReservationHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SetReservationMsg, *Registry, error) {
	var msg SetReservationMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	reg, err := adminRegistry(ctx, h.auth, db)
	if err != nil {
		return nil, nil, err
	}
	return &msg, reg, nil
}
