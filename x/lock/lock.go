package lock

import (
	"crypto/subtle"
	"io"

	"github.com/obridge/weave"
	"github.com/obridge/weave/codec"
	"github.com/obridge/weave/errors"
)

// maxDuration bounds every time value accepted by a lock so that computing
// any deadline cannot overflow.
const maxDuration = 1 << 40

// Lock is the condition protecting an escrow. The set of implementations is
// closed, a lock is either a *HashTimeLock or a *DeadlineLock.
type Lock interface {
	weave.Persistent
	Validate() error

	// PrepareDeadline returns the last moment an escrow protected by this
	// lock can be created.
	PrepareDeadline(Direction) weave.UnixTime

	// RefundableAt returns the first moment funds can be returned to the
	// depositor.
	RefundableAt() weave.UnixTime

	isLock()
}

var (
	_ Lock = (*HashTimeLock)(nil)
	_ Lock = (*DeadlineLock)(nil)
)

// Window is an inclusive time range. A window without a lower bound is open
// since the beginning of time.
type Window struct {
	Bounded bool
	From    weave.UnixTime
	Until   weave.UnixTime
}

// Contains returns true if given moment falls within the window.
func (w Window) Contains(t weave.UnixTime) bool {
	if w.Bounded && t < w.From {
		return false
	}
	return t <= w.Until
}

// HashTimeLock releases funds on presentation of the hash preimage, within a
// time window derived from the agreement time and the step durations.
type HashTimeLock struct {
	// Hash is the Keccak-256 digest of the secret preimage.
	Hash []byte `json:"hash"`
	// AgreementReachedTime is the moment both parties agreed on the
	// exchange. All windows are computed relative to it.
	AgreementReachedTime weave.UnixTime `json:"agreement_reached_time"`
	// ExpectedSingleStepTime is the expected duration, in seconds, of a
	// single protocol step.
	ExpectedSingleStepTime int64 `json:"expected_single_step_time"`
	// TolerantSingleStepTime is the tolerated delay, in seconds, of a
	// single protocol step.
	TolerantSingleStepTime int64 `json:"tolerant_single_step_time"`
	// EarliestRefundTime is the first moment the depositor can take the
	// funds back.
	EarliestRefundTime weave.UnixTime `json:"earliest_refund_time"`
}

func (*HashTimeLock) isLock() {}

// Validate checks the lock fields. The refund time invariant is verified
// separately by CheckRefundTime.
func (l *HashTimeLock) Validate() error {
	var errs error
	if len(l.Hash) != HashSize {
		errs = errors.AppendField(errs, "Hash", errors.Wrapf(errors.ErrInput, "must be %d bytes", HashSize))
	}
	errs = errors.AppendField(errs, "AgreementReachedTime", validTime(int64(l.AgreementReachedTime)))
	errs = errors.AppendField(errs, "ExpectedSingleStepTime", validTime(l.ExpectedSingleStepTime))
	errs = errors.AppendField(errs, "TolerantSingleStepTime", validTime(l.TolerantSingleStepTime))
	errs = errors.AppendField(errs, "EarliestRefundTime", validTime(int64(l.EarliestRefundTime)))
	return errs
}

// CheckRefundTime ensures that a refund can never happen while any party
// is still allowed to confirm.
func (l *HashTimeLock) CheckRefundTime() error {
	last := l.step(3, 3)
	if l.EarliestRefundTime <= last {
		return errors.Wrapf(ErrInvalidRefundTime, "must be after %d", last)
	}
	return nil
}

// step returns the agreement time advanced by given number of expected and
// tolerated step durations.
func (l *HashTimeLock) step(expected, tolerated int64) weave.UnixTime {
	return l.AgreementReachedTime +
		weave.UnixTime(expected*l.ExpectedSingleStepTime+tolerated*l.TolerantSingleStepTime)
}

// PrepareDeadline returns the last moment an escrow can be created. The
// inbound leg is given an additional step to react to the outbound one.
func (l *HashTimeLock) PrepareDeadline(d Direction) weave.UnixTime {
	if d == In {
		return l.step(2, 0)
	}
	return l.step(1, 0)
}

// ConfirmWindow returns the time range within which a confirmation can be
// submitted. The depositor can confirm early, while anyone else is only
// allowed to do so once the depositor had time to act.
func (l *HashTimeLock) ConfirmWindow(d Direction, byDepositor bool) Window {
	switch {
	case d == Out && byDepositor:
		return Window{Until: l.step(3, 0)}
	case d == Out:
		return Window{Bounded: true, From: l.step(3, 2), Until: l.step(3, 3)}
	case byDepositor:
		return Window{Until: l.step(3, 1)}
	default:
		return Window{Bounded: true, From: l.step(3, 1), Until: l.step(3, 2)}
	}
}

func (l *HashTimeLock) RefundableAt() weave.UnixTime {
	return l.EarliestRefundTime
}

// CheckPreimage returns an error if the Keccak-256 digest of given preimage
// is not the locking hash.
func (l *HashTimeLock) CheckPreimage(preimage []byte) error {
	if len(preimage) != PreimageSize {
		return errors.Wrapf(ErrPreimageMismatch, "preimage must be %d bytes", PreimageSize)
	}
	if subtle.ConstantTimeCompare(Keccak256(preimage), l.Hash) != 1 {
		return ErrPreimageMismatch
	}
	return nil
}

func (l *HashTimeLock) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Bytes(1, l.Hash).
		Int64(2, int64(l.AgreementReachedTime)).
		Int64(3, l.ExpectedSingleStepTime).
		Int64(4, l.TolerantSingleStepTime).
		Int64(5, int64(l.EarliestRefundTime)).
		Result()
}

func (l *HashTimeLock) Unmarshal(raw []byte) error {
	*l = HashTimeLock{}
	d := codec.NewDecoder(raw)
	for {
		field, _, err := d.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		var n int64
		switch field {
		case 1:
			l.Hash, err = d.Bytes()
		case 2:
			n, err = d.Int64()
			l.AgreementReachedTime = weave.UnixTime(n)
		case 3:
			l.ExpectedSingleStepTime, err = d.Int64()
		case 4:
			l.TolerantSingleStepTime, err = d.Int64()
		case 5:
			n, err = d.Int64()
			l.EarliestRefundTime = weave.UnixTime(n)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "hash time lock")
		}
	}
}

// DeadlineLock protects a swap. There is no secret, the counterparty settles
// both legs at once before the confirm deadline.
type DeadlineLock struct {
	AgreementReachedTime weave.UnixTime `json:"agreement_reached_time"`
	// StepTime is the duration, in seconds, of a single protocol step.
	StepTime int64 `json:"step_time"`
}

func (*DeadlineLock) isLock() {}

func (l *DeadlineLock) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "AgreementReachedTime", validTime(int64(l.AgreementReachedTime)))
	errs = errors.AppendField(errs, "StepTime", validTime(l.StepTime))
	return errs
}

// PrepareDeadline returns the last moment a swap can be created. Direction
// is ignored as swaps have a single leg on this venue.
func (l *DeadlineLock) PrepareDeadline(Direction) weave.UnixTime {
	return l.AgreementReachedTime + weave.UnixTime(l.StepTime)
}

// ConfirmDeadline returns the last moment a swap can be confirmed.
func (l *DeadlineLock) ConfirmDeadline() weave.UnixTime {
	return l.AgreementReachedTime + weave.UnixTime(2*l.StepTime)
}

// RefundableAt returns the first moment a swap can be refunded, that is
// strictly after the confirm deadline.
func (l *DeadlineLock) RefundableAt() weave.UnixTime {
	return l.ConfirmDeadline() + 1
}

func (l *DeadlineLock) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Int64(1, int64(l.AgreementReachedTime)).
		Int64(2, l.StepTime).
		Result()
}

func (l *DeadlineLock) Unmarshal(raw []byte) error {
	*l = DeadlineLock{}
	d := codec.NewDecoder(raw)
	for {
		field, _, err := d.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		var n int64
		switch field {
		case 1:
			n, err = d.Int64()
			l.AgreementReachedTime = weave.UnixTime(n)
		case 2:
			l.StepTime, err = d.Int64()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "deadline lock")
		}
	}
}

// CanPrepare returns an error if the escrow protected by given lock can no
// longer be created.
func CanPrepare(now weave.UnixTime, l Lock, d Direction) error {
	if deadline := l.PrepareDeadline(d); now > deadline {
		return errors.Wrapf(ErrDeadlineExceeded, "prepare deadline %d", deadline)
	}
	return nil
}

// CanRefund returns an error if the escrow protected by given lock cannot be
// refunded yet.
func CanRefund(now weave.UnixTime, l Lock) error {
	if at := l.RefundableAt(); now < at {
		return errors.Wrapf(ErrNotRefundable, "refundable at %d", at)
	}
	return nil
}

func validTime(v int64) error {
	if v < 0 {
		return errors.Wrap(errors.ErrInput, "negative value")
	}
	if v > maxDuration {
		return errors.Wrap(errors.ErrOverflow, "value too big")
	}
	return nil
}
