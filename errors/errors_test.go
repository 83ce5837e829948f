package errors

import (
	stdlib "errors"
	"fmt"
	"strings"
	"testing"
)

func TestIs(t *testing.T) {
	cases := map[string]struct {
		a      *Error
		b      error
		wantIs bool
	}{
		"instance of the same error": {
			a:      ErrNotFound,
			b:      ErrNotFound,
			wantIs: true,
		},
		"two different coded errors": {
			a:      ErrNotFound,
			b:      ErrDuplicate,
			wantIs: false,
		},
		"wrapped instance": {
			a:      ErrNotFound,
			b:      Wrap(Wrap(ErrNotFound, "inner"), "outer"),
			wantIs: true,
		},
		"stdlib error": {
			a:      ErrNotFound,
			b:      stdlib.New("not found"),
			wantIs: false,
		},
		"nil root and nil error": {
			a:      nil,
			b:      nil,
			wantIs: true,
		},
		"one of appended errors": {
			a:      ErrAmount,
			b:      Append(ErrEmpty.New("a"), Field("Amount", ErrAmount, "negative")),
			wantIs: true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.a.Is(tc.b); got != tc.wantIs {
				t.Fatalf("unexpected result: %v", got)
			}
		})
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Register(ErrNotFound.Code(), "again")
}

func TestRegisteredCodes(t *testing.T) {
	// Codes are exported to clients and must not change.
	stable := map[uint32]*Error{
		2:      ErrUnauthorized,
		3:      ErrNotFound,
		6:      ErrDuplicate,
		9:      ErrEmpty,
		12:     ErrAmount,
		13:     ErrInput,
		17:     ErrMetadata,
		111222: ErrPanic,
	}
	for code, e := range stable {
		if e.Code() != code {
			t.Errorf("%q: want code %d, got %d", e.desc, code, e.Code())
		}
	}
	// Retired codes stay unused.
	for _, code := range []uint32{5, 8, 14, 18} {
		if e, ok := usedCodes[code]; ok {
			t.Errorf("code %d is registered by %q", code, e.desc)
		}
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "nothing"); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}

func TestWrapMessage(t *testing.T) {
	err := Wrapf(ErrNotFound, "escrow %d", 7)
	if got, want := err.Error(), "escrow 7: not found"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if !strings.Contains(fmt.Sprintf("%+v", err), "errors_test.go") {
		t.Fatal("stack trace missing")
	}
}

func TestRecover(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err)
		panic("boom")
	}
	if err := fn(); !ErrPanic.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFieldErrors(t *testing.T) {
	err := Append(
		Field("From", ErrEmpty, "required"),
		Field("Amount", ErrAmount, "must be positive"),
		nil,
	)
	if errs := FieldErrors(err, "Amount"); len(errs) != 1 {
		t.Fatalf("want one Amount error, got %v", errs)
	}
	if errs := FieldErrors(err, "To"); len(errs) != 0 {
		t.Fatalf("want no To error, got %v", errs)
	}
	if Append(nil, nil) != nil {
		t.Fatal("appending nils must be nil")
	}
}

func TestInfo(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"nil error": {
			err:      nil,
			wantCode: 0,
			wantLog:  "",
		},
		"registered error": {
			err:      Wrap(ErrUnauthorized, "depositor"),
			wantCode: ErrUnauthorized.Code(),
			wantLog:  "depositor: unauthorized",
		},
		"stdlib error is hidden": {
			err:      stdlib.New("disk"),
			wantCode: 1,
			wantLog:  "internal error",
		},
		"multi error code of the first": {
			err:      Append(ErrAmount, ErrEmpty),
			wantCode: ErrAmount.Code(),
			wantLog:  Append(ErrAmount, ErrEmpty).Error(),
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := Info(tc.err, tc.debug)
			if code != tc.wantCode {
				t.Errorf("want code %d, got %d", tc.wantCode, code)
			}
			if log != tc.wantLog {
				t.Errorf("want log %q, got %q", tc.wantLog, log)
			}
		})
	}
}

func TestInfoHidesPanics(t *testing.T) {
	err := Wrap(ErrPanic, "secret")
	if _, desc := Info(err, false); strings.Contains(desc, "secret") {
		t.Fatalf("panic details exposed: %q", desc)
	}
	if !IsInternal(err) {
		t.Fatal("panic must be internal")
	}
	if IsInternal(Wrap(ErrNotFound, "escrow")) {
		t.Fatal("registered error must not be internal")
	}
	if !IsInternal(stdlib.New("disk")) {
		t.Fatal("unregistered error must be internal")
	}
}
