package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestErrorString(t *testing.T) {
	err := &Error{
		Op:   "core.CreateElement",
		Kind: KindUnknownType,
		Err:  fmt.Errorf("type %d", 42),
	}
	got := err.Error()
	want := "core.CreateElement [unknown-type]: unknown element type: type 42"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorStringWithSubject(t *testing.T) {
	err := New("core.SetProperty", KindBindingCycle, "").WithElement(3).WithProperty("x")
	got := err.Error()
	want := "element=3 property=x"
	if !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindUnknownType, "unknown-type"},
		{KindDuplicateRegistration, "duplicate-registration"},
		{KindInvalidElement, "invalid-element"},
		{KindPropertyNotFound, "property-not-found"},
		{KindBindingCycle, "binding-cycle"},
		{KindStackUnderflow, "stack-underflow"},
		{KindReparentCycle, "reparent-cycle"},
		{KindScript, "script"},
		{KindPanic, "panic"},
		{KindConfig, "config"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestErrorIsSentinel(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		sentinel error
	}{
		{KindUnknownType, ErrUnknownType},
		{KindDuplicateRegistration, ErrDuplicateRegistration},
		{KindInvalidElement, ErrInvalidElement},
		{KindBindingCycle, ErrBindingCycle},
		{KindStackUnderflow, ErrStackUnderflow},
		{KindReparentCycle, ErrReparentCycle},
	}
	for _, tt := range tests {
		err := fmt.Errorf("wrapped: %w", New("op", tt.kind, ""))
		if !stderrors.Is(err, tt.sentinel) {
			t.Errorf("errors.Is(%v, %v) = false, want true", err, tt.sentinel)
		}
		if got := KindOf(err); got != tt.kind {
			t.Errorf("KindOf() = %v, want %v", got, tt.kind)
		}
	}
	if stderrors.Is(New("op", KindBindingCycle, ""), ErrStackUnderflow) {
		t.Error("binding-cycle error should not match stack-underflow sentinel")
	}
}

func TestKindOfPanic(t *testing.T) {
	if got := KindOf(&PanicError{Value: "boom"}); got != KindPanic {
		t.Errorf("KindOf(PanicError) = %v, want %v", got, KindPanic)
	}
	if got := KindOf(stderrors.New("plain")); got != KindUnknown {
		t.Errorf("KindOf(plain) = %v, want %v", got, KindUnknown)
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	got := err.Error()
	want := "panic: test panic"
	if got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestPanicErrorStringWithOp(t *testing.T) {
	err := &PanicError{
		Op:        "core.Update",
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	got := err.Error()
	want := "panic in core.Update: test panic"
	if got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var capturedErr *Error
	handler := &testHandler{
		onError: func(err *Error) {
			capturedErr = err
		},
	}

	oldHandler := CurrentHandler()
	SetHandler(handler)
	defer SetHandler(oldHandler)

	Report(&Error{
		Op:   "test.op",
		Kind: KindScript,
	})

	if capturedErr == nil {
		t.Fatal("expected error to be captured")
	}
	if capturedErr.Op != "test.op" {
		t.Errorf("Op = %q, want %q", capturedErr.Op, "test.op")
	}
	if capturedErr.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestRecover(t *testing.T) {
	var capturedPanic *PanicError
	handler := &testHandler{
		onPanic: func(err *PanicError) {
			capturedPanic = err
		},
	}

	oldHandler := CurrentHandler()
	SetHandler(handler)
	defer SetHandler(oldHandler)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if capturedPanic == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if capturedPanic.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", capturedPanic.Value, "intentional test panic")
	}
	if capturedPanic.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", capturedPanic.Op, "test.recover")
	}
}

func TestRecoverWithCallback(t *testing.T) {
	oldHandler := CurrentHandler()
	SetHandler(&testHandler{})
	defer SetHandler(oldHandler)

	var got any
	func() {
		defer RecoverWithCallback("test.callback", func(r any) { got = r })
		panic(7)
	}()
	if got != 7 {
		t.Errorf("callback value = %v, want 7", got)
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Error("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(nil)
	if CurrentHandler() == nil {
		t.Error("SetHandler(nil) should set default LogHandler, not nil")
	}
	if _, ok := CurrentHandler().(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", CurrentHandler())
	}
}

func TestRecovered(t *testing.T) {
	err := Recovered("core.update", 9, "boom")
	if err.Op != "core.update" || err.Element != 9 || err.Value != "boom" {
		t.Errorf("Recovered = %+v", err)
	}
	if err.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
	if first, _, _ := strings.Cut(err.StackTrace, "\n"); !strings.HasSuffix(first, "TestRecovered") {
		t.Errorf("stack should start at the caller, got %q", first)
	}
}

func TestRecoverWithCallback_NoPanic(t *testing.T) {
	called := false
	func() {
		defer RecoverWithCallback("test.quiet", func(any) { called = true })
	}()
	if called {
		t.Error("callback ran without a panic")
	}
}

type testHandler struct {
	onError func(*Error)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *Error) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
