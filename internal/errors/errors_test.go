package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew_RegisteredCode(t *testing.T) {
	err := New(CodePortExhausted)

	if err.Code != CodePortExhausted {
		t.Errorf("Code = %q, want %q", err.Code, CodePortExhausted)
	}
	if err.Category != CategoryBind {
		t.Errorf("Category = %q, want %q", err.Category, CategoryBind)
	}
	if !strings.Contains(err.Error(), CodePortExhausted) {
		t.Errorf("Error() = %q, should contain code", err.Error())
	}
}

func TestNew_UnknownCode(t *testing.T) {
	err := New("DS999")
	if err.Message != "Unknown error" {
		t.Errorf("Message = %q, want Unknown error", err.Message)
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := fmt.Errorf("bind: address already in use")
	err := New(CodeListenFailed).Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var se *ServerError
	if !stderrors.As(err, &se) {
		t.Fatal("errors.As should find ServerError")
	}
	if se.Code != CodeListenFailed {
		t.Errorf("Code = %q, want %q", se.Code, CodeListenFailed)
	}
}

func TestFromError_PassThrough(t *testing.T) {
	orig := New(CodePathOutsideRoot)
	got := FromError(orig, CodeInvalidConfig)
	if got != orig {
		t.Error("FromError should return an existing ServerError unchanged")
	}

	if FromError(nil, CodeInvalidConfig) != nil {
		t.Error("FromError(nil) should be nil")
	}
}

func TestSerialize_StructuredError(t *testing.T) {
	cause := fmt.Errorf("open dist/index.html: permission denied")
	err := New(CodePathOutsideRoot).Wrap(cause)

	w := Serialize(err)
	if w.Name != CodePathOutsideRoot {
		t.Errorf("Name = %q, want %q", w.Name, CodePathOutsideRoot)
	}
	if !strings.Contains(w.Message, "escapes the output directory") {
		t.Errorf("Message = %q, want boundary message", w.Message)
	}
	if !strings.Contains(w.Stack, "permission denied") {
		t.Errorf("Stack = %q, should contain the wrapped cause", w.Stack)
	}
}

func TestSerialize_PlainError(t *testing.T) {
	w := Serialize(fmt.Errorf("boom"))
	if w.Name != "Error" {
		t.Errorf("Name = %q, want Error", w.Name)
	}
	if w.Message != "boom" {
		t.Errorf("Message = %q, want boom", w.Message)
	}
	if w.Stack != "" {
		t.Errorf("Stack = %q, want empty for unwrapped error", w.Stack)
	}
}

func TestSerialize_Nil(t *testing.T) {
	w := Serialize(nil)
	if w.Name != "Error" || w.Message != "" {
		t.Errorf("Serialize(nil) = %+v, want empty Error", w)
	}
}
