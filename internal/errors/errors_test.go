package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestWrap_PreservesCode(t *testing.T) {
	base := New(CodeDegeneratePrior, "density is zero")
	wrapped := Wrap(base, "computing weight")

	if GetCode(wrapped) != CodeDegeneratePrior {
		t.Errorf("code lost through Wrap: %s", GetCode(wrapped))
	}
	if !stderrors.Is(wrapped, base) {
		t.Error("wrapped error should match its sentinel")
	}
}

func TestWrap_ForeignError(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("boom"), "loading chain")
	if GetCode(wrapped) != CodeInternalError {
		t.Errorf("foreign errors should wrap as internal, got %s", GetCode(wrapped))
	}
	if Wrap(nil, "noop") != nil {
		t.Error("wrapping nil should stay nil")
	}
}

func TestIs_ComparesByCode(t *testing.T) {
	a := New(CodeEmptyHistogram, "one message")
	b := New(CodeEmptyHistogram, "another message")
	c := New(CodeDimensionality, "another code")

	if !stderrors.Is(a, b) {
		t.Error("same code should compare equal")
	}
	if stderrors.Is(a, c) {
		t.Error("different codes should not compare equal")
	}
	if stderrors.Is(a, fmt.Errorf("plain")) {
		t.Error("plain errors should not match")
	}
}

func TestWrapf_DeepChain(t *testing.T) {
	sentinel := New(CodeInvalidPriorParameters, "sigma must be positive")
	err := Wrapf(Wrapf(sentinel, "parsing %q", "Gaussian:x:0:-1"), "loading priors")

	if !stderrors.Is(err, sentinel) {
		t.Error("sentinel should survive two wraps")
	}
	if GetCode(err) != CodeInvalidPriorParameters {
		t.Errorf("code: got %s", GetCode(err))
	}
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeDatabaseError, fmt.Errorf("connection refused"))
	if GetCode(err) != CodeDatabaseError {
		t.Errorf("code: got %s", GetCode(err))
	}
	if WithCode(CodeDatabaseError, nil) != nil {
		t.Error("nil in, nil out")
	}
}
