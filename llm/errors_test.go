package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	base := errors.New("connection reset")

	transient := NewTransientError(base)
	if !IsTransient(transient) || IsFatal(transient) {
		t.Error("transient error misclassified")
	}

	fatal := NewFatalError(base)
	if !IsFatal(fatal) || IsTransient(fatal) {
		t.Error("fatal error misclassified")
	}

	if IsTransient(base) || IsFatal(base) {
		t.Error("unwrapped errors carry no classification")
	}
	if IsTransient(nil) || IsFatal(nil) {
		t.Error("nil carries no classification")
	}
}

func TestErrorClassification_WrappingPreserved(t *testing.T) {
	base := errors.New("401 unauthorized")
	wrapped := fmt.Errorf("model claude-haiku: %w", NewFatalError(base))

	if !IsFatal(wrapped) {
		t.Error("classification should survive further wrapping")
	}
	if !errors.Is(wrapped, base) {
		t.Error("the underlying error should stay reachable")
	}
	if wrapped.Error() != "model claude-haiku: 401 unauthorized" {
		t.Errorf("message = %q", wrapped.Error())
	}
}
