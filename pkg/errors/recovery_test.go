package errors

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

func nan() float64 { return math.NaN() }

// TestRecover_WithPanic tests the Recover function when a panic occurs
func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "Predict")
		panic("index out of range")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.Operation != "Predict" {
		t.Errorf("Expected operation 'Predict', got '%s'", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
	if panicErr.Error() != "panic in Predict: index out of range" {
		t.Errorf("unexpected message %q", panicErr.Error())
	}
}

func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "Predict")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

func TestRecover_WithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	testFunc := func() (err error) {
		defer Recover(&err, "Predict")
		err = originalErr
		panic("panic after error")
	}

	err := testFunc()
	if !errors.Is(err, originalErr) {
		t.Fatalf("original error should stay primary, got %v", err)
	}
	if !strings.Contains(err.Error(), "panic in Predict: panic after error") {
		t.Errorf("message should mention the panic: %v", err)
	}
}

func TestSafeExecute(t *testing.T) {
	sentinel := fmt.Errorf("model failure")

	if err := SafeExecute("op", func() error { return nil }); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := SafeExecute("op", func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Errorf("expected sentinel, got %v", err)
	}

	panicked := fmt.Errorf("wrapped panic value")
	err := SafeExecute("op", func() error { panic(panicked) })
	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("expected PanicError, got %T", err)
	}
	if !errors.Is(err, panicked) {
		t.Error("PanicError should unwrap to an error panic value")
	}
}
