package params

import (
	"testing"
	"time"

	"adqltap/errs"
)

func TestExecutionDurationParseRejectsNegative(t *testing.T) {
	r := NewRegistry()
	_, err := r.ParseAndCheck("EXECUTION_DURATION", "-5", Context{})
	if !errs.Is(err, errs.ParamRejected) {
		t.Fatalf("expected ParamRejected, got %v", err)
	}
}

func TestExecutionDurationClampedToMax(t *testing.T) {
	r := NewRegistry()
	v, err := r.ParseAndCheck("EXECUTION_DURATION", "600", Context{MaxExecutionDuration: 60 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(time.Duration) != 60*time.Second {
		t.Fatalf("expected clamp to 60s, got %v", v)
	}
}

func TestPhaseOnlyAcceptsRunOrAbort(t *testing.T) {
	r := NewRegistry()
	if _, err := r.ParseAndCheck("PHASE", "RUN", Context{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.ParseAndCheck("PHASE", "COMPLETED", Context{}); !errs.Is(err, errs.ParamRejected) {
		t.Fatalf("expected ParamRejected, got %v", err)
	}
}

func TestQuoteIsReadOnly(t *testing.T) {
	r := NewRegistry()
	if _, err := r.ParseAndCheck("QUOTE", "60", Context{}); !errs.Is(err, errs.ParamRejected) {
		t.Fatalf("expected ParamRejected, got %v", err)
	}
}

func TestUnknownParameterPassesThroughAsString(t *testing.T) {
	r := NewRegistry()
	v, err := r.ParseAndCheck("MAXREC", "100", Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(string) != "100" {
		t.Fatalf("expected pass-through string, got %v", v)
	}
}

func TestDestructionTimeClampedToRetention(t *testing.T) {
	r := NewRegistry()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	requested := now.Add(365 * 24 * time.Hour)
	raw := requested.Format(time.RFC3339)
	v, err := r.ParseAndCheck("DESTRUCTION_TIME", raw, Context{MaxRetentionPeriod: 30 * 24 * time.Hour, Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := v.(time.Time)
	want := now.Add(30 * 24 * time.Hour)
	if !got.Equal(want) {
		t.Fatalf("expected clamp to %v, got %v", want, got)
	}
}
