package errs

import (
	"errors"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	e := New(UnresolvedColumn, "column %q not found", "ra")
	if e.Error() != "UnresolvedColumn: column \"ra\" not found" {
		t.Fatalf("unexpected message: %s", e.Error())
	}
}

func TestStatusDefaultsByKind(t *testing.T) {
	if New(JobNotFound, "").Status() != 404 {
		t.Fatalf("expected 404 for JobNotFound")
	}
	if New(QuotaExceeded, "").Status() != 403 {
		t.Fatalf("expected 403 for QuotaExceeded")
	}
}

func TestStatusOverride(t *testing.T) {
	e := New(TransientBackendError, "retry later")
	e.HTTPStatus = 502
	if e.Status() != 502 {
		t.Fatalf("expected overridden status 502, got %d", e.Status())
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("driver timeout")
	e := Wrap(TransientBackendError, cause, "query execution failed")
	if !errors.Is(e, cause) {
		t.Fatalf("expected errors.Is to find the wrapped cause")
	}
}

func TestIsMatchesKind(t *testing.T) {
	e := New(PhaseInvalid, "cannot transition from COMPLETED to EXECUTING")
	if !Is(e, PhaseInvalid) {
		t.Fatalf("expected Is to match PhaseInvalid")
	}
	if Is(e, JobNotFound) {
		t.Fatalf("did not expect Is to match JobNotFound")
	}
}
