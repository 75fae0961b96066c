package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockChecker struct {
	err         error
	hasDeadline bool
}

func (m *mockChecker) Health(ctx context.Context) error {
	_, m.hasDeadline = ctx.Deadline()
	return m.err
}

// --- Tests ---

func TestCheck_BackendHealthy(t *testing.T) {
	backend := &mockChecker{}
	r := New(backend, nil).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks[BackendCheck] != CheckOK {
		t.Errorf("expected backend %q, got %q", CheckOK, r.Checks[BackendCheck])
	}
	if !backend.hasDeadline {
		t.Error("expected the check to run with a deadline")
	}
}

func TestCheck_BackendError(t *testing.T) {
	r := New(&mockChecker{err: errors.New("conn refused")}, nil).Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[BackendCheck] != CheckError {
		t.Errorf("expected backend %q, got %q", CheckError, r.Checks[BackendCheck])
	}
}

func TestCheck_NoBackend(t *testing.T) {
	r := New(nil, nil).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if len(r.Checks) != 0 {
		t.Errorf("expected no checks, got %v", r.Checks)
	}
}

func TestCheck_Registered(t *testing.T) {
	svc := New(&mockChecker{}, nil)
	svc.Register("config", &mockChecker{err: errors.New("stale")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[BackendCheck] != CheckOK || r.Checks["config"] != CheckError {
		t.Errorf("unexpected checks %v", r.Checks)
	}
}

func TestCheck_Timeout(t *testing.T) {
	svc := New(checkFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}), nil)
	svc.timeout = 10 * time.Millisecond

	if r := svc.Check(context.Background()); r.Checks[BackendCheck] != CheckError {
		t.Errorf("expected timed out check to fail, got %v", r.Checks)
	}
}

type checkFunc func(ctx context.Context) error

func (f checkFunc) Health(ctx context.Context) error { return f(ctx) }
