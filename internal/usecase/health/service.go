package health

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates at least one failing component.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// BackendCheck is the name of the search backend check.
const BackendCheck = "backend"

// DefaultTimeout bounds each individual check.
const DefaultTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type namedChecker struct {
	name    string
	checker Checker
}

// Service coordinates health checks.
type Service struct {
	checks  []namedChecker
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a Service probing the search backend. backend can be nil, e.g.
// when translation runs without a configured backend.
func New(backend Checker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{timeout: DefaultTimeout, logger: logger}
	if backend != nil {
		s.Register(BackendCheck, backend)
	}
	return s
}

// Register adds a named check. Checks run in registration order.
func (s *Service) Register(name string, c Checker) {
	s.checks = append(s.checks, namedChecker{name: name, checker: c})
}

// Check runs every registered check, each bounded by DefaultTimeout.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checks))
	status := Healthy

	for _, c := range s.checks {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := c.checker.Health(cctx)
		cancel()

		if err != nil {
			s.logger.Warn("Health check failed", zap.String("check", c.name), zap.Error(err))
			checks[c.name] = CheckError
			status = Degraded
			continue
		}
		checks[c.name] = CheckOK
	}

	return Report{Status: status, Checks: checks}
}
