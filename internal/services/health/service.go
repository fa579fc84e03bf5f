package health

import (
	"context"
	"sort"
	"time"
)

const checkTimeout = 2 * time.Second

// Check probes one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

// Service runs named dependency checks for the health endpoint.
type Service struct {
	checks map[string]Check
}

// NewService constructs a health service. Nil checks are skipped.
func NewService(checks map[string]Check) *Service {
	filtered := make(map[string]Check, len(checks))
	for name, check := range checks {
		if check != nil {
			filtered[name] = check
		}
	}
	return &Service{checks: filtered}
}

// Report is the health payload.
type Report struct {
	OK     bool            `json:"ok"`
	Checks map[string]bool `json:"checks,omitempty"`
}

// Status runs every check with a bounded timeout.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true}
	if s == nil || len(s.checks) == 0 {
		return report
	}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	report.Checks = make(map[string]bool, len(names))
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := s.checks[name](checkCtx)
		cancel()
		report.Checks[name] = err == nil
		if err != nil {
			report.OK = false
		}
	}
	return report
}
