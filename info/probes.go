package info

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

type probePayload struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (ih *InfoHandler) respondProbe(w http.ResponseWriter, r *http.Request, statusCode int, state string, checks map[string]string) {
	ih.RespondWithJSON(w, r, statusCode, probePayload{Status: state, Checks: checks})
}

// checkFailure carries the joined check errors together with the outcome of
// every check, so the problem document can list the passing ones as well.
type checkFailure struct {
	err      error
	outcomes map[string]string
}

func (f *checkFailure) Error() string                    { return f.err.Error() }
func (f *checkFailure) Unwrap() error                    { return f.err }
func (f *checkFailure) CheckOutcomes() map[string]string { return f.outcomes }

// runChecks runs every check concurrently, each under its own timeout, and
// returns the per-check outcome plus the joined failures in check order.
func (ih *InfoHandler) runChecks(ctx context.Context, checks []Check) (map[string]string, error) {
	if len(checks) == 0 {
		return nil, nil
	}

	timeout := ih.probeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	errs := make([]error, len(checks))
	var wg sync.WaitGroup
	for idx, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			errs[idx] = check.Probe(checkCtx)
		}()
	}
	wg.Wait()

	results := make(map[string]string, len(checks))
	var failures []error
	for idx, check := range checks {
		name := checkName(check, idx)
		err := errs[idx]
		switch {
		case err == nil:
			results[name] = "ok"
			continue
		case errors.Is(err, context.DeadlineExceeded):
			err = fmt.Errorf("check %q timed out after %s: %w", name, timeout, err)
		case errors.Is(err, context.Canceled):
			err = fmt.Errorf("check %q was cancelled: %w", name, err)
		default:
			err = fmt.Errorf("check %q failed: %w", name, err)
		}
		results[name] = "failed"
		failures = append(failures, err)
	}
	if len(failures) == 0 {
		return results, nil
	}
	return results, &checkFailure{err: errors.Join(failures...), outcomes: results}
}

func checkName(check Check, idx int) string {
	if check.Name != "" {
		return check.Name
	}
	return fmt.Sprintf("check-%d", idx+1)
}

func filterChecks(checks []Check) []Check {
	filtered := make([]Check, 0, len(checks))
	for _, check := range checks {
		if check.Probe != nil {
			filtered = append(filtered, check)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}
