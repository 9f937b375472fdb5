package daemon

import (
	"context"
	"fmt"
	"strings"

	"reelforge/internal/logging"
	"reelforge/internal/preflight"
)

// runPreflightChecks validates directories and external services before
// processing starts. Returns nil when all checks pass, or an error
// describing all failures.
func (d *Daemon) runPreflightChecks(ctx context.Context) error {
	results := preflight.RunAll(ctx, d.cfg)
	if len(results) == 0 {
		return nil
	}

	var failures []string
	for _, r := range results {
		if r.Passed {
			d.logger.Info("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldEventType, "preflight_passed"),
			)
		} else {
			d.logger.Error("preflight check failed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldEventType, "preflight_failed"),
				logging.String(logging.FieldErrorHint, "fix the reported issue and restart the daemon"),
			)
			failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("preflight checks failed: %s", strings.Join(failures, "; "))
	}
	return nil
}
