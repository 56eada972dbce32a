// Package deps reports the availability of external tools gavel shells out
// to, so missing binaries surface once at startup instead of per job.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"gavel/internal/config"
)

// Requirement defines an external dependency gavel relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements returns the external binaries the current configuration uses.
func Requirements(cfg *config.Config) []Requirement {
	var reqs []Requirement
	if cfg != nil && cfg.Transcode.Enabled {
		reqs = append(reqs, Requirement{
			Name:        "audio extraction",
			Command:     cfg.Transcode.Binary,
			Description: "extracts audio tracks from downloaded recordings",
			Optional:    true,
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
