package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external executable feebump shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// RelayRequirement describes the node CLI used to prioritise transactions.
func RelayRequirement(binary string) Requirement {
	return Requirement{
		Name:        "Relay binary",
		Command:     binary,
		Description: "node CLI that accepts prioritisetransaction",
	}
}

// Status is the lookup result for one Requirement.
type Status struct {
	Requirement
	Available bool
	// Path is the resolved executable when Available.
	Path   string
	Detail string
}

// Check resolves req against PATH (or as a path when it contains a slash).
func Check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	status.Path = resolved
	return status
}

// CheckBinaries runs Check for each requirement, preserving order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, Check(req))
	}
	return results
}
