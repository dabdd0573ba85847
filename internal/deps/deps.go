package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency vidscribe relies on.
type Requirement struct {
	Name        string
	Command     string
	VersionArgs []string
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

// Defaults returns the external tools the pipeline can make use of.
// FFmpeg is optional in the strict sense: extraction falls back to the
// in-process decoder when it is missing, at the cost of format coverage.
func Defaults(ffmpegBinary, runnerBinary string) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpegBinary,
			VersionArgs: []string{"-version"},
			Description: "Primary audio extraction from video containers",
			Optional:    true,
		},
		{
			Name:        "Python runner",
			Command:     runnerBinary,
			VersionArgs: []string{"--version"},
			Description: "Hosts the faster-whisper model worker",
		},
	}
}

// Check evaluates the provided requirements by invoking each tool's version
// command and reports availability.
func Check(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, Probe(ctx, req))
	}
	return results
}

// Probe reports whether a single requirement is runnable. A tool counts as
// available only when its version command exits cleanly, not merely when the
// binary exists on PATH.
func Probe(ctx context.Context, req Requirement) Status {
	command := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     command,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if command == "" {
		status.Detail = "command not configured"
		return status
	}
	if _, err := exec.LookPath(command); err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", command)
		return status
	}
	args := req.VersionArgs
	if len(args) == 0 {
		args = []string{"-version"}
	}
	cmd := exec.CommandContext(ctx, command, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		status.Detail = fmt.Sprintf("version probe failed: %v: %s", err, firstLine(output))
		return status
	}
	status.Available = true
	return status
}

func firstLine(output []byte) string {
	text := strings.TrimSpace(string(output))
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return text
}
