package extraction

import (
	"fmt"
	"strings"
)

// remediation is shown whenever both extraction strategies fail. The fallback
// decoder only understands PCM wave containers, so a working ffmpeg install is
// the real fix for arbitrary video input.
const remediation = "Failed to extract audio. Please install ffmpeg using:\n" +
	"Ubuntu/Debian: sudo apt-get update && sudo apt-get install -y ffmpeg\n" +
	"MacOS: brew install ffmpeg\n" +
	"Windows: choco install ffmpeg"

// ExtractError reports that both the ffmpeg invocation and the in-process
// fallback failed for an input. It is terminal for that input; extraction is
// never retried automatically.
type ExtractError struct {
	Video       string
	PrimaryErr  error
	FallbackErr error
}

func (e *ExtractError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "extract audio from %s", e.Video)
	if e.PrimaryErr != nil {
		fmt.Fprintf(&sb, ": ffmpeg: %v", e.PrimaryErr)
	}
	if e.FallbackErr != nil {
		fmt.Fprintf(&sb, ": fallback decoder: %v", e.FallbackErr)
	}
	sb.WriteString("\n")
	sb.WriteString(remediation)
	return sb.String()
}

// Unwrap exposes both underlying causes to errors.Is/As.
func (e *ExtractError) Unwrap() []error {
	var errs []error
	if e.PrimaryErr != nil {
		errs = append(errs, e.PrimaryErr)
	}
	if e.FallbackErr != nil {
		errs = append(errs, e.FallbackErr)
	}
	return errs
}

// Remediation returns the install guidance for the missing external tool.
func (e *ExtractError) Remediation() string {
	return remediation
}
