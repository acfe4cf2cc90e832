// Package fingerprint wraps the two external executables this system
// delegates audio decoding and DSP to: the Fingerprinter (an fpcalc-style
// tool) and the Metadata probe (an ffprobe-style tool).
//
// Grounded on the teacher's backend/chromaprint.go (calculateChromaprint,
// FingerprintsMatch, FingerprintDurationOK, timeout wrapper).
package fingerprint

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ohtostado/duperscooper/internal/model"
)

// FingerprinterTool is the external binary name invoked for fingerprinting.
var FingerprinterTool = "fpcalc"

// Timeout bounds a single fingerprinter invocation so one slow file cannot
// stall an entire scan.
var Timeout = 30 * time.Second

// fpcalcLengthSec is how many seconds of audio the fingerprinter samples.
const fpcalcLengthSec = 120

// Result is the parsed output of a single fingerprinter invocation.
type Result struct {
	DurationMs  int
	Fingerprint model.Fingerprint
}

// ErrToolMissing is returned when the fingerprinter executable cannot be
// found on PATH. Callers at startup treat this as a fatal, user-actionable
// error per the environment-error taxonomy.
var ErrToolMissing = errors.New("fingerprinter: executable not found on PATH")

// CheckAvailable verifies the fingerprinter tool is reachable, for use at
// startup of any operation that requires it.
func CheckAvailable() error {
	if _, err := exec.LookPath(FingerprinterTool); err != nil {
		return ErrToolMissing
	}
	return nil
}

// Fingerprint invokes the external fingerprinter on path and parses its raw
// output. A typed *model.FingerprintFailure is returned (not a bare error)
// for all the non-fatal per-file conditions; only context cancellation and
// tool-missing bubble up as plain errors.
func Fingerprint(ctx context.Context, path string) (*Result, *model.FingerprintFailure, error) {
	ctx2, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx2, FingerprinterTool, "-raw", "-length", strconv.Itoa(fpcalcLengthSec), path)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, nil, ErrToolMissing
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &model.FingerprintFailure{
				Kind:   model.FailureToolError,
				Detail: strings.TrimSpace(string(exitErr.Stderr)),
			}, nil
		}
		return nil, &model.FingerprintFailure{Kind: model.FailureUnreadable, Detail: err.Error()}, nil
	}

	durationMs, fp := parseRaw(string(out))
	if len(fp) == 0 {
		return nil, &model.FingerprintFailure{Kind: model.FailureUnsupportedForm, Detail: "no FINGERPRINT field in tool output"}, nil
	}
	return &Result{DurationMs: durationMs, Fingerprint: fp}, nil, nil
}

func parseRaw(out string) (int, model.Fingerprint) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	var durationMs int
	var fp model.Fingerprint
	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "DURATION="):
			s := strings.TrimPrefix(line, "DURATION=")
			if idx := strings.Index(s, "."); idx >= 0 {
				s = s[:idx]
			}
			secs, _ := strconv.Atoi(s)
			durationMs = secs * 1000
		case strings.HasPrefix(line, "FINGERPRINT="):
			s := strings.TrimPrefix(line, "FINGERPRINT=")
			parts := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
			fp = make(model.Fingerprint, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p == "" {
					continue
				}
				u, err := strconv.ParseUint(p, 10, 32)
				if err != nil {
					continue
				}
				fp = append(fp, uint32(u))
			}
		}
	}
	return durationMs, fp
}

// DurationCloseEnough reports whether two durations are close enough (±5s
// or ±2%, whichever is larger) to allow a fingerprint comparison to proceed.
// The fuzzy grouper skips the fingerprint comparison for any pair this
// rejects, so such a pair is never grouped, whatever the similarity of its
// fingerprints. A missing (zero or negative) duration always passes.
func DurationCloseEnough(d1Ms, d2Ms int) bool {
	if d1Ms <= 0 || d2Ms <= 0 {
		return true
	}
	diff := d1Ms - d2Ms
	if diff < 0 {
		diff = -diff
	}
	maxMs := 5000
	larger := d1Ms
	if d2Ms > larger {
		larger = d2Ms
	}
	if pct := int(float64(larger) * 0.02); pct > maxMs {
		maxMs = pct
	}
	return diff <= maxMs
}
