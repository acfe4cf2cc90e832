package fingerprint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ohtostado/duperscooper/internal/model"
)

// ProbeTool is the external binary name invoked for metadata extraction.
var ProbeTool = "duperscooper-probe"

// ErrProbeToolMissing mirrors ErrToolMissing for the metadata probe.
var ErrProbeToolMissing = errors.New("metadata probe: executable not found on PATH")

// albumIdentifierSynonyms is the known set of tag keys treated as the
// album-identifier tag, compared case-insensitively.
var albumIdentifierSynonyms = map[string]bool{
	"musicbrainz_albumid": true,
	"album_id":            true,
	"albumid":             true,
	"musicbrainz album id": true,
}

// probeDocument is the structured document the external probe emits.
type probeDocument struct {
	Codec      string            `json:"codec"`
	SampleRate int               `json:"sample_rate_hz"`
	Channels   int               `json:"channels"`
	DurationMs int               `json:"duration_ms"`
	Lossless   bool              `json:"lossless"`
	BitDepth   *int              `json:"bit_depth,omitempty"`
	Bitrate    *int              `json:"bitrate_bits_per_sec,omitempty"`
	Tags       map[string]string `json:"tags"`
}

// CheckProbeAvailable verifies the metadata probe executable is reachable.
func CheckProbeAvailable() error {
	if _, err := exec.LookPath(ProbeTool); err != nil {
		return ErrProbeToolMissing
	}
	return nil
}

// Probe invokes the external metadata probe on path and returns derived
// Metadata. Absent optional fields (bit depth, bitrate, tags) remain nil or
// empty string; callers must not conflate absence with zero.
func Probe(ctx context.Context, path string) (model.Metadata, int, *model.FingerprintFailure, error) {
	cmd := exec.CommandContext(ctx, ProbeTool, path)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return model.Metadata{}, 0, nil, ctx.Err()
		}
		if errors.Is(err, exec.ErrNotFound) {
			return model.Metadata{}, 0, nil, ErrProbeToolMissing
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return model.Metadata{}, 0, &model.FingerprintFailure{
				Kind:   model.FailureToolError,
				Detail: strings.TrimSpace(string(exitErr.Stderr)),
			}, nil
		}
		return model.Metadata{}, 0, &model.FingerprintFailure{Kind: model.FailureUnreadable, Detail: err.Error()}, nil
	}

	var doc probeDocument
	if err := json.Unmarshal(out, &doc); err != nil {
		return model.Metadata{}, 0, &model.FingerprintFailure{
			Kind:   model.FailureUnsupportedForm,
			Detail: fmt.Sprintf("parsing probe output: %v", err),
		}, nil
	}

	md := model.Metadata{
		Codec:             doc.Codec,
		SampleRateHz:      doc.SampleRate,
		BitDepth:          doc.BitDepth,
		BitrateBitsPerSec: doc.Bitrate,
		Channels:          doc.Channels,
		Lossless:          doc.Lossless,
	}
	for k, v := range doc.Tags {
		lk := strings.ToLower(k)
		switch {
		case lk == "album":
			md.AlbumTag = v
		case lk == "artist":
			md.ArtistTag = v
		case albumIdentifierSynonyms[lk]:
			md.AlbumIdentifier = v
		}
	}
	return md, doc.DurationMs, nil, nil
}

// SupportedExtensions is the fixed, case-insensitive set of audio file
// extensions discovery consults. Unknown extensions are skipped silently.
var SupportedExtensions = map[string]bool{
	".flac": true,
	".mp3":  true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
	".wv":   true,
	".ape":  true,
	".alac": true,
}

// IsSupportedExtension reports whether ext (including its leading dot, any
// case) is a supported audio extension.
func IsSupportedExtension(ext string) bool {
	return SupportedExtensions[strings.ToLower(ext)]
}
