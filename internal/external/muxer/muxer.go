// Package muxer wraps the external video muxer collaborator (§6): given
// an ordered list of (image, audio) pairs it writes an MP4 of H.264 video
// plus AAC audio, one image-clip per pair with duration equal to its
// audio clip. The concrete muxer is an out-of-process binary invoked as a
// subprocess, matching the "in-process or subprocess" latitude the spec
// grants.
package muxer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rakshabesafe/ppttovideo/internal/platform/config"
)

// Pair is one slide's (image, audio) input to the muxer, in authoritative
// slide order.
type Pair struct {
	ImagePath string
	AudioPath string
}

// Muxer produces a single MP4 from ordered slide pairs.
type Muxer interface {
	Mux(ctx context.Context, pairs []Pair, outPath string) error
}

type subprocessMuxer struct {
	binPath string
}

func New() Muxer {
	return &subprocessMuxer{binPath: config.String("MUXER_BIN", "ffmpeg")}
}

// Mux shells out to the configured muxer binary. The binary is expected to
// accept a manifest file listing "image_path\taudio_path" lines, one per
// slide, and to write outPath.
func (m *subprocessMuxer) Mux(ctx context.Context, pairs []Pair, outPath string) error {
	if len(pairs) == 0 {
		return fmt.Errorf("muxer: no pairs to mux")
	}
	manifest, err := writeManifest(pairs)
	if err != nil {
		return fmt.Errorf("muxer: write manifest: %w", err)
	}
	defer os.Remove(manifest)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("muxer: prepare output dir: %w", err)
	}

	cmd := exec.CommandContext(ctx, m.binPath, "-manifest", manifest, "-o", outPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("muxer: %s failed: %w: %s", m.binPath, err, string(out))
	}
	return nil
}

func writeManifest(pairs []Pair) (string, error) {
	f, err := os.CreateTemp("", "ppttovideo-manifest-*.tsv")
	if err != nil {
		return "", err
	}
	defer f.Close()
	for _, p := range pairs {
		if _, err := fmt.Fprintf(f, "%s\t%s\n", p.ImagePath, p.AudioPath); err != nil {
			return "", err
		}
	}
	return f.Name(), nil
}
