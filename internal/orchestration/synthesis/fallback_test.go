package synthesis

import (
	"context"
	"errors"
	"testing"

	"github.com/rakshabesafe/ppttovideo/internal/external/tts"
)

type stubSynth struct {
	cloneErr, baseErr, silenceErr error
}

func (s *stubSynth) SynthesizeWithReference(ctx context.Context, text string, ref []byte, ext string, prosody tts.Prosody) ([]byte, error) {
	if s.cloneErr != nil {
		return nil, s.cloneErr
	}
	return []byte("clone"), nil
}

func (s *stubSynth) SynthesizeBase(ctx context.Context, text string, prosody tts.Prosody) ([]byte, error) {
	if s.baseErr != nil {
		return nil, s.baseErr
	}
	return []byte("base"), nil
}

func (s *stubSynth) SynthesizeSilence(ctx context.Context, seconds float64) ([]byte, error) {
	if s.silenceErr != nil {
		return nil, s.silenceErr
	}
	return []byte("silence"), nil
}

var _ tts.Synthesizer = (*stubSynth)(nil)

func TestChainPrimarySucceeds(t *testing.T) {
	out := Run(context.Background(), Chain(&stubSynth{}, Input{HasReference: true, Text: "hi"}))
	if out.Err != nil || out.Tier != TierPrimary {
		t.Fatalf("expected primary success, got %+v", out)
	}
}

func TestChainFallsBackToSecondary(t *testing.T) {
	out := Run(context.Background(), Chain(&stubSynth{cloneErr: errors.New("engine down")}, Input{HasReference: true, Text: "hi"}))
	if out.Err != nil || out.Tier != TierSecondary {
		t.Fatalf("expected secondary fallback, got %+v", out)
	}
}

func TestChainFallsBackToSilence(t *testing.T) {
	out := Run(context.Background(), Chain(&stubSynth{cloneErr: errors.New("x"), baseErr: errors.New("y")}, Input{HasReference: true, Text: "hi", SilenceSeconds: 3}))
	if out.Err != nil || out.Tier != TierTertiary {
		t.Fatalf("expected tertiary fallback, got %+v", out)
	}
}

func TestChainNoReferenceSkipsPrimary(t *testing.T) {
	out := Run(context.Background(), Chain(&stubSynth{}, Input{HasReference: false, Text: "hi"}))
	if out.Err != nil || out.Tier != TierSecondary {
		t.Fatalf("expected secondary as first attempt with no reference, got %+v", out)
	}
}

func TestChainAllFail(t *testing.T) {
	out := Run(context.Background(), Chain(&stubSynth{cloneErr: errors.New("x"), baseErr: errors.New("y"), silenceErr: errors.New("z")}, Input{HasReference: true, Text: "hi"}))
	if out.Err == nil {
		t.Fatalf("expected error when every tier including silence fails")
	}
}
