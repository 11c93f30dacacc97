package synthesis

import (
	"context"
	"fmt"

	"github.com/rakshabesafe/ppttovideo/internal/external/tts"
)

// Tier identifies which fallback level produced the result.
type Tier int

const (
	TierPrimary Tier = iota
	TierSecondary
	TierTertiary
)

// Progress is the task "progress" string each tier records on success,
// per §4.5.2.
func (t Tier) Progress() string {
	switch t {
	case TierPrimary:
		return "synthesized"
	case TierSecondary:
		return "fallback: base"
	case TierTertiary:
		return "fallback: silence"
	default:
		return "unknown"
	}
}

// Input bundles everything a tier attempt needs.
type Input struct {
	Text           string
	Emotion        string
	Speed          float64
	Pitch          float64
	ReferenceBytes []byte
	ReferenceExt   string
	HasReference   bool
	SilenceSeconds float64
}

// Attempt is one step of the fallback chain: a named capability call that
// returns WAV bytes or an error. Expressing the chain as an ordered list
// of typed attempts (rather than nested try/catch) keeps each tier
// independently testable and keeps the "advance on any exception" rule
// explicit instead of implicit in control flow.
type Attempt struct {
	Tier Tier
	Run  func(ctx context.Context) ([]byte, error)
}

// Outcome is the typed result of running the chain.
type Outcome struct {
	Tier  Tier
	Audio []byte
	Err   error
}

// Chain builds the three-tier fallback attempts described in §4.5.2:
// voice-cloned primary, base-speaker secondary, silence tertiary. Only a
// tertiary failure is fatal to the caller.
func Chain(synth tts.Synthesizer, in Input) []Attempt {
	prosody := tts.Prosody{Emotion: in.Emotion, Speed: in.Speed, Pitch: in.Pitch}
	attempts := []Attempt{}
	if in.HasReference {
		attempts = append(attempts, Attempt{
			Tier: TierPrimary,
			Run: func(ctx context.Context) ([]byte, error) {
				return synth.SynthesizeWithReference(ctx, in.Text, in.ReferenceBytes, in.ReferenceExt, prosody)
			},
		})
	}
	attempts = append(attempts, Attempt{
		Tier: TierSecondary,
		Run: func(ctx context.Context) ([]byte, error) {
			return synth.SynthesizeBase(ctx, in.Text, prosody)
		},
	})
	attempts = append(attempts, Attempt{
		Tier: TierTertiary,
		Run: func(ctx context.Context) ([]byte, error) {
			return synth.SynthesizeSilence(ctx, in.SilenceSeconds)
		},
	})
	return attempts
}

// Run executes attempts in order, advancing to the next on any error,
// stopping at the first success. If every attempt including the final
// (silence) tier fails, the last error is returned.
func Run(ctx context.Context, attempts []Attempt) Outcome {
	var lastErr error
	for _, a := range attempts {
		audio, err := a.Run(ctx)
		if err == nil {
			return Outcome{Tier: a.Tier, Audio: audio}
		}
		lastErr = fmt.Errorf("tier %s: %w", a.Tier.Progress(), err)
	}
	return Outcome{Err: lastErr}
}
