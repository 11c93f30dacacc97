// Package tts defines the abstract Synthesizer capability (§6) and the
// concrete engines selected by TTS_ENGINE. Cloning is only guaranteed by
// melotts; the others implement SynthesizeWithReference as a best-effort
// fallback to base synthesis so the interface stays uniform.
package tts

import "context"

// Synthesizer is the capability interface every concrete speech engine
// implements. Concrete engines are selected by TTS_ENGINE.
type Synthesizer interface {
	// SynthesizeWithReference clones the voice in refBytes (format given by
	// refExt) to speak text under the given prosody. Returns WAV bytes.
	SynthesizeWithReference(ctx context.Context, text string, refBytes []byte, refExt string, prosody Prosody) ([]byte, error)
	// SynthesizeBase speaks text with the engine's default speaker under the
	// given prosody. Fallback/base synthesis still honors emotion/speed/pitch.
	SynthesizeBase(ctx context.Context, text string, prosody Prosody) ([]byte, error)
	// SynthesizeSilence produces seconds of silence at the engine sample rate.
	// This is algebraic and cannot fail absent a filesystem fault.
	SynthesizeSilence(ctx context.Context, seconds float64) ([]byte, error)
}

// Prosody carries the directive-resolved emotion/speed/pitch parameters
// from the text preprocessor through to the speech engine, independent of
// which fallback tier ends up serving the request.
type Prosody struct {
	Emotion string
	Speed   float64
	Pitch   float64
}

// Engine names recognized by TTS_ENGINE; cloning is only guaranteed by melotts.
const (
	EngineMeloTTS    = "melotts"
	EngineNeuphonic  = "neuphonic"
	EngineFishSpeech = "fishspeech"
	EngineChatterbox = "chatterbox"
)

// New resolves the concrete Synthesizer for the given TTS_ENGINE value and
// sample rate, defaulting to melotts when the name is unrecognized.
func New(engine string, sampleRateHz int) Synthesizer {
	switch engine {
	case EngineNeuphonic:
		return newHTTPEngine(EngineNeuphonic, sampleRateHz, false)
	case EngineFishSpeech:
		return newHTTPEngine(EngineFishSpeech, sampleRateHz, false)
	case EngineChatterbox:
		return newHTTPEngine(EngineChatterbox, sampleRateHz, false)
	case EngineMeloTTS:
		return newHTTPEngine(EngineMeloTTS, sampleRateHz, true)
	default:
		return newHTTPEngine(EngineMeloTTS, sampleRateHz, true)
	}
}
