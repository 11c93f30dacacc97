package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rakshabesafe/ppttovideo/internal/platform/config"
)

// httpEngine talks to an out-of-process speech-synthesis service over
// HTTP. Silence is generated locally rather than round-tripped through the
// engine, since it is purely algebraic.
type httpEngine struct {
	name           string
	baseURL        string
	sampleRateHz   int
	supportsClone  bool
	http           *http.Client
}

func newHTTPEngine(name string, sampleRateHz int, supportsClone bool) *httpEngine {
	return &httpEngine{
		name:          name,
		baseURL:       config.String(fmt.Sprintf("TTS_%s_URL", strings.ToUpper(name)), fmt.Sprintf("http://%s:8090", name)),
		sampleRateHz:  sampleRateHz,
		supportsClone: supportsClone,
		http:          &http.Client{Timeout: 120 * time.Second},
	}
}

type synthesizeRequest struct {
	Text       string `json:"text"`
	RefAudioB64 string `json:"ref_audio_b64,omitempty"`
	RefExt      string `json:"ref_ext,omitempty"`
	Emotion     string `json:"emotion,omitempty"`
	Speed       float64 `json:"speed,omitempty"`
	Pitch       float64 `json:"pitch,omitempty"`
}

type synthesizeResponse struct {
	WavBase64 string `json:"wav_base64"`
}

func (e *httpEngine) SynthesizeWithReference(ctx context.Context, text string, refBytes []byte, refExt string, prosody Prosody) ([]byte, error) {
	if !e.supportsClone {
		return e.SynthesizeBase(ctx, text, prosody)
	}
	return e.post(ctx, "/synthesize/clone", synthesizeRequest{
		Text:        text,
		RefAudioB64: b64(refBytes),
		RefExt:      refExt,
		Emotion:     prosody.Emotion,
		Speed:       prosody.Speed,
		Pitch:       prosody.Pitch,
	})
}

func (e *httpEngine) SynthesizeBase(ctx context.Context, text string, prosody Prosody) ([]byte, error) {
	return e.post(ctx, "/synthesize/base", synthesizeRequest{
		Text:    text,
		Emotion: prosody.Emotion,
		Speed:   prosody.Speed,
		Pitch:   prosody.Pitch,
	})
}

func (e *httpEngine) SynthesizeSilence(ctx context.Context, seconds float64) ([]byte, error) {
	return silenceWAV(e.sampleRateHz, seconds), nil
}

func (e *httpEngine) post(ctx context.Context, path string, body synthesizeRequest) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("tts: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tts: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts: engine %s request failed: %w", e.name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts: engine %s returned status %d", e.name, resp.StatusCode)
	}
	var out synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("tts: decode response: %w", err)
	}
	return unb64(out.WavBase64)
}
