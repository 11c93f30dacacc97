package tts

import "testing"

func TestSilenceWAV(t *testing.T) {
	w := silenceWAV(22050, 3)
	if len(w) < 44 {
		t.Fatalf("expected at least a 44-byte WAV header, got %d bytes", len(w))
	}
	if string(w[0:4]) != "RIFF" || string(w[8:12]) != "WAVE" {
		t.Fatalf("malformed WAV header: %v", w[0:12])
	}
	wantData := 22050 * 3 * 2 // sampleRate * seconds * bytesPerSample
	if len(w) != 44+wantData {
		t.Fatalf("expected %d total bytes, got %d", 44+wantData, len(w))
	}
}

func TestSilenceWAVZeroDuration(t *testing.T) {
	w := silenceWAV(22050, 0)
	if len(w) != 44 {
		t.Fatalf("expected header-only WAV for zero duration, got %d bytes", len(w))
	}
}
