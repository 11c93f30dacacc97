package tts

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
)

// silenceWAV builds a minimal 16-bit PCM mono WAV file of the given
// duration at sampleRateHz, entirely in memory. This is the tier-3
// fallback: algebraic, cannot fail absent a filesystem fault.
func silenceWAV(sampleRateHz int, seconds float64) []byte {
	if sampleRateHz <= 0 {
		sampleRateHz = 22050
	}
	if seconds < 0 {
		seconds = 0
	}
	numSamples := int(float64(sampleRateHz) * seconds)
	const bitsPerSample = 16
	const numChannels = 1
	byteRate := sampleRateHz * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8
	dataSize := numSamples * blockAlign

	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRateHz))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func b64(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

func unb64(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(s)
}
