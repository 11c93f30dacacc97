// Package synthesis is the Synthesis Worker (C5): per-slide voice
// synthesis with a tiered fallback chain, the text preprocessor, and the
// timeout/progress control contract.
package synthesis

import (
	"regexp"
	"strconv"
	"strings"
)

// Preprocessed is the result of parse(text): the directive-stripped text
// plus the resolved prosody parameters.
type Preprocessed struct {
	CleanText string
	Emotion   string
	Speed     float64
	Pitch     float64
}

var (
	directivePattern = regexp.MustCompile(`(?i)\[(EMOTION|SPEED|PITCH|PAUSE|EMPHASIS):([^\]]*)\]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

var emotionWords = map[string]bool{
	"excited": true, "sad": true, "angry": true, "happy": true, "neutral": true,
}

var speedWords = map[string]float64{
	"slow": 0.7, "normal": 1.0, "fast": 1.3,
}

var pitchWords = map[string]float64{
	"low": 0.8, "normal": 1.0, "high": 1.2,
}

// Parse is the deterministic, pure text preprocessor of §4.5.1. Recognized
// directives are removed from the output and folded into the returned
// prosody parameters; unknown directives are left intact for
// forward-compatibility.
func Parse(text string) Preprocessed {
	out := Preprocessed{Emotion: "neutral", Speed: 1.0, Pitch: 1.0}

	clean := directivePattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := directivePattern.FindStringSubmatch(match)
		name := strings.ToUpper(groups[1])
		value := strings.TrimSpace(groups[2])
		switch name {
		case "EMOTION":
			v := strings.ToLower(value)
			if emotionWords[v] {
				out.Emotion = v
			}
			return ""
		case "SPEED":
			out.Speed = resolveScale(value, speedWords, 0.5, 2.0, out.Speed)
			return ""
		case "PITCH":
			out.Pitch = resolveScale(value, pitchWords, 0.5, 2.0, out.Pitch)
			return ""
		case "PAUSE":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return ""
			}
			return strings.Repeat(",", n)
		case "EMPHASIS":
			return strings.ToUpper(value)
		default:
			return match
		}
	})

	clean = whitespacePattern.ReplaceAllString(clean, " ")
	out.CleanText = strings.TrimSpace(clean)
	return out
}

func resolveScale(value string, words map[string]float64, min, max, fallback float64) float64 {
	if v, ok := words[strings.ToLower(value)]; ok {
		return v
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	if f < min {
		return min
	}
	if f > max {
		return max
	}
	return f
}
