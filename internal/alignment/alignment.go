// Package alignment converts character-level timing data from a
// speech-synthesis service into word-level timing records, and answers
// which words are active at a given playback position.
package alignment

import (
	"strings"

	"github.com/charmbracelet/log"
)

// Payload is the character-aligned timing payload delivered by the
// synthesis service: three equal-length parallel arrays. Position in the
// arrays is the only identity a character has.
type Payload struct {
	Characters []string `json:"characters"`
	StartTimes []int    `json:"startTimes"`
	Durations  []int    `json:"durations"`
}

// CharTiming is the timing for a single synthesized character.
type CharTiming struct {
	Char    string `json:"char"`
	StartMs int    `json:"startMs"`
	DurMs   int    `json:"durMs"`
}

// Word is a word-level timing record derived from a Payload. StartMs is
// the start time of the word's first character; EndMs is the start time
// plus duration of its last character. Chars retains the constituent
// character timings so timing can be re-derived at sub-word granularity.
type Word struct {
	Word    string       `json:"word"`
	StartMs int          `json:"startMs"`
	EndMs   int          `json:"endMs"`
	Chars   []CharTiming `json:"chars,omitempty"`
}

// Validate reports whether p has the expected shape: three non-nil
// arrays of identical length. Callers should validate externally sourced
// payloads before processing them.
func Validate(p Payload) bool {
	if p.Characters == nil || p.StartTimes == nil || p.Durations == nil {
		return false
	}
	n := len(p.Characters)
	return len(p.StartTimes) == n && len(p.Durations) == n
}

// Process folds character timings into word timings. The text argument
// is informational; word boundaries come from the character array, not
// from re-splitting text. A malformed payload yields an empty result
// rather than an error, which callers treat as "no highlighting
// available".
//
// Words are emitted in source order. Whitespace characters are
// boundaries and never produce empty words; a word still accumulating
// when the scan ends is flushed as the final word.
func Process(text string, p Payload) []Word {
	if !Validate(p) {
		log.Debug("malformed alignment payload, skipping word timing",
			"chars", len(p.Characters),
			"starts", len(p.StartTimes),
			"durations", len(p.Durations))
		return nil
	}

	var words []Word
	var buf strings.Builder
	var chars []CharTiming

	flush := func() {
		if len(chars) == 0 {
			return
		}
		first := chars[0]
		last := chars[len(chars)-1]
		words = append(words, Word{
			Word:    buf.String(),
			StartMs: first.StartMs,
			EndMs:   last.StartMs + last.DurMs,
			Chars:   chars,
		})
		buf.Reset()
		chars = nil
	}

	for i, c := range p.Characters {
		if strings.TrimSpace(c) == "" {
			flush()
			continue
		}
		buf.WriteString(c)
		chars = append(chars, CharTiming{
			Char:    c,
			StartMs: p.StartTimes[i],
			DurMs:   p.Durations[i],
		})
	}
	flush()

	return words
}
