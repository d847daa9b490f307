package recommend

import (
	"strings"
	"unicode"
)

// MaxInterestLength is the number of code points kept from raw interest text.
const MaxInterestLength = 200

var bannedPatterns = []string{
	"ignore previous",
	"ignore all",
	"system:",
	"assistant:",
	"user:",
	"```",
}

// Sanitize cleans free-text interests before they are scored or sent to the
// enrichment service. It never fails; input that is entirely removed yields "".
func Sanitize(raw string) string {
	runes := []rune(raw)
	if len(runes) > MaxInterestLength {
		runes = runes[:MaxInterestLength]
	}

	var b strings.Builder
	b.Grow(len(runes))
	for _, r := range runes {
		if unicode.IsControl(r) || r == '<' || r == '>' {
			continue
		}
		b.WriteRune(r)
	}

	return strings.TrimSpace(stripBanned(b.String()))
}

// stripBanned deletes banned patterns until none remain. A deletion can join
// two fragments into a new match, so a single pass is not enough.
func stripBanned(s string) string {
	for {
		out := s
		for _, p := range bannedPatterns {
			out = strings.ReplaceAll(out, p, "")
		}
		if out == s {
			return out
		}
		s = out
	}
}
