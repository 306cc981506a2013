package kb

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Readability thresholds for extracted document text. Sources below these
// are treated as scanned or garbled and contribute nothing to retrieval.
const (
	minReadableLen = 200
	minTextDensity = 0.70
	minWordCount   = 30
)

const replacementRune = '�'

// Sanitize normalizes raw extracted text: NFC composition, replacement and
// control characters stripped, anything outside letter/number/punctuation
// categories dropped, whitespace runs collapsed to single spaces, trimmed.
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range norm.NFC.String(text) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case r == replacementRune || unicode.IsControl(r):
			// dropped
		case unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsPunct(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsReadable reports whether extracted text looks like real prose rather
// than scanned-PDF extraction garbage. It wants enough length, a high
// letter/number/whitespace density and a minimum number of word-like tokens.
func IsReadable(text string) bool {
	runes := []rune(text)
	if len(runes) < minReadableLen {
		return false
	}
	textual := 0
	words := 0
	runLen := 0
	for _, r := range runes {
		wordRune := unicode.IsLetter(r) || unicode.IsNumber(r)
		if wordRune || unicode.IsSpace(r) {
			textual++
		}
		if wordRune {
			runLen++
			continue
		}
		if runLen >= 2 {
			words++
		}
		runLen = 0
	}
	if runLen >= 2 {
		words++
	}
	density := float64(textual) / float64(len(runes))
	return density >= minTextDensity && words >= minWordCount
}
