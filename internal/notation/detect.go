package notation

import "unicode/utf8"

type Kind int

const (
	KindPlain Kind = iota
	KindFull
	KindEasy
)

func (k Kind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindEasy:
		return "easy"
	default:
		return "plain"
	}
}

func IsFullNotation(text string) bool {
	first, second, ok := header(text)
	return ok && symbols.songStart.has(first) && symbols.separator.has(second)
}

func IsEasyNotation(text string) bool {
	first, second, ok := header(text)
	return ok && symbols.easyMarker.has(first) && symbols.easyHeaderGap.has(second)
}

// Detect picks the parser for text. Full notation wins when both match.
func Detect(text string) Kind {
	switch {
	case IsFullNotation(text):
		return KindFull
	case IsEasyNotation(text):
		return KindEasy
	default:
		return KindPlain
	}
}

func header(text string) (rune, rune, bool) {
	first, n := utf8.DecodeRuneInString(text)
	if n == 0 {
		return 0, 0, false
	}
	second, m := utf8.DecodeRuneInString(text[n:])
	if m == 0 {
		return 0, 0, false
	}
	return first, second, true
}

// body drops the two header characters.
func body(text string) string {
	for i := 0; i < 2 && text != ""; i++ {
		_, n := utf8.DecodeRuneInString(text)
		text = text[n:]
	}
	return text
}
