package synth

import "github.com/cbegin/singbot/internal/voicevox"

// SplitPhrases cuts notes into phrases at rests. Rests before the first note
// open the first phrase and rests after the last note close the last one.
// A rest between two phrases is shared: the earlier phrase ends with the
// floor of half its length, the next starts with the ceiling. Adjacent rests
// are merged first, so the total frame count never changes.
func SplitPhrases(notes []voicevox.Note) [][]voicevox.Note {
	var (
		phrases [][]voicevox.Note
		current []voicevox.Note
		rest    int
	)
	for _, n := range notes {
		if n.Key == nil {
			rest += n.FrameLength
			continue
		}
		switch {
		case current == nil:
			current = appendRest(nil, rest)
		case rest > 0:
			phrases = append(phrases, appendRest(current, rest/2))
			current = appendRest(nil, rest-rest/2)
		}
		rest = 0
		current = append(current, n)
	}
	if current != nil {
		phrases = append(phrases, appendRest(current, rest))
	}
	return phrases
}

func appendRest(notes []voicevox.Note, frames int) []voicevox.Note {
	if frames <= 0 {
		if notes == nil {
			return []voicevox.Note{}
		}
		return notes
	}
	return append(notes, voicevox.Note{FrameLength: frames})
}
