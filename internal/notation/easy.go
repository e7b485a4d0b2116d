package notation

import (
	"log/slog"
	"unicode"
)

// Easy notation always plays at a quarter note = 120.
const (
	easyTempo     = 120
	easyTempoNote = 4
)

type easyRun struct {
	cfg   Config
	log   *slog.Logger
	calc  FrameCalculator
	carry float64
	notes []Note

	pending tone
	shift   int
	length  int

	lyricMode bool
	syllable  []rune
	cursor    int
}

// ParseEasy parses a beginner-friendly line: note characters first, then
// (after 「) the lyrics, which are laid onto the pitched notes in order.
func (p *Parser) ParseEasy(text string) ([]Note, error) {
	calc, err := p.calculator()
	if err != nil {
		return nil, err
	}
	run := &easyRun{
		cfg:    p.cfg,
		log:    p.log,
		calc:   calc,
		notes:  []Note{restNote(p.cfg.EasyPadding)},
		length: p.cfg.DefaultLength,
	}
	for _, c := range body(text) {
		if run.lyricMode {
			run.lyricRune(c)
			continue
		}
		run.noteRune(c)
	}
	run.flush()
	run.assignSyllable()
	run.notes = append(run.notes, restNote(p.cfg.EasyPadding))
	return run.notes, nil
}

func (r *easyRun) noteRune(c rune) {
	if key, ok := symbols.easyKey.value(c); ok {
		r.flush()
		r.pending = tone{kind: tonePitched, offset: key + 12*r.shift}
		return
	}
	if d, ok := symbols.easyAccidental.value(c); ok {
		if r.pending.kind == tonePitched {
			r.pending.offset += d
		}
		return
	}
	if d, ok := symbols.easyShift.value(c); ok {
		r.flush()
		r.shift += d
		return
	}
	if l, ok := symbols.easyLength.value(c); ok {
		r.length = l
		return
	}
	switch {
	case symbols.easyRest.has(c):
		r.flush()
		r.pending = tone{kind: toneRest}
	case symbols.easyLyrics.has(c):
		r.flush()
		r.lyricMode = true
	case symbols.separator.has(c):
		// spacing only
	default:
		r.log.Debug("notation: unrecognized easy character", "char", string(c))
	}
}

// flush emits the pending note, if any, and resets length and octave shift.
// A shift typed before any key stays pending for the next key.
func (r *easyRun) flush() {
	if r.pending.kind == toneAbsent {
		return
	}
	frames, carry := r.calc.Frames(easyTempo, easyTempoNote, float64(r.length), r.carry)
	r.carry = carry
	note := restNote(frames)
	if r.pending.kind == tonePitched {
		note = Note{Pitch: Key(r.pending.offset), Frames: frames, Lyric: r.cfg.DefaultLyric}
	}
	r.notes = append(r.notes, note)
	r.pending = tone{}
	r.length = r.cfg.DefaultLength
	r.shift = 0
}

func (r *easyRun) lyricRune(c rune) {
	switch {
	case symbols.smallKana.has(c) && len(r.syllable) > 0:
		r.syllable = append(r.syllable, c)
	// a long vowel mark holds the previous vowel over the next note
	case unicode.In(c, unicode.Hiragana, unicode.Katakana) || symbols.longVowel.has(c):
		r.assignSyllable()
		r.syllable = append(r.syllable[:0], c)
	}
}

// assignSyllable gives the buffered syllable to the next pitched note that
// has not been given one yet.
func (r *easyRun) assignSyllable() {
	if len(r.syllable) == 0 {
		return
	}
	lyric := string(r.syllable)
	r.syllable = r.syllable[:0]
	for r.cursor < len(r.notes) && r.notes[r.cursor].Pitch.IsRest() {
		r.cursor++
	}
	if r.cursor >= len(r.notes) {
		r.log.Debug("notation: lyric without a note", "lyric", lyric)
		return
	}
	r.notes[r.cursor].Lyric = lyric
	r.cursor++
}
