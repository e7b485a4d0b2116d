package notation

import (
	"log/slog"
	"strings"
)

type Parser struct {
	cfg   Config
	rates RateSource
	log   *slog.Logger
}

func NewParser(cfg Config, rates RateSource) *Parser {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Parser{cfg: cfg, rates: rates, log: log}
}

func (p *Parser) calculator() (FrameCalculator, error) {
	if p.rates == nil {
		return FrameCalculator{}, ErrNotReady
	}
	rate, ok := p.rates.FrameRate()
	if !ok {
		return FrameCalculator{}, ErrNotReady
	}
	return FrameCalculator{Rate: rate}, nil
}

// state is one field of a full-notation token, in the order they may appear.
type state int

const (
	stateSettings state = iota
	stateOctave
	stateOctaveOffset
	statePitch
	stateAccidental
	stateDuration
	stateTuplet
	stateDot
	stateLyric
	stateVoid
)

func (s state) String() string {
	return [...]string{
		"settings", "octave", "octave offset", "pitch", "accidental",
		"duration", "tuplet", "dot", "lyric", "void",
	}[s]
}

// transition accepts one character for a state and records its effect.
type transition struct {
	accepts func(r rune) bool
	apply   func(t *token, r rune)
}

// transitions is indexed by state. A character that the current state does
// not accept is offered to each later state in turn; the first that accepts
// it consumes it and the token moves on to the state after that one.
// Settings is entered only from a leading brace and never takes part.
var transitions = [stateVoid]transition{
	stateOctave: {
		accepts: symbols.digit.has,
		apply:   func(t *token, r rune) { t.octave, _ = symbols.digit.value(r) },
	},
	stateOctaveOffset: {
		accepts: symbols.octaveShift.has,
		apply: func(t *token, r rune) {
			d, _ := symbols.octaveShift.value(r)
			t.octave += d
		},
	},
	statePitch: {
		accepts: func(r rune) bool { return symbols.pitch.has(r) || symbols.rest.has(r) },
		apply: func(t *token, r rune) {
			if off, ok := symbols.pitch.value(r); ok {
				t.tone = tone{kind: tonePitched, offset: off}
				return
			}
			t.tone = tone{kind: toneRest}
		},
	},
	stateAccidental: {
		accepts: symbols.accidental.has,
		apply: func(t *token, r rune) {
			d, _ := symbols.accidental.value(r)
			t.accidental += d
		},
	},
	stateDuration: {
		accepts: symbols.duration.has,
		apply: func(t *token, r rune) {
			d, _ := symbols.duration.value(r)
			t.length = float64(d)
		},
	},
	stateTuplet: {
		accepts: symbols.tuplet.has,
		apply: func(t *token, r rune) {
			mark, _ := symbols.tuplet.value(r)
			t.length *= tupletFactor[mark]
		},
	},
	stateDot: {
		accepts: symbols.dot.has,
		apply:   func(t *token, r rune) { t.length *= 1.5 },
	},
	stateLyric: {
		accepts: symbols.lyric.has,
		apply:   func(t *token, r rune) { t.capturing = true },
	},
}

type token struct {
	state      state
	octave     int
	tone       tone
	accidental int
	length     float64
	capturing  bool
	lyric      strings.Builder
	settings   strings.Builder
}

// step feeds one character through the cascade. It reports false when no
// state from the current one onward accepts the character.
func (t *token) step(r rune) bool {
	for s := t.state; s < stateVoid; s++ {
		tr := transitions[s]
		if tr.accepts == nil || !tr.accepts(r) {
			continue
		}
		tr.apply(t, r)
		t.state = s + 1
		return true
	}
	return false
}

// fullRun holds everything one ParseFull call mutates.
type fullRun struct {
	cfg          Config
	log          *slog.Logger
	calc         FrameCalculator
	carry        float64
	tempo        int
	tempoNote    int
	scorePitch   int
	settingsSeen bool
	score        *Score
}

// ParseFull parses a full-notation line, header included.
func (p *Parser) ParseFull(text string) (*Score, error) {
	calc, err := p.calculator()
	if err != nil {
		return nil, err
	}
	run := &fullRun{
		cfg:       p.cfg,
		log:       p.log,
		calc:      calc,
		tempo:     p.cfg.Tempo,
		tempoNote: p.cfg.TempoNote,
		score: &Score{
			Teacher: p.cfg.Teacher,
			Singer:  p.cfg.Singer,
			Notes:   []Note{restNote(p.cfg.FullPadding)},
		},
	}
	for _, raw := range splitTokens(body(text)) {
		run.token(raw)
	}
	run.score.Notes = append(run.score.Notes, restNote(p.cfg.FullPadding))
	return run.score, nil
}

func (r *fullRun) token(raw string) {
	t := &token{
		state:  stateOctave,
		octave: r.cfg.DefaultOctave,
		length: float64(r.cfg.DefaultLength),
	}
	for i, c := range raw {
		switch {
		case i == 0 && symbols.braceOpen.has(c):
			t.state = stateSettings
		case t.state == stateSettings:
			if symbols.braceClose.has(c) {
				r.applySettings(t.settings.String())
				t.state = stateVoid
				continue
			}
			t.settings.WriteRune(c)
		case t.capturing:
			t.lyric.WriteRune(c)
		case t.state == stateVoid:
			// rest of a closed settings block
		case !t.step(c):
			r.log.Debug("notation: unrecognized character",
				"char", string(c),
				"state", t.state.String(),
				"token", raw,
			)
		}
	}
	if t.state == stateSettings {
		r.log.Debug("notation: unterminated settings block", "token", raw)
	}
	r.resolve(t)
}

func (r *fullRun) resolve(t *token) {
	if t.tone.kind == toneAbsent {
		return
	}
	frames, carry := r.calc.Frames(r.tempo, r.tempoNote, t.length, r.carry)
	r.carry = carry
	if frames <= 0 {
		r.log.Debug("notation: note shorter than one frame dropped", "tempo", r.tempo, "length", t.length)
		return
	}
	if t.tone.kind == toneRest {
		r.score.Notes = append(r.score.Notes, restNote(frames))
		return
	}
	lyric := t.lyric.String()
	if lyric == "" {
		lyric = r.cfg.DefaultLyric
	}
	key := 12*(t.octave+1) + t.tone.offset + t.accidental + r.scorePitch
	r.score.Notes = append(r.score.Notes, Note{Pitch: Key(key), Frames: frames, Lyric: lyric})
}

// splitTokens cuts text at note separators. A token that opens with a brace
// is a settings block, and separators inside it do not split it until the
// closing brace. A brace anywhere else is ordinary text.
func splitTokens(text string) []string {
	var (
		tokens  []string
		start   int
		inBrace bool
	)
	for i, c := range text {
		switch {
		case i == start && symbols.braceOpen.has(c):
			inBrace = true
		case inBrace && symbols.braceClose.has(c):
			inBrace = false
		case !inBrace && symbols.separator.has(c):
			if i > start {
				tokens = append(tokens, text[start:i])
			}
			start = i + len(string(c))
		}
	}
	if start < len(text) {
		tokens = append(tokens, text[start:])
	}
	return tokens
}
