package notation

import (
	"errors"
	"log/slog"
	"strconv"
)

// ErrNotReady is returned by the parsers until the engine frame rate is known.
var ErrNotReady = errors.New("notation: engine frame rate not ready")

// Pitch is either a rest or a sounding key. The zero value is a rest.
type Pitch struct {
	key      int
	sounding bool
}

func Rest() Pitch { return Pitch{} }

// Key returns a sounding pitch; 60 is "do" at octave 4.
func Key(semitone int) Pitch { return Pitch{key: semitone, sounding: true} }

func (p Pitch) IsRest() bool { return !p.sounding }

func (p Pitch) Key() (int, bool) { return p.key, p.sounding }

func (p Pitch) String() string {
	if !p.sounding {
		return "rest"
	}
	return strconv.Itoa(p.key)
}

type Note struct {
	Pitch  Pitch
	Frames int
	Lyric  string
}

func restNote(frames int) Note { return Note{Pitch: Rest(), Frames: frames} }

type Score struct {
	Notes      []Note
	Teacher    int
	Singer     int
	VoicePitch int
}

// RateSource reports the engine frame rate once it is known.
type RateSource interface {
	FrameRate() (float64, bool)
}

// FixedRate is a RateSource that is always ready.
type FixedRate float64

func (r FixedRate) FrameRate() (float64, bool) { return float64(r), r > 0 }

type Config struct {
	Teacher       int
	Singer        int
	Tempo         int
	TempoNote     int
	DefaultLength int
	DefaultOctave int
	DefaultLyric  string
	FullPadding   int
	EasyPadding   int
	Logger        *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Teacher:       6000,
		Singer:        3001,
		Tempo:         120,
		TempoNote:     4,
		DefaultLength: 8,
		DefaultOctave: 4,
		DefaultLyric:  "ら",
		FullPadding:   94,
		EasyPadding:   30,
	}
}

// toneKind tags a note that is still being parsed.
type toneKind int

const (
	toneAbsent toneKind = iota
	toneRest
	tonePitched
)

type tone struct {
	kind   toneKind
	offset int
}
