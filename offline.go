package singbot

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/cbegin/singbot/internal/guide"
	"github.com/cbegin/singbot/internal/notation"
)

var ErrNotScore = errors.New("singbot: text is not a score")

// Compiled is a parsed score with the voices it asks for. Easy notation has
// no settings, so its voices come from the parser defaults.
type Compiled struct {
	Kind       notation.Kind
	Notes      []notation.Note
	Teacher    int
	Singer     int
	VoicePitch int
}

// Frames is the total length in engine frames.
func (c *Compiled) Frames() int {
	total := 0
	for _, n := range c.Notes {
		total += n.Frames
	}
	return total
}

// Compile detects the notation of text and parses it at frameRate.
func Compile(text string, frameRate float64) (*Compiled, error) {
	return CompileWith(notation.NewParser(notation.DefaultConfig(), notation.FixedRate(frameRate)), text)
}

func CompileWith(parser *notation.Parser, text string) (*Compiled, error) {
	switch kind := notation.Detect(text); kind {
	case notation.KindFull:
		score, err := parser.ParseFull(text)
		if err != nil {
			return nil, err
		}
		return &Compiled{Kind: kind, Notes: score.Notes, Teacher: score.Teacher, Singer: score.Singer, VoicePitch: score.VoicePitch}, nil
	case notation.KindEasy:
		notes, err := parser.ParseEasy(text)
		if err != nil {
			return nil, err
		}
		cfg := notation.DefaultConfig()
		return &Compiled{Kind: kind, Notes: notes, Teacher: cfg.Teacher, Singer: cfg.Singer}, nil
	default:
		return nil, ErrNotScore
	}
}

// RenderGuide renders notes as a guide tone, interleaved stereo.
func RenderGuide(notes []notation.Note, frameRate float64, sampleRate int) ([]float32, error) {
	return guide.New(sampleRate, guide.DefaultParams()).Render(notes, frameRate)
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	return encodeWAV(samples, sampleRate, channels, 3, 32)
}

// EncodeWAVPCM16LE clips samples to [-1, 1] and writes 16-bit PCM.
func EncodeWAVPCM16LE(samples []float32, sampleRate int, channels int) []byte {
	return encodeWAV(samples, sampleRate, channels, 1, 16)
}

func encodeWAV(samples []float32, sampleRate, channels int, format uint16, bits int) []byte {
	width := bits / 8
	dataSize := len(samples) * width
	byteRate := sampleRate * channels * width
	blockAlign := channels * width
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], format)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], uint16(bits))
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		at := 44 + i*width
		if format == 3 {
			binary.LittleEndian.PutUint32(out[at:], math.Float32bits(s))
			continue
		}
		v := math.Max(-1, math.Min(1, float64(s)))
		binary.LittleEndian.PutUint16(out[at:], uint16(int16(math.Round(v*32767))))
	}
	return out
}
