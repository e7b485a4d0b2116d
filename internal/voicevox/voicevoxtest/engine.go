// Package voicevoxtest provides an in-process fake synthesis engine for tests.
package voicevoxtest

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/cbegin/singbot/internal/voicevox"
)

// SampleRate of every WAV the fake engine returns.
const SampleRate = 24000

// SamplesPerFrame is how many PCM samples the fake renders per engine frame.
const SamplesPerFrame = 4

// Call records one request the engine served.
type Call struct {
	Path    string
	Speaker int
	Body    []byte
}

// Engine answers the endpoints the bot uses with deterministic content.
type Engine struct {
	*httptest.Server

	FrameRate float64

	mu    sync.Mutex
	calls []Call
	fail  map[string]int
}

func NewEngine() *Engine {
	e := &Engine{FrameRate: 93.75, fail: map[string]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/version", e.record(func(w http.ResponseWriter, r *http.Request, _ []byte) {
		writeJSON(w, "0.20.0")
	}))
	mux.HandleFunc("/engine_manifest", e.record(func(w http.ResponseWriter, r *http.Request, _ []byte) {
		e.mu.Lock()
		rate := e.FrameRate
		e.mu.Unlock()
		writeJSON(w, voicevox.EngineManifest{Name: "fake", FrameRate: rate, DefaultSamplingRate: SampleRate})
	}))
	mux.HandleFunc("/audio_query", e.record(func(w http.ResponseWriter, r *http.Request, _ []byte) {
		kana := r.URL.Query().Get("text")
		writeJSON(w, voicevox.AudioQuery{
			AccentPhrases:      []voicevox.AccentPhrase{{Moras: []voicevox.Mora{{Text: kana, Vowel: "a", VowelLength: 0.1}}}},
			SpeedScale:         1,
			VolumeScale:        1,
			IntonationScale:    1,
			OutputSamplingRate: SampleRate,
			Kana:               &kana,
		})
	}))
	mux.HandleFunc("/synthesis", e.record(func(w http.ResponseWriter, r *http.Request, _ []byte) {
		w.Write(WAV(make([]int16, 100), SampleRate))
	}))
	mux.HandleFunc("/sing_frame_audio_query", e.record(func(w http.ResponseWriter, r *http.Request, body []byte) {
		var score voicevox.Score
		if err := json.Unmarshal(body, &score); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeJSON(w, frameQuery(score))
	}))
	mux.HandleFunc("/frame_synthesis", e.record(func(w http.ResponseWriter, r *http.Request, body []byte) {
		var q voicevox.FrameAudioQuery
		if err := json.Unmarshal(body, &q); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		w.Write(WAV(render(q.F0), SampleRate))
	}))
	mux.HandleFunc("/connect_waves", e.record(func(w http.ResponseWriter, r *http.Request, body []byte) {
		var waves [][]byte
		if err := json.Unmarshal(body, &waves); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		var joined []int16
		for _, wav := range waves {
			joined = append(joined, PCM(wav)...)
		}
		w.Write(WAV(joined, SampleRate))
	}))
	e.Server = httptest.NewServer(mux)
	return e
}

// Fail makes path answer with status until cleared with status 0.
func (e *Engine) Fail(path string, status int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if status == 0 {
		delete(e.fail, path)
		return
	}
	e.fail[path] = status
}

func (e *Engine) SetFrameRate(rate float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.FrameRate = rate
}

// Calls returns the requests served so far, optionally filtered by path.
func (e *Engine) Calls(path string) []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []Call
	for _, c := range e.calls {
		if path == "" || c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (e *Engine) record(h func(http.ResponseWriter, *http.Request, []byte)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		speaker, _ := strconv.Atoi(r.URL.Query().Get("speaker"))
		e.mu.Lock()
		e.calls = append(e.calls, Call{Path: r.URL.Path, Speaker: speaker, Body: body})
		status := e.fail[r.URL.Path]
		e.mu.Unlock()
		if status != 0 {
			http.Error(w, "forced failure", status)
			return
		}
		h(w, r, body)
	}
}

// frameQuery lays out one f0 value per frame: the note's frequency, or 0 for rests.
func frameQuery(score voicevox.Score) voicevox.FrameAudioQuery {
	q := voicevox.FrameAudioQuery{VolumeScale: 1, OutputSamplingRate: SampleRate}
	for _, n := range score.Notes {
		hz, phoneme := 0.0, "pau"
		if n.Key != nil {
			hz = 440 * math.Pow(2, float64(*n.Key-69)/12)
			phoneme = "a"
		}
		for i := 0; i < n.FrameLength; i++ {
			q.F0 = append(q.F0, hz)
			q.Volume = append(q.Volume, 0.5)
		}
		q.Phonemes = append(q.Phonemes, voicevox.Phoneme{Phoneme: phoneme, FrameLength: n.FrameLength})
	}
	return q
}

// render writes SamplesPerFrame samples per frame; each sample carries the
// frame's f0 rounded to an integer so tests can read the pitch back.
func render(f0 []float64) []int16 {
	out := make([]int16, 0, len(f0)*SamplesPerFrame)
	for _, hz := range f0 {
		v := int16(math.Round(math.Min(hz, math.MaxInt16)))
		for i := 0; i < SamplesPerFrame; i++ {
			out = append(out, v)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// WAV encodes mono 16-bit PCM.
func WAV(samples []int16, sampleRate int) []byte {
	dataSize := len(samples) * 2
	out := make([]byte, 44+dataSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], 1)
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(out[32:], 2)
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[44+i*2:], uint16(s))
	}
	return out
}

// PCM returns the samples of a WAV produced by WAV.
func PCM(wav []byte) []int16 {
	if len(wav) < 44 {
		return nil
	}
	data := wav[44:]
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}
