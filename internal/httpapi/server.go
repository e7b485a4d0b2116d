// Package httpapi exposes the bot over HTTP: messages to sing or speak, a
// parse endpoint for checking scores, and a health check.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/cbegin/singbot/internal/bot"
	"github.com/cbegin/singbot/internal/notation"
	"github.com/cbegin/singbot/internal/synth"
	"github.com/cbegin/singbot/internal/voicevox"
)

const maxBody = 64 << 10

// Messages accepts chat text. *bot.Bot satisfies it.
type Messages interface {
	Handle(text string) (bot.Job, error)
}

type Server struct {
	messages Messages
	parser   *notation.Parser
	rates    notation.RateSource
	origins  []string
	log      *slog.Logger
}

type Option func(*Server)

func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithAllowedOrigins restricts CORS. The default allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

func NewServer(messages Messages, parser *notation.Parser, rates notation.RateSource, opts ...Option) *Server {
	s := &Server{
		messages: messages,
		parser:   parser,
		rates:    rates,
		origins:  []string{"*"},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in CORS.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/messages", s.handleMessage).Methods("POST")
	router.HandleFunc("/parse", s.handleParse).Methods("POST")
	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(router)
}

type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

type parseResponse struct {
	Kind       string          `json:"kind"`
	Notes      []voicevox.Note `json:"notes"`
	Teacher    *int            `json:"teacher,omitempty"`
	Singer     *int            `json:"singer,omitempty"`
	VoicePitch *int            `json:"voice_pitch,omitempty"`
	Frames     int             `json:"frames"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	job, err := s.messages.Handle(req.Text)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.reply(w, http.StatusAccepted, messageResponse{ID: job.ID.String(), Kind: job.Kind.String()})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	kind := notation.Detect(req.Text)
	res := parseResponse{Kind: kind.String()}
	switch kind {
	case notation.KindFull:
		score, err := s.parser.ParseFull(req.Text)
		if err != nil {
			s.fail(w, err)
			return
		}
		res.Notes = synth.WireNotes(score.Notes)
		res.Teacher, res.Singer, res.VoicePitch = &score.Teacher, &score.Singer, &score.VoicePitch
	case notation.KindEasy:
		notes, err := s.parser.ParseEasy(req.Text)
		if err != nil {
			s.fail(w, err)
			return
		}
		res.Notes = synth.WireNotes(notes)
	default:
		s.reply(w, http.StatusUnprocessableEntity, errorResponse{Error: "text is not a score"})
		return
	}
	for _, n := range res.Notes {
		res.Frames += n.FrameLength
	}
	s.reply(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.rates != nil {
		if rate, ok := s.rates.FrameRate(); ok {
			s.reply(w, http.StatusOK, map[string]any{"status": "ok", "frame_rate": rate})
			return
		}
	}
	s.reply(w, http.StatusServiceUnavailable, map[string]string{"status": "waiting for engine"})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (messageRequest, bool) {
	var req messageRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		s.reply(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return req, false
	}
	return req, true
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, notation.ErrNotReady), errors.Is(err, bot.ErrClosed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, bot.ErrEmptyMessage):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("httpapi: request failed", "err", err)
	}
	s.reply(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("httpapi: write response", "err", err)
	}
}
