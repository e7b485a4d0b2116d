package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/singbot/internal/bot"
	"github.com/cbegin/singbot/internal/notation"
)

type fakeMessages struct {
	texts []string
	err   error
}

func (f *fakeMessages) Handle(text string) (bot.Job, error) {
	if f.err != nil {
		return bot.Job{}, f.err
	}
	f.texts = append(f.texts, text)
	return bot.Job{ID: uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), Kind: notation.Detect(text)}, nil
}

func ready(ok bool) notation.RateSource {
	if ok {
		return notation.FixedRate(93.75)
	}
	return notation.FixedRate(0)
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Origin", "http://chat.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestPostMessageAccepted(t *testing.T) {
	msgs := &fakeMessages{}
	h := NewServer(msgs, nil, ready(true)).Handler()

	rec, out := do(t, h, http.MethodPost, "/messages", `{"text":"s c,d,e"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", out["id"])
	assert.Equal(t, "full", out["kind"])
	assert.Equal(t, []string{"s c,d,e"}, msgs.texts)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPostMessageErrors(t *testing.T) {
	cases := []struct {
		err  error
		body string
		want int
	}{
		{notation.ErrNotReady, `{"text":"s c"}`, http.StatusServiceUnavailable},
		{bot.ErrEmptyMessage, `{"text":""}`, http.StatusBadRequest},
		{nil, `{"text":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		h := NewServer(&fakeMessages{err: tc.err}, nil, ready(true)).Handler()
		rec, out := do(t, h, http.MethodPost, "/messages", tc.body)
		assert.Equal(t, tc.want, rec.Code, tc.body)
		assert.NotEmpty(t, out["error"])
	}
}

func TestMessagesRejectsGet(t *testing.T) {
	h := NewServer(&fakeMessages{}, nil, ready(true)).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messages", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestParseFull(t *testing.T) {
	parser := notation.NewParser(notation.DefaultConfig(), notation.FixedRate(93.75))
	h := NewServer(&fakeMessages{}, parser, ready(true)).Handler()

	rec, out := do(t, h, http.MethodPost, "/parse", `{"text":"s {singer=9,voice_pitch=-2} c"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "full", out["kind"])
	assert.Equal(t, float64(9), out["singer"])
	assert.Equal(t, float64(-2), out["voice_pitch"])
	assert.Equal(t, float64(94+23+94), out["frames"])

	notes := out["notes"].([]any)
	require.Len(t, notes, 3)
	assert.NotContains(t, notes[0], "key")
	assert.Equal(t, float64(60), notes[1].(map[string]any)["key"])
}

func TestParseEasy(t *testing.T) {
	parser := notation.NewParser(notation.DefaultConfig(), notation.FixedRate(93.75))
	h := NewServer(&fakeMessages{}, parser, ready(true)).Handler()

	rec, out := do(t, h, http.MethodPost, "/parse", `{"text":"き どれ"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "easy", out["kind"])
	assert.NotContains(t, out, "teacher")
	assert.Len(t, out["notes"], 4)
}

func TestParsePlainAndNotReady(t *testing.T) {
	h := NewServer(&fakeMessages{}, notation.NewParser(notation.DefaultConfig(), nil), ready(false)).Handler()

	rec, _ := do(t, h, http.MethodPost, "/parse", `{"text":"hello"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/parse", `{"text":"s c"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	rec, out := do(t, NewServer(nil, nil, ready(true)).Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, 93.75, out["frame_rate"])

	rec, _ = do(t, NewServer(nil, nil, ready(false)).Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAllowedOrigins(t *testing.T) {
	h := NewServer(&fakeMessages{}, nil, ready(true), WithAllowedOrigins("http://other.example")).Handler()
	rec, _ := do(t, h, http.MethodGet, "/healthz", "")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
