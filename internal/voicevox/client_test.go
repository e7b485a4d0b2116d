package voicevox_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/singbot/internal/voicevox"
	"github.com/cbegin/singbot/internal/voicevox/voicevoxtest"
)

func TestClientVersionAndManifest(t *testing.T) {
	engine := voicevoxtest.NewEngine()
	defer engine.Close()
	c := voicevox.NewClient(engine.URL + "/")

	v, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.20.0", v)

	m, err := c.EngineManifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 93.75, m.FrameRate)
}

func TestClientSingRoundTrip(t *testing.T) {
	engine := voicevoxtest.NewEngine()
	defer engine.Close()
	c := voicevox.NewClient(engine.URL)
	ctx := context.Background()

	key := 69
	score := voicevox.Score{Notes: []voicevox.Note{
		{FrameLength: 3},
		{Key: &key, FrameLength: 2, Lyric: "ら"},
	}}
	fq, err := c.SingFrameAudioQuery(ctx, score, 6000)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 440, 440}, fq.F0)

	wav, err := c.FrameSynthesis(ctx, fq, 3001)
	require.NoError(t, err)
	assert.Len(t, voicevoxtest.PCM(wav), 5*voicevoxtest.SamplesPerFrame)

	calls := engine.Calls("/sing_frame_audio_query")
	require.Len(t, calls, 1)
	assert.Equal(t, 6000, calls[0].Speaker)
	var sent map[string][]map[string]any
	require.NoError(t, json.Unmarshal(calls[0].Body, &sent))
	_, hasKey := sent["notes"][0]["key"]
	assert.False(t, hasKey, "rests must not carry a key")
	assert.Equal(t, 3001, engine.Calls("/frame_synthesis")[0].Speaker)
}

func TestClientSpeech(t *testing.T) {
	engine := voicevoxtest.NewEngine()
	defer engine.Close()
	c := voicevox.NewClient(engine.URL)

	q, err := c.AudioQuery(context.Background(), "こんにちは", 3)
	require.NoError(t, err)
	require.NotNil(t, q.Kana)
	assert.Equal(t, "こんにちは", *q.Kana)

	wav, err := c.Synthesis(context.Background(), q, 3)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(wav[:4]))
}

func TestClientConnectWaves(t *testing.T) {
	engine := voicevoxtest.NewEngine()
	defer engine.Close()
	c := voicevox.NewClient(engine.URL)

	a := voicevoxtest.WAV([]int16{1, 2}, voicevoxtest.SampleRate)
	b := voicevoxtest.WAV([]int16{3}, voicevoxtest.SampleRate)
	joined, err := c.ConnectWaves(context.Background(), [][]byte{a, b})
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2, 3}, voicevoxtest.PCM(joined))
}

func TestClientStatusError(t *testing.T) {
	engine := voicevoxtest.NewEngine()
	defer engine.Close()
	engine.Fail("/version", http.StatusServiceUnavailable)
	c := voicevox.NewClient(engine.URL)

	_, err := c.Version(context.Background())
	var se *voicevox.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Equal(t, "/version", se.Path)
}

func TestClientHonoursContext(t *testing.T) {
	engine := voicevoxtest.NewEngine()
	defer engine.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := voicevox.NewClient(engine.URL).Version(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
