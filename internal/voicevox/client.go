// Package voicevox is a small client for a VOICEVOX-compatible synthesis engine.
package voicevox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultURL = "http://127.0.0.1:50021"

// Synthesis of a long song can take minutes on CPU engines.
const defaultTimeout = 10 * time.Minute

// Client talks to one engine instance.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Version returns the engine version string. It doubles as a reachability check.
func (c *Client) Version(ctx context.Context) (string, error) {
	var v string
	if err := c.do(ctx, http.MethodGet, "/version", nil, nil, &v); err != nil {
		return "", err
	}
	return v, nil
}

func (c *Client) EngineManifest(ctx context.Context) (*EngineManifest, error) {
	var m EngineManifest
	if err := c.do(ctx, http.MethodGet, "/engine_manifest", nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// AudioQuery builds a speech query for plain text.
func (c *Client) AudioQuery(ctx context.Context, text string, speaker int) (*AudioQuery, error) {
	q := speakerQuery(speaker)
	q.Set("text", text)
	var aq AudioQuery
	if err := c.do(ctx, http.MethodPost, "/audio_query", q, nil, &aq); err != nil {
		return nil, err
	}
	return &aq, nil
}

// Synthesis renders a speech query to WAV bytes.
func (c *Client) Synthesis(ctx context.Context, query *AudioQuery, speaker int) ([]byte, error) {
	var wav []byte
	if err := c.do(ctx, http.MethodPost, "/synthesis", speakerQuery(speaker), query, &wav); err != nil {
		return nil, err
	}
	return wav, nil
}

// SingFrameAudioQuery asks the teacher voice for per-frame pitch and phonemes.
func (c *Client) SingFrameAudioQuery(ctx context.Context, score Score, teacher int) (*FrameAudioQuery, error) {
	var fq FrameAudioQuery
	if err := c.do(ctx, http.MethodPost, "/sing_frame_audio_query", speakerQuery(teacher), score, &fq); err != nil {
		return nil, err
	}
	return &fq, nil
}

// FrameSynthesis renders a frame query with the singer voice to WAV bytes.
func (c *Client) FrameSynthesis(ctx context.Context, query *FrameAudioQuery, singer int) ([]byte, error) {
	var wav []byte
	if err := c.do(ctx, http.MethodPost, "/frame_synthesis", speakerQuery(singer), query, &wav); err != nil {
		return nil, err
	}
	return wav, nil
}

// ConnectWaves joins WAV files end to end on the engine side.
func (c *Client) ConnectWaves(ctx context.Context, waves [][]byte) ([]byte, error) {
	var wav []byte
	// [][]byte marshals as a list of base64 strings, which is what the engine expects.
	if err := c.do(ctx, http.MethodPost, "/connect_waves", nil, waves, &wav); err != nil {
		return nil, err
	}
	return wav, nil
}

func speakerQuery(speaker int) url.Values {
	return url.Values{"speaker": []string{strconv.Itoa(speaker)}}
}

// do sends one request. A non-nil body is sent as JSON. When out is a
// *[]byte the raw response body is stored there, otherwise it is decoded as JSON.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reqBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("voicevox: failed to marshal %s request: %w", path, err)
		}
		reader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("voicevox: failed to create %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("voicevox: failed to send %s request: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return &StatusError{Path: path, Code: resp.StatusCode, Body: string(msg)}
	}

	if raw, ok := out.(*[]byte); ok {
		*raw, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("voicevox: failed to read %s response: %w", path, err)
		}
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("voicevox: failed to decode %s response: %w", path, err)
	}
	return nil
}

// StatusError is returned when the engine answers with anything but 200.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("voicevox: %s failed with status %d: %s", e.Path, e.Code, e.Body)
}
