// Package assistant calls an external generative-completion service to
// produce bot replies for chat messages. All failures are recovered
// locally: Reply always returns usable text, never an error.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the Gemini API host.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// persona constrains the bot's topic. Prepended to every user
	// message, matching the legacy prompt exactly.
	persona = "You are BitcoinBot. Answer only about Bitcoin prices, trends, and crypto facts."

	// FallbackReply is broadcast when the external call fails for any
	// reason (non-2xx, network error, timeout, malformed body) or when
	// the caller is over its rate budget.
	FallbackReply = "Sorry, I couldn’t fetch the data right now."

	// noAnswerReply is used when the service responds successfully but
	// the expected text path is absent.
	noAnswerReply = "I couldn’t find the answer."
)

// Config holds assistant client settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // defaults to DefaultBaseURL

	// Timeout bounds each external call. The upstream transport has no
	// default bound, so this must be set; zero falls back to 15s.
	Timeout time.Duration

	// PerMinute caps Reply calls per session per minute. Over the cap
	// the fallback is returned without an external call. Zero disables
	// the cap.
	PerMinute int
}

// Client talks to the Gemini generateContent endpoint.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	start time.Time
	count int
}

// New creates an assistant client.
func New(cfg Config, logger *zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     l,
		windows: make(map[string]*window),
	}
}

// request/response bodies mirror the generateContent wire format.

type genRequest struct {
	Contents []genContent `json:"contents"`
}

type genContent struct {
	Role  string    `json:"role"`
	Parts []genPart `json:"parts"`
}

type genPart struct {
	Text string `json:"text"`
}

type genResponse struct {
	Candidates []struct {
		Content struct {
			Parts []genPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Reply asks the service for an answer to userMessage. A single
// attempt is made, no retry. On any failure the fixed fallback text is
// returned, so the caller always gets exactly one reply to broadcast.
func (c *Client) Reply(ctx context.Context, sessionID, userMessage string) string {
	if !c.allow(sessionID) {
		c.log.Debug().Str("session_id", sessionID).Msg("assistant call over budget")
		return FallbackReply
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(genRequest{
		Contents: []genContent{{
			Role:  "user",
			Parts: []genPart{{Text: persona + "\n\n" + userMessage}},
		}},
	})
	if err != nil {
		c.log.Error().Err(err).Msg("marshal assistant request")
		return FallbackReply
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.log.Error().Err(err).Msg("build assistant request")
		return FallbackReply
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("assistant call failed")
		return FallbackReply
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Int("status", resp.StatusCode).Msg("assistant call non-success")
		return FallbackReply
	}

	var parsed genResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.log.Warn().Err(err).Msg("decode assistant response")
		return FallbackReply
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return noAnswerReply
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return noAnswerReply
	}
	return text
}

// allow checks and consumes one call from the session's per-minute
// budget.
func (c *Client) allow(sessionID string) bool {
	if c.cfg.PerMinute <= 0 {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	w, ok := c.windows[sessionID]
	if !ok || now.Sub(w.start) >= time.Minute {
		c.windows[sessionID] = &window{start: now, count: 1}
		return true
	}
	w.count++
	return w.count <= c.cfg.PerMinute
}
