package assistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func genServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(baseURL string, perMinute int) *Client {
	return New(Config{
		APIKey:    "test-key",
		Model:     "gemini-1.5-flash-latest",
		BaseURL:   baseURL,
		Timeout:   2 * time.Second,
		PerMinute: perMinute,
	}, nil)
}

func candidateBody(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{{"text": text}},
			},
		}},
	}
}

func TestReplyReturnsCandidateText(t *testing.T) {
	var gotPath, gotKey string
	var gotReq genRequest

	srv := genServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(candidateBody("Bitcoin is around $60k."))
	})

	c := newTestClient(srv.URL, 0)
	reply := c.Reply(context.Background(), "s1", "what is the price?")

	if reply != "Bitcoin is around $60k." {
		t.Fatalf("reply = %q", reply)
	}
	if gotPath != "/v1beta/models/gemini-1.5-flash-latest:generateContent" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("key = %q", gotKey)
	}
	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Role != "user" {
		t.Fatalf("unexpected request contents: %+v", gotReq.Contents)
	}
	prompt := gotReq.Contents[0].Parts[0].Text
	if !strings.HasPrefix(prompt, "You are BitcoinBot.") || !strings.HasSuffix(prompt, "what is the price?") {
		t.Fatalf("unexpected prompt: %q", prompt)
	}
}

func TestReplyFallbackOnServerError(t *testing.T) {
	srv := genServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	c := newTestClient(srv.URL, 0)
	if reply := c.Reply(context.Background(), "s1", "hi"); reply != FallbackReply {
		t.Fatalf("reply = %q, want fallback", reply)
	}
}

func TestReplyFallbackOnMalformedBody(t *testing.T) {
	srv := genServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	})

	c := newTestClient(srv.URL, 0)
	if reply := c.Reply(context.Background(), "s1", "hi"); reply != FallbackReply {
		t.Fatalf("reply = %q, want fallback", reply)
	}
}

func TestReplyFallbackOnUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := newTestClient(srv.URL, 0)
	if reply := c.Reply(context.Background(), "s1", "hi"); reply != FallbackReply {
		t.Fatalf("reply = %q, want fallback", reply)
	}
}

func TestReplyFallbackOnTimeout(t *testing.T) {
	srv := genServer(t, func(w http.ResponseWriter, r *http.Request) {
		// Stall until the client gives up. Drain the body first so the
		// server can detect the disconnect and cancel the context;
		// otherwise srv.Close deadlocks waiting on this handler.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})

	c := New(Config{
		APIKey:  "test-key",
		Model:   "gemini-1.5-flash-latest",
		BaseURL: srv.URL,
		Timeout: 100 * time.Millisecond,
	}, nil)

	start := time.Now()
	reply := c.Reply(context.Background(), "s1", "hi")
	elapsed := time.Since(start)

	if reply != FallbackReply {
		t.Fatalf("reply = %q, want fallback", reply)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("timed-out call took %v, timeout not enforced", elapsed)
	}
}

func TestReplyNoAnswerWhenCandidatesEmpty(t *testing.T) {
	srv := genServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	c := newTestClient(srv.URL, 0)
	if reply := c.Reply(context.Background(), "s1", "hi"); reply != noAnswerReply {
		t.Fatalf("reply = %q, want no-answer text", reply)
	}
}

func TestReplyNoAnswerWhenTextEmpty(t *testing.T) {
	srv := genServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateBody(""))
	})

	c := newTestClient(srv.URL, 0)
	if reply := c.Reply(context.Background(), "s1", "hi"); reply != noAnswerReply {
		t.Fatalf("reply = %q, want no-answer text", reply)
	}
}

func TestReplyRateLimitPerSession(t *testing.T) {
	calls := 0
	srv := genServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(candidateBody("ok"))
	})

	c := newTestClient(srv.URL, 2)

	if reply := c.Reply(context.Background(), "s1", "q1"); reply != "ok" {
		t.Fatalf("first reply = %q", reply)
	}
	if reply := c.Reply(context.Background(), "s1", "q2"); reply != "ok" {
		t.Fatalf("second reply = %q", reply)
	}

	// Third call in the window gets the fallback without hitting the API.
	if reply := c.Reply(context.Background(), "s1", "q3"); reply != FallbackReply {
		t.Fatalf("over-budget reply = %q, want fallback", reply)
	}
	if calls != 2 {
		t.Fatalf("external calls = %d, want 2", calls)
	}

	// Budgets are per session, so another session is unaffected.
	if reply := c.Reply(context.Background(), "s2", "q1"); reply != "ok" {
		t.Fatalf("other-session reply = %q", reply)
	}
}
