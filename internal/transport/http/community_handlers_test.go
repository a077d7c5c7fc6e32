package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
)

func doJSON(t *testing.T, env *testEnv, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != "" {
		reqBody = bytes.NewBufferString(body)
	} else {
		reqBody = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, env.ts.URL+path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	env.server.Handler.ServeHTTP(resp, req)
	return resp
}

func TestSignupAndLoginEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp := doJSON(t, env, stdhttp.MethodPost, "/api/auth/signup",
		`{"username":"alice","email":"alice@example.com","password":"password123"}`, "")
	if resp.Code != stdhttp.StatusCreated {
		t.Fatalf("signup status = %d: %s", resp.Code, resp.Body.String())
	}

	var msg MessageResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &msg); err != nil {
		t.Fatalf("unmarshal signup response: %v", err)
	}
	if msg.Message != "User created" {
		t.Fatalf("signup message = %q", msg.Message)
	}

	// Duplicate email.
	resp = doJSON(t, env, stdhttp.MethodPost, "/api/auth/signup",
		`{"username":"alice2","email":"alice@example.com","password":"password123"}`, "")
	if resp.Code != stdhttp.StatusBadRequest {
		t.Fatalf("duplicate signup status = %d", resp.Code)
	}

	resp = doJSON(t, env, stdhttp.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"password123"}`, "")
	if resp.Code != stdhttp.StatusOK {
		t.Fatalf("login status = %d: %s", resp.Code, resp.Body.String())
	}

	var login LoginResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &login); err != nil {
		t.Fatalf("unmarshal login response: %v", err)
	}
	if login.Token == "" || login.Username != "alice" {
		t.Fatalf("unexpected login response: %+v", login)
	}

	resp = doJSON(t, env, stdhttp.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"nope"}`, "")
	if resp.Code != stdhttp.StatusBadRequest {
		t.Fatalf("bad-password login status = %d", resp.Code)
	}
}

func TestCreatePostRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupAndLogin(t, "alice", "alice@example.com")

	// No token.
	resp := doJSON(t, env, stdhttp.MethodPost, "/api/posts",
		`{"title":"Hello","content":"first post"}`, "")
	if resp.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("unauthenticated create status = %d", resp.Code)
	}

	// Valid token.
	resp = doJSON(t, env, stdhttp.MethodPost, "/api/posts",
		`{"title":"Hello","content":"first post"}`, token)
	if resp.Code != stdhttp.StatusCreated {
		t.Fatalf("create post status = %d: %s", resp.Code, resp.Body.String())
	}

	var post PostResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &post); err != nil {
		t.Fatalf("unmarshal post: %v", err)
	}
	if post.Author != "alice" || post.Title != "Hello" {
		t.Fatalf("unexpected post: %+v", post)
	}

	// Listing is public.
	resp = doJSON(t, env, stdhttp.MethodGet, "/api/posts", "", "")
	if resp.Code != stdhttp.StatusOK {
		t.Fatalf("list posts status = %d", resp.Code)
	}
	var posts []PostResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &posts); err != nil {
		t.Fatalf("unmarshal posts: %v", err)
	}
	if len(posts) != 1 || posts[0].Author != "alice" {
		t.Fatalf("unexpected posts: %+v", posts)
	}
}

func TestGroupsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp := doJSON(t, env, stdhttp.MethodPost, "/api/groups",
		`{"name":"Mindfulness","description":"daily check-ins"}`, "")
	if resp.Code != stdhttp.StatusCreated {
		t.Fatalf("create group status = %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, env, stdhttp.MethodPost, "/api/groups", `{"description":"no name"}`, "")
	if resp.Code != stdhttp.StatusBadRequest {
		t.Fatalf("nameless group status = %d", resp.Code)
	}

	resp = doJSON(t, env, stdhttp.MethodGet, "/api/groups", "", "")
	if resp.Code != stdhttp.StatusOK {
		t.Fatalf("list groups status = %d", resp.Code)
	}
	var groups []GroupResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &groups); err != nil {
		t.Fatalf("unmarshal groups: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "Mindfulness" {
		t.Fatalf("unexpected groups: %+v", groups)
	}
}

func TestProgressSaveAndList(t *testing.T) {
	env := newTestEnv(t)

	resp := doJSON(t, env, stdhttp.MethodPost, "/api/progress",
		`{"username":"alice","progress":{"mood":7,"learning":4,"social":5}}`, "")
	if resp.Code != stdhttp.StatusOK {
		t.Fatalf("save progress status = %d: %s", resp.Code, resp.Body.String())
	}

	// Second save replaces the first.
	resp = doJSON(t, env, stdhttp.MethodPost, "/api/progress",
		`{"username":"alice","progress":{"mood":9,"learning":5,"social":6}}`, "")
	if resp.Code != stdhttp.StatusOK {
		t.Fatalf("second save status = %d", resp.Code)
	}

	resp = doJSON(t, env, stdhttp.MethodGet, "/api/progress", "", "")
	var records []ProgressResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &records); err != nil {
		t.Fatalf("unmarshal progress: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("progress records = %d, want 1", len(records))
	}
	if records[0].Progress.Mood != 9 {
		t.Fatalf("progress not replaced: %+v", records[0])
	}

	resp = doJSON(t, env, stdhttp.MethodPost, "/api/progress", `{"progress":{"mood":1}}`, "")
	if resp.Code != stdhttp.StatusBadRequest {
		t.Fatalf("usernameless progress status = %d", resp.Code)
	}
}

func TestTimeSpentAccumulatesAcrossSaves(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{"username":"alice","timeSpent":120}`,
		`{"username":"alice","timeSpent":30}`,
	} {
		resp := doJSON(t, env, stdhttp.MethodPost, "/api/time", body, "")
		if resp.Code != stdhttp.StatusOK {
			t.Fatalf("save time status = %d: %s", resp.Code, resp.Body.String())
		}
	}

	resp := doJSON(t, env, stdhttp.MethodPost, "/api/time", `{"username":"alice","timeSpent":-5}`, "")
	if resp.Code != stdhttp.StatusBadRequest {
		t.Fatalf("negative time status = %d", resp.Code)
	}

	resp = doJSON(t, env, stdhttp.MethodGet, "/api/time", "", "")
	var records []TimeSpentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &records); err != nil {
		t.Fatalf("unmarshal time records: %v", err)
	}
	if len(records) != 1 || records[0].TimeSpent != 150 {
		t.Fatalf("unexpected time records: %+v", records)
	}
}

func TestListResourcesFallsBackWhenEmpty(t *testing.T) {
	env := newTestEnv(t)

	resp := doJSON(t, env, stdhttp.MethodGet, "/api/resources", "", "")
	if resp.Code != stdhttp.StatusOK {
		t.Fatalf("list resources status = %d", resp.Code)
	}

	var resources []ResourceResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &resources); err != nil {
		t.Fatalf("unmarshal resources: %v", err)
	}
	if len(resources) != len(fallbackResources) {
		t.Fatalf("resources = %d entries, want the %d fallbacks", len(resources), len(fallbackResources))
	}
	if resources[0].Title != fallbackResources[0].Title {
		t.Fatalf("unexpected first resource: %+v", resources[0])
	}
}

func TestListVibesEndpoint(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.store.CreateVibe(context.Background(), "alice", "grateful"); err != nil {
		t.Fatalf("seed vibe: %v", err)
	}

	resp := doJSON(t, env, stdhttp.MethodGet, "/api/vibes", "", "")
	if resp.Code != stdhttp.StatusOK {
		t.Fatalf("list vibes status = %d", resp.Code)
	}
	var vibes []VibeResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &vibes); err != nil {
		t.Fatalf("unmarshal vibes: %v", err)
	}
	if len(vibes) != 1 || vibes[0].User != "alice" || vibes[0].Content != "grateful" {
		t.Fatalf("unexpected vibes: %+v", vibes)
	}
}
