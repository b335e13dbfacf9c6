//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"
)

type sessionResponse struct {
	User struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// TestE2ESmoke walks the full account lifecycle against a running server:
// signup, login, profile fetch, logout, and the rejections in between.
func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("GATEKEEP_BASE_URL", "http://localhost:8080")

	email := fmt.Sprintf("e2e-%d-%d@gatekeep.test", time.Now().UnixNano(), rand.Intn(10000))
	password := "e2e-password-1"

	signup := doSignup(t, baseURL, email, password)
	if signup.User.Email != email {
		t.Fatalf("signup email = %q, want %q", signup.User.Email, email)
	}
	if signup.Token == "" {
		t.Fatal("signup returned no token")
	}

	// A second signup with the same email must be rejected.
	status, body := post(t, baseURL+"/auth/signup", map[string]string{"email": email, "password": password})
	if status != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d, want 409 (body: %s)", status, body)
	}

	// Login with the right password issues a fresh session.
	status, body = post(t, baseURL+"/auth/login", map[string]string{"email": email, "password": password})
	if status != http.StatusOK {
		t.Fatalf("login status = %d (body: %s)", status, body)
	}
	var login sessionResponse
	if err := json.Unmarshal(body, &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if login.Token == signup.Token {
		t.Fatal("login must issue a distinct token")
	}

	// Wrong password is rejected with a generic message.
	status, body = post(t, baseURL+"/auth/login", map[string]string{"email": email, "password": "wrong-password"})
	if status != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401 (body: %s)", status, body)
	}
	var authErr errorResponse
	if err := json.Unmarshal(body, &authErr); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if authErr.Error != "invalid email or password" {
		t.Fatalf("bad login error = %q, want generic message", authErr.Error)
	}

	// The session resolves to the profile.
	me := getMe(t, baseURL, login.Token)
	if me.Email != email {
		t.Fatalf("me email = %q, want %q", me.Email, email)
	}

	// Logout kills the session.
	req, _ := http.NewRequest(http.MethodPost, baseURL+"/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d, want 204", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, baseURL+"/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("me after logout: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me after logout status = %d, want 401", resp.StatusCode)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func post(t *testing.T, url string, payload any) (int, []byte) {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp.StatusCode, body
}

func doSignup(t *testing.T, baseURL, email, password string) sessionResponse {
	t.Helper()

	status, body := post(t, baseURL+"/auth/signup", map[string]string{"email": email, "password": password})
	if status != http.StatusCreated {
		t.Fatalf("signup status = %d (body: %s)", status, body)
	}

	var resp sessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode signup: %v", err)
	}
	return resp
}

func getMe(t *testing.T, baseURL, token string) userResponse {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/v1/me", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/v1/me: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d (body: %s)", resp.StatusCode, body)
	}

	var me userResponse
	if err := json.Unmarshal(body, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	return me
}
