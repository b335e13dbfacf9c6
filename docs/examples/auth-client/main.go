// Gatekeep Auth Client Example
//
// This is a minimal example of how a non-browser client drives the
// Gatekeep auth API: sign up, log in, fetch the profile, log out.
// Browser clients can rely on the session cookie instead; this example
// uses the bearer token from the login response.
//
// Usage:
//   export GATEKEEP_BASE_URL="http://localhost:8080"
//   go run main.go -email you@example.com -password your-password

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func main() {
	email := flag.String("email", "", "Account email")
	password := flag.String("password", "", "Account password")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("-email and -password are required")
	}

	baseURL := os.Getenv("GATEKEEP_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	creds := credentials{Email: *email, Password: *password}

	// Sign up. A 409 means the account already exists, which is fine
	// for this example; we fall through to login.
	status, body, err := postJSON(baseURL+"/auth/signup", creds, "")
	if err != nil {
		log.Fatalf("signup: %v", err)
	}
	switch status {
	case http.StatusCreated:
		log.Println("account created")
	case http.StatusConflict:
		log.Println("account already exists, logging in")
	default:
		log.Fatalf("signup failed: %s", describeError(status, body))
	}

	// Log in.
	status, body, err = postJSON(baseURL+"/auth/login", creds, "")
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	if status != http.StatusOK {
		log.Fatalf("login failed: %s", describeError(status, body))
	}

	var session sessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		log.Fatalf("decode login response: %v", err)
	}
	log.Printf("logged in as %s (user %d), session expires %s",
		session.User.Email, session.User.ID, session.ExpiresAt.Format(time.RFC3339))

	// Fetch the profile with the bearer token.
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/v1/me", nil)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+session.Token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("fetch profile: %v", err)
	}
	profile, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("profile failed: %s", describeError(resp.StatusCode, profile))
	}
	fmt.Printf("profile: %s\n", profile)

	// Log out.
	status, body, err = postJSON(baseURL+"/auth/logout", nil, session.Token)
	if err != nil {
		log.Fatalf("logout: %v", err)
	}
	if status != http.StatusNoContent {
		log.Fatalf("logout failed: %s", describeError(status, body))
	}
	log.Println("logged out")
}

func postJSON(url string, payload any, token string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func describeError(status int, body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		return fmt.Sprintf("%d %s (%s)", status, apiErr.Error, apiErr.Code)
	}
	return fmt.Sprintf("%d %s", status, body)
}
