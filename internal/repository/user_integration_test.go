//go:build integration

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gatekeep/gatekeep/internal/testutil"
)

func TestIntegrationUserRepository_CreateUser(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user, err := repo.CreateUser(ctx, "a@b.com", "$argon2id$v=19$m=16384,t=1,p=1$salt$hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if user.ID == 0 {
		t.Error("CreateUser should assign a non-zero ID")
	}
	if user.Email != "a@b.com" {
		t.Errorf("Email mismatch: got %q, want %q", user.Email, "a@b.com")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser should set CreatedAt")
	}
}

func TestIntegrationUserRepository_CreateUser_DuplicateEmail(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	if _, err := repo.CreateUser(ctx, "a@b.com", "hash1"); err != nil {
		t.Fatalf("first CreateUser failed: %v", err)
	}

	_, err := repo.CreateUser(ctx, "a@b.com", "hash2")
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationUserRepository_CreateUser_ConcurrentDuplicate(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	// Race two inserts for the same email: exactly one must win and the
	// loser must observe the unique violation, with one record left behind.
	const attempts = 2
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CreateUser(ctx, "race@b.com", "hash")
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrEmailExists):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if won != 1 || lost != 1 {
		t.Errorf("expected exactly one winner and one ErrEmailExists, got won=%d lost=%d", won, lost)
	}

	var count int
	if err := repo.Pool().QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE email = $1", "race@b.com").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one record, got %d", count)
	}
}

func TestIntegrationUserRepository_GetUserByEmail(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	created, err := repo.CreateUser(ctx, "a@b.com", "stored-hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user, err := repo.GetUserByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}

	if user.ID != created.ID {
		t.Errorf("ID mismatch: got %d, want %d", user.ID, created.ID)
	}
	if user.PasswordHash != "stored-hash" {
		t.Errorf("GetUserByEmail should include the password hash, got %q", user.PasswordHash)
	}
}

func TestIntegrationUserRepository_GetUserByEmail_NotFound(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	_, err := repo.GetUserByEmail(ctx, "nobody@b.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestIntegrationUserRepository_GetUserByID_ExcludesHash(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	created, err := repo.CreateUser(ctx, "a@b.com", "stored-hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user, err := repo.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}

	if user.Email != "a@b.com" {
		t.Errorf("Email mismatch: got %q", user.Email)
	}
	if user.PasswordHash != "" {
		t.Error("GetUserByID must not expose the password hash")
	}
}

func TestIntegrationUserRepository_GetUserByID_NotFound(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	_, err := repo.GetUserByID(ctx, 999999)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestIntegrationUserRepository_EmailExists(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	exists, err := repo.EmailExists(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("EmailExists failed: %v", err)
	}
	if exists {
		t.Error("EmailExists should be false before signup")
	}

	if _, err := repo.CreateUser(ctx, "a@b.com", "hash"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	exists, err = repo.EmailExists(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("EmailExists failed: %v", err)
	}
	if !exists {
		t.Error("EmailExists should be true after signup")
	}
}

func newUserTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetUsersSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset users schema: %v", err)
	}

	return ctx, repo
}
