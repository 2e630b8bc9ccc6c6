package studify

import (
	"errors"
	"strings"
	"testing"
)

func TestSignInDerivesNameFromEmail(t *testing.T) {
	auth := NewAuthService(newTestStore(t))

	user, err := auth.SignIn("maria@example.com")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if user.ID != "user_123" {
		t.Fatalf("expected mock id user_123, got %s", user.ID)
	}
	if user.Name != "maria" || user.Email != "maria@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	stored, err := auth.CurrentUser()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if stored == nil || stored.Email != user.Email {
		t.Fatalf("expected user persisted, got %+v", stored)
	}
}

func TestSignInRejectsInvalidEmail(t *testing.T) {
	auth := NewAuthService(newTestStore(t))

	for _, email := range []string{"", "   ", "not-an-email"} {
		if _, err := auth.SignIn(email); !errors.Is(err, ErrAuth) {
			t.Fatalf("expected ErrAuth for %q, got %v", email, err)
		}
	}
}

func TestSignUpCreatesAccount(t *testing.T) {
	auth := NewAuthService(newTestStore(t))

	user, err := auth.SignUp("joao@example.com", "João")
	if err != nil {
		t.Fatalf("sign up failed: %v", err)
	}
	if !strings.HasPrefix(user.ID, "user_") {
		t.Fatalf("unexpected id: %s", user.ID)
	}
	if user.Name != "João" || user.Email != "joao@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestSignUpRequiresName(t *testing.T) {
	auth := NewAuthService(newTestStore(t))
	if _, err := auth.SignUp("joao@example.com", " "); !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}

func TestSignOutClearsUser(t *testing.T) {
	auth := NewAuthService(newTestStore(t))

	if _, err := auth.SignIn("maria@example.com"); err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if err := auth.SignOut(); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}

	user, err := auth.CurrentUser()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if user != nil {
		t.Fatalf("expected signed out, got %+v", user)
	}
}
