package studify

import (
	"fmt"
	"strings"
	"time"
)

// AuthService is the mock sign-in/sign-up layer. No credentials are checked;
// the user record is derived from the submitted form and overwritten on each
// sign-in.
type AuthService struct {
	store *Store
}

// NewAuthService creates the auth layer on top of the store's user slot.
func NewAuthService(store *Store) *AuthService {
	return &AuthService{store: store}
}

// SignIn signs in with just an email. The display name is the email's local
// part and the mock account id is fixed.
func (a *AuthService) SignIn(email string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("%w: a valid email is required", ErrAuth)
	}

	user := User{
		ID:    "user_123",
		Email: email,
		Name:  strings.SplitN(email, "@", 2)[0],
	}
	if err := a.store.SaveUser(user); err != nil {
		return User{}, err
	}
	return user, nil
}

// SignUp registers a new mock account and signs it in.
func (a *AuthService) SignUp(email, name string) (User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("%w: a valid email is required", ErrAuth)
	}
	if name == "" {
		return User{}, fmt.Errorf("%w: a name is required", ErrAuth)
	}

	user := User{
		ID:    fmt.Sprintf("user_%d", time.Now().UnixMilli()),
		Email: email,
		Name:  name,
	}
	if err := a.store.SaveUser(user); err != nil {
		return User{}, err
	}
	return user, nil
}

// SignOut removes the current user record.
func (a *AuthService) SignOut() error {
	return a.store.ClearUser()
}

// CurrentUser returns the signed-in user, or nil when signed out.
func (a *AuthService) CurrentUser() (*User, error) {
	return a.store.CurrentUser()
}
