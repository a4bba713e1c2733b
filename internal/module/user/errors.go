package user

import "errors"

var (
	// ErrUserNotFound is returned when no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registering an email already in use.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountSuspended is returned when a suspended account tries to log in.
	ErrAccountSuspended = errors.New("account suspended")

	// ErrInvalidToken is returned for malformed or expired access tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrOAuthAccount is returned for a password login against a
	// Google-only account.
	ErrOAuthAccount = errors.New("account uses oauth sign-in")

	// ErrWeakPassword is returned when a password fails the policy.
	ErrWeakPassword = errors.New("password too weak")
)
