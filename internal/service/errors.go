package service

import "errors"

// Sentinel errors surfaced to controllers. Wrong-password and no-such-user
// map to the same error on purpose.
var (
	ErrDuplicateAccount = errors.New("email already registered")
	ErrWrongCredential  = errors.New("invalid credentials")
	ErrAccountBlocked   = errors.New("account is blocked")
	ErrOAuthOnlyAccount = errors.New("account uses provider sign-in")
	ErrAccountConflict  = errors.New("account exists with different credential")
	ErrInvalidRefresh   = errors.New("invalid or expired refresh token")
	ErrNotFound         = errors.New("not found")
)
