package adapter

import "context"

// Profile is a snapshot of an account as reported by the upstream API.
type Profile struct {
	Username string
	Balance  int64
}

// ActivationResult is the raw result of one promo activation call. Success is
// strictly HTTP 200. Stars carries the response's "sum" field, which the
// upstream fills with the resulting total balance rather than a granted
// delta; it is passed through as-is.
type ActivationResult struct {
	Success    bool
	StatusCode int
	Stars      int64
}

// GiftsBattleAdapter wraps the upstream account API.
//
// FetchProfile returns domain.ErrProfileUnavailable for any non-200 response,
// network fault or timeout; callers cannot distinguish a revoked token from a
// transient failure. Known limitation, no retry layer exists.
type GiftsBattleAdapter interface {
	FetchProfile(ctx context.Context, token string) (*Profile, error)
	Activate(ctx context.Context, token, promoCode string) (ActivationResult, error)
}
