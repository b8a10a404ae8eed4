package model

import "time"

// ActivationRecord is one row of the append-only activation ledger: one
// attempt for one account. The same promo code may be attempted more than
// once; every attempt gets its own row.
type ActivationRecord struct {
	ID        int64
	AccountID int64
	PromoCode string
	Success   bool
	// StarsReported stores the numeric "sum" field of a successful activation
	// response. The upstream reports the account's resulting total balance
	// there, not the stars granted by this code; the value is kept exactly as
	// reported. Failed attempts store 0.
	StarsReported int64
	ActivatedAt   time.Time
}

// ActivationOutcome is the transient result of one remote activation call.
// It lives for the duration of a single batch and is folded into the
// batch summary.
type ActivationOutcome struct {
	AccountID  int64
	Success    bool
	StatusCode int
	Stars      int64
}

// ActivationSummary is the aggregate report of one mass-activation batch.
type ActivationSummary struct {
	PromoCode     string
	TotalAccounts int
	SuccessCount  int
	FailureCount  int
	TotalStars    int64
}

// SummarizeOutcomes reduces a completed outcome set into a batch summary.
// Failed outcomes contribute zero stars.
func SummarizeOutcomes(promoCode string, outcomes []ActivationOutcome) *ActivationSummary {
	s := &ActivationSummary{
		PromoCode:     promoCode,
		TotalAccounts: len(outcomes),
	}
	for _, o := range outcomes {
		if o.Success {
			s.SuccessCount++
			s.TotalStars += o.Stars
		}
	}
	s.FailureCount = s.TotalAccounts - s.SuccessCount
	return s
}
