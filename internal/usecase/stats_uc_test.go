//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"telegram-promo-activator/internal/domain/model"
	"telegram-promo-activator/internal/domain/ports/repository"
	"telegram-promo-activator/internal/usecase"
)

func TestStatsUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("Totals aggregates registry and ledger", func(t *testing.T) {
		accounts := NewMockAccountRepo()
		ledger := NewMockActivationRepo()
		seedAccounts(t, accounts, 3)
		for i := int64(1); i <= 3; i++ {
			_ = accounts.UpdateBalance(ctx, repository.NoTX, i, 100)
		}
		_ = ledger.Record(ctx, repository.NoTX, &model.ActivationRecord{AccountID: 1, PromoCode: "A", Success: true, StarsReported: 50, ActivatedAt: time.Now()})
		_ = ledger.Record(ctx, repository.NoTX, &model.ActivationRecord{AccountID: 2, PromoCode: "A", Success: false, ActivatedAt: time.Now()})

		uc := usecase.NewStatsUseCase(accounts, ledger, newTestLogger())
		n, balance, activations, stars, err := uc.Totals(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 3 {
			t.Errorf("expected 3 accounts, got %d", n)
		}
		if balance != 300 {
			t.Errorf("expected total balance 300, got %d", balance)
		}
		if activations != 1 {
			t.Errorf("expected 1 successful activation, got %d", activations)
		}
		if stars != 50 {
			t.Errorf("expected 50 stars, got %d", stars)
		}
	})

	t.Run("RecentActivations honors the limit, newest first", func(t *testing.T) {
		accounts := NewMockAccountRepo()
		ledger := NewMockActivationRepo()
		for i := 0; i < 5; i++ {
			_ = ledger.Record(ctx, repository.NoTX, &model.ActivationRecord{AccountID: int64(i + 1), PromoCode: "X", Success: true, ActivatedAt: time.Now()})
		}

		uc := usecase.NewStatsUseCase(accounts, ledger, newTestLogger())
		recent, err := uc.RecentActivations(ctx, 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(recent) != 2 {
			t.Fatalf("expected 2 records, got %d", len(recent))
		}
		if recent[0].AccountID != 5 {
			t.Errorf("expected newest record first, got account %d", recent[0].AccountID)
		}
	})
}
