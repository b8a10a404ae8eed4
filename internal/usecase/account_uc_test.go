//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"telegram-promo-activator/internal/domain"
	"telegram-promo-activator/internal/domain/ports/adapter"
	"telegram-promo-activator/internal/usecase"
)

func TestRegisterAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("registers with profile data when the token answers", func(t *testing.T) {
		accounts := NewMockAccountRepo()
		api := &MockGiftsAPI{
			FetchProfileFunc: func(ctx context.Context, token string) (*adapter.Profile, error) {
				return &adapter.Profile{Username: "alice", Balance: 42}, nil
			},
		}
		uc := usecase.NewAccountUseCase(accounts, api, mockTxManager{}, newTestLogger())

		acc, verified, err := uc.Register(ctx, " tok-new ")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !verified {
			t.Error("expected the token probe to be reported as verified")
		}
		if acc.Token != "tok-new" || acc.Username != "alice" {
			t.Errorf("unexpected account %+v", acc)
		}
	})

	t.Run("registers even when the token probe fails", func(t *testing.T) {
		accounts := NewMockAccountRepo()
		api := &MockGiftsAPI{} // default FetchProfile returns ErrProfileUnavailable
		uc := usecase.NewAccountUseCase(accounts, api, mockTxManager{}, newTestLogger())

		acc, verified, err := uc.Register(ctx, "tok-dark")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if verified {
			t.Error("expected an unverified registration")
		}
		if acc.ID == 0 {
			t.Error("expected the store to assign an id")
		}
	})

	t.Run("re-registering a token keeps exactly one row", func(t *testing.T) {
		accounts := NewMockAccountRepo()
		api := &MockGiftsAPI{
			FetchProfileFunc: func(ctx context.Context, token string) (*adapter.Profile, error) {
				return &adapter.Profile{Username: "bob", Balance: 10}, nil
			},
		}
		uc := usecase.NewAccountUseCase(accounts, api, mockTxManager{}, newTestLogger())

		first, _, err := uc.Register(ctx, "tok-dup")
		if err != nil {
			t.Fatalf("first register: %v", err)
		}
		second, _, err := uc.Register(ctx, "tok-dup")
		if err != nil {
			t.Fatalf("second register: %v", err)
		}
		if accounts.Count() != 1 {
			t.Errorf("expected 1 account row, got %d", accounts.Count())
		}
		if first.ID != second.ID {
			t.Errorf("expected the same row id, got %d and %d", first.ID, second.ID)
		}
	})

	t.Run("rejects blank tokens", func(t *testing.T) {
		uc := usecase.NewAccountUseCase(NewMockAccountRepo(), &MockGiftsAPI{}, mockTxManager{}, newTestLogger())
		if _, _, err := uc.Register(ctx, "   "); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
