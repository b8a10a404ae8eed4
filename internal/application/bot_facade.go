package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telegram-promo-activator/internal/domain"
	"telegram-promo-activator/internal/usecase"
)

// accountsDisplayLimit caps the bot's account listing; the tail is summarized.
const accountsDisplayLimit = 20

// BotFacade composes usecases into high-level bot commands.
// Facade methods return rendered strings so the Telegram adapter just
// forwards them to the chat.
type BotFacade struct {
	AccountUC    usecase.AccountUseCase
	ActivationUC usecase.ActivationUseCase
	BalanceUC    usecase.BalanceUseCase
	StatsUC      usecase.StatsUseCase
}

func NewBotFacade(
	accountUC usecase.AccountUseCase,
	activationUC usecase.ActivationUseCase,
	balanceUC usecase.BalanceUseCase,
	statsUC usecase.StatsUseCase,
) *BotFacade {
	return &BotFacade{
		AccountUC:    accountUC,
		ActivationUC: activationUC,
		BalanceUC:    balanceUC,
		StatsUC:      statsUC,
	}
}

// HandleStats renders the aggregate view of the registry and the ledger.
func (b *BotFacade) HandleStats(ctx context.Context) (string, error) {
	accounts, balance, activations, stars, err := b.StatsUC.Totals(ctx)
	if err != nil {
		return "", fmt.Errorf("stats: %w", err)
	}
	return fmt.Sprintf(
		"📊 Stats\n\nAccounts: %d\nTotal balance: %d stars\nActivations: %d\nTotal stars: %d",
		accounts, balance, activations, stars,
	), nil
}

// HandleAccounts renders the first accounts with a truncation tail.
func (b *BotFacade) HandleAccounts(ctx context.Context) (string, error) {
	accounts, err := b.AccountUC.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return "No accounts", nil
	}
	sb := strings.Builder{}
	sb.WriteString("Accounts:\n\n")
	for i, acc := range accounts {
		if i == accountsDisplayLimit {
			break
		}
		name := acc.Username
		if name == "" {
			name = "N/A"
		}
		sb.WriteString(fmt.Sprintf("%d. @%s - %d stars\n", i+1, name, acc.Balance))
	}
	if len(accounts) > accountsDisplayLimit {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(accounts)-accountsDisplayLimit))
	}
	return sb.String(), nil
}

// HandleActivatePromo runs one mass-activation batch and renders its report.
func (b *BotFacade) HandleActivatePromo(ctx context.Context, promoCode string) (string, error) {
	s, err := b.ActivationUC.MassActivate(ctx, promoCode)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyPromoCode) {
			return "Empty promo code", nil
		}
		return "", fmt.Errorf("mass activate: %w", err)
	}
	return fmt.Sprintf(
		"🎁 Activation report: %s\n\nSuccess: %d\nFailed: %d\nStars received: %d\nTotal accounts: %d",
		s.PromoCode, s.SuccessCount, s.FailureCount, s.TotalStars, s.TotalAccounts,
	), nil
}

// HandleRegisterAccount registers a token and renders the result.
func (b *BotFacade) HandleRegisterAccount(ctx context.Context, token string) (string, error) {
	acc, verified, err := b.AccountUC.Register(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return "Empty token", nil
		}
		return "", fmt.Errorf("register account: %w", err)
	}
	if !verified {
		return "Account added but token check failed", nil
	}
	name := acc.Username
	if name == "" {
		name = "N/A"
	}
	return fmt.Sprintf("Account added: @%s", name), nil
}

// HandleRefreshBalances re-polls every account and renders the updated count.
func (b *BotFacade) HandleRefreshBalances(ctx context.Context) (string, error) {
	updated, err := b.BalanceUC.RefreshBalances(ctx)
	if err != nil {
		return "", fmt.Errorf("refresh balances: %w", err)
	}
	return fmt.Sprintf("Updated balances for %d accounts", updated), nil
}
