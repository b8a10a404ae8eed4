package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-promo-activator/internal/application"
	"telegram-promo-activator/internal/config"
	"telegram-promo-activator/internal/domain/ports/repository"
	"telegram-promo-activator/internal/infra/logging"
)

// Reply keyboard labels.
const (
	btnStats    = "📊 Stats"
	btnAccounts = "👥 Accounts"
	btnActivate = "🎁 Activate promo"
	btnBalances = "💰 Update balances"
)

// RealBotAdapter polls Telegram updates and delegates admin commands to the
// BotFacade. Two-step flows (promo code entry, token entry) run through an
// explicit per-chat state machine persisted in the state repository.
type RealBotAdapter struct {
	bot    *tgbotapi.BotAPI
	cfg    *config.BotConfig
	facade *application.BotFacade
	states repository.StateRepository
	log    *zerolog.Logger

	adminIDsMap   map[int64]struct{}
	updateWorkers int
}

func NewRealBotAdapter(cfg *config.BotConfig, facade *application.BotFacade, states repository.StateRepository, logger *zerolog.Logger) (*RealBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if states == nil {
		return nil, errors.New("state repository is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	adminMap := map[int64]struct{}{}
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	blog := logger.With().Str("component", "TelegramBot").Logger()
	return &RealBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		states:        states,
		log:           &blog,
		adminIDsMap:   adminMap,
		updateWorkers: workers,
	}, nil
}

// StartPolling consumes the update channel until ctx is cancelled or the
// channel closes. Updates are handled by a fixed set of workers.
func (r *RealBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)
	defer r.bot.StopReceivingUpdates()

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for up := range updateChan {
				if err := r.handleUpdate(ctx, up); err != nil {
					r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				close(updateChan)
				wg.Wait()
				return errors.New("update channel closed")
			}
			updateChan <- up
		}
	}
}

func (r *RealBotAdapter) isAdmin(userID int64) bool {
	_, ok := r.adminIDsMap[userID]
	return ok
}

func (r *RealBotAdapter) handleUpdate(ctx context.Context, up tgbotapi.Update) error {
	msg := up.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	chatID := msg.Chat.ID
	ctx = logging.WithChatID(ctx, chatID)

	if !r.isAdmin(msg.From.ID) {
		if msg.IsCommand() && msg.Command() == "start" {
			return r.send(chatID, "Access denied")
		}
		return nil
	}

	// A pending two-step flow consumes the next plain message.
	if !msg.IsCommand() {
		state, err := r.states.GetState(ctx, chatID)
		if err != nil {
			logging.With(ctx, r.log).Warn().Err(err).Msg("state lookup failed, treating chat as idle")
		}
		if state != nil && state.Step != repository.StepIdle {
			return r.handleStep(ctx, chatID, state.Step, msg.Text)
		}
	}

	if msg.IsCommand() {
		return r.handleCommand(ctx, chatID, msg.Command())
	}
	return r.handleMenuButton(ctx, chatID, msg.Text)
}

func (r *RealBotAdapter) handleCommand(ctx context.Context, chatID int64, command string) error {
	switch command {
	case "start":
		return r.sendMainMenu(chatID, "Bot for mass promo activation")
	case "add_account":
		if err := r.states.SetState(ctx, chatID, &repository.ConversationState{Step: repository.StepAwaitingToken}); err != nil {
			logging.With(ctx, r.log).Error().Err(err).Msg("failed to set conversation state")
			return r.send(chatID, "Try again later.")
		}
		return r.send(chatID, "Send account token:")
	default:
		return nil
	}
}

func (r *RealBotAdapter) handleMenuButton(ctx context.Context, chatID int64, text string) error {
	switch text {
	case btnStats:
		reply, err := r.facade.HandleStats(ctx)
		if err != nil {
			reply = "Failed to get stats."
		}
		return r.send(chatID, reply)
	case btnAccounts:
		reply, err := r.facade.HandleAccounts(ctx)
		if err != nil {
			reply = "Failed to list accounts."
		}
		return r.send(chatID, reply)
	case btnActivate:
		if err := r.states.SetState(ctx, chatID, &repository.ConversationState{Step: repository.StepAwaitingPromoCode}); err != nil {
			logging.With(ctx, r.log).Error().Err(err).Msg("failed to set conversation state")
			return r.send(chatID, "Try again later.")
		}
		return r.send(chatID, "Enter promo code:")
	case btnBalances:
		_ = r.send(chatID, "Updating balances...")
		reply, err := r.facade.HandleRefreshBalances(ctx)
		if err != nil {
			reply = "Failed to update balances."
		}
		return r.send(chatID, reply)
	default:
		return nil
	}
}

// handleStep completes a pending two-step flow with the message text and
// returns the chat to idle regardless of the outcome.
func (r *RealBotAdapter) handleStep(ctx context.Context, chatID int64, step, text string) error {
	if err := r.states.ClearState(ctx, chatID); err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Msg("failed to clear conversation state")
	}

	switch step {
	case repository.StepAwaitingPromoCode:
		_ = r.send(chatID, fmt.Sprintf("Activating: %s...", text))
		reply, err := r.facade.HandleActivatePromo(ctx, text)
		if err != nil {
			reply = "Activation failed."
		}
		return r.send(chatID, reply)
	case repository.StepAwaitingToken:
		reply, err := r.facade.HandleRegisterAccount(ctx, text)
		if err != nil {
			reply = "Error adding account"
		}
		return r.send(chatID, reply)
	default:
		return nil
	}
}

func (r *RealBotAdapter) sendMainMenu(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealBotAdapter) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnStats),
			tgbotapi.NewKeyboardButton(btnAccounts),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnActivate),
			tgbotapi.NewKeyboardButton(btnBalances),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}
