// File: internal/infra/adapters/giftsbattle/client.go
package giftsbattle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"telegram-promo-activator/internal/config"
	"telegram-promo-activator/internal/domain"
	"telegram-promo-activator/internal/domain/ports/adapter"
	"telegram-promo-activator/internal/infra/logging"
)

var _ adapter.GiftsBattleAdapter = (*Client)(nil)

// Client talks to the GiftsBattle account API. It is stateless; one instance
// is shared by all concurrent batch units.
type Client struct {
	baseURL string
	client  *http.Client
	log     *zerolog.Logger
}

func NewClient(cfg *config.GiftsBattleConfig, logger *zerolog.Logger) (*Client, error) {
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid giftsbattle base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	clog := logger.With().Str("component", "GiftsBattleClient").Logger()
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		log:     &clog,
	}, nil
}

// setHeaders applies the browser-like header set the upstream expects plus
// the bearer credential.
func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://giftsbattle.app")
	req.Header.Set("Referer", "https://giftsbattle.app/")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Authorization", "Bearer "+token)
}

type profilePayload struct {
	Username string `json:"telegram_username"`
	Sum      int64  `json:"sum"`
}

// FetchProfile returns the account snapshot behind a token. Any non-200
// status, network fault or timeout maps to domain.ErrProfileUnavailable; a
// revoked token and a transient fault are indistinguishable here.
func (c *Client) FetchProfile(ctx context.Context, token string) (*adapter.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("token", logging.Redact(token)).Msg("profile fetch failed")
		return nil, domain.ErrProfileUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Str("token", logging.Redact(token)).Msg("profile fetch rejected")
		return nil, domain.ErrProfileUnavailable
	}
	var p profilePayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		c.log.Warn().Err(err).Msg("profile response malformed")
		return nil, domain.ErrProfileUnavailable
	}
	return &adapter.Profile{Username: p.Username, Balance: p.Sum}, nil
}

// Activate redeems a promo code for one account. Success is strictly HTTP
// 200. A transport fault is returned as an error; the caller records it as a
// failed outcome. No retries: one failed attempt is final for the run.
func (c *Client) Activate(ctx context.Context, token, promoCode string) (adapter.ActivationResult, error) {
	body, _ := json.Marshal(map[string]string{"code_data": promoCode})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/promo/activate/", bytes.NewReader(body))
	if err != nil {
		return adapter.ActivationResult{}, err
	}
	c.setHeaders(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		return adapter.ActivationResult{}, err
	}
	defer resp.Body.Close()

	res := adapter.ActivationResult{
		Success:    resp.StatusCode == http.StatusOK,
		StatusCode: resp.StatusCode,
	}
	if res.Success {
		var p profilePayload
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			// Activation went through; only the balance readout is lost.
			c.log.Warn().Err(err).Msg("activation response malformed")
		} else {
			res.Stars = p.Sum
		}
	}
	return res, nil
}
