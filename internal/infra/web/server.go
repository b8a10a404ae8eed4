package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-promo-activator/internal/domain"
	"telegram-promo-activator/internal/usecase"
)

// Server exposes the admin HTTP API: aggregate stats, the account registry,
// the activation ledger, and a trigger for mass activation.
type Server struct {
	statsUC      usecase.StatsUseCase
	accountUC    usecase.AccountUseCase
	activationUC usecase.ActivationUseCase
	auth         *AuthManager
	apiKey       string
	log          *zerolog.Logger
}

func NewServer(
	statsUC usecase.StatsUseCase,
	accountUC usecase.AccountUseCase,
	activationUC usecase.ActivationUseCase,
	auth *AuthManager,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	slog := logger.With().Str("component", "AdminAPI").Logger()
	return &Server{
		statsUC:      statsUC,
		accountUC:    accountUC,
		activationUC: activationUC,
		auth:         auth,
		apiKey:       apiKey,
		log:          &slog,
	}
}

// Routes builds the router. /health and /metrics are unauthenticated; every
// /api/v1 route except login requires a session cookie or the bearer API key.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/v1/login", s.handleLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(s.requireAuth)
		pr.Get("/api/v1/stats", s.handleStats)
		pr.Get("/api/v1/accounts", s.handleAccounts)
		pr.Get("/api/v1/activations", s.handleActivations)
		pr.Post("/api/v1/activations", s.handleTriggerActivation)
	})

	return r
}

// requireAuth accepts either a valid admin session cookie or the configured
// API key as a bearer credential.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if s.bearerKeyOK(r) {
			next.ServeHTTP(w, r)
			return
		}
		if s.auth != nil && s.auth.VerifyRequest(r) == nil {
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

func (s *Server) bearerKeyOK(r *http.Request) bool {
	h := r.Header.Get("Authorization")
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(parts[1]), []byte(s.apiKey)) == 1
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if s.apiKey == "" || subtle.ConstantTimeCompare([]byte(body.APIKey), []byte(s.apiKey)) != 1 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if _, err := s.auth.Mint(w); err != nil {
		s.log.Error().Err(err).Msg("failed to mint session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	accounts, balance, activations, stars, err := s.statsUC.Totals(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("stats query failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accounts":      accounts,
		"total_balance": balance,
		"activations":   activations,
		"total_stars":   stars,
	})
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accountUC.List(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("account listing failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	type accountView struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Balance  int64  `json:"balance"`
		IsActive bool   `json:"is_active"`
	}
	out := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		// Tokens are secrets; they never leave the process.
		out = append(out, accountView{ID: a.ID, Username: a.Username, Balance: a.Balance, IsActive: a.IsActive})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleActivations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	records, err := s.statsUC.RecentActivations(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("ledger query failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	type recordView struct {
		ID          int64  `json:"id"`
		AccountID   int64  `json:"account_id"`
		PromoCode   string `json:"promo_code"`
		Success     bool   `json:"success"`
		Stars       int64  `json:"stars"`
		ActivatedAt string `json:"activated_at"`
	}
	out := make([]recordView, 0, len(records))
	for _, rec := range records {
		out = append(out, recordView{
			ID:          rec.ID,
			AccountID:   rec.AccountID,
			PromoCode:   rec.PromoCode,
			Success:     rec.Success,
			Stars:       rec.StarsReported,
			ActivatedAt: rec.ActivatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTriggerActivation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	summary, err := s.activationUC.MassActivate(r.Context(), body.Code)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyPromoCode) {
			http.Error(w, "promo code is empty", http.StatusBadRequest)
			return
		}
		s.log.Error().Err(err).Msg("mass activation failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"promo_code":  summary.PromoCode,
		"total":       summary.TotalAccounts,
		"success":     summary.SuccessCount,
		"failure":     summary.FailureCount,
		"total_stars": summary.TotalStars,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
