package main

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/clutchworks/authcore"
)

type api struct {
	svc           *authcore.Service
	logger        *zerolog.Logger
	validate      *validator.Validate
	trustForwards bool
}

func newAPI(svc *authcore.Service, logger *zerolog.Logger, trustForwards bool) *api {
	return &api{
		svc:           svc,
		logger:        logger,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		trustForwards: trustForwards,
	}
}

func (a *api) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", a.handleLogin)
	mux.HandleFunc("POST /auth/refresh", a.handleRefresh)
	mux.HandleFunc("POST /auth/logout", a.handleLogout)
	mux.HandleFunc("GET /auth/me", a.handleMe)
	mux.HandleFunc("GET /healthz", a.handleHealth)
	return mux
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Account      accountResponse `json:"account"`
}

type accountResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

func toTokenResponse(res *authcore.LoginResult) tokenResponse {
	return tokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Account: accountResponse{
			ID:      res.Account.ID,
			Email:   res.Account.Email,
			Name:    res.Account.Name,
			IsAdmin: res.Account.IsAdmin,
		},
	}
}

func (a *api) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !a.decode(w, r, &req) {
		return
	}

	res, err := a.svc.Login(r.Context(), req.Email, req.Password, a.clientIP(r), r.UserAgent())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toTokenResponse(res))
}

func (a *api) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !a.decode(w, r, &req) {
		return
	}

	res, err := a.svc.Refresh(r.Context(), req.RefreshToken, a.clientIP(r), r.UserAgent())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toTokenResponse(res))
}

func (a *api) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		a.writeJSON(w, http.StatusUnauthorized, errorBody("missing bearer token"))
		return
	}
	if err := a.svc.Logout(r.Context(), token); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleMe(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		a.writeJSON(w, http.StatusUnauthorized, errorBody("missing bearer token"))
		return
	}
	account, err := a.svc.VerifyAccess(r.Context(), token)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, accountResponse{
		ID:      account.ID,
		Email:   account.Email,
		Name:    account.Name,
		IsAdmin: account.IsAdmin,
	})
}

func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	latency, err := a.svc.Ping(r.Context())
	if err != nil {
		a.writeJSON(w, http.StatusServiceUnavailable, errorBody("session store unreachable"))
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]string{
		"status":        "ok",
		"store_latency": latency.String(),
	})
}

func (a *api) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.writeJSON(w, http.StatusBadRequest, errorBody("malformed request body"))
		return false
	}
	if err := a.validate.Struct(dst); err != nil {
		a.writeJSON(w, http.StatusBadRequest, errorBody("invalid request"))
		return false
	}
	return true
}

// writeError maps the core's error taxonomy onto HTTP statuses. Only
// infrastructure faults become 5xx; every rejection is a 401 with a body
// that does not depend on the cause.
func (a *api) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, authcore.ErrInvalidCredentials):
		a.writeJSON(w, http.StatusUnauthorized, errorBody(authcore.ErrInvalidCredentials.Error()))
	case errors.Is(err, authcore.ErrTokenExpired):
		a.writeJSON(w, http.StatusUnauthorized, errorBody("token expired"))
	case errors.Is(err, authcore.ErrTokenInvalid):
		a.writeJSON(w, http.StatusUnauthorized, errorBody("token invalid"))
	case errors.Is(err, authcore.ErrStoreUnavailable):
		a.logger.Error().Err(err).Str("path", r.URL.Path).Msg("backend unavailable")
		a.writeJSON(w, http.StatusServiceUnavailable, errorBody("service unavailable"))
	default:
		a.logger.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		a.writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func (a *api) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Error().Err(err).Msg("write response")
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// clientIP extracts the peer address the session will be bound to. The
// forwarded header is honored only when the deployment fronts authd with
// a trusted proxy.
func (a *api) clientIP(r *http.Request) string {
	if a.trustForwards {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
