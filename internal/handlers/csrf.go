package handlers

import (
	"log/slog"
	"net/http"

	pkghttp "github.com/BradenHooton/training-tracker/pkg/http"
)

// CSRFTokenIssuer generates tokens and stores them in the client's cookie
type CSRFTokenIssuer interface {
	GenerateToken() (string, error)
	PersistToken(w http.ResponseWriter, r *http.Request, token string, maxAge int)
	MaxAge() int
}

// CSRFHandler hands out double-submit tokens
type CSRFHandler struct {
	issuer CSRFTokenIssuer
	logger *slog.Logger
}

// NewCSRFHandler creates a new CSRFHandler
func NewCSRFHandler(issuer CSRFTokenIssuer, logger *slog.Logger) *CSRFHandler {
	return &CSRFHandler{issuer: issuer, logger: logger}
}

// CSRFTokenResponse is the body of GET /api/csrf
type CSRFTokenResponse struct {
	CSRFToken string `json:"csrfToken"`
}

// GetToken issues a fresh token, sets it as the csrf_token cookie and
// returns it so the client can echo it back
func (h *CSRFHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.issuer.GenerateToken()
	if err != nil {
		h.logger.Error("failed to generate csrf token", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Failed to generate CSRF token")
		return
	}

	h.issuer.PersistToken(w, r, token, h.issuer.MaxAge())
	pkghttp.WriteJSON(w, http.StatusOK, CSRFTokenResponse{CSRFToken: token})
}
