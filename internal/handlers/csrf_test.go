package handlers_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/training-tracker/internal/handlers"
	"github.com/stretchr/testify/assert"
)

func TestGetCSRFToken(t *testing.T) {
	issuer := &handlers.MockCSRFIssuer{}
	w := httptest.NewRecorder()
	handlers.NewCSRFHandler(issuer, discardLogger()).GetToken(w, httptest.NewRequest("GET", "/api/csrf", nil))

	var resp handlers.CSRFTokenResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "test-csrf-token", resp.CSRFToken)
	assert.Equal(t, []string{"test-csrf-token"}, issuer.Persisted)
}

func TestGetCSRFToken_GenerationFailure(t *testing.T) {
	issuer := &handlers.MockCSRFIssuer{
		GenerateTokenFunc: func() (string, error) { return "", errors.New("entropy exhausted") },
	}
	w := httptest.NewRecorder()
	handlers.NewCSRFHandler(issuer, discardLogger()).GetToken(w, httptest.NewRequest("GET", "/api/csrf", nil))

	handlers.AssertErrorResponse(t, w, 500, "internal_error", "Failed to generate CSRF token")
	assert.Empty(t, issuer.Persisted)
}
