package handlers_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/training-tracker/internal/handlers"
	"github.com/stretchr/testify/assert"
)

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.NewHealthHandler(&handlers.MockPinger{}, discardLogger()).Health(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"up"}`, w.Body.String())

	w = httptest.NewRecorder()
	handlers.NewHealthHandler(&handlers.MockPinger{Err: errors.New("down")}, discardLogger()).Health(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 503, w.Code)
}
