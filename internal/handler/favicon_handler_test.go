package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dafibh/osdesk/osdesk-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaviconLookup_RejectsBadTargets(t *testing.T) {
	h := NewFaviconHandler(service.NewFaviconService(time.Second))

	tests := []struct {
		name   string
		target string
	}{
		{"missing url", ""},
		{"relative url", "/just/a/path"},
		{"unsupported scheme", "ftp://example.com/"},
		{"loopback host", "http://127.0.0.1:8080/"},
		{"metadata host", "http://169.254.169.254/latest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			target := "/api/v1/favicon"
			if tt.target != "" {
				target += "?url=" + url.QueryEscape(tt.target)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec)
			setupAuthContext(c, "auth0|web", "web@example.com", "", "")

			require.NoError(t, h.Lookup(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "url", decodeProblem(t, rec).Errors[0].Field)
		})
	}
}
