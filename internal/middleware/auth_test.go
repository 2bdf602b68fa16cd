package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
)

func TestGetAuth0ID(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name     string
		setup    func(c echo.Context)
		expected string
	}{
		{
			name: "returns auth0 id when present",
			setup: func(c echo.Context) {
				ctx := context.WithValue(c.Request().Context(), Auth0IDKey, "auth0|12345")
				c.SetRequest(c.Request().WithContext(ctx))
			},
			expected: "auth0|12345",
		},
		{
			name:     "returns empty string when not present",
			setup:    func(c echo.Context) {},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			tt.setup(c)

			result := GetAuth0ID(c)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestGetClaims(t *testing.T) {
	e := echo.New()

	t.Run("returns claims when present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		claims := &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{
				Subject: "auth0|test",
			},
		}
		ctx := context.WithValue(c.Request().Context(), ClaimsKey, claims)
		c.SetRequest(c.Request().WithContext(ctx))

		result := GetClaims(c)
		if result == nil {
			t.Fatal("Expected claims, got nil")
		}
		if result.RegisteredClaims.Subject != "auth0|test" {
			t.Errorf("Expected subject 'auth0|test', got %q", result.RegisteredClaims.Subject)
		}
	})

	t.Run("returns nil when not present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		result := GetClaims(c)
		if result != nil {
			t.Error("Expected nil, got claims")
		}
	})
}

func TestGetCustomClaims(t *testing.T) {
	e := echo.New()

	t.Run("returns custom claims when present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		customClaims := &CustomClaims{
			Email:   "test@example.com",
			Name:    "Test User",
			Picture: "https://example.com/pic.jpg",
		}
		claims := &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{
				Subject: "auth0|test",
			},
			CustomClaims: customClaims,
		}
		ctx := context.WithValue(c.Request().Context(), ClaimsKey, claims)
		c.SetRequest(c.Request().WithContext(ctx))

		result := GetCustomClaims(c)
		if result == nil {
			t.Fatal("Expected custom claims, got nil")
		}
		if result.Email != "test@example.com" {
			t.Errorf("Expected email 'test@example.com', got %q", result.Email)
		}
		if result.Name != "Test User" {
			t.Errorf("Expected name 'Test User', got %q", result.Name)
		}
	})

	t.Run("returns nil when claims not present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		result := GetCustomClaims(c)
		if result != nil {
			t.Error("Expected nil, got custom claims")
		}
	})
}

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{
		Email: "test@example.com",
		Name:  "Test",
	}

	err := claims.Validate(context.Background())
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}


// fakeValidator accepts a single token and returns claims for subject
type fakeValidator struct {
	token   string
	subject string
}

func (f *fakeValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	if token != f.token {
		return nil, errors.New("bad token")
	}
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: f.subject},
		CustomClaims:     &CustomClaims{Email: "owner@example.com"},
	}, nil
}

func newTestAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{validator: &fakeValidator{token: "good-token", subject: "auth0|owner"}}
}

func runAuth(t *testing.T, mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, string, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/desktop", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	called := false
	err := mw(func(c echo.Context) error {
		called = true
		seen = GetAuth0ID(c)
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return rec, seen, called
}

func TestAuthenticate(t *testing.T) {
	m := newTestAuthMiddleware()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCalled bool
		wantDetail string
	}{
		{"valid token", "Bearer good-token", http.StatusOK, true, ""},
		{"lowercase scheme", "bearer good-token", http.StatusOK, true, ""},
		{"missing header", "", http.StatusUnauthorized, false, "missing authorization header"},
		{"no bearer prefix", "good-token", http.StatusUnauthorized, false, "invalid authorization header format"},
		{"wrong prefix", "Basic token123", http.StatusUnauthorized, false, "invalid authorization header format"},
		{"empty token", "Bearer ", http.StatusUnauthorized, false, "invalid authorization header format"},
		{"rejected token", "Bearer other", http.StatusUnauthorized, false, "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, seen, called := runAuth(t, m.Authenticate(), tt.header)
			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if called != tt.wantCalled {
				t.Errorf("Expected handler called=%v, got %v", tt.wantCalled, called)
			}
			if tt.wantCalled && seen != "auth0|owner" {
				t.Errorf("Expected auth0 id in context, got %q", seen)
			}
			if tt.wantDetail != "" {
				var body problemDetails
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("Expected problem details body, got %v", err)
				}
				if body.Detail != tt.wantDetail {
					t.Errorf("Expected detail %q, got %q", tt.wantDetail, body.Detail)
				}
				if body.Type != errorTypeUnauthorized {
					t.Errorf("Expected type %q, got %q", errorTypeUnauthorized, body.Type)
				}
			}
		})
	}
}

func TestOptionalAuthenticate(t *testing.T) {
	m := newTestAuthMiddleware()

	t.Run("anonymous request passes without identity", func(t *testing.T) {
		rec, seen, called := runAuth(t, m.OptionalAuthenticate(), "")
		if rec.Code != http.StatusOK || !called {
			t.Fatalf("Expected handler to run, got status %d", rec.Code)
		}
		if seen != "" {
			t.Errorf("Expected empty auth0 id, got %q", seen)
		}
	})

	t.Run("valid token sets identity", func(t *testing.T) {
		_, seen, called := runAuth(t, m.OptionalAuthenticate(), "Bearer good-token")
		if !called || seen != "auth0|owner" {
			t.Errorf("Expected auth0|owner, got %q (called=%v)", seen, called)
		}
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		rec, _, called := runAuth(t, m.OptionalAuthenticate(), "Bearer expired")
		if rec.Code != http.StatusUnauthorized || called {
			t.Errorf("Expected 401 without calling handler, got %d (called=%v)", rec.Code, called)
		}
	})
}
