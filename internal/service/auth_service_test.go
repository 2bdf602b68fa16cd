package service

import (
	"context"
	"testing"

	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/dafibh/osdesk/osdesk-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestAuthenticateUser_NewUser(t *testing.T) {
	userRepo, desktopRepo := testutil.NewMockRepositories()
	service := NewAuthService(userRepo, desktopRepo)

	auth0ID := "auth0|12345"
	email := "test@example.com"
	name := "Test User"

	result, err := service.AuthenticateUser(context.Background(), auth0ID, email, &name, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.User == nil {
		t.Fatal("Expected user, got nil")
	}

	if result.User.Auth0ID != auth0ID {
		t.Errorf("Expected auth0ID %s, got %s", auth0ID, result.User.Auth0ID)
	}

	if result.User.Email != email {
		t.Errorf("Expected email %s, got %s", email, result.User.Email)
	}

	if result.HasDesktop() {
		t.Error("Expected no desktop before OS name registration")
	}
}

func TestAuthenticateUser_RegisteredUser(t *testing.T) {
	userRepo, desktopRepo := testutil.NewMockRepositories()
	service := NewAuthService(userRepo, desktopRepo)

	osName := "alice"
	user := &domain.User{
		ID:      uuid.New(),
		Auth0ID: "auth0|alice",
		Email:   "alice@example.com",
		OSName:  &osName,
	}
	userRepo.AddUser(user)
	desktopRepo.AddDesktop(&domain.Desktop{UserID: user.ID, Background: domain.BackgroundOcean})

	result, err := service.AuthenticateUser(context.Background(), user.Auth0ID, user.Email, nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !result.HasDesktop() {
		t.Fatal("Expected desktop for registered user")
	}

	if result.Desktop.OSName != osName {
		t.Errorf("Expected os name %s, got %s", osName, result.Desktop.OSName)
	}

	if result.Desktop.Background != domain.BackgroundOcean {
		t.Errorf("Expected background OCEAN, got %s", result.Desktop.Background)
	}
}

func TestCurrentUser(t *testing.T) {
	userRepo, desktopRepo := testutil.NewMockRepositories()
	service := NewAuthService(userRepo, desktopRepo)

	user := &domain.User{ID: uuid.New(), Auth0ID: "auth0|me", Email: "me@example.com"}
	userRepo.AddUser(user)

	t.Run("known user", func(t *testing.T) {
		result, err := service.CurrentUser(context.Background(), "auth0|me")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if result.User.ID != user.ID {
			t.Errorf("Expected user %s, got %s", user.ID, result.User.ID)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := service.CurrentUser(context.Background(), "auth0|ghost")
		if err != domain.ErrUserNotFound {
			t.Errorf("Expected ErrUserNotFound, got %v", err)
		}
	})
}
