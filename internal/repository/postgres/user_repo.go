package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

const userColumns = `id, auth0_id, email, name, picture_url, os_name, created_at, updated_at`

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByAuth0ID retrieves a user by their Auth0 ID
func (r *UserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE auth0_id = $1`, auth0ID)
	return scanUser(row)
}

// ExistsByOSName reports whether any user currently holds osName
func (r *UserRepository) ExistsByOSName(ctx context.Context, osName string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE os_name = $1)`, osName).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// CreateOrGetByAuth0ID creates a new user or returns existing one (upsert on login)
func (r *UserRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (auth0_id, email, name, picture_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (auth0_id) DO UPDATE
		SET email = EXCLUDED.email,
		    name = COALESCE(users.name, EXCLUDED.name),
		    picture_url = EXCLUDED.picture_url,
		    updated_at = NOW()
		RETURNING `+userColumns,
		auth0ID, email, stringPtrToPgText(name), stringPtrToPgText(pictureURL),
	)
	return scanUser(row)
}

// RegisterOSName assigns osName to the user and creates their desktop atomically
func (r *UserRepository) RegisterOSName(ctx context.Context, userID uuid.UUID, osName string, initialState []byte) (*domain.Desktop, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	pgID := uuidToPg(userID)

	tag, err := tx.Exec(ctx, `
		UPDATE users SET os_name = $2, updated_at = NOW()
		WHERE id = $1 AND os_name IS NULL`,
		pgID, osName,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrOSNameTaken
		}
		return nil, fmt.Errorf("failed to set os name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, pgID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.ErrOSNameAlreadySet
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO desktops (user_id, state)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (user_id) DO NOTHING`,
		pgID, initialState,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create desktop: %w", err)
	}

	desktop, err := scanDesktop(tx.QueryRow(ctx, selectDesktop+` WHERE d.user_id = $1`, pgID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrOSNameTaken
		}
		return nil, err
	}
	return desktop, nil
}

// Helper functions

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		id                    pgtype.UUID
		auth0ID, email        string
		name, picture, osName pgtype.Text
		createdAt, updatedAt  pgtype.Timestamptz
	)
	if err := row.Scan(&id, &auth0ID, &email, &name, &picture, &osName, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &domain.User{
		ID:         pgToUUID(id),
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       pgTextToStringPtr(name),
		PictureURL: pgTextToStringPtr(picture),
		OSName:     pgTextToStringPtr(osName),
		CreatedAt:  createdAt.Time,
		UpdatedAt:  updatedAt.Time,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func uuidToPg(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func pgToUUID(id pgtype.UUID) uuid.UUID {
	parsed, _ := uuid.FromBytes(id.Bytes[:])
	return parsed
}

func stringPtrToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func pgTextToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}
