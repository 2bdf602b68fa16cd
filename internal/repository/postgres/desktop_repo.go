package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectDesktop = `
	SELECT d.id, d.user_id, COALESCE(u.os_name, ''), d.state, d.is_public, d.background, d.created_at, d.updated_at
	FROM desktops d
	JOIN users u ON u.id = d.user_id`

// DesktopRepository implements domain.DesktopRepository using PostgreSQL
type DesktopRepository struct {
	pool *pgxpool.Pool
}

// NewDesktopRepository creates a new DesktopRepository
func NewDesktopRepository(pool *pgxpool.Pool) *DesktopRepository {
	return &DesktopRepository{pool: pool}
}

// GetByUserID retrieves the desktop owned by a user
func (r *DesktopRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Desktop, error) {
	return scanDesktop(r.pool.QueryRow(ctx, selectDesktop+` WHERE d.user_id = $1`, uuidToPg(userID)))
}

// GetByOSName retrieves a desktop through its owner's OS name
func (r *DesktopRepository) GetByOSName(ctx context.Context, osName string) (*domain.Desktop, error) {
	return scanDesktop(r.pool.QueryRow(ctx, selectDesktop+` WHERE u.os_name = $1`, osName))
}

// UpdateState replaces the stored state document
func (r *DesktopRepository) UpdateState(ctx context.Context, userID uuid.UUID, state []byte) error {
	return r.exec(ctx, `UPDATE desktops SET state = $2::jsonb, updated_at = NOW() WHERE user_id = $1`, uuidToPg(userID), state)
}

// UpdateVisibility sets whether the desktop can be read by other users
func (r *DesktopRepository) UpdateVisibility(ctx context.Context, userID uuid.UUID, isPublic bool) error {
	return r.exec(ctx, `UPDATE desktops SET is_public = $2, updated_at = NOW() WHERE user_id = $1`, uuidToPg(userID), isPublic)
}

// UpdateBackground sets the desktop wallpaper
func (r *DesktopRepository) UpdateBackground(ctx context.Context, userID uuid.UUID, background domain.Background) error {
	return r.exec(ctx, `UPDATE desktops SET background = $2, updated_at = NOW() WHERE user_id = $1`, uuidToPg(userID), string(background))
}

// ListAfter pages through all desktops in ID order
func (r *DesktopRepository) ListAfter(ctx context.Context, afterID int32, limit int) ([]*domain.Desktop, error) {
	rows, err := r.pool.Query(ctx, selectDesktop+` WHERE d.id > $1 ORDER BY d.id LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var desktops []*domain.Desktop
	for rows.Next() {
		d, err := scanDesktop(rows)
		if err != nil {
			return nil, err
		}
		desktops = append(desktops, d)
	}
	return desktops, rows.Err()
}

func (r *DesktopRepository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDesktopNotFound
	}
	return nil
}

func scanDesktop(row pgx.Row) (*domain.Desktop, error) {
	var (
		d                    domain.Desktop
		userID               pgtype.UUID
		background           string
		createdAt, updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&d.ID, &userID, &d.OSName, &d.RawState, &d.IsPublic, &background, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDesktopNotFound
		}
		return nil, err
	}
	d.UserID = pgToUUID(userID)
	d.Background = domain.Background(background)
	d.CreatedAt = createdAt.Time
	d.UpdatedAt = updatedAt.Time
	return &d, nil
}
