//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"direct_messenger/internal/domain"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
)

// UserRepository is the identity store. Email and username are unique and
// compared exactly.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error)
	ListExcept(ctx context.Context, excludeID uuid.UUID, search string) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	SetOnline(ctx context.Context, id uuid.UUID, online bool, at time.Time) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	Stats(ctx context.Context) (*domain.UserStats, error)
}

const userColumns = `id, email, username, display_name, password_hash, avatar_url, bio,
	is_online, last_seen_at, created_at, seq`

type userRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewUserRepository(db *pgxpool.Pool, log logger.Logger) UserRepository {
	return &userRepository{db: db, log: log}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.DisplayName, &user.PasswordHash,
		&user.AvatarURL, &user.Bio, &user.IsOnline, &user.LastSeenAt, &user.CreatedAt, &user.Seq,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, username, display_name, password_hash, avatar_url, bio, is_online, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq, created_at
	`

	err := r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.Username, user.DisplayName, user.PasswordHash,
		user.AvatarURL, user.Bio, user.IsOnline, user.CreatedAt,
	).Scan(&user.Seq, &user.CreatedAt)

	if err != nil {
		// Код 23505 = unique_violation (email или username)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.log.Warn("User already exists (unique violation)", "email", user.Email, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("create user: %w", apperrors.ErrDuplicateIdentity)
		}
		r.log.Error("Failed to create user", "error", err, "email", user.Email)
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
		}
		r.log.Error("Failed to get user by ID", "error", err)
		return nil, err
	}
	return user, nil
}

// GetByIdentifier matches an email first, then a username.
func (r *userRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 OR username = $1
		ORDER BY (email = $1) DESC
		LIMIT 1
	`

	user, err := scanUser(r.db.QueryRow(ctx, query, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", identifier, apperrors.ErrNotFound)
		}
		r.log.Error("Failed to get user by identifier", "error", err)
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	users := make(map[uuid.UUID]*domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1::uuid[])`

	rows, err := r.db.Query(ctx, query, uuidStrings(ids))
	if err != nil {
		r.log.Error("Failed to get users by IDs", "error", err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			r.log.Error("Failed to scan user", "error", err)
			return nil, err
		}
		users[user.ID] = user
	}
	return users, rows.Err()
}

func (r *userRepository) ListExcept(ctx context.Context, excludeID uuid.UUID, search string) ([]*domain.User, error) {
	// strpos вместо LIKE, чтобы не экранировать % и _ в поиске
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE id <> $1
		  AND ($2 = '' OR strpos(lower(display_name), lower($2)) > 0 OR strpos(lower(username), lower($2)) > 0)
		ORDER BY seq
	`

	rows, err := r.db.Query(ctx, query, excludeID, search)
	if err != nil {
		r.log.Error("Failed to list users", "error", err)
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			r.log.Error("Failed to scan user", "error", err)
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET display_name = $2, bio = $3, avatar_url = $4
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, user.ID, user.DisplayName, user.Bio, user.AvatarURL)
	if err != nil {
		r.log.Error("Failed to update user", "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", user.ID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *userRepository) SetOnline(ctx context.Context, id uuid.UUID, online bool, at time.Time) error {
	query := `
		UPDATE users
		SET is_online = $2,
		    last_seen_at = CASE WHEN $2 THEN last_seen_at ELSE $3 END
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, online, at)
	if err != nil {
		r.log.Error("Failed to update online status", "error", err, "user_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check username", "error", err)
		return false, err
	}
	return exists, nil
}

func (r *userRepository) Stats(ctx context.Context) (*domain.UserStats, error) {
	stats := &domain.UserStats{}
	err := r.db.QueryRow(ctx, `SELECT count(*), count(*) FILTER (WHERE is_online) FROM users`).
		Scan(&stats.Total, &stats.Online)
	if err != nil {
		r.log.Error("Failed to count users", "error", err)
		return nil, err
	}
	return stats, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	return lo.Map(ids, func(id uuid.UUID, _ int) string { return id.String() })
}
