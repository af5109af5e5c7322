package repository

import (
	"context"
	"fmt"

	"direct_messenger/internal/domain"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConversationRepository owns the mapping from an unordered user pair to its
// single conversation.
type ConversationRepository interface {
	// FindOrCreate returns the conversation for candidate's participant pair.
	// candidate is stored only when no conversation exists for that pair yet;
	// created reports which case happened.
	FindOrCreate(ctx context.Context, candidate *domain.Conversation) (conv *domain.Conversation, created bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error)
}

type conversationRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewConversationRepository(db *pgxpool.Pool, log logger.Logger) ConversationRepository {
	return &conversationRepository{db: db, log: log}
}

// FindOrCreate relies on the unique pair_key: a concurrent insert for the same
// pair blocks on the index until the first transaction commits, then falls
// through to the select.
func (r *conversationRepository) FindOrCreate(ctx context.Context, candidate *domain.Conversation) (*domain.Conversation, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin transaction", "error", err)
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO conversations (id, pair_key, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (pair_key) DO NOTHING
	`, candidate.ID, candidate.PairKey(), candidate.CreatedAt)
	if err != nil {
		r.log.Error("Failed to insert conversation", "error", err)
		return nil, false, err
	}

	if tag.RowsAffected() == 0 {
		conv := &domain.Conversation{Participants: candidate.Participants}
		err := tx.QueryRow(ctx, `SELECT id, created_at FROM conversations WHERE pair_key = $1`, candidate.PairKey()).
			Scan(&conv.ID, &conv.CreatedAt)
		if err != nil {
			r.log.Error("Failed to load existing conversation", "error", err)
			return nil, false, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, false, err
		}
		return conv, false, nil
	}

	for _, userID := range candidate.Participants {
		_, err := tx.Exec(ctx, `
			INSERT INTO conversation_participants (conversation_id, user_id, joined_at)
			VALUES ($1, $2, $3)
		`, candidate.ID, userID, candidate.CreatedAt)
		if err != nil {
			r.log.Error("Failed to insert participant", "error", err, "user_id", userID)
			return nil, false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit conversation", "error", err)
		return nil, false, err
	}

	conv := *candidate
	return &conv, true, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.created_at, p.user_id
		FROM conversations c
		JOIN conversation_participants p ON p.conversation_id = c.id
		WHERE c.id = $1
	`, id)
	if err != nil {
		r.log.Error("Failed to get conversation", "error", err)
		return nil, err
	}

	convs, err := collectConversations(rows)
	if err != nil {
		r.log.Error("Failed to scan conversation", "error", err)
		return nil, err
	}
	if len(convs) == 0 {
		return nil, fmt.Errorf("conversation %s: %w", id, apperrors.ErrNotFound)
	}
	return convs[0], nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.created_at, p.user_id
		FROM conversations c
		JOIN conversation_participants me ON me.conversation_id = c.id AND me.user_id = $1
		JOIN conversation_participants p ON p.conversation_id = c.id
		ORDER BY c.created_at, c.id
	`, userID)
	if err != nil {
		r.log.Error("Failed to list conversations", "error", err, "user_id", userID)
		return nil, err
	}

	convs, err := collectConversations(rows)
	if err != nil {
		r.log.Error("Failed to scan conversations", "error", err)
		return nil, err
	}
	return convs, nil
}

// collectConversations folds (conversation, participant) rows into
// conversations, keeping row order. Rows of one conversation must be adjacent.
func collectConversations(rows pgx.Rows) ([]*domain.Conversation, error) {
	defer rows.Close()

	var (
		convs   []*domain.Conversation
		members []uuid.UUID
		current *domain.Conversation
	)
	flush := func() error {
		if current == nil {
			return nil
		}
		if len(members) != 2 {
			return fmt.Errorf("conversation %s has %d participants", current.ID, len(members))
		}
		current.Participants = domain.OrderedPair(members[0], members[1])
		convs = append(convs, current)
		return nil
	}

	for rows.Next() {
		var (
			id     uuid.UUID
			userID uuid.UUID
			conv   domain.Conversation
		)
		if err := rows.Scan(&id, &conv.CreatedAt, &userID); err != nil {
			return nil, err
		}
		if current == nil || current.ID != id {
			if err := flush(); err != nil {
				return nil, err
			}
			conv.ID = id
			current = &conv
			members = members[:0]
		}
		members = append(members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return convs, nil
}
