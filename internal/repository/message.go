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
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository is the append-only log of every conversation.
type MessageRepository interface {
	// Append stores msg, assigning Seq and moving CreatedAt past the previous
	// message of the same conversation when the clock has not advanced.
	Append(ctx context.Context, msg *domain.Message) error
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*domain.Message, error)
	// Last returns nil without error when the conversation has no messages.
	Last(ctx context.Context, conversationID uuid.UUID) (*domain.Message, error)
	LastByConversations(ctx context.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]*domain.Message, error)
}

// Timestamps are kept at microsecond precision, the resolution of timestamptz.
const timestampResolution = time.Microsecond

// nextTimestamp returns candidate, or the smallest instant after last when
// candidate would not sort strictly after it.
func nextTimestamp(last *time.Time, candidate time.Time) time.Time {
	candidate = candidate.UTC().Truncate(timestampResolution)
	if last != nil && !candidate.After(*last) {
		return last.UTC().Add(timestampResolution)
	}
	return candidate
}

const messageColumns = `id, conversation_id, sender_id, content, is_read, created_at, seq`

type messageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMessageRepository(db *pgxpool.Pool, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	msg := &domain.Message{}
	err := row.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.IsRead, &msg.CreatedAt, &msg.Seq)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *messageRepository) Append(ctx context.Context, msg *domain.Message) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin transaction", "error", err)
		return err
	}
	defer tx.Rollback(ctx)

	// Блокируем строку диалога: сообщения одного диалога пишутся строго по очереди
	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM conversations WHERE id = $1 FOR UPDATE`, msg.ConversationID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("conversation %s: %w", msg.ConversationID, apperrors.ErrNotFound)
		}
		r.log.Error("Failed to lock conversation", "error", err)
		return err
	}

	var last *time.Time
	err = tx.QueryRow(ctx, `SELECT max(created_at) FROM messages WHERE conversation_id = $1`, msg.ConversationID).Scan(&last)
	if err != nil {
		r.log.Error("Failed to read last message time", "error", err)
		return err
	}
	msg.CreatedAt = nextTimestamp(last, msg.CreatedAt)

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, content, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq
	`, msg.ID, msg.ConversationID, msg.SenderID, msg.Content, msg.IsRead, msg.CreatedAt).Scan(&msg.Seq)
	if err != nil {
		r.log.Error("Failed to create message", "error", err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit message", "error", err)
		return err
	}
	return nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*domain.Message, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, seq ASC
	`

	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		r.log.Error("Failed to get messages", "error", err)
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *messageRepository) Last(ctx context.Context, conversationID uuid.UUID) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages
		WHERE conversation_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`

	msg, err := scanMessage(r.db.QueryRow(ctx, query, conversationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("Failed to get last message", "error", err)
		return nil, err
	}
	return msg, nil
}

func (r *messageRepository) LastByConversations(ctx context.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]*domain.Message, error) {
	last := make(map[uuid.UUID]*domain.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return last, nil
	}

	query := `SELECT DISTINCT ON (conversation_id) ` + messageColumns + `
		FROM messages
		WHERE conversation_id = ANY($1::uuid[])
		ORDER BY conversation_id, seq DESC
	`

	rows, err := r.db.Query(ctx, query, uuidStrings(conversationIDs))
	if err != nil {
		r.log.Error("Failed to get last messages", "error", err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, err
		}
		last[msg.ConversationID] = msg
	}
	return last, rows.Err()
}
