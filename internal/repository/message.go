package repository

import (
	"context"

	"skill_swap/internal/domain"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*domain.Message, error)
}

type messageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMessageRepository(db *pgxpool.Pool, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

// Create вставляет сообщение и сдвигает last_activity_at переписки в одной транзакции.
// ID и created_at выставляет БД.
func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	metadata, err := encodeMetadata(message.Metadata)
	if err != nil {
		return apperrors.NewValidationError("metadata", err.Error())
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin transaction", "error", err)
		return storeError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, content, message_type, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, message.ConversationID, message.SenderID, message.Content, message.MessageType, metadata,
	).Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		r.log.Error("Failed to create message", "error", err, "conversation_id", message.ConversationID)
		return storeError(err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE conversations SET last_activity_at = $2 WHERE id = $1`,
		message.ConversationID, message.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to touch conversation", "error", err, "conversation_id", message.ConversationID)
		return storeError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConversationNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit message", "error", err)
		return storeError(err)
	}

	return nil
}

// ListByConversation - полная выборка по возрастанию времени, равные created_at упорядочены по id
func (r *messageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*domain.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.message_type, m.metadata, m.created_at,
		       u.id, u.first_name, u.last_name, u.profile_image_url, u.title, u.is_verified
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`

	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		r.log.Error("Failed to list messages", "error", err, "conversation_id", conversationID)
		return nil, storeError(err)
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		msg := &domain.Message{Sender: &domain.PublicProfile{}}
		var metadata []byte

		dest := []any{
			&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.MessageType, &metadata, &msg.CreatedAt,
		}
		if err := rows.Scan(append(dest, profileDest(msg.Sender)...)...); err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, storeError(err)
		}
		if err := decodeMetadata(metadata, msg); err != nil {
			r.log.Warn("Failed to decode message metadata", "error", err, "message_id", msg.ID)
		}
		messages = append(messages, msg)
	}

	return messages, storeError(rows.Err())
}
