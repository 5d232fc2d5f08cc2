package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"skill_swap/internal/domain"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	FindByParticipants(ctx context.Context, userA, userB uuid.UUID) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ConversationSummary, error)
}

const conversationColumns = `id, participant_a_id, participant_b_id, last_activity_at, created_at`

type conversationRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewConversationRepository(db *pgxpool.Pool, log logger.Logger) ConversationRepository {
	return &conversationRepository{db: db, log: log}
}

func scanConversation(row rowScanner) (*domain.Conversation, error) {
	conv := &domain.Conversation{}
	err := row.Scan(&conv.ID, &conv.ParticipantAID, &conv.ParticipantBID, &conv.LastActivityAt, &conv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// Create возвращает ErrConflict, если переписка для пары уже создана параллельным запросом
func (r *conversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	query := `
		INSERT INTO conversations (id, participant_a_id, participant_b_id, last_activity_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING last_activity_at, created_at
	`

	err := r.db.QueryRow(ctx, query,
		conv.ID, conv.ParticipantAID, conv.ParticipantBID, conv.LastActivityAt, conv.CreatedAt,
	).Scan(&conv.LastActivityAt, &conv.CreatedAt)

	if err != nil {
		if pgErr, ok := isUniqueViolation(err); ok {
			r.log.Debug("Conversation pair already exists", "constraint", pgErr.ConstraintName)
			return apperrors.ErrConflict
		}
		r.log.Error("Failed to create conversation", "error", err)
		return storeError(err)
	}

	return nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	conv, err := scanConversation(r.db.QueryRow(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		r.log.Error("Failed to get conversation", "error", err, "conversation_id", id)
		return nil, storeError(err)
	}
	return conv, nil
}

// FindByParticipants ищет переписку независимо от порядка участников
func (r *conversationRepository) FindByParticipants(ctx context.Context, userA, userB uuid.UUID) (*domain.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE (participant_a_id = $1 AND participant_b_id = $2)
		   OR (participant_a_id = $2 AND participant_b_id = $1)
		LIMIT 1
	`

	conv, err := scanConversation(r.db.QueryRow(ctx, query, userA, userB))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		r.log.Error("Failed to find conversation", "error", err)
		return nil, storeError(err)
	}
	return conv, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ConversationSummary, error) {
	query := `
		SELECT c.id, c.participant_a_id, c.participant_b_id, c.last_activity_at, c.created_at,
		       ua.id, ua.first_name, ua.last_name, ua.profile_image_url, ua.title, ua.is_verified,
		       ub.id, ub.first_name, ub.last_name, ub.profile_image_url, ub.title, ub.is_verified,
		       lm.id, lm.sender_id, lm.content, lm.message_type, lm.metadata, lm.created_at
		FROM conversations c
		JOIN users ua ON ua.id = c.participant_a_id
		JOIN users ub ON ub.id = c.participant_b_id
		LEFT JOIN LATERAL (
			SELECT id, sender_id, content, message_type, metadata, created_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) lm ON TRUE
		WHERE c.participant_a_id = $1 OR c.participant_b_id = $1
		ORDER BY c.last_activity_at DESC, c.id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list conversations", "error", err, "user_id", userID)
		return nil, storeError(err)
	}
	defer rows.Close()

	summaries := make([]*domain.ConversationSummary, 0)
	for rows.Next() {
		s := &domain.ConversationSummary{}
		var (
			msgID       *int64
			msgSender   *uuid.UUID
			msgContent  *string
			msgType     *string
			msgMetadata []byte
			msgCreated  *time.Time
		)

		dest := []any{&s.ID, &s.ParticipantAID, &s.ParticipantBID, &s.LastActivityAt, &s.CreatedAt}
		dest = append(dest, profileDest(&s.ParticipantA)...)
		dest = append(dest, profileDest(&s.ParticipantB)...)
		dest = append(dest, &msgID, &msgSender, &msgContent, &msgType, &msgMetadata, &msgCreated)

		if err := rows.Scan(dest...); err != nil {
			r.log.Error("Failed to scan conversation", "error", err)
			return nil, storeError(err)
		}

		if msgID != nil {
			msg := &domain.Message{
				ID:             *msgID,
				ConversationID: s.ID,
				SenderID:       *msgSender,
				Content:        *msgContent,
				MessageType:    *msgType,
				CreatedAt:      *msgCreated,
			}
			if err := decodeMetadata(msgMetadata, msg); err != nil {
				r.log.Warn("Failed to decode message metadata", "error", err, "message_id", msg.ID)
			}
			if msg.SenderID == s.ParticipantA.ID {
				msg.Sender = &s.ParticipantA
			} else {
				msg.Sender = &s.ParticipantB
			}
			s.LastMessage = msg
		}

		summaries = append(summaries, s)
	}

	return summaries, storeError(rows.Err())
}

func encodeMetadata(metadata map[string]interface{}) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	return json.Marshal(metadata)
}

func decodeMetadata(raw []byte, msg *domain.Message) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, &msg.Metadata)
}
