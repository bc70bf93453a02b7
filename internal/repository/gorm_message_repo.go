package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/Eprince-hub/live-chat/internal/domain"
	"github.com/Eprince-hub/live-chat/pkg/log"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create persists a chat message. The ULID id is generated here so the id
// order matches insertion time.
func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	l := log.Ctx(ctx)

	msg.ID = ulid.Make().String()
	msg.CreatedAt = time.Now().UTC()

	model := domain.ChatMessageToModel(msg)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Str(log.FieldStreamID, msg.StreamID).Msg("failed to create chat message in db")
		return err
	}

	l.Debug().Str(log.FieldMessageID, msg.ID).Str(log.FieldStreamID, msg.StreamID).Msg("chat message created in db")
	return nil
}

// ListByStream fetches limit+1 rows newest-first to detect whether older
// pages remain, then trims the probe row.
func (r *GormMessageRepository) ListByStream(ctx context.Context, streamID, beforeID string, limit int) ([]domain.ChatMessage, bool, error) {
	l := log.Ctx(ctx)

	query := r.db.WithContext(ctx).
		Where("stream_id = ?", streamID).
		Preload("Reactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Order("id DESC").
		Limit(limit + 1)

	if beforeID != "" {
		query = query.Where("id < ?", beforeID)
	}

	var models []domain.ChatMessageModel
	if err := query.Find(&models).Error; err != nil {
		l.Error().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to list chat messages from db")
		return nil, false, err
	}

	hasMore := len(models) > limit
	if hasMore {
		models = models[:limit]
	}

	messages := make([]domain.ChatMessage, len(models))
	for i := range models {
		messages[i] = *models[i].ToDomain()
	}
	return messages, hasMore, nil
}

// AppendReaction records a reaction against an existing message.
func (r *GormMessageRepository) AppendReaction(ctx context.Context, reaction *domain.Reaction) error {
	l := log.Ctx(ctx)

	var exists domain.ChatMessageModel
	err := r.db.WithContext(ctx).
		Select("id").
		First(&exists, "id = ?", reaction.MessageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		l.Error().Err(err).Str(log.FieldMessageID, reaction.MessageID).Msg("failed to look up reaction target")
		return err
	}

	reaction.ID = ulid.Make().String()
	reaction.CreatedAt = time.Now().UTC()

	model := domain.ReactionToModel(reaction)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Str(log.FieldMessageID, reaction.MessageID).Msg("failed to create reaction in db")
		return err
	}

	return nil
}
