package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/groupchat/groupchat/internal/models"
	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type MessageService struct {
	DB       *gorm.DB
	Files    *FileService
	Notifier Notifier
}

func NewMessageService(db *gorm.DB, files *FileService, notifier Notifier) *MessageService {
	return &MessageService{DB: db, Files: files, Notifier: notifier}
}

type SendMessageInput struct {
	Content string
	GroupID uuid.UUID
	User    string
	File    *string
}

// Send stores a message. The group is referenced by id only and is not required to exist.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	message := &models.Message{
		Content: in.Content,
		GroupID: in.GroupID,
		User:    in.User,
		File:    in.File,
	}

	if err := s.DB.WithContext(ctx).Create(message).Error; err != nil {
		logger.ErrorWithActor(in.User, "message_send_failed", err, map[string]interface{}{
			"group_id": in.GroupID.String(),
		})
		return nil, err
	}

	logger.InfoWithActor(in.User, "message_sent", map[string]interface{}{
		"message_id": message.ID.String(),
		"group_id":   message.GroupID.String(),
		"has_file":   message.HasFile(),
	})

	if s.Notifier != nil {
		s.Notifier.Notify(ctx, TableMessages)
	}
	return message, nil
}

// SendImage stores data as a blob and posts a message referencing it.
// The blob is removed again when the message cannot be written.
func (s *MessageService) SendImage(ctx context.Context, data []byte, contentType string, in SendMessageInput) (*models.Message, error) {
	if s.Files == nil {
		return nil, errors.New("file storage is not configured")
	}

	blob, err := s.Files.Store(ctx, data, contentType)
	if err != nil {
		return nil, err
	}

	in.File = lo.ToPtr(blob.ID.String())
	message, err := s.Send(ctx, in)
	if err != nil {
		if delErr := s.Files.Delete(ctx, blob); delErr != nil {
			logger.Error("blob_rollback_failed", delErr, map[string]interface{}{
				"blob_id": blob.ID.String(),
			})
		}
		return nil, err
	}
	return message, nil
}

// ListByGroup returns the group's messages oldest first, with file references replaced
// by fetchable URLs. A reference that cannot be resolved is left as stored.
func (s *MessageService) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	if err := s.DB.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}

	if s.Files == nil {
		return messages, nil
	}

	return lo.Map(messages, func(m models.Message, _ int) models.Message {
		if !m.HasFile() {
			return m
		}
		url, err := s.Files.URL(ctx, *m.File)
		if err != nil {
			logger.Warn("message_file_unresolved", map[string]interface{}{
				"message_id": m.ID.String(),
				"file":       *m.File,
				"error":      err.Error(),
			})
			return m
		}
		m.File = &url
		return m
	}), nil
}
