package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/groupchat/groupchat/internal/models"
	"github.com/groupchat/groupchat/pkg/logger"
	"gorm.io/gorm"
)

type GroupService struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewGroupService(db *gorm.DB, notifier Notifier) *GroupService {
	return &GroupService{DB: db, Notifier: notifier}
}

// Create stores a group as given. Empty fields and duplicate names are accepted.
func (s *GroupService) Create(ctx context.Context, name, description, iconURL string) (*models.Group, error) {
	group := &models.Group{
		Name:        name,
		Description: description,
		IconURL:     iconURL,
	}

	if err := s.DB.WithContext(ctx).Create(group).Error; err != nil {
		logger.Error("group_create_failed", err, map[string]interface{}{
			"name": name,
		})
		return nil, err
	}

	logger.Info("group_created", map[string]interface{}{
		"group_id": group.ID.String(),
		"name":     group.Name,
	})

	if s.Notifier != nil {
		s.Notifier.Notify(ctx, TableGroups)
	}
	return group, nil
}

// List returns every group in storage order.
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	groups := make([]models.Group, 0)
	if err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *GroupService) Get(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := s.DB.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}
