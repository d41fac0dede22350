package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthill-gaming/social/internal/internalapi"
	"github.com/anthill-gaming/social/internal/models"
	"github.com/anthill-gaming/social/pkg/logger"
	"gorm.io/gorm"
)

// MessageQuery narrows GetMessages. Active defaults to true when nil.
type MessageQuery struct {
	SenderID *int64
	Active   *bool
}

// MembershipQuery narrows GetMemberships. Active defaults to true when nil.
type MembershipQuery struct {
	UserID *int64
	Active *bool
}

type CreateGroupInput struct {
	Name      *string
	Type      models.GroupType
	CreatorID int64
}

type UpdateGroupInput struct {
	Name   *string
	Active *bool
}

type AddMemberInput struct {
	UserID          int64
	NotifyByMessage *bool
	NotifyByEmail   *bool
}

type UpdateMembershipInput struct {
	Active          *bool
	NotifyByMessage *bool
	NotifyByEmail   *bool
}

type GroupService struct {
	DB       *gorm.DB
	Messages MessageService
	Users    UserService
	Cache    FriendCache
}

func NewGroupService(db *gorm.DB, messages MessageService, users UserService, cache FriendCache) *GroupService {
	return &GroupService{
		DB:       db,
		Messages: messages,
		Users:    users,
		Cache:    cache,
	}
}

// GetMessages asks the message service for the group's messages.
func (s *GroupService) GetMessages(ctx context.Context, groupID uint, query MessageQuery) ([]internalapi.Message, error) {
	if s.Messages == nil {
		return nil, errors.New("message service not configured")
	}

	filter := internalapi.MessageFilter{
		GroupID: groupID,
		Active:  true,
	}
	if query.Active != nil {
		filter.Active = *query.Active
	}
	if query.SenderID != nil {
		sender := *query.SenderID
		filter.SenderID = &sender
	}

	return s.Messages.GetMessages(ctx, filter)
}

func (s *GroupService) GetMemberships(ctx context.Context, groupID uint, query MembershipQuery) ([]models.GroupMembership, error) {
	active := true
	if query.Active != nil {
		active = *query.Active
	}

	db := s.DB.WithContext(ctx).Where("group_id = ? AND active = ?", groupID, active)
	if query.UserID != nil {
		db = db.Where("user_id = ?", *query.UserID)
	}

	memberships := []models.GroupMembership{}
	if err := db.Order("user_id ASC").Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// GetReceiver resolves the member behind a membership through the login service.
func (s *GroupService) GetReceiver(ctx context.Context, membership *models.GroupMembership) (*internalapi.RemoteUser, error) {
	if s.Users == nil {
		return nil, errors.New("user service not configured")
	}
	return s.Users.GetUser(ctx, membership.UserID)
}

func (s *GroupService) CreateGroup(ctx context.Context, in CreateGroupInput) (*models.Group, error) {
	if !in.Type.IsValid() {
		return nil, ErrInvalidGroupType
	}
	if in.Type == models.GroupTypePersonal {
		return nil, ErrPersonalGroup
	}

	name := normalizeGroupName(in.Name)
	group := models.NewGroup(name, in.Type)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if name != nil {
			taken, err := groupNameTaken(tx, *name, 0)
			if err != nil {
				return err
			}
			if taken {
				return ErrGroupNameTaken
			}
		}

		if err := tx.Create(group).Error; err != nil {
			return err
		}
		if in.CreatorID > 0 {
			return tx.Create(models.NewGroupMembership(group.ID, in.CreatorID)).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetGroup(ctx, group.ID)
}

func (s *GroupService) GetGroup(ctx context.Context, groupID uint) (*models.Group, error) {
	var group models.Group
	err := s.DB.WithContext(ctx).
		Preload("Memberships", func(db *gorm.DB) *gorm.DB {
			return db.Order("user_id ASC")
		}).
		First(&group, groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// UpdateGroup changes the name and/or active flag. An empty name clears it.
func (s *GroupService) UpdateGroup(ctx context.Context, groupID uint, in UpdateGroupInput) (*models.Group, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := normalizeGroupName(in.Name)
		if name == nil {
			updates["name"] = nil
		} else {
			taken, err := groupNameTaken(s.DB.WithContext(ctx), *name, groupID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrGroupNameTaken
			}
			updates["name"] = *name
		}
	}
	if in.Active != nil {
		updates["active"] = *in.Active
	}

	if len(updates) == 0 {
		return group, nil
	}

	if err := s.DB.WithContext(ctx).Model(&models.Group{ID: groupID}).Updates(updates).Error; err != nil {
		return nil, err
	}

	if group.Type == models.GroupTypePersonal {
		s.invalidateMembers(ctx, groupID)
	}

	return s.GetGroup(ctx, groupID)
}

// DeleteGroup removes the group and every membership in it.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID uint) error {
	var memberIDs []int64

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if group.Type == models.GroupTypePersonal {
			if err := tx.Model(&models.GroupMembership{}).
				Where("group_id = ?", groupID).
				Pluck("user_id", &memberIDs).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, groupID).Error
	})
	if err != nil {
		return err
	}

	if s.Cache != nil && len(memberIDs) > 0 {
		if err := s.Cache.Invalidate(ctx, memberIDs...); err != nil {
			logger.Warn("friends_cache_invalidate_failed", map[string]interface{}{
				"group_id": groupID,
				"error":    err.Error(),
			})
		}
	}
	return nil
}

func (s *GroupService) GetMembership(ctx context.Context, groupID uint, userID int64) (*models.GroupMembership, error) {
	var membership models.GroupMembership
	result := s.DB.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Limit(1).
		Find(&membership)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &membership, nil
}

func (s *GroupService) AddMember(ctx context.Context, groupID uint, in AddMemberInput) (*models.GroupMembership, error) {
	if in.UserID <= 0 {
		return nil, fmt.Errorf("invalid user id %d", in.UserID)
	}

	var group models.Group
	if err := s.DB.WithContext(ctx).First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if group.Type == models.GroupTypePersonal {
		return nil, ErrPersonalGroup
	}

	if _, err := s.GetMembership(ctx, groupID, in.UserID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	membership := models.NewGroupMembership(groupID, in.UserID)
	if in.NotifyByMessage != nil {
		membership.NotifyByMessage = *in.NotifyByMessage
	}
	if in.NotifyByEmail != nil {
		membership.NotifyByEmail = *in.NotifyByEmail
	}

	if err := s.DB.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}

	return membership, nil
}

func (s *GroupService) UpdateMembership(ctx context.Context, groupID uint, userID int64, in UpdateMembershipInput) (*models.GroupMembership, error) {
	membership, err := s.GetMembership(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Active != nil {
		updates["active"] = *in.Active
	}
	if in.NotifyByMessage != nil {
		updates["notify_by_message"] = *in.NotifyByMessage
	}
	if in.NotifyByEmail != nil {
		updates["notify_by_email"] = *in.NotifyByEmail
	}
	if len(updates) == 0 {
		return membership, nil
	}

	if err := s.DB.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	if in.Active != nil {
		s.invalidatePersonalMembers(ctx, groupID)
	}

	return s.GetMembership(ctx, groupID, userID)
}

func (s *GroupService) RemoveMember(ctx context.Context, groupID uint, userID int64) error {
	result := s.DB.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMembership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, userID); err != nil {
			logger.Warn("friends_cache_invalidate_failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
		s.invalidatePersonalMembers(ctx, groupID)
	}
	return nil
}

// ListUserGroups returns every group the user holds a membership in.
func (s *GroupService) ListUserGroups(ctx context.Context, userID int64) ([]models.Group, error) {
	db := s.DB.WithContext(ctx)

	memberOf := db.Model(&models.GroupMembership{}).Select("group_id").Where("user_id = ?", userID)

	groups := []models.Group{}
	if err := db.
		Preload("Memberships", func(db *gorm.DB) *gorm.DB {
			return db.Order("user_id ASC")
		}).
		Where("id IN (?)", memberOf).
		Order("id ASC").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *GroupService) invalidatePersonalMembers(ctx context.Context, groupID uint) {
	if s.Cache == nil {
		return
	}
	var group models.Group
	if err := s.DB.WithContext(ctx).Select("id", "type").First(&group, groupID).Error; err != nil {
		return
	}
	if group.Type == models.GroupTypePersonal {
		s.invalidateMembers(ctx, groupID)
	}
}

func (s *GroupService) invalidateMembers(ctx context.Context, groupID uint) {
	if s.Cache == nil {
		return
	}

	var memberIDs []int64
	if err := s.DB.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &memberIDs).Error; err != nil || len(memberIDs) == 0 {
		return
	}

	if err := s.Cache.Invalidate(ctx, memberIDs...); err != nil {
		logger.Warn("friends_cache_invalidate_failed", map[string]interface{}{
			"group_id": groupID,
			"error":    err.Error(),
		})
	}
}

func normalizeGroupName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func groupNameTaken(db *gorm.DB, name string, exceptID uint) (bool, error) {
	var count int64
	query := db.Model(&models.Group{}).Where("name = ?", name)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
