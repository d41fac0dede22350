package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/anthill-gaming/social/internal/models"
	"github.com/anthill-gaming/social/pkg/logger"
	"gorm.io/gorm"
)

// FriendService treats an unnamed personal group as a friendship between its members.
type FriendService struct {
	DB    *gorm.DB
	Cache FriendCache

	// EnforceUniquePairs makes MakeFriends refuse a pair that already shares a friendship group.
	EnforceUniquePairs bool
}

func NewFriendService(db *gorm.DB, cache FriendCache, enforceUniquePairs bool) *FriendService {
	return &FriendService{
		DB:                 db,
		Cache:              cache,
		EnforceUniquePairs: enforceUniquePairs,
	}
}

// GetFriends returns every user holding an active membership in a personal group
// where userID is also an active member. A user present in two such groups is
// returned twice.
func (s *FriendService) GetFriends(ctx context.Context, userID int64) ([]int64, error) {
	cacheable := false
	var version int64
	if s.Cache != nil {
		ids, v, ok, err := s.Cache.Get(ctx, userID)
		switch {
		case err != nil:
			logger.Warn("friends_cache_get_failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		case ok:
			return ids, nil
		default:
			cacheable = true
			version = v
		}
	}

	db := s.DB.WithContext(ctx)

	personalGroups := db.Model(&models.Group{}).
		Select("id").
		Where("type = ?", models.GroupTypePersonal)

	ownGroups := db.Model(&models.GroupMembership{}).
		Select("group_id").
		Where("user_id = ? AND active = ? AND group_id IN (?)", userID, true, personalGroups)

	friendIDs := []int64{}
	if err := db.Model(&models.GroupMembership{}).
		Where("group_id IN (?) AND user_id <> ? AND active = ?", ownGroups, userID, true).
		Order("group_id ASC").
		Order("user_id ASC").
		Pluck("user_id", &friendIDs).Error; err != nil {
		return nil, fmt.Errorf("loading friends of %d: %w", userID, err)
	}

	if cacheable {
		if err := s.Cache.Set(ctx, userID, friendIDs, version); err != nil {
			logger.Warn("friends_cache_set_failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}

	return friendIDs, nil
}

// AreFriends reports whether otherID is among the friends of userID.
func (s *FriendService) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	if userID == otherID {
		return false, nil
	}
	friendIDs, err := s.GetFriends(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, id := range friendIDs {
		if id == otherID {
			return true, nil
		}
	}
	return false, nil
}

// MakeFriends creates an unnamed personal group holding both users. Unless
// EnforceUniquePairs is set, calling it twice for the same pair creates two groups.
func (s *FriendService) MakeFriends(ctx context.Context, userID1, userID2 int64) (*models.Group, error) {
	if userID1 == userID2 || userID1 <= 0 || userID2 <= 0 {
		return nil, ErrInvalidFriendPair
	}

	group := models.NewGroup(nil, models.GroupTypePersonal)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.EnforceUniquePairs {
			_, err := sharedFriendshipGroup(tx, userID1, userID2)
			if err == nil {
				return ErrAlreadyFriends
			}
			if !errors.Is(err, ErrNotFound) {
				return err
			}
		}

		if err := tx.Create(group).Error; err != nil {
			return err
		}

		memberships := []models.GroupMembership{
			*models.NewGroupMembership(group.ID, userID1),
			*models.NewGroupMembership(group.ID, userID2),
		}
		return tx.Create(&memberships).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID1, userID2)

	logger.Info("friends_made", map[string]interface{}{
		"group_id": group.ID,
		"user_id1": userID1,
		"user_id2": userID2,
	})

	return group, nil
}

// RemoveFriends deletes the oldest friendship group shared by both users together
// with its memberships and returns its id. ErrNotFound when they share none.
func (s *FriendService) RemoveFriends(ctx context.Context, userID1, userID2 int64) (uint, error) {
	var removedID uint

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := sharedFriendshipGroup(tx, userID1, userID2)
		if err != nil {
			return err
		}
		removedID = group.ID

		if err := tx.Where("group_id = ?", group.ID).Delete(&models.GroupMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, group.ID).Error
	})
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx, userID1, userID2)

	logger.Info("friends_removed", map[string]interface{}{
		"group_id": removedID,
		"user_id1": userID1,
		"user_id2": userID2,
	})

	return removedID, nil
}

func (s *FriendService) invalidate(ctx context.Context, userIDs ...int64) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, userIDs...); err != nil {
		ids := make([]string, 0, len(userIDs))
		for _, id := range userIDs {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		logger.Warn("friends_cache_invalidate_failed", map[string]interface{}{
			"user_ids": ids,
			"error":    err.Error(),
		})
	}
}

func sharedFriendshipGroup(tx *gorm.DB, userID1, userID2 int64) (*models.Group, error) {
	groupsOf := func(userID int64) *gorm.DB {
		return tx.Model(&models.GroupMembership{}).Select("group_id").Where("user_id = ?", userID)
	}

	var group models.Group
	err := tx.
		Where("type = ?", models.GroupTypePersonal).
		Where("(name IS NULL OR name = ?)", "").
		Where("id IN (?)", groupsOf(userID1)).
		Where("id IN (?)", groupsOf(userID2)).
		Order("id ASC").
		First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}
