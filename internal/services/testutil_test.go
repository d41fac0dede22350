package services

import (
	"context"
	"sync"
	"testing"

	"github.com/anthill-gaming/social/internal/config"
	"github.com/anthill-gaming/social/internal/database"
	"github.com/anthill-gaming/social/internal/internalapi"
	"github.com/anthill-gaming/social/internal/models"
	"github.com/anthill-gaming/social/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Init()

	db, err := database.Connect(config.DBConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err, "failed opening in-memory sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func createGroup(t *testing.T, db *gorm.DB, name *string, groupType models.GroupType, userIDs ...int64) *models.Group {
	t.Helper()
	group := models.NewGroup(name, groupType)
	require.NoError(t, db.Create(group).Error)
	for _, userID := range userIDs {
		require.NoError(t, db.Create(models.NewGroupMembership(group.ID, userID)).Error)
	}
	return group
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func int64Ptr(i int64) *int64 { return &i }

type memoryFriendCache struct {
	mu          sync.Mutex
	entries     map[int64][]int64
	versions    map[int64]int64
	invalidated []int64
	beforeSet   func()
}

func newMemoryFriendCache() *memoryFriendCache {
	return &memoryFriendCache{entries: map[int64][]int64{}, versions: map[int64]int64{}}
}

func (c *memoryFriendCache) Get(_ context.Context, userID int64) ([]int64, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids, ok := c.entries[userID]
	return ids, c.versions[userID], ok, nil
}

func (c *memoryFriendCache) Set(_ context.Context, userID int64, friendIDs []int64, version int64) error {
	if c.beforeSet != nil {
		c.beforeSet()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[userID] != version {
		return nil
	}
	c.entries[userID] = append([]int64(nil), friendIDs...)
	return nil
}

func (c *memoryFriendCache) Invalidate(_ context.Context, userIDs ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		delete(c.entries, id)
		c.versions[id]++
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

func (c *memoryFriendCache) has(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[userID]
	return ok
}

type recordingMessageService struct {
	filters  []internalapi.MessageFilter
	messages []internalapi.Message
	err      error
}

func (r *recordingMessageService) GetMessages(_ context.Context, filter internalapi.MessageFilter) ([]internalapi.Message, error) {
	r.filters = append(r.filters, filter)
	if r.err != nil {
		return nil, r.err
	}
	return r.messages, nil
}

type stubUserService struct {
	users map[int64]*internalapi.RemoteUser
	err   error
}

func (s *stubUserService) GetUser(_ context.Context, userID int64) (*internalapi.RemoteUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[userID]
	if !ok {
		return nil, &internalapi.RequestError{Service: internalapi.ServiceLogin, Method: "get_user", Status: 404, Message: "user not found"}
	}
	return user, nil
}
