package services

import (
	"context"

	"github.com/anthill-gaming/social/internal/internalapi"
)

// MessageService looks messages up in the message service.
type MessageService interface {
	GetMessages(ctx context.Context, filter internalapi.MessageFilter) ([]internalapi.Message, error)
}

// UserService looks users up in the login service.
type UserService interface {
	GetUser(ctx context.Context, userID int64) (*internalapi.RemoteUser, error)
}

// FriendCache stores computed friend lists. A miss is ok=false with a nil error
// and carries the version Set must be given back, so a list read before an
// Invalidate is never stored after it.
type FriendCache interface {
	Get(ctx context.Context, userID int64) (friendIDs []int64, version int64, ok bool, err error)
	Set(ctx context.Context, userID int64, friendIDs []int64, version int64) error
	Invalidate(ctx context.Context, userIDs ...int64) error
}
