package services

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidFriendPair = errors.New("a user cannot befriend themselves")
	ErrAlreadyFriends    = errors.New("users are already friends")
	ErrInvalidGroupType  = errors.New("invalid group type")
	ErrGroupNameTaken    = errors.New("group name already taken")
	ErrAlreadyMember     = errors.New("user is already a member")
	ErrPersonalGroup     = errors.New("personal groups are managed through friendships")
)
