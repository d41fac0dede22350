package api

import "time"

// Group mirrors the server Group model.
type Group struct {
	ID          uint         `json:"id"`
	Name        *string      `json:"name,omitempty"`
	Type        string       `json:"type"`
	Created     time.Time    `json:"created"`
	Updated     *time.Time   `json:"updated,omitempty"`
	Active      bool         `json:"active"`
	Memberships []Membership `json:"memberships,omitempty"`
}

// Membership mirrors the server GroupMembership model.
type Membership struct {
	GroupID         uint      `json:"groupID"`
	UserID          int64     `json:"userID"`
	Created         time.Time `json:"created"`
	Active          bool      `json:"active"`
	NotifyByMessage bool      `json:"notifyByMessage"`
	NotifyByEmail   bool      `json:"notifyByEmail"`
}

// FriendList is returned by GET /friends.
type FriendList struct {
	UserID  int64   `json:"userID"`
	Friends []int64 `json:"friends"`
}

// FriendCheck is returned by GET /friends/:userId.
type FriendCheck struct {
	UserID     int64 `json:"userID"`
	AreFriends bool  `json:"areFriends"`
}

// FriendRemoval is returned by DELETE /friends/:userId.
type FriendRemoval struct {
	Message string `json:"message"`
	GroupID uint   `json:"groupID"`
}

// Message is a message service record, passed through untouched.
type Message map[string]interface{}

// Receiver is the login service user behind a membership.
type Receiver struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// VersionInfo is returned by GET /version.
type VersionInfo struct {
	Version       string `json:"version"`
	APIVersion    string `json:"apiVersion"`
	FriendsCache  bool   `json:"friendsCache"`
	UniqueFriends bool   `json:"uniqueFriends"`
}
