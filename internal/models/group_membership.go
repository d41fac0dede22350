package models

import "time"

type GroupMembership struct {
	GroupID         uint      `json:"groupID" gorm:"primaryKey;autoIncrement:false"`
	UserID          int64     `json:"userID" gorm:"primaryKey;autoIncrement:false;index"`
	Created         time.Time `json:"created" gorm:"autoCreateTime"`
	Active          bool      `json:"active" gorm:"not null"`
	NotifyByMessage bool      `json:"notifyByMessage" gorm:"not null"`
	NotifyByEmail   bool      `json:"notifyByEmail" gorm:"not null"`
	Group           *Group    `json:"-" gorm:"foreignKey:GroupID"`
}

// NewGroupMembership returns an active membership that notifies by message but not by email.
func NewGroupMembership(groupID uint, userID int64) *GroupMembership {
	return &GroupMembership{
		GroupID:         groupID,
		UserID:          userID,
		Active:          true,
		NotifyByMessage: true,
		NotifyByEmail:   false,
	}
}

func (GroupMembership) TableName() string {
	return "groups_memberships"
}
