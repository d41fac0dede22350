package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// GroupType is stored as a one-letter code.
type GroupType string

const (
	GroupTypePersonal GroupType = "p"
	GroupTypeMultiple GroupType = "m"
	GroupTypeChannel  GroupType = "c"
)

var groupTypeLabels = map[GroupType]string{
	GroupTypePersonal: "Personal",
	GroupTypeMultiple: "Multiple",
	GroupTypeChannel:  "Channel",
}

func (t GroupType) IsValid() bool {
	_, ok := groupTypeLabels[t]
	return ok
}

func (t GroupType) Label() string {
	return groupTypeLabels[t]
}

// ParseGroupType accepts either the stored code or the label, case-insensitively.
func ParseGroupType(value string) (GroupType, bool) {
	value = strings.TrimSpace(value)
	for code, label := range groupTypeLabels {
		if strings.EqualFold(value, string(code)) || strings.EqualFold(value, label) {
			return code, true
		}
	}
	return "", false
}

type Group struct {
	ID          uint              `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        *string           `json:"name,omitempty" gorm:"type:varchar(128);uniqueIndex"`
	Type        GroupType         `json:"type" gorm:"type:varchar(1);not null;index"`
	Created     time.Time         `json:"created" gorm:"autoCreateTime"`
	Updated     *time.Time        `json:"updated,omitempty"`
	Active      bool              `json:"active" gorm:"not null"`
	Memberships []GroupMembership `json:"memberships,omitempty" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
}

// NewGroup returns an active group. A nil name is how friendship groups are created.
func NewGroup(name *string, groupType GroupType) *Group {
	return &Group{
		Name:   name,
		Type:   groupType,
		Active: true,
	}
}

// IsFriendship reports whether the group has the shape of a friendship: personal and unnamed.
func (g *Group) IsFriendship() bool {
	return g.Type == GroupTypePersonal && (g.Name == nil || *g.Name == "")
}

func (g *Group) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now().UTC()
	tx.Statement.SetColumn("updated", &now)
	return nil
}

func (Group) TableName() string {
	return "groups"
}
