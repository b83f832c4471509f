package database

import (
	"time"

	"gorm.io/gorm"
)

// WorkshopStatus is the lifecycle state of a workshop. Deletion is modelled by
// the soft-delete column rather than a status value.
type WorkshopStatus string

const (
	WorkshopStatusUpcoming WorkshopStatus = "upcoming"
)

// User is a provisioned skillswap profile.
// The ID is the subject of the identity that created it and never changes.
// Roles are not stored; they come from the identity on every request.
type User struct {
	ID        string `gorm:"primaryKey;size:255"`
	Username  string `gorm:"uniqueIndex;not null;size:50"`
	AvatarURL string
	Bio       string
	CreatedAt time.Time `gorm:"<-:create"`
	UpdatedAt time.Time
	Skills    []Skill `gorm:"constraint:OnDelete:CASCADE;"`
}

// Skill is a normalized skill name owned by one user.
type Skill struct {
	ID     uint   `gorm:"primaryKey"`
	UserID string `gorm:"not null;size:255;uniqueIndex:idx_skill_user_name"`
	Name   string `gorm:"not null;size:100;uniqueIndex:idx_skill_user_name"`
	Level  string `gorm:"size:50"`
}

// Workshop is a session offered by a facilitator.
type Workshop struct {
	gorm.Model
	FacilitatorID   string `gorm:"not null;index;size:255"`
	Facilitator     User   `gorm:"foreignKey:FacilitatorID"`
	Title           string `gorm:"not null"`
	Description     string
	Category        string
	SkillLevel      string
	DurationMinutes int
	StartsAt        time.Time
	IsOnline        bool
	Location        string
	Tags            []string `gorm:"serializer:json"`
	MaxParticipants int
	CreditReward    int
	Status          WorkshopStatus `gorm:"default:upcoming"`
}

// LocalAccount is a username/password identity that can log in via the session flow.
type LocalAccount struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string
	PasswordHash string   `gorm:"not null"`
	Roles        []string `gorm:"serializer:json"`
	CreatedAt    time.Time
}

// AuditLog records a successful mutation.
type AuditLog struct {
	ID           uint   `gorm:"primaryKey"`
	ActorID      string `gorm:"index"`
	Action       string `gorm:"not null"`
	TargetEntity string
	TargetID     string
	Details      map[string]any `gorm:"serializer:json"`
	CreatedAt    time.Time      `gorm:"index"`
}

// Stats holds row counts for the db-stats command.
type Stats struct {
	Users         int64
	Skills        int64
	Workshops     int64
	LocalAccounts int64
	AuditLogs     int64
}

// BeforeCreate puts new workshops into the upcoming state.
func (w *Workshop) BeforeCreate(*gorm.DB) error {
	if w.Status == "" {
		w.Status = WorkshopStatusUpcoming
	}
	return nil
}
