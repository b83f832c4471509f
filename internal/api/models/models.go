package models

import "time"

// UpdateProfileRequest is the body of PATCH /users/me. Absent fields stay nil.
// A "skills" key holding an empty list clears all skills.
type UpdateProfileRequest struct {
	Username  *string   `json:"username" binding:"omitempty,max=50"`
	AvatarURL *string   `json:"avatarUrl" binding:"omitempty,max=2048"`
	Bio       *string   `json:"bio" binding:"omitempty,max=2000"`
	Skills    *[]string `json:"skills"`
}

// SkillRequest is the body of the single skill add and remove endpoints.
type SkillRequest struct {
	SkillName  string `json:"skillName" binding:"required,max=100"`
	SkillLevel string `json:"skillLevel" binding:"max=50"`
}

// CreateWorkshopRequest is the body of POST /workshops.
type CreateWorkshopRequest struct {
	Title           string    `json:"title" binding:"required,max=200"`
	Description     string    `json:"description" binding:"max=5000"`
	Category        string    `json:"category" binding:"max=100"`
	SkillLevel      string    `json:"skillLevel" binding:"max=50"`
	Duration        int       `json:"duration" binding:"min=0"`
	StartsAt        time.Time `json:"startsAt"`
	IsOnline        bool      `json:"isOnline"`
	Location        string    `json:"location" binding:"max=255"`
	MaxParticipants int       `json:"maxParticipants" binding:"min=0"`
	CreditReward    int       `json:"creditReward" binding:"min=0"`
	Tags            []string  `json:"tags"`
}

// Skill is a skill as shown on a profile.
type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// UserProfile is the public view of a user.
type UserProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatarUrl"`
	Bio       string    `json:"bio"`
	Skills    []Skill   `json:"skills"`
	CreatedAt time.Time `json:"createdAt"`
}

// Facilitator is the user running a workshop.
type Facilitator struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

// Workshop is the public view of a workshop.
type Workshop struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Category        string      `json:"category"`
	SkillLevel      string      `json:"skillLevel"`
	Status          string      `json:"status"`
	Duration        int         `json:"duration"`
	StartsAt        time.Time   `json:"startsAt"`
	IsOnline        bool        `json:"isOnline"`
	Location        string      `json:"location"`
	MaxParticipants int         `json:"maxParticipants"`
	CreditReward    int         `json:"creditReward"`
	Tags            []string    `json:"tags"`
	Facilitator     Facilitator `json:"facilitator"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// AuditEntry is an audit log row for the admin API.
type AuditEntry struct {
	ID           uint           `json:"id"`
	ActorID      string         `json:"actorId"`
	Action       string         `json:"action"`
	TargetEntity string         `json:"targetEntity"`
	TargetID     string         `json:"targetId"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	Age          string         `json:"age"`
}

// AuditPage is a page of audit entries.
type AuditPage struct {
	Items  []AuditEntry `json:"items"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// Stats is the body of GET /admin/stats.
type Stats struct {
	Users         int64      `json:"users"`
	Skills        int64      `json:"skills"`
	Workshops     int64      `json:"workshops"`
	LocalAccounts int64      `json:"localAccounts"`
	AuditLogs     int64      `json:"auditLogs"`
	ProfileCache  CacheStats `json:"profileCache"`
}

// CacheStats are the hit and miss counters of a cache.
type CacheStats struct {
	Name   string `json:"name"`
	Hits   int    `json:"hits"`
	Misses int    `json:"misses"`
}
