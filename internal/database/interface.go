package database

import (
	"context"
	"time"
)

// DB defines the persistence operations used by the services.
// Implementations translate driver errors to ErrNotFound, ErrDuplicate and ErrReferenced.
type DB interface {
	// Users
	GetUserByID(ctx context.Context, id string) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, user *User) error
	UpdateUserFields(ctx context.Context, id string, fields map[string]any) error
	DeleteUser(ctx context.Context, id string) error

	// Skills
	ListSkills(ctx context.Context, userID string) ([]Skill, error)
	FindSkill(ctx context.Context, userID, name string) (*Skill, error)
	CreateSkill(ctx context.Context, skill *Skill) error
	DeleteSkills(ctx context.Context, userID string, names []string) (int64, error)

	// Workshops
	CreateWorkshop(ctx context.Context, workshop *Workshop) error
	GetWorkshopByID(ctx context.Context, id uint) (*Workshop, error)
	GetWorkshops(ctx context.Context) ([]Workshop, error)
	DeleteWorkshop(ctx context.Context, id uint) error

	// Local accounts
	CreateLocalAccount(ctx context.Context, account *LocalAccount) error
	GetLocalAccountByUsername(ctx context.Context, username string) (*LocalAccount, error)

	// Audit log
	CreateAuditLog(ctx context.Context, entry *AuditLog) error
	GetAuditLogs(ctx context.Context, limit, offset int) ([]AuditLog, error)
	DeleteAuditLogsBefore(ctx context.Context, before time.Time) (int64, error)

	// Utility
	GetStats(ctx context.Context) (*Stats, error)
	Transaction(ctx context.Context, fn func(tx DB) error) error
}
