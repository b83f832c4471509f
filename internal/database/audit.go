package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// Audit actions.
const (
	AuditUserCreated     = "USER_CREATED"
	AuditProfileUpdated  = "PROFILE_UPDATED"
	AuditSkillAdded      = "SKILL_ADDED"
	AuditSkillRemoved    = "SKILL_REMOVED"
	AuditUserDeleted     = "USER_DELETED"
	AuditWorkshopCreated = "WORKSHOP_CREATED"
	AuditWorkshopDeleted = "WORKSHOP_DELETED"
)

func (c *Client) CreateAuditLog(ctx context.Context, entry *AuditLog) error {
	if err := c.db.WithContext(ctx).Create(entry).Error; err != nil {
		log.Error("failed to create audit log", "error", err)
		return translate(err)
	}
	return nil
}

// GetAuditLogs returns audit entries, newest first.
func (c *Client) GetAuditLogs(ctx context.Context, limit, offset int) ([]AuditLog, error) {
	var entries []AuditLog
	if err := c.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		log.Error("failed to get audit logs", "error", err)
		return nil, translate(err)
	}
	return entries, nil
}

func (c *Client) DeleteAuditLogsBefore(ctx context.Context, before time.Time) (int64, error) {
	result := c.db.WithContext(ctx).Where("created_at < ?", before).Delete(&AuditLog{})
	if result.Error != nil {
		log.Error("failed to delete audit logs", "error", result.Error)
		return 0, translate(result.Error)
	}
	return result.RowsAffected, nil
}
