package database

import (
	"context"
	"fmt"
)

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	counts := []struct {
		model any
		dst   *int64
	}{
		{&User{}, &stats.Users},
		{&Skill{}, &stats.Skills},
		{&Workshop{}, &stats.Workshops},
		{&LocalAccount{}, &stats.LocalAccounts},
		{&AuditLog{}, &stats.AuditLogs},
	}
	for _, cnt := range counts {
		if err := c.db.WithContext(ctx).Model(cnt.model).Count(cnt.dst).Error; err != nil {
			return nil, fmt.Errorf("failed to count %T: %w", cnt.model, translate(err))
		}
	}
	return &stats, nil
}
