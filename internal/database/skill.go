package database

import (
	"context"

	"github.com/charmbracelet/log"
)

func (c *Client) ListSkills(ctx context.Context, userID string) ([]Skill, error) {
	var skills []Skill
	if err := c.db.WithContext(ctx).Where("user_id = ?", userID).Order("name").Find(&skills).Error; err != nil {
		log.Error("failed to list skills", "error", err)
		return nil, translate(err)
	}
	return skills, nil
}

func (c *Client) FindSkill(ctx context.Context, userID, name string) (*Skill, error) {
	var skill Skill
	if err := c.db.WithContext(ctx).Where("user_id = ? AND name = ?", userID, name).First(&skill).Error; err != nil {
		err = translate(err)
		if err != ErrNotFound {
			log.Error("failed to find skill", "error", err)
		}
		return nil, err
	}
	return &skill, nil
}

func (c *Client) CreateSkill(ctx context.Context, skill *Skill) error {
	if err := c.db.WithContext(ctx).Create(skill).Error; err != nil {
		err = translate(err)
		if err != ErrDuplicate {
			log.Error("failed to create skill", "error", err)
		}
		return err
	}
	return nil
}

// DeleteSkills removes the named skills of a user and reports how many rows went away.
func (c *Client) DeleteSkills(ctx context.Context, userID string, names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}
	result := c.db.WithContext(ctx).Where("user_id = ? AND name IN ?", userID, names).Delete(&Skill{})
	if result.Error != nil {
		log.Error("failed to delete skills", "error", result.Error)
		return 0, translate(result.Error)
	}
	return result.RowsAffected, nil
}
