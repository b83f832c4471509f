package database

import (
	"context"

	"github.com/charmbracelet/log"
	"gorm.io/gorm/clause"
)

func (c *Client) CreateWorkshop(ctx context.Context, workshop *Workshop) error {
	if err := c.db.WithContext(ctx).Omit(clause.Associations).Create(workshop).Error; err != nil {
		err = translate(err)
		log.Error("failed to create workshop", "error", err)
		return err
	}
	return nil
}

func (c *Client) GetWorkshopByID(ctx context.Context, id uint) (*Workshop, error) {
	var workshop Workshop
	if err := c.db.WithContext(ctx).Preload("Facilitator").First(&workshop, id).Error; err != nil {
		err = translate(err)
		if err != ErrNotFound {
			log.Error("failed to get workshop by ID", "error", err)
		}
		return nil, err
	}
	return &workshop, nil
}

// GetWorkshops returns all live workshops ordered by start time, with facilitators preloaded.
func (c *Client) GetWorkshops(ctx context.Context) ([]Workshop, error) {
	var workshops []Workshop
	if err := c.db.WithContext(ctx).Preload("Facilitator").Order("starts_at, id").Find(&workshops).Error; err != nil {
		log.Error("failed to get workshops", "error", err)
		return nil, translate(err)
	}
	return workshops, nil
}

// DeleteWorkshop soft-deletes a workshop.
func (c *Client) DeleteWorkshop(ctx context.Context, id uint) error {
	result := c.db.WithContext(ctx).Delete(&Workshop{}, id)
	if result.Error != nil {
		log.Error("failed to delete workshop", "error", result.Error)
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
