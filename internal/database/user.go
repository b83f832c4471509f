package database

import (
	"context"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (c *Client) GetUserByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := c.db.WithContext(ctx).
		Preload("Skills", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		err = translate(err)
		if err != ErrNotFound {
			log.Error("failed to get user by ID", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

func (c *Client) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		log.Error("failed to check username", "error", err)
		return false, translate(err)
	}
	return count > 0, nil
}

func (c *Client) CreateUser(ctx context.Context, user *User) error {
	if err := c.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		err = translate(err)
		if err != ErrDuplicate {
			log.Error("failed to create user", "error", err)
		}
		return err
	}
	return nil
}

// UpdateUserFields updates the given columns of a user and bumps updated_at.
func (c *Client) UpdateUserFields(ctx context.Context, id string, fields map[string]any) error {
	result := c.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		err := translate(result.Error)
		if err != ErrDuplicate {
			log.Error("failed to update user", "error", err)
		}
		return err
	}
	if result.RowsAffected == 0 && len(fields) > 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user and, through the cascade, their skills.
// Users that still facilitate workshops yield ErrReferenced.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	var count int64
	if err := c.db.WithContext(ctx).Unscoped().Model(&Workshop{}).Where("facilitator_id = ?", id).Count(&count).Error; err != nil {
		log.Error("failed to count workshops", "error", err)
		return translate(err)
	}
	if count > 0 {
		return ErrReferenced
	}

	result := c.db.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	if result.Error != nil {
		err := translate(result.Error)
		if err != ErrReferenced {
			log.Error("failed to delete user", "error", err)
		}
		return err
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
