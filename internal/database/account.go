package database

import (
	"context"

	"github.com/charmbracelet/log"
)

func (c *Client) CreateLocalAccount(ctx context.Context, account *LocalAccount) error {
	if err := c.db.WithContext(ctx).Create(account).Error; err != nil {
		err = translate(err)
		if err != ErrDuplicate {
			log.Error("failed to create local account", "error", err)
		}
		return err
	}
	return nil
}

func (c *Client) GetLocalAccountByUsername(ctx context.Context, username string) (*LocalAccount, error) {
	var account LocalAccount
	if err := c.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		err = translate(err)
		if err != ErrNotFound {
			log.Error("failed to get local account", "error", err)
		}
		return nil, err
	}
	return &account, nil
}
