package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/skillswap/skillswap/internal/apperr"
	"github.com/skillswap/skillswap/internal/database"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = apperr.New(apperr.ErrUnauthenticated, "Invalid credentials.")

// LocalProvider logs in local accounts with username and password.
type LocalProvider struct {
	db database.DB
}

// NewLocalProvider returns a LocalProvider backed by db.
func NewLocalProvider(db database.DB) *LocalProvider {
	return &LocalProvider{db: db}
}

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login checks the credentials and stores the account in the session.
func (p *LocalProvider) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(apperr.Invalid("Username and password are required."))
		return
	}

	account, err := p.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionAccountUsername, account.Username)
	session.Set(sessionAccountEmail, account.Email)
	session.Set(sessionAccountRoles, joinList(account.Roles))
	if err := session.Save(); err != nil {
		_ = c.Error(fmt.Errorf("failed to save session: %w", err))
		return
	}

	log.Info("local account logged in", "username", account.Username)
	c.JSON(http.StatusOK, gin.H{
		"username": account.Username,
		"roles":    prefixRoles(normalizeRoles(account.Roles)),
	})
}

// Authenticate returns the account if password matches.
func (p *LocalProvider) Authenticate(ctx context.Context, username, password string) (*database.LocalAccount, error) {
	account, err := p.db.GetLocalAccountByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		log.Debug("password mismatch", "username", account.Username)
		return nil, errInvalidCredentials
	}
	return account, nil
}

// CreateAccount stores a new local account with a bcrypt password hash.
func (p *LocalProvider) CreateAccount(ctx context.Context, username, email, password string, roles []string) (*database.LocalAccount, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Invalid("Username must not be blank.")
	}
	if len(password) < 8 {
		return nil, apperr.Invalid("Password must be at least 8 characters.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	normalized := normalizeRoles(roles)

	account := &database.LocalAccount{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
		Roles:        normalized,
	}
	if err := p.db.CreateLocalAccount(ctx, account); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperr.Conflict(fmt.Sprintf("Account '%s' already exists.", username))
		}
		return nil, err
	}
	return account, nil
}

// Logout clears the session.
func Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		_ = c.Error(fmt.Errorf("failed to clear session: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}
