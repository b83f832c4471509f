// Package profile provisions users on first contact and applies profile changes.
package profile

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/skillswap/skillswap/internal/apperr"
	"github.com/skillswap/skillswap/internal/cache"
	"github.com/skillswap/skillswap/internal/config"
	"github.com/skillswap/skillswap/internal/database"
	"github.com/skillswap/skillswap/internal/gravatar"
	"github.com/skillswap/skillswap/internal/skills"
)

const (
	// MaxUsernameLength bounds usernames set through a profile patch.
	MaxUsernameLength = 50

	fallbackUsername = "user"
	suffixLength     = 4
	entityUser       = "UserAccount"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// Patch is a partial profile update. Nil fields are left untouched.
// A non-nil Skills pointing at an empty slice clears all skills.
type Patch struct {
	Username  *string
	Bio       *string
	AvatarURL *string
	Skills    *[]string
}

// Service provisions users and mutates their profiles.
type Service struct {
	db       database.DB
	skills   *skills.Manager
	cache    *cache.ProfileCache
	gravatar *config.GravatarConfig

	maxUsernameAttempts int
	maxRetries          int
	randomSuffix        func() string
	now                 func() time.Time
}

// New returns a profile Service.
func New(db database.DB, profiles *cache.ProfileCache, cfg *config.Config) *Service {
	attempts, retries := cfg.ProvisioningLimits()
	if profiles == nil {
		profiles = cache.NewProfileCache(nil)
	}
	var grav *config.GravatarConfig
	if cfg != nil {
		grav = cfg.Gravatar
	}
	return &Service{
		db:                  db,
		skills:              skills.NewManager(db),
		cache:               profiles,
		gravatar:            grav,
		maxUsernameAttempts: attempts,
		maxRetries:          retries,
		randomSuffix: func() string {
			return lo.RandomString(suffixLength, lo.AlphanumericCharset)
		},
		now: time.Now,
	}
}

// BaseUsername derives the preferred username from the local part of email.
// Every character outside [A-Za-z0-9] becomes an underscore.
func BaseUsername(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if local == "" {
		return fallbackUsername
	}
	base := nonAlphanumeric.ReplaceAllString(local, "_")
	// leave room for the collision suffix
	if limit := MaxUsernameLength - suffixLength - 1; len(base) > limit {
		base = base[:limit]
	}
	return base
}

// ResolveOrCreate returns the user with the given ID, creating it on first
// contact. The lookup, username search and insert run in one transaction;
// a duplicate key at insert restarts the whole sequence.
func (s *Service) ResolveOrCreate(ctx context.Context, userID, email string) (*database.User, error) {
	for attempt := range s.maxRetries {
		user, created, err := s.resolveOrCreateOnce(ctx, userID, email)
		if err == nil {
			if created {
				log.Info("provisioned user", "id", user.ID, "username", user.Username)
			}
			return user, nil
		}
		if !errors.Is(err, database.ErrDuplicate) {
			if errors.Is(err, apperr.ErrProvisioningConflict) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to provision user: %w", err)
		}
		log.Debug("provisioning raced with another request, retrying", "id", userID, "attempt", attempt+1)
	}
	return nil, apperr.New(apperr.ErrProvisioningConflict, "could not provision user %s, please retry", userID)
}

func (s *Service) resolveOrCreateOnce(ctx context.Context, userID, email string) (*database.User, bool, error) {
	var (
		user    *database.User
		created bool
	)
	err := s.db.Transaction(ctx, func(tx database.DB) error {
		existing, err := tx.GetUserByID(ctx, userID)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return err
		}

		username, err := s.freeUsername(ctx, tx, BaseUsername(email))
		if err != nil {
			return err
		}

		newUser := &database.User{
			ID:        userID,
			Username:  username,
			AvatarURL: gravatar.AvatarURL(email, s.gravatar),
		}
		if err := tx.CreateUser(ctx, newUser); err != nil {
			return err
		}
		if err := tx.CreateAuditLog(ctx, &database.AuditLog{
			ActorID:      userID,
			Action:       database.AuditUserCreated,
			TargetEntity: entityUser,
			TargetID:     userID,
			Details:      map[string]any{"username": username},
		}); err != nil {
			return err
		}
		newUser.Skills = []database.Skill{}
		user, created = newUser, true
		return nil
	})
	return user, created, err
}

// freeUsername returns base if it is free, otherwise base_XXXX with a random
// alphanumeric suffix. The search is bounded.
func (s *Service) freeUsername(ctx context.Context, tx database.DB, base string) (string, error) {
	candidate := base
	for i := range s.maxUsernameAttempts {
		if i > 0 {
			candidate = base + "_" + s.randomSuffix()
		}
		taken, err := tx.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperr.New(apperr.ErrProvisioningConflict,
		"no free username for %q after %d attempts", base, s.maxUsernameAttempts)
}

// GetProfile returns the user with the given ID without provisioning it.
func (s *Service) GetProfile(ctx context.Context, userID string) (*database.User, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, s.reclassify(err, userID)
	}
	return user, nil
}

// GetPublicProfile returns a user for the unauthenticated profile endpoint,
// served from the cache when possible.
func (s *Service) GetPublicProfile(ctx context.Context, userID string) (*database.User, error) {
	if user, ok := s.cache.Get(ctx, userID); ok {
		return user, nil
	}
	version := s.cache.Version(userID)
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, user, version)
	return user, nil
}

// CacheStats returns the counters of the public profile cache.
func (s *Service) CacheStats() *cache.Stats {
	return s.cache.GetStats()
}

// UpdateProfile applies patch to an existing user. It never provisions.
// Any invalid field aborts the whole update.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch Patch) (*database.User, error) {
	fields := map[string]any{}
	changed := []string{}

	err := s.db.Transaction(ctx, func(tx database.DB) error {
		current, err := tx.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}

		if patch.Username != nil {
			username, err := validateUsername(*patch.Username)
			if err != nil {
				return err
			}
			if username != current.Username {
				taken, err := tx.UsernameExists(ctx, username)
				if err != nil {
					return err
				}
				if taken {
					return apperr.Conflict(fmt.Sprintf("Username '%s' is already taken.", username))
				}
				fields["username"] = username
				changed = append(changed, "username")
			}
		}
		if patch.Bio != nil {
			fields["bio"] = *patch.Bio
			changed = append(changed, "bio")
		}
		if patch.AvatarURL != nil {
			fields["avatar_url"] = strings.TrimSpace(*patch.AvatarURL)
			changed = append(changed, "avatarUrl")
		}

		if patch.Skills != nil {
			replaced, err := s.skills.WithTx(tx).ReplaceAll(ctx, userID, *patch.Skills)
			if err != nil {
				return err
			}
			if replaced {
				fields["updated_at"] = s.now()
			}
			changed = append(changed, "skills")
		}

		if len(fields) > 0 {
			if err := tx.UpdateUserFields(ctx, userID, fields); err != nil {
				return err
			}
		}

		if len(changed) == 0 {
			return nil
		}
		return tx.CreateAuditLog(ctx, &database.AuditLog{
			ActorID:      userID,
			Action:       database.AuditProfileUpdated,
			TargetEntity: entityUser,
			TargetID:     userID,
			Details:      map[string]any{"fields": changed},
		})
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperr.Conflict("Username is already taken.")
		}
		return nil, s.reclassify(err, userID)
	}

	s.cache.Invalidate(ctx, userID)
	return s.GetProfile(ctx, userID)
}

// AddSkill adds a skill to an existing user and returns the updated user.
// Adding a skill the user already has changes nothing. The insert, the
// timestamp bump and the audit entry share one transaction, which is retried
// once when a concurrent request inserted the same skill first.
func (s *Service) AddSkill(ctx context.Context, userID, rawName, level string) (*database.User, error) {
	var (
		added bool
		err   error
	)
	for range 2 {
		added, err = s.addSkillOnce(ctx, userID, rawName, level)
		if !errors.Is(err, database.ErrDuplicate) {
			break
		}
		log.Debug("skill add raced with another request, retrying", "user", userID)
	}
	if err != nil {
		if errors.Is(err, database.ErrReferenced) {
			// the owning user row is missing
			return nil, apperr.NotFound(entityUser, "ID", userID)
		}
		return nil, s.reclassify(err, userID)
	}
	if added {
		s.cache.Invalidate(ctx, userID)
	}
	return s.GetProfile(ctx, userID)
}

func (s *Service) addSkillOnce(ctx context.Context, userID, rawName, level string) (bool, error) {
	var added bool
	err := s.db.Transaction(ctx, func(tx database.DB) error {
		var err error
		added, err = s.skills.WithTx(tx).AddSkill(ctx, userID, rawName, level)
		if err != nil || !added {
			return err
		}
		return s.touch(ctx, tx, userID, database.AuditSkillAdded, map[string]any{"skill": skills.Normalize(rawName)})
	})
	return added, err
}

// RemoveSkill removes a skill by name and reports whether it existed.
// The user must exist.
func (s *Service) RemoveSkill(ctx context.Context, userID, rawName string) (bool, error) {
	var removed bool
	err := s.db.Transaction(ctx, func(tx database.DB) error {
		if _, err := tx.GetUserByID(ctx, userID); err != nil {
			return err
		}
		var err error
		removed, err = s.skills.WithTx(tx).RemoveSkillByName(ctx, userID, rawName)
		if err != nil || !removed {
			return err
		}
		return s.touch(ctx, tx, userID, database.AuditSkillRemoved, map[string]any{"skill": skills.Normalize(rawName)})
	})
	if err != nil {
		return false, s.reclassify(err, userID)
	}
	if removed {
		s.cache.Invalidate(ctx, userID)
	}
	return removed, nil
}

// DeleteUser removes a user and their skills. Users that still facilitate
// workshops cannot be deleted.
func (s *Service) DeleteUser(ctx context.Context, actorID, userID string) error {
	err := s.db.Transaction(ctx, func(tx database.DB) error {
		if err := tx.DeleteUser(ctx, userID); err != nil {
			return err
		}
		return tx.CreateAuditLog(ctx, &database.AuditLog{
			ActorID:      actorID,
			Action:       database.AuditUserDeleted,
			TargetEntity: entityUser,
			TargetID:     userID,
		})
	})
	if err != nil {
		if errors.Is(err, database.ErrReferenced) {
			return apperr.Conflict("Cannot delete: related records exist.")
		}
		return s.reclassify(err, userID)
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

// touch bumps the user's updated_at and records action against them.
func (s *Service) touch(ctx context.Context, tx database.DB, userID, action string, details map[string]any) error {
	if err := tx.UpdateUserFields(ctx, userID, map[string]any{"updated_at": s.now()}); err != nil {
		return err
	}
	return tx.CreateAuditLog(ctx, &database.AuditLog{
		ActorID:      userID,
		Action:       action,
		TargetEntity: entityUser,
		TargetID:     userID,
		Details:      details,
	})
}

// reclassify maps store errors onto apperr kinds. Errors that already carry a
// kind pass through.
func (s *Service) reclassify(err error, userID string) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return apperr.NotFound(entityUser, "ID", userID)
	case errors.Is(err, database.ErrDuplicate):
		return apperr.Conflict("A conflicting record already exists.")
	case errors.Is(err, database.ErrReferenced):
		return apperr.Conflict("Cannot delete: related records exist.")
	case apperr.Message(err) != "":
		return err
	}
	return fmt.Errorf("profile %s: %w", userID, err)
}

func validateUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if username == "" {
		return "", apperr.Invalid("Username must not be blank.")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return "", apperr.Invalid(fmt.Sprintf("Username must not exceed %d characters.", MaxUsernameLength))
	}
	return username, nil
}
