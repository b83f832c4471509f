// Package skills manages the per-user set of normalized skill names.
package skills

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/skillswap/skillswap/internal/apperr"
	"github.com/skillswap/skillswap/internal/database"
)

// Normalize trims surrounding whitespace and lower-cases name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// MaxNameLength bounds a normalized skill name, in characters.
const MaxNameLength = 100

// ErrNameTooLong is returned for skill names longer than MaxNameLength.
var ErrNameTooLong = apperr.Invalid(fmt.Sprintf("Skill name must not exceed %d characters.", MaxNameLength))

// Parse normalizes name and rejects blank results with apperr.ErrInvalidSkill
// and over-long ones with ErrNameTooLong.
func Parse(name string) (string, error) {
	n := Normalize(name)
	if n == "" {
		return "", apperr.ErrInvalidSkill
	}
	if utf8.RuneCountInString(n) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return n, nil
}

// ParseAll parses every entry and collapses duplicates, keeping first-seen order.
// A single invalid entry fails the whole list.
func ParseAll(names []string) ([]string, error) {
	parsed := make([]string, 0, len(names))
	for _, raw := range names {
		n, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, n)
	}
	return lo.Uniq(parsed), nil
}

// Diff returns the names to delete from current and to insert into it so that
// it equals desired. Both inputs must already be normalized.
func Diff(current, desired []string) (toDelete, toInsert []string) {
	return lo.Difference(lo.Uniq(current), lo.Uniq(desired))
}

// Manager applies skill mutations for a user.
type Manager struct {
	db database.DB
}

// NewManager returns a Manager backed by db.
func NewManager(db database.DB) *Manager {
	return &Manager{db: db}
}

// WithTx returns a Manager that runs against tx.
func (m *Manager) WithTx(tx database.DB) *Manager {
	return &Manager{db: tx}
}

// AddSkill adds a skill to the user. Adding a name the user already has is a
// no-op and reports added=false. A concurrent insert of the same name
// surfaces as database.ErrDuplicate; callers retry their unit of work.
func (m *Manager) AddSkill(ctx context.Context, userID, rawName, level string) (added bool, err error) {
	name, err := Parse(rawName)
	if err != nil {
		return false, err
	}

	_, err = m.db.FindSkill(ctx, userID, name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return false, fmt.Errorf("failed to look up skill: %w", err)
	}

	err = m.db.CreateSkill(ctx, &database.Skill{
		UserID: userID,
		Name:   name,
		Level:  strings.TrimSpace(level),
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			log.Debug("skill inserted concurrently", "user", userID, "skill", name)
		}
		return false, fmt.Errorf("failed to add skill: %w", err)
	}
	return true, nil
}

// RemoveSkillByName removes the skill whose normalized name matches rawName.
// It reports whether anything was removed; a missing skill is not an error.
func (m *Manager) RemoveSkillByName(ctx context.Context, userID, rawName string) (bool, error) {
	name := Normalize(rawName)
	if name == "" {
		return false, nil
	}
	n, err := m.db.DeleteSkills(ctx, userID, []string{name})
	if err != nil {
		return false, fmt.Errorf("failed to remove skill: %w", err)
	}
	return n > 0, nil
}

// ReplaceAll makes the user's skill set equal to rawNames and reports whether
// anything changed. Every entry is validated before anything is written.
// Kept skills retain their level.
func (m *Manager) ReplaceAll(ctx context.Context, userID string, rawNames []string) (bool, error) {
	desired, err := ParseAll(rawNames)
	if err != nil {
		return false, err
	}

	existing, err := m.db.ListSkills(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to list skills: %w", err)
	}
	current := lo.Map(existing, func(s database.Skill, _ int) string { return s.Name })

	toDelete, toInsert := Diff(current, desired)
	if _, err := m.db.DeleteSkills(ctx, userID, toDelete); err != nil {
		return false, fmt.Errorf("failed to remove skills: %w", err)
	}
	for _, name := range toInsert {
		if err := m.db.CreateSkill(ctx, &database.Skill{UserID: userID, Name: name}); err != nil {
			return false, fmt.Errorf("failed to add skill %q: %w", name, err)
		}
	}
	return len(toDelete) > 0 || len(toInsert) > 0, nil
}
