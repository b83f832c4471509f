package models

import (
	"strconv"

	"github.com/mergestat/timediff"
	"github.com/skillswap/skillswap/internal/cache"
	"github.com/skillswap/skillswap/internal/database"
	"github.com/skillswap/skillswap/internal/workshop"
)

// ToUserProfile converts a database.User to its public view.
func ToUserProfile(u *database.User) UserProfile {
	skills := make([]Skill, len(u.Skills))
	for i, s := range u.Skills {
		skills[i] = Skill{Name: s.Name, Level: s.Level}
	}
	return UserProfile{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		Skills:    skills,
		CreatedAt: u.CreatedAt,
	}
}

// ToWorkshop converts a database.Workshop with a preloaded facilitator.
func ToWorkshop(w *database.Workshop) Workshop {
	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}
	return Workshop{
		ID:              strconv.FormatUint(uint64(w.ID), 10),
		Title:           w.Title,
		Description:     w.Description,
		Category:        w.Category,
		SkillLevel:      w.SkillLevel,
		Status:          string(w.Status),
		Duration:        w.DurationMinutes,
		StartsAt:        w.StartsAt,
		IsOnline:        w.IsOnline,
		Location:        w.Location,
		MaxParticipants: w.MaxParticipants,
		CreditReward:    w.CreditReward,
		Tags:            tags,
		Facilitator: Facilitator{
			ID:        w.Facilitator.ID,
			Username:  w.Facilitator.Username,
			AvatarURL: w.Facilitator.AvatarURL,
		},
		CreatedAt: w.CreatedAt,
	}
}

// ToWorkshops converts a slice of database.Workshop.
func ToWorkshops(items []database.Workshop) []Workshop {
	result := make([]Workshop, len(items))
	for i := range items {
		result[i] = ToWorkshop(&items[i])
	}
	return result
}

// ToWorkshopInput converts a create request into service input.
func ToWorkshopInput(r CreateWorkshopRequest) workshop.Input {
	return workshop.Input{
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		SkillLevel:      r.SkillLevel,
		DurationMinutes: r.Duration,
		StartsAt:        r.StartsAt,
		IsOnline:        r.IsOnline,
		Location:        r.Location,
		Tags:            r.Tags,
		MaxParticipants: r.MaxParticipants,
		CreditReward:    r.CreditReward,
	}
}

// ToAuditEntries converts audit rows, adding a human readable age.
func ToAuditEntries(entries []database.AuditLog) []AuditEntry {
	result := make([]AuditEntry, len(entries))
	for i, e := range entries {
		result[i] = AuditEntry{
			ID:           e.ID,
			ActorID:      e.ActorID,
			Action:       e.Action,
			TargetEntity: e.TargetEntity,
			TargetID:     e.TargetID,
			Details:      e.Details,
			CreatedAt:    e.CreatedAt,
			Age:          timediff.TimeDiff(e.CreatedAt),
		}
	}
	return result
}

// ToStats merges store counts and profile cache counters.
func ToStats(db *database.Stats, profiles *cache.Stats) Stats {
	out := Stats{
		Users:         db.Users,
		Skills:        db.Skills,
		Workshops:     db.Workshops,
		LocalAccounts: db.LocalAccounts,
		AuditLogs:     db.AuditLogs,
	}
	if profiles != nil {
		out.ProfileCache.Name = profiles.CacheName
		if profiles.Stats != nil {
			out.ProfileCache.Hits = profiles.Hits
			out.ProfileCache.Misses = profiles.Miss
		}
	}
	return out
}
