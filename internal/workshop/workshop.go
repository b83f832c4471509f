// Package workshop manages workshops offered by facilitators.
package workshop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/skillswap/skillswap/internal/apperr"
	"github.com/skillswap/skillswap/internal/auth"
	"github.com/skillswap/skillswap/internal/database"
	"github.com/skillswap/skillswap/internal/policy"
)

const entityWorkshop = "Workshop"

// Input holds the fields of a new workshop.
type Input struct {
	Title           string
	Description     string
	Category        string
	SkillLevel      string
	DurationMinutes int
	StartsAt        time.Time
	IsOnline        bool
	Location        string
	Tags            []string
	MaxParticipants int
	CreditReward    int
}

// Service creates, lists and deletes workshops.
type Service struct {
	db database.DB
}

// New returns a workshop Service.
func New(db database.DB) *Service {
	return &Service{db: db}
}

// Create stores a workshop facilitated by facilitatorID.
func (s *Service) Create(ctx context.Context, facilitatorID string, in Input) (*database.Workshop, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Invalid("Workshop title must not be blank.")
	}
	if in.DurationMinutes < 0 || in.MaxParticipants < 0 || in.CreditReward < 0 {
		return nil, apperr.Invalid("Duration, participants and credit reward must not be negative.")
	}

	w := &database.Workshop{
		FacilitatorID:   facilitatorID,
		Title:           title,
		Description:     in.Description,
		Category:        strings.TrimSpace(in.Category),
		SkillLevel:      strings.TrimSpace(in.SkillLevel),
		DurationMinutes: in.DurationMinutes,
		StartsAt:        in.StartsAt,
		IsOnline:        in.IsOnline,
		Location:        strings.TrimSpace(in.Location),
		Tags:            in.Tags,
		MaxParticipants: in.MaxParticipants,
		CreditReward:    in.CreditReward,
	}
	if w.Tags == nil {
		w.Tags = []string{}
	}

	err := s.db.Transaction(ctx, func(tx database.DB) error {
		facilitator, err := tx.GetUserByID(ctx, facilitatorID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return apperr.NotFound("UserAccount", "ID", facilitatorID)
			}
			return err
		}
		if err := tx.CreateWorkshop(ctx, w); err != nil {
			return err
		}
		w.Facilitator = *facilitator
		return tx.CreateAuditLog(ctx, &database.AuditLog{
			ActorID:      facilitatorID,
			Action:       database.AuditWorkshopCreated,
			TargetEntity: entityWorkshop,
			TargetID:     fmt.Sprint(w.ID),
			Details:      map[string]any{"title": title},
		})
	})
	if err != nil {
		return nil, reclassify(err)
	}

	log.Info("workshop created", "id", w.ID, "facilitator", facilitatorID)
	return w, nil
}

// Get returns a live workshop with its facilitator.
func (s *Service) Get(ctx context.Context, id uint) (*database.Workshop, error) {
	w, err := s.db.GetWorkshopByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound(entityWorkshop, "ID", id)
		}
		return nil, reclassify(err)
	}
	return w, nil
}

// List returns all live workshops with their facilitators.
func (s *Service) List(ctx context.Context) ([]database.Workshop, error) {
	workshops, err := s.db.GetWorkshops(ctx)
	if err != nil {
		return nil, reclassify(err)
	}
	return workshops, nil
}

// Delete soft-deletes a workshop when the principal facilitates it or is an
// administrator. The load, decision and delete share one transaction.
func (s *Service) Delete(ctx context.Context, principal *auth.Principal, id uint) error {
	if principal == nil {
		return apperr.ErrUnauthenticated
	}

	err := s.db.Transaction(ctx, func(tx database.DB) error {
		w, err := tx.GetWorkshopByID(ctx, id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return apperr.NotFound(entityWorkshop, "ID", id)
			}
			return err
		}

		decision := policy.AuthorizeMutation(principal.UserID, principal.Roles, w.FacilitatorID)
		if !decision.Allowed {
			log.Warn("workshop delete denied",
				"id", id, "requester", principal.UserID, "reason", decision.Reason)
			return apperr.ErrForbidden
		}

		if err := tx.DeleteWorkshop(ctx, id); err != nil {
			return err
		}
		return tx.CreateAuditLog(ctx, &database.AuditLog{
			ActorID:      principal.UserID,
			Action:       database.AuditWorkshopDeleted,
			TargetEntity: entityWorkshop,
			TargetID:     fmt.Sprint(id),
			Details:      map[string]any{"facilitator": w.FacilitatorID, "admin": principal.UserID != w.FacilitatorID && principal.IsAdmin()},
		})
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound(entityWorkshop, "ID", id)
		}
		return reclassify(err)
	}

	log.Info("workshop deleted", "id", id, "by", principal.UserID)
	return nil
}

func reclassify(err error) error {
	switch {
	case errors.Is(err, apperr.ErrForbidden), errors.Is(err, apperr.ErrUnauthenticated):
		return err
	case apperr.Message(err) != "":
		return err
	case errors.Is(err, database.ErrReferenced):
		return apperr.Conflict("Cannot delete: related records exist.")
	case errors.Is(err, database.ErrDuplicate):
		return apperr.Conflict("A conflicting record already exists.")
	}
	return fmt.Errorf("workshop: %w", err)
}
