package handler

import (
	"net/http"
	"strconv"

	"github.com/ccoveille/go-safecast"
	"github.com/gin-gonic/gin"
	"github.com/skillswap/skillswap/internal/api/models"
	"github.com/skillswap/skillswap/internal/apperr"
	"github.com/skillswap/skillswap/internal/auth"
	"github.com/skillswap/skillswap/internal/profile"
	"github.com/skillswap/skillswap/internal/workshop"
)

type Handler struct {
	profiles  *profile.Service
	workshops *workshop.Service
}

func New(profiles *profile.Service, workshops *workshop.Service) *Handler {
	return &Handler{
		profiles:  profiles,
		workshops: workshops,
	}
}

func parseUintParam(param string) (uint, error) {
	id, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		return 0, err
	}
	return safecast.Convert[uint](id)
}

// bindJSON binds the request body and records a bind error on failure.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return false
	}
	return true
}

// Me returns the caller's profile, provisioning it on first contact.
func (h *Handler) Me(c *gin.Context) {
	p := auth.MustPrincipal(c)

	user, err := h.profiles.ResolveOrCreate(c.Request.Context(), p.UserID, p.Email)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.ToUserProfile(user))
}

// UpdateMe applies a partial update to the caller's profile.
func (h *Handler) UpdateMe(c *gin.Context) {
	p := auth.MustPrincipal(c)

	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.profiles.UpdateProfile(c.Request.Context(), p.UserID, profile.Patch{
		Username:  req.Username,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
		Skills:    req.Skills,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.ToUserProfile(user))
}

// AddSkill adds one skill to the caller's profile.
func (h *Handler) AddSkill(c *gin.Context) {
	p := auth.MustPrincipal(c)

	var req models.SkillRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.profiles.AddSkill(c.Request.Context(), p.UserID, req.SkillName, req.SkillLevel)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, models.ToUserProfile(user))
}

// RemoveSkill removes one skill by name from the caller's profile.
func (h *Handler) RemoveSkill(c *gin.Context) {
	p := auth.MustPrincipal(c)

	var req models.SkillRequest
	if !bindJSON(c, &req) {
		return
	}

	removed, err := h.profiles.RemoveSkill(c.Request.Context(), p.UserID, req.SkillName)
	if err != nil {
		_ = c.Error(err)
		return
	}
	msg := "Nothing to delete. Skill not found."
	if removed {
		msg = "Skill successfully deleted."
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// GetUser returns any user's public profile.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.profiles.GetPublicProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.ToUserProfile(user))
}

// ListWorkshops returns all live workshops.
func (h *Handler) ListWorkshops(c *gin.Context) {
	workshops, err := h.workshops.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.ToWorkshops(workshops))
}

// GetWorkshop returns one workshop.
func (h *Handler) GetWorkshop(c *gin.Context) {
	id, ok := workshopID(c)
	if !ok {
		return
	}
	w, err := h.workshops.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.ToWorkshop(w))
}

// CreateWorkshop creates a workshop facilitated by the caller.
func (h *Handler) CreateWorkshop(c *gin.Context) {
	p := auth.MustPrincipal(c)

	var req models.CreateWorkshopRequest
	if !bindJSON(c, &req) {
		return
	}

	w, err := h.workshops.Create(c.Request.Context(), p.UserID, models.ToWorkshopInput(req))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, models.ToWorkshop(w))
}

// DeleteWorkshop deletes a workshop if the caller facilitates it or is an admin.
func (h *Handler) DeleteWorkshop(c *gin.Context) {
	p := auth.MustPrincipal(c)

	id, ok := workshopID(c)
	if !ok {
		return
	}
	if err := h.workshops.Delete(c.Request.Context(), p, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func workshopID(c *gin.Context) (uint, bool) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		_ = c.Error(apperr.Invalid("Invalid workshop ID."))
		return 0, false
	}
	return id, true
}
