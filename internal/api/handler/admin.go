package handler

import (
	"net/http"
	"strconv"

	"github.com/ccoveille/go-safecast"
	"github.com/gin-gonic/gin"
	"github.com/skillswap/skillswap/internal/api/models"
	"github.com/skillswap/skillswap/internal/apperr"
	"github.com/skillswap/skillswap/internal/auth"
	"github.com/skillswap/skillswap/internal/database"
	"github.com/skillswap/skillswap/internal/profile"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type AdminHandler struct {
	db       database.DB
	profiles *profile.Service
}

func NewAdmin(db database.DB, profiles *profile.Service) *AdminHandler {
	return &AdminHandler{
		db:       db,
		profiles: profiles,
	}
}

func (h *AdminHandler) Hello(c *gin.Context) {
	c.String(http.StatusOK, "Hello Admin! You have successfully accessed a protected resource.")
}

// GetAuditLogs returns a page of audit entries, newest first.
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultAuditLimit)
	if err != nil || limit < 1 || limit > maxAuditLimit {
		_ = c.Error(apperr.Invalid("Invalid limit parameter."))
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		_ = c.Error(apperr.Invalid("Invalid offset parameter."))
		return
	}

	entries, err := h.db.GetAuditLogs(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.AuditPage{
		Items:  models.ToAuditEntries(entries),
		Limit:  limit,
		Offset: offset,
	})
}

// Stats returns row counts and profile cache counters.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.db.GetStats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.ToStats(stats, h.profiles.CacheStats()))
}

// DeleteUser removes a user and their skills.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	p := auth.MustPrincipal(c)

	if err := h.profiles.DeleteUser(c.Request.Context(), p.UserID, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return safecast.Convert[int](v)
}
