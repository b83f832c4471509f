// Package gravatar derives avatar URLs for newly provisioned users.
package gravatar

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"

	"github.com/skillswap/skillswap/internal/config"
)

const baseURL = "https://www.gravatar.com/avatar/"

// Hash returns the hex SHA-256 of the normalized email.
func Hash(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// AvatarURL returns the Gravatar URL for email, or "" when Gravatar is
// disabled or the email is blank.
func AvatarURL(email string, cfg *config.GravatarConfig) string {
	if cfg == nil || !cfg.Enabled || strings.TrimSpace(email) == "" {
		return ""
	}

	params := url.Values{}
	if cfg.DefaultImage != "" {
		params.Set("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		params.Set("r", cfg.Rating)
	}
	if cfg.Size > 0 {
		params.Set("s", strconv.Itoa(cfg.Size))
	}

	u := baseURL + Hash(email)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}
