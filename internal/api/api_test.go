package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/skillswap/skillswap/internal/api/models"
	"github.com/skillswap/skillswap/internal/config"
	"github.com/skillswap/skillswap/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testSecret = "test-bearer-secret"
	janeID     = "11111111-1111-1111-1111-111111111111"
	bobID      = "22222222-2222-2222-2222-222222222222"
	adminID    = "33333333-3333-3333-3333-333333333333"
)

type APITestSuite struct {
	suite.Suite
	db     *database.Client
	server *Server
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := database.New(&config.DatabaseConfig{
		Driver: config.DatabaseDriverSQLite,
		Path:   filepath.Join(s.T().TempDir(), "api.db"),
	})
	require.NoError(s.T(), err)
	s.db = db

	cfg := &config.Config{
		Listen:     "127.0.0.1:0",
		SessionKey: "test-session-key",
		Auth: &config.AuthConfig{
			Bearer: &config.BearerConfig{
				Enabled:  true,
				Mode:     config.BearerModeHMAC,
				Secret:   testSecret,
				Audience: "authenticated",
			},
			Local: &config.LocalAuthConfig{Enabled: true},
		},
		Cache:    &config.CacheConfig{Type: config.CacheTypeMemory, TTL: 60},
		Gravatar: &config.GravatarConfig{Enabled: false},
	}

	server, err := New(context.Background(), cfg, db, true)
	require.NoError(s.T(), err)
	s.server = server
}

func (s *APITestSuite) TearDownTest() {
	_ = s.db.Close()
}

func (s *APITestSuite) token(sub, email string, roles ...string) string {
	claims := jwt.MapClaims{
		"sub":   sub,
		"aud":   "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"email": email,
	}
	if len(roles) > 0 {
		claims["app_metadata"] = map[string]any{"roles": roles}
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(s.T(), err)
	return raw
}

func (s *APITestSuite) request(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, req)
	return w
}

func (s *APITestSuite) decode(w *httptest.ResponseRecorder, v any) {
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *APITestSuite) assertError(w *httptest.ResponseRecorder, status int, message, path string) {
	s.T().Helper()
	require.Equal(s.T(), status, w.Code, w.Body.String())
	var body ErrorResponse
	s.decode(w, &body)
	assert.Equal(s.T(), status, body.Status)
	assert.Equal(s.T(), http.StatusText(status), body.Error)
	assert.Equal(s.T(), path, body.Path)
	assert.False(s.T(), body.Timestamp.IsZero())
	if message != "" {
		assert.Equal(s.T(), message, body.Message)
	}
}

func (s *APITestSuite) me(token string) models.UserProfile {
	w := s.request(http.MethodGet, "/api/v1/users/me", token, "")
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	var p models.UserProfile
	s.decode(w, &p)
	return p
}

func (s *APITestSuite) TestHealthz() {
	w := s.request(http.MethodGet, "/healthz", "", "")
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"status":"ok"}`, w.Body.String())
}

func (s *APITestSuite) TestMe_Unauthenticated() {
	w := s.request(http.MethodGet, "/api/v1/users/me", "", "")
	s.assertError(w, http.StatusUnauthorized, msgUnauthenticated, "/api/v1/users/me")

	w = s.request(http.MethodGet, "/api/v1/users/me", "not-a-jwt", "")
	s.assertError(w, http.StatusUnauthorized, msgUnauthenticated, "/api/v1/users/me")
}

func (s *APITestSuite) TestMe_ProvisionsOnFirstContact() {
	tok := s.token(janeID, "jane.doe@example.com")

	first := s.me(tok)
	assert.Equal(s.T(), janeID, first.ID)
	assert.Equal(s.T(), "jane_doe", first.Username)
	assert.Empty(s.T(), first.Skills)

	second := s.me(tok)
	assert.Equal(s.T(), first.Username, second.Username)
	assert.True(s.T(), first.CreatedAt.Equal(second.CreatedAt))

	logs, err := s.db.GetAuditLogs(context.Background(), 10, 0)
	require.NoError(s.T(), err)
	assert.Len(s.T(), logs, 1, "the second request must not write")
}

func (s *APITestSuite) TestMe_NonUUIDSubject() {
	w := s.request(http.MethodGet, "/api/v1/users/me", s.token("auth0|abc", "x@example.com"), "")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *APITestSuite) TestUpdateMe() {
	tok := s.token(janeID, "jane.doe@example.com")

	w := s.request(http.MethodPatch, "/api/v1/users/me", tok, `{"bio":"hi"}`)
	s.assertError(w, http.StatusNotFound, "UserAccount not found with ID : '"+janeID+"'", "/api/v1/users/me")

	s.me(tok)

	w = s.request(http.MethodPatch, "/api/v1/users/me", tok, `{"bio":"Gopher","skills":["  Go ","react"]}`)
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	var p models.UserProfile
	s.decode(w, &p)
	assert.Equal(s.T(), "Gopher", p.Bio)
	assert.ElementsMatch(s.T(), []string{"go", "react"}, skillNames(p))

	// absent skills stay, null skills stay
	w = s.request(http.MethodPatch, "/api/v1/users/me", tok, `{"username":"jane","skills":null}`)
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &p)
	assert.Equal(s.T(), "jane", p.Username)
	assert.Len(s.T(), p.Skills, 2)

	w = s.request(http.MethodPatch, "/api/v1/users/me", tok, `{"bio":"changed","skills":["ok","   "]}`)
	s.assertError(w, http.StatusBadRequest, "Skill name must not be blank.", "/api/v1/users/me")
	assert.Equal(s.T(), "Gopher", s.me(tok).Bio)

	w = s.request(http.MethodPatch, "/api/v1/users/me", tok, `{"bio":"changed","skills":["ok","`+strings.Repeat("x", 150)+`"]}`)
	s.assertError(w, http.StatusBadRequest, "Skill name must not exceed 100 characters.", "/api/v1/users/me")
	assert.Equal(s.T(), "Gopher", s.me(tok).Bio)
	assert.ElementsMatch(s.T(), []string{"go", "react"}, skillNames(s.me(tok)))

	w = s.request(http.MethodPatch, "/api/v1/users/me", tok, `{"skills":[]}`)
	require.Equal(s.T(), http.StatusOK, w.Code)
	s.decode(w, &p)
	assert.Empty(s.T(), p.Skills)
}

func (s *APITestSuite) TestUpdateMe_UsernameTaken() {
	s.me(s.token(bobID, "bob@example.com"))
	tok := s.token(janeID, "jane.doe@example.com")
	s.me(tok)

	w := s.request(http.MethodPatch, "/api/v1/users/me", tok, `{"username":"bob"}`)
	s.assertError(w, http.StatusConflict, "Username 'bob' is already taken.", "/api/v1/users/me")

	w = s.request(http.MethodPatch, "/api/v1/users/me", tok, `{"username":"`+strings.Repeat("x", 51)+`"}`)
	s.assertError(w, http.StatusBadRequest, msgValidation, "/api/v1/users/me")
}

func (s *APITestSuite) TestSkills() {
	tok := s.token(janeID, "jane.doe@example.com")
	s.me(tok)

	w := s.request(http.MethodPost, "/api/v1/users/me/skills", tok, `{"skillName":"  React ","skillLevel":"expert"}`)
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())

	w = s.request(http.MethodPost, "/api/v1/users/me/skills", tok, `{"skillName":"react"}`)
	require.Equal(s.T(), http.StatusCreated, w.Code)
	var p models.UserProfile
	s.decode(w, &p)
	require.Len(s.T(), p.Skills, 1)
	assert.Equal(s.T(), models.Skill{Name: "react", Level: "expert"}, p.Skills[0])

	w = s.request(http.MethodPost, "/api/v1/users/me/skills", tok, `{"skillName":"   "}`)
	s.assertError(w, http.StatusBadRequest, "Skill name must not be blank.", "/api/v1/users/me/skills")

	w = s.request(http.MethodPost, "/api/v1/users/me/skills", tok, `{"skillLevel":"x"}`)
	s.assertError(w, http.StatusBadRequest, msgValidation, "/api/v1/users/me/skills")

	w = s.request(http.MethodPost, "/api/v1/users/me/skills", tok, `{"skillName":"`+strings.Repeat("a", 101)+`"}`)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)

	w = s.request(http.MethodPost, "/api/v1/users/me/skills/delete", tok, `{"skillName":"nonexistent"}`)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"message":"Nothing to delete. Skill not found."}`, w.Body.String())

	w = s.request(http.MethodPost, "/api/v1/users/me/skills/delete", tok, `{"skillName":"REACT"}`)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"message":"Skill successfully deleted."}`, w.Body.String())
	assert.Empty(s.T(), s.me(tok).Skills)
}

func (s *APITestSuite) TestGetUser_Public() {
	s.me(s.token(janeID, "jane.doe@example.com"))

	w := s.request(http.MethodGet, "/api/v1/users/"+janeID, "", "")
	require.Equal(s.T(), http.StatusOK, w.Code)
	var p models.UserProfile
	s.decode(w, &p)
	assert.Equal(s.T(), "jane_doe", p.Username)

	w = s.request(http.MethodGet, "/api/v1/users/"+bobID, "", "")
	s.assertError(w, http.StatusNotFound, "UserAccount not found with ID : '"+bobID+"'", "/api/v1/users/"+bobID)
}

func (s *APITestSuite) createWorkshop(tok string) models.Workshop {
	w := s.request(http.MethodPost, "/api/v1/workshops", tok,
		`{"title":"Intro to Go","category":"programming","duration":90,"startsAt":"2026-11-01T18:00:00Z","isOnline":true,"tags":["go"]}`)
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	var ws models.Workshop
	s.decode(w, &ws)
	return ws
}

func (s *APITestSuite) TestWorkshops() {
	jane := s.token(janeID, "jane.doe@example.com")
	bob := s.token(bobID, "bob@example.com")
	admin := s.token(adminID, "admin@example.com", "ADMIN")
	s.me(jane)
	s.me(bob)

	w := s.request(http.MethodPost, "/api/v1/workshops", "", `{"title":"x"}`)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)

	w = s.request(http.MethodPost, "/api/v1/workshops", jane, `{"description":"no title"}`)
	s.assertError(w, http.StatusBadRequest, msgValidation, "/api/v1/workshops")

	ws := s.createWorkshop(jane)
	assert.Equal(s.T(), "upcoming", ws.Status)
	assert.Equal(s.T(), "jane_doe", ws.Facilitator.Username)

	w = s.request(http.MethodGet, "/api/v1/workshops", "", "")
	require.Equal(s.T(), http.StatusOK, w.Code)
	var list []models.Workshop
	s.decode(w, &list)
	require.Len(s.T(), list, 1)
	assert.Equal(s.T(), janeID, list[0].Facilitator.ID)

	path := "/api/v1/workshops/" + ws.ID
	w = s.request(http.MethodDelete, path, bob, "")
	s.assertError(w, http.StatusForbidden, msgForbidden, path)

	w = s.request(http.MethodGet, path, "", "")
	assert.Equal(s.T(), http.StatusOK, w.Code)

	w = s.request(http.MethodDelete, path, admin, "")
	assert.Equal(s.T(), http.StatusNoContent, w.Code)

	w = s.request(http.MethodGet, path, "", "")
	s.assertError(w, http.StatusNotFound, "Workshop not found with ID : '"+ws.ID+"'", path)

	w = s.request(http.MethodDelete, path, jane, "")
	assert.Equal(s.T(), http.StatusNotFound, w.Code)

	w = s.request(http.MethodGet, "/api/v1/workshops/abc", "", "")
	s.assertError(w, http.StatusBadRequest, "Invalid workshop ID.", "/api/v1/workshops/abc")
}

func (s *APITestSuite) TestDeleteWorkshop_Owner() {
	jane := s.token(janeID, "jane.doe@example.com")
	s.me(jane)
	ws := s.createWorkshop(jane)

	w := s.request(http.MethodDelete, "/api/v1/workshops/"+ws.ID, jane, "")
	assert.Equal(s.T(), http.StatusNoContent, w.Code)
}

func (s *APITestSuite) TestAdmin() {
	jane := s.token(janeID, "jane.doe@example.com")
	admin := s.token(adminID, "admin@example.com", "ADMIN")
	s.me(jane)

	w := s.request(http.MethodGet, "/api/v1/admin/hello", "", "")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)

	w = s.request(http.MethodGet, "/api/v1/admin/hello", jane, "")
	s.assertError(w, http.StatusForbidden, msgForbidden, "/api/v1/admin/hello")

	w = s.request(http.MethodGet, "/api/v1/admin/hello", admin, "")
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), "Hello Admin! You have successfully accessed a protected resource.", w.Body.String())

	w = s.request(http.MethodGet, "/api/v1/admin/audit?limit=10", admin, "")
	require.Equal(s.T(), http.StatusOK, w.Code)
	var page models.AuditPage
	s.decode(w, &page)
	require.Len(s.T(), page.Items, 1)
	assert.Equal(s.T(), database.AuditUserCreated, page.Items[0].Action)
	assert.NotEmpty(s.T(), page.Items[0].Age)

	w = s.request(http.MethodGet, "/api/v1/admin/audit?limit=0", admin, "")
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *APITestSuite) TestAdmin_Stats() {
	jane := s.token(janeID, "jane.doe@example.com")
	admin := s.token(adminID, "admin@example.com", "ADMIN")
	s.me(jane)
	s.createWorkshop(jane)

	for range 2 {
		w := s.request(http.MethodGet, "/api/v1/users/"+janeID, "", "")
		require.Equal(s.T(), http.StatusOK, w.Code)
	}

	w := s.request(http.MethodGet, "/api/v1/admin/stats", jane, "")
	s.assertError(w, http.StatusForbidden, msgForbidden, "/api/v1/admin/stats")

	w = s.request(http.MethodGet, "/api/v1/admin/stats", admin, "")
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	var stats models.Stats
	s.decode(w, &stats)
	assert.EqualValues(s.T(), 1, stats.Users)
	assert.EqualValues(s.T(), 1, stats.Workshops)
	assert.Equal(s.T(), "profiles", stats.ProfileCache.Name)
	assert.Equal(s.T(), 1, stats.ProfileCache.Hits)
	assert.Equal(s.T(), 1, stats.ProfileCache.Misses)
}

func (s *APITestSuite) TestAdmin_DeleteUser() {
	jane := s.token(janeID, "jane.doe@example.com")
	bob := s.token(bobID, "bob@example.com")
	admin := s.token(adminID, "admin@example.com", "ADMIN")
	s.me(jane)
	s.me(bob)
	s.createWorkshop(jane)

	w := s.request(http.MethodDelete, "/api/v1/admin/users/"+janeID, admin, "")
	s.assertError(w, http.StatusConflict, "Cannot delete: related records exist.", "/api/v1/admin/users/"+janeID)

	w = s.request(http.MethodDelete, "/api/v1/admin/users/"+bobID, admin, "")
	assert.Equal(s.T(), http.StatusNoContent, w.Code)

	w = s.request(http.MethodGet, "/api/v1/users/"+bobID, "", "")
	assert.Equal(s.T(), http.StatusNotFound, w.Code)

	w = s.request(http.MethodDelete, "/api/v1/admin/users/"+bobID, admin, "")
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *APITestSuite) TestLocalLoginSession() {
	w := s.request(http.MethodPost, "/api/v1/auth/login", "", `{"username":"nobody","password":"whatever1"}`)
	s.assertError(w, http.StatusUnauthorized, "Invalid credentials.", "/api/v1/auth/login")
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func skillNames(p models.UserProfile) []string {
	names := make([]string, len(p.Skills))
	for i, sk := range p.Skills {
		names[i] = sk.Name
	}
	return names
}
