package skills

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/skillswap/skillswap/internal/apperr"
	"github.com/skillswap/skillswap/internal/config"
	"github.com/skillswap/skillswap/internal/database"
	"github.com/skillswap/skillswap/internal/database/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  React ", "react"},
		{"react", "react"},
		{"Go\t", "go"},
		{"   ", ""},
		{"Machine Learning", "machine learning"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got))
		})
	}
}

func TestParse_Blank(t *testing.T) {
	_, err := Parse(" \t ")
	assert.ErrorIs(t, err, apperr.ErrInvalidSkill)
}

func TestParse_Length(t *testing.T) {
	got, err := Parse("  " + strings.Repeat("X", MaxNameLength) + "  ")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", MaxNameLength), got)

	_, err = Parse(strings.Repeat("x", MaxNameLength+1))
	assert.ErrorIs(t, err, apperr.ErrInvalid)
	assert.Equal(t, "Skill name must not exceed 100 characters.", err.Error())

	// counted in characters, not bytes
	_, err = Parse(strings.Repeat("é", MaxNameLength))
	assert.NoError(t, err)
}

func TestParseAll(t *testing.T) {
	got, err := ParseAll([]string{"Go", " go ", "Rust", "GO"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust"}, got)

	_, err = ParseAll([]string{"go", ""})
	assert.ErrorIs(t, err, apperr.ErrInvalidSkill)

	_, err = ParseAll([]string{"go", strings.Repeat("x", 150)})
	assert.ErrorIs(t, err, ErrNameTooLong)

	got, err = ParseAll(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDiff(t *testing.T) {
	del, ins := Diff([]string{"go", "rust", "sql"}, []string{"sql", "python", "go"})
	assert.ElementsMatch(t, []string{"rust"}, del)
	assert.ElementsMatch(t, []string{"python"}, ins)

	del, ins = Diff([]string{"go"}, nil)
	assert.Equal(t, []string{"go"}, del)
	assert.Empty(t, ins)
}

type ManagerTestSuite struct {
	suite.Suite
	db      *mock.MockDB
	manager *Manager
	ctx     context.Context
}

func (s *ManagerTestSuite) SetupTest() {
	client, err := database.New(&config.DatabaseConfig{
		Driver: config.DatabaseDriverSQLite,
		Path:   filepath.Join(s.T().TempDir(), "skills.db"),
	})
	require.NoError(s.T(), err)
	s.T().Cleanup(func() { _ = client.Close() })

	s.ctx = context.Background()
	require.NoError(s.T(), client.CreateUser(s.ctx, &database.User{ID: "u1", Username: "alice"}))

	s.db = mock.NewMockDB(client)
	s.manager = NewManager(s.db)
}

func (s *ManagerTestSuite) names() []string {
	list, err := s.db.ListSkills(s.ctx, "u1")
	require.NoError(s.T(), err)
	return lo.Map(list, func(sk database.Skill, _ int) string { return sk.Name })
}

func (s *ManagerTestSuite) TestAddSkill_NormalizedDuplicateIsNoop() {
	added, err := s.manager.AddSkill(s.ctx, "u1", "  React ", "beginner")
	require.NoError(s.T(), err)
	assert.True(s.T(), added)

	added, err = s.manager.AddSkill(s.ctx, "u1", "react", "expert")
	require.NoError(s.T(), err)
	assert.False(s.T(), added)

	assert.Equal(s.T(), []string{"react"}, s.names())
	sk, err := s.db.FindSkill(s.ctx, "u1", "react")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "beginner", sk.Level)
}

func (s *ManagerTestSuite) TestAddSkill_Blank() {
	_, err := s.manager.AddSkill(s.ctx, "u1", "   ", "")
	assert.ErrorIs(s.T(), err, apperr.ErrInvalidSkill)
	assert.Empty(s.T(), s.names())
	assert.Equal(s.T(), 0, s.db.CreateSkillCalls())
}

func (s *ManagerTestSuite) TestAddSkill_ConcurrentDuplicate() {
	// another writer inserts the same skill between lookup and insert
	s.db.BeforeCreateSkill = func(ctx context.Context, sk *database.Skill) {
		require.NoError(s.T(), s.db.DB.CreateSkill(ctx, &database.Skill{UserID: sk.UserID, Name: sk.Name}))
	}

	added, err := s.manager.AddSkill(s.ctx, "u1", "Go", "")
	assert.ErrorIs(s.T(), err, database.ErrDuplicate)
	assert.False(s.T(), added)
	assert.Equal(s.T(), []string{"go"}, s.names())

	s.db.BeforeCreateSkill = nil
	added, err = s.manager.AddSkill(s.ctx, "u1", "Go", "")
	require.NoError(s.T(), err)
	assert.False(s.T(), added)
	assert.Equal(s.T(), 1, s.db.CreateSkillCalls())
}

func (s *ManagerTestSuite) TestAddSkill_TooLong() {
	_, err := s.manager.AddSkill(s.ctx, "u1", strings.Repeat("x", MaxNameLength+1), "")
	assert.ErrorIs(s.T(), err, ErrNameTooLong)
	assert.Equal(s.T(), 0, s.db.CreateSkillCalls())
}

func (s *ManagerTestSuite) TestAddSkill_StoreFailure() {
	s.db.FailCreateSkill(assert.AnError, 1)

	_, err := s.manager.AddSkill(s.ctx, "u1", "go", "")
	assert.ErrorIs(s.T(), err, assert.AnError)
	assert.Empty(s.T(), s.names())
}

func (s *ManagerTestSuite) TestRemoveSkillByName() {
	_, err := s.manager.AddSkill(s.ctx, "u1", "go", "")
	require.NoError(s.T(), err)
	_, err = s.manager.AddSkill(s.ctx, "u1", "rust", "")
	require.NoError(s.T(), err)

	removed, err := s.manager.RemoveSkillByName(s.ctx, "u1", "nonexistent")
	require.NoError(s.T(), err)
	assert.False(s.T(), removed)
	assert.Len(s.T(), s.names(), 2)

	removed, err = s.manager.RemoveSkillByName(s.ctx, "u1", "  RUST ")
	require.NoError(s.T(), err)
	assert.True(s.T(), removed)
	assert.Equal(s.T(), []string{"go"}, s.names())
}

func (s *ManagerTestSuite) TestReplaceAll() {
	_, err := s.manager.AddSkill(s.ctx, "u1", "go", "expert")
	require.NoError(s.T(), err)
	_, err = s.manager.AddSkill(s.ctx, "u1", "rust", "")
	require.NoError(s.T(), err)

	changed, err := s.manager.ReplaceAll(s.ctx, "u1", []string{"Go", "SQL", "sql"})
	require.NoError(s.T(), err)
	assert.True(s.T(), changed)
	assert.Equal(s.T(), []string{"go", "sql"}, s.names())

	kept, err := s.db.FindSkill(s.ctx, "u1", "go")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "expert", kept.Level)

	changed, err = s.manager.ReplaceAll(s.ctx, "u1", []string{"sql", " GO "})
	require.NoError(s.T(), err)
	assert.False(s.T(), changed)

	changed, err = s.manager.ReplaceAll(s.ctx, "u1", []string{})
	require.NoError(s.T(), err)
	assert.True(s.T(), changed)
	assert.Empty(s.T(), s.names())
}

func (s *ManagerTestSuite) TestReplaceAll_InvalidEntryWritesNothing() {
	_, err := s.manager.AddSkill(s.ctx, "u1", "go", "")
	require.NoError(s.T(), err)

	_, err = s.manager.ReplaceAll(s.ctx, "u1", []string{"python", " "})
	assert.ErrorIs(s.T(), err, apperr.ErrInvalidSkill)
	assert.Equal(s.T(), []string{"go"}, s.names())

	_, err = s.manager.ReplaceAll(s.ctx, "u1", []string{"python", strings.Repeat("x", 150)})
	assert.ErrorIs(s.T(), err, ErrNameTooLong)
	assert.Equal(s.T(), []string{"go"}, s.names())
}

func TestManagerTestSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}
