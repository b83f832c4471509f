// Package mock wraps a database.DB and injects failures for tests.
package mock

import (
	"context"
	"sync"

	"github.com/skillswap/skillswap/internal/database"
)

var _ database.DB = (*MockDB)(nil)

// MockDB delegates to a real database.DB and fails selected calls.
// Each error field is returned by the matching method while its counter is
// positive; the counter is decremented on every injected failure.
type MockDB struct {
	database.DB

	mu *sync.Mutex
	f  *faults

	// BeforeCreateUser runs before a user insert is delegated.
	// It can be used to simulate a concurrent writer.
	BeforeCreateUser func(ctx context.Context, user *database.User)
	// BeforeCreateSkill runs before a skill insert is delegated.
	BeforeCreateSkill func(ctx context.Context, skill *database.Skill)
}

type faults struct {
	createUserErr    error
	createUserTimes  int
	createSkillErr   error
	createSkillTimes int
	getWorkshopErr   error
	createUserCalls  int
	createSkillCalls int
}

// NewMockDB wraps db.
func NewMockDB(db database.DB) *MockDB {
	return &MockDB{DB: db, mu: &sync.Mutex{}, f: &faults{}}
}

// FailCreateUser makes the next n user inserts return err.
func (m *MockDB) FailCreateUser(err error, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.f.createUserErr, m.f.createUserTimes = err, n
}

// FailCreateSkill makes the next n skill inserts return err.
func (m *MockDB) FailCreateSkill(err error, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.f.createSkillErr, m.f.createSkillTimes = err, n
}

// FailGetWorkshop makes every workshop lookup return err until Reset.
func (m *MockDB) FailGetWorkshop(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.f.getWorkshopErr = err
}

// CreateUserCalls reports how many user inserts were attempted.
func (m *MockDB) CreateUserCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.f.createUserCalls
}

// CreateSkillCalls reports how many skill inserts were attempted.
func (m *MockDB) CreateSkillCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.f.createSkillCalls
}

// Reset clears all injected failures and counters.
func (m *MockDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.f = faults{}
}

func (m *MockDB) CreateUser(ctx context.Context, user *database.User) error {
	if m.BeforeCreateUser != nil {
		m.BeforeCreateUser(ctx, user)
	}
	m.mu.Lock()
	m.f.createUserCalls++
	if m.f.createUserTimes > 0 {
		m.f.createUserTimes--
		err := m.f.createUserErr
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()
	return m.DB.CreateUser(ctx, user)
}

func (m *MockDB) CreateSkill(ctx context.Context, skill *database.Skill) error {
	if m.BeforeCreateSkill != nil {
		m.BeforeCreateSkill(ctx, skill)
	}
	m.mu.Lock()
	m.f.createSkillCalls++
	if m.f.createSkillTimes > 0 {
		m.f.createSkillTimes--
		err := m.f.createSkillErr
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()
	return m.DB.CreateSkill(ctx, skill)
}

func (m *MockDB) GetWorkshopByID(ctx context.Context, id uint) (*database.Workshop, error) {
	m.mu.Lock()
	err := m.f.getWorkshopErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.DB.GetWorkshopByID(ctx, id)
}

// Transaction keeps the injected failures active inside the transaction.
func (m *MockDB) Transaction(ctx context.Context, fn func(tx database.DB) error) error {
	return m.DB.Transaction(ctx, func(tx database.DB) error {
		return fn(&MockDB{DB: tx, mu: m.mu, f: m.f, BeforeCreateUser: m.BeforeCreateUser, BeforeCreateSkill: m.BeforeCreateSkill})
	})
}
