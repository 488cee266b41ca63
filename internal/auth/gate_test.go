package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"PropertyManager/internal/db"
	"PropertyManager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) UserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

type GateTestSuite struct {
	suite.Suite
	store *db.DB
	gate  *Gate
	ctx   context.Context
}

func (s *GateTestSuite) SetupTest() {
	s.ctx = context.Background()
	store, err := db.Open(s.ctx, "sqlite", "file:"+strings.ReplaceAll(s.T().Name(), "/", "_")+"?mode=memory&cache=shared")
	require.NoError(s.T(), err)
	require.NoError(s.T(), store.Migrate(s.ctx))
	_, err = store.EnsureAdmin(s.ctx, "admin@example.com", "admin123")
	require.NoError(s.T(), err)

	s.store = store
	s.gate = NewGate(store)
}

func (s *GateTestSuite) TearDownTest() {
	_ = s.store.Close()
}

func (s *GateTestSuite) TestDefaultCredentialSucceeds() {
	u, err := s.gate.Authenticate(s.ctx, "admin@example.com", "admin123")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "admin@example.com", u.Email)
	assert.Equal(s.T(), models.RoleAdmin, u.Role)
}

func (s *GateTestSuite) TestRepeatedLoginSucceeds() {
	first, err := s.gate.Authenticate(s.ctx, "admin@example.com", "admin123")
	require.NoError(s.T(), err)
	second, err := s.gate.Authenticate(s.ctx, "admin@example.com", "admin123")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), first.ID, second.ID)
}

func (s *GateTestSuite) TestEmailIsNormalized() {
	_, err := s.gate.Authenticate(s.ctx, "  Admin@Example.COM ", "admin123")
	assert.NoError(s.T(), err)
}

func (s *GateTestSuite) TestWrongCredentialsFail() {
	cases := []struct {
		name, email, password string
	}{
		{"wrong password", "admin@example.com", "admin124"},
		{"unknown email", "root@example.com", "admin123"},
		{"both wrong", "root@example.com", "nope"},
		{"password case", "admin@example.com", "ADMIN123"},
		{"password padded", "admin@example.com", " admin123"},
		{"empty email", "", "admin123"},
		{"empty password", "admin@example.com", ""},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			u, err := s.gate.Authenticate(s.ctx, tc.email, tc.password)
			assert.ErrorIs(s.T(), err, ErrAuthentication)
			assert.Zero(s.T(), u.ID)
		})
	}
}

func (s *GateTestSuite) TestFailuresAreIndistinguishable() {
	_, errEmail := s.gate.Authenticate(s.ctx, "root@example.com", "admin123")
	_, errPass := s.gate.Authenticate(s.ctx, "admin@example.com", "wrong")
	assert.Equal(s.T(), errEmail, errPass)
	assert.Equal(s.T(), errEmail.Error(), errPass.Error())
}

func TestGateTestSuite(t *testing.T) {
	suite.Run(t, new(GateTestSuite))
}

func TestAuthenticate_StorageErrorIsNotAuthError(t *testing.T) {
	users := &mockUsers{}
	boom := errors.New("connection reset")
	users.On("UserByEmail", mock.Anything, "admin@example.com").Return(models.User{}, boom)

	_, err := NewGate(users).Authenticate(context.Background(), "admin@example.com", "admin123")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrAuthentication)
	users.AssertExpectations(t)
}

func TestAuthenticate_EmptyInputSkipsLookup(t *testing.T) {
	users := &mockUsers{}
	_, err := NewGate(users).Authenticate(context.Background(), "   ", "x")
	assert.ErrorIs(t, err, ErrAuthentication)
	users.AssertNotCalled(t, "UserByEmail", mock.Anything, mock.Anything)
}
