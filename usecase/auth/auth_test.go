package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/seed"
	"github.com/fastygo/taskflow/repository"
	"github.com/fastygo/taskflow/repository/memory"
	"github.com/fastygo/taskflow/usecase/directory"
)

type AuthTestSuite struct {
	suite.Suite
	ctx   context.Context
	clock *clock.Mock
	slots repository.SlotStore
	dir   *directory.UseCase
	uc    *UseCase
}

func (s *AuthTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewMock()
	s.clock.Add(time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC).Sub(s.clock.Now()))
	s.slots = memory.NewSlotStore()
	s.dir = directory.New(seed.DefaultDirectory(), s.clock, nil)
	s.uc = s.gateway()
}

func (s *AuthTestSuite) gateway() *UseCase {
	return New(s.slots, s.dir, seed.BuiltInAccounts(), nil, s.clock, nil)
}

func (s *AuthTestSuite) TestManagerLogin() {
	result, err := s.uc.Login(s.ctx, "manager1", "password123")
	s.Require().NoError(err)
	s.Equal(domain.RoleManager, result.User.Role)
	s.Equal("1", result.User.ID)
	s.True(strings.HasPrefix(result.Token, "token_1_"+"1737365400000"+"_"), result.Token)

	state, err := s.uc.State(s.ctx)
	s.Require().NoError(err)
	s.True(state.IsAuthenticated)
	s.Equal(result.Token, state.Token)
	s.Equal("manager1", state.User.Username)
}

func (s *AuthTestSuite) TestWrongPasswordOrUnknownUser() {
	_, err := s.uc.Login(s.ctx, "manager1", "nope")
	s.ErrorIs(err, domain.ErrInvalidCredentials)

	_, err = s.uc.Login(s.ctx, "ghost", "password123")
	s.ErrorIs(err, domain.ErrInvalidCredentials)

	ok, err := s.uc.IsAuthenticated(s.ctx)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *AuthTestSuite) TestInactiveEmployeeIsGated() {
	_, err := s.uc.Login(s.ctx, "employee3", "password123")
	s.ErrorIs(err, domain.ErrAccountInactive)

	_, err = s.dir.ToggleEmployeeStatus(s.ctx, "4")
	s.Require().NoError(err)
	result, err := s.uc.Login(s.ctx, "employee3", "password123")
	s.Require().NoError(err)
	s.Equal("4", result.User.ID)

	_, err = s.dir.ToggleEmployeeStatus(s.ctx, "4")
	s.Require().NoError(err)
	_, err = s.uc.Login(s.ctx, "employee3", "password123")
	s.True(domain.IsDomainError(err, domain.ErrCodeAccountInactive))
}

func (s *AuthTestSuite) TestEmployeeLoginRecordsLastLogin() {
	_, err := s.uc.Login(s.ctx, "employee1", "password123")
	s.Require().NoError(err)

	employee, err := s.dir.GetEmployee(s.ctx, "2")
	s.Require().NoError(err)
	s.Require().NotNil(employee.LastLogin)
	s.True(employee.LastLogin.Equal(s.clock.Now()))
}

func (s *AuthTestSuite) TestDeletedEmployeeCannotLogIn() {
	s.Require().NoError(s.dir.DeleteEmployee(s.ctx, "2"))
	_, err := s.uc.Login(s.ctx, "employee1", "password123")
	s.ErrorIs(err, domain.ErrInvalidCredentials)
}

func (s *AuthTestSuite) TestLogoutIsIdempotent() {
	_, err := s.uc.Login(s.ctx, "employee2", "password123")
	s.Require().NoError(err)

	s.Require().NoError(s.uc.Logout(s.ctx))
	s.Require().NoError(s.uc.Logout(s.ctx))

	user, err := s.uc.CurrentUser(s.ctx)
	s.Require().NoError(err)
	s.Nil(user)
	token, err := s.uc.CurrentToken(s.ctx)
	s.Require().NoError(err)
	s.Empty(token)
}

func (s *AuthTestSuite) TestSessionSurvivesRestart() {
	result, err := s.uc.Login(s.ctx, "employee1", "password123")
	s.Require().NoError(err)

	reopened := s.gateway()
	user, err := reopened.CurrentUser(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(user)
	s.Equal(result.User, *user)

	authenticated, err := reopened.Authenticate(s.ctx, result.Token)
	s.Require().NoError(err)
	s.Equal("employee1", authenticated.Username)

	_, err = reopened.Authenticate(s.ctx, "stale")
	s.ErrorIs(err, domain.ErrNotAuthenticated)
}

func (s *AuthTestSuite) TestSecondLoginReplacesSession() {
	first, err := s.uc.Login(s.ctx, "employee1", "password123")
	s.Require().NoError(err)
	second, err := s.uc.Login(s.ctx, "manager1", "password123")
	s.Require().NoError(err)
	s.NotEqual(first.Token, second.Token)

	_, err = s.uc.Authenticate(s.ctx, first.Token)
	s.ErrorIs(err, domain.ErrNotAuthenticated)
}

func (s *AuthTestSuite) TestChangePasswordRequiresSession() {
	err := s.uc.ChangePassword(s.ctx, "password123", "secret99")
	s.ErrorIs(err, domain.ErrNotAuthenticated)
}

func (s *AuthTestSuite) TestChangePasswordChecksCurrent() {
	_, err := s.uc.Login(s.ctx, "employee1", "password123")
	s.Require().NoError(err)
	err = s.uc.ChangePassword(s.ctx, "wrong", "secret99")
	s.True(domain.IsDomainError(err, domain.ErrCodeInvalidCredentials))
}

func (s *AuthTestSuite) TestEmployeeChangesDirectoryCredential() {
	_, err := s.uc.Login(s.ctx, "employee1", "password123")
	s.Require().NoError(err)
	s.Require().NoError(s.uc.ChangePassword(s.ctx, "password123", "secret99"))

	snap := s.dir.Snapshot(s.ctx)
	s.Equal("secret99", snap.Credentials["employee1"])

	s.Require().NoError(s.uc.Logout(s.ctx))
	_, err = s.uc.Login(s.ctx, "employee1", "password123")
	s.ErrorIs(err, domain.ErrInvalidCredentials)
	_, err = s.uc.Login(s.ctx, "employee1", "secret99")
	s.NoError(err)
}

func (s *AuthTestSuite) TestManagerChangesOverlay() {
	_, err := s.uc.Login(s.ctx, "manager1", "password123")
	s.Require().NoError(err)
	s.Require().NoError(s.uc.ChangePassword(s.ctx, "password123", "b0ss-pass"))

	var overlay map[string]string
	found, err := repository.LoadJSON(s.ctx, s.slots, repository.SlotCustomCredentials, &overlay)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(map[string]string{"manager1": "b0ss-pass"}, overlay)

	reopened := s.gateway()
	_, err = reopened.Login(s.ctx, "manager1", "password123")
	s.ErrorIs(err, domain.ErrInvalidCredentials)
	_, err = reopened.Login(s.ctx, "manager1", "b0ss-pass")
	s.NoError(err)
}

func (s *AuthTestSuite) TestListenersMayReadSession() {
	var seen []bool
	s.uc.Subscribe(func() {
		ok, err := s.uc.IsAuthenticated(s.ctx)
		s.Require().NoError(err)
		seen = append(seen, ok)
	})
	s.dir.Subscribe(func() {
		_, err := s.uc.CurrentUser(s.ctx)
		s.Require().NoError(err)
	})

	_, err := s.uc.Login(s.ctx, "employee1", "password123")
	s.Require().NoError(err)
	s.Require().NoError(s.uc.ChangePassword(s.ctx, "password123", "secret99"))
	s.Require().NoError(s.uc.Logout(s.ctx))

	s.Equal([]bool{true, true, false}, seen)
}

// gatedDirectory parks the first ChangePassword call until release is closed.
type gatedDirectory struct {
	*directory.UseCase
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedDirectory(dir *directory.UseCase) *gatedDirectory {
	return &gatedDirectory{UseCase: dir, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedDirectory) ChangePassword(ctx context.Context, username, newPassword string) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.UseCase.ChangePassword(ctx, username, newPassword)
}

func (s *AuthTestSuite) TestConcurrentPasswordChangesDoNotLoseUpdates() {
	gated := newGatedDirectory(s.dir)
	uc := New(s.slots, gated, seed.BuiltInAccounts(), nil, s.clock, nil)
	_, err := uc.Login(s.ctx, "employee1", "password123")
	s.Require().NoError(err)

	first := make(chan error, 1)
	go func() { first <- uc.ChangePassword(s.ctx, "password123", "aaaaaa") }()
	<-gated.entered

	second := make(chan error, 1)
	go func() { second <- uc.ChangePassword(s.ctx, "password123", "bbbbbb") }()

	select {
	case err := <-second:
		second <- err
		s.Failf("second change finished while the first was in flight", "err=%v", err)
	case <-time.After(20 * time.Millisecond):
	}

	close(gated.release)
	s.Require().NoError(<-first)
	s.ErrorIs(<-second, domain.ErrWrongPassword)
	s.Equal("aaaaaa", s.dir.Snapshot(s.ctx).Credentials["employee1"])
}

func (s *AuthTestSuite) TestLogoutWaitsForPasswordChange() {
	gated := newGatedDirectory(s.dir)
	uc := New(s.slots, gated, seed.BuiltInAccounts(), nil, s.clock, nil)
	_, err := uc.Login(s.ctx, "employee1", "password123")
	s.Require().NoError(err)

	changed := make(chan error, 1)
	go func() { changed <- uc.ChangePassword(s.ctx, "password123", "cccccc") }()
	<-gated.entered

	loggedOut := make(chan error, 1)
	go func() { loggedOut <- uc.Logout(s.ctx) }()

	select {
	case err := <-loggedOut:
		loggedOut <- err
		s.Fail("logout finished while a password change was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(gated.release)
	s.Require().NoError(<-changed)
	s.Require().NoError(<-loggedOut)

	ok, err := uc.IsAuthenticated(s.ctx)
	s.Require().NoError(err)
	s.False(ok)
	s.ErrorIs(uc.ChangePassword(s.ctx, "cccccc", "dddddd"), domain.ErrNotAuthenticated)
	s.Equal("cccccc", s.dir.Snapshot(s.ctx).Credentials["employee1"])
}

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}

func TestOpaqueIssuerFormat(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	token, err := OpaqueIssuer{}.Issue(context.Background(), domain.User{ID: "7"}, at)
	require.NoError(t, err)

	parts := strings.SplitN(token, "_", 4)
	require.Len(t, parts, 4)
	assert.Equal(t, "token", parts[0])
	assert.Equal(t, "7", parts[1])
	assert.Equal(t, "1700000000123", parts[2])
	assert.NotEmpty(t, parts[3])
}
