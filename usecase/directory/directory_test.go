package directory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/seed"
)

type DirectoryTestSuite struct {
	suite.Suite
	ctx   context.Context
	clock *clock.Mock
	uc    *UseCase
}

func (s *DirectoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewMock()
	s.clock.Add(time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC).Sub(s.clock.Now()))
	s.uc = New(seed.DefaultDirectory(), s.clock, nil)
}

// assertConsistent checks both directory invariants against a snapshot.
func (s *DirectoryTestSuite) assertConsistent() {
	snap := s.uc.Snapshot(s.ctx)

	employeeUsers := map[string]domain.User{}
	for _, u := range snap.Users {
		_, hasCredential := snap.Credentials[u.Username]
		s.True(hasCredential, "user %s has no credential", u.Username)
		if u.Role == domain.RoleEmployee {
			_, dup := employeeUsers[u.ID]
			s.False(dup, "duplicate employee user %s", u.ID)
			employeeUsers[u.ID] = u
		}
	}
	s.Len(employeeUsers, len(snap.Employees))
	for _, e := range snap.Employees {
		u, ok := employeeUsers[e.ID]
		if s.True(ok, "employee %s has no user", e.ID) {
			s.Equal(e.Username, u.Username)
			s.Equal(e.Name, u.Name)
		}
	}
	s.Len(snap.Credentials, len(snap.Users))
}

func (s *DirectoryTestSuite) TestCreateEmployeeMirrorsUserAndCredential() {
	created, err := s.uc.CreateEmployee(s.ctx, domain.EmployeeInput{
		Name:       "Ann Lee",
		Email:      "ann@taskflow.com",
		Position:   "Designer",
		Department: "Design",
		Skills:     []string{"Figma", " Figma ", "", "CSS"},
	})
	s.Require().NoError(err)

	s.Equal("5", created.ID)
	s.Equal("annlee", created.Username)
	s.True(created.IsActive)
	s.Nil(created.LastLogin)
	s.Equal("2025-01-20", created.JoinedDate.String())
	s.Equal([]string{"Figma", "CSS"}, created.Skills)
	s.Equal(domain.DefaultPassword, created.DefaultPassword)

	snap := s.uc.Snapshot(s.ctx)
	s.Equal(domain.DefaultPassword, snap.Credentials["annlee"])
	s.assertConsistent()
}

func (s *DirectoryTestSuite) TestUsernameCollisionAppendsSuffix() {
	first, err := s.uc.CreateEmployee(s.ctx, domain.EmployeeInput{Name: "Ann Lee"})
	s.Require().NoError(err)
	second, err := s.uc.CreateEmployee(s.ctx, domain.EmployeeInput{Name: "Ann  Lee"})
	s.Require().NoError(err)
	third, err := s.uc.CreateEmployee(s.ctx, domain.EmployeeInput{Name: "ANN LEE"})
	s.Require().NoError(err)

	s.Equal("annlee", first.Username)
	s.Equal("annlee1", second.Username)
	s.Equal("annlee2", third.Username)
	s.assertConsistent()
}

func (s *DirectoryTestSuite) TestUsernameAvoidsManagerAccount() {
	created, err := s.uc.CreateEmployee(s.ctx, domain.EmployeeInput{Name: "Manager 1"})
	s.Require().NoError(err)
	s.Equal("manager11", created.Username)
}

func (s *DirectoryTestSuite) TestIDSkipsUserOnlyIDs() {
	uc := New(seed.Directory{
		Users:       []domain.User{{ID: "1", Username: "manager1", Role: domain.RoleManager, Name: "Irfan"}},
		Credentials: map[string]string{"manager1": "pw"},
	}, s.clock, nil)

	created, err := uc.CreateEmployee(s.ctx, domain.EmployeeInput{Name: "Solo"})
	s.Require().NoError(err)
	s.Equal("2", created.ID)
}

func (s *DirectoryTestSuite) TestIDStartsAtOneWhenEmpty() {
	uc := New(seed.Directory{}, s.clock, nil)
	created, err := uc.CreateEmployee(s.ctx, domain.EmployeeInput{Name: "First"})
	s.Require().NoError(err)
	s.Equal("1", created.ID)
}

func (s *DirectoryTestSuite) TestUpdateEmployeeMirrorsName() {
	name := "Nidal K"
	dept := "Platform"
	updated, err := s.uc.UpdateEmployee(s.ctx, "2", domain.EmployeePatch{Name: &name, Department: &dept})
	s.Require().NoError(err)

	s.Equal("2", updated.ID)
	s.Equal("employee1", updated.Username)
	s.Equal("Nidal K", updated.Name)
	s.Equal("Platform", updated.Department)
	s.Equal("nidal@taskflow.com", updated.Email)
	s.assertConsistent()
}

func (s *DirectoryTestSuite) TestUpdateUnknownEmployee() {
	name := "x"
	_, err := s.uc.UpdateEmployee(s.ctx, "99", domain.EmployeePatch{Name: &name})
	s.ErrorIs(err, domain.ErrEmployeeNotFound)
	s.True(domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func (s *DirectoryTestSuite) TestToggleTwiceRestoresStatus() {
	before, err := s.uc.GetEmployee(s.ctx, "4")
	s.Require().NoError(err)

	once, err := s.uc.ToggleEmployeeStatus(s.ctx, "4")
	s.Require().NoError(err)
	s.Equal(!before.IsActive, once.IsActive)

	twice, err := s.uc.ToggleEmployeeStatus(s.ctx, "4")
	s.Require().NoError(err)
	s.Equal(before.IsActive, twice.IsActive)
	s.assertConsistent()

	_, err = s.uc.ToggleEmployeeStatus(s.ctx, "42")
	s.ErrorIs(err, domain.ErrEmployeeNotFound)
}

func (s *DirectoryTestSuite) TestDeleteEmployeeCascades() {
	s.Require().NoError(s.uc.DeleteEmployee(s.ctx, "3"))

	snap := s.uc.Snapshot(s.ctx)
	_, hasEmployee := snap.Employee("employee2")
	s.False(hasEmployee)
	_, hasCredential := snap.Credentials["employee2"]
	s.False(hasCredential)
	for _, u := range snap.Users {
		s.NotEqual("3", u.ID)
	}
	s.assertConsistent()

	s.ErrorIs(s.uc.DeleteEmployee(s.ctx, "3"), domain.ErrEmployeeNotFound)
}

func (s *DirectoryTestSuite) TestResetAndChangePassword() {
	s.Require().NoError(s.uc.ChangePassword(s.ctx, "employee1", "n3wpass"))
	snap := s.uc.Snapshot(s.ctx)
	s.Equal("n3wpass", snap.Credentials["employee1"])
	e, _ := snap.Employee("employee1")
	s.Equal("n3wpass", e.DefaultPassword)

	reset, err := s.uc.ResetPassword(s.ctx, "2")
	s.Require().NoError(err)
	s.Equal("employee1", reset.Username)
	s.Equal(domain.DefaultPassword, reset.NewPassword)
	s.Equal(domain.DefaultPassword, s.uc.Snapshot(s.ctx).Credentials["employee1"])

	_, err = s.uc.ResetPassword(s.ctx, "99")
	s.ErrorIs(err, domain.ErrEmployeeNotFound)
	s.ErrorIs(s.uc.ChangePassword(s.ctx, "ghost", "x"), domain.ErrUsernameNotFound)
}

func (s *DirectoryTestSuite) TestSnapshotIsDefensive() {
	snap := s.uc.Snapshot(s.ctx)
	snap.Credentials["employee1"] = "hijacked"
	snap.Employees[0].Skills[0] = "COBOL"
	snap.Users[0].Name = "Mallory"

	fresh := s.uc.Snapshot(s.ctx)
	s.Equal(domain.DefaultPassword, fresh.Credentials["employee1"])
	s.Equal("React", fresh.Employees[0].Skills[0])
	s.Equal("Irfan", fresh.Users[0].Name)
}

func (s *DirectoryTestSuite) TestStats() {
	stats := s.uc.Stats(s.ctx)
	s.Equal(3, stats.TotalEmployees)
	s.Equal(2, stats.ActiveEmployees)
	s.Equal(1, stats.InactiveEmployees)
	s.Equal(map[string]int{"Development": 2, "Quality Assurance": 1}, stats.DepartmentStats)
	s.Equal(1, stats.SkillsStats["React"])
	s.Equal(1, stats.SkillsStats["Testing"])
}

func (s *DirectoryTestSuite) TestListingHelpers() {
	active, err := s.uc.ActiveEmployees(s.ctx)
	s.Require().NoError(err)
	s.Len(active, 2)

	devs, err := s.uc.ListEmployees(s.ctx, domain.EmployeeFilter{Search: "python"})
	s.Require().NoError(err)
	s.Require().Len(devs, 1)
	s.Equal("Wasim", devs[0].Name)

	qa, err := s.uc.ListEmployees(s.ctx, domain.EmployeeFilter{
		Status: domain.EmployeeStatusInactive,
		Skills: []string{"Testing", "Selenium"},
	})
	s.Require().NoError(err)
	s.Require().Len(qa, 1)
	s.Equal("4", qa[0].ID)

	s.Equal([]string{"Development", "Quality Assurance"}, s.uc.Departments(s.ctx))
	s.Contains(s.uc.UsedSkills(s.ctx), "MongoDB")
	s.Contains(s.uc.AvailableSkills(), "Go")

	_, err = s.uc.GetEmployee(s.ctx, "1")
	s.ErrorIs(err, domain.ErrEmployeeNotFound)
}

func (s *DirectoryTestSuite) TestRecordLogin() {
	at := s.clock.Now()
	s.Require().NoError(s.uc.RecordLogin(s.ctx, "employee2", at))
	e, err := s.uc.GetEmployee(s.ctx, "3")
	s.Require().NoError(err)
	s.Require().NotNil(e.LastLogin)
	s.True(e.LastLogin.Equal(at))

	s.ErrorIs(s.uc.RecordLogin(s.ctx, "manager1", at), domain.ErrUsernameNotFound)
}

func (s *DirectoryTestSuite) TestMutationsNotifySubscribers() {
	calls := 0
	unsubscribe := s.uc.Subscribe(func() { calls++ })

	_, err := s.uc.CreateEmployee(s.ctx, domain.EmployeeInput{Name: "Ann Lee"})
	s.Require().NoError(err)
	_, err = s.uc.ToggleEmployeeStatus(s.ctx, "2")
	s.Require().NoError(err)
	_, err = s.uc.ToggleEmployeeStatus(s.ctx, "404")
	s.Require().Error(err)
	s.Equal(2, calls)

	unsubscribe()
	s.Require().NoError(s.uc.DeleteEmployee(s.ctx, "2"))
	s.Equal(2, calls)
}

func (s *DirectoryTestSuite) TestListenerMayQueryDuringNotify() {
	var seen int
	s.uc.Subscribe(func() { seen = s.uc.Stats(s.ctx).TotalEmployees })
	_, err := s.uc.CreateEmployee(s.ctx, domain.EmployeeInput{Name: "Reentrant"})
	s.Require().NoError(err)
	s.Equal(4, seen)
}

func TestDirectoryTestSuite(t *testing.T) {
	suite.Run(t, new(DirectoryTestSuite))
}

func TestConcurrentOperationsKeepInvariants(t *testing.T) {
	ctx := context.Background()
	uc := New(seed.DefaultDirectory(), clock.NewMock(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := uc.CreateEmployee(ctx, domain.EmployeeInput{Name: "Ann Lee"})
			if !assert.NoError(t, err) {
				return
			}
			name := fmt.Sprintf("Ann Lee %d", i)
			_, err = uc.UpdateEmployee(ctx, created.ID, domain.EmployeePatch{Name: &name})
			assert.NoError(t, err)
			if i%2 == 0 {
				assert.NoError(t, uc.DeleteEmployee(ctx, created.ID))
			}
		}(i)
	}
	wg.Wait()

	snap := uc.Snapshot(ctx)
	require.Len(t, snap.Employees, 13)
	require.Len(t, snap.Credentials, len(snap.Users))

	ids := map[string]struct{}{}
	usernames := map[string]struct{}{}
	for _, e := range snap.Employees {
		_, dupID := ids[e.ID]
		_, dupName := usernames[e.Username]
		assert.False(t, dupID)
		assert.False(t, dupName)
		ids[e.ID] = struct{}{}
		usernames[e.Username] = struct{}{}
	}
}
