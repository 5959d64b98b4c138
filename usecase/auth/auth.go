// Package auth resolves credentials against the directory, built-in accounts
// and the password overlay, and owns the single durable session.
package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/seed"
	"github.com/fastygo/taskflow/pkg/notify"
	"github.com/fastygo/taskflow/repository"
	"github.com/fastygo/taskflow/usecase/directory"
)

// CredentialDirectory is the part of the directory store the gateway relies on.
type CredentialDirectory interface {
	Snapshot(ctx context.Context) directory.Snapshot
	ChangePassword(ctx context.Context, username, newPassword string) error
	RecordLogin(ctx context.Context, username string, at time.Time) error
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, user domain.User, issuedAt time.Time) (string, error)
}

// OpaqueIssuer produces token_<userID>_<unixMillis>_<uuid>.
type OpaqueIssuer struct{}

func (OpaqueIssuer) Issue(_ context.Context, user domain.User, issuedAt time.Time) (string, error) {
	return "token_" + user.ID + "_" + strconv.FormatInt(issuedAt.UnixMilli(), 10) + "_" + uuid.NewString(), nil
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

type UseCase struct {
	slots     repository.SlotStore
	directory CredentialDirectory
	builtIn   []seed.Account
	issuer    TokenIssuer
	clock     clock.Clock
	logger    *zap.Logger
	bus       *notify.Bus

	// opMu serializes Login, Logout and ChangePassword end to end, including
	// the directory calls. mu only guards the cached session so listeners
	// notified during an operation can still read it.
	opMu    sync.Mutex
	mu      sync.Mutex
	loaded  bool
	session *domain.Session
}

func New(slots repository.SlotStore, dir CredentialDirectory, builtIn []seed.Account, issuer TokenIssuer, clk clock.Clock, logger *zap.Logger) *UseCase {
	if issuer == nil {
		issuer = OpaqueIssuer{}
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		slots:     slots,
		directory: dir,
		builtIn:   append([]seed.Account(nil), builtIn...),
		issuer:    issuer,
		clock:     clk,
		logger:    logger,
		bus:       notify.New(),
	}
}

// Subscribe registers a listener for login, logout and password changes.
func (uc *UseCase) Subscribe(fn notify.Listener) func() {
	return uc.bus.Subscribe(fn)
}

// Login authenticates username and opens the session, replacing any previous one.
func (uc *UseCase) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	uc.opMu.Lock()
	result, err := uc.login(ctx, username, password)
	uc.opMu.Unlock()
	if err != nil {
		return nil, err
	}
	uc.bus.Notify()
	return result, nil
}

func (uc *UseCase) login(ctx context.Context, username, password string) (*LoginResult, error) {
	uc.mu.Lock()
	snap := uc.directory.Snapshot(ctx)
	credentials, err := uc.credentials(ctx, snap)
	if err != nil {
		uc.mu.Unlock()
		return nil, err
	}
	if stored, ok := credentials[username]; !ok || stored != password {
		uc.mu.Unlock()
		uc.logger.Info("login rejected", zap.String("username", username))
		return nil, domain.ErrInvalidCredentials
	}
	user, ok := uc.lookupUser(snap, username)
	if !ok {
		uc.mu.Unlock()
		return nil, domain.ErrInvalidCredentials
	}

	employeeLogin := false
	switch p := domain.PrincipalOf(user).(type) {
	case domain.ManagerPrincipal:
	case domain.EmployeePrincipal:
		employee, found := findEmployee(snap, p.EmployeeID)
		if !found {
			uc.mu.Unlock()
			return nil, domain.ErrInvalidCredentials
		}
		if !employee.IsActive {
			uc.mu.Unlock()
			uc.logger.Info("login rejected for inactive account", zap.String("username", username))
			return nil, domain.ErrAccountInactive
		}
		employeeLogin = true
	default:
		uc.mu.Unlock()
		return nil, domain.ErrInvalidCredentials
	}

	now := uc.clock.Now().UTC()
	token, err := uc.issuer.Issue(ctx, user, now)
	if err != nil {
		uc.mu.Unlock()
		return nil, domain.WrapError(domain.ErrCodeInternal, "issue token", err)
	}
	session := &domain.Session{Token: token, User: user, CreatedAt: now}
	if err := uc.storeSession(ctx, session); err != nil {
		uc.mu.Unlock()
		return nil, err
	}
	uc.mu.Unlock()

	if employeeLogin {
		if err := uc.directory.RecordLogin(ctx, username, now); err != nil {
			uc.logger.Warn("failed to record last login", zap.String("username", username), zap.Error(err))
		}
	}
	uc.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &LoginResult{User: user, Token: token}, nil
}

// Logout clears the session. Logging out without a session succeeds.
func (uc *UseCase) Logout(ctx context.Context) error {
	uc.opMu.Lock()
	uc.mu.Lock()
	err := uc.storeSession(ctx, nil)
	uc.mu.Unlock()
	uc.opMu.Unlock()
	if err != nil {
		return err
	}

	uc.logger.Info("user logged out")
	uc.bus.Notify()
	return nil
}

// CurrentUser returns the session user, or nil without a session.
func (uc *UseCase) CurrentUser(ctx context.Context) (*domain.User, error) {
	session, err := uc.currentSession(ctx)
	if err != nil || session == nil {
		return nil, err
	}
	user := session.User
	return &user, nil
}

// CurrentToken returns the session token, or "" without a session.
func (uc *UseCase) CurrentToken(ctx context.Context) (string, error) {
	session, err := uc.currentSession(ctx)
	if err != nil || session == nil {
		return "", err
	}
	return session.Token, nil
}

func (uc *UseCase) IsAuthenticated(ctx context.Context) (bool, error) {
	session, err := uc.currentSession(ctx)
	return session != nil, err
}

// State is the combined read of the session slot.
func (uc *UseCase) State(ctx context.Context) (domain.AuthState, error) {
	session, err := uc.currentSession(ctx)
	if err != nil || session == nil {
		return domain.AuthState{}, err
	}
	user := session.User
	return domain.AuthState{User: &user, Token: session.Token, IsAuthenticated: true}, nil
}

// Authenticate resolves the session user owning token.
func (uc *UseCase) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	session, err := uc.currentSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil || token == "" || session.Token != token {
		return nil, domain.ErrNotAuthenticated
	}
	user := session.User
	return &user, nil
}

// ChangePassword replaces the password of the session user. Employees change
// their directory credential; managers write the overlay.
func (uc *UseCase) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	uc.opMu.Lock()
	user, err := uc.changePassword(ctx, currentPassword, newPassword)
	uc.opMu.Unlock()
	if err != nil {
		return err
	}

	uc.logger.Info("password changed", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	uc.bus.Notify()
	return nil
}

// changePassword runs under opMu. mu is released before the directory call
// because the directory notifies listeners that may read the session.
func (uc *UseCase) changePassword(ctx context.Context, currentPassword, newPassword string) (domain.User, error) {
	uc.mu.Lock()
	if err := uc.ensureLoaded(ctx); err != nil {
		uc.mu.Unlock()
		return domain.User{}, err
	}
	if uc.session == nil {
		uc.mu.Unlock()
		return domain.User{}, domain.ErrNotAuthenticated
	}
	user := uc.session.User
	credentials, err := uc.credentials(ctx, uc.directory.Snapshot(ctx))
	if err != nil {
		uc.mu.Unlock()
		return domain.User{}, err
	}
	if credentials[user.Username] != currentPassword {
		uc.mu.Unlock()
		return domain.User{}, domain.ErrWrongPassword
	}

	switch domain.PrincipalOf(user).(type) {
	case domain.EmployeePrincipal:
		uc.mu.Unlock()
		if err := uc.directory.ChangePassword(ctx, user.Username, newPassword); err != nil {
			return domain.User{}, err
		}
	case domain.ManagerPrincipal:
		err := uc.setOverlay(ctx, user.Username, newPassword)
		uc.mu.Unlock()
		if err != nil {
			return domain.User{}, err
		}
	default:
		uc.mu.Unlock()
		return domain.User{}, domain.ErrForbidden
	}
	return user, nil
}

func (uc *UseCase) currentSession(ctx context.Context) (*domain.Session, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if err := uc.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return uc.session, nil
}

// ensureLoaded reads the session slot once. Callers hold mu.
func (uc *UseCase) ensureLoaded(ctx context.Context) error {
	if uc.loaded {
		return nil
	}
	var session domain.Session
	found, err := repository.LoadJSON(ctx, uc.slots, repository.SlotSession, &session)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "load session", err)
	}
	if found && session.Token != "" {
		uc.session = &session
	}
	uc.loaded = true
	return nil
}

// storeSession persists session, nil clearing the slot, then swaps it in. Callers hold mu.
func (uc *UseCase) storeSession(ctx context.Context, session *domain.Session) error {
	writeCtx := context.WithoutCancel(ctx)
	var err error
	if session == nil {
		err = uc.slots.Delete(writeCtx, repository.SlotSession)
	} else {
		err = repository.SaveJSON(writeCtx, uc.slots, repository.SlotSession, session)
	}
	if err != nil {
		uc.logger.Error("failed to persist session", zap.Error(err))
		return domain.WrapError(domain.ErrCodeInternal, "persist session", err)
	}
	uc.session = session
	uc.loaded = true
	return nil
}

// credentials merges built-in accounts, the directory and the overlay; later sources win.
func (uc *UseCase) credentials(ctx context.Context, snap directory.Snapshot) (map[string]string, error) {
	overlay, err := uc.overlay(ctx)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]string, len(uc.builtIn)+len(snap.Credentials)+len(overlay))
	for _, account := range uc.builtIn {
		merged[account.User.Username] = account.Password
	}
	for username, password := range snap.Credentials {
		merged[username] = password
	}
	for username, password := range overlay {
		merged[username] = password
	}
	return merged, nil
}

func (uc *UseCase) overlay(ctx context.Context) (map[string]string, error) {
	overlay := map[string]string{}
	if _, err := repository.LoadJSON(ctx, uc.slots, repository.SlotCustomCredentials, &overlay); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "load custom credentials", err)
	}
	return overlay, nil
}

func (uc *UseCase) setOverlay(ctx context.Context, username, password string) error {
	overlay, err := uc.overlay(ctx)
	if err != nil {
		return err
	}
	overlay[username] = password
	if err := repository.SaveJSON(context.WithoutCancel(ctx), uc.slots, repository.SlotCustomCredentials, overlay); err != nil {
		uc.logger.Error("failed to persist custom credentials", zap.Error(err))
		return domain.WrapError(domain.ErrCodeInternal, fmt.Sprintf("persist credentials for %s", username), err)
	}
	return nil
}

// lookupUser prefers directory users over built-in ones.
func (uc *UseCase) lookupUser(snap directory.Snapshot, username string) (domain.User, bool) {
	for _, u := range snap.Users {
		if u.Username == username {
			return u, true
		}
	}
	for _, account := range uc.builtIn {
		if account.User.Username == username {
			return account.User, true
		}
	}
	return domain.User{}, false
}

func findEmployee(snap directory.Snapshot, id string) (domain.Employee, bool) {
	for _, e := range snap.Employees {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Employee{}, false
}
