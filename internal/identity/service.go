package identity

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aurelia-jewels/aurelia-backend/pkg/auth"
	"github.com/aurelia-jewels/aurelia-backend/pkg/auth/session"
	"github.com/aurelia-jewels/aurelia-backend/pkg/config"
	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
	pkgerrors "github.com/aurelia-jewels/aurelia-backend/pkg/errors"
	"github.com/aurelia-jewels/aurelia-backend/pkg/kvstore"
	"github.com/aurelia-jewels/aurelia-backend/pkg/logger"
	"github.com/aurelia-jewels/aurelia-backend/pkg/metrics"
	"github.com/aurelia-jewels/aurelia-backend/pkg/remote"
	"github.com/aurelia-jewels/aurelia-backend/pkg/security"
	"github.com/aurelia-jewels/aurelia-backend/pkg/types"
)

const usersCollection = "users"

// RemoteClient is the upstream surface identity needs.
type RemoteClient interface {
	List(ctx context.Context, collection string, query url.Values) ([]remote.Record, error)
	Create(ctx context.Context, collection string, body any) (remote.Record, error)
	Patch(ctx context.Context, collection, id string, body any) (remote.Record, error)
}

// SessionManager is the refresh-session surface identity needs.
type SessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams groups dependencies for the identity service.
type ServiceParams struct {
	Store    kvstore.Store
	Remote   RemoteClient
	Sessions SessionManager
	JWT      config.JWTConfig
	Password config.PasswordConfig
	Logger   *logger.Logger
	Metrics  *metrics.StorefrontMetrics
	Now      func() time.Time
}

// Service exposes account and session operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (AuthResult, error)
	Login(ctx context.Context, input LoginInput) (AuthResult, error)
	Logout(ctx context.Context, accessID, userID string) error
	Refresh(ctx context.Context, claims *auth.AccessTokenClaims, refreshToken string) (AuthResult, error)
	Current(ctx context.Context, userID string) (types.UserSession, error)

	ListUsers(ctx context.Context) ([]types.User, error)
	SetActive(ctx context.Context, actorID, targetID string, active bool) (types.User, error)
}

type service struct {
	store    kvstore.Store
	remote   RemoteClient
	sessions SessionManager
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	logg     *logger.Logger
	metrics  *metrics.StorefrontMetrics
	now      func() time.Time
}

// NewService builds an identity service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kv store is required")
	}
	if params.Remote == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remote client is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		store:    params.Store,
		remote:   params.Remote,
		sessions: params.Sessions,
		jwtCfg:   params.JWT,
		pwCfg:    params.Password,
		logg:     params.Logger,
		metrics:  params.Metrics,
		now:      now,
	}, nil
}

// Register creates an account and opens a session. The email must be
// unique across the upstream collection and the local store.
func (s *service) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := types.NormalizeEmail(input.Email)

	if name == "" {
		return AuthResult{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return AuthResult{}, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(input.Password) < s.minPasswordLength() {
		return AuthResult{}, pkgerrors.New(pkgerrors.CodeValidation, "password is too short")
	}
	if input.Password != input.ConfirmPassword {
		return AuthResult{}, pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}

	existing := s.candidateUsers(ctx, email)
	for _, candidate := range existing {
		if types.NormalizeEmail(candidate.Email) == email {
			return AuthResult{}, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return AuthResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := types.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         enums.RoleUser,
		Active:       true,
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}

	if err := s.saveLocalUser(ctx, user); err != nil {
		return AuthResult{}, err
	}
	if _, err := s.remote.Create(ctx, usersCollection, upstreamUser(user)); err != nil {
		s.noteFallback(ctx, "create", err)
	}

	return s.openSession(ctx, user)
}

// Login verifies credentials against the merged upstream and local user
// sets. Legacy plaintext fixtures are upgraded to hashes on first match.
func (s *service) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	email := types.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return AuthResult{}, invalidCredentials()
	}

	var match *types.User
	for _, candidate := range s.candidateUsers(ctx, email) {
		if types.NormalizeEmail(candidate.Email) == email {
			c := candidate
			match = &c
			break
		}
	}
	if match == nil {
		return AuthResult{}, invalidCredentials()
	}

	if security.IsArgonHash(match.PasswordHash) {
		ok, err := security.VerifyPassword(input.Password, match.PasswordHash)
		if err != nil || !ok {
			return AuthResult{}, invalidCredentials()
		}
	} else {
		if !security.ComparePlaintext(input.Password, match.PasswordHash) {
			return AuthResult{}, invalidCredentials()
		}
		s.upgradeCredential(ctx, match, input.Password)
	}

	if !match.Active {
		return AuthResult{}, invalidCredentials()
	}

	return s.openSession(ctx, *match)
}

// Logout revokes the refresh session and drops the persisted session.
func (s *service) Logout(ctx context.Context, accessID, userID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	if userID != "" {
		if err := s.store.Remove(ctx, kvstore.SessionKey(userID)); err != nil {
			return err
		}
	}
	return nil
}

// Refresh rotates the refresh token and mints a fresh access token from
// the expired token's claims.
func (s *service) Refresh(ctx context.Context, claims *auth.AccessTokenClaims, refreshToken string) (AuthResult, error) {
	if claims == nil || claims.ID == "" {
		return AuthResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh request")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return AuthResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return AuthResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotating session")
	}

	accessToken, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		UserID: claims.UserID,
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   claims.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return AuthResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	return AuthResult{
		Session: types.UserSession{
			UserID: claims.UserID,
			Name:   claims.Name,
			Email:  claims.Email,
			Role:   claims.Role,
		},
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
	}, nil
}

// Current returns the persisted session for the user.
func (s *service) Current(ctx context.Context, userID string) (types.UserSession, error) {
	if strings.TrimSpace(userID) == "" {
		return types.UserSession{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	var sess types.UserSession
	found, err := kvstore.GetJSON(ctx, s.store, kvstore.SessionKey(userID), &sess)
	if err != nil {
		return types.UserSession{}, err
	}
	if !found {
		return types.UserSession{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "session not found")
	}
	return sess, nil
}

// ListUsers merges upstream and local accounts. Local records win on id
// collision.
func (s *service) ListUsers(ctx context.Context) ([]types.User, error) {
	users := s.candidateUsers(ctx, "")
	if users == nil {
		users = []types.User{}
	}
	return users, nil
}

// SetActive blocks or reactivates an account. Admins cannot change their
// own account, which keeps at least one active admin around.
func (s *service) SetActive(ctx context.Context, actorID, targetID string, active bool) (types.User, error) {
	if strings.TrimSpace(targetID) == "" {
		return types.User{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if actorID == targetID {
		return types.User{}, pkgerrors.New(pkgerrors.CodeForbidden, "cannot change your own account status")
	}

	users := s.candidateUsers(ctx, "")
	for i := range users {
		if users[i].ID == targetID {
			users[i].Active = active
			users[i].UpdatedAt = s.now()
			if err := s.persistUsers(ctx, users); err != nil {
				return types.User{}, err
			}
			if _, err := s.remote.Patch(ctx, usersCollection, targetID, remote.Record{"active": active}); err != nil {
				s.noteFallback(ctx, "patch", err)
			}
			return users[i], nil
		}
	}
	return types.User{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

// candidateUsers merges the upstream collection with the local store.
// An empty email fetches everything; otherwise the upstream query is
// narrowed server-side and re-checked here.
func (s *service) candidateUsers(ctx context.Context, email string) []types.User {
	var query url.Values
	if email != "" {
		query = url.Values{"email": []string{email}}
	}

	var fetched []types.User
	records, err := s.remote.List(ctx, usersCollection, query)
	if err != nil {
		s.noteFallback(ctx, "list", err)
	} else {
		for _, record := range records {
			fetched = append(fetched, types.NormalizeUser(record))
		}
	}

	local, _ := s.loadLocalUsers(ctx)

	byID := make(map[string]int, len(fetched))
	for i, u := range fetched {
		byID[u.ID] = i
	}
	for _, u := range local {
		user := u.toUser()
		if idx, ok := byID[user.ID]; ok {
			fetched[idx] = user
			continue
		}
		fetched = append(fetched, user)
	}
	return fetched
}

func (s *service) openSession(ctx context.Context, user types.User) (AuthResult, error) {
	sess := sessionOf(user)
	if err := kvstore.SetJSON(ctx, s.store, kvstore.SessionKey(user.ID), sess); err != nil {
		return AuthResult{}, err
	}

	accessID := session.NewAccessID()
	accessToken, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return AuthResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return AuthResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating refresh session")
	}

	return AuthResult{
		Session:      sess,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *service) loadLocalUsers(ctx context.Context) ([]storedUser, error) {
	var users []storedUser
	if _, err := kvstore.GetJSON(ctx, s.store, kvstore.UsersKey(), &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *service) saveLocalUser(ctx context.Context, user types.User) error {
	users, err := s.loadLocalUsers(ctx)
	if err != nil {
		return err
	}
	users = append(users, fromUser(user))
	return kvstore.SetJSON(ctx, s.store, kvstore.UsersKey(), users)
}

func (s *service) persistUsers(ctx context.Context, users []types.User) error {
	stored := make([]storedUser, 0, len(users))
	for _, u := range users {
		stored = append(stored, fromUser(u))
	}
	return kvstore.SetJSON(ctx, s.store, kvstore.UsersKey(), stored)
}

// upgradeCredential rewrites a legacy plaintext credential as an argon2id
// hash. Failures are logged and ignored; login already succeeded.
func (s *service) upgradeCredential(ctx context.Context, user *types.User, password string) {
	hash, err := security.HashPassword(password, s.pwCfg)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "credential upgrade failed")
		}
		return
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.now()

	users, err := s.loadLocalUsers(ctx)
	if err != nil {
		return
	}
	replaced := false
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = fromUser(*user)
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, fromUser(*user))
	}
	_ = kvstore.SetJSON(ctx, s.store, kvstore.UsersKey(), users)
}

func (s *service) minPasswordLength() int {
	if s.pwCfg.MinLength > 0 {
		return s.pwCfg.MinLength
	}
	return 6
}

func (s *service) noteFallback(ctx context.Context, operation string, err error) {
	s.metrics.IncRemoteFallback(usersCollection, operation)
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"collection": usersCollection,
			"operation":  operation,
			"error":      err.Error(),
		})
		s.logg.Warn(ctx, "upstream unavailable, using local store")
	}
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}

func upstreamUser(user types.User) remote.Record {
	return remote.Record{
		"id":           user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"passwordHash": user.PasswordHash,
		"role":         user.Role,
		"active":       user.Active,
		"createdAt":    user.CreatedAt,
	}
}
