package service

import (
	"testing"
	"time"

	"autoparts-inventory/internal/model"
	"autoparts-inventory/internal/repository"
	"autoparts-inventory/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seedAccess(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, repository.NewPrivilegeRepo(db).SeedDefaults())
	require.NoError(t, repository.NewRoleRepo(db).SeedDefaults())
}

func seedUser(t *testing.T, db *gorm.DB, email, roleCode string) *model.User {
	t.Helper()
	role, err := repository.NewRoleRepo(db).FindByCode(roleCode)
	require.NoError(t, err)

	user := &model.User{Email: email, FullName: "User " + email, RoleID: &role.ID, IsActive: true, Privileges: role.Privileges}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, repository.NewUserRepo(db).Create(user))
	return user
}

func newAuthService(t *testing.T) (*authService, *gorm.DB, *recorder) {
	db := setupDB(t)
	seedAccess(t, db)
	rec := &recorder{}
	tokens := jwt.NewManager("test-secret", "autoparts-test", time.Hour)
	svc := NewAuthService(repository.NewUserRepo(db), tokens, 5*time.Minute, rec, zap.NewNop()).(*authService)
	return svc, db, rec
}

func TestAuthService_LoginAndValidate(t *testing.T) {
	svc, db, _ := newAuthService(t)
	seedUser(t, db, "clerk@example.com", model.RoleClerk)

	_, err := svc.Login("clerk@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login("nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.Login("clerk@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Contains(t, resp.Privileges, "transaction:create")
	assert.NotContains(t, resp.Privileges, "transaction:delete")

	claims, err := svc.Authenticate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleClerk, claims.RoleCode)

	valid, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "clerk@example.com", valid.User.Email)

	// a second login replaces the first session
	second, err := svc.Login("clerk@example.com", "secret123")
	require.NoError(t, err)
	_, err = svc.Authenticate(resp.Token)
	assert.ErrorIs(t, err, ErrSessionReplaced)
	_, err = svc.Authenticate(second.Token)
	assert.NoError(t, err)
}

func TestAuthService_IdleSession(t *testing.T) {
	svc, db, rec := newAuthService(t)
	user := seedUser(t, db, "admin@example.com", model.RoleAdmin)

	resp, err := svc.Login("admin@example.com", "secret123")
	require.NoError(t, err)

	later := time.Now().Add(10 * time.Minute)
	svc.now = func() time.Time { return later }
	_, err = svc.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrSessionTimeout)

	require.NoError(t, svc.Heartbeat(user.ID))
	_, err = svc.ValidateToken(resp.Token)
	assert.NoError(t, err)

	require.Len(t, rec.events, 1)
	assert.Equal(t, "user_status_update", rec.events[0]["type"])
}

func TestAuthService_InactiveUser(t *testing.T) {
	svc, db, _ := newAuthService(t)
	user := seedUser(t, db, "gone@example.com", model.RoleClerk)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err := svc.Login("gone@example.com", "secret123")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestAuthService_ResetPassword(t *testing.T) {
	svc, db, _ := newAuthService(t)
	seedUser(t, db, "clerk@example.com", model.RoleClerk)

	resp, err := svc.Login("clerk@example.com", "secret123")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword("clerk@example.com", "nope", "another1"), ErrWrongPassword)
	assert.ErrorIs(t, svc.ResetPassword("x@example.com", "secret123", "another1"), ErrUserNotFound)
	require.NoError(t, svc.ResetPassword("clerk@example.com", "secret123", "another1"))

	_, err = svc.Authenticate(resp.Token)
	assert.ErrorIs(t, err, ErrSessionReplaced)
	_, err = svc.Login("clerk@example.com", "another1")
	assert.NoError(t, err)
}
