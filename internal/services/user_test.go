package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventmanage/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHasher hashes by concatenation so tests can assert without bcrypt cost.
type fakeHasher struct {
	saltErr error
	hashErr error
}

func (f *fakeHasher) GenerateSalt() (string, error) {
	if f.saltErr != nil {
		return "", f.saltErr
	}
	return "salt", nil
}

func (f *fakeHasher) Hash(salt, password string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}
	return salt + ":" + password, nil
}

func (f *fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return errors.New("hash mismatch")
	}
	return nil
}

type fakeTokenIssuer struct {
	issueErr error
	lastRole string
}

func (f *fakeTokenIssuer) Issue(userID, email, role string, expiry time.Duration) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	f.lastRole = role
	return "token-" + userID, nil
}

func (fx *serviceFixture) userService() domain.UserService {
	return NewUserService(fx.users, &fakeHasher{}, 5*time.Second)
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		fx := newServiceFixture()

		user, err := fx.userService().Register(ctx, "Ana", "ana@example.com", "supersecret")
		require.NoError(t, err)
		require.NotEmpty(t, user.ID)
		assert.Equal(t, "Ana", user.Name)
		assert.Equal(t, domain.RoleUser, user.Role)
		assert.True(t, user.Active)
		assert.Equal(t, "salt:supersecret", user.PasswordHash)
		assert.Equal(t, "salt", user.Salt)
	})

	t.Run("duplicate email", func(t *testing.T) {
		fx := newServiceFixture()
		svc := fx.userService()

		_, err := svc.Register(ctx, "Ana", "ana@example.com", "supersecret")
		require.NoError(t, err)
		_, err = svc.Register(ctx, "Another", "ana@example.com", "supersecret")
		require.True(t, errors.Is(err, domain.ErrDuplicateEmail))
	})

	t.Run("short password", func(t *testing.T) {
		fx := newServiceFixture()

		_, err := fx.userService().Register(ctx, "Ana", "ana@example.com", "short")
		require.Error(t, err)
		require.True(t, domain.IsValidation(err))
	})

	t.Run("empty name", func(t *testing.T) {
		fx := newServiceFixture()

		_, err := fx.userService().Register(ctx, "", "ana@example.com", "supersecret")
		require.Error(t, err)
		require.True(t, domain.IsValidation(err))
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("updates name only", func(t *testing.T) {
		fx := newServiceFixture()
		u := fx.users.addUser("u1", domain.RoleUser, true)

		got, err := fx.userService().Update(ctx, "u1", "New Name", "")
		require.NoError(t, err)
		assert.Equal(t, "New Name", got.Name)
		assert.Equal(t, u.Email, got.Email)
	})

	t.Run("email change to taken address", func(t *testing.T) {
		fx := newServiceFixture()
		fx.users.addUser("u1", domain.RoleUser, true)
		fx.users.addUser("u2", domain.RoleUser, true)

		_, err := fx.userService().Update(ctx, "u1", "", "u2@example.com")
		require.True(t, errors.Is(err, domain.ErrDuplicateEmail))
	})

	t.Run("unknown user", func(t *testing.T) {
		fx := newServiceFixture()

		_, err := fx.userService().Update(ctx, "ghost", "Name", "")
		require.True(t, errors.Is(err, domain.ErrUserNotFound))
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		fx := newServiceFixture()
		u := fx.users.addUser("u1", domain.RoleUser, true)
		u.Salt = "salt"
		u.PasswordHash = "salt:oldpassword"

		require.NoError(t, fx.userService().ChangePassword(ctx, "u1", "oldpassword", "newpassword"))
		assert.Equal(t, "salt:newpassword", fx.users.byID["u1"].PasswordHash)
	})

	t.Run("wrong current password", func(t *testing.T) {
		fx := newServiceFixture()
		u := fx.users.addUser("u1", domain.RoleUser, true)
		u.Salt = "salt"
		u.PasswordHash = "salt:oldpassword"

		err := fx.userService().ChangePassword(ctx, "u1", "not-it", "newpassword")
		require.True(t, errors.Is(err, domain.ErrUnauthorized))
	})

	t.Run("short new password", func(t *testing.T) {
		fx := newServiceFixture()
		fx.users.addUser("u1", domain.RoleUser, true)

		err := fx.userService().ChangePassword(ctx, "u1", "oldpassword", "tiny")
		require.Error(t, err)
		require.True(t, domain.IsValidation(err))
	})
}

func TestUserService_Deactivate(t *testing.T) {
	ctx := context.Background()

	fx := newServiceFixture()
	fx.users.addUser("u1", domain.RoleUser, true)

	require.NoError(t, fx.userService().Deactivate(ctx, "u1"))
	assert.False(t, fx.users.byID["u1"].Active)

	err := fx.userService().Deactivate(ctx, "ghost")
	require.True(t, errors.Is(err, domain.ErrUserNotFound))
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	newAuth := func(fx *serviceFixture, issuer domain.TokenIssuer) domain.AuthService {
		return NewAuthService(fx.users, &fakeHasher{}, issuer, time.Hour, 5*time.Second)
	}

	t.Run("success issues token", func(t *testing.T) {
		fx := newServiceFixture()
		u := fx.users.addUser("u1", domain.RoleAdmin, true)
		u.Salt = "salt"
		u.PasswordHash = "salt:supersecret"
		issuer := &fakeTokenIssuer{}

		token, user, err := newAuth(fx, issuer).Login(ctx, "u1@example.com", "supersecret")
		require.NoError(t, err)
		assert.Equal(t, "token-u1", token)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "ADMIN", issuer.lastRole)
	})

	t.Run("wrong password", func(t *testing.T) {
		fx := newServiceFixture()
		u := fx.users.addUser("u1", domain.RoleUser, true)
		u.Salt = "salt"
		u.PasswordHash = "salt:supersecret"

		_, _, err := newAuth(fx, &fakeTokenIssuer{}).Login(ctx, "u1@example.com", "wrong")
		require.True(t, errors.Is(err, domain.ErrUnauthorized))
	})

	t.Run("unknown email maps to unauthorized", func(t *testing.T) {
		fx := newServiceFixture()

		_, _, err := newAuth(fx, &fakeTokenIssuer{}).Login(ctx, "nobody@example.com", "whatever")
		require.True(t, errors.Is(err, domain.ErrUnauthorized))
	})

	t.Run("deactivated account", func(t *testing.T) {
		fx := newServiceFixture()
		u := fx.users.addUser("u1", domain.RoleUser, false)
		u.Salt = "salt"
		u.PasswordHash = "salt:supersecret"

		_, _, err := newAuth(fx, &fakeTokenIssuer{}).Login(ctx, "u1@example.com", "supersecret")
		require.True(t, errors.Is(err, domain.ErrUnauthorized))
		assert.Contains(t, err.Error(), "deactivated")
	})

	t.Run("issuer failure", func(t *testing.T) {
		fx := newServiceFixture()
		u := fx.users.addUser("u1", domain.RoleUser, true)
		u.Salt = "salt"
		u.PasswordHash = "salt:supersecret"

		_, _, err := newAuth(fx, &fakeTokenIssuer{issueErr: errors.New("boom")}).Login(ctx, "u1@example.com", "supersecret")
		require.Error(t, err)
		require.False(t, errors.Is(err, domain.ErrUnauthorized))
	})
}
