package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/procuremart/internal/domain/errors"
	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/domain/repository"
	pkgAuth "github.com/polkiloo/procuremart/internal/pkg/auth"
	testhelpers "github.com/polkiloo/procuremart/internal/test"
)

type failingUsers struct {
	repository.UserRepository
	err error
}

func (f failingUsers) Create(context.Context, string, string, model.Role) (*model.User, error) {
	return nil, f.err
}

func (f failingUsers) GetByLogin(context.Context, string) (*model.User, error) {
	return nil, f.err
}

func newAuth() (*AuthUseCase, *testhelpers.MemoryStore) {
	store := testhelpers.NewMemoryStore()
	return NewAuthUseCase(store.Users(), testhelpers.HasherStub{}, testhelpers.StrategyStub{}), store
}

func TestAuthUseCaseRegister(t *testing.T) {
	uc, store := newAuth()
	ctx := context.Background()

	user, token, err := uc.Register(ctx, " alice ", "password", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)
	assert.Equal(t, model.RoleClient, user.Role)
	assert.Equal(t, fmt.Sprintf("token-%d-CLIENT", user.ID), token)

	stored, err := store.Users().GetByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash:password", stored.PasswordHash)

	supplier, _, err := uc.Register(ctx, "acme", "password", model.RoleSupplier)
	require.NoError(t, err)
	assert.Equal(t, model.RoleSupplier, supplier.Role)
}

func TestAuthUseCaseRegisterRejects(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()

	_, _, err := uc.Register(ctx, "", "password", "")
	require.ErrorIs(t, err, domainErrors.ErrInvalidCredentials)
	_, _, err = uc.Register(ctx, "user", "", "")
	require.ErrorIs(t, err, domainErrors.ErrInvalidCredentials)
	_, _, err = uc.Register(ctx, "root", "password", model.RoleAdmin)
	require.ErrorIs(t, err, domainErrors.ErrInvalidInput)

	_, _, err = uc.Register(ctx, "bob", "secret", "")
	require.NoError(t, err)
	_, _, err = uc.Register(ctx, "bob", "secret", "")
	require.ErrorIs(t, err, domainErrors.ErrAlreadyExists)
}

func TestAuthUseCaseRegisterDependencyErrors(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	ctx := context.Background()

	hashFails := NewAuthUseCase(store.Users(), testhelpers.HasherStub{HashFn: func(string) (string, error) {
		return "", errors.New("hash error")
	}}, testhelpers.StrategyStub{})
	_, _, err := hashFails.Register(ctx, "user", "pass", "")
	require.Error(t, err)

	repoFails := NewAuthUseCase(failingUsers{err: errors.New("db down")}, testhelpers.HasherStub{}, testhelpers.StrategyStub{})
	_, _, err = repoFails.Register(ctx, "user", "pass", "")
	require.Error(t, err)

	issueFails := NewAuthUseCase(store.Users(), testhelpers.HasherStub{}, testhelpers.StrategyStub{
		IssueFn: func(int64, model.Role) (string, error) { return "", errors.New("cannot issue token") },
	})
	_, _, err = issueFails.Register(ctx, "user", "pass", "")
	require.Error(t, err)
}

func TestAuthUseCaseAuthenticate(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()
	registered, _, err := uc.Register(ctx, "carol", "123456", model.RoleSupplier)
	require.NoError(t, err)

	_, _, err = uc.Authenticate(ctx, "carol", "bad")
	require.ErrorIs(t, err, domainErrors.ErrInvalidCredentials)
	_, _, err = uc.Authenticate(ctx, "nobody", "123456")
	require.ErrorIs(t, err, domainErrors.ErrInvalidCredentials)
	_, _, err = uc.Authenticate(ctx, "", "")
	require.ErrorIs(t, err, domainErrors.ErrInvalidCredentials)

	user, token, err := uc.Authenticate(ctx, "carol", "123456")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, fmt.Sprintf("token-%d-SUPPLIER", user.ID), token)

	failing := NewAuthUseCase(failingUsers{err: errors.New("db down")}, testhelpers.HasherStub{}, testhelpers.StrategyStub{})
	_, _, err = failing.Authenticate(ctx, "carol", "123456")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domainErrors.ErrInvalidCredentials)
}

func TestAuthUseCaseParseToken(t *testing.T) {
	uc, _ := newAuth()

	claims, err := uc.ParseToken("token-42-ADMIN")
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	_, err = uc.ParseToken("bad-token")
	require.ErrorIs(t, err, pkgAuth.ErrInvalidToken)
	_, err = uc.ParseToken("")
	require.ErrorIs(t, err, pkgAuth.ErrInvalidToken)
}

func TestAuthUseCaseResolveActor(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()
	user, _, err := uc.Register(ctx, "dave", "pw", model.RoleClient)
	require.NoError(t, err)

	actor, err := uc.ResolveActor(ctx, pkgAuth.Claims{UserID: user.ID, Role: model.RoleClient})
	require.NoError(t, err)
	assert.Equal(t, model.Actor{UserID: user.ID, Role: model.RoleClient}, actor)

	_, err = uc.ResolveActor(ctx, pkgAuth.Claims{UserID: user.ID, Role: model.RoleAdmin})
	require.ErrorIs(t, err, domainErrors.ErrInvalidCredentials)

	_, err = uc.ResolveActor(ctx, pkgAuth.Claims{UserID: 404})
	require.ErrorIs(t, err, domainErrors.ErrInvalidCredentials)
}
