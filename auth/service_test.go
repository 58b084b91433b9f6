package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch/stockwatch/auth/jwt"
	"github.com/stockwatch/stockwatch/auth/password"
	"github.com/stockwatch/stockwatch/errors"
	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/model"
)

type fakeStore struct {
	byLogin map[string]*model.SecurityInfo
}

func (f *fakeStore) FindByLogin(_ context.Context, identifier string) (*model.SecurityInfo, error) {
	if info, ok := f.byLogin[identifier]; ok {
		return info, nil
	}
	return nil, errors.NoSuchUser()
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	hasher := password.NewBcryptHasher(password.WithCost(4))
	tokens, err := jwt.NewService(jwt.Config{Secret: "0123456789abcdef0123456789abcdef"}, logger.NewDefault())
	require.NoError(t, err)

	hash, err := hasher.Hash("pw123")
	require.NoError(t, err)

	store := &fakeStore{byLogin: map[string]*model.SecurityInfo{}}
	info := &model.SecurityInfo{
		UserID: 1, Username: "bob", Email: "bob@x.com",
		PasswordHash: hash, Role: model.RoleUser,
	}
	store.byLogin["bob"] = info
	store.byLogin["bob@x.com"] = info

	svc, err := NewService(store, hasher, tokens, logger.NewDefault())
	require.NoError(t, err)
	return svc
}

func TestLoginSuccessIssuesVerifiableToken(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Login(context.Background(), "bob", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.True(t, svc.Tokens().Verify(token))
	subject, ok := svc.Tokens().Subject(token)
	require.True(t, ok)
	assert.Equal(t, "bob", subject)
}

func TestLoginByEmail(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Login(context.Background(), "bob@x.com", "pw123")
	require.NoError(t, err)

	// token subject is always the username, not the email used to log in
	subject, ok := svc.Tokens().Subject(token)
	require.True(t, ok)
	assert.Equal(t, "bob", subject)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, wrongPassword := svc.Login(ctx, "bob", "wrong")
	_, unknownLogin := svc.Login(ctx, "nobody", "pw123")

	require.Error(t, wrongPassword)
	require.Error(t, unknownLogin)
	assert.Equal(t, wrongPassword.Error(), unknownLogin.Error())
	assert.True(t, errors.IsCode(wrongPassword, errors.ErrCodeUnauthorized))
	assert.True(t, errors.IsCode(unknownLogin, errors.ErrCodeUnauthorized))
}

func TestResolve(t *testing.T) {
	svc := newTestService(t)

	p, err := svc.Resolve(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, uint(1), p.UserID)
	assert.Equal(t, model.RoleUser, p.Role)

	_, err = svc.Resolve(context.Background(), "nobody")
	assert.Error(t, err)
}
