package main

import (
	"context"
	"errors"
	"testing"

	"storefront-admin/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	created *models.AdminUser
	err     error
}

func (m *memUsers) FindByEmail(context.Context, string) (*models.AdminUser, error) {
	return m.created, m.err
}
func (m *memUsers) Create(_ context.Context, u *models.AdminUser) error {
	m.created = u
	return m.err
}

func TestCreateAdmin(t *testing.T) {
	users := &memUsers{}
	u, err := createAdmin(context.Background(), users, " Owner@Shop.test ", "hunter2222", bcrypt.MinCost)
	require.NoError(t, err)

	assert.Equal(t, "owner@shop.test", u.Email)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.True(t, u.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.created.PasswordHash), []byte("hunter2222")))
}

func TestCreateAdmin_Rejects(t *testing.T) {
	_, err := createAdmin(context.Background(), &memUsers{}, "owner@shop.test", "short", bcrypt.MinCost)
	assert.ErrorIs(t, err, errWeakPassword)

	_, err = createAdmin(context.Background(), &memUsers{}, "nobody", "hunter2222", bcrypt.MinCost)
	assert.Error(t, err)

	_, err = createAdmin(context.Background(), &memUsers{err: errors.New("duplicate key")}, "owner@shop.test", "hunter2222", bcrypt.MinCost)
	assert.ErrorContains(t, err, "duplicate key")
}
