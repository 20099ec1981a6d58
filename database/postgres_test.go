package database_test

import (
	"storefront-admin/database"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestDSN_Defaults(t *testing.T) {
	cfg := database.Config{User: "admin", Password: "pw", Name: "shop"}
	assert.Equal(t,
		"host=localhost user=admin password=pw dbname=shop port=5432 sslmode=disable TimeZone=UTC",
		cfg.DSN())
}

func TestDSN_Explicit(t *testing.T) {
	cfg := database.Config{Host: "db", Port: "6432", User: "u", Password: "p", Name: "n", SSLMode: "require", TimeZone: "America/Argentina/Buenos_Aires"}
	assert.Contains(t, cfg.DSN(), "host=db")
	assert.Contains(t, cfg.DSN(), "port=6432")
	assert.Contains(t, cfg.DSN(), "sslmode=require")
	assert.Contains(t, cfg.DSN(), "TimeZone=America/Argentina/Buenos_Aires")
}

func TestClose(t *testing.T) {
	assert.NoError(t, database.Close(nil))

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectClose()
	assert.NoError(t, database.Close(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
