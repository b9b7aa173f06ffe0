package persistence

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/storesync/internal/infrastructure/config"
)

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"products", "categories", "sub_categories", "invoices", "sync_logs", "sync_settings", "number_sequences"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}

	require.NoError(t, db.Ping())
	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections, "sqlite is limited to one connection")
}

func TestDatabase_PingAndClose(t *testing.T) {
	gormDB, mock, _ := newMockGormDB(t)
	db := &Database{DB: gormDB}

	mock.ExpectPing()
	assert.NoError(t, db.Ping())

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Error(t, db.Ping())

	mock.ExpectClose()
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionStats_Struct(t *testing.T) {
	stats := ConnectionStats{OpenConnections: 10, InUse: 6, Idle: 4}
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
}
