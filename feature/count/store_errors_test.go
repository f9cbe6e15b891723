package count

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock GORM DB for driving storage failures.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestStoreWrapsReadFailures(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := NewStore(gormDB)
	boom := errors.New("disk I/O error")

	mock.ExpectQuery(".*").WillReturnError(boom)

	_, err := store.EventsForSession(context.Background(), "sess-1")
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "read", storageErr.Op)
	assert.ErrorIs(t, err, boom)
}

func TestStoreWrapsWriteFailures(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := NewStore(gormDB)
	boom := errors.New("database is locked")

	mock.ExpectBegin()
	mock.ExpectExec(".*").WillReturnError(boom)
	mock.ExpectRollback()

	e := event("ev-1", "sess-1", "dev-a", "1001", 1)
	err := store.Append(context.Background(), &e)
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "append", storageErr.Op)
	assert.ErrorIs(t, err, boom)
}

func TestStoreWrapsSettleFailures(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := NewStore(gormDB)
	boom := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec(".*").WillReturnError(boom)
	mock.ExpectRollback()

	err := store.MarkSettled(context.Background(), []string{"ev-1"})
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "settle", storageErr.Op)
}
