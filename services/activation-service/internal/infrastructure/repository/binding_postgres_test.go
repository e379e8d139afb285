package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"licenseplatform/services/activation-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB runs the gorm repositories against a throwaway sqlite file.
// sqlite skips the row lock clause; its single writer gives the same
// serialization the lock provides on postgres.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "activation.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// openContendedDB allows several connections so Bind calls really overlap.
// BEGIN IMMEDIATE makes each transaction take the write lock up front, which
// is what the serial row lock gives on postgres; waiters block on the busy
// timeout instead of failing.
func openContendedDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_txlock=immediate", filepath.Join(t.TempDir(), "activation.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(8)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func binding(serial, machine string, at time.Time) domain.Binding {
	return domain.Binding{
		SerialNo:       serial,
		MachineID:      machine,
		ClientAddress:  "203.0.113.7",
		ClientOS:       "Windows",
		ClientTime:     "2024/07/11 12:00:00",
		LastUpdateTime: at,
	}
}

func TestBindingRepository_Bind(t *testing.T) {
	repo := NewBindingRepository(openTestDB(t))
	ctx := context.Background()
	at := time.Date(2024, 7, 11, 3, 0, 0, 0, time.UTC)

	res, err := repo.Bind(ctx, binding("SN001", "MID1", at), 2)
	require.NoError(t, err)
	assert.Equal(t, domain.BindCreated, res)

	res, err = repo.Bind(ctx, binding("SN001", "MID2", at), 2)
	require.NoError(t, err)
	assert.Equal(t, domain.BindCreated, res)

	_, err = repo.Bind(ctx, binding("SN001", "MID3", at), 2)
	assert.ErrorIs(t, err, domain.ErrSlotsExhausted)
	var full *domain.SlotsExhaustedError
	require.ErrorAs(t, err, &full)
	assert.Equal(t, 2, full.Bound)

	later := binding("SN001", "MID1", at.Add(time.Hour))
	later.ClientAddress = "198.51.100.9"
	res, err = repo.Bind(ctx, later, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.BindUpdated, res)

	bindings, err := repo.ListBySerial(ctx, "SN001")
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	assert.Equal(t, "MID1", bindings[0].MachineID)
	assert.Equal(t, "198.51.100.9", bindings[0].ClientAddress)
	assert.True(t, bindings[0].LastUpdateTime.Equal(at.Add(time.Hour)))
	assert.Equal(t, "MID2", bindings[1].MachineID)
}

func TestBindingRepository_ListUnknownSerial(t *testing.T) {
	repo := NewBindingRepository(openTestDB(t))

	bindings, err := repo.ListBySerial(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, bindings)
}

func TestBindingRepository_SerialsAreIndependent(t *testing.T) {
	repo := NewBindingRepository(openTestDB(t))
	ctx := context.Background()
	at := time.Now().UTC()

	for _, serial := range []string{"SN-A", "SN-B"} {
		for _, machine := range []string{"M1", "M2"} {
			_, err := repo.Bind(ctx, binding(serial, machine, at), 2)
			require.NoError(t, err)
		}
	}

	a, err := repo.ListBySerial(ctx, "SN-A")
	require.NoError(t, err)
	assert.Len(t, a, 2)
}

func TestAuditRepository_Append(t *testing.T) {
	db := openTestDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	entry := domain.AuditEntry{
		SerialNo:    "SN001",
		Timestamp:   1720666800000,
		MachineID:   "MID1",
		Operation:   domain.OperationAdd,
		Description: domain.ConflictMessage,
		ClientOS:    "Windows 11",
	}
	require.NoError(t, repo.Append(ctx, entry))
	assert.ErrorIs(t, repo.Append(ctx, entry), domain.ErrDuplicateAuditEntry)

	entry.Timestamp++
	require.NoError(t, repo.Append(ctx, entry))

	var rows []AuditLogGorm
	require.NoError(t, db.Order("timestamp asc").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "Add", rows[0].Operation)
	assert.Equal(t, domain.ConflictMessage, rows[0].Description)
	assert.Equal(t, "Windows 11", rows[1].ClientOS)
}

func TestBindingRepository_ConcurrentBinds(t *testing.T) {
	tests := []struct {
		name        string
		seed        []string
		wantCreated int
	}{
		{name: "fresh serial", wantCreated: 2},
		{name: "one slot left", seed: []string{"M-SEED"}, wantCreated: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewBindingRepository(openContendedDB(t))
			ctx := context.Background()
			at := time.Date(2024, 7, 11, 3, 0, 0, 0, time.UTC)

			for _, machine := range tt.seed {
				_, err := repo.Bind(ctx, binding("SN-RACE", machine, at), 2)
				require.NoError(t, err)
			}

			const contenders = 8
			var (
				g       errgroup.Group
				mu      sync.Mutex
				created int
				refused int
			)
			for i := 0; i < contenders; i++ {
				i := i
				g.Go(func() error {
					res, err := repo.Bind(ctx, binding("SN-RACE", fmt.Sprintf("M%d", i), at), 2)
					mu.Lock()
					defer mu.Unlock()
					switch {
					case errors.Is(err, domain.ErrSlotsExhausted):
						refused++
						return nil
					case err != nil:
						return err
					case res == domain.BindCreated:
						created++
					}
					return nil
				})
			}
			require.NoError(t, g.Wait())

			assert.Equal(t, tt.wantCreated, created)
			assert.Equal(t, contenders-tt.wantCreated, refused)

			bindings, err := repo.ListBySerial(ctx, "SN-RACE")
			require.NoError(t, err)
			assert.Len(t, bindings, 2)
		})
	}
}
