package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lager/internal/config"
	"lager/internal/database"
	"lager/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestPool(t *testing.T, maxConns int) *database.Pool {
	t.Helper()
	pool, err := database.Open(context.Background(), database.Options{
		Driver:   config.DriverSQLite,
		DSN:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MinConns: 1,
		MaxConns: maxConns,
	})
	require.NoError(t, err)
	require.NoError(t, pool.Migrate(context.Background()))
	t.Cleanup(func() { pool.Close() })
	return pool
}

func countArticles(t *testing.T, pool *database.Pool) int64 {
	t.Helper()
	var n int64
	err := pool.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Model(&models.Article{}).Count(&n).Error
	})
	require.NoError(t, err)
	return n
}

func TestPool_NotInitialized(t *testing.T) {
	var nilPool *database.Pool
	err := nilPool.WithTx(context.Background(), func(tx *gorm.DB) error { return nil })
	assert.ErrorIs(t, err, database.ErrNotInitialized)

	var zero database.Pool
	err = zero.WithTx(context.Background(), func(tx *gorm.DB) error { return nil })
	assert.ErrorIs(t, err, database.ErrNotInitialized)
	assert.ErrorIs(t, zero.Ping(context.Background()), database.ErrNotInitialized)
}

func TestPool_OpenRejectsBadOptions(t *testing.T) {
	_, err := database.Open(context.Background(), database.Options{Driver: "oracle", DSN: "x", MaxConns: 1})
	assert.Error(t, err)

	_, err = database.Open(context.Background(), database.Options{Driver: config.DriverSQLite, DSN: "file::memory:", MinConns: 3, MaxConns: 2})
	assert.Error(t, err)
}

func TestPool_CommitOnSuccess(t *testing.T) {
	pool := newTestPool(t, 2)

	err := pool.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&models.Article{EANCode: "1", Name: "Committed"}).Error
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countArticles(t, pool))
}

func TestPool_RollbackOnError(t *testing.T) {
	pool := newTestPool(t, 2)
	boom := errors.New("boom")

	err := pool.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&models.Article{EANCode: "1", Name: "Rolled back"}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), countArticles(t, pool))
}

func TestPool_RollbackOnPanic(t *testing.T) {
	pool := newTestPool(t, 1)

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = pool.WithTx(context.Background(), func(tx *gorm.DB) error {
			tx.Create(&models.Article{EANCode: "1", Name: "Panicked"})
			panic("kaboom")
		})
	})

	// The single connection must be back in the pool and the insert undone.
	assert.Equal(t, int64(0), countArticles(t, pool))
	assert.Equal(t, 0, pool.Stats().InUse)
}

func TestPool_BlocksWhenExhausted(t *testing.T) {
	pool := newTestPool(t, 1)

	holding := make(chan struct{})
	releaseFirst := make(chan struct{})
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- pool.WithTx(context.Background(), func(tx *gorm.DB) error {
			close(holding)
			<-releaseFirst
			return nil
		})
	}()
	<-holding

	secondDone := make(chan error, 1)
	go func() {
		secondDone <- pool.WithTx(context.Background(), func(tx *gorm.DB) error { return nil })
	}()

	select {
	case <-secondDone:
		t.Fatal("second unit of work ran while the only connection was held")
	case <-time.After(100 * time.Millisecond):
	}

	close(releaseFirst)
	require.NoError(t, <-firstDone)
	select {
	case err := <-secondDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second unit of work never acquired the released connection")
	}
}

func TestPool_AcquireHonoursContext(t *testing.T) {
	pool := newTestPool(t, 1)

	holding := make(chan struct{})
	releaseFirst := make(chan struct{})
	go func() {
		_ = pool.WithTx(context.Background(), func(tx *gorm.DB) error {
			close(holding)
			<-releaseFirst
			return nil
		})
	}()
	<-holding
	defer close(releaseFirst)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := pool.WithTx(ctx, func(tx *gorm.DB) error { return nil })
	assert.ErrorIs(t, err, database.ErrUnavailable)
}

func TestPool_CloseDrainsInFlight(t *testing.T) {
	pool := newTestPool(t, 2)

	started := make(chan struct{})
	finish := make(chan struct{})
	workDone := make(chan error, 1)
	go func() {
		workDone <- pool.WithTx(context.Background(), func(tx *gorm.DB) error {
			close(started)
			<-finish
			return tx.Create(&models.Article{EANCode: "9", Name: "Late"}).Error
		})
	}()
	<-started

	closed := make(chan error, 1)
	go func() { closed <- pool.Close() }()

	select {
	case <-closed:
		t.Fatal("Close returned while an operation was still running")
	case <-time.After(100 * time.Millisecond):
	}

	// New work is refused as soon as shutdown begins.
	assert.Eventually(t, func() bool {
		return errors.Is(pool.WithTx(context.Background(), func(tx *gorm.DB) error { return nil }), database.ErrClosed)
	}, time.Second, 10*time.Millisecond)

	close(finish)
	require.NoError(t, <-workDone)
	require.NoError(t, <-closed)

	assert.NoError(t, pool.Close(), "second Close is a no-op")
}

func TestPool_Ping(t *testing.T) {
	pool := newTestPool(t, 1)
	assert.NoError(t, pool.Ping(context.Background()))
	assert.GreaterOrEqual(t, pool.Stats().OpenConnections, 1)
}
