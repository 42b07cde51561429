package store

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"venue-pulse-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormStore_SetVibe(t *testing.T) {
	now := time.Now()

	t.Run("updates value and timestamp in one statement", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		store := NewGormStore(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "venue_live_states" SET "updated_at"=$1,"vibe"=$2,"vibe_updated_at"=$3 WHERE venue_id = $4`)).
			WithArgs(Any{}, string(model.VibeParty), Any{}, int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.SetVibe(context.Background(), 7, model.VibeParty, now)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing live state row", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		store := NewGormStore(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "venue_live_states"`)).
			WithArgs(Any{}, string(model.VibeParty), Any{}, int64(404)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := store.SetVibe(context.Background(), 404, model.VibeParty, now)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStore_OverrideLiveState(t *testing.T) {
	now := time.Now()
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	// Both pairs and both timestamps in a single UPDATE.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "venue_live_states" SET "busyness"=$1,"busyness_updated_at"=$2,"updated_at"=$3,"vibe"=$4,"vibe_updated_at"=$5 WHERE venue_id = $6`)).
		WithArgs(string(model.BusynessBusy), Any{}, Any{}, string(model.VibeParty), Any{}, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.OverrideLiveState(context.Background(), 7, model.BusynessBusy, model.VibeParty, now)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_IncrementOfferViews(t *testing.T) {
	t.Run("increments in the database, not in application code", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		store := NewGormStore(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "offers" SET "view_count"=view_count + $1 WHERE id = $2`)).
			WithArgs(1, int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.IncrementOfferViews(context.Background(), 3)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown offer", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		store := NewGormStore(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "offers" SET "view_count"=view_count + $1`)).
			WithArgs(1, int64(404)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := store.IncrementOfferViews(context.Background(), 404)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStore_RecordRedemption(t *testing.T) {
	now := time.Now()

	t.Run("ledger insert and counter bump share a transaction", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		store := NewGormStore(gormDB)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "offer_redemptions"`)).
			WithArgs(int64(3), int64(7), "user-1", "DEMO", Any{}).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "offers" SET "redeem_count"=redeem_count + $1 WHERE id = $2`)).
			WithArgs(1, int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.RecordRedemption(context.Background(), &model.OfferRedemption{
			OfferID:    3,
			VenueID:    7,
			UserID:     "user-1",
			Source:     "DEMO",
			RedeemedAt: now,
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("counter miss rolls the ledger row back", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		store := NewGormStore(gormDB)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "offer_redemptions"`)).
			WithArgs(int64(404), int64(7), "user-1", "DEMO", Any{}).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "offers" SET "redeem_count"=redeem_count + $1`)).
			WithArgs(1, int64(404)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := store.RecordRedemption(context.Background(), &model.OfferRedemption{
			OfferID:    404,
			VenueID:    7,
			UserID:     "user-1",
			Source:     "DEMO",
			RedeemedAt: now,
		})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
