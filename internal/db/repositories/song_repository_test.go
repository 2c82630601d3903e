package repositories

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/songbird-live/songbird-backend/internal/db/models"
)

func newSongRepo(t *testing.T) (*SongRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewSongRepository(db), mock
}

func songBatch(tenantID uuid.UUID, entries ...[2]string) []models.Song {
	songs := make([]models.Song, 0, len(entries))
	for _, e := range entries {
		songs = append(songs, models.Song{
			TenantID: tenantID,
			SystemID: 0,
			Artist:   e[0],
			Title:    e[1],
			ComboKey: models.SongComboKey(e[0], e[1]),
		})
	}
	return songs
}

// ---------------------------------------------------------------------------
// BulkInsert
// ---------------------------------------------------------------------------

func TestBulkInsert_CountsInsertedRows(t *testing.T) {
	repo, mock := newSongRepo(t)
	tenantID := uuid.New()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO songs.*ON CONFLICT.*DO NOTHING")
	prep.ExpectExec().
		WithArgs(tenantID, int64(0), "Journey", "Don't Stop Believin'", models.SongComboKey("Journey", "Don't Stop Believin'")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs(tenantID, int64(0), "Queen", "Somebody to Love", models.SongComboKey("Queen", "Somebody to Love")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	songs := songBatch(tenantID,
		[2]string{"Journey", "Don't Stop Believin'"},
		[2]string{"Queen", "Somebody to Love"},
	)
	inserted, err := repo.BulkInsert(context.Background(), songs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted != 2 {
		t.Errorf("BulkInsert() = %d, want 2", inserted)
	}
}

func TestBulkInsert_DuplicatesNotCounted(t *testing.T) {
	// ON CONFLICT DO NOTHING reports zero rows affected for a duplicate combo
	// key; the insert count must reflect only genuinely new rows.
	repo, mock := newSongRepo(t)
	tenantID := uuid.New()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO songs.*ON CONFLICT.*DO NOTHING")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	songs := songBatch(tenantID,
		[2]string{"Journey", "Don't Stop Believin'"},
		[2]string{"JOURNEY", "don't stop believin'"},
	)
	inserted, err := repo.BulkInsert(context.Background(), songs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted != 1 {
		t.Errorf("BulkInsert() = %d, want 1 (duplicate dropped)", inserted)
	}
}

func TestBulkInsert_EmptyBatchIsNoop(t *testing.T) {
	repo, mock := newSongRepo(t)

	inserted, err := repo.BulkInsert(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted != 0 {
		t.Errorf("BulkInsert(nil) = %d, want 0", inserted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("empty batch touched the database: %v", err)
	}
}

func TestBulkInsert_MidBatchErrorRollsBack(t *testing.T) {
	repo, mock := newSongRepo(t)
	tenantID := uuid.New()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO songs.*ON CONFLICT.*DO NOTHING")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnError(errDB)
	mock.ExpectRollback()

	songs := songBatch(tenantID,
		[2]string{"Journey", "Don't Stop Believin'"},
		[2]string{"Queen", "Somebody to Love"},
	)
	if _, err := repo.BulkInsert(context.Background(), songs); err == nil {
		t.Error("expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// DeleteBySystem
// ---------------------------------------------------------------------------

func TestDeleteBySystem_ReturnsCount(t *testing.T) {
	repo, mock := newSongRepo(t)
	tenantID := uuid.New()
	mock.ExpectExec("DELETE FROM songs WHERE tenant_id").
		WithArgs(tenantID, int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 250))

	deleted, err := repo.DeleteBySystem(context.Background(), tenantID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 250 {
		t.Errorf("DeleteBySystem() = %d, want 250", deleted)
	}
}

func TestDeleteBySystem_DBError(t *testing.T) {
	repo, mock := newSongRepo(t)
	mock.ExpectExec("DELETE FROM songs").
		WillReturnError(errDB)

	if _, err := repo.DeleteBySystem(context.Background(), uuid.New(), 0); err == nil {
		t.Error("expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// CountBySystem
// ---------------------------------------------------------------------------

func TestCountBySystem(t *testing.T) {
	repo, mock := newSongRepo(t)
	tenantID := uuid.New()
	mock.ExpectQuery("SELECT COUNT.*FROM songs WHERE tenant_id").
		WithArgs(tenantID, int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1234)))

	count, err := repo.CountBySystem(context.Background(), tenantID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1234 {
		t.Errorf("CountBySystem() = %d, want 1234", count)
	}
}
