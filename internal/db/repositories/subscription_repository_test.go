package repositories

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func newSubscriptionRepo(t *testing.T) (*SubscriptionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewSubscriptionRepository(db), mock
}

func TestHasActiveEntitlement_True(t *testing.T) {
	repo, mock := newSubscriptionRepo(t)
	tenantID := uuid.New()
	mock.ExpectQuery("SELECT EXISTS.*FROM subscriptions.*status IN").
		WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	entitled, err := repo.HasActiveEntitlement(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !entitled {
		t.Error("HasActiveEntitlement() = false, want true")
	}
}

func TestHasActiveEntitlement_False(t *testing.T) {
	repo, mock := newSubscriptionRepo(t)
	tenantID := uuid.New()
	mock.ExpectQuery("SELECT EXISTS.*FROM subscriptions.*status IN").
		WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	entitled, err := repo.HasActiveEntitlement(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entitled {
		t.Error("HasActiveEntitlement() = true, want false")
	}
}

func TestHasActiveEntitlement_DBError(t *testing.T) {
	repo, mock := newSubscriptionRepo(t)
	mock.ExpectQuery("SELECT EXISTS.*FROM subscriptions").
		WillReturnError(errDB)

	if _, err := repo.HasActiveEntitlement(context.Background(), uuid.New()); err == nil {
		t.Error("expected error, got nil")
	}
}
