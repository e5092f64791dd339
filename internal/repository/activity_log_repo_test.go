package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/residence-admin-api/internal/models"
)

func setupActivityTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ActivityLog{}))
	return db
}

func ptrUint(v uint) *uint {
	return &v
}

func ptrString(v string) *string {
	return &v
}

func seedActivityLogs(t *testing.T, repo ActivityLogRepository, now time.Time) {
	t.Helper()
	entries := []models.ActivityLog{
		{UserType: models.ActivityUserTypeUser, UserID: ptrUint(7), ActivityType: "login", ActivityCategory: "authentication", CreatedAt: now.Add(-72 * time.Hour)},
		{UserType: models.ActivityUserTypeUser, UserID: ptrUint(7), ActivityType: "payment_create", ActivityCategory: "payment", CreatedAt: now.Add(-48 * time.Hour), RequestBody: datatypes.JSON(`{"amount": 1500000}`)},
		{UserType: models.ActivityUserTypeUser, UserID: ptrUint(9), ActivityType: "issue_report", ActivityCategory: "issue", CreatedAt: now.Add(-2 * time.Hour)},
		{UserType: models.ActivityUserTypeAdmin, AdminID: ptrString("adm-1"), ActivityType: "payment_verify", ActivityCategory: "payment", CreatedAt: now.Add(-time.Hour)},
		{UserType: models.ActivityUserTypeAdmin, AdminID: ptrString("adm-2"), ActivityType: "login", ActivityCategory: "authentication", CreatedAt: now},
	}
	for i := range entries {
		require.NoError(t, repo.Create(context.Background(), &entries[i]))
		require.NotZero(t, entries[i].ID)
	}
}

func TestActivityLogRepositoryListFilters(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewActivityLogRepository(db)
	now := time.Now().UTC()
	seedActivityLogs(t, repo, now)
	ctx := context.Background()

	entries, total, err := repo.List(ctx, ActivityLogFilter{ActivityCategory: "payment", Limit: 50})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, "payment_verify", entries[0].ActivityType, "expected newest record first")

	entries, total, err = repo.List(ctx, ActivityLogFilter{UserType: models.ActivityUserTypeUser, UserID: ptrUint(7), Limit: 50})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, entries, 2)

	from := now.Add(-3 * time.Hour)
	entries, total, err = repo.List(ctx, ActivityLogFilter{From: &from, Limit: 50})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, entries, 3)
}

func TestActivityLogRepositoryListPaginates(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewActivityLogRepository(db)
	seedActivityLogs(t, repo, time.Now().UTC())

	entries, total, err := repo.List(context.Background(), ActivityLogFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, entries, 2)
	require.Equal(t, "issue_report", entries[0].ActivityType)
}

func TestActivityLogRepositoryFindByID(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewActivityLogRepository(db)
	seedActivityLogs(t, repo, time.Now().UTC())

	entry, err := repo.FindByID(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, "payment_create", entry.ActivityType)
	require.JSONEq(t, `{"amount": 1500000}`, string(entry.RequestBody))

	_, err = repo.FindByID(context.Background(), 999)
	require.ErrorIs(t, err, ErrActivityLogNotFound)
}

func TestActivityLogRepositoryCountsAndDeleteAll(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewActivityLogRepository(db)
	now := time.Now().UTC()
	seedActivityLogs(t, repo, now)
	ctx := context.Background()

	counts, err := repo.Counts(ctx, now.Add(-12*time.Hour))
	require.NoError(t, err)
	require.Equal(t, ActivityLogCounts{Total: 5, Today: 3, User: 3, Admin: 2}, counts)

	deleted, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5), deleted)

	counts, err = repo.Counts(ctx, now.Add(-12*time.Hour))
	require.NoError(t, err)
	require.Equal(t, ActivityLogCounts{}, counts)
}
