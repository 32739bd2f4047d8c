package guests

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/common"
)

func guestColumns() []string {
	return []string{
		"id", "full_name", "id_card_number", "company", "supplier_name",
		"license_plate", "reason", "status", "estimated_at",
		"check_in_at", "check_out_at", "registered_by", "created_at", "coalesce",
	}
}

func sampleGuest() *Guest {
	return &Guest{
		FullName:     "Nguyễn Văn A",
		IDCardNumber: "012345678901",
		Company:      "ACME",
		SupplierName: "ACME Logistics",
		LicensePlate: "51F-123.45",
		Reason:       "Giao hàng",
		Status:       StatusPending,
		EstimatedAt:  time.Date(2025, 1, 10, 1, 15, 0, 0, time.UTC),
		RegisteredBy: 7,
		CreatedAt:    time.Date(2025, 1, 9, 10, 0, 0, 0, time.UTC),
	}
}

func TestPostgresRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO guests")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	repo := NewPostgresRepository(db)
	g, err := repo.Create(context.Background(), sampleGuest())
	require.NoError(t, err)

	assert.Equal(t, int64(42), g.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO guests")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO guests")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	repo := NewPostgresRepository(db)
	gs := []*Guest{sampleGuest(), sampleGuest()}
	require.NoError(t, repo.CreateBatch(context.Background(), gs))

	assert.Equal(t, int64(1), gs[0].ID)
	assert.Equal(t, int64(2), gs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateBatch_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO guests")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO guests")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	repo := NewPostgresRepository(db)
	err = repo.CreateBatch(context.Background(), []*Guest{sampleGuest(), sampleGuest()})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateBatch_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)
	require.NoError(t, repo.CreateBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM guests g")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(guestColumns()))

	repo := NewPostgresRepository(db)
	_, err = repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPostgresRepository_ExistsWithDocumentBetween(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := time.Date(2025, 1, 9, 17, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("012345678901", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewPostgresRepository(db)
	exists, err := repo.ExistsWithDocumentBetween(context.Background(), "012345678901", from, to)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPostgresRepository_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN users u")).
		WithArgs(StatusPending).
		WillReturnRows(sqlmock.NewRows(guestColumns()).
			AddRow(1, "Nguyễn Văn A", "0123", "ACME", "", "51F-123.45", "Giao hàng",
				StatusPending, now, nil, nil, 7, now, "Trần Thị C").
			AddRow(2, "Lê Văn B", "0456", "ACME", "", "", "Họp",
				StatusPending, now, nil, nil, 7, now, "Trần Thị C"))

	repo := NewPostgresRepository(db)
	gs, err := repo.ListPending(context.Background())
	require.NoError(t, err)

	require.Len(t, gs, 2)
	assert.Equal(t, "Trần Thị C", gs[0].RegisteredByName)
	assert.Equal(t, "Lê Văn B", gs[1].FullName)
}

func TestPostgresRepository_MarkCheckedIn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE guests SET status = $1, check_in_at = $2")).
		WithArgs(StatusCheckedIn, at, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgresRepository(db)
	changed, err := repo.MarkCheckedIn(context.Background(), 5, at)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestPostgresRepository_MarkCheckedOut_AlreadyOut(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE guests SET status = $1, check_out_at = $2")).
		WithArgs(StatusCheckedOut, at, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresRepository(db)
	changed, err := repo.MarkCheckedOut(context.Background(), 5, at)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestPostgresRepository_MarkNoShows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cutoff := time.Date(2025, 1, 10, 17, 0, 0, 0, time.UTC)
	est := cutoff.Add(-3 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE guests SET status = $1")).
		WithArgs(StatusNoShow, StatusPending, cutoff).
		WillReturnRows(sqlmock.NewRows(guestColumns()).
			AddRow(3, "Nguyễn Văn A", "0123", "ACME", "", "", "Giao hàng",
				StatusNoShow, est, nil, nil, 7, est, ""))

	repo := NewPostgresRepository(db)
	gs, err := repo.MarkNoShows(context.Background(), cutoff)
	require.NoError(t, err)

	require.Len(t, gs, 1)
	assert.Equal(t, StatusNoShow, gs[0].Status)
}

func TestPostgresRepository_Delete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM guests")).
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresRepository(db)
	err = repo.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
