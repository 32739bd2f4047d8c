package guests

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/common"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/logging"
)

type fakeRepo struct {
	Repository

	created    []*Guest
	nextID     int64
	guests     map[int64]*Guest
	markResult bool
	markErr    error
	noShows    []*Guest
	deleted    []int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, guests: map[int64]*Guest{}}
}

func (f *fakeRepo) Create(_ context.Context, g *Guest) (*Guest, error) {
	g.ID = f.nextID
	f.nextID++
	f.created = append(f.created, g)
	f.guests[g.ID] = g
	return g, nil
}

func (f *fakeRepo) CreateBatch(_ context.Context, gs []*Guest) error {
	for _, g := range gs {
		g.ID = f.nextID
		f.nextID++
		f.created = append(f.created, g)
		f.guests[g.ID] = g
	}
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Guest, error) {
	g, ok := f.guests[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return g, nil
}

func (f *fakeRepo) MarkCheckedIn(_ context.Context, id int64, at time.Time) (bool, error) {
	if f.markErr != nil {
		return false, f.markErr
	}
	if g, ok := f.guests[id]; ok && f.markResult {
		g.Status = StatusCheckedIn
	}
	return f.markResult, f.markErr
}

func (f *fakeRepo) MarkCheckedOut(_ context.Context, id int64, at time.Time) (bool, error) {
	return f.markResult, f.markErr
}

func (f *fakeRepo) MarkNoShows(_ context.Context, _ time.Time) ([]*Guest, error) {
	return f.noShows, nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.guests[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.guests, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type recordedEvent struct {
	guestID int64
	event   Event
}

type fakeNotifier struct {
	mu       sync.Mutex
	events   []recordedEvent
	refreshn int
}

func (f *fakeNotifier) EmitArchiveEvent(_ context.Context, g *Guest, event Event, _ int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{guestID: g.ID, event: event})
}

func (f *fakeNotifier) RefreshPendingList(_ context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshn++
}

func (f *fakeNotifier) snapshot() ([]recordedEvent, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedEvent(nil), f.events...), f.refreshn
}

type fakeDeleter struct {
	mu   sync.Mutex
	rows []int64
	err  error
}

func (f *fakeDeleter) DeleteRow(_ context.Context, _ string, _ int64, rowIndex int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, rowIndex)
	return f.err
}

func newTestService(repo Repository, n *fakeNotifier, d *fakeDeleter) *Service {
	sheet := FormSheetRef{SpreadsheetID: "sheet-1", SheetGID: 0}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewService(repo, n, d, sheet, time.UTC, log)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, time.Second, 5*time.Millisecond)
}

func TestService_Create_NormalizesAndNotifies(t *testing.T) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier, nil)

	g := &Guest{
		FullName:     "  nguyễn văn a ",
		LicensePlate: "51f12345",
		IDCardNumber: " 0123 ",
	}
	created, err := svc.Create(context.Background(), g, 7)
	require.NoError(t, err)

	assert.Equal(t, "Nguyễn Văn A", created.FullName)
	assert.Equal(t, "51F-123.45", created.LicensePlate)
	assert.Equal(t, "0123", created.IDCardNumber)
	assert.Equal(t, StatusPending, created.Status)

	waitFor(t, func() bool {
		events, refreshes := notifier.snapshot()
		return len(events) == 1 && refreshes == 1
	})
	events, _ := notifier.snapshot()
	assert.Equal(t, EventNewRegistration, events[0].event)
}

func TestService_Create_RequiresName(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeNotifier{}, nil)

	_, err := svc.Create(context.Background(), &Guest{FullName: "   "}, 7)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestService_CreateBulk_OneRefresh(t *testing.T) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier, nil)

	gs := []*Guest{
		{FullName: "a b"},
		{FullName: "c d"},
		{FullName: "e f"},
	}
	require.NoError(t, svc.CreateBulk(context.Background(), gs, 7))
	assert.Len(t, repo.created, 3)

	waitFor(t, func() bool {
		events, refreshes := notifier.snapshot()
		return len(events) == 3 && refreshes == 1
	})
	events, _ := notifier.snapshot()
	for _, e := range events {
		assert.Equal(t, EventGroupRegistration, e.event)
	}
}

func TestService_ConfirmCheckIn_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	repo.guests[5] = &Guest{ID: 5, FullName: "A", Status: StatusCheckedIn}
	repo.markResult = false
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier, nil)

	g, err := svc.ConfirmCheckIn(context.Background(), 5, 7)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, g.Status)

	// No state change, no notifications.
	time.Sleep(50 * time.Millisecond)
	events, refreshes := notifier.snapshot()
	assert.Empty(t, events)
	assert.Zero(t, refreshes)
}

func TestService_ConfirmCheckIn_EmitsOnTransition(t *testing.T) {
	repo := newFakeRepo()
	repo.guests[5] = &Guest{ID: 5, FullName: "A", Status: StatusPending}
	repo.markResult = true
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier, nil)

	g, err := svc.ConfirmCheckIn(context.Background(), 5, 7)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, g.Status)

	waitFor(t, func() bool {
		events, refreshes := notifier.snapshot()
		return len(events) == 1 && events[0].event == EventCheckIn && refreshes == 1
	})
}

func TestService_ConfirmCheckOut_RepoError(t *testing.T) {
	repo := newFakeRepo()
	repo.markErr = errors.New("db down")
	svc := newTestService(repo, &fakeNotifier{}, nil)

	_, err := svc.ConfirmCheckOut(context.Background(), 5, 7)
	assert.Error(t, err)
}

func TestService_Delete_BestEffortSheetRow(t *testing.T) {
	repo := newFakeRepo()
	repo.guests[9] = &Guest{ID: 9, FullName: "A"}
	notifier := &fakeNotifier{}
	deleter := &fakeDeleter{err: errors.New("remote gone")}
	svc := newTestService(repo, notifier, deleter)

	// Sheet failure does not undo the database delete.
	require.NoError(t, svc.Delete(context.Background(), 9, 4))
	assert.Equal(t, []int64{9}, repo.deleted)
	assert.Equal(t, []int64{3}, deleter.rows)

	waitFor(t, func() bool {
		_, refreshes := notifier.snapshot()
		return refreshes == 1
	})
}

func TestService_Delete_NoSheetRow(t *testing.T) {
	repo := newFakeRepo()
	repo.guests[9] = &Guest{ID: 9, FullName: "A"}
	deleter := &fakeDeleter{}
	svc := newTestService(repo, &fakeNotifier{}, deleter)

	require.NoError(t, svc.Delete(context.Background(), 9, 0))
	assert.Empty(t, deleter.rows)
}

func TestService_ProcessNoShows(t *testing.T) {
	repo := newFakeRepo()
	repo.noShows = []*Guest{
		{ID: 1, Status: StatusNoShow},
		{ID: 2, Status: StatusNoShow},
	}
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier, nil)

	n, err := svc.ProcessNoShows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	waitFor(t, func() bool {
		events, refreshes := notifier.snapshot()
		return len(events) == 2 && refreshes == 1
	})
	events, _ := notifier.snapshot()
	assert.Equal(t, EventNoShow, events[0].event)
}

func TestService_ProcessNoShows_Empty(t *testing.T) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier, nil)

	n, err := svc.ProcessNoShows(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	time.Sleep(50 * time.Millisecond)
	_, refreshes := notifier.snapshot()
	assert.Zero(t, refreshes)
}
