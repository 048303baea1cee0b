package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"voltshare/backend/services/booking-service/internal/models"
	"voltshare/backend/services/booking-service/internal/repository"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeController struct {
	mu         sync.Mutex
	blockErr   error
	unblockErr error
	stopErr    error
	blocks     []int64
	unblocks   []int64
	stops      []int64
}

func (f *fakeController) Block(_ context.Context, chargerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.blockErr != nil {
		return f.blockErr
	}
	f.blocks = append(f.blocks, chargerID)
	return nil
}

func (f *fakeController) Unblock(_ context.Context, chargerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unblockErr != nil {
		return f.unblockErr
	}
	f.unblocks = append(f.unblocks, chargerID)
	return nil
}

func (f *fakeController) Stop(_ context.Context, chargerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopErr != nil {
		return f.stopErr
	}
	f.stops = append(f.stops, chargerID)
	return nil
}

func (f *fakeController) unblockCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.unblocks)
}

type testEnv struct {
	svc        *BookingService
	chargers   *repository.MemoryChargerRepository
	bookings   *repository.MemoryBookingRepository
	controller *fakeController
	clock      *testClock
}

func newTestEnv() *testEnv {
	chargers := repository.NewMemoryChargerRepository()
	bookings := repository.NewMemoryBookingRepository()
	controller := &fakeController{}
	clock := newTestClock()
	svc := NewBookingService(bookings, chargers, controller, zap.NewNop()).WithClock(clock.Now)
	return &testEnv{
		svc:        svc,
		chargers:   chargers,
		bookings:   bookings,
		controller: controller,
		clock:      clock,
	}
}

func (e *testEnv) seedCharger(t *testing.T, status models.ChargerStatus) *models.Charger {
	t.Helper()
	charger := &models.Charger{
		HostName: "alice",
		Location: "garage 3",
		Brand:    "voltza",
		Type:     "AC",
		Status:   status,
	}
	if err := e.chargers.Create(context.Background(), charger); err != nil {
		t.Fatalf("seed charger: %v", err)
	}
	return charger
}

func (e *testEnv) chargerStatus(t *testing.T, id int64) models.ChargerStatus {
	t.Helper()
	charger, err := e.chargers.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get charger: %v", err)
	}
	return charger.Status
}

func TestBookRejectsUnavailableCharger(t *testing.T) {
	env := newTestEnv()
	charger := env.seedCharger(t, models.ChargerBooked)

	_, err := env.svc.Book(context.Background(), charger.ID, "bob", 30)
	if !errors.Is(err, ErrChargerUnavailable) {
		t.Fatalf("expected ErrChargerUnavailable, got %v", err)
	}
	if got := env.chargerStatus(t, charger.ID); got != models.ChargerBooked {
		t.Fatalf("charger status mutated to %s", got)
	}
	if len(env.controller.blocks) != 0 {
		t.Fatal("no block call expected for unavailable charger")
	}
}

func TestBookValidatesInput(t *testing.T) {
	env := newTestEnv()
	charger := env.seedCharger(t, models.ChargerAvailable)

	if _, err := env.svc.Book(context.Background(), charger.ID, "", 30); !errors.Is(err, ErrMissingUserName) {
		t.Fatalf("expected ErrMissingUserName, got %v", err)
	}
	if _, err := env.svc.Book(context.Background(), charger.ID, "bob", 0); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestBookUnknownChargerFails(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.Book(context.Background(), 99, "bob", 30)
	if !errors.Is(err, repository.ErrChargerNotFound) {
		t.Fatalf("expected ErrChargerNotFound, got %v", err)
	}
}

func TestBookCommitsNothingWhenBlockFails(t *testing.T) {
	env := newTestEnv()
	charger := env.seedCharger(t, models.ChargerAvailable)
	env.controller.blockErr = errors.New("hardware busy")

	_, err := env.svc.Book(context.Background(), charger.ID, "bob", 30)
	if !errors.Is(err, ErrControllerUnreachable) {
		t.Fatalf("expected ErrControllerUnreachable, got %v", err)
	}
	if got := env.chargerStatus(t, charger.ID); got != models.ChargerAvailable {
		t.Fatalf("charger should remain available, got %s", got)
	}
	if _, err := env.bookings.GetByID(context.Background(), 1); !errors.Is(err, repository.ErrBookingNotFound) {
		t.Fatal("no booking should have been created")
	}
}

func TestBookSnapshotsChargerAndBlocksIt(t *testing.T) {
	env := newTestEnv()
	charger := env.seedCharger(t, models.ChargerAvailable)

	booking, err := env.svc.Book(context.Background(), charger.ID, "bob", 30)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if booking.Status != models.BookingBooked {
		t.Fatalf("expected status BOOKED, got %s", booking.Status)
	}
	if booking.HostName != "alice" || booking.Brand != "voltza" || booking.Location != "garage 3" {
		t.Fatalf("charger snapshot missing: %+v", booking)
	}
	if booking.BookedDuration != 0.5 {
		t.Fatalf("expected 0.5 booked hours, got %f", booking.BookedDuration)
	}
	if got := env.chargerStatus(t, charger.ID); got != models.ChargerBooked {
		t.Fatalf("expected charger BOOKED, got %s", got)
	}
	if len(env.controller.blocks) != 1 || env.controller.blocks[0] != charger.ID {
		t.Fatalf("expected one block call for charger %d, got %v", charger.ID, env.controller.blocks)
	}
}

func TestStartComputesLatenessWithGrace(t *testing.T) {
	env := newTestEnv()
	charger := env.seedCharger(t, models.ChargerAvailable)
	booking, err := env.svc.Book(context.Background(), charger.ID, "bob", 30)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	env.clock.Advance(5*time.Minute + 30*time.Second)

	late, err := env.svc.Start(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if late != 4 {
		t.Fatalf("expected 4 late minutes, got %d", late)
	}

	stored, err := env.bookings.GetByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if stored.Status != models.BookingCharging {
		t.Fatalf("expected status CHARGING, got %s", stored.Status)
	}
	if !stored.ChargingStartedAt.Equal(env.clock.Now()) {
		t.Fatalf("zero-point not stamped: %s", stored.ChargingStartedAt)
	}
	if got := env.chargerStatus(t, charger.ID); got != models.ChargerCharging {
		t.Fatalf("expected charger CHARGING, got %s", got)
	}
}

func TestStartWithinGraceIsNotLate(t *testing.T) {
	env := newTestEnv()
	charger := env.seedCharger(t, models.ChargerAvailable)
	booking, _ := env.svc.Book(context.Background(), charger.ID, "bob", 30)

	env.clock.Advance(59 * time.Second)

	late, err := env.svc.Start(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if late != 0 {
		t.Fatalf("expected 0 late minutes, got %d", late)
	}
}

func TestStartLeavesBookingUntouchedWhenUnblockFails(t *testing.T) {
	env := newTestEnv()
	charger := env.seedCharger(t, models.ChargerAvailable)
	booking, _ := env.svc.Book(context.Background(), charger.ID, "bob", 30)
	env.controller.unblockErr = errors.New("hardware unreachable")

	_, err := env.svc.Start(context.Background(), booking.ID)
	if !errors.Is(err, ErrControllerUnreachable) {
		t.Fatalf("expected ErrControllerUnreachable, got %v", err)
	}

	stored, _ := env.bookings.GetByID(context.Background(), booking.ID)
	if stored.Status != models.BookingBooked {
		t.Fatalf("booking should remain BOOKED for retry, got %s", stored.Status)
	}
	if !stored.ChargingStartedAt.IsZero() {
		t.Fatal("zero-point must not be stamped on a failed start")
	}
}

func TestConcurrentStartsExactlyOneWins(t *testing.T) {
	env := newTestEnv()
	charger := env.seedCharger(t, models.ChargerAvailable)
	booking, _ := env.svc.Book(context.Background(), charger.ID, "bob", 30)

	const goroutines = 8
	results := make(chan error, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Start(context.Background(), booking.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyCharging):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one start to win, got %d", wins)
	}
	if conflicts != goroutines-1 {
		t.Fatalf("expected %d conflicts, got %d", goroutines-1, conflicts)
	}
	if env.controller.unblockCount() != 1 {
		t.Fatalf("expected a single unblock call, got %d", env.controller.unblockCount())
	}
}

func TestGetDerivesLiveDurationWhileCharging(t *testing.T) {
	env := newTestEnv()
	charger := env.seedCharger(t, models.ChargerAvailable)
	booking, _ := env.svc.Book(context.Background(), charger.ID, "bob", 30)
	if _, err := env.svc.Start(context.Background(), booking.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	env.clock.Advance(5 * time.Second)
	first, err := env.svc.Get(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	env.clock.Advance(5 * time.Second)
	second, err := env.svc.Get(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if first.ActualDuration != 5 || second.ActualDuration != 10 {
		t.Fatalf("expected live durations 5 and 10, got %d and %d", first.ActualDuration, second.ActualDuration)
	}
	if second.ActualDuration-first.ActualDuration < 5 {
		t.Fatal("live duration must advance with the server clock")
	}
}

func TestExtendRevivesCompletedSession(t *testing.T) {
	env := newTestEnv()
	charger := env.seedCharger(t, models.ChargerAvailable)
	booking, _ := env.svc.Book(context.Background(), charger.ID, "bob", 30)
	if _, err := env.svc.Start(context.Background(), booking.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := env.svc.Complete(context.Background(), charger.ID, 0.5, 120); err != nil {
		t.Fatalf("complete: %v", err)
	}

	newDuration, err := env.svc.Extend(context.Background(), booking.ID, 15)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if newDuration != 45 {
		t.Fatalf("expected new duration 45, got %d", newDuration)
	}

	stored, _ := env.bookings.GetByID(context.Background(), booking.ID)
	if stored.Status != models.BookingCharging {
		t.Fatalf("expected status CHARGING after extend, got %s", stored.Status)
	}
	if stored.BookedDuration != 0.75 {
		t.Fatalf("expected 0.75 booked hours, got %f", stored.BookedDuration)
	}
	if env.controller.unblockCount() != 2 {
		t.Fatalf("expected re-arm unblock call, got %d total", env.controller.unblockCount())
	}
}

func TestExtendToleratesUnblockFailure(t *testing.T) {
	env := newTestEnv()
	charger := env.seedCharger(t, models.ChargerAvailable)
	booking, _ := env.svc.Book(context.Background(), charger.ID, "bob", 30)
	env.controller.unblockErr = errors.New("hardware unreachable")

	newDuration, err := env.svc.Extend(context.Background(), booking.ID, 10)
	if err != nil {
		t.Fatalf("extend must be best-effort toward hardware: %v", err)
	}
	if newDuration != 40 {
		t.Fatalf("expected new duration 40, got %d", newDuration)
	}
}

func TestStopCommitsCancellationBeforeTransportFailure(t *testing.T) {
	env := newTestEnv()
	charger := env.seedCharger(t, models.ChargerAvailable)
	booking, _ := env.svc.Book(context.Background(), charger.ID, "bob", 30)
	env.controller.stopErr = errors.New("hardware unreachable")

	err := env.svc.Stop(context.Background(), booking.ID, "bob")
	if !errors.Is(err, ErrControllerUnreachable) {
		t.Fatalf("expected ErrControllerUnreachable, got %v", err)
	}

	stored, _ := env.bookings.GetByID(context.Background(), booking.ID)
	if stored.Status != models.BookingCancelled {
		t.Fatalf("cancellation must commit before the stop signal, got %s", stored.Status)
	}
	if stored.CancelledBy != "bob" {
		t.Fatalf("expected cancelling party recorded, got %q", stored.CancelledBy)
	}
}

func TestCompleteAttachesDataToCancelledFallback(t *testing.T) {
	env := newTestEnv()
	charger := env.seedCharger(t, models.ChargerAvailable)
	booking, _ := env.svc.Book(context.Background(), charger.ID, "bob", 30)
	if err := env.svc.Stop(context.Background(), booking.ID, "bob"); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if err := env.svc.Complete(context.Background(), charger.ID, 0.07, 42); err != nil {
		t.Fatalf("complete: %v", err)
	}

	stored, _ := env.bookings.GetByID(context.Background(), booking.ID)
	if stored.Status != models.BookingCancelled {
		t.Fatalf("cancelled booking must stay cancelled, got %s", stored.Status)
	}
	if stored.TotalEnergy != 0.07 || stored.ActualDuration != 42 {
		t.Fatalf("final metering data not attached: %+v", stored)
	}
	if got := env.chargerStatus(t, charger.ID); got != models.ChargerAvailable {
		t.Fatalf("charger must be freed, got %s", got)
	}
}

func TestCompleteWithoutMatchingSessionMutatesNothing(t *testing.T) {
	env := newTestEnv()
	charger := env.seedCharger(t, models.ChargerAvailable)
	booking, _ := env.svc.Book(context.Background(), charger.ID, "bob", 30)

	// Still BOOKED: neither CHARGING nor CANCELLED matches.
	err := env.svc.Complete(context.Background(), charger.ID, 1.0, 60)
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}

	stored, _ := env.bookings.GetByID(context.Background(), booking.ID)
	if stored.Status != models.BookingBooked || stored.TotalEnergy != 0 || stored.ActualDuration != 0 {
		t.Fatalf("desync push must not mutate the booking: %+v", stored)
	}
	if got := env.chargerStatus(t, charger.ID); got != models.ChargerBooked {
		t.Fatalf("desync push must not free the charger, got %s", got)
	}
}

// gatedBookingRepo stalls one GetByID call so a transition can be held
// mid-flight while another runs against the same booking.
type gatedBookingRepo struct {
	*repository.MemoryBookingRepository
	mu      sync.Mutex
	armed   bool
	entered chan struct{}
	release chan struct{}
}

func (r *gatedBookingRepo) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	r.mu.Lock()
	gated := r.armed
	r.armed = false
	r.mu.Unlock()
	if gated {
		close(r.entered)
		<-r.release
	}
	return r.MemoryBookingRepository.GetByID(ctx, id)
}

func TestCompleteSerializesWithExtend(t *testing.T) {
	chargers := repository.NewMemoryChargerRepository()
	gated := &gatedBookingRepo{
		MemoryBookingRepository: repository.NewMemoryBookingRepository(),
		entered:                 make(chan struct{}),
		release:                 make(chan struct{}),
	}
	controller := &fakeController{}
	svc := NewBookingService(gated, chargers, controller, zap.NewNop())

	charger := &models.Charger{HostName: "alice", Status: models.ChargerAvailable}
	if err := chargers.Create(context.Background(), charger); err != nil {
		t.Fatalf("seed charger: %v", err)
	}
	booking, err := svc.Book(context.Background(), charger.ID, "bob", 30)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := svc.Start(context.Background(), booking.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Hold Extend inside its read, booking lock acquired.
	gated.mu.Lock()
	gated.armed = true
	gated.mu.Unlock()

	extendDone := make(chan error, 1)
	go func() {
		_, err := svc.Extend(context.Background(), booking.ID, 15)
		extendDone <- err
	}()
	<-gated.entered

	completeDone := make(chan error, 1)
	go func() {
		completeDone <- svc.Complete(context.Background(), charger.ID, 1.23, 150)
	}()

	// The completion push must wait for the in-flight extend, not interleave
	// with it.
	select {
	case err := <-completeDone:
		t.Fatalf("complete finished while extend held the session: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(gated.release)
	if err := <-extendDone; err != nil {
		t.Fatalf("extend: %v", err)
	}
	if err := <-completeDone; err != nil {
		t.Fatalf("complete: %v", err)
	}

	stored, _ := gated.MemoryBookingRepository.GetByID(context.Background(), booking.ID)
	if stored.TotalEnergy != 1.23 || stored.ActualDuration != 150 {
		t.Fatalf("final metering data lost to a stale write: %+v", stored)
	}
	if stored.Duration != 45 {
		t.Fatalf("extend result lost: duration %d", stored.Duration)
	}
	if stored.Status != models.BookingCompleted {
		t.Fatalf("expected COMPLETED, got %s", stored.Status)
	}
}

func TestFullSessionLifecycle(t *testing.T) {
	env := newTestEnv()
	charger := env.seedCharger(t, models.ChargerAvailable)

	booking, err := env.svc.Book(context.Background(), charger.ID, "A", 30)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if _, err := env.svc.Start(context.Background(), booking.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	env.clock.Advance(10 * time.Second)
	view, err := env.svc.Get(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Status != models.BookingCharging || view.ActualDuration < 10 {
		t.Fatalf("expected live charging view, got %+v", view)
	}

	if err := env.svc.Complete(context.Background(), charger.ID, 1.23, 150); err != nil {
		t.Fatalf("complete: %v", err)
	}

	env.clock.Advance(time.Hour)
	final, err := env.svc.Get(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if final.Status != models.BookingCompleted {
		t.Fatalf("expected COMPLETED, got %s", final.Status)
	}
	if final.TotalEnergy != 1.23 || final.ActualDuration != 150 {
		t.Fatalf("final view not frozen to synced values: %+v", final)
	}
	if got := env.chargerStatus(t, charger.ID); got != models.ChargerAvailable {
		t.Fatalf("charger must be available again, got %s", got)
	}
}
