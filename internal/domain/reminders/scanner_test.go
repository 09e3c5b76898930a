package reminders

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pet-vaccination-tracker/internal/domain/clinic"
	"pet-vaccination-tracker/internal/domain/vaccinations"
	"pet-vaccination-tracker/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func threeDue() *fakeRecords {
	return &fakeRecords{snap: clinic.Snapshot{
		Owners: []clinic.Owner{{ID: "o1", Name: "John", Phone: "+20 555 0100"}},
		Pets: []clinic.Pet{{
			ID: "p1", OwnerID: "o1", Name: "Max", Species: clinic.SpeciesDog,
			Vaccinations: []vaccinations.Vaccination{
				vax("v1", "p1", "2024-06-02", false),
				vax("v2", "p1", "2024-06-03", false),
				vax("v3", "p1", "2024-06-04", false),
			},
		}},
	}, markErr: map[string]error{}}
}

func newTestScanner(t *testing.T, rec Records, n Notifier, now string, opts ...Option) *Scanner {
	t.Helper()
	opts = append(opts, WithClock(func() time.Time { return date(now) }))
	s, err := NewScanner(rec, n, Config{Channel: "test"}, opts...)
	require.NoError(t, err)
	return s
}

func TestScan_FailureIsolated(t *testing.T) {
	rec := threeDue()
	n := new(mockNotifier)
	n.On("Send", mock.Anything, mock.MatchedBy(func(r Reminder) bool { return r.VaccinationID == "v2" })).
		Return(errors.New("gateway down"))
	n.On("Send", mock.Anything, mock.Anything).Return(nil)

	attempts := &fakeAttempts{}
	s := newTestScanner(t, rec, n, "2024-06-01", WithAttempts(attempts))

	res, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Selected)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 1, res.Failed)

	assert.True(t, rec.sent("v1"))
	assert.False(t, rec.sent("v2"))
	assert.True(t, rec.sent("v3"))

	n.AssertNumberOfCalls(t, "Send", 3)

	failed := attempts.byOutcome(OutcomeFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "v2", failed[0].VaccinationID)
	assert.Equal(t, "gateway down", failed[0].Reason)
	assert.Equal(t, "test", failed[0].Channel)
	assert.Len(t, attempts.byOutcome(OutcomeSent), 2)

	// El próximo scan reintenta sólo la que falló.
	n2 := new(mockNotifier)
	n2.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
	s.notifier = n2

	res, err = s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.True(t, rec.sent("v2"))
	n2.AssertExpectations(t)
}

func TestScan_SentFlagNeverReset(t *testing.T) {
	rec := threeDue()
	n := new(mockNotifier)
	n.On("Send", mock.Anything, mock.Anything).Return(nil)

	s := newTestScanner(t, rec, n, "2024-06-01")

	for _, now := range []string{"2024-06-01", "2024-06-02", "2024-06-03", "2024-06-04"} {
		s.now = func() time.Time { return date(now) }
		_, err := s.Scan(context.Background())
		require.NoError(t, err)

		for _, id := range []string{"v1", "v2", "v3"} {
			assert.True(t, rec.sent(id), "%s después de scan en %s", id, now)
		}
	}

	// Cada vacunación se notificó exactamente una vez.
	n.AssertNumberOfCalls(t, "Send", 3)
}

func TestScan_MarkOnlyAfterOwnSuccess(t *testing.T) {
	rec := threeDue()
	rec.markErr["v3"] = clinic.ErrUnavailable

	n := new(mockNotifier)
	n.On("Send", mock.Anything, mock.Anything).Return(nil)

	attempts := &fakeAttempts{}
	s := newTestScanner(t, rec, n, "2024-06-01", WithAttempts(attempts))

	res, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 1, res.Failed)
	assert.False(t, rec.sent("v3"))

	failed := attempts.byOutcome(OutcomeFailed)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Reason, "delivered but not marked")
}

func TestScan_CallerCancelsAfterDelivery(t *testing.T) {
	rec := threeDue()
	rec.snap.Pets[0].Vaccinations = rec.snap.Pets[0].Vaccinations[:1]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var deliveries atomic.Int32
	n := NotifierFunc(func(context.Context, Reminder) error {
		deliveries.Add(1)
		// el dueño ya recibió el mensaje; el caller se va (shutdown, cliente HTTP)
		cancel()
		return nil
	})
	s := newTestScanner(t, rec, n, "2024-06-01")

	res, err := s.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 0, res.Failed)
	assert.True(t, rec.sent("v1"))

	res, err = s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Selected)
	assert.Equal(t, int32(1), deliveries.Load(), "una sola entrega")
}

func TestScan_RecordsAddedDuringScanWaitForNextCycle(t *testing.T) {
	rec := threeDue()
	rec.snap.Pets[0].Vaccinations = rec.snap.Pets[0].Vaccinations[:1]

	var (
		mu   sync.Mutex
		sent []string
	)
	n := NotifierFunc(func(_ context.Context, r Reminder) error {
		mu.Lock()
		sent = append(sent, r.VaccinationID)
		mu.Unlock()
		if r.VaccinationID == "v1" {
			rec.add("p1", vax("v4", "p1", "2024-06-02", false))
		}
		return nil
	})
	s := newTestScanner(t, rec, n, "2024-06-01")

	res, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Selected)
	assert.False(t, rec.sent("v4"))

	res, err = s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Selected)
	assert.Equal(t, 1, res.Sent)
	assert.True(t, rec.sent("v4"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"v1", "v4"}, sent)
}

func TestScan_ReminderContent(t *testing.T) {
	rec := threeDue()
	rec.snap.Pets[0].Vaccinations = rec.snap.Pets[0].Vaccinations[:1]

	var got Reminder
	n := NotifierFunc(func(_ context.Context, r Reminder) error {
		got = r
		return nil
	})
	s := newTestScanner(t, rec, n, "2024-06-01")

	_, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "v1", got.VaccinationID)
	assert.Equal(t, "2024-06-02", got.DueDate)
	assert.Equal(t, 1, got.DaysUntil)
	assert.Equal(t, "Max", got.PetName)
	assert.Equal(t, "John", got.OwnerName)
	assert.Contains(t, got.Message, "due on Jun 2, 2024")
	assert.Contains(t, got.WhatsAppLink, "https://wa.me/205550100?text=")
}

func TestScan_SkippedRecordedNotMarked(t *testing.T) {
	rec := threeDue()
	rec.snap.Pets[0].OwnerID = "ghost"

	n := new(mockNotifier)
	attempts := &fakeAttempts{}
	s := newTestScanner(t, rec, n, "2024-06-01", WithAttempts(attempts))

	res, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Selected)
	assert.Equal(t, 3, res.Skipped)
	assert.Len(t, attempts.byOutcome(OutcomeSkipped), 3)
	assert.Empty(t, rec.marks)
	n.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestScan_SingleFlight(t *testing.T) {
	rec := threeDue()

	var calls atomic.Int32
	release := make(chan struct{})
	n := NotifierFunc(func(_ context.Context, _ Reminder) error {
		calls.Add(1)
		<-release
		return nil
	})
	s := newTestScanner(t, rec, n, "2024-06-01")

	var wg sync.WaitGroup
	results := make([]Result, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.Scan(context.Background())
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	// Dejar que todas las llamadas se sumen antes de liberar el dispatch.
	require.Eventually(t, func() bool { return calls.Load() == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(3), calls.Load(), "cada registro se notifica una sola vez")
	for _, r := range results {
		assert.Equal(t, 3, r.Sent)
	}
}

func TestScan_Locker(t *testing.T) {
	t.Run("held elsewhere", func(t *testing.T) {
		n := new(mockNotifier)
		s := newTestScanner(t, threeDue(), n, "2024-06-01", WithLocker(&fakeLocker{ok: false}))

		res, err := s.Scan(context.Background())
		require.NoError(t, err)
		assert.True(t, res.Locked)
		n.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("acquired and released", func(t *testing.T) {
		n := new(mockNotifier)
		n.On("Send", mock.Anything, mock.Anything).Return(nil)
		l := &fakeLocker{ok: true}
		s := newTestScanner(t, threeDue(), n, "2024-06-01", WithLocker(l))

		res, err := s.Scan(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, res.Sent)
		assert.Equal(t, 1, l.unlocked)
	})

	t.Run("reloads shared store under lock", func(t *testing.T) {
		// otro proceso ya notificó y marcó v1 desde la última carga
		rec := &reloadingRecords{
			fakeRecords: threeDue(),
			onLoad: func(f *fakeRecords) {
				f.snap.Pets[0].Vaccinations[0].ReminderSent = true
			},
		}
		n := new(mockNotifier)
		n.On("Send", mock.Anything, mock.Anything).Return(nil)
		s := newTestScanner(t, rec, n, "2024-06-01", WithLocker(&fakeLocker{ok: true}))

		res, err := s.Scan(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, rec.loads)
		assert.Equal(t, 2, res.Selected)
		n.AssertNotCalled(t, "Send", mock.Anything, mock.MatchedBy(func(r Reminder) bool { return r.VaccinationID == "v1" }))
	})

	t.Run("reload error fails the scan", func(t *testing.T) {
		rec := &reloadingRecords{fakeRecords: threeDue(), loadErr: clinic.ErrUnavailable}
		n := new(mockNotifier)
		l := &fakeLocker{ok: true}
		s := newTestScanner(t, rec, n, "2024-06-01", WithLocker(l))

		_, err := s.Scan(context.Background())
		require.ErrorIs(t, err, clinic.ErrUnavailable)
		assert.Equal(t, 1, l.unlocked)
		n.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("no reload without lock", func(t *testing.T) {
		rec := &reloadingRecords{fakeRecords: threeDue()}
		n := new(mockNotifier)
		n.On("Send", mock.Anything, mock.Anything).Return(nil)
		s := newTestScanner(t, rec, n, "2024-06-01")

		_, err := s.Scan(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, rec.loads)
	})

	t.Run("lock error", func(t *testing.T) {
		s := newTestScanner(t, threeDue(), new(mockNotifier), "2024-06-01", WithLocker(&fakeLocker{err: errors.New("redis down")}))

		_, err := s.Scan(context.Background())
		require.Error(t, err)
	})
}

func TestScan_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	rec := threeDue()
	n := new(mockNotifier)
	n.On("Send", mock.Anything, mock.MatchedBy(func(r Reminder) bool { return r.VaccinationID == "v1" })).Return(errors.New("x"))
	n.On("Send", mock.Anything, mock.Anything).Return(nil)

	s := newTestScanner(t, rec, n, "2024-06-01", WithMetrics(m))
	_, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScansTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RemindersTotal.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemindersTotal.WithLabelValues("failed")))
}

func TestRun_ScansImmediatelyAndStopsOnCancel(t *testing.T) {
	rec := threeDue()
	var calls atomic.Int32
	n := NotifierFunc(func(context.Context, Reminder) error {
		calls.Add(1)
		return nil
	})
	s := newTestScanner(t, rec, n, "2024-06-01")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() == 3 }, time.Second, 5*time.Millisecond)
	_, ok := s.LastResult()
	assert.True(t, ok)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestReminderFor(t *testing.T) {
	s := newTestScanner(t, threeDue(), new(mockNotifier), "2024-06-01")

	r, err := s.ReminderFor("p1", "v2")
	require.NoError(t, err)
	assert.Equal(t, 2, r.DaysUntil)
	assert.NotEmpty(t, r.WhatsAppLink)

	_, err = s.ReminderFor("p1", "nope")
	assert.ErrorIs(t, err, clinic.ErrNotFound)
	_, err = s.ReminderFor("nope", "v1")
	assert.ErrorIs(t, err, clinic.ErrNotFound)
}

func TestNewScanner_RequiresCollaborators(t *testing.T) {
	_, err := NewScanner(threeDue(), nil, Config{})
	assert.ErrorIs(t, err, ErrNoNotifier)

	_, err = NewScanner(nil, new(mockNotifier), Config{})
	assert.Error(t, err)
}
