package reminders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pet-vaccination-tracker/internal/domain/clinic"
	"pet-vaccination-tracker/internal/domain/vaccinations"
	"pet-vaccination-tracker/internal/platform/logger"
	"pet-vaccination-tracker/internal/platform/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultEvery       = 24 * time.Hour
	DefaultConcurrency = 4
	DefaultLockTTL     = 10 * time.Minute

	scanKey = "reminders:scan"
)

var ErrNoNotifier = errors.New("reminders: notifier required")

type Config struct {
	WindowDays  int
	Concurrency int

	// Channel etiqueta los intentos y métricas (log, webhook, kafka).
	Channel string

	ClinicName  string
	CountryCode string

	LockTTL time.Duration
}

type Option func(*Scanner)

func WithAttempts(repo AttemptRepository) Option { return func(s *Scanner) { s.attempts = repo } }
func WithLocker(l Locker) Option                 { return func(s *Scanner) { s.locker = l } }
func WithMetrics(m *metrics.Metrics) Option      { return func(s *Scanner) { s.metrics = m } }
func WithLogger(l logger.Logger) Option          { return func(s *Scanner) { s.log = l } }

// WithClock reemplaza el reloj (tests, CLI con --now).
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		if now != nil {
			s.now = now
		}
	}
}

// Scanner recorre el registro buscando vacunaciones dentro de la ventana de
// recordatorio, notifica y marca cada una sólo si su notificación salió bien.
// Scan es single-flight: llamadas concurrentes comparten el scan en curso.
type Scanner struct {
	records  Records
	notifier Notifier
	attempts AttemptRepository
	locker   Locker
	metrics  *metrics.Metrics
	log      logger.Logger
	tracer   trace.Tracer

	cfg Config

	now   func() time.Time
	newID func() string

	group singleflight.Group

	mu   sync.Mutex
	last *Result
}

func NewScanner(records Records, notifier Notifier, cfg Config, opts ...Option) (*Scanner, error) {
	if records == nil {
		return nil, errors.New("reminders: records required")
	}
	if notifier == nil {
		return nil, ErrNoNotifier
	}

	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultWindowDays
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Channel == "" {
		cfg.Channel = "log"
	}
	if cfg.ClinicName == "" {
		cfg.ClinicName = DefaultClinicName
	}
	if cfg.CountryCode == "" {
		cfg.CountryCode = DefaultCountryCode
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}

	s := &Scanner{
		records:  records,
		notifier: notifier,
		cfg:      cfg,
		tracer:   otel.Tracer("pet-vaccination-tracker/reminders"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	s.log = s.log.With(map[string]any{"component": "reminders"})
	return s, nil
}

// Scan ejecuta un scan, o se suma al que ya está en curso.
func (s *Scanner) Scan(ctx context.Context) (Result, error) {
	v, err, shared := s.group.Do(scanKey, func() (any, error) {
		return s.scan(ctx)
	})
	if shared {
		s.log.Debug("joined in-flight scan", nil)
	}
	res, _ := v.(Result)
	return res, err
}

// Run escanea inmediatamente y después cada `every`, hasta que ctx se cancela.
func (s *Scanner) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = DefaultEvery
	}

	s.runOnce(ctx)

	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder loop stopped", nil)
			return
		case <-t.C:
			s.runOnce(ctx)
		}
	}
}

// LastResult devuelve el resultado del último scan completo, si hubo.
func (s *Scanner) LastResult() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Result{}, false
	}
	return *s.last, true
}

// Preview devuelve lo que seleccionaría un scan ahora, sin notificar.
func (s *Scanner) Preview() Selection {
	return Select(s.records.Snapshot(), s.now(), s.cfg.WindowDays)
}

// History lista el log de intentos de una mascota.
func (s *Scanner) History(ctx context.Context, petID string, f ListFilter) ([]Attempt, error) {
	if s.attempts == nil {
		return []Attempt{}, nil
	}
	return s.attempts.ListByPet(ctx, petID, f)
}

// Reminder arma el recordatorio de un candidato.
func (s *Scanner) Reminder(c Candidate) Reminder {
	return BuildReminder(c, s.cfg.ClinicName, s.cfg.CountryCode)
}

func (s *Scanner) runOnce(ctx context.Context) {
	res, err := s.Scan(ctx)
	if err != nil {
		s.log.Error("reminder scan failed", map[string]any{"error": err})
		return
	}
	if res.Locked {
		s.log.Info("reminder scan skipped, lock held elsewhere", nil)
	}
}

func (s *Scanner) scan(ctx context.Context) (res Result, err error) {
	start := time.Now()
	res = Result{ScanID: s.newID(), StartedAt: s.now()}

	ctx, span := s.tracer.Start(ctx, "reminders.scan", trace.WithAttributes(
		attribute.String("scan.id", res.ScanID),
		attribute.Int("scan.window_days", s.cfg.WindowDays),
	))
	defer func() {
		res.Duration = time.Since(start)
		span.SetAttributes(
			attribute.Int("scan.selected", res.Selected),
			attribute.Int("scan.sent", res.Sent),
			attribute.Int("scan.failed", res.Failed),
			attribute.Int("scan.skipped", res.Skipped),
		)
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.metrics.IncScan("error")
		case res.Locked:
			s.metrics.IncScan("locked")
		default:
			s.metrics.IncScan("ok")
			s.metrics.ObserveScan(res.Duration)
		}
		span.End()
	}()

	if s.locker != nil {
		unlock, ok, lerr := s.locker.TryLock(ctx, scanKey, s.cfg.LockTTL)
		if lerr != nil {
			return res, fmt.Errorf("acquire scan lock: %w", lerr)
		}
		if !ok {
			res.Locked = true
			return res, nil
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				s.log.Warn("release scan lock failed", map[string]any{"error": uerr})
			}
		}()

		if rl, ok := s.records.(Reloader); ok {
			if lerr := rl.Load(ctx); lerr != nil {
				return res, fmt.Errorf("reload records: %w", lerr)
			}
		}
	}

	// Snapshot consistente al inicio; lo que se agregue durante el scan
	// entra en el próximo ciclo.
	snap := s.records.Snapshot()
	now := s.now()
	sel := Select(snap, now, s.cfg.WindowDays)

	res.Selected = len(sel.Due)
	res.Skipped = len(sel.Skipped)

	for _, sk := range sel.Skipped {
		s.log.Warn("reminder skipped", map[string]any{
			"pet_id":         sk.PetID,
			"owner_id":       sk.OwnerID,
			"vaccination_id": sk.VaccinationID,
			"reason":         sk.Reason,
		})
		s.record(ctx, Attempt{
			ScanID:        res.ScanID,
			PetID:         sk.PetID,
			OwnerID:       sk.OwnerID,
			VaccinationID: sk.VaccinationID,
			Outcome:       OutcomeSkipped,
			Reason:        sk.Reason,
		})
	}

	var (
		mu           sync.Mutex
		sent, failed int
	)

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Concurrency)

	for _, c := range sel.Due {
		g.Go(func() error {
			ok := s.dispatch(ctx, res.ScanID, c)

			mu.Lock()
			if ok {
				sent++
			} else {
				failed++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	res.Sent = sent
	res.Failed = failed

	s.metrics.AddReminders(string(OutcomeSent), sent)
	s.metrics.AddReminders(string(OutcomeFailed), failed)
	s.metrics.AddReminders(string(OutcomeSkipped), res.Skipped)

	s.mu.Lock()
	last := res
	last.Duration = time.Since(start)
	s.last = &last
	s.mu.Unlock()

	s.log.Info("reminder scan finished", map[string]any{
		"scan_id":  res.ScanID,
		"selected": res.Selected,
		"sent":     res.Sent,
		"failed":   res.Failed,
		"skipped":  res.Skipped,
	})
	return res, nil
}

// dispatch notifica un candidato y, sólo si salió bien, lo marca. Cada
// registro es independiente: un error acá no corta el resto del batch.
func (s *Scanner) dispatch(ctx context.Context, scanID string, c Candidate) bool {
	r := s.Reminder(c)
	a := Attempt{
		ScanID:        scanID,
		PetID:         c.Pet.ID,
		OwnerID:       c.Owner.ID,
		VaccinationID: c.Vaccination.ID,
	}

	t0 := time.Now()
	err := s.notifier.Send(ctx, r)
	s.metrics.ObserveNotify(s.cfg.Channel, time.Since(t0))

	if err != nil {
		s.log.Warn("reminder notification failed", map[string]any{
			"pet_id":         c.Pet.ID,
			"vaccination_id": c.Vaccination.ID,
			"error":          err,
		})
		a.Outcome = OutcomeFailed
		a.Reason = err.Error()
		s.record(ctx, a)
		return false
	}

	// Ya se notificó: la marca no depende de que el caller siga esperando.
	if err := s.records.MarkReminderSent(context.WithoutCancel(ctx), c.Pet.ID, c.Vaccination.ID); err != nil {
		// Entregado pero no marcado: se va a reenviar en el próximo scan.
		s.log.Error("mark reminder sent failed", map[string]any{
			"pet_id":         c.Pet.ID,
			"vaccination_id": c.Vaccination.ID,
			"error":          err,
		})
		a.Outcome = OutcomeFailed
		a.Reason = "delivered but not marked: " + err.Error()
		s.record(ctx, a)
		return false
	}

	a.Outcome = OutcomeSent
	s.record(ctx, a)
	return true
}

func (s *Scanner) record(ctx context.Context, a Attempt) {
	if s.attempts == nil {
		return
	}
	a.ID = s.newID()
	a.Channel = s.cfg.Channel
	a.AttemptedAt = s.now()

	if err := s.attempts.Append(context.WithoutCancel(ctx), a); err != nil {
		s.log.Warn("append reminder attempt failed", map[string]any{"error": err, "vaccination_id": a.VaccinationID})
	}
}

// BuildReminder arma el Reminder (mensaje + link de WhatsApp) de un candidato.
func BuildReminder(c Candidate, clinicName, countryCode string) Reminder {
	msg := Message(c.Owner.Name, c.Pet.Name, string(c.Vaccination.Type), c.Vaccination.NextDueDate, clinicName)
	return Reminder{
		VaccinationID: c.Vaccination.ID,
		Type:          c.Vaccination.Type,
		DueDate:       vaccinations.FormatDate(c.Vaccination.NextDueDate),
		DaysUntil:     c.DaysUntil,
		PetID:         c.Pet.ID,
		PetName:       c.Pet.Name,
		Species:       c.Pet.Species,
		OwnerID:       c.Owner.ID,
		OwnerName:     c.Owner.Name,
		OwnerPhone:    c.Owner.Phone,
		OwnerEmail:    c.Owner.Email,
		Message:       msg,
		WhatsAppLink:  WhatsAppLink(c.Owner.Phone, msg, countryCode),
	}
}

// ReminderFor arma el recordatorio de una vacunación puntual (link de
// WhatsApp manual), sin importar la ventana ni ReminderSent.
func (s *Scanner) ReminderFor(petID, vaccinationID string) (Reminder, error) {
	snap := s.records.Snapshot()
	for _, p := range snap.Pets {
		if p.ID != petID {
			continue
		}
		for _, v := range p.Vaccinations {
			if v.ID != vaccinationID {
				continue
			}
			o, ok := snap.Owner(p.OwnerID)
			if !ok {
				return Reminder{}, fmt.Errorf("owner %s: %w", p.OwnerID, clinic.ErrNotFound)
			}
			return s.Reminder(Candidate{
				Pet:         p,
				Owner:       o,
				Vaccination: v,
				DaysUntil:   vaccinations.DaysUntil(v.NextDueDate, s.now()),
			}), nil
		}
		return Reminder{}, fmt.Errorf("vaccination %s: %w", vaccinationID, clinic.ErrNotFound)
	}
	return Reminder{}, fmt.Errorf("pet %s: %w", petID, clinic.ErrNotFound)
}
