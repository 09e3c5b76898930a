package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	mem "pet-vaccination-tracker/internal/adapters/storage/memory"
	"pet-vaccination-tracker/internal/domain/clinic"
	"pet-vaccination-tracker/internal/domain/reminders"
	"pet-vaccination-tracker/internal/platform/metrics"
	"pet-vaccination-tracker/internal/router"

	"github.com/prometheus/client_golang/prometheus"
)

// clock es un reloj manual compartido por el servicio y el scanner.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// outbox junta lo que el notifier "envió".
type outbox struct {
	mu   sync.Mutex
	sent []reminders.Reminder
}

func (o *outbox) Send(_ context.Context, r reminders.Reminder) error {
	o.mu.Lock()
	o.sent = append(o.sent, r)
	o.mu.Unlock()
	return nil
}

func (o *outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sent)
}

func newTestServer(t *testing.T, clk *clock, box *outbox) *httptest.Server {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	svc := clinic.NewService(mem.NewClinicRepo(), nil, clinic.WithClock(clk.Now))
	sc, err := reminders.NewScanner(svc, box, reminders.Config{Channel: "test"},
		reminders.WithAttempts(mem.NewAttemptRepo()),
		reminders.WithMetrics(m),
		reminders.WithClock(clk.Now),
	)
	if err != nil {
		t.Fatalf("new scanner: %v", err)
	}

	ts := httptest.NewServer(router.NewRouter(router.Options{
		Clinic:   svc,
		Scanner:  sc,
		Metrics:  m,
		Gatherer: reg,
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_RabiesReminder(t *testing.T) {
	clk := &clock{t: time.Date(2025, 4, 30, 9, 0, 0, 0, time.UTC)}
	box := &outbox{}
	ts := newTestServer(t, clk, box)

	// 1) Dueño y mascota
	{
		st, body := doReq(t, ts.URL, "POST", "/owners", map[string]any{
			"id":    "owner-1",
			"name":  "John",
			"phone": "555-0100",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create owner, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/pets", map[string]any{
			"id":       "pet-1",
			"owner_id": "owner-1",
			"name":     "Max",
			"species":  "Dog",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
		}
	}

	// 2) Rabia "1 Year" aplicada 2024-05-02 => vence 2025-05-02
	var vaccinationID string
	{
		st, body := doReq(t, ts.URL, "POST", "/pets/pet-1/vaccinations", map[string]any{
			"type":              "Rabies",
			"date_administered": "2024-05-02",
			"interval_id":       "rabies-1y",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 add vaccination, got %d body=%s", st, string(body))
		}
		var v struct {
			ID           string `json:"id"`
			NextDueDate  string `json:"next_due_date"`
			ReminderSent bool   `json:"reminder_sent"`
			Status       string `json:"status"`
		}
		mustJSON(t, body, &v)
		if v.NextDueDate != "2025-05-02" {
			t.Fatalf("expected next due 2025-05-02, got %s", v.NextDueDate)
		}
		if v.ReminderSent {
			t.Fatalf("new vaccination must not be marked as reminded")
		}
		if v.Status != "due_soon" {
			t.Fatalf("expected due_soon, got %s", v.Status)
		}
		vaccinationID = v.ID
	}

	// 3) Dashboard de 7 días la muestra
	{
		st, body := doReq(t, ts.URL, "GET", "/vaccinations/due?days=7", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 due, got %d body=%s", st, string(body))
		}
		var items []struct {
			ID        string `json:"id"`
			PetName   string `json:"pet_name"`
			OwnerName string `json:"owner_name"`
			DaysUntil int    `json:"days_until"`
		}
		mustJSON(t, body, &items)
		if len(items) != 1 || items[0].ID != vaccinationID || items[0].DaysUntil != 2 {
			t.Fatalf("unexpected due items: %s", string(body))
		}
		if items[0].PetName != "Max" || items[0].OwnerName != "John" {
			t.Fatalf("due item not joined with pet/owner: %s", string(body))
		}
	}

	// 4) Scan 2025-04-30: se envía y se marca
	{
		st, body := doReq(t, ts.URL, "POST", "/reminders/scan", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 scan, got %d body=%s", st, string(body))
		}
		var res struct {
			Selected int `json:"selected"`
			Sent     int `json:"sent"`
			Failed   int `json:"failed"`
		}
		mustJSON(t, body, &res)
		if res.Selected != 1 || res.Sent != 1 || res.Failed != 0 {
			t.Fatalf("unexpected scan result: %s", string(body))
		}
		if box.Len() != 1 {
			t.Fatalf("expected 1 notification, got %d", box.Len())
		}
		if !strings.Contains(box.sent[0].Message, "Max") || box.sent[0].DueDate != "2025-05-02" {
			t.Fatalf("unexpected reminder: %+v", box.sent[0])
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/pet-1/vaccinations", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list vaccinations, got %d", st)
		}
		var list []struct {
			ReminderSent bool `json:"reminder_sent"`
		}
		mustJSON(t, body, &list)
		if len(list) != 1 || !list[0].ReminderSent {
			t.Fatalf("expected reminder_sent=true after scan: %s", string(body))
		}
	}

	// 5) Scan 2025-05-01: no se reenvía
	clk.Set(time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC))
	{
		st, body := doReq(t, ts.URL, "POST", "/reminders/scan", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 scan, got %d body=%s", st, string(body))
		}
		var res struct {
			Selected int `json:"selected"`
			Sent     int `json:"sent"`
		}
		mustJSON(t, body, &res)
		if res.Selected != 0 || res.Sent != 0 {
			t.Fatalf("second scan must not select the record: %s", string(body))
		}
		if box.Len() != 1 {
			t.Fatalf("expected still 1 notification, got %d", box.Len())
		}
	}

	// 6) Historial de intentos
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/pet-1/reminders?outcome=sent", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 attempts, got %d body=%s", st, string(body))
		}
		var list []struct {
			VaccinationID string `json:"vaccination_id"`
			Outcome       string `json:"outcome"`
			Channel       string `json:"channel"`
		}
		mustJSON(t, body, &list)
		if len(list) != 1 || list[0].VaccinationID != vaccinationID || list[0].Channel != "test" {
			t.Fatalf("unexpected attempts: %s", string(body))
		}
	}

	// 7) Link de WhatsApp para la misma vacunación
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/pet-1/vaccinations/"+vaccinationID+"/whatsapp", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 whatsapp, got %d body=%s", st, string(body))
		}
		var wa struct {
			Link string `json:"link"`
		}
		mustJSON(t, body, &wa)
		if !strings.HasPrefix(wa.Link, "https://wa.me/25550100?text=") {
			t.Fatalf("unexpected whatsapp link: %s", wa.Link)
		}
	}

	// 8) Métricas expuestas
	{
		st, body := doReq(t, ts.URL, "GET", "/metrics", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 metrics, got %d", st)
		}
		if !strings.Contains(string(body), `vaxtracker_reminders_total{outcome="sent"} 1`) {
			t.Fatalf("expected sent reminder counter in metrics output")
		}
	}
}

func TestHTTP_Errors(t *testing.T) {
	clk := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	ts := newTestServer(t, clk, &outbox{})

	if st, _ := doReq(t, ts.URL, "GET", "/health", nil); st != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", st)
	}

	// mascota con dueño inexistente
	if st, body := doReq(t, ts.URL, "POST", "/pets", map[string]any{
		"owner_id": "ghost", "name": "Rex", "species": "Dog",
	}); st != http.StatusBadRequest {
		t.Fatalf("expected 400 unknown owner, got %d body=%s", st, string(body))
	}

	if st, _ := doReq(t, ts.URL, "GET", "/pets/nope", nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 unknown pet, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "DELETE", "/pets/nope/vaccinations/v1", nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 unknown vaccination, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/pets/nope/vaccinations/v1/whatsapp", nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 whatsapp for unknown pet, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/vaccinations/due?days=abc", nil); st != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid days, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/pets/nope/reminders?limit=0", nil); st != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid limit, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/reminders/last", nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 before first scan, got %d", st)
	}

	// intervalo que no corresponde al tipo
	if st, _ := doReq(t, ts.URL, "POST", "/owners", map[string]any{"id": "o1", "name": "Jane", "phone": "1"}); st != http.StatusCreated {
		t.Fatalf("expected 201 owner, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "POST", "/pets", map[string]any{"id": "p1", "owner_id": "o1", "name": "Whiskers", "species": "Cat"}); st != http.StatusCreated {
		t.Fatalf("expected 201 pet, got %d", st)
	}
	if st, body := doReq(t, ts.URL, "POST", "/pets/p1/vaccinations", map[string]any{
		"type": "Rabies", "date_administered": "2024-05-02", "interval_id": "deworming-2w",
	}); st != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid interval, got %d body=%s", st, string(body))
	}
}

func TestHTTP_DefaultOptions(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/catalog", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 catalog, got %d", st)
	}
	var cat []struct {
		Type string `json:"type"`
	}
	mustJSON(t, body, &cat)
	if len(cat) != 4 {
		t.Fatalf("expected 4 catalog entries, got %d", len(cat))
	}

	if st, _ := doReq(t, ts.URL, "GET", "/metrics", nil); st != http.StatusNotFound {
		t.Fatalf("expected /metrics disabled without gatherer, got %d", st)
	}
}

// -------------------------
// Helpers
// -------------------------

func doReq(t *testing.T, baseURL, method, path string, body any) (int, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

func mustJSON(t *testing.T, b []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, string(b))
	}
}
