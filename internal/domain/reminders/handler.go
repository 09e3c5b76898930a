package reminders

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-vaccination-tracker/internal/domain/clinic"
	"pet-vaccination-tracker/internal/domain/vaccinations"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, sc *Scanner) {
	r.Route("/reminders", func(rr chi.Router) {
		rr.Post("/scan", scanHandler(sc))
		rr.Get("/preview", previewHandler(sc))
		rr.Get("/last", lastScanHandler(sc))
	})

	r.Get("/pets/{petID}/reminders", listAttemptsHandler(sc))
	r.Get("/pets/{petID}/vaccinations/{vaccinationID}/whatsapp", whatsAppHandler(sc))
}

type scanResponse struct {
	ScanID     string    `json:"scan_id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Selected   int       `json:"selected"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Locked     bool      `json:"locked"`
}

type previewItemResponse struct {
	VaccinationID string            `json:"vaccination_id"`
	Type          vaccinations.Type `json:"type"`
	DueDate       string            `json:"due_date"`
	DaysUntil     int               `json:"days_until"`
	PetID         string            `json:"pet_id"`
	PetName       string            `json:"pet_name"`
	OwnerID       string            `json:"owner_id"`
	OwnerName     string            `json:"owner_name"`
}

type previewResponse struct {
	Due     []previewItemResponse `json:"due"`
	Skipped []skipResponse        `json:"skipped"`
}

type skipResponse struct {
	PetID         string `json:"pet_id"`
	OwnerID       string `json:"owner_id,omitempty"`
	VaccinationID string `json:"vaccination_id"`
	Reason        string `json:"reason"`
}

type attemptResponse struct {
	ID            string    `json:"id"`
	ScanID        string    `json:"scan_id"`
	PetID         string    `json:"pet_id"`
	VaccinationID string    `json:"vaccination_id"`
	OwnerID       string    `json:"owner_id,omitempty"`
	Channel       string    `json:"channel"`
	Outcome       Outcome   `json:"outcome"`
	Reason        string    `json:"reason,omitempty"`
	AttemptedAt   time.Time `json:"attempted_at"`
}

type whatsAppResponse struct {
	Message string `json:"message"`
	Link    string `json:"link"`
	Phone   string `json:"phone"`
}

// scanHandler godoc
// @Summary Disparar un scan de recordatorios
// @Description Si ya hay un scan en curso, la llamada espera y devuelve ese mismo resultado. `locked=true` indica que otro proceso tenía el lock.
// @Tags reminders
// @Produce json
// @Success 200 {object} scanResponse
// @Failure 503 {string} string "scan failed"
// @Router /reminders/scan [post]
func scanHandler(sc *Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := sc.Scan(r.Context())
		if err != nil {
			http.Error(w, "scan failed", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, toScanResponse(res))
	}
}

func previewHandler(sc *Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		sel := sc.Preview()

		out := previewResponse{
			Due:     make([]previewItemResponse, 0, len(sel.Due)),
			Skipped: make([]skipResponse, 0, len(sel.Skipped)),
		}
		for _, c := range sel.Due {
			out.Due = append(out.Due, previewItemResponse{
				VaccinationID: c.Vaccination.ID,
				Type:          c.Vaccination.Type,
				DueDate:       vaccinations.FormatDate(c.Vaccination.NextDueDate),
				DaysUntil:     c.DaysUntil,
				PetID:         c.Pet.ID,
				PetName:       c.Pet.Name,
				OwnerID:       c.Owner.ID,
				OwnerName:     c.Owner.Name,
			})
		}
		for _, sk := range sel.Skipped {
			out.Skipped = append(out.Skipped, skipResponse(sk))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func lastScanHandler(sc *Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		res, ok := sc.LastResult()
		if !ok {
			http.Error(w, "no scan yet", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toScanResponse(res))
	}
}

// listAttemptsHandler godoc
// @Summary Historial de recordatorios de una mascota
// @Tags reminders
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param limit query int false "Máximo de intentos a devolver (1-200). Por defecto 50"
// @Param outcome query string false "Lista CSV de outcomes (sent,failed,skipped)"
// @Success 200 {array} attemptResponse
// @Failure 400 {string} string "limit / outcome inválido"
// @Router /pets/{petID}/reminders [get]
func listAttemptsHandler(sc *Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var f ListFilter
		if s := strings.TrimSpace(q.Get("limit")); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > MaxListLimit {
				http.Error(w, "limit must be between 1 and 200", http.StatusBadRequest)
				return
			}
			f.Limit = n
		}
		if s := strings.TrimSpace(q.Get("outcome")); s != "" {
			for _, part := range strings.Split(s, ",") {
				o := Outcome(strings.TrimSpace(part))
				switch o {
				case OutcomeSent, OutcomeFailed, OutcomeSkipped:
					f.Outcomes = append(f.Outcomes, o)
				default:
					http.Error(w, "invalid outcome", http.StatusBadRequest)
					return
				}
			}
		}

		list, err := sc.History(r.Context(), chi.URLParam(r, "petID"), f)
		if err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}

		out := make([]attemptResponse, 0, len(list))
		for _, a := range list {
			out = append(out, attemptResponse{
				ID:            a.ID,
				ScanID:        a.ScanID,
				PetID:         a.PetID,
				VaccinationID: a.VaccinationID,
				OwnerID:       a.OwnerID,
				Channel:       a.Channel,
				Outcome:       a.Outcome,
				Reason:        a.Reason,
				AttemptedAt:   a.AttemptedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// whatsAppHandler godoc
// @Summary Mensaje de recordatorio y link de WhatsApp
// @Description Arma el mensaje para una vacunación puntual. No marca el recordatorio como enviado.
// @Tags reminders
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param vaccinationID path string true "ID de la vacunación"
// @Success 200 {object} whatsAppResponse
// @Failure 404 {string} string "not found"
// @Router /pets/{petID}/vaccinations/{vaccinationID}/whatsapp [get]
func whatsAppHandler(sc *Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rem, err := sc.ReminderFor(chi.URLParam(r, "petID"), chi.URLParam(r, "vaccinationID"))
		if err != nil {
			if errors.Is(err, clinic.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, whatsAppResponse{
			Message: rem.Message,
			Link:    rem.WhatsAppLink,
			Phone:   rem.OwnerPhone,
		})
	}
}

func toScanResponse(res Result) scanResponse {
	return scanResponse{
		ScanID:     res.ScanID,
		StartedAt:  res.StartedAt,
		DurationMS: res.Duration.Milliseconds(),
		Selected:   res.Selected,
		Sent:       res.Sent,
		Failed:     res.Failed,
		Skipped:    res.Skipped,
		Locked:     res.Locked,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
