package clinic

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-vaccination-tracker/internal/domain/vaccinations"

	"github.com/go-chi/chi/v5"
)

// DefaultDueWindowDays es la ventana por defecto del dashboard (7/14/30 en la UI).
const DefaultDueWindowDays = 7

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/catalog", catalogHandler())

	r.Route("/owners", func(or chi.Router) {
		or.Post("/", createOwnerHandler(svc))
		or.Get("/", listOwnersHandler(svc))
		or.Get("/{ownerID}", getOwnerHandler(svc))
		or.Patch("/{ownerID}", updateOwnerHandler(svc))
		or.Delete("/{ownerID}", deleteOwnerHandler(svc))
	})

	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))
		pr.Get("/{petID}", getPetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))

		pr.Route("/{petID}/vaccinations", func(vr chi.Router) {
			vr.Post("/", createVaccinationHandler(svc))
			vr.Get("/", listVaccinationsHandler(svc))
			vr.Get("/overdue", listOverdueHandler(svc))
			vr.Delete("/{vaccinationID}", deleteVaccinationHandler(svc))
		})
	})

	r.Get("/vaccinations/due", dueHandler(svc))
}

// -------------------------
// Requests / responses
// -------------------------

type intervalResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Days  int    `json:"days"`
}

type catalogEntryResponse struct {
	Type      vaccinations.Type  `json:"type"`
	Intervals []intervalResponse `json:"intervals"`
}

type createOwnerRequest struct {
	ID      string `json:"id"` // opcional
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type updateOwnerRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

type ownerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type createPetRequest struct {
	ID      string   `json:"id"` // opcional
	OwnerID string   `json:"owner_id"`
	Name    string   `json:"name"`
	Species string   `json:"species" enums:"Dog,Cat"`
	Breed   string   `json:"breed"`
	Age     int      `json:"age"`
	Weight  *float64 `json:"weight"`
}

type petResponse struct {
	ID           string                `json:"id"`
	OwnerID      string                `json:"owner_id"`
	Name         string                `json:"name"`
	Species      Species               `json:"species"`
	Breed        string                `json:"breed"`
	Age          int                   `json:"age"`
	Weight       *float64              `json:"weight,omitempty"`
	Vaccinations []vaccinationResponse `json:"vaccinations"`
	CreatedAt    time.Time             `json:"created_at"`
}

type petDetailResponse struct {
	petResponse
	Owner    *ownerResponse   `json:"owner,omitempty"`
	Overview overviewResponse `json:"overview"`
}

type overviewResponse struct {
	Total    int `json:"total"`
	Upcoming int `json:"upcoming"`
	Overdue  int `json:"overdue"`
}

type createVaccinationRequest struct {
	Type             string `json:"type" enums:"Anti-fleas,Deworming,Viral vaccine,Rabies"`
	DateAdministered string `json:"date_administered"` // YYYY-MM-DD
	IntervalID       string `json:"interval_id"`
	Notes            string `json:"notes"`
}

type vaccinationResponse struct {
	ID               string              `json:"id"`
	PetID            string              `json:"pet_id"`
	Type             vaccinations.Type   `json:"type"`
	DateAdministered string              `json:"date_administered"`
	NextDueDate      string              `json:"next_due_date"`
	SelectedInterval string              `json:"selected_interval"`
	Notes            string              `json:"notes,omitempty"`
	ReminderSent     bool                `json:"reminder_sent"`
	DaysUntil        int                 `json:"days_until"`
	Status           vaccinations.Status `json:"status"`
}

type dueItemResponse struct {
	vaccinationResponse
	PetName    string `json:"pet_name"`
	OwnerID    string `json:"owner_id"`
	OwnerName  string `json:"owner_name"`
	OwnerPhone string `json:"owner_phone"`
}

// -------------------------
// Catalog
// -------------------------

// catalogHandler godoc
// @Summary Catálogo de intervalos por tipo de vacuna
// @Tags catalog
// @Produce json
// @Success 200 {array} catalogEntryResponse
// @Router /catalog [get]
func catalogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		out := make([]catalogEntryResponse, 0)
		for _, tc := range vaccinations.Catalog() {
			e := catalogEntryResponse{Type: tc.Type, Intervals: make([]intervalResponse, 0, len(tc.Intervals))}
			for _, in := range tc.Intervals {
				e.Intervals = append(e.Intervals, intervalResponse{ID: in.ID, Label: in.Label, Days: in.Days})
			}
			out = append(out, e)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// -------------------------
// Owners
// -------------------------

// createOwnerHandler godoc
// @Summary Registrar dueño
// @Tags owners
// @Accept json
// @Produce json
// @Param payload body createOwnerRequest true "Datos del dueño"
// @Success 201 {object} ownerResponse
// @Failure 400 {string} string "invalid json / validación"
// @Router /owners [post]
func createOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOwnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		o, err := svc.AddOwner(r.Context(), OwnerInput{
			ID:      req.ID,
			Name:    req.Name,
			Phone:   req.Phone,
			Email:   req.Email,
			Address: req.Address,
			Notes:   req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toOwnerResponse(o))
	}
}

func listOwnersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		owners := svc.Owners()
		out := make([]ownerResponse, 0, len(owners))
		for _, o := range owners {
			out = append(out, toOwnerResponse(o))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := svc.Owner(chi.URLParam(r, "ownerID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

// updateOwnerHandler godoc
// @Summary Editar datos de contacto del dueño
// @Tags owners
// @Accept json
// @Produce json
// @Param ownerID path string true "ID del dueño"
// @Param payload body updateOwnerRequest true "Campos a modificar"
// @Success 200 {object} ownerResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 404 {string} string "not found"
// @Router /owners/{ownerID} [patch]
func updateOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateOwnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		o, err := svc.UpdateOwner(r.Context(), chi.URLParam(r, "ownerID"), OwnerPatch{
			Name:    req.Name,
			Phone:   req.Phone,
			Email:   req.Email,
			Address: req.Address,
			Notes:   req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

// deleteOwnerHandler borra el dueño y sus mascotas.
func deleteOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteOwner(r.Context(), chi.URLParam(r, "ownerID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// -------------------------
// Pets
// -------------------------

// createPetHandler godoc
// @Summary Registrar mascota
// @Description El dueño tiene que existir. Si se envía `id` y ya existe, responde 400 sin tocar la mascota existente.
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body createPetRequest true "Datos de la mascota"
// @Success 201 {object} petResponse
// @Failure 400 {string} string "invalid json / dueño inexistente / id duplicado"
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.AddPet(r.Context(), PetInput{
			ID:      req.ID,
			OwnerID: req.OwnerID,
			Name:    req.Name,
			Species: Species(strings.TrimSpace(req.Species)),
			Breed:   req.Breed,
			Age:     req.Age,
			Weight:  req.Weight,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p, svc.Now()))
	}
}

// listPetsHandler godoc
// @Summary Listar / buscar mascotas
// @Tags pets
// @Produce json
// @Param q query string false "Busca por nombre o id"
// @Success 200 {array} petResponse
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := svc.Now()
		list := svc.SearchPets(r.URL.Query().Get("q"))

		out := make([]petResponse, 0, len(list))
		for _, p := range list {
			out = append(out, toPetResponse(p, now))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		p, err := svc.Pet(petID)
		if err != nil {
			writeError(w, err)
			return
		}
		ov, err := svc.PetOverview(petID)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := petDetailResponse{
			petResponse: toPetResponse(p, svc.Now()),
			Overview:    overviewResponse{Total: ov.Total, Upcoming: ov.Upcoming, Overdue: ov.Overdue},
		}
		if o, err := svc.Owner(p.OwnerID); err == nil {
			or := toOwnerResponse(o)
			resp.Owner = &or
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeletePet(r.Context(), chi.URLParam(r, "petID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// -------------------------
// Vaccinations
// -------------------------

// createVaccinationHandler godoc
// @Summary Registrar vacunación
// @Description Calcula next_due_date = date_administered + días del intervalo elegido. El intervalo tiene que pertenecer al tipo.
// @Tags vaccinations
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body createVaccinationRequest true "Datos de la vacunación; date_administered en formato YYYY-MM-DD"
// @Success 201 {object} vaccinationResponse
// @Failure 400 {string} string "invalid json / fecha inválida / intervalo inválido"
// @Failure 404 {string} string "pet not found"
// @Failure 503 {string} string "store unavailable"
// @Router /pets/{petID}/vaccinations [post]
func createVaccinationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createVaccinationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		administered, err := vaccinations.ParseDate(req.DateAdministered)
		if err != nil {
			http.Error(w, "date_administered must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		v, err := svc.AddVaccination(r.Context(), chi.URLParam(r, "petID"), VaccinationInput{
			Type:             vaccinations.Type(strings.TrimSpace(req.Type)),
			DateAdministered: administered,
			IntervalID:       strings.TrimSpace(req.IntervalID),
			Notes:            req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toVaccinationResponse(v, svc.Now(), vaccinations.Classify))
	}
}

// listVaccinationsHandler usa la clasificación de 4 estados (vista de detalle).
func listVaccinationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.VaccinationsForPet(chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVaccinationResponses(list, svc.Now()))
	}
}

func listOverdueHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.OverdueVaccinationsForPet(chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVaccinationResponses(list, svc.Now()))
	}
}

func deleteVaccinationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.DeleteVaccination(r.Context(), chi.URLParam(r, "petID"), chi.URLParam(r, "vaccinationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// dueHandler godoc
// @Summary Dashboard de vacunaciones próximas
// @Description Vacunaciones que vencen entre hoy y hoy+days. Usa la clasificación de 3 estados (overdue, due_soon, upcoming).
// @Tags vaccinations
// @Produce json
// @Param days query int false "Ventana en días (por defecto 7)"
// @Param pet_id query string false "Filtra por mascota"
// @Success 200 {array} dueItemResponse
// @Failure 400 {string} string "days inválido"
// @Router /vaccinations/due [get]
func dueHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := DefaultDueWindowDays
		if s := strings.TrimSpace(r.URL.Query().Get("days")); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 || n > 366 {
				http.Error(w, "days must be an integer between 0 and 366", http.StatusBadRequest)
				return
			}
			days = n
		}
		petID := strings.TrimSpace(r.URL.Query().Get("pet_id"))

		now := svc.Now()
		out := make([]dueItemResponse, 0)
		for _, it := range svc.VaccinationsDueWithin(days) {
			if petID != "" && it.Vaccination.PetID != petID {
				continue
			}
			out = append(out, dueItemResponse{
				vaccinationResponse: toVaccinationResponse(it.Vaccination, now, vaccinations.ClassifyDashboard),
				PetName:             it.PetName,
				OwnerID:             it.OwnerID,
				OwnerName:           it.OwnerName,
				OwnerPhone:          it.OwnerPhone,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// -------------------------
// Helpers
// -------------------------

func toOwnerResponse(o Owner) ownerResponse {
	return ownerResponse{
		ID:        o.ID,
		Name:      o.Name,
		Phone:     o.Phone,
		Email:     o.Email,
		Address:   o.Address,
		Notes:     o.Notes,
		CreatedAt: o.CreatedAt,
	}
}

func toPetResponse(p Pet, now time.Time) petResponse {
	return petResponse{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Name:         p.Name,
		Species:      p.Species,
		Breed:        p.Breed,
		Age:          p.Age,
		Weight:       p.Weight,
		Vaccinations: toVaccinationResponses(p.Vaccinations, now),
		CreatedAt:    p.CreatedAt,
	}
}

func toVaccinationResponses(list []vaccinations.Vaccination, now time.Time) []vaccinationResponse {
	out := make([]vaccinationResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toVaccinationResponse(v, now, vaccinations.Classify))
	}
	return out
}

func toVaccinationResponse(v vaccinations.Vaccination, now time.Time, classify func(due, now time.Time) vaccinations.Status) vaccinationResponse {
	return vaccinationResponse{
		ID:               v.ID,
		PetID:            v.PetID,
		Type:             v.Type,
		DateAdministered: vaccinations.FormatDate(v.DateAdministered),
		NextDueDate:      vaccinations.FormatDate(v.NextDueDate),
		SelectedInterval: v.SelectedInterval,
		Notes:            v.Notes,
		ReminderSent:     v.ReminderSent,
		DaysUntil:        vaccinations.DaysUntil(v.NextDueDate, now),
		Status:           classify(v.NextDueDate, now),
	}
}

// writeError mapea errores de dominio a status HTTP.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case IsNotFound(err):
		http.Error(w, "not found", http.StatusNotFound)
	case IsUnavailable(err):
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado en los handlers de cada módulo (clinic/reminders).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
