package recruitment

import (
	"net/http"
	"time"

	"hr-portal/internal/domain/resources"
	"hr-portal/internal/middleware"
	"hr-portal/internal/platform/httpjson"
	"hr-portal/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/candidates", func(cr chi.Router) {
		// Alta pública: sin X-Admin-Id el candidato queda sin owner.
		cr.Post("/", createCandidateHandler(svc, log))
		cr.Get("/", listCandidatesHandler(svc, log))

		cr.Get("/{candidateID}", getCandidateHandler(svc, log))
		cr.Patch("/{candidateID}", updateCandidateHandler(svc, log))
		cr.Delete("/{candidateID}", deleteCandidateHandler(svc, log))
	})

	r.Route("/applications", func(ar chi.Router) {
		ar.Post("/", createApplicationHandler(svc, log))
		ar.Get("/", listApplicationsHandler(svc, log))

		ar.Get("/{applicationID}", getApplicationHandler(svc, log))
		ar.Patch("/{applicationID}", updateApplicationHandler(svc, log))
		ar.Delete("/{applicationID}", deleteApplicationHandler(svc, log))
		ar.Post("/{applicationID}/status", changeApplicationStatusHandler(svc, log))
	})
}

type candidateRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Notes    string `json:"notes"`
}

type candidatePatchRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Notes    *string `json:"notes"`
}

type candidateResponse struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"` // C-004
	FullName     string    `json:"full_name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	OwnerAdminID string    `json:"owner_admin_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type applicationRequest struct {
	CandidateID string `json:"candidate_id"` // C-004 o 4
	Position    string `json:"position"`
	Notes       string `json:"notes"`
}

type applicationPatchRequest struct {
	Position *string `json:"position"`
	Notes    *string `json:"notes"`
}

type applicationStatusRequest struct {
	Status ApplicationStatus `json:"status" enums:"submitted,interview,offered,hired,rejected"`
}

type applicationResponse struct {
	ID            int64             `json:"id"`
	Code          string            `json:"code"` // APP-021
	CandidateID   int64             `json:"candidate_id"`
	CandidateCode string            `json:"candidate_code"`
	Position      string            `json:"position"`
	Status        ApplicationStatus `json:"status"`
	Notes         string            `json:"notes,omitempty"`
	OwnerAdminID  string            `json:"owner_admin_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// -------------------------
// Candidates
// -------------------------

// createCandidateHandler godoc
// @Summary Alta de candidato
// @Description Con X-Admin-Id el admin queda como owner; sin header es una postulación pública sin owner.
// @Tags candidates
// @Accept json
// @Produce json
// @Param X-Admin-Id header string false "Admin"
// @Param payload body candidateRequest true "Candidato"
// @Success 201 {object} candidateResponse
// @Failure 400 {object} map[string]string
// @Router /candidates [post]
func createCandidateHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, _ := middleware.GetAdminID(r.Context())

		var req candidateRequest
		if err := httpjson.DecodeJSON(r, &req); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		c, err := svc.CreateCandidate(r.Context(), adminID, CandidateInput{
			FullName: req.FullName,
			Email:    req.Email,
			Phone:    req.Phone,
			Notes:    req.Notes,
		})
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toCandidateResponse(c))
	}
}

// listCandidatesHandler godoc
// @Summary Listar candidatos
// @Tags candidates
// @Produce json
// @Param X-Admin-Id header string true "Admin"
// @Param scope query string false "mine | all (default all)"
// @Success 200 {array} candidateResponse
// @Router /candidates [get]
func listCandidatesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		scope, err := resources.ParseScope(r.URL.Query().Get("scope"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		items, err := svc.ListCandidates(r.Context(), adminID, scope)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		out := make([]candidateResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCandidateResponse(c))
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

func getCandidateHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireAdmin(w, r); !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeCandidate, chi.URLParam(r, "candidateID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		c, err := svc.GetCandidate(r.Context(), id)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toCandidateResponse(c))
	}
}

// updateCandidateHandler godoc
// @Summary Editar candidato
// @Tags candidates
// @Accept json
// @Produce json
// @Param X-Admin-Id header string true "Admin"
// @Param candidateID path string true "C-004 o 4"
// @Param payload body candidatePatchRequest true "Campos a cambiar"
// @Success 200 {object} candidateResponse
// @Failure 403 {object} map[string]string
// @Router /candidates/{candidateID} [patch]
func updateCandidateHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeCandidate, chi.URLParam(r, "candidateID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		var req candidatePatchRequest
		if err := httpjson.DecodeJSON(r, &req); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		c, err := svc.UpdateCandidate(r.Context(), id, adminID, CandidatePatch{
			FullName: req.FullName,
			Email:    req.Email,
			Phone:    req.Phone,
			Notes:    req.Notes,
		})
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toCandidateResponse(c))
	}
}

func deleteCandidateHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeCandidate, chi.URLParam(r, "candidateID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		if err := svc.DeleteCandidate(r.Context(), id, adminID); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// -------------------------
// Applications
// -------------------------

// createApplicationHandler godoc
// @Summary Nueva postulación
// @Tags applications
// @Accept json
// @Produce json
// @Param X-Admin-Id header string false "Admin"
// @Param payload body applicationRequest true "Postulación"
// @Success 201 {object} applicationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "candidate not found"
// @Router /applications [post]
func createApplicationHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, _ := middleware.GetAdminID(r.Context())

		var req applicationRequest
		if err := httpjson.DecodeJSON(r, &req); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		candidateID, err := resources.ParseID(resources.TypeCandidate, req.CandidateID)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		a, err := svc.CreateApplication(r.Context(), adminID, ApplicationInput{
			CandidateID: candidateID,
			Position:    req.Position,
			Notes:       req.Notes,
		})
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toApplicationResponse(a))
	}
}

// listApplicationsHandler godoc
// @Summary Listar postulaciones
// @Tags applications
// @Produce json
// @Param X-Admin-Id header string true "Admin"
// @Param scope query string false "mine | all (default all)"
// @Success 200 {array} applicationResponse
// @Router /applications [get]
func listApplicationsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		scope, err := resources.ParseScope(r.URL.Query().Get("scope"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		items, err := svc.ListApplications(r.Context(), adminID, scope)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		out := make([]applicationResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toApplicationResponse(a))
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

func getApplicationHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireAdmin(w, r); !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeJobApplication, chi.URLParam(r, "applicationID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		a, err := svc.GetApplication(r.Context(), id)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toApplicationResponse(a))
	}
}

func updateApplicationHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeJobApplication, chi.URLParam(r, "applicationID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		var req applicationPatchRequest
		if err := httpjson.DecodeJSON(r, &req); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		a, err := svc.UpdateApplication(r.Context(), id, adminID, ApplicationPatch{Position: req.Position, Notes: req.Notes})
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toApplicationResponse(a))
	}
}

// changeApplicationStatusHandler godoc
// @Summary Mover postulación en el pipeline
// @Description submitted -> interview -> offered -> hired; rejected desde cualquier estado no terminal.
// @Tags applications
// @Accept json
// @Produce json
// @Param X-Admin-Id header string true "Admin"
// @Param applicationID path string true "APP-021 o 21"
// @Param payload body applicationStatusRequest true "Nuevo estado"
// @Success 200 {object} applicationResponse
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string "transición inválida"
// @Router /applications/{applicationID}/status [post]
func changeApplicationStatusHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeJobApplication, chi.URLParam(r, "applicationID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		var req applicationStatusRequest
		if err := httpjson.DecodeJSON(r, &req); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		a, err := svc.ChangeStatus(r.Context(), id, adminID, req.Status)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toApplicationResponse(a))
	}
}

func deleteApplicationHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeJobApplication, chi.URLParam(r, "applicationID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		if err := svc.DeleteApplication(r.Context(), id, adminID); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toCandidateResponse(c Candidate) candidateResponse {
	return candidateResponse{
		ID:           c.ID,
		Code:         resources.Encode(resources.TypeCandidate, c.ID),
		FullName:     c.FullName,
		Email:        c.Email,
		Phone:        c.Phone,
		Notes:        c.Notes,
		OwnerAdminID: c.OwnerAdminID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func toApplicationResponse(a JobApplication) applicationResponse {
	return applicationResponse{
		ID:            a.ID,
		Code:          resources.Encode(resources.TypeJobApplication, a.ID),
		CandidateID:   a.CandidateID,
		CandidateCode: resources.Encode(resources.TypeCandidate, a.CandidateID),
		Position:      a.Position,
		Status:        a.Status,
		Notes:         a.Notes,
		OwnerAdminID:  a.OwnerAdminID,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
