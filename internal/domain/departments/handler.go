package departments

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
	r.Route("/departments", func(dr chi.Router) {
		dr.Post("/", createDepartmentHandler(svc, log))
		dr.Get("/", listDepartmentsHandler(svc, log))

		dr.Get("/{departmentID}", getDepartmentHandler(svc, log))
		dr.Patch("/{departmentID}", updateDepartmentHandler(svc, log))
		dr.Delete("/{departmentID}", deleteDepartmentHandler(svc, log))
	})
}

type createDepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateDepartmentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type departmentResponse struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"` // D-07
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	OwnerAdminID string    `json:"owner_admin_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// createDepartmentHandler godoc
// @Summary Crear departamento
// @Tags departments
// @Accept json
// @Produce json
// @Param X-Admin-Id header string true "Admin (queda como owner)"
// @Param payload body createDepartmentRequest true "Departamento"
// @Success 201 {object} departmentResponse
// @Failure 400 {object} map[string]string
// @Router /departments [post]
func createDepartmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		var req createDepartmentRequest
		if err := httpjson.DecodeJSON(r, &req); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		d, err := svc.Create(r.Context(), adminID, CreateInput{Name: req.Name, Description: req.Description})
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toResponse(d))
	}
}

// listDepartmentsHandler godoc
// @Summary Listar departamentos
// @Tags departments
// @Produce json
// @Param X-Admin-Id header string true "Admin"
// @Param scope query string false "mine | all (default all)"
// @Success 200 {array} departmentResponse
// @Router /departments [get]
func listDepartmentsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
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
		items, err := svc.List(r.Context(), adminID, scope)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		out := make([]departmentResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toResponse(d))
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

func getDepartmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireAdmin(w, r); !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeDepartment, chi.URLParam(r, "departmentID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		d, err := svc.Get(r.Context(), id)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(d))
	}
}

// updateDepartmentHandler godoc
// @Summary Editar departamento
// @Description Requiere ser owner (o adoptarlo si no tiene) o un access request aprobado vigente.
// @Tags departments
// @Accept json
// @Produce json
// @Param X-Admin-Id header string true "Admin"
// @Param departmentID path string true "D-07 o 7"
// @Param payload body updateDepartmentRequest true "Campos a cambiar"
// @Success 200 {object} departmentResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /departments/{departmentID} [patch]
func updateDepartmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeDepartment, chi.URLParam(r, "departmentID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		var req updateDepartmentRequest
		if err := httpjson.DecodeJSON(r, &req); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		d, err := svc.Update(r.Context(), id, adminID, UpdateInput{Name: req.Name, Description: req.Description})
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(d))
	}
}

func deleteDepartmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeDepartment, chi.URLParam(r, "departmentID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		if err := svc.Delete(r.Context(), id, adminID); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toResponse(d Department) departmentResponse {
	return departmentResponse{
		ID:           d.ID,
		Code:         resources.Encode(resources.TypeDepartment, d.ID),
		Name:         d.Name,
		Description:  d.Description,
		OwnerAdminID: d.OwnerAdminID,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
