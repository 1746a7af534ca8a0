package employees

import (
	"net/http"
	"strings"
	"time"

	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/domain/resources"
	"hr-portal/internal/middleware"
	"hr-portal/internal/platform/httpjson"
	"hr-portal/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /employees. nested recibe el subrouter para rutas
// de otros módulos colgadas de un empleado (ej. /{employeeID}/leave-requests).
func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger, nested ...func(chi.Router)) {
	r.Route("/employees", func(er chi.Router) {
		er.Post("/", createEmployeeHandler(svc, log))
		er.Get("/", listEmployeesHandler(svc, log))

		er.Get("/{employeeID}", getEmployeeHandler(svc, log))
		er.Patch("/{employeeID}", updateEmployeeHandler(svc, log))
		er.Delete("/{employeeID}", deleteEmployeeHandler(svc, log))

		for _, fn := range nested {
			fn(er)
		}
	})
}

type createEmployeeRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Position     string `json:"position"`
	DepartmentID string `json:"department_id"` // D-07 o 7, opcional
	HireDate     string `json:"hire_date"`     // YYYY-MM-DD opcional
}

type updateEmployeeRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Email        *string `json:"email"`
	Position     *string `json:"position"`
	DepartmentID *string `json:"department_id"`
	Status       *Status `json:"status"`
}

type employeeResponse struct {
	ID             int64      `json:"id"`
	Code           string     `json:"code"` // E-15
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name,omitempty"`
	FullName       string     `json:"full_name"`
	Email          string     `json:"email"`
	Position       string     `json:"position,omitempty"`
	DepartmentID   *int64     `json:"department_id,omitempty"`
	DepartmentCode string     `json:"department_code,omitempty"`
	HireDate       *time.Time `json:"hire_date,omitempty"`
	Status         Status     `json:"status"`
	OwnerAdminID   string     `json:"owner_admin_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// createEmployeeHandler godoc
// @Summary Alta de empleado
// @Tags employees
// @Accept json
// @Produce json
// @Param X-Admin-Id header string true "Admin (queda como owner)"
// @Param payload body createEmployeeRequest true "Empleado"
// @Success 201 {object} employeeResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "email duplicado"
// @Router /employees [post]
func createEmployeeHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		var req createEmployeeRequest
		if err := httpjson.DecodeJSON(r, &req); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}

		deptID, err := optionalDepartment(req.DepartmentID)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		var hire *time.Time
		if strings.TrimSpace(req.HireDate) != "" {
			t, err := time.Parse(time.DateOnly, strings.TrimSpace(req.HireDate))
			if err != nil {
				httpjson.WriteError(w, log, apperr.Invalid("hire_date must be YYYY-MM-DD"))
				return
			}
			hire = &t
		}

		e, err := svc.Create(r.Context(), adminID, CreateInput{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			Position:     req.Position,
			DepartmentID: deptID,
			HireDate:     hire,
		})
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toResponse(e))
	}
}

// listEmployeesHandler godoc
// @Summary Listar empleados
// @Tags employees
// @Produce json
// @Param X-Admin-Id header string true "Admin"
// @Param scope query string false "mine | all (default all)"
// @Success 200 {array} employeeResponse
// @Router /employees [get]
func listEmployeesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
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
		out := make([]employeeResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toResponse(e))
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

func getEmployeeHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireAdmin(w, r); !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeEmployee, chi.URLParam(r, "employeeID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		e, err := svc.Get(r.Context(), id)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(e))
	}
}

// updateEmployeeHandler godoc
// @Summary Editar empleado
// @Description Requiere ser owner (o adoptarlo si no tiene) o un access request aprobado vigente.
// @Tags employees
// @Accept json
// @Produce json
// @Param X-Admin-Id header string true "Admin"
// @Param employeeID path string true "E-15 o 15"
// @Param payload body updateEmployeeRequest true "Campos a cambiar"
// @Success 200 {object} employeeResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /employees/{employeeID} [patch]
func updateEmployeeHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeEmployee, chi.URLParam(r, "employeeID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		var req updateEmployeeRequest
		if err := httpjson.DecodeJSON(r, &req); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}

		in := UpdateInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Position:  req.Position,
			Status:    req.Status,
		}
		if req.DepartmentID != nil {
			deptID, err := optionalDepartment(*req.DepartmentID)
			if err != nil {
				httpjson.WriteError(w, log, err)
				return
			}
			in.DepartmentID = deptID
		}

		e, err := svc.Update(r.Context(), id, adminID, in)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(e))
	}
}

func deleteEmployeeHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeEmployee, chi.URLParam(r, "employeeID"))
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

func optionalDepartment(raw string) (*int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := resources.ParseID(resources.TypeDepartment, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func toResponse(e Employee) employeeResponse {
	out := employeeResponse{
		ID:           e.ID,
		Code:         resources.Encode(resources.TypeEmployee, e.ID),
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		FullName:     e.FullName(),
		Email:        e.Email,
		Position:     e.Position,
		DepartmentID: e.DepartmentID,
		HireDate:     e.HireDate,
		Status:       e.Status,
		OwnerAdminID: e.OwnerAdminID,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.DepartmentID != nil {
		out.DepartmentCode = resources.Encode(resources.TypeDepartment, *e.DepartmentID)
	}
	return out
}
