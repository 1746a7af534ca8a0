package leaves

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

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/leave-requests", func(lr chi.Router) {
		// Autoservicio: sin X-Admin-Id el pedido queda sin owner.
		lr.Post("/", createLeaveHandler(svc, log))
		lr.Get("/", listLeavesHandler(svc, log))

		lr.Get("/{leaveID}", getLeaveHandler(svc, log))
		lr.Patch("/{leaveID}", updateLeaveHandler(svc, log))
		lr.Delete("/{leaveID}", deleteLeaveHandler(svc, log))

		lr.Post("/{leaveID}/approve", decideLeaveHandler(svc, log, StatusApproved))
		lr.Post("/{leaveID}/reject", decideLeaveHandler(svc, log, StatusRejected))
	})
}

// EmployeeRoutes cuelga /{employeeID}/leave-requests del subrouter de employees.
func EmployeeRoutes(svc *Service, log logger.Logger) func(chi.Router) {
	return func(er chi.Router) {
		er.Get("/{employeeID}/leave-requests", listEmployeeLeavesHandler(svc, log))
	}
}

type createLeaveRequest struct {
	EmployeeID string `json:"employee_id"` // E-15 o 15
	StartDate  string `json:"start_date"`  // YYYY-MM-DD
	EndDate    string `json:"end_date"`    // YYYY-MM-DD (inclusive)
	Reason     string `json:"reason"`
}

type updateLeaveRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Reason    *string `json:"reason"`
}

type leaveResponse struct {
	ID           int64      `json:"id"`
	Code         string     `json:"code"` // L-9
	EmployeeID   int64      `json:"employee_id"`
	EmployeeCode string     `json:"employee_code"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	Reason       string     `json:"reason,omitempty"`
	Status       Status     `json:"status"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	DecidedBy    string     `json:"decided_by,omitempty"`
	OwnerAdminID string     `json:"owner_admin_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// createLeaveHandler godoc
// @Summary Pedir licencia
// @Tags leave-requests
// @Accept json
// @Produce json
// @Param X-Admin-Id header string false "Admin (queda como owner)"
// @Param payload body createLeaveRequest true "Pedido"
// @Success 201 {object} leaveResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "employee not found"
// @Router /leave-requests [post]
func createLeaveHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, _ := middleware.GetAdminID(r.Context())

		var req createLeaveRequest
		if err := httpjson.DecodeJSON(r, &req); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		employeeID, err := resources.ParseID(resources.TypeEmployee, req.EmployeeID)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		start, err := parseDay(req.StartDate, "start_date")
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		end, err := parseDay(req.EndDate, "end_date")
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}

		l, err := svc.Create(r.Context(), adminID, CreateInput{
			EmployeeID: employeeID,
			StartDate:  start,
			EndDate:    end,
			Reason:     req.Reason,
		})
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toResponse(l))
	}
}

// listLeavesHandler godoc
// @Summary Listar pedidos de licencia
// @Tags leave-requests
// @Produce json
// @Param X-Admin-Id header string true "Admin"
// @Param scope query string false "mine | all (default all)"
// @Success 200 {array} leaveResponse
// @Router /leave-requests [get]
func listLeavesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
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
		writeList(w, items)
	}
}

// listEmployeeLeavesHandler godoc
// @Summary Licencias de un empleado
// @Tags employees
// @Produce json
// @Param X-Admin-Id header string true "Admin"
// @Param employeeID path string true "E-15 o 15"
// @Success 200 {array} leaveResponse
// @Failure 404 {object} map[string]string
// @Router /employees/{employeeID}/leave-requests [get]
func listEmployeeLeavesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireAdmin(w, r); !ok {
			return
		}
		employeeID, err := resources.ParseID(resources.TypeEmployee, chi.URLParam(r, "employeeID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		items, err := svc.ListByEmployee(r.Context(), employeeID)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		writeList(w, items)
	}
}

func getLeaveHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireAdmin(w, r); !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeLeaveRequest, chi.URLParam(r, "leaveID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		l, err := svc.Get(r.Context(), id)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(l))
	}
}

func updateLeaveHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeLeaveRequest, chi.URLParam(r, "leaveID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		var req updateLeaveRequest
		if err := httpjson.DecodeJSON(r, &req); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}

		in := UpdateInput{Reason: req.Reason}
		if req.StartDate != nil {
			t, err := parseDay(*req.StartDate, "start_date")
			if err != nil {
				httpjson.WriteError(w, log, err)
				return
			}
			in.StartDate = &t
		}
		if req.EndDate != nil {
			t, err := parseDay(*req.EndDate, "end_date")
			if err != nil {
				httpjson.WriteError(w, log, err)
				return
			}
			in.EndDate = &t
		}

		l, err := svc.Update(r.Context(), id, adminID, in)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(l))
	}
}

func deleteLeaveHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeLeaveRequest, chi.URLParam(r, "leaveID"))
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

// decideLeaveHandler godoc
// @Summary Aprobar o rechazar licencia
// @Description POST /leave-requests/{leaveID}/approve o /reject. Requiere acceso de edición sobre el pedido.
// @Tags leave-requests
// @Produce json
// @Param X-Admin-Id header string true "Admin"
// @Param leaveID path string true "L-9 o 9"
// @Success 200 {object} leaveResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /leave-requests/{leaveID}/approve [post]
// @Router /leave-requests/{leaveID}/reject [post]
func decideLeaveHandler(svc *Service, log logger.Logger, to Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		id, err := resources.ParseID(resources.TypeLeaveRequest, chi.URLParam(r, "leaveID"))
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}

		var l LeaveRequest
		if to == StatusApproved {
			l, err = svc.Approve(r.Context(), id, adminID)
		} else {
			l, err = svc.Reject(r.Context(), id, adminID)
		}
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(l))
	}
}

func parseDay(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperr.Invalid(field + " required")
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, apperr.Invalid(field + " must be YYYY-MM-DD")
	}
	return t, nil
}

func writeList(w http.ResponseWriter, items []LeaveRequest) {
	out := make([]leaveResponse, 0, len(items))
	for _, l := range items {
		out = append(out, toResponse(l))
	}
	httpjson.WriteJSON(w, http.StatusOK, out)
}

func toResponse(l LeaveRequest) leaveResponse {
	return leaveResponse{
		ID:           l.ID,
		Code:         resources.Encode(resources.TypeLeaveRequest, l.ID),
		EmployeeID:   l.EmployeeID,
		EmployeeCode: resources.Encode(resources.TypeEmployee, l.EmployeeID),
		StartDate:    l.StartDate.Format(time.DateOnly),
		EndDate:      l.EndDate.Format(time.DateOnly),
		Reason:       l.Reason,
		Status:       l.Status,
		DecidedAt:    l.DecidedAt,
		DecidedBy:    l.DecidedBy,
		OwnerAdminID: l.OwnerAdminID,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}
