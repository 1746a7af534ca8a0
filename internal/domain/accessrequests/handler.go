package accessrequests

import (
	"net/http"
	"strconv"
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
	r.Route("/access-requests", func(ar chi.Router) {
		ar.Post("/", createRequestHandler(svc, log))

		// Owner: pedidos recibidos / Requester: pedidos enviados
		ar.Get("/inbox", inboxHandler(svc, log))
		ar.Get("/outbox", outboxHandler(svc, log))

		ar.Get("/{requestID}", getRequestHandler(svc, log))
		ar.Post("/{requestID}/approve", approveRequestHandler(svc, log))
		ar.Post("/{requestID}/deny", denyRequestHandler(svc, log))
	})
}

// createAccessRequest es el body para pedir acceso a un recurso ajeno.
type createAccessRequest struct {
	ResourceType string `json:"resource_type" enums:"Department,Employee,Candidate,JobApplication,LeaveRequest"`
	ResourceID   string `json:"resource_id"` // E-15 o 15
	Note         string `json:"note"`
}

type approveAccessRequest struct {
	AllowMinutes int `json:"allow_minutes" maximum:"525600"` // <= 0 => default (15)
}

// accessRequestResponse representa un access request devuelto por la API.
type accessRequestResponse struct {
	ID               int64          `json:"id"`
	Resource         string         `json:"resource"`
	ResourceType     resources.Type `json:"resource_type"`
	ResourceID       int64          `json:"resource_id"`
	OwnerAdminID     string         `json:"owner_admin_id"`
	RequesterAdminID string         `json:"requester_admin_id"`
	Status           Status         `json:"status"`
	Note             string         `json:"note,omitempty"`
	RequestedAt      time.Time      `json:"requested_at"`
	DecidedAt        *time.Time     `json:"decided_at,omitempty"`
	AllowedUntil     *time.Time     `json:"allowed_until,omitempty"`
	Active           bool           `json:"active"`
}

// createRequestHandler godoc
// @Summary Pedir acceso a un recurso
// @Description Crea un access request pending contra el owner del recurso. Si ya existe uno pending o un grant aprobado vigente para el mismo recurso, lo devuelve sin crear otro.
// @Tags access-requests
// @Accept json
// @Produce json
// @Param X-Admin-Id header string true "Admin que pide acceso"
// @Param payload body createAccessRequest true "Recurso (tipo + id externo o numérico)"
// @Success 201 {object} accessRequestResponse
// @Success 200 {object} accessRequestResponse "pedido pending o grant vigente ya existente"
// @Failure 400 {object} map[string]string "validación (owner not assigned, already own this resource, id inválido)"
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string "resource not found"
// @Router /access-requests [post]
func createRequestHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}

		var req createAccessRequest
		if err := httpjson.DecodeJSON(r, &req); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}

		ar, created, err := svc.Submit(r.Context(), CreateInput{
			RequesterAdminID: adminID,
			ResourceType:     req.ResourceType,
			ResourceID:       req.ResourceID,
			Note:             req.Note,
		})
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		httpjson.WriteJSON(w, status, toResponse(ar, svc.Now()))
	}
}

// inboxHandler godoc
// @Summary Pedidos recibidos
// @Description Access requests sobre recursos del admin, más recientes primero. Filtro opcional status=pending,approved,denied.
// @Tags access-requests
// @Produce json
// @Param X-Admin-Id header string true "Owner"
// @Param status query string false "CSV de estados"
// @Success 200 {array} accessRequestResponse
// @Router /access-requests/inbox [get]
func inboxHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		items, err := svc.Inbox(r.Context(), adminID)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		writeList(w, filterByStatus(items, r.URL.Query().Get("status")), svc.Now())
	}
}

// outboxHandler godoc
// @Summary Pedidos enviados
// @Description Access requests hechos por el admin, más recientes primero.
// @Tags access-requests
// @Produce json
// @Param X-Admin-Id header string true "Requester"
// @Param status query string false "CSV de estados"
// @Success 200 {array} accessRequestResponse
// @Router /access-requests/outbox [get]
func outboxHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		items, err := svc.Outbox(r.Context(), adminID)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		writeList(w, filterByStatus(items, r.URL.Query().Get("status")), svc.Now())
	}
}

// getRequestHandler godoc
// @Summary Ver access request
// @Description Solo owner o requester del pedido.
// @Tags access-requests
// @Produce json
// @Param X-Admin-Id header string true "Owner o requester"
// @Param requestID path int true "ID del access request"
// @Success 200 {object} accessRequestResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /access-requests/{requestID} [get]
func getRequestHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		id, err := requestIDParam(r)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		ar, err := svc.Get(r.Context(), id, adminID)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(ar, svc.Now()))
	}
}

// approveRequestHandler godoc
// @Summary Aprobar access request
// @Description Solo el owner del recurso. Aprobar algo ya decidido no es error: devuelve el estado actual.
// @Tags access-requests
// @Accept json
// @Produce json
// @Param X-Admin-Id header string true "Owner"
// @Param requestID path int true "ID del access request"
// @Param payload body approveAccessRequest false "Minutos del grant (default 15)"
// @Success 200 {object} accessRequestResponse
// @Failure 400 {object} map[string]string "allow_minutes too large"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /access-requests/{requestID}/approve [post]
func approveRequestHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		id, err := requestIDParam(r)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}

		var req approveAccessRequest
		if err := httpjson.DecodeOptionalJSON(r, &req); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}

		ar, err := svc.Approve(r.Context(), id, adminID, req.AllowMinutes)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(ar, svc.Now()))
	}
}

// denyRequestHandler godoc
// @Summary Rechazar access request
// @Tags access-requests
// @Produce json
// @Param X-Admin-Id header string true "Owner"
// @Param requestID path int true "ID del access request"
// @Success 200 {object} accessRequestResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /access-requests/{requestID}/deny [post]
func denyRequestHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		id, err := requestIDParam(r)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		ar, err := svc.Deny(r.Context(), id, adminID)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(ar, svc.Now()))
	}
}

func requestIDParam(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "requestID"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("invalid access request id")
	}
	return id, nil
}

func writeList(w http.ResponseWriter, items []AccessRequest, now time.Time) {
	out := make([]accessRequestResponse, 0, len(items))
	for _, ar := range items {
		out = append(out, toResponse(ar, now))
	}
	httpjson.WriteJSON(w, http.StatusOK, out)
}

func toResponse(ar AccessRequest, now time.Time) accessRequestResponse {
	return accessRequestResponse{
		ID:               ar.ID,
		Resource:         resources.Encode(ar.ResourceType, ar.ResourceID),
		ResourceType:     ar.ResourceType,
		ResourceID:       ar.ResourceID,
		OwnerAdminID:     ar.OwnerAdminID,
		RequesterAdminID: ar.RequesterAdminID,
		Status:           ar.Status,
		Note:             ar.Note,
		RequestedAt:      ar.RequestedAt,
		DecidedAt:        ar.DecidedAt,
		AllowedUntil:     ar.AllowedUntil,
		Active:           ar.IsActive(now),
	}
}

// filterByStatus aplica status=pending,approved (CSV opcional).
func filterByStatus(items []AccessRequest, raw string) []AccessRequest {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return items
	}
	allowed := map[Status]struct{}{}
	for _, p := range strings.Split(raw, ",") {
		s := Status(strings.ToLower(strings.TrimSpace(p)))
		if s == "" {
			continue
		}
		allowed[s] = struct{}{}
	}
	if len(allowed) == 0 {
		return items
	}

	filtered := make([]AccessRequest, 0, len(items))
	for _, ar := range items {
		if _, ok := allowed[ar.Status]; ok {
			filtered = append(filtered, ar)
		}
	}
	return filtered
}
