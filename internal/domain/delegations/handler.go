package delegations

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/middleware"
	"hr-portal/internal/platform/httpjson"
	"hr-portal/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/delegations", func(dr chi.Router) {
		dr.Post("/", createDelegationHandler(svc, log))
		dr.Post("/{delegationID}/revoke", revokeDelegationHandler(svc, log))

		dr.Get("/mine", myDelegationsHandler(svc, log))
		dr.Get("/to-me", delegationsToMeHandler(svc, log))
		dr.Get("/delegators", delegatorsHandler(svc, log))
	})
}

type createDelegationRequest struct {
	ToAdminID string `json:"to_admin_id"`
	StartDate string `json:"start_date"` // RFC3339 o YYYY-MM-DD
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

type delegationResponse struct {
	ID          int64           `json:"id"`
	FromAdminID string          `json:"from_admin_id"`
	ToAdminID   string          `json:"to_admin_id"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Status      Status          `json:"status"`
	Effective   EffectiveStatus `json:"effective_status"`
	Reason      string          `json:"reason,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	RevokedAt   *time.Time      `json:"revoked_at,omitempty"`
}

type delegatorsResponse struct {
	AdminID    string   `json:"admin_id"`
	Delegators []string `json:"delegators"`
}

// createDelegationHandler godoc
// @Summary Delegar autoridad
// @Description El admin del header delega en to_admin_id durante [start_date, end_date).
// @Tags delegations
// @Accept json
// @Produce json
// @Param X-Admin-Id header string true "Admin que delega"
// @Param payload body createDelegationRequest true "Delegación"
// @Success 201 {object} delegationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /delegations [post]
func createDelegationHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}

		var req createDelegationRequest
		if err := httpjson.DecodeJSON(r, &req); err != nil {
			httpjson.WriteError(w, log, err)
			return
		}

		start, err := parseDate(req.StartDate, "start_date")
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		end, err := parseDate(req.EndDate, "end_date")
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}

		d, err := svc.Create(r.Context(), CreateInput{
			FromAdminID: adminID,
			ToAdminID:   req.ToAdminID,
			StartDate:   start,
			EndDate:     end,
			Reason:      req.Reason,
		})
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, toResponse(d, svc.Now()))
	}
}

// revokeDelegationHandler godoc
// @Summary Revocar delegación
// @Description Solo quien delegó. Revocar una delegación ya revocada la devuelve sin cambios.
// @Tags delegations
// @Produce json
// @Param X-Admin-Id header string true "Admin que delegó"
// @Param delegationID path int true "ID de la delegación"
// @Success 200 {object} delegationResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /delegations/{delegationID}/revoke [post]
func revokeDelegationHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}

		id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "delegationID")), 10, 64)
		if err != nil || id <= 0 {
			httpjson.WriteError(w, log, apperr.Invalid("invalid delegation id"))
			return
		}

		d, err := svc.Revoke(r.Context(), id, adminID)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, toResponse(d, svc.Now()))
	}
}

// myDelegationsHandler godoc
// @Summary Delegaciones hechas por mí
// @Tags delegations
// @Produce json
// @Param X-Admin-Id header string true "Admin"
// @Success 200 {array} delegationResponse
// @Router /delegations/mine [get]
func myDelegationsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		items, err := svc.MyDelegations(r.Context(), adminID)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		writeList(w, items, svc.Now())
	}
}

// delegationsToMeHandler godoc
// @Summary Delegaciones recibidas
// @Tags delegations
// @Produce json
// @Param X-Admin-Id header string true "Admin"
// @Success 200 {array} delegationResponse
// @Router /delegations/to-me [get]
func delegationsToMeHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		items, err := svc.DelegationsToMe(r.Context(), adminID)
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		writeList(w, items, svc.Now())
	}
}

// delegatorsHandler godoc
// @Summary Admins que hoy delegan en mí
// @Tags delegations
// @Produce json
// @Param X-Admin-Id header string true "Admin"
// @Success 200 {object} delegatorsResponse
// @Router /delegations/delegators [get]
func delegatorsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := middleware.RequireAdmin(w, r)
		if !ok {
			return
		}
		from, err := svc.DelegatorsOf(r.Context(), adminID, svc.Now())
		if err != nil {
			httpjson.WriteError(w, log, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, delegatorsResponse{AdminID: adminID, Delegators: from})
	}
}

func parseDate(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperr.Invalid(field + " required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Invalid(field + " must be RFC3339 or YYYY-MM-DD")
}

func writeList(w http.ResponseWriter, items []Delegation, now time.Time) {
	out := make([]delegationResponse, 0, len(items))
	for _, d := range items {
		out = append(out, toResponse(d, now))
	}
	httpjson.WriteJSON(w, http.StatusOK, out)
}

func toResponse(d Delegation, now time.Time) delegationResponse {
	return delegationResponse{
		ID:          d.ID,
		FromAdminID: d.FromAdminID,
		ToAdminID:   d.ToAdminID,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Status:      d.Status,
		Effective:   d.Effective(now),
		Reason:      d.Reason,
		CreatedAt:   d.CreatedAt,
		RevokedAt:   d.RevokedAt,
	}
}
