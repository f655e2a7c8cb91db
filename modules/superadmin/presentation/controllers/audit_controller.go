package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	coreservices "github.com/openclerk/casedesk/modules/core/services"
	"github.com/openclerk/casedesk/modules/superadmin/services"
	"github.com/openclerk/casedesk/pkg/composables"
	"github.com/openclerk/casedesk/pkg/serrors"
)

// AuditController exposes the elevation audit trail to super admins only.
type AuditController struct {
	basePath string
	guard    *coreservices.AccessGuard
	audit    *services.AuditService
}

func NewAuditController(guard *coreservices.AccessGuard, audit *services.AuditService) *AuditController {
	return &AuditController{
		basePath: "/superadmin",
		guard:    guard,
		audit:    audit,
	}
}

func (c *AuditController) Key() string {
	return c.basePath
}

func (c *AuditController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/audit/{actorId}", c.ListByActor).Methods(http.MethodGet)
}

type auditEntryResponse struct {
	ID         int64           `json:"id"`
	ActorID    *string         `json:"actorId,omitempty"`
	ActorEmail string          `json:"actorEmail"`
	Action     string          `json:"action"`
	TargetID   *string         `json:"targetId,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreatedAt  string          `json:"createdAt"`
}

type auditListResponse struct {
	Entries []auditEntryResponse `json:"entries"`
	Total   int                  `json:"total"`
}

func (c *AuditController) ListByActor(w http.ResponseWriter, r *http.Request) {
	identity, ok := composables.UseIdentity(r.Context())
	if !ok {
		c.writeError(w, r, coreservices.ErrNotAuthenticated)
		return
	}
	if _, err := c.guard.RequireSuperAdmin(r.Context(), identity.UserID); err != nil {
		c.writeError(w, r, err)
		return
	}

	actorID, err := uuid.Parse(mux.Vars(r)["actorId"])
	if err != nil {
		c.writeError(w, r, coreservices.ErrTenancyNotFound)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	entries, total, err := c.audit.ListByActor(r.Context(), actorID, limit, offset)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	out := auditListResponse{
		Entries: make([]auditEntryResponse, 0, len(entries)),
		Total:   total,
	}
	for _, e := range entries {
		entry := auditEntryResponse{
			ID:         e.ID,
			ActorEmail: e.ActorEmail,
			Action:     e.Action,
			Payload:    e.Payload,
			CreatedAt:  e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if e.ActorID != nil {
			s := e.ActorID.String()
			entry.ActorID = &s
		}
		if e.TargetID != nil {
			s := e.TargetID.String()
			entry.TargetID = &s
		}
		out.Entries = append(out.Entries, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (c *AuditController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")
	switch serrors.Code(err) {
	case coreservices.ErrNotAuthenticated.Code:
		w.WriteHeader(http.StatusUnauthorized)
	case coreservices.ErrAccessDenied.Code:
		w.WriteHeader(http.StatusForbidden)
	case coreservices.ErrTenancyNotFound.Code:
		w.WriteHeader(http.StatusNotFound)
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("audit request failed")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": coreservices.ErrInternalResolution.Code, "message": "internal error"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"code": serrors.Code(err), "message": err.Error()})
}
