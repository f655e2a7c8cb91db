package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/openclerk/casedesk/modules/core/services"
	"github.com/openclerk/casedesk/pkg/composables"
)

type TenancyController struct {
	basePath string
	tenancy  *services.TenancyService
}

func NewTenancyController(tenancy *services.TenancyService) *TenancyController {
	return &TenancyController{
		basePath: "/tenancy",
		tenancy:  tenancy,
	}
}

func (c *TenancyController) Key() string {
	return c.basePath
}

func (c *TenancyController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/context", c.Context).Methods(http.MethodGet)
	router.HandleFunc("/switch", c.Switch).Methods(http.MethodPost)
}

type tenantContextResponse struct {
	UserID               string   `json:"userId"`
	OrganizationID       string   `json:"organizationId,omitempty"`
	Role                 string   `json:"role,omitempty"`
	EffectivePermissions []string `json:"effectivePermissions"`
	SuperAdmin           bool     `json:"superAdmin"`
}

// Context resolves and returns the fresh tenant context for the caller.
func (c *TenancyController) Context(w http.ResponseWriter, r *http.Request) {
	identity, ok := composables.UseIdentity(r.Context())
	if !ok {
		writeError(w, r, services.ErrNotAuthenticated)
		return
	}

	tctx, err := c.tenancy.Resolve(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := tenantContextResponse{
		UserID:     tctx.UserID().String(),
		SuperAdmin: tctx.IsSuperAdmin(),
	}
	if tctx.OrganizationID() != uuid.Nil {
		resp.OrganizationID = tctx.OrganizationID().String()
	}
	if tctx.Role() != nil {
		resp.Role = tctx.Role().Name()
	}
	perms := tctx.EffectivePermissions()
	resp.EffectivePermissions = make([]string, 0, len(perms))
	for _, p := range perms {
		resp.EffectivePermissions = append(resp.EffectivePermissions, p.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

type switchRequest struct {
	OrganizationID string `json:"organizationId"`
}

type switchResponse struct {
	OrganizationID string `json:"organizationId"`
}

// Switch changes the caller's active organization.
func (c *TenancyController) Switch(w http.ResponseWriter, r *http.Request) {
	identity, ok := composables.UseIdentity(r.Context())
	if !ok {
		writeError(w, r, services.ErrNotAuthenticated)
		return
	}

	var req switchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "invalid request body"})
		return
	}
	targetID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		// A malformed id cannot be a membership; same outcome as probing an
		// arbitrary organization.
		writeError(w, r, services.ErrAccessDenied)
		return
	}

	orgID, err := c.tenancy.SwitchActiveOrganization(r.Context(), identity.UserID, targetID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, switchResponse{OrganizationID: orgID.String()})
}
