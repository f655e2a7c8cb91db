package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/openclerk/casedesk/modules/core/domain/entities/organization"
	"github.com/openclerk/casedesk/modules/core/permissions"
	"github.com/openclerk/casedesk/modules/core/services"
	"github.com/openclerk/casedesk/pkg/composables"
)

// OrganizationsController is the administrative surface for the tenant
// forest. Every handler passes through the access guard before effecting
// anything.
type OrganizationsController struct {
	basePath      string
	guard         *services.AccessGuard
	organizations *services.OrganizationService
}

func NewOrganizationsController(guard *services.AccessGuard, organizations *services.OrganizationService) *OrganizationsController {
	return &OrganizationsController{
		basePath:      "/organizations",
		guard:         guard,
		organizations: organizations,
	}
}

func (c *OrganizationsController) Key() string {
	return c.basePath
}

func (c *OrganizationsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}/deactivate", c.Deactivate).Methods(http.MethodPost)
	router.HandleFunc("/{id}/activate", c.Activate).Methods(http.MethodPost)
}

type organizationResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Code      string  `json:"code"`
	Type      string  `json:"type"`
	ParentID  *string `json:"parentId,omitempty"`
	IsActive  bool    `json:"isActive"`
	CreatedAt string  `json:"createdAt"`
}

func toOrganizationResponse(o *organization.Organization) organizationResponse {
	resp := organizationResponse{
		ID:        o.ID().String(),
		Name:      o.Name(),
		Code:      o.Code(),
		Type:      string(o.Type()),
		IsActive:  o.IsActive(),
		CreatedAt: o.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}
	if parentID := o.ParentID(); parentID != nil {
		s := parentID.String()
		resp.ParentID = &s
	}
	return resp
}

// requireManage runs the guard and, on success, returns the request with the
// resolved tenant context attached for the handler's downstream calls.
func (c *OrganizationsController) requireManage(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	identity, ok := composables.UseIdentity(r.Context())
	if !ok {
		writeError(w, r, services.ErrNotAuthenticated)
		return r, false
	}
	tctx, err := c.guard.RequirePermission(r.Context(), identity.UserID, permissions.OrganizationsManage)
	if err != nil {
		writeError(w, r, err)
		return r, false
	}
	return r.WithContext(composables.WithTenantContext(r.Context(), tctx)), true
}

func (c *OrganizationsController) List(w http.ResponseWriter, r *http.Request) {
	r, ok := c.requireManage(w, r)
	if !ok {
		return
	}
	organizations, err := c.organizations.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]organizationResponse, 0, len(organizations))
	for _, o := range organizations {
		out = append(out, toOrganizationResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

type createOrganizationRequest struct {
	Name     string  `json:"name"`
	Code     string  `json:"code"`
	Type     string  `json:"type"`
	ParentID *string `json:"parentId"`
}

func (c *OrganizationsController) Create(w http.ResponseWriter, r *http.Request) {
	r, ok := c.requireManage(w, r)
	if !ok {
		return
	}

	var req createOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "invalid request body"})
		return
	}

	opts := []organization.Option{
		organization.WithCode(req.Code),
	}
	if req.Type != "" {
		opts = append(opts, organization.WithType(organization.Type(req.Type)))
	}
	if req.ParentID != nil {
		parentID, err := uuid.Parse(*req.ParentID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "invalid parent id"})
			return
		}
		opts = append(opts, organization.WithParentID(&parentID))
	}

	created, err := c.organizations.Create(r.Context(), organization.New(req.Name, opts...))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrganizationResponse(created))
}

func (c *OrganizationsController) Deactivate(w http.ResponseWriter, r *http.Request) {
	c.setActive(w, r, false)
}

func (c *OrganizationsController) Activate(w http.ResponseWriter, r *http.Request) {
	c.setActive(w, r, true)
}

func (c *OrganizationsController) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	r, ok := c.requireManage(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, services.ErrTenancyNotFound)
		return
	}

	var updated *organization.Organization
	if active {
		updated, err = c.organizations.Activate(r.Context(), id)
	} else {
		updated, err = c.organizations.Deactivate(r.Context(), id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrganizationResponse(updated))
}
