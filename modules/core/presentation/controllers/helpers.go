package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/openclerk/casedesk/modules/core/services"
	"github.com/openclerk/casedesk/pkg/composables"
	"github.com/openclerk/casedesk/pkg/serrors"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps the authorization error taxonomy onto HTTP statuses.
// Expected outcomes pass through with their structured code; anything else is
// logged and rendered as an opaque 500 so internal detail never leaks.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := serrors.Code(err)
	switch code {
	case services.ErrNotAuthenticated.Code:
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: code, Message: services.ErrNotAuthenticated.Message})
	case services.ErrAccessDenied.Code:
		writeJSON(w, http.StatusForbidden, errorResponse{Code: code, Message: services.ErrAccessDenied.Message})
	case services.ErrNoOrganization.Code:
		// Distinct from an error page: the caller redirects to an
		// onboarding-incomplete state.
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Code: code, Message: services.ErrNoOrganization.Message})
	case services.ErrOrganizationInactive.Code:
		writeJSON(w, http.StatusConflict, errorResponse{Code: code, Message: services.ErrOrganizationInactive.Message})
	case services.ErrTenancyNotFound.Code:
		writeJSON(w, http.StatusNotFound, errorResponse{Code: code, Message: services.ErrTenancyNotFound.Message})
	default:
		logger := composables.UseLogger(r.Context()).WithError(err)
		if tctx, ok := composables.UseTenantContext(r.Context()); ok {
			logger = logger.WithField("organization_id", tctx.OrganizationID())
		}
		logger.Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    services.ErrInternalResolution.Code,
			Message: "internal error",
		})
	}
}
