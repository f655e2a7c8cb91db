package controllers

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/openclerk/casedesk/modules/core/domain/aggregates/user"
	"github.com/openclerk/casedesk/modules/core/domain/value_objects/internet"
	"github.com/openclerk/casedesk/modules/core/infrastructure/persistence"
	"github.com/openclerk/casedesk/modules/core/services"
	superadminservices "github.com/openclerk/casedesk/modules/superadmin/services"
	"github.com/openclerk/casedesk/pkg/composables"
)

// LoginController is the post-authentication hook. The upstream collaborator
// has already verified the identity; this endpoint provisions the local user
// record and runs the elevation check.
type LoginController struct {
	basePath  string
	users     *services.UserService
	elevation *superadminservices.ElevationService
}

func NewLoginController(users *services.UserService, elevation *superadminservices.ElevationService) *LoginController {
	return &LoginController{
		basePath:  "/auth",
		users:     users,
		elevation: elevation,
	}
}

func (c *LoginController) Key() string {
	return c.basePath
}

func (c *LoginController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/login-complete", c.LoginComplete).Methods(http.MethodPost)
}

type loginCompleteResponse struct {
	SuperAdmin bool `json:"superAdmin"`
}

func (c *LoginController) LoginComplete(w http.ResponseWriter, r *http.Request) {
	identity, ok := composables.UseIdentity(r.Context())
	if !ok {
		writeError(w, r, services.ErrNotAuthenticated)
		return
	}

	if err := c.ensureUser(r.Context(), identity); err != nil {
		writeError(w, r, err)
		return
	}

	// The error branch is discarded deliberately: elevation failures must
	// never surface as a login failure. The service has already logged them.
	elevated, _ := c.elevation.CheckAndElevate(r.Context(), identity.Email, identity.UserID)

	writeJSON(w, http.StatusOK, loginCompleteResponse{SuperAdmin: elevated})
}

// ensureUser provisions the local user record on first login. Authentication
// lives upstream; this row is what memberships and the elevation flag key on.
func (c *LoginController) ensureUser(ctx context.Context, identity composables.Identity) error {
	_, err := c.users.GetByID(ctx, identity.UserID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, persistence.ErrUserNotFound) {
		return err
	}

	email, emailErr := internet.NewEmail(identity.Email)
	if emailErr != nil {
		return services.ErrNotAuthenticated
	}
	// The display name starts out as the address until a profile update.
	_, err = c.users.Create(ctx, user.New(email.Value(), email, user.WithID(identity.UserID)))
	return err
}
