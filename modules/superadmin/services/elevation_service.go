package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/openclerk/casedesk/modules/core/domain/aggregates/user"
	"github.com/openclerk/casedesk/pkg/composables"
	"github.com/openclerk/casedesk/pkg/eventbus"
)

const elevationAuditAction = "superadmin.elevated"

// ElevationService runs once per successful login and grants the durable
// super-admin flag to identities on the allow-list. The allow-list is
// injected at construction (loaded from configuration at startup), never read
// from the environment inside business logic.
type ElevationService struct {
	users     user.Repository
	audit     *AuditService
	publisher eventbus.EventBus
	allowed   map[string]struct{}
}

func NewElevationService(
	users user.Repository,
	audit *AuditService,
	publisher eventbus.EventBus,
	allowedEmails []string,
) *ElevationService {
	allowed := make(map[string]struct{}, len(allowedEmails))
	for _, email := range allowedEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		allowed[email] = struct{}{}
	}
	return &ElevationService{
		users:     users,
		audit:     audit,
		publisher: publisher,
		allowed:   allowed,
	}
}

// CheckAndElevate reports whether the identity is (now) a super admin. The
// caller is the login flow: it must pattern-match the result and discard the
// error branch, because an internal failure here must never block a login.
//
// The error contract is deliberately asymmetric: fail open for the login flow
// (errors are logged and reported as "no elevation performed"), fail closed
// for the elevation decision itself (an ambiguous or errored lookup never
// grants admin). Do not "fix" this into a login-blocking behavior.
func (s *ElevationService) CheckAndElevate(ctx context.Context, email string, userID uuid.UUID) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if _, ok := s.allowed[normalized]; !ok {
		return false, nil
	}

	elevated := false
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		// The UPDATE is guarded by "AND is_super_admin = false", so two tabs
		// completing a magic-link flow near-simultaneously race safely: the
		// second writer observes zero rows affected and only touches the
		// login timestamp.
		flipped, err := s.users.Elevate(txCtx, userID, "granted via allow-list at login")
		if err != nil {
			return errors.Wrap(err, "failed to elevate user")
		}
		if !flipped {
			if err := s.users.TouchLastLogin(txCtx, userID); err != nil {
				return errors.Wrap(err, "failed to touch last login")
			}
			return nil
		}

		elevated = true
		targetID := userID
		if err := s.audit.Log(txCtx, elevationAuditAction, &targetID, map[string]string{
			"email": normalized,
		}); err != nil {
			return errors.Wrap(err, "failed to write elevation audit log")
		}
		return nil
	})
	if err != nil {
		composables.UseLogger(ctx).
			WithError(err).
			WithField("user_id", userID).
			Error("elevation check failed; continuing login without elevation")
		return false, err
	}

	if elevated {
		if u, err := s.users.GetByID(ctx, userID); err == nil {
			grantedAt := time.Now()
			if at := u.SuperAdminGrantedAt(); at != nil {
				grantedAt = *at
			}
			s.publisher.Publish(user.NewElevatedEvent(ctx, u, grantedAt))
		}
	}

	// Allow-listed users are super admins after this point whether the flip
	// happened in this call or an earlier one.
	return true, nil
}
