package auth

import (
	"context"

	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
	"github.com/HubertasVin/pos-1206-sub000/pkg/middleware"
)

// Actor is the authenticated caller of an operation: the staff user and the
// merchant tenant they act for. Every mutating service method is gated on the
// actor's merchant scope.
type Actor struct {
	UserID     string
	MerchantID string
	Role       string
}

// FromContext builds the actor from the claims the auth middleware stored in
// the request context. Returns ErrUnauthorized if no claims are present.
func FromContext(ctx context.Context) (Actor, error) {
	userID := middleware.UserIDFromContext(ctx)
	merchantID := middleware.MerchantIDFromContext(ctx)
	if userID == "" || merchantID == "" {
		return Actor{}, apperrors.Unauthorized("missing authenticated actor")
	}
	return Actor{
		UserID:     userID,
		MerchantID: merchantID,
		Role:       middleware.RoleFromContext(ctx),
	}, nil
}

// CanAccess reports whether the actor's merchant scope covers a resource
// owned by the given merchant.
func (a Actor) CanAccess(merchantID string) bool {
	return a.MerchantID != "" && a.MerchantID == merchantID
}
