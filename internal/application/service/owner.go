package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sangkips/optica-api/internal/infrastructure/cache"
	infraRepo "github.com/sangkips/optica-api/internal/infrastructure/repository"
	"github.com/sangkips/optica-api/pkg/apperror"
)

var errOwnerRequired = apperror.NewBadRequestError("Owner context required")

// ownerFrom returns the shop owner scoped on ctx
func ownerFrom(ctx context.Context) (uuid.UUID, error) {
	ownerID, ok := infraRepo.GetOwnerID(ctx)
	if !ok {
		return uuid.Nil, errOwnerRequired
	}
	return ownerID, nil
}

func dashboardPrefix(ownerID uuid.UUID) string {
	return "dashboard:" + ownerID.String() + ":"
}

// invalidateDashboard drops the owner's cached stats. Failures are logged only.
func invalidateDashboard(ctx context.Context, c cache.Cache, ownerID uuid.UUID) {
	if c == nil {
		return
	}
	if err := c.DeletePrefix(ctx, dashboardPrefix(ownerID)); err != nil {
		log.Warn().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to invalidate dashboard cache")
	}
}
