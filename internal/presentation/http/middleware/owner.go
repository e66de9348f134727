package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/optica-api/internal/domain/entity"
	infraRepo "github.com/sangkips/optica-api/internal/infrastructure/repository"
	"github.com/sangkips/optica-api/internal/presentation/http/dto/response"
	"github.com/sangkips/optica-api/pkg/apperror"
)

// AccessChecker reports whether a user's subscription lets them in
type AccessChecker interface {
	IsActive(ctx context.Context, userID uuid.UUID) (bool, error)
}

func currentUserID(c *gin.Context) uuid.UUID {
	v, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil
	}
	id, _ := v.(uuid.UUID)
	return id
}

// OwnerMiddleware scopes the request context to the authenticated user's shop
func OwnerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		if userID == uuid.Nil {
			response.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		ctx := infraRepo.WithOwner(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// SubscriptionGuard rejects owners whose subscription is no longer active.
// Super admins pass through.
func SubscriptionGuard(checker AccessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if roles, ok := c.Get("user_roles"); ok {
			if list, _ := roles.([]string); contains(list, entity.RoleSuperAdmin) {
				c.Next()
				return
			}
		}

		userID := currentUserID(c)
		if userID == uuid.Nil {
			response.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		active, err := checker.IsActive(c.Request.Context(), userID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("Subscription check failed")
			response.Error(c, err)
			c.Abort()
			return
		}
		if !active {
			response.Error(c, apperror.ErrSubscriptionExpired)
			c.Abort()
			return
		}

		c.Next()
	}
}
