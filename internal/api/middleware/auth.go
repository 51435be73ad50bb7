package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/repository"
	"github.com/omarhammouda0/task-management-system/internal/service"
	"github.com/omarhammouda0/task-management-system/internal/types"
)

// ActorKey is the gin context key holding the resolved acting user.
const ActorKey = "actor"

// Auth validates the bearer token, resolves the live user record by the token
// subject and gates on account status. Handlers read the actor from the
// context; services never touch the request.
func Auth(tokens *service.TokenService, users repository.UserRepository, logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, apperrors.ErrNotAuthenticated)
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		email, err := tokens.ParseAccessToken(tokenString)
		if err != nil {
			logger.Debugw("access token rejected", "error", err)
			abortUnauthorized(c, err)
			return
		}

		user, err := users.FindByEmail(c.Request.Context(), email)
		if err != nil {
			logger.Errorw("actor lookup failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if user == nil {
			abortUnauthorized(c, apperrors.ErrTokenInvalid)
			return
		}
		if user.Status != types.UserActive {
			logger.Infow("inactive account refused", "userId", user.ID, "status", user.Status)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "account is not active",
				"code":  apperrors.TextCodeAccessDenied,
			})
			return
		}

		c.Set(ActorKey, user)
		c.Next()
	}
}

// Actor returns the acting user stored by the Auth middleware.
func Actor(c *gin.Context) (*repository.User, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*repository.User)
	return user, ok
}

func abortUnauthorized(c *gin.Context, err error) {
	code := apperrors.TextCodeNotAuthenticated
	msg := "authentication required"
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		code = richErr.TextCode
		msg = richErr.Message
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "code": code})
}
