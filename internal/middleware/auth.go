package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/coursemarket/internal/entity"
	userRepo "anoa.com/coursemarket/internal/modules/user/repository"
	"anoa.com/coursemarket/internal/policy"
	"anoa.com/coursemarket/pkg/apperror"
	"anoa.com/coursemarket/pkg/response"
	"anoa.com/coursemarket/pkg/token"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const userContextKey = "user"

var ErrAuthRequired = fmt.Errorf("authorization required: %w", apperror.ErrUnauthorized)

type AuthMiddleware struct {
	userRepo   userRepo.UserRepository
	tokens     *token.Manager
	cookieName string
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, tokens *token.Manager, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo:   userRepo,
		tokens:     tokens,
		cookieName: cookieName,
	}
}

// Authenticate resolves the caller from the Authorization header or session cookie.
// The role always comes from the store, never from the token.
func (m *AuthMiddleware) Authenticate(c *gin.Context) (*entity.User, error) {
	tokenString, err := token.FromRequest(c.Request, m.cookieName)
	if err != nil {
		return nil, ErrAuthRequired
	}
	return m.resolve(c, tokenString)
}

func (m *AuthMiddleware) resolve(c *gin.Context, tokenString string) (*entity.User, error) {
	claims, err := m.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, token.ErrInvalidToken
	}

	user, err := m.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user no longer exists: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}
	return user, nil
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.Authenticate(c)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// RequireAuthOrQueryToken additionally accepts ?token= for websocket upgrades, which cannot set headers.
func (m *AuthMiddleware) RequireAuthOrQueryToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.Authenticate(c)
		if errors.Is(err, ErrAuthRequired) && c.Query("token") != "" {
			user, err = m.resolve(c, c.Query("token"))
		}
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth continues anonymously when no valid credentials are present.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.Authenticate(c)
		if err != nil {
			if !errors.Is(err, apperror.ErrUnauthorized) {
				response.ResponseError(c, err)
				return
			}
			c.Next()
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// RequireRoles must run after RequireAuth.
func (m *AuthMiddleware) RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.EnsureRole(CurrentUser(c), roles...); err != nil {
			response.ResponseError(c, err)
			return
		}
		c.Next()
	}
}

func setUser(c *gin.Context, user *entity.User) {
	c.Set(userContextKey, user)
	c.Set("user_id", user.ID.String())
}

// CurrentUser returns the authenticated user or nil for anonymous requests.
func CurrentUser(c *gin.Context) *entity.User {
	v, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	user, _ := v.(*entity.User)
	return user
}

// MustCurrentUser aborts with 401 when the request is anonymous.
func MustCurrentUser(c *gin.Context) (*entity.User, bool) {
	user := CurrentUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
		return nil, false
	}
	return user, true
}
