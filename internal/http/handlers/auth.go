package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/searchhub/searchhub/internal/auth"
	"github.com/searchhub/searchhub/internal/config"
	"github.com/searchhub/searchhub/internal/domain/user"
	"github.com/searchhub/searchhub/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type TokenIssuer interface {
	Issue(email, name, role string) (string, error)
}

type AuthHandler struct {
	users UserReader
	jwt   TokenIssuer
}

func NewAuthHandler(users UserReader, jwt TokenIssuer) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwt,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	u, ok := h.authenticate(ctx)
	if !ok {
		return
	}

	token, err := h.jwt.Issue(u.Email, u.Name, u.Role)
	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"email": u.Email,
			"name":  u.Name,
		},
	})
}

// AdminLogin is a separate endpoint rather than a role switch on Login: a
// valid user credential presented here is still rejected unless the stored
// role is admin.
func (h *AuthHandler) AdminLogin(ctx *gin.Context) {
	u, ok := h.authenticate(ctx)
	if !ok {
		return
	}

	if u.Role != auth.RoleAdmin {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	token, err := h.jwt.Issue(u.Email, u.Name, u.Role)
	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"email": u.Email,
			"name":  u.Name,
			"role":  u.Role,
		},
	})
}

func (h *AuthHandler) authenticate(ctx *gin.Context) (user.User, bool) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return user.User{}, false
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return user.User{}, false
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)
	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return user.User{}, false
	}

	return foundUser, true
}
