package authhandler

import (
	"errors"
	"net/http"

	"auctionhouse/internal/services/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc auth.IAuthService
}

func New(svc auth.IAuthService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/auth/login", h.login)
}

type LoginBody struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
} // @name LoginRequest

type LoginResponse struct {
	Token string `json:"token"`
} // @name LoginResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name AuthErrorResponse

// @Summary		Log in
// @Description	Verifies credentials and returns a bearer token. Failed attempts per email+origin are rate limited.
// @Tags			Auth
// @Param			body	body	LoginBody	true	"Credentials"
// @Success		200	{object}	LoginResponse
// @Failure		401	{object}	ErrorResponse
// @Failure		429	{object}	ErrorResponse
// @Router			/auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var body LoginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	token, _, err := h.svc.Login(c.Request.Context(), body.Email, body.Password, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTooManyAttempts):
			c.Header("Retry-After", "900")
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: err.Error()})
		case errors.Is(err, auth.ErrEmailNotVerified):
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "please verify your email before logging in"})
		case errors.Is(err, auth.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Token: token})
}
