package adminhandler

import (
	"errors"
	"net/http"

	"auctionhouse/internal/http/middleware"
	"auctionhouse/internal/services/auth"
	"auctionhouse/internal/services/winner"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	resolver *winner.Resolver
	authSvc  auth.IAuthService
}

func New(resolver *winner.Resolver, authSvc auth.IAuthService) *Handler {
	return &Handler{resolver: resolver, authSvc: authSvc}
}

func (h *Handler) Register(r *gin.Engine) {
	admin := r.Group("/admin", middleware.AuthRequired(h.authSvc), middleware.AdminRequired())
	admin.POST("/items/:id/resolve", h.resolve)
	admin.POST("/winners", h.override)
	admin.POST("/winners/contact", h.contact)
	admin.GET("/winners/recent", h.recent)
	admin.GET("/winners/ids", h.winnerIDs)
	admin.GET("/users/:id/won", h.wonItems)
}

type OverrideWinnerBody struct {
	ItemID string `json:"item_id" binding:"required"`
	UserID string `json:"user_id" binding:"required"`
} // @name OverrideWinnerRequest

type ContactWinnersBody struct {
	ItemIDs []string `json:"item_ids" binding:"required,min=1"`
} // @name ContactWinnersRequest

type ErrorResponse struct {
	Error string `json:"error"`
} // @name AdminErrorResponse

// @Summary		Resolve an auction winner
// @Description	Assigns the highest bidder as winner of a closed auction.
// @Tags			Admin
// @Param			id	path	string	true	"Item ID"
// @Success		200	{object}	gin.H
// @Failure		404	{object}	ErrorResponse
// @Failure		409	{object}	ErrorResponse
// @Router			/admin/items/{id}/resolve [post]
func (h *Handler) resolve(c *gin.Context) {
	winnerID, err := h.resolver.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"winner_id": winnerID, "sold": winnerID != ""})
}

// @Summary		Override a winner
// @Description	Assigns an admin-chosen winner to a closed auction, bypassing the highest-bid rule.
// @Tags			Admin
// @Param			body	body	OverrideWinnerBody	true	"Override payload"
// @Success		200
// @Failure		404	{object}	ErrorResponse
// @Failure		409	{object}	ErrorResponse
// @Router			/admin/winners [post]
func (h *Handler) override(c *gin.Context) {
	var body OverrideWinnerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.resolver.Override(c.Request.Context(), body.ItemID, body.UserID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// @Summary		Contact winners
// @Description	Notifies winners of the given items; idempotent per item.
// @Tags			Admin
// @Param			body	body	ContactWinnersBody	true	"Item IDs"
// @Success		200	{object}	gin.H
// @Router			/admin/winners/contact [post]
func (h *Handler) contact(c *gin.Context) {
	var body ContactWinnersBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	sender := middleware.CurrentUser(c)
	contacted, err := h.resolver.ContactWinners(c.Request.Context(), body.ItemIDs, sender.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacted": contacted})
}

// @Summary		Recent winners
// @Tags			Admin
// @Success		200	{array}	models.Item
// @Router			/admin/winners/recent [get]
func (h *Handler) recent(c *gin.Context) {
	items, err := h.resolver.RecentWinners(c.Request.Context(), 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary		Winning user IDs
// @Tags			Admin
// @Success		200	{object}	gin.H
// @Router			/admin/winners/ids [get]
func (h *Handler) winnerIDs(c *gin.Context) {
	ids, err := h.resolver.WinnerIDs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ids": ids})
}

// @Summary		Items won by a user
// @Tags			Admin
// @Param			id	path	string	true	"User ID"
// @Success		200	{object}	gin.H
// @Router			/admin/users/{id}/won [get]
func (h *Handler) wonItems(c *gin.Context) {
	items, err := h.resolver.WonItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": c.Param("id"), "items": items})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, winner.ErrItemNotFound), errors.Is(err, winner.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, winner.ErrAuctionStillOpen):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
