package bidhandler

import (
	"errors"
	"net/http"

	"auctionhouse/internal/http/middleware"
	"auctionhouse/internal/services/auth"
	"auctionhouse/internal/services/bidding"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	engine  bidding.IBiddingEngine
	authSvc auth.IAuthService
}

func New(engine bidding.IBiddingEngine, authSvc auth.IAuthService) *Handler {
	return &Handler{engine: engine, authSvc: authSvc}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/items", h.list)
	r.GET("/items/:id", h.info)
	r.GET("/items/:id/bids", h.history)
	r.GET("/items/:id/bids/highest", h.highest)
	r.POST("/items/:id/bids", middleware.AuthRequired(h.authSvc), h.placeBid)
}

// @Summary		List items
// @Description	Retrieves a paginated list of auction items, optionally filtered by category; show_past switches to ended auctions.
// @Tags			Items
// @Param			category	query		string	false	"Category code filter"
// @Param			show_past	query		bool	false	"Show ended auctions"	default(false)
// @Param			limit		query		int		false	"Max results (0-100)"	minimum(0)	maximum(100)	default(10)
// @Param			offset		query		int		false	"Offset for pagination"	minimum(0)	default(0)
// @Success		200			{array}		models.Item
// @Failure		400			{object}	ErrorResponse
// @Router			/items [get]
func (h *Handler) list(c *gin.Context) {
	var q ListItemsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	items, err := h.engine.ListItems(c.Request.Context(), q.Category, q.ShowPast, q.Limit, q.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary		Get item details
// @Tags			Items
// @Param			id	path		string	true	"Item ID"
// @Success		200	{object}	models.Item
// @Failure		404	{object}	ErrorResponse
// @Router			/items/{id} [get]
func (h *Handler) info(c *gin.Context) {
	item, err := h.engine.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, bidding.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// @Summary		Bid history
// @Description	Returns every bid for the item in chronological order.
// @Tags			Bids
// @Param			id	path		string	true	"Item ID"
// @Success		200	{array}		models.Bid
// @Router			/items/{id}/bids [get]
func (h *Handler) history(c *gin.Context) {
	bids, err := h.engine.GetBidHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, bids)
}

// @Summary		Current highest bid
// @Tags			Bids
// @Param			id	path		string	true	"Item ID"
// @Success		200	{object}	models.Bid
// @Failure		404	{object}	ErrorResponse
// @Router			/items/{id}/bids/highest [get]
func (h *Handler) highest(c *gin.Context) {
	bid, err := h.engine.GetHighestBid(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if bid == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no bids yet"})
		return
	}
	c.JSON(http.StatusOK, bid)
}

// @Summary		Place a bid
// @Description	Places a bid on an item; rejections carry a stable machine-readable reason code.
// @Tags			Bids
// @Param			id		path	string			true	"Item ID"
// @Param			body	body	PlaceBidBody	true	"Bid payload"
// @Success		201	{object}	BidResponse
// @Failure		400	{object}	ErrorResponse
// @Failure		404	{object}	ErrorResponse
// @Failure		429	{object}	ErrorResponse
// @Router			/items/{id}/bids [post]
func (h *Handler) placeBid(c *gin.Context) {
	var body PlaceBidBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "invalid bid amount",
			Reason: string(bidding.ReasonInvalidAmount),
		})
		return
	}

	user := middleware.CurrentUser(c)
	result, err := h.engine.PlaceBid(c.Request.Context(),
		c.Param("id"), user.ID, c.ClientIP(), body.Amount)
	if err != nil {
		if errors.Is(err, bidding.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := BidResponse{
		Accepted:     result.Accepted,
		Reason:       result.Reason,
		CurrentPrice: result.CurrentPrice.StringFixed(2),
		Bid:          result.Bid,
	}
	switch {
	case result.Accepted:
		c.JSON(http.StatusCreated, resp)
	case result.Reason == bidding.ReasonRateLimited:
		c.Header("Retry-After", "60")
		c.JSON(http.StatusTooManyRequests, resp)
	default:
		c.JSON(http.StatusBadRequest, resp)
	}
}
