package bidhandler

import (
	"github.com/shopspring/decimal"

	"auctionhouse/internal/models"
	"auctionhouse/internal/services/bidding"
)

type PlaceBidBody struct {
	Amount decimal.Decimal `json:"amount" binding:"required" example:"5"`
} // @name PlaceBidRequest

type BidResponse struct {
	Accepted     bool                 `json:"accepted"`
	Reason       bidding.RejectReason `json:"reason,omitempty"`
	CurrentPrice string               `json:"current_price"`
	Bid          *models.Bid          `json:"bid,omitempty"`
} // @name BidResponse

type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
} // @name ErrorResponse

type ListItemsQuery struct {
	Category string `form:"category"`
	ShowPast bool   `form:"show_past,default=false"`
	Limit    int    `form:"limit,default=10"  binding:"gte=0,lte=100"`
	Offset   int    `form:"offset,default=0"  binding:"gte=0"`
} // @name ListItemsQuery
