package bidding

import "errors"

// RejectReason is the closed set of machine-readable rejection codes the API
// layer maps to status codes and messages.
type RejectReason string

const (
	ReasonNotActive      RejectReason = "not_active"
	ReasonEnded          RejectReason = "ended"
	ReasonInvalidAmount  RejectReason = "invalid_amount"
	ReasonTooLow         RejectReason = "too_low"
	ReasonBelowIncrement RejectReason = "below_increment"
	ReasonRateLimited    RejectReason = "rate_limited"
)

// BidRejectedError is a recoverable validation outcome, surfaced verbatim to
// the caller and never logged as a system fault.
type BidRejectedError struct {
	Reason RejectReason
	Detail string
}

func (e *BidRejectedError) Error() string { return e.Detail }

// Is matches any rejection with the same reason, so errors.Is works against
// the sentinel values below.
func (e *BidRejectedError) Is(target error) bool {
	t, ok := target.(*BidRejectedError)
	return ok && t.Reason == e.Reason
}

var (
	ErrItemNotActive     = &BidRejectedError{ReasonNotActive, "auction is not active"}
	ErrAuctionEnded      = &BidRejectedError{ReasonEnded, "auction has ended"}
	ErrInvalidAmount     = &BidRejectedError{ReasonInvalidAmount, "invalid bid amount"}
	ErrBidTooLow         = &BidRejectedError{ReasonTooLow, "bid must be higher than current price"}
	ErrBidBelowIncrement = &BidRejectedError{ReasonBelowIncrement, "bid below minimum increment"}
	ErrRateLimited       = &BidRejectedError{ReasonRateLimited, "too many bid attempts, try again later"}
)

var ErrItemNotFound = errors.New("item not found")
