package models

import "errors"

// BidSubmission is one raw row of a notice's bid-opening results.
// Order equals submission rank; index 0 is the top-ranked (winning) bid.
type BidSubmission struct {
	Bidder string  `json:"bidder"` // prcbdrNm
	Amount float64 `json:"amount"` // bidprcAmt
}

// Validate checks that the submission carries a usable amount.
// Bidder names can legitimately be blank in upstream data.
func (b BidSubmission) Validate() error {
	if b.Amount <= 0 {
		return errors.New("bid amount must be positive")
	}
	return nil
}

// BidRecord is a bidder's submission with its reconstructed assessment rate.
// Rate is 0 (the "unknown" sentinel) when the notice's success-rate
// threshold or base price was unavailable.
type BidRecord struct {
	Bidder string  `json:"bidder"`
	Amount float64 `json:"amount"`
	Rate   float64 `json:"rate"`
}
