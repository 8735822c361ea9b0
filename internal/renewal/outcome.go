package renewal

import "time"

// Result is the terminal state a processed subscription reaches.
type Result string

const (
	// ResultRenewed means payment confirmed and dates advanced in place.
	ResultRenewed Result = "renewed"
	// ResultDeleted means the subscription record was removed.
	ResultDeleted Result = "deleted"
)

// FailureReason classifies why a subscription was deleted.
type FailureReason string

const (
	// ReasonMissingData: plan, subscriber or author could not be loaded.
	ReasonMissingData FailureReason = "missing_data"
	// ReasonMissingWallet: subscriber or author has no usable custodial wallet.
	ReasonMissingWallet FailureReason = "missing_wallet"
	// ReasonInsufficientBalance: the subscriber cannot cover the plan price.
	ReasonInsufficientBalance FailureReason = "insufficient_balance"
	// ReasonChainError: submission or confirmation failed.
	ReasonChainError FailureReason = "chain_error"
)

// Outcome records the single terminal action taken for one subscription in
// one tick. Exactly one of the renewed or deleted halves is populated.
type Outcome struct {
	SubscriptionID string
	Result         Result

	// Populated when Result is ResultRenewed.
	TxHash     string
	NewEndDate time.Time

	// Populated when Result is ResultDeleted.
	Reason FailureReason
	Err    error
}

// Summary aggregates a tick. The tick itself never fails: every per-item
// error is captured here instead of escaping.
type Summary struct {
	Processed int       `json:"processed"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Outcomes  []Outcome `json:"-"`
}
