package availability

import "github.com/restovia/table-reservation/internal/model"

// DepositQuote is the outcome of evaluating a restaurant's deposit policy
// for a party size.  Deposits are informational; nothing is charged here.
type DepositQuote struct {
	Required    bool   `json:"required"`
	AmountCents uint32 `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// EvaluateDeposit derives whether a deposit is required and its amount.  A
// deposit applies iff the policy is enabled and the party meets the
// threshold; PER_PERSON multiplies the configured amount by the party size,
// FLAT returns it unchanged.  Orthogonal to slot availability — the two meet
// only when a reservation is materialized.
func EvaluateDeposit(pol model.DepositPolicy, partySize int) DepositQuote {
	if !pol.Enabled || partySize < pol.ThresholdParty {
		return DepositQuote{}
	}
	amount := pol.AmountCents
	if pol.AmountType == model.DepositPerPerson {
		amount = pol.AmountCents * uint32(partySize)
	}
	return DepositQuote{Required: true, AmountCents: amount, Currency: pol.Currency}
}
