package availability

import (
	"testing"

	"github.com/restovia/table-reservation/internal/model"
)

func TestEvaluateDeposit(t *testing.T) {
	perPerson := model.DepositPolicy{
		Enabled: true, ThresholdParty: 6, AmountType: model.DepositPerPerson,
		AmountCents: 1000, Currency: "EUR",
	}
	flat := model.DepositPolicy{
		Enabled: true, ThresholdParty: 8, AmountType: model.DepositFlat,
		AmountCents: 5000, Currency: "EUR",
	}

	tests := []struct {
		name      string
		pol       model.DepositPolicy
		partySize int
		want      DepositQuote
	}{
		{"disabled policy", model.DepositPolicy{}, 10, DepositQuote{}},
		{"below threshold", perPerson, 5, DepositQuote{}},
		{"at threshold per person", perPerson, 6, DepositQuote{Required: true, AmountCents: 6000, Currency: "EUR"}},
		{"above threshold per person", perPerson, 9, DepositQuote{Required: true, AmountCents: 9000, Currency: "EUR"}},
		{"flat amount independent of size", flat, 12, DepositQuote{Required: true, AmountCents: 5000, Currency: "EUR"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateDeposit(tt.pol, tt.partySize); got != tt.want {
				t.Errorf("EvaluateDeposit(%d) = %+v, want %+v", tt.partySize, got, tt.want)
			}
		})
	}
}

// Per-person deposits must never shrink as the party grows.
func TestEvaluateDepositMonotonic(t *testing.T) {
	pol := model.DepositPolicy{
		Enabled: true, ThresholdParty: 4, AmountType: model.DepositPerPerson,
		AmountCents: 750, Currency: "EUR",
	}
	prev := uint32(0)
	for p := 1; p <= 20; p++ {
		q := EvaluateDeposit(pol, p)
		if q.AmountCents < prev {
			t.Fatalf("amount for party %d dropped to %d from %d", p, q.AmountCents, prev)
		}
		prev = q.AmountCents
	}
}
