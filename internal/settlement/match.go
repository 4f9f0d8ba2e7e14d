package settlement

import (
	"math"
	"sort"
)

// Transfer means From pays To the given Amount
type Transfer struct {
	From   Participant
	To     Participant
	Amount float64
}

// Result is the output of a full calculation
type Result struct {
	Balances  BalanceSheet
	Transfers []Transfer
}

type position struct {
	participant Participant
	amount      float64
}

// Match pairs debtors with creditors, largest first, until one side runs out.
// Equal amounts keep the sheet's participant order and non-finite balances
// are skipped. The result is not guaranteed to be the fewest possible
// transfers, but it never needs more than debtors+creditors-1 of them.
func Match(balances BalanceSheet) []Transfer {
	var creditors, debtors []position
	for _, e := range balances.entries {
		switch {
		case !isFinite(e.Amount):
			// cannot be paid off; Accumulate never produces one
			continue
		case e.Amount > Epsilon:
			creditors = append(creditors, position{participant: e.Participant, amount: e.Amount})
		case e.Amount < -Epsilon:
			debtors = append(debtors, position{participant: e.Participant, amount: -e.Amount})
		}
	}

	sort.SliceStable(creditors, func(a, b int) bool { return creditors[a].amount > creditors[b].amount })
	sort.SliceStable(debtors, func(a, b int) bool { return debtors[a].amount > debtors[b].amount })

	transfers := make([]Transfer, 0, len(debtors)+len(creditors))
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		pay := math.Min(debtors[i].amount, creditors[j].amount)
		transfers = append(transfers, Transfer{
			From:   debtors[i].participant,
			To:     creditors[j].participant,
			Amount: pay,
		})

		debtors[i].amount -= pay
		creditors[j].amount -= pay

		// both sides may close on the same step
		if debtors[i].amount < Epsilon {
			i++
		}
		if creditors[j].amount < Epsilon {
			j++
		}
	}

	return transfers
}

// Calculate runs Accumulate followed by Match
func Calculate(participants []Participant, payments []Payment) (*Result, error) {
	sheet, err := Accumulate(participants, payments)
	if err != nil {
		return nil, err
	}

	return &Result{
		Balances:  sheet,
		Transfers: Match(sheet),
	}, nil
}
