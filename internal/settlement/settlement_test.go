package settlement

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_SinglePayerSplitAmongAll(t *testing.T) {
	result, err := Calculate(
		[]Participant{"A", "B", "C"},
		[]Payment{{Payer: "A", Beneficiaries: []Participant{"A", "B", "C"}, Amount: 30}},
	)
	require.NoError(t, err)

	assert.Equal(t, map[Participant]float64{"A": 20, "B": -10, "C": -10}, result.Balances.Map())
	assert.Equal(t, []Transfer{
		{From: "B", To: "A", Amount: 10},
		{From: "C", To: "A", Amount: 10},
	}, result.Transfers)
}

func TestCalculate_MutualPaymentsCancelOut(t *testing.T) {
	result, err := Calculate(
		[]Participant{"A", "B"},
		[]Payment{
			{Payer: "A", Beneficiaries: []Participant{"A", "B"}, Amount: 10},
			{Payer: "B", Beneficiaries: []Participant{"A", "B"}, Amount: 10},
		},
	)
	require.NoError(t, err)

	assert.Equal(t, map[Participant]float64{"A": 0, "B": 0}, result.Balances.Map())
	assert.NotNil(t, result.Transfers)
	assert.Empty(t, result.Transfers)
}

func TestCalculate_PayerNotAmongBeneficiaries(t *testing.T) {
	result, err := Calculate(
		[]Participant{"A", "B", "C", "D"},
		[]Payment{{Payer: "A", Beneficiaries: []Participant{"B", "C", "D"}, Amount: 90}},
	)
	require.NoError(t, err)

	assert.Equal(t, []Balance{
		{Participant: "A", Amount: 90},
		{Participant: "B", Amount: -30},
		{Participant: "C", Amount: -30},
		{Participant: "D", Amount: -30},
	}, result.Balances.Entries())
	assert.Equal(t, []Transfer{
		{From: "B", To: "A", Amount: 30},
		{From: "C", To: "A", Amount: 30},
		{From: "D", To: "A", Amount: 30},
	}, result.Transfers)
}

func TestCalculate_SubEpsilonPaymentIsSettled(t *testing.T) {
	result, err := Calculate(
		[]Participant{"A", "B"},
		[]Payment{{Payer: "A", Beneficiaries: []Participant{"A", "B"}, Amount: 0.0000001}},
	)
	require.NoError(t, err)

	a, _ := result.Balances.Get("A")
	b, _ := result.Balances.Get("B")
	assert.Less(t, math.Abs(a), Epsilon)
	assert.Less(t, math.Abs(b), Epsilon)
	assert.Empty(t, result.Transfers)
}

func TestCalculate_EveryoneSettledWhenPaymentsBalance(t *testing.T) {
	people := []Participant{"Amy", "Ben", "Cat"}
	var payments []Payment
	for _, payer := range people {
		payments = append(payments, Payment{Payer: payer, Beneficiaries: people, Amount: 45})
	}

	result, err := Calculate(people, payments)
	require.NoError(t, err)
	assert.Empty(t, result.Transfers)
}

func TestAccumulate_ThirdsKeepZeroSum(t *testing.T) {
	sheet, err := Accumulate(
		[]Participant{"A", "B", "C"},
		[]Payment{
			{Payer: "A", Beneficiaries: []Participant{"A", "B", "C"}, Amount: 10},
			{Payer: "B", Beneficiaries: []Participant{"A", "C"}, Amount: 7},
		},
	)
	require.NoError(t, err)

	a, _ := sheet.Get("A")
	b, _ := sheet.Get("B")
	c, _ := sheet.Get("C")
	assert.InDelta(t, 10-10.0/3-3.5, a, 1e-9)
	assert.InDelta(t, 7-10.0/3, b, 1e-9)
	assert.InDelta(t, -10.0/3-3.5, c, 1e-9)
	assert.InDelta(t, 0, sheet.Total(), Epsilon)
}

func TestAccumulate_DoesNotMutateInput(t *testing.T) {
	people := []Participant{"A", "B"}
	beneficiaries := []Participant{"B", "A"}
	payments := []Payment{{Payer: "A", Beneficiaries: beneficiaries, Amount: 12}}

	_, err := Accumulate(people, payments)
	require.NoError(t, err)

	assert.Equal(t, []Participant{"A", "B"}, people)
	assert.Equal(t, []Participant{"B", "A"}, payments[0].Beneficiaries)
	assert.Equal(t, 12.0, payments[0].Amount)
}

func TestAccumulate_NoPaymentsGivesZeroBalances(t *testing.T) {
	sheet, err := Accumulate([]Participant{"A", "B"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, sheet.Len())
	assert.Equal(t, map[Participant]float64{"A": 0, "B": 0}, sheet.Map())
}

func TestAccumulate_PreconditionViolations(t *testing.T) {
	tests := []struct {
		name         string
		participants []Participant
		payments     []Payment
		want         error
	}{
		{
			name:         "no participants",
			participants: nil,
			want:         ErrNoParticipants,
		},
		{
			name:         "duplicate participant",
			participants: []Participant{"A", "B", "A"},
			want:         ErrDuplicateParticipant,
		},
		{
			name:         "unknown payer",
			participants: []Participant{"A", "B"},
			payments:     []Payment{{Payer: "Z", Beneficiaries: []Participant{"A"}, Amount: 5}},
			want:         ErrUnknownParticipant,
		},
		{
			name:         "unknown beneficiary",
			participants: []Participant{"A", "B"},
			payments:     []Payment{{Payer: "A", Beneficiaries: []Participant{"A", "Z"}, Amount: 5}},
			want:         ErrUnknownParticipant,
		},
		{
			name:         "empty beneficiaries",
			participants: []Participant{"A", "B"},
			payments:     []Payment{{Payer: "A", Amount: 5}},
			want:         ErrEmptyBeneficiaries,
		},
		{
			name:         "zero amount",
			participants: []Participant{"A", "B"},
			payments:     []Payment{{Payer: "A", Beneficiaries: []Participant{"B"}, Amount: 0}},
			want:         ErrInvalidAmount,
		},
		{
			name:         "negative amount",
			participants: []Participant{"A", "B"},
			payments:     []Payment{{Payer: "A", Beneficiaries: []Participant{"B"}, Amount: -3}},
			want:         ErrInvalidAmount,
		},
		{
			name:         "NaN amount",
			participants: []Participant{"A", "B"},
			payments:     []Payment{{Payer: "A", Beneficiaries: []Participant{"B"}, Amount: math.NaN()}},
			want:         ErrInvalidAmount,
		},
		{
			name:         "infinite amount",
			participants: []Participant{"A", "B"},
			payments:     []Payment{{Payer: "A", Beneficiaries: []Participant{"B"}, Amount: math.Inf(1)}},
			want:         ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Accumulate(tt.participants, tt.payments)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)
		})
	}
}

func TestAccumulate_ErrorNamesOffendingPayment(t *testing.T) {
	_, err := Accumulate(
		[]Participant{"A", "B"},
		[]Payment{
			{Payer: "A", Beneficiaries: []Participant{"B"}, Amount: 5},
			{Payer: "B", Beneficiaries: []Participant{"C"}, Amount: 5},
		},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment 1")
	assert.Contains(t, err.Error(), `"C"`)
}

func TestMatch_TiesKeepParticipantOrder(t *testing.T) {
	sheet, err := NewBalanceSheet([]Balance{
		{Participant: "D", Amount: -10},
		{Participant: "C", Amount: 10},
		{Participant: "B", Amount: -10},
		{Participant: "A", Amount: 10},
	})
	require.NoError(t, err)

	assert.Equal(t, []Transfer{
		{From: "D", To: "C", Amount: 10},
		{From: "B", To: "A", Amount: 10},
	}, Match(sheet))
}

func TestMatch_LargestDebtorPaysLargestCreditorFirst(t *testing.T) {
	sheet, err := NewBalanceSheet([]Balance{
		{Participant: "A", Amount: 20},
		{Participant: "B", Amount: -5},
		{Participant: "C", Amount: 50},
		{Participant: "D", Amount: -65},
	})
	require.NoError(t, err)

	assert.Equal(t, []Transfer{
		{From: "D", To: "C", Amount: 50},
		{From: "D", To: "A", Amount: 15},
		{From: "B", To: "A", Amount: 5},
	}, Match(sheet))
}

func TestMatch_IgnoresNearZeroBalances(t *testing.T) {
	sheet, err := NewBalanceSheet([]Balance{
		{Participant: "A", Amount: 5e-7},
		{Participant: "B", Amount: -5e-7},
		{Participant: "C", Amount: 3},
		{Participant: "D", Amount: -3},
	})
	require.NoError(t, err)

	assert.Equal(t, []Transfer{{From: "D", To: "C", Amount: 3}}, Match(sheet))
}

func TestMatch_EmptySheet(t *testing.T) {
	assert.Empty(t, Match(BalanceSheet{}))
}

func TestMatch_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		people := make([]Participant, 2+rng.Intn(12))
		for i := range people {
			people[i] = string(rune('A' + i))
		}

		payments := make([]Payment, 1+rng.Intn(20))
		for i := range payments {
			var beneficiaries []Participant
			for _, p := range people {
				if rng.Intn(2) == 0 {
					beneficiaries = append(beneficiaries, p)
				}
			}
			if len(beneficiaries) == 0 {
				beneficiaries = []Participant{people[rng.Intn(len(people))]}
			}
			payments[i] = Payment{
				Payer:         people[rng.Intn(len(people))],
				Beneficiaries: beneficiaries,
				Amount:        float64(1+rng.Intn(100000)) / 100,
			}
		}

		result, err := Calculate(people, payments)
		require.NoError(t, err)

		assert.InDelta(t, 0, result.Balances.Total(), Epsilon, "zero-sum in round %d", round)

		paid := make(map[Participant]float64)
		received := make(map[Participant]float64)
		var debtors, creditors int
		for _, tr := range result.Transfers {
			assert.NotEqual(t, tr.From, tr.To, "self transfer in round %d", round)
			assert.Greater(t, tr.Amount, 0.0)
			paid[tr.From] += tr.Amount
			received[tr.To] += tr.Amount
		}

		for _, e := range result.Balances.Entries() {
			switch {
			case e.Amount < -Epsilon:
				debtors++
				assert.InDelta(t, -e.Amount, paid[e.Participant], 1e-5, "debtor %s in round %d", e.Participant, round)
			case e.Amount > Epsilon:
				creditors++
				assert.InDelta(t, e.Amount, received[e.Participant], 1e-5, "creditor %s in round %d", e.Participant, round)
			}
		}
		if debtors+creditors > 0 {
			assert.LessOrEqual(t, len(result.Transfers), debtors+creditors-1)
		}

		again := Match(result.Balances)
		assert.Equal(t, result.Transfers, again, "determinism in round %d", round)
	}
}

func TestNewBalanceSheet_RejectsDuplicates(t *testing.T) {
	_, err := NewBalanceSheet([]Balance{{Participant: "A"}, {Participant: "A"}})
	assert.ErrorIs(t, err, ErrDuplicateParticipant)
}

func TestAccumulate_RejectsOverflowingBalances(t *testing.T) {
	done := make(chan error, 1)
	go func() {
		_, err := Calculate(
			[]Participant{"A", "B"},
			[]Payment{
				{Payer: "A", Beneficiaries: []Participant{"B"}, Amount: 1e308},
				{Payer: "A", Beneficiaries: []Participant{"B"}, Amount: 1e308},
			},
		)
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Contains(t, err.Error(), "payment 1")
	case <-time.After(3 * time.Second):
		t.Fatal("Calculate did not return for overflowing payments")
	}
}

func TestAccumulate_LargeFinitePaymentsStillSettle(t *testing.T) {
	result, err := Calculate(
		[]Participant{"A", "B"},
		[]Payment{{Payer: "A", Beneficiaries: []Participant{"B"}, Amount: 1e300}},
	)
	require.NoError(t, err)
	assert.Equal(t, []Transfer{{From: "B", To: "A", Amount: 1e300}}, result.Transfers)
}

func TestMatch_SkipsNonFiniteBalances(t *testing.T) {
	sheet, err := NewBalanceSheet([]Balance{
		{Participant: "A", Amount: math.Inf(1)},
		{Participant: "B", Amount: math.Inf(-1)},
		{Participant: "C", Amount: math.NaN()},
		{Participant: "D", Amount: 4},
		{Participant: "E", Amount: -4},
	})
	require.NoError(t, err)

	assert.Equal(t, []Transfer{{From: "E", To: "D", Amount: 4}}, Match(sheet))
}
