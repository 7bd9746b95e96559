package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	UserID     string
	TotalPaid  decimal.Decimal // Sum of the member's transactions
	FairShare  decimal.Decimal // Equal share of the group total
	NetBalance decimal.Decimal // Positive = owed money, Negative = owes money
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// settleThreshold ignores rounding leftovers of the equal split.
var settleThreshold = decimal.New(1, -2)

// CalculateGroupBalances splits the total of entries equally among members
// and returns each person's balance plus the payments that settle them.
//
// Algorithm:
// - Each entry credits its UserID with the amount paid
// - Each member owes total / len(members), rounded to two places
// - Payers who are no longer members owe nothing and keep their credit
// - Debts are simplified by greedily matching the largest debtor with the largest creditor
//
// Balances are ordered by user ID.
func CalculateGroupBalances(entries []Entry, members []string) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	get := func(id string) *MemberBalance {
		b, ok := balances[id]
		if !ok {
			b = &MemberBalance{UserID: id, TotalPaid: decimal.Zero, FairShare: decimal.Zero}
			balances[id] = b
		}
		return b
	}

	total := decimal.Zero
	for _, e := range entries {
		get(e.UserID).TotalPaid = get(e.UserID).TotalPaid.Add(e.Amount)
		total = total.Add(e.Amount)
	}

	if len(members) > 0 {
		share := total.DivRound(decimal.NewFromInt(int64(len(members))), 2)
		for _, m := range members {
			get(m).FairShare = share
		}
	}

	var memberBalances []MemberBalance
	for _, b := range balances {
		b.NetBalance = b.TotalPaid.Sub(b.FairShare)
		memberBalances = append(memberBalances, *b)
	}
	sort.Slice(memberBalances, func(i, j int) bool { return memberBalances[i].UserID < memberBalances[j].UserID })

	return memberBalances, settle(memberBalances)
}

func settle(balances []MemberBalance) []DebtEdge {
	type side struct {
		id     string
		amount decimal.Decimal
	}
	var creditors, debtors []side
	for _, b := range balances {
		switch {
		case b.NetBalance.GreaterThan(settleThreshold):
			creditors = append(creditors, side{b.UserID, b.NetBalance})
		case b.NetBalance.LessThan(settleThreshold.Neg()):
			debtors = append(debtors, side{b.UserID, b.NetBalance.Neg()})
		}
	}
	byAmount := func(s []side) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].amount.GreaterThan(s[j].amount) })
	}
	byAmount(creditors)
	byAmount(debtors)

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.GreaterThanOrEqual(settleThreshold) {
			edges = append(edges, DebtEdge{From: debtors[i].id, To: creditors[j].id, Amount: amount})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if debtors[i].amount.LessThan(settleThreshold) {
			i++
		}
		if creditors[j].amount.LessThan(settleThreshold) {
			j++
		}
	}
	return edges
}
