// Package calculator aggregates transaction amounts.
package calculator

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is the minimal view of a transaction needed for totals.
type Entry struct {
	Amount decimal.Decimal
	Date   time.Time
	UserID string
}

// Total is the sum of the entries in one period.
type Total struct {
	// Period is "2006-01-02" for days and "2006-01" for months.
	Period string
	Amount decimal.Decimal
	Count  int
}

// Summary holds the totals of a transaction list.
type Summary struct {
	Today   decimal.Decimal
	Daily   []Total // newest first
	Monthly []Total // newest first
	Overall decimal.Decimal
}

// Summarize totals entries per day and per month in loc. Today is the
// total of the day containing now.
func Summarize(entries []Entry, now time.Time, loc *time.Location) Summary {
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc).Format(time.DateOnly)

	daily := make(map[string]*Total)
	monthly := make(map[string]*Total)
	s := Summary{Today: decimal.Zero, Overall: decimal.Zero}

	for _, e := range entries {
		local := e.Date.In(loc)
		day := local.Format(time.DateOnly)
		month := local.Format("2006-01")

		add(daily, day, e.Amount)
		add(monthly, month, e.Amount)
		s.Overall = s.Overall.Add(e.Amount)
		if day == today {
			s.Today = s.Today.Add(e.Amount)
		}
	}

	s.Daily = sorted(daily)
	s.Monthly = sorted(monthly)
	return s
}

func add(totals map[string]*Total, period string, amount decimal.Decimal) {
	t, ok := totals[period]
	if !ok {
		t = &Total{Period: period, Amount: decimal.Zero}
		totals[period] = t
	}
	t.Amount = t.Amount.Add(amount)
	t.Count++
}

// sorted returns the totals newest period first. Period strings sort
// chronologically.
func sorted(totals map[string]*Total) []Total {
	out := make([]Total, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period > out[j].Period })
	return out
}
