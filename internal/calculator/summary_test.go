package calculator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestSummarize(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, tokyo)

	tests := []struct {
		name         string
		entries      []Entry
		loc          *time.Location
		validateFunc func(t *testing.T, s Summary)
	}{
		{
			name:    "no entries",
			entries: nil,
			loc:     tokyo,
			validateFunc: func(t *testing.T, s Summary) {
				if !s.Today.IsZero() || !s.Overall.IsZero() {
					t.Errorf("expected zero totals, got today=%s overall=%s", s.Today, s.Overall)
				}
				if len(s.Daily) != 0 || len(s.Monthly) != 0 {
					t.Errorf("expected no periods, got %d daily, %d monthly", len(s.Daily), len(s.Monthly))
				}
			},
		},
		{
			name: "totals per day and month",
			entries: []Entry{
				{Amount: d("500"), Date: time.Date(2026, 3, 15, 8, 0, 0, 0, tokyo)},
				{Amount: d("1200"), Date: time.Date(2026, 3, 15, 19, 0, 0, 0, tokyo)},
				{Amount: d("300"), Date: time.Date(2026, 3, 2, 10, 0, 0, 0, tokyo)},
				{Amount: d("800"), Date: time.Date(2026, 2, 28, 10, 0, 0, 0, tokyo)},
			},
			loc: tokyo,
			validateFunc: func(t *testing.T, s Summary) {
				if !s.Today.Equal(d("1700")) {
					t.Errorf("today = %s, want 1700", s.Today)
				}
				if !s.Overall.Equal(d("2800")) {
					t.Errorf("overall = %s, want 2800", s.Overall)
				}
				if len(s.Daily) != 3 {
					t.Fatalf("expected 3 days, got %d", len(s.Daily))
				}
				if s.Daily[0].Period != "2026-03-15" || s.Daily[0].Count != 2 {
					t.Errorf("first day = %+v, want 2026-03-15 with 2 entries", s.Daily[0])
				}
				if s.Daily[2].Period != "2026-02-28" {
					t.Errorf("last day = %s, want 2026-02-28", s.Daily[2].Period)
				}
				if len(s.Monthly) != 2 {
					t.Fatalf("expected 2 months, got %d", len(s.Monthly))
				}
				if s.Monthly[0].Period != "2026-03" || !s.Monthly[0].Amount.Equal(d("2000")) {
					t.Errorf("first month = %+v, want 2026-03 totalling 2000", s.Monthly[0])
				}
				if !s.Monthly[1].Amount.Equal(d("800")) {
					t.Errorf("second month = %s, want 800", s.Monthly[1].Amount)
				}
			},
		},
		{
			name: "days follow the location",
			entries: []Entry{
				// 2026-03-14 23:30 UTC is already the 15th in Tokyo.
				{Amount: d("100"), Date: time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)},
			},
			loc: tokyo,
			validateFunc: func(t *testing.T, s Summary) {
				if !s.Today.Equal(d("100")) {
					t.Errorf("today = %s, want 100", s.Today)
				}
				if s.Daily[0].Period != "2026-03-15" {
					t.Errorf("day = %s, want 2026-03-15", s.Daily[0].Period)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateFunc(t, Summarize(tt.entries, now, tt.loc))
		})
	}
}

func TestCalculateGroupBalances(t *testing.T) {
	tests := []struct {
		name         string
		entries      []Entry
		members      []string
		validateFunc func(t *testing.T, balances []MemberBalance, edges []DebtEdge)
	}{
		{
			name: "two members, one paid everything",
			entries: []Entry{
				{Amount: d("3000"), UserID: "alice"},
				{Amount: d("1000"), UserID: "alice"},
			},
			members: []string{"alice", "bob"},
			validateFunc: func(t *testing.T, balances []MemberBalance, edges []DebtEdge) {
				if len(balances) != 2 {
					t.Fatalf("expected 2 balances, got %d", len(balances))
				}
				alice, bob := balances[0], balances[1]
				if !alice.NetBalance.Equal(d("2000")) {
					t.Errorf("alice net = %s, want 2000", alice.NetBalance)
				}
				if !bob.NetBalance.Equal(d("-2000")) {
					t.Errorf("bob net = %s, want -2000", bob.NetBalance)
				}
				if len(edges) != 1 || edges[0].From != "bob" || edges[0].To != "alice" || !edges[0].Amount.Equal(d("2000")) {
					t.Errorf("edges = %+v, want bob->alice 2000", edges)
				}
			},
		},
		{
			name: "even spending needs no settlement",
			entries: []Entry{
				{Amount: d("500"), UserID: "alice"},
				{Amount: d("500"), UserID: "bob"},
			},
			members: []string{"alice", "bob"},
			validateFunc: func(t *testing.T, balances []MemberBalance, edges []DebtEdge) {
				if len(edges) != 0 {
					t.Errorf("expected no edges, got %+v", edges)
				}
			},
		},
		{
			name: "rounding leftovers are ignored",
			entries: []Entry{
				{Amount: d("100"), UserID: "alice"},
			},
			members: []string{"alice", "bob", "carol"},
			validateFunc: func(t *testing.T, balances []MemberBalance, edges []DebtEdge) {
				// share = 33.33, alice is owed 66.67, bob and carol owe 33.33 each
				if len(edges) != 2 {
					t.Fatalf("expected 2 edges, got %+v", edges)
				}
				for _, e := range edges {
					if e.To != "alice" || !e.Amount.Equal(d("33.33")) {
						t.Errorf("unexpected edge %+v", e)
					}
				}
			},
		},
		{
			name: "former member keeps credit",
			entries: []Entry{
				{Amount: d("600"), UserID: "dave"},
			},
			members: []string{"alice", "bob"},
			validateFunc: func(t *testing.T, balances []MemberBalance, edges []DebtEdge) {
				if len(balances) != 3 {
					t.Fatalf("expected 3 balances, got %d", len(balances))
				}
				dave := balances[2]
				if dave.UserID != "dave" || !dave.NetBalance.Equal(d("600")) {
					t.Errorf("dave = %+v, want net 600", dave)
				}
				if len(edges) != 2 {
					t.Errorf("expected 2 edges, got %+v", edges)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances, edges := CalculateGroupBalances(tt.entries, tt.members)
			tt.validateFunc(t, balances, edges)
		})
	}
}
