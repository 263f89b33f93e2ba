// Package analytics holds the pure computations behind the statistics,
// budget and forecast endpoints. Nothing here touches storage; callers pass
// in the rows and a single reference time.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/models"
	"spendwise/internal/timeframe"
)

// TrendMonths is the length of the dashboard trend series.
const TrendMonths = 6

// Entry is the minimal projection of an expense needed for bucketing.
type Entry struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthlyAggregate is the summed spending of one calendar month.
type MonthlyAggregate struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// BudgetStatus compares a category budget with what was spent against it.
type BudgetStatus struct {
	Category  string          `json:"category"`
	Budget    decimal.Decimal `json:"budget"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

// MonthRange is the inclusive [Start, End] span of the month that lies
// offset calendar months away from the month containing now.
func MonthRange(now time.Time, offset int) (start, end time.Time) {
	start = timeframe.AddMonths(now, offset)
	return start, timeframe.MonthEnd(start)
}

// MonthlyTotals sums entries into the last n calendar months ending with
// the month that contains now, oldest first. Months without entries are
// reported as zero, so the result always has exactly n points. Entries
// outside the span are ignored.
func MonthlyTotals(entries []Entry, now time.Time, n int, label func(time.Time) string) []MonthlyAggregate {
	if n <= 0 {
		return []MonthlyAggregate{}
	}

	out := make([]MonthlyAggregate, n)
	starts := make([]time.Time, n)
	ends := make([]time.Time, n)
	for i := 0; i < n; i++ {
		starts[i], ends[i] = MonthRange(now, i-(n-1))
		out[i] = MonthlyAggregate{Month: label(starts[i]), Amount: decimal.Zero}
	}

	for _, e := range entries {
		for i := range starts {
			if !e.Date.Before(starts[i]) && !e.Date.After(ends[i]) {
				out[i].Amount = out[i].Amount.Add(e.Amount)
				break
			}
		}
	}
	return out
}

// MonthlyTrend is the fixed six-month dashboard series labelled "Jan 2006".
func MonthlyTrend(entries []Entry, now time.Time) []MonthlyAggregate {
	return MonthlyTotals(entries, now, TrendMonths, timeframe.MonthLabel)
}

// TrendSpan returns the inclusive bounds covering the last n months up to
// and including the month of now; callers use it to fetch the entries for
// MonthlyTotals in a single query.
func TrendSpan(now time.Time, n int) (start, end time.Time) {
	start, _ = MonthRange(now, -(n - 1))
	_, end = MonthRange(now, 0)
	return start, end
}

// SumEntries totals the amounts of entries.
func SumEntries(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

// BudgetVsActual joins the month's budgets with the month's spending by
// category. Only budgeted categories are reported; a budget without spending
// shows zero spent. Remaining goes negative on overspend. The result is
// ordered by category name.
func BudgetVsActual(budgets []models.Budget, spending map[string]decimal.Decimal) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent, ok := spending[b.Category]
		if !ok {
			spent = decimal.Zero
		}
		out = append(out, BudgetStatus{
			Category:  b.Category,
			Budget:    b.Amount,
			Spent:     spent,
			Remaining: b.Amount.Sub(spent),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
