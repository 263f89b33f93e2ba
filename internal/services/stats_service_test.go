package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"spendwise/internal/analytics"
	"spendwise/internal/testutil"
	"spendwise/internal/timeframe"
)

func TestGetStats(t *testing.T) {
	ctx := context.Background()

	t.Run("month_breakdown_and_trend", func(t *testing.T) {
		env := newTestEnv(t)
		svc := NewStatsService(env.store, fixedClock())
		env.addExpense(t, time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC), "100", "food")
		env.addExpense(t, time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC), "50", "food")
		env.addExpense(t, time.Date(2024, time.January, 3, 9, 0, 0, 0, time.UTC), "25", "rent")

		stats, err := svc.GetStats(ctx, timeframe.Month)
		testutil.AssertNoError(t, err)

		if stats.Timeframe != timeframe.Month {
			t.Errorf("expected timeframe month, got %s", stats.Timeframe)
		}
		if !stats.Total.Equal(dec("150")) {
			t.Errorf("expected total 150, got %s", stats.Total)
		}
		if len(stats.ByCategory) != 1 || !stats.ByCategory["food"].Equal(dec("150")) {
			t.Errorf("expected {food:150}, got %v", stats.ByCategory)
		}

		if len(stats.MonthlyTrend) != analytics.TrendMonths {
			t.Fatalf("expected %d trend points, got %d", analytics.TrendMonths, len(stats.MonthlyTrend))
		}
		if stats.MonthlyTrend[0].Month != "Oct 2023" || stats.MonthlyTrend[5].Month != "Mar 2024" {
			t.Errorf("unexpected trend labels %s..%s", stats.MonthlyTrend[0].Month, stats.MonthlyTrend[5].Month)
		}
		if !stats.MonthlyTrend[3].Amount.Equal(dec("25")) {
			t.Errorf("expected January 25, got %s", stats.MonthlyTrend[3].Amount)
		}
		if !stats.MonthlyTrend[5].Amount.Equal(dec("150")) {
			t.Errorf("expected March 150, got %s", stats.MonthlyTrend[5].Amount)
		}
	})

	t.Run("defaults_to_month", func(t *testing.T) {
		env := newTestEnv(t)
		svc := NewStatsService(env.store, fixedClock())

		stats, err := svc.GetStats(ctx, "")
		testutil.AssertNoError(t, err)
		if stats.Timeframe != timeframe.Month {
			t.Errorf("expected default timeframe month, got %s", stats.Timeframe)
		}
	})

	t.Run("year", func(t *testing.T) {
		env := newTestEnv(t)
		svc := NewStatsService(env.store, fixedClock())
		env.addExpense(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), "25", "rent")
		env.addExpense(t, time.Date(2023, time.December, 31, 23, 59, 59, 0, time.UTC), "1000", "rent")

		stats, err := svc.GetStats(ctx, timeframe.Year)
		testutil.AssertNoError(t, err)
		if !stats.Total.Equal(dec("25")) {
			t.Errorf("expected year total 25, got %s", stats.Total)
		}
	})

	t.Run("empty_window", func(t *testing.T) {
		env := newTestEnv(t)
		svc := NewStatsService(env.store, fixedClock())
		env.addExpense(t, testNow.AddDate(0, 0, -14), "10", "food")

		stats, err := svc.GetStats(ctx, timeframe.Week)
		testutil.AssertNoError(t, err)
		if !stats.Total.IsZero() {
			t.Errorf("expected zero total, got %s", stats.Total)
		}
		if stats.ByCategory == nil || len(stats.ByCategory) != 0 {
			t.Errorf("expected an empty non-nil breakdown, got %v", stats.ByCategory)
		}
	})

	t.Run("unrecognised_selector_uses_year", func(t *testing.T) {
		env := newTestEnv(t)
		svc := NewStatsService(env.store, fixedClock())
		env.addExpense(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), "40", "rent")
		env.addExpense(t, time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC), "1000", "rent")

		for _, tf := range []timeframe.Timeframe{timeframe.All, "bogus", "YEAR"} {
			stats, err := svc.GetStats(ctx, tf)
			testutil.AssertNoError(t, err)
			if stats.Timeframe != timeframe.Year {
				t.Errorf("timeframe %q: expected year, got %s", tf, stats.Timeframe)
			}
			if !stats.Total.Equal(dec("40")) {
				t.Errorf("timeframe %q: expected year total 40, got %s", tf, stats.Total)
			}
		}
	})

	t.Run("storage_failure", func(t *testing.T) {
		repo := &mockExpenseRepo{}
		repo.On("Total", mock.Anything, mock.Anything).Return(decimal.Zero, errors.New("connection reset"))
		repo.On("TotalsByCategory", mock.Anything, mock.Anything).Return(map[string]decimal.Decimal{}, nil).Maybe()
		repo.On("Entries", mock.Anything, mock.Anything).Return([]analytics.Entry{}, nil).Maybe()
		svc := NewStatsService(repo, fixedClock())

		_, err := svc.GetStats(ctx, timeframe.Month)
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")
	})
}

func TestGetForecast(t *testing.T) {
	ctx := context.Background()

	t.Run("linear_history", func(t *testing.T) {
		env := newTestEnv(t)
		svc := NewStatsService(env.store, fixedClock())
		// Month i of the window (April 2023 = 0) spends 10*i.
		for i := 1; i < analytics.HistoryMonths; i++ {
			at := time.Date(2023, time.April+time.Month(i), 5, 10, 0, 0, 0, time.UTC)
			env.addExpense(t, at, decimal.NewFromInt(int64(10*i)).String(), "misc")
		}

		result, err := svc.GetForecast(ctx)
		testutil.AssertNoError(t, err)

		if len(result.Historical) != 12 || len(result.Predictions) != 3 {
			t.Fatalf("expected 12 historical and 3 predicted points, got %d and %d", len(result.Historical), len(result.Predictions))
		}
		if result.Historical[0].Month != "2023-04" || result.Historical[11].Month != "2024-03" {
			t.Errorf("unexpected history labels %s..%s", result.Historical[0].Month, result.Historical[11].Month)
		}
		want := []analytics.Prediction{{Month: "Apr 2024", Amount: 120}, {Month: "May 2024", Amount: 130}, {Month: "Jun 2024", Amount: 140}}
		for i, p := range result.Predictions {
			if p.Month != want[i].Month {
				t.Errorf("prediction %d: expected month %s, got %s", i, want[i].Month, p.Month)
			}
			if diff := p.Amount - want[i].Amount; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("prediction %d: expected %.2f, got %.6f", i, want[i].Amount, p.Amount)
			}
		}
		if result.Outlook != analytics.OutlookAbove {
			t.Errorf("expected outlook above the 55 average, got %s", result.Outlook)
		}
	})

	t.Run("no_history_predicts_zero", func(t *testing.T) {
		env := newTestEnv(t)
		svc := NewStatsService(env.store, fixedClock())

		result, err := svc.GetForecast(ctx)
		testutil.AssertNoError(t, err)
		for _, p := range result.Predictions {
			if p.Amount != 0 {
				t.Errorf("expected zero prediction, got %f", p.Amount)
			}
		}
	})

	t.Run("storage_failure", func(t *testing.T) {
		repo := &mockExpenseRepo{}
		repo.On("Entries", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
		svc := NewStatsService(repo, fixedClock())

		_, err := svc.GetForecast(ctx)
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")
		repo.AssertExpectations(t)
	})
}
