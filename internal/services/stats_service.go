package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"spendwise/internal/analytics"
	apperrors "spendwise/internal/errors"
	"spendwise/internal/repository"
	"spendwise/internal/timeframe"
)

// statsService computes spending aggregates and forecasts.
type statsService struct {
	expenses repository.ExpenseRepository
	clock    func() time.Time
}

// NewStatsService creates a new StatsServicer.
func NewStatsService(expenses repository.ExpenseRepository, opts ...Option) StatsServicer {
	o := buildOptions(opts)
	return &statsService{expenses: expenses, clock: o.clock}
}

// GetStats returns the total and per-category spending within tf together
// with the six-month trend. All three are computed against one instant. An
// empty selector means month and an unrecognised one means year.
func (s *statsService) GetStats(ctx context.Context, tf timeframe.Timeframe) (*StatsSummary, error) {
	tf = timeframe.ResolveStats(string(tf))
	now := s.clock()
	window := repository.ExpenseFilter{From: tf.StartPtr(now)}
	trendFrom, trendTo := analytics.TrendSpan(now, analytics.TrendMonths)

	var (
		total      decimal.Decimal
		byCategory map[string]decimal.Decimal
		entries    []analytics.Entry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.expenses.Total(gctx, window)
		return err
	})
	g.Go(func() error {
		var err error
		byCategory, err = s.expenses.TotalsByCategory(gctx, window)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.expenses.Entries(gctx, repository.ExpenseFilter{From: &trendFrom, To: &trendTo})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if byCategory == nil {
		byCategory = map[string]decimal.Decimal{}
	}
	return &StatsSummary{
		Timeframe:    tf,
		Total:        total,
		ByCategory:   byCategory,
		MonthlyTrend: analytics.MonthlyTrend(entries, now),
	}, nil
}

// GetForecast fits the last twelve calendar months and projects the next three.
func (s *statsService) GetForecast(ctx context.Context) (*analytics.ForecastResult, error) {
	now := s.clock()
	from, to := analytics.TrendSpan(now, analytics.HistoryMonths)

	entries, err := s.expenses.Entries(ctx, repository.ExpenseFilter{From: &from, To: &to})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := analytics.Forecast(analytics.ForecastHistory(entries, now), now, analytics.ForecastMonths)
	return &result, nil
}
