package analytics

import (
	"time"

	"spendwise/internal/timeframe"
)

// Forecast window sizes.
const (
	HistoryMonths  = 12
	ForecastMonths = 3
)

// Outlook places the next month's prediction against the historical average.
type Outlook string

// Outlook values. A prediction within outlookBand of the average is near it.
const (
	OutlookAbove Outlook = "above"
	OutlookNear  Outlook = "near"
	OutlookBelow Outlook = "below"

	outlookBand = 0.10
)

// Line is a fitted y = Slope*x + Intercept.
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// FitLine fits ys against x = 0, 1, ..., len(ys)-1 by ordinary least squares.
// With fewer than two points the line is flat at the mean (zero when empty).
func FitLine(ys []float64) Line {
	n := float64(len(ys))
	if n == 0 {
		return Line{}
	}

	var sumY float64
	for _, y := range ys {
		sumY += y
	}
	meanX := (n - 1) / 2
	meanY := sumY / n
	if n < 2 {
		return Line{Intercept: meanY}
	}

	var cov, varX float64
	for i, y := range ys {
		dx := float64(i) - meanX
		cov += dx * (y - meanY)
		varX += dx * dx
	}

	slope := cov / varX
	return Line{Slope: slope, Intercept: meanY - slope*meanX}
}

// Prediction is a projected monthly total. Amount is not clamped and can be
// negative when the trend is falling steeply.
type Prediction struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// ForecastResult pairs the history the line was fitted on with the projection.
type ForecastResult struct {
	Historical        []MonthlyAggregate `json:"historical"`
	Predictions       []Prediction       `json:"predictions"`
	HistoricalAverage float64            `json:"historical_average"`
	Outlook           Outlook            `json:"outlook"`
	Line
}

// NextMonthOutlook compares next with avg using a symmetric band of 10%.
func NextMonthOutlook(next, avg float64) Outlook {
	switch {
	case next > avg*(1+outlookBand):
		return OutlookAbove
	case next < avg*(1-outlookBand):
		return OutlookBelow
	default:
		return OutlookNear
	}
}

// Forecast fits a trend over history (oldest first, one point per month,
// the last point being the month of now) and projects the next horizon
// months. Prediction k is evaluated at x = len(history)+k and labelled with
// the month k+1 months after now.
func Forecast(history []MonthlyAggregate, now time.Time, horizon int) ForecastResult {
	ys := make([]float64, len(history))
	var sum float64
	for i, h := range history {
		ys[i] = h.Amount.InexactFloat64()
		sum += ys[i]
	}
	line := FitLine(ys)

	var avg float64
	if len(ys) > 0 {
		avg = sum / float64(len(ys))
	}

	predictions := make([]Prediction, 0, horizon)
	for k := 0; k < horizon; k++ {
		month := timeframe.AddMonths(now, k+1)
		predictions = append(predictions, Prediction{
			Month:  timeframe.MonthLabel(month),
			Amount: line.At(float64(len(history) + k)),
		})
	}

	outlook := OutlookNear
	if len(predictions) > 0 {
		outlook = NextMonthOutlook(predictions[0].Amount, avg)
	}

	return ForecastResult{
		Historical:        history,
		Predictions:       predictions,
		HistoricalAverage: avg,
		Outlook:           outlook,
		Line:              line,
	}
}

// ForecastHistory buckets entries into the 12-month "YYYY-MM" history series
// that Forecast expects.
func ForecastHistory(entries []Entry, now time.Time) []MonthlyAggregate {
	return MonthlyTotals(entries, now, HistoryMonths, timeframe.MonthKey)
}
