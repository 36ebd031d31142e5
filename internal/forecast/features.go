package forecast

import (
	"math"

	"github.com/andresuchdata/freshpredict/internal/calendar"
	"github.com/andresuchdata/freshpredict/internal/domain"
)

const (
	daysPerWeek = 7.0
	daysPerYear = 365.25
	// yearly terms need at least a full cycle of history to be identifiable
	minDaysForYearly = 365
)

// featureSpace maps a date onto the regression design row. It is fixed at
// training time so future dates are encoded the same way.
type featureSpace struct {
	cal          *calendar.Calendar
	origin       domain.Date
	span         float64
	weeklyOrder  int
	yearlyOrder  int
	holidayNames []string
	holidayIndex map[string]int
}

func newFeatureSpace(cal *calendar.Calendar, start, end domain.Date, weeklyOrder, yearlyOrder int) *featureSpace {
	span := float64(start.DaysUntil(end))
	if span < 1 {
		span = 1
	}
	if start.DaysUntil(end) < minDaysForYearly {
		yearlyOrder = 0
	}

	names := cal.Names()
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}

	return &featureSpace{
		cal:          cal,
		origin:       start,
		span:         span,
		weeklyOrder:  weeklyOrder,
		yearlyOrder:  yearlyOrder,
		holidayNames: names,
		holidayIndex: index,
	}
}

// width is intercept + trend + fourier pairs + holidays + weekend + payday.
func (fs *featureSpace) width() int {
	return 2 + 2*fs.weeklyOrder + 2*fs.yearlyOrder + len(fs.holidayNames) + 2
}

func (fs *featureSpace) names() []string {
	out := []string{"intercept", "trend"}
	if fs.weeklyOrder > 0 {
		out = append(out, "weekly_seasonality")
	}
	if fs.yearlyOrder > 0 {
		out = append(out, "yearly_seasonality")
	}
	out = append(out, "holidays", "is_weekend", "is_payday")
	return out
}

func (fs *featureSpace) row(d domain.Date, dst []float64) []float64 {
	if cap(dst) < fs.width() {
		dst = make([]float64, fs.width())
	}
	dst = dst[:fs.width()]
	for i := range dst {
		dst[i] = 0
	}

	i := 0
	dst[i] = 1
	i++
	dst[i] = float64(fs.origin.DaysUntil(d)) / fs.span
	i++

	dayNum := float64(d.Unix() / 86400)
	for k := 1; k <= fs.weeklyOrder; k++ {
		x := 2 * math.Pi * float64(k) * dayNum / daysPerWeek
		dst[i] = math.Sin(x)
		dst[i+1] = math.Cos(x)
		i += 2
	}
	for k := 1; k <= fs.yearlyOrder; k++ {
		x := 2 * math.Pi * float64(k) * dayNum / daysPerYear
		dst[i] = math.Sin(x)
		dst[i+1] = math.Cos(x)
		i += 2
	}

	for _, f := range fs.cal.FestivalsBetween(d, d) {
		if f.Covers(d) {
			dst[i+fs.holidayIndex[f.Name]] = 1
		}
	}
	i += len(fs.holidayNames)

	if d.IsWeekend() {
		dst[i] = 1
	}
	if fs.cal.IsPayday(d.Day()) {
		dst[i+1] = 1
	}
	return dst
}
