// Package calendar resolves festival dates and payday periods.
package calendar

import (
	"sort"
	"time"

	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/domain"
)

type monthDay struct {
	month time.Month
	day   int
}

// festivalDef describes a festival independent of year. Movable feasts carry
// a per-year table; fixed ones resolve for any year.
type festivalDef struct {
	name       string
	categories []domain.Category
	multiplier float64
	window     domain.HolidayWindow
	fixed      *monthDay
	movable    map[int]monthDay
}

func (d festivalDef) resolve(year int) (domain.Festival, bool) {
	var md monthDay
	switch {
	case d.fixed != nil:
		md = *d.fixed
	default:
		var ok bool
		md, ok = d.movable[year]
		if !ok {
			return domain.Festival{}, false
		}
	}
	return domain.Festival{
		Name:       d.name,
		Date:       domain.NewDate(year, md.month, md.day),
		Categories: append([]domain.Category(nil), d.categories...),
		Multiplier: d.multiplier,
		Window:     d.window,
	}, true
}

var (
	lunarNewYearCategories = []domain.Category{domain.CategoryPoultry, domain.CategoryProduce, domain.CategoryDairy}
	rayaCategories         = []domain.Category{domain.CategoryPoultry, domain.CategoryDairy}
	majorWindow            = domain.HolidayWindow{Before: 7, After: 1}
	minorWindow            = domain.HolidayWindow{Before: 3, After: 1}
)

var festivalDefs = []festivalDef{
	{
		name:       "Chinese New Year",
		categories: lunarNewYearCategories,
		multiplier: 2.5,
		window:     majorWindow,
		movable: map[int]monthDay{
			2025: {time.January, 29},
			2026: {time.February, 17},
			2027: {time.February, 6},
		},
	},
	{
		name:       "Chinese New Year Day 2",
		categories: lunarNewYearCategories,
		multiplier: 2.5,
		window:     majorWindow,
		movable: map[int]monthDay{
			2025: {time.January, 30},
			2026: {time.February, 18},
			2027: {time.February, 7},
		},
	},
	{
		name:       "Hari Raya Aidilfitri",
		categories: rayaCategories,
		multiplier: 3.0,
		window:     majorWindow,
		movable: map[int]monthDay{
			2025: {time.March, 30},
			2026: {time.March, 20},
			2027: {time.March, 10},
		},
	},
	{
		name:       "Hari Raya Aidilfitri Day 2",
		categories: rayaCategories,
		multiplier: 3.0,
		window:     majorWindow,
		movable: map[int]monthDay{
			2025: {time.March, 31},
			2026: {time.March, 21},
			2027: {time.March, 11},
		},
	},
	{
		name:       "Deepavali",
		categories: []domain.Category{domain.CategoryProduce, domain.CategoryDairy},
		multiplier: 2.0,
		window:     minorWindow,
		movable: map[int]monthDay{
			2025: {time.October, 20},
			2026: {time.November, 8},
			2027: {time.October, 29},
		},
	},
	{
		name:       "Christmas",
		categories: []domain.Category{domain.CategoryPoultry, domain.CategoryDairy},
		multiplier: 1.8,
		window:     minorWindow,
		fixed:      &monthDay{time.December, 25},
	},
}

// Calendar answers festival and payday questions. It holds no mutable state.
type Calendar struct {
	paydays []config.DayRange
}

func New(cfg config.CalendarConfig) *Calendar {
	ranges := cfg.PaydayRanges
	if len(ranges) == 0 {
		ranges = []config.DayRange{{From: 25, To: 31}, {From: 1, To: 5}}
	}
	return &Calendar{paydays: append([]config.DayRange(nil), ranges...)}
}

// IsPayday reports whether the day of month falls in a salary period.
func (c *Calendar) IsPayday(dayOfMonth int) bool {
	for _, r := range c.paydays {
		if r.Contains(dayOfMonth) {
			return true
		}
	}
	return false
}

// FestivalsForYear returns the festivals known for year, sorted by date.
// Movable feasts outside the lookup table are omitted.
func (c *Calendar) FestivalsForYear(year int) []domain.Festival {
	out := make([]domain.Festival, 0, len(festivalDefs))
	for _, def := range festivalDefs {
		if f, ok := def.resolve(year); ok {
			out = append(out, f)
		}
	}
	sortFestivals(out)
	return out
}

// FestivalsBetween returns every festival whose window overlaps [from, to].
func (c *Calendar) FestivalsBetween(from, to domain.Date) []domain.Festival {
	var out []domain.Festival
	for year := from.Year() - 1; year <= to.Year()+1; year++ {
		for _, f := range c.FestivalsForYear(year) {
			start := f.Date.AddDays(-f.Window.Before)
			end := f.Date.AddDays(f.Window.After)
			if end.Before(from) || start.After(to) {
				continue
			}
			out = append(out, f)
		}
	}
	sortFestivals(out)
	return out
}

// Names lists every festival name once, in declaration order.
func (c *Calendar) Names() []string {
	names := make([]string, 0, len(festivalDefs))
	for _, def := range festivalDefs {
		names = append(names, def.name)
	}
	return names
}

// Upcoming lists festivals from today onwards sorted by distance. A negative
// within means no limit.
func (c *Calendar) Upcoming(today domain.Date, within int) []domain.UpcomingFestival {
	var out []domain.UpcomingFestival
	for _, year := range []int{today.Year(), today.Year() + 1} {
		for _, f := range c.FestivalsForYear(year) {
			days := today.DaysUntil(f.Date)
			if days < 0 || (within >= 0 && days > within) {
				continue
			}
			out = append(out, domain.UpcomingFestival{Festival: f, DaysUntil: days})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysUntil < out[j].DaysUntil })
	return out
}

// NextForCategory returns the nearest festival affecting category that falls
// within horizon days of today.
func (c *Calendar) NextForCategory(today domain.Date, horizon int, category domain.Category) (domain.UpcomingFestival, bool) {
	for _, u := range c.Upcoming(today, horizon) {
		if u.Affects(category) {
			return u, true
		}
	}
	return domain.UpcomingFestival{}, false
}

// ActiveForCategory is like NextForCategory but also returns a festival that
// has passed and is still inside its post-window. DaysUntil is then negative.
func (c *Calendar) ActiveForCategory(today domain.Date, horizon int, category domain.Category) (domain.UpcomingFestival, bool) {
	var (
		best  domain.UpcomingFestival
		found bool
	)
	for _, f := range c.FestivalsBetween(today, today.AddDays(horizon)) {
		if !f.Affects(category) {
			continue
		}
		days := today.DaysUntil(f.Date)
		if days > horizon || days < -f.Window.After {
			continue
		}
		if !found || abs(days) < abs(best.DaysUntil) {
			best = domain.UpcomingFestival{Festival: f, DaysUntil: days}
			found = true
		}
	}
	return best, found
}

func sortFestivals(list []domain.Festival) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date.Equal(list[j].Date) {
			return list[i].Name < list[j].Name
		}
		return list[i].Date.Before(list[j].Date)
	})
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
