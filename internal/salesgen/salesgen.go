// Package salesgen produces synthetic daily sales for a Malaysian grocer:
// weekly rhythm, payday cycle, festival build-up and monsoon supply effects.
package salesgen

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/andresuchdata/freshpredict/internal/calendar"
	"github.com/andresuchdata/freshpredict/internal/domain"
)

// Product is a generated line with its typical daily demand.
type Product struct {
	ID          string
	Name        string
	Category    domain.Category
	BaseDemand  float64
	Variability float64
	Unit        string
	Price       float64
}

// DefaultProducts lines up with the catalog IDs and adds a wider range
// around them.
func DefaultProducts() []Product {
	return []Product{
		{ID: "PLT001", Name: "Whole Chicken", Category: domain.CategoryPoultry, BaseDemand: 45, Variability: 0.15, Unit: "kg", Price: 12.50},
		{ID: "PLT002", Name: "Chicken Wings", Category: domain.CategoryPoultry, BaseDemand: 25, Variability: 0.20, Unit: "kg", Price: 15.50},
		{ID: "PLT003", Name: "Chicken Breast", Category: domain.CategoryPoultry, BaseDemand: 30, Variability: 0.18, Unit: "kg", Price: 18.00},
		{ID: "PLT004", Name: "Chicken Drumstick", Category: domain.CategoryPoultry, BaseDemand: 35, Variability: 0.15, Unit: "kg", Price: 14.00},
		{ID: "PLT005", Name: "Duck", Category: domain.CategoryPoultry, BaseDemand: 8, Variability: 0.25, Unit: "kg", Price: 28.00},

		{ID: "PRD001", Name: "Kangkung", Category: domain.CategoryProduce, BaseDemand: 20, Variability: 0.25, Unit: "kg", Price: 4.50},
		{ID: "PRD002", Name: "Tomatoes", Category: domain.CategoryProduce, BaseDemand: 25, Variability: 0.20, Unit: "kg", Price: 6.50},
		{ID: "PRD003", Name: "Pak Choy", Category: domain.CategoryProduce, BaseDemand: 18, Variability: 0.22, Unit: "kg", Price: 5.00},
		{ID: "PRD004", Name: "Carrots", Category: domain.CategoryProduce, BaseDemand: 15, Variability: 0.18, Unit: "kg", Price: 5.50},
		{ID: "PRD005", Name: "Spring Onions", Category: domain.CategoryProduce, BaseDemand: 12, Variability: 0.20, Unit: "kg", Price: 8.00},
		{ID: "PRD006", Name: "Chili Padi", Category: domain.CategoryProduce, BaseDemand: 8, Variability: 0.30, Unit: "kg", Price: 25.00},
		{ID: "PRD007", Name: "Ginger", Category: domain.CategoryProduce, BaseDemand: 10, Variability: 0.15, Unit: "kg", Price: 12.00},
		{ID: "PRD008", Name: "Garlic", Category: domain.CategoryProduce, BaseDemand: 12, Variability: 0.12, Unit: "kg", Price: 15.00},

		{ID: "DRY001", Name: "Fresh Milk 1L", Category: domain.CategoryDairy, BaseDemand: 40, Variability: 0.12, Unit: "units", Price: 7.50},
		{ID: "DRY002", Name: "Eggs (30 pack)", Category: domain.CategoryDairy, BaseDemand: 55, Variability: 0.10, Unit: "packs", Price: 15.00},
		{ID: "DRY003", Name: "Butter 250g", Category: domain.CategoryDairy, BaseDemand: 15, Variability: 0.15, Unit: "units", Price: 12.00},
		{ID: "DRY004", Name: "Yogurt", Category: domain.CategoryDairy, BaseDemand: 20, Variability: 0.18, Unit: "units", Price: 5.50},
		{ID: "DRY005", Name: "Cheese Slices", Category: domain.CategoryDairy, BaseDemand: 12, Variability: 0.20, Unit: "packs", Price: 9.00},
	}
}

// season is how long demand builds before a festival and how long the peak
// lasts after it.
type season struct {
	prepDays int
	peakDays int
}

var seasons = map[string]season{
	"Chinese New Year":     {prepDays: 14, peakDays: 3},
	"Hari Raya Aidilfitri": {prepDays: 21, peakDays: 5},
	"Deepavali":            {prepDays: 10, peakDays: 3},
	"Christmas":            {prepDays: 14, peakDays: 3},
}

var weekly = map[time.Weekday]float64{
	time.Monday:    0.90,
	time.Tuesday:   0.85,
	time.Wednesday: 0.88,
	time.Thursday:  0.95,
	time.Friday:    1.15,
	time.Saturday:  1.25,
	time.Sunday:    1.10,
}

func WeeklyMultiplier(wd time.Weekday) float64 {
	return weekly[wd]
}

// PaydayMultiplier ramps up from the 25th and tapers off by the 5th.
func PaydayMultiplier(day int) float64 {
	switch {
	case day >= 25 && day <= 31:
		return 1.0 + float64(day-24)*0.05
	case day >= 1 && day <= 5:
		return 1.30 - float64(day-1)*0.05
	default:
		return 1.0
	}
}

// MonsoonMultiplier dampens produce during the northeast (Nov-Mar) and
// southwest (May-Sep) monsoons.
func MonsoonMultiplier(month time.Month, category domain.Category) float64 {
	if category != domain.CategoryProduce {
		return 1.0
	}
	switch {
	case month >= time.November || month <= time.March:
		return 0.85
	case month >= time.May && month <= time.September:
		return 0.92
	default:
		return 1.0
	}
}

// Row is one generated sales line.
type Row struct {
	Date               domain.Date
	Product            Product
	Quantity           int
	Revenue            float64
	Festival           string
	WeeklyMultiplier   float64
	PaydayMultiplier   float64
	FestivalMultiplier float64
	MonsoonMultiplier  float64
}

type Generator struct {
	cal      *calendar.Calendar
	products []Product
	rng      *rand.Rand
}

// New builds a generator. A nil rng uses a fixed seed so output is reproducible.
func New(cal *calendar.Calendar, products []Product, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(42, 42))
	}
	if len(products) == 0 {
		products = DefaultProducts()
	}
	return &Generator{cal: cal, products: products, rng: rng}
}

// Generate emits one row per product per day from from to to inclusive.
func (g *Generator) Generate(from, to domain.Date) []Row {
	if to.Before(from) {
		return nil
	}
	festivals := g.cal.FestivalsBetween(from.AddDays(-31), to.AddDays(31))

	rows := make([]Row, 0, (from.DaysUntil(to)+1)*len(g.products))
	for d := from; !d.After(to); d = d.AddDays(1) {
		for _, p := range g.products {
			rows = append(rows, g.row(p, d, festivals))
		}
	}
	return rows
}

func (g *Generator) row(p Product, d domain.Date, festivals []domain.Festival) Row {
	weeklyMult := WeeklyMultiplier(d.Weekday())
	paydayMult := PaydayMultiplier(d.Day())
	festivalMult, festival := festivalMultiplier(festivals, d, p.Category)
	monsoonMult := MonsoonMultiplier(d.Month(), p.Category)

	noise := 1.0 + g.rng.NormFloat64()*p.Variability
	noise = math.Max(0.5, math.Min(1.5, noise))

	qty := int(math.Max(1, math.Round(p.BaseDemand*weeklyMult*paydayMult*festivalMult*monsoonMult*noise)))

	return Row{
		Date:               d,
		Product:            p,
		Quantity:           qty,
		Revenue:            domain.Money(float64(qty) * p.Price),
		Festival:           festival,
		WeeklyMultiplier:   weeklyMult,
		PaydayMultiplier:   paydayMult,
		FestivalMultiplier: festivalMult,
		MonsoonMultiplier:  monsoonMult,
	}
}

// festivalMultiplier rises linearly through the preparation days and holds
// the full multiplier through the peak. The first matching festival wins.
func festivalMultiplier(festivals []domain.Festival, d domain.Date, category domain.Category) (float64, string) {
	for _, f := range festivals {
		s, ok := seasons[f.Name]
		if !ok || !f.Affects(category) {
			continue
		}
		daysTo := d.DaysUntil(f.Date)
		if daysTo > s.prepDays || daysTo < -s.peakDays {
			continue
		}
		if daysTo > 0 {
			progress := 1 - float64(daysTo)/float64(s.prepDays)
			return 1 + (f.Multiplier-1)*progress, f.Name
		}
		return f.Multiplier, f.Name
	}
	return 1.0, ""
}

var csvHeader = []string{
	"date", "product_id", "product_name", "category", "quantity_sold", "unit",
	"unit_price", "revenue", "day_of_week", "is_weekend", "is_payday_period",
	"festival", "weekly_multiplier", "payday_multiplier", "festival_multiplier",
	"monsoon_multiplier",
}

// WriteCSV writes rows in the sales export layout the server reads.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Date.String(),
			r.Product.ID,
			r.Product.Name,
			string(r.Product.Category),
			strconv.Itoa(r.Quantity),
			r.Product.Unit,
			formatFloat(r.Product.Price, 2),
			formatFloat(r.Revenue, 2),
			r.Date.Weekday().String(),
			strconv.FormatBool(r.Date.IsWeekend()),
			strconv.FormatBool(r.PaydayMultiplier > 1),
			r.Festival,
			formatFloat(r.WeeklyMultiplier, 3),
			formatFloat(r.PaydayMultiplier, 3),
			formatFloat(r.FestivalMultiplier, 3),
			formatFloat(r.MonsoonMultiplier, 3),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s/%s: %w", r.Product.ID, r.Date, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64, places int32) string {
	return strconv.FormatFloat(domain.Round(v, places), 'f', -1, 64)
}
