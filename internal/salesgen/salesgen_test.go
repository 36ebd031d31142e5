package salesgen

import (
	"bytes"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/freshpredict/internal/calendar"
	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/andresuchdata/freshpredict/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCalendar() *calendar.Calendar {
	return calendar.New(config.New().Calendar)
}

func TestPaydayMultiplier(t *testing.T) {
	assert.InDelta(t, 1.05, PaydayMultiplier(25), 1e-9)
	assert.InDelta(t, 1.35, PaydayMultiplier(31), 1e-9)
	assert.InDelta(t, 1.30, PaydayMultiplier(1), 1e-9)
	assert.InDelta(t, 1.10, PaydayMultiplier(5), 1e-9)
	assert.Equal(t, 1.0, PaydayMultiplier(15))
}

func TestWeeklyAndMonsoonMultipliers(t *testing.T) {
	assert.Equal(t, 1.25, WeeklyMultiplier(time.Saturday))
	assert.Equal(t, 0.85, WeeklyMultiplier(time.Tuesday))

	assert.Equal(t, 0.85, MonsoonMultiplier(time.December, domain.CategoryProduce))
	assert.Equal(t, 0.85, MonsoonMultiplier(time.February, domain.CategoryProduce))
	assert.Equal(t, 0.92, MonsoonMultiplier(time.July, domain.CategoryProduce))
	assert.Equal(t, 1.0, MonsoonMultiplier(time.April, domain.CategoryProduce))
	assert.Equal(t, 1.0, MonsoonMultiplier(time.December, domain.CategoryDairy))
}

func TestFestivalMultiplierRampsAndPeaks(t *testing.T) {
	festivals := testCalendar().FestivalsBetween(domain.NewDate(2026, time.January, 1), domain.NewDate(2026, time.April, 30))

	mult, name := festivalMultiplier(festivals, domain.NewDate(2026, time.February, 10), domain.CategoryProduce)
	assert.Equal(t, "Chinese New Year", name)
	assert.InDelta(t, 1.75, mult, 1e-9)

	mult, _ = festivalMultiplier(festivals, domain.NewDate(2026, time.February, 17), domain.CategoryProduce)
	assert.InDelta(t, 2.5, mult, 1e-9)

	mult, _ = festivalMultiplier(festivals, domain.NewDate(2026, time.February, 20), domain.CategoryPoultry)
	assert.InDelta(t, 2.5, mult, 1e-9)

	mult, name = festivalMultiplier(festivals, domain.NewDate(2026, time.February, 21), domain.CategoryPoultry)
	assert.Equal(t, 1.0, mult)
	assert.Empty(t, name)

	mult, name = festivalMultiplier(festivals, domain.NewDate(2026, time.March, 9), domain.CategoryDairy)
	assert.Equal(t, "Hari Raya Aidilfitri", name)
	assert.InDelta(t, 1+2.0*10.0/21.0, mult, 1e-9)

	mult, _ = festivalMultiplier(festivals, domain.NewDate(2026, time.March, 9), domain.CategoryProduce)
	assert.Equal(t, 1.0, mult)
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	from := domain.NewDate(2026, time.January, 1)
	to := domain.NewDate(2026, time.January, 10)

	a := New(testCalendar(), nil, rand.New(rand.NewPCG(42, 1))).Generate(from, to)
	b := New(testCalendar(), nil, rand.New(rand.NewPCG(42, 1))).Generate(from, to)

	require.Len(t, a, 10*len(DefaultProducts()))
	assert.Equal(t, a, b)

	for _, r := range a {
		assert.GreaterOrEqual(t, r.Quantity, 1)
		assert.InDelta(t, float64(r.Quantity)*r.Product.Price, r.Revenue, 0.005)
	}
}

func TestGenerateEmptyRange(t *testing.T) {
	g := New(testCalendar(), nil, nil)
	assert.Empty(t, g.Generate(domain.NewDate(2026, time.January, 2), domain.NewDate(2026, time.January, 1)))
}

func TestWriteCSVIsReadableAsSalesHistory(t *testing.T) {
	products := DefaultProducts()[:2]
	g := New(testCalendar(), products, rand.New(rand.NewPCG(1, 2)))
	rows := g.Generate(domain.NewDate(2026, time.February, 1), domain.NewDate(2026, time.February, 7))

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	header, _, _ := strings.Cut(buf.String(), "\n")
	assert.True(t, strings.HasPrefix(header, "date,product_id,product_name,category,quantity_sold"))

	byID, err := repository.ParseSalesCSV(&buf)
	require.NoError(t, err)
	require.Len(t, byID, 2)
	require.Len(t, byID["PLT001"], 7)
	assert.Equal(t, float64(rows[0].Quantity), byID["PLT001"][0].Quantity)
}
