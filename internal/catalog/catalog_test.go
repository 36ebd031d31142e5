package catalog

import (
	"errors"
	"testing"

	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNormalisesID(t *testing.T) {
	c := Default()

	p, err := c.Get(" prd001 ")
	require.NoError(t, err)
	assert.Equal(t, "Kangkung", p.Name)

	_, err = c.Get("XYZ")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestFindByName(t *testing.T) {
	c := Default()

	p, err := c.FindByName("fresh milk 1l")
	require.NoError(t, err)
	assert.Equal(t, "DRY001", p.ID)

	p, err = c.FindByName("Chicken")
	require.NoError(t, err)
	assert.Equal(t, "PLT002", p.ID, "prefix matches follow catalog order")

	p, err = c.FindByName("dry002")
	require.NoError(t, err)
	assert.Equal(t, "Eggs (30 pack)", p.Name)

	_, err = c.FindByName("  ")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = c.FindByName("durian")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCopiesAreIsolated(t *testing.T) {
	c := Default()

	list := c.Products()
	list[0].Name = "changed"
	assert.Equal(t, "Whole Chicken", c.Products()[0].Name)

	s := Suppliers(domain.CategoryDairy)
	s[0] = "changed"
	assert.Equal(t, "Dutch Lady Malaysia", Suppliers(domain.CategoryDairy)[0])

	assert.Empty(t, Suppliers(domain.Category("frozen")))
}

func TestIDsSorted(t *testing.T) {
	assert.Equal(t, []string{"DRY001", "DRY002", "PLT001", "PLT002", "PRD001", "PRD002"}, Default().IDs())
}

func TestScenariosReferenceCatalog(t *testing.T) {
	c := Default()
	for _, s := range Scenarios() {
		_, err := c.Get(s.ProductID)
		assert.NoError(t, err, s.ProductID)
	}
	assert.Len(t, ESGTrend(), 5)
}
