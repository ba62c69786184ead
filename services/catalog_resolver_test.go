package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-ordering/database/dbtest"
	"github.com/yeremiapane/restaurant-ordering/models"
)

func TestResolveProductCanonicalPrice(t *testing.T) {
	w := newWorld(t)

	p, err := w.catalog.ResolveProduct(ctx(), w.burger.ID, w.location.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("25.00").Equal(p.Price))
	assert.Equal(t, "Burger", p.Name)
	assert.True(t, p.Available)
	assert.Equal(t, models.ActivationActive, p.Activation)
}

func TestResolveProductOverrides(t *testing.T) {
	w := newWorld(t)
	uptown := w.seed.Location("Uptown")
	pl := w.seed.ProductAt(w.burger.ID, uptown.ID, true, dbtest.Ptr("30.00"))
	pl.NameOverride = dbtest.Ptr("Uptown Burger")
	pl.AvailableOverride = dbtest.Ptr(false)
	require.NoError(t, w.db.Save(&pl).Error)

	p, err := w.catalog.ResolveProduct(ctx(), w.burger.ID, uptown.ID)
	require.NoError(t, err)
	assert.Equal(t, "30.00", p.Price.StringFixed(2))
	assert.Equal(t, "Uptown Burger", p.Name)
	assert.False(t, p.Available)
	assert.Equal(t, w.burger.Description, p.Description)
}

func TestResolveProductActivation(t *testing.T) {
	w := newWorld(t)
	absent := w.seed.Location("No overrides")
	inactive := w.seed.Location("Inactive")
	w.seed.ProductAt(w.burger.ID, inactive.ID, false, nil)

	for _, loc := range []models.Location{absent, inactive} {
		_, err := w.catalog.ResolveProduct(ctx(), w.burger.ID, loc.ID)
		var pu *ProductUnavailableError
		require.True(t, errors.As(err, &pu), loc.Name)
		assert.Equal(t, loc.ID, pu.LocationID)
	}

	_, err := w.catalog.ResolveProduct(ctx(), 4242, w.location.ID)
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestResolveOptionAdjustment(t *testing.T) {
	w := newWorld(t)

	o, err := w.catalog.ResolveOption(ctx(), w.large.ID, w.location.ID)
	require.NoError(t, err)
	assert.Equal(t, "5.00", o.PriceAdjustment.StringFixed(2))
	assert.Equal(t, w.sizeType.ID, o.OptionTypeID)

	uptown := w.seed.Location("Uptown")
	w.seed.OptionTypeAt(w.sizeType.ID, uptown.ID, true)
	w.seed.OptionAt(w.large.ID, uptown.ID, true, dbtest.Ptr("7.25"))

	o, err = w.catalog.ResolveOption(ctx(), w.large.ID, uptown.ID)
	require.NoError(t, err)
	assert.Equal(t, "7.25", o.PriceAdjustment.StringFixed(2))
}

func TestResolveOptionRequiresActiveOptionType(t *testing.T) {
	w := newWorld(t)
	uptown := w.seed.Location("Uptown")
	w.seed.OptionAt(w.large.ID, uptown.ID, true, nil)
	w.seed.OptionTypeAt(w.sizeType.ID, uptown.ID, false)

	_, err := w.catalog.ResolveOption(ctx(), w.large.ID, uptown.ID)
	var sel *OptionSelectionError
	require.True(t, errors.As(err, &sel))
	assert.Equal(t, w.sizeType.ID, sel.OptionTypeID)

	_, err = w.catalog.ResolveOption(ctx(), w.small.ID, uptown.ID)
	assert.True(t, errors.As(err, &sel))

	_, err = w.catalog.ResolveOption(ctx(), 777, uptown.ID)
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestResolveOptionTypeRules(t *testing.T) {
	w := newWorld(t)

	rules, err := w.catalog.ResolveOptionTypeRules(ctx(), w.sizeType.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rules.Min)
	require.NotNil(t, rules.Max)
	assert.Equal(t, 1, *rules.Max)
	assert.False(t, rules.Allows(0))
	assert.True(t, rules.Allows(1))
	assert.False(t, rules.Allows(2))

	unbounded, err := w.catalog.ResolveOptionTypeRules(ctx(), w.sauceType.ID)
	require.NoError(t, err)
	assert.Nil(t, unbounded.Max)
	assert.True(t, unbounded.Allows(0))
	assert.True(t, unbounded.Allows(12))

	broken := w.seed.OptionType("Broken", 3, dbtest.Ptr(1))
	_, err = w.catalog.ResolveOptionTypeRules(ctx(), broken.ID)
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestApplicableOptionTypes(t *testing.T) {
	w := newWorld(t)

	ids, err := w.catalog.ApplicableOptionTypes(ctx(), w.burger.ID, w.location.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{w.sizeType.ID, w.sauceType.ID}, ids)

	uptown := w.seed.Location("Uptown")
	w.seed.OptionTypeAt(w.sizeType.ID, uptown.ID, true)
	w.seed.OptionTypeAt(w.sauceType.ID, uptown.ID, false)

	ids, err = w.catalog.ApplicableOptionTypes(ctx(), w.burger.ID, uptown.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{w.sizeType.ID}, ids)
}

func TestActivationOf(t *testing.T) {
	assert.Equal(t, models.ActivationAbsent, models.ActivationOf(false, true))
	assert.Equal(t, models.ActivationInactive, models.ActivationOf(true, false))
	assert.Equal(t, models.ActivationActive, models.ActivationOf(true, true))
	assert.Equal(t, "absent", models.ActivationAbsent.String())
}
