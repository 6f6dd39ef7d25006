package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcPrice(t *testing.T) {
	junior := DefaultPricing()["Junior"]

	assert.Equal(t, int64(60000), CalcPrice(3, junior))
	assert.Equal(t, int64(120000), CalcPrice(6, junior))
	assert.Equal(t, int64(160000), CalcPrice(8, junior))
	assert.Equal(t, int64(105000), CalcPrice(12, junior))
	assert.Zero(t, CalcPrice(4, junior))
	assert.Zero(t, CalcPrice(0, junior))
}

func TestCalcPrice_EightHourFallback(t *testing.T) {
	cfg := CategoryPricing{H6: 100000, ExtraHour: 15000}
	assert.Equal(t, int64(130000), CalcPrice(8, cfg))

	cfg.H8 = 140000
	assert.Equal(t, int64(140000), CalcPrice(8, cfg))
}

func TestPricingTable_ForFallsBackToJunior(t *testing.T) {
	table := DefaultPricing()

	assert.Equal(t, table["Junior"], table.For("Cabana"))
	assert.Equal(t, 4, table.For("Suite Disco").Included)
	assert.Zero(t, table.For("Suite Multiple").H6)
}

func TestDurationRules(t *testing.T) {
	for _, h := range []int{3, 6, 8, 12} {
		assert.True(t, validStayDuration(h), h)
	}
	for _, h := range []int{0, 1, 4, 24} {
		assert.False(t, validStayDuration(h), h)
	}
	assert.True(t, validExtension(1))
	assert.True(t, validExtension(6))
	assert.False(t, validExtension(0))
	assert.False(t, validExtension(7))
}
