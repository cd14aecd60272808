package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestIsLongCaseInsensitive(t *testing.T) {
	assert.True(t, (&Trade{Direction: "long"}).IsLong())
	assert.True(t, (&Trade{Direction: "LONG"}).IsLong())
	assert.False(t, (&Trade{Direction: "short"}).IsLong())
	assert.False(t, (&Trade{Direction: "Short"}).IsLong())
}

func TestDuration(t *testing.T) {
	entry := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	exit := entry.Add(45 * time.Minute)

	tr := Trade{EntryTime: entry, ExitTime: &exit}
	d, ok := tr.Duration()
	require.True(t, ok)
	assert.Equal(t, 45*time.Minute, d)

	open := Trade{EntryTime: entry}
	_, ok = open.Duration()
	assert.False(t, ok)
}

func TestMFEAndMAELong(t *testing.T) {
	tr := Trade{
		Direction:    DirectionLong,
		EntryPrice:   100,
		HighestPrice: ptr(107),
		LowestPrice:  ptr(96),
	}

	mfe, ok := tr.MFE()
	require.True(t, ok)
	assert.InDelta(t, 7, mfe, 1e-9)

	mae, ok := tr.MAE()
	require.True(t, ok)
	assert.InDelta(t, 4, mae, 1e-9)
}

func TestMFEAndMAEShort(t *testing.T) {
	tr := Trade{
		Direction:    DirectionShort,
		EntryPrice:   100,
		HighestPrice: ptr(103),
		LowestPrice:  ptr(92),
	}

	mfe, ok := tr.MFE()
	require.True(t, ok)
	assert.InDelta(t, 8, mfe, 1e-9, "a short's favorable move is downward")

	mae, ok := tr.MAE()
	require.True(t, ok)
	assert.InDelta(t, 3, mae, 1e-9)
}

func TestMFEClippedAtZero(t *testing.T) {
	// Price only ever moved against the long.
	tr := Trade{
		Direction:    DirectionLong,
		EntryPrice:   100,
		HighestPrice: ptr(99),
		LowestPrice:  ptr(95),
	}

	mfe, ok := tr.MFE()
	require.True(t, ok)
	assert.Zero(t, mfe)
}

func TestMFEMissingExtreme(t *testing.T) {
	tr := Trade{Direction: DirectionLong, EntryPrice: 100}
	_, ok := tr.MFE()
	assert.False(t, ok)
	_, ok = tr.MAE()
	assert.False(t, ok)
}

func TestPriceBoundsValid(t *testing.T) {
	valid := Trade{EntryPrice: 100, HighestPrice: ptr(105), LowestPrice: ptr(95)}
	assert.True(t, valid.PriceBoundsValid())

	atBounds := Trade{EntryPrice: 100, HighestPrice: ptr(100), LowestPrice: ptr(100)}
	assert.True(t, atBounds.PriceBoundsValid())

	entryAboveHigh := Trade{EntryPrice: 100, HighestPrice: ptr(98), LowestPrice: ptr(95)}
	assert.False(t, entryAboveHigh.PriceBoundsValid())

	entryBelowLow := Trade{EntryPrice: 100, HighestPrice: ptr(105), LowestPrice: ptr(101)}
	assert.False(t, entryBelowLow.PriceBoundsValid())

	missing := Trade{EntryPrice: 100, HighestPrice: ptr(105)}
	assert.False(t, missing.PriceBoundsValid())
}

func TestIsWin(t *testing.T) {
	assert.True(t, (&Trade{PnL: 0.01}).IsWin())
	assert.False(t, (&Trade{PnL: 0}).IsWin())
	assert.False(t, (&Trade{PnL: -10}).IsWin())
}
