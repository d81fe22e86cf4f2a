package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceCreateNormalizesSymbol(t *testing.T) {
	db := openTestDB(t)
	pies := NewPieService(db)
	slices := NewSliceService(db)

	pie := createPie(t, pies, 1, "Tech", "50")

	sl, err := slices.Create(pie.ID, 1, CreateSliceInput{
		Symbol:       "  aapl ",
		Name:         "Apple",
		TargetWeight: dec(t, "60"),
	})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", sl.Symbol)
	assert.True(t, sl.IsActive)
	assert.Equal(t, 0, sl.DisplayOrder)
}

func TestSliceDuplicateSymbolRejected(t *testing.T) {
	db := openTestDB(t)
	pies := NewPieService(db)
	slices := NewSliceService(db)

	pie := createPie(t, pies, 1, "Tech", "50")
	createSlice(t, slices, pie.ID, 1, "AAPL", "60")

	// case-insensitive through normalization
	_, err := slices.Create(pie.ID, 1, CreateSliceInput{Symbol: "aapl", TargetWeight: dec(t, "40")})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "AAPL")
}

func TestSliceSameSymbolAcrossPies(t *testing.T) {
	db := openTestDB(t)
	pies := NewPieService(db)
	slices := NewSliceService(db)

	a := createPie(t, pies, 1, "Growth", "50")
	b := createPie(t, pies, 1, "Income", "50")

	createSlice(t, slices, a.ID, 1, "AAPL", "100")
	// uniqueness is scoped to the pie
	createSlice(t, slices, b.ID, 1, "AAPL", "100")
}

func TestSliceCreateForeignPie(t *testing.T) {
	db := openTestDB(t)
	pies := NewPieService(db)
	slices := NewSliceService(db)

	pie := createPie(t, pies, 1, "Tech", "50")

	_, err := slices.Create(pie.ID, 2, CreateSliceInput{Symbol: "AAPL", TargetWeight: dec(t, "10")})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSliceUpdateSymbolDuplicateCheck(t *testing.T) {
	db := openTestDB(t)
	pies := NewPieService(db)
	slices := NewSliceService(db)

	pie := createPie(t, pies, 1, "Tech", "50")
	createSlice(t, slices, pie.ID, 1, "AAPL", "60")
	msft := createSlice(t, slices, pie.ID, 1, "MSFT", "40")

	// renaming onto a taken symbol fails
	symbol := "AAPL"
	_, err := slices.Update(msft.ID, 1, SlicePatch{Symbol: &symbol})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// re-submitting its own symbol is not a duplicate
	symbol = "msft"
	updated, err := slices.Update(msft.ID, 1, SlicePatch{Symbol: &symbol})
	require.NoError(t, err)
	assert.Equal(t, "MSFT", updated.Symbol)
}

func TestSliceUpdateWeight(t *testing.T) {
	db := openTestDB(t)
	pies := NewPieService(db)
	slices := NewSliceService(db)

	pie := createPie(t, pies, 1, "Tech", "50")
	sl := createSlice(t, slices, pie.ID, 1, "AAPL", "60")

	weight := dec(t, "25.5")
	updated, err := slices.Update(sl.ID, 1, SlicePatch{TargetWeight: &weight})
	require.NoError(t, err)
	assert.True(t, updated.TargetWeight.Equal(weight))
	// untouched fields survive a partial update
	assert.Equal(t, "AAPL", updated.Symbol)
}

func TestSliceGetScopedToPie(t *testing.T) {
	db := openTestDB(t)
	pies := NewPieService(db)
	slices := NewSliceService(db)

	a := createPie(t, pies, 1, "Growth", "50")
	b := createPie(t, pies, 1, "Income", "50")
	sl := createSlice(t, slices, a.ID, 1, "AAPL", "100")

	got, err := slices.Get(sl.ID, a.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, sl.ID, got.ID)

	// right slice, wrong pie in the path
	_, err = slices.Get(sl.ID, b.ID, 1)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	// foreign user never sees it
	_, err = slices.Get(sl.ID, a.ID, 2)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSliceDelete(t *testing.T) {
	db := openTestDB(t)
	pies := NewPieService(db)
	slices := NewSliceService(db)

	pie := createPie(t, pies, 1, "Tech", "50")
	sl := createSlice(t, slices, pie.ID, 1, "AAPL", "100")

	deleted, err := slices.Delete(sl.ID, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = slices.Delete(sl.ID, 1)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSliceReorder(t *testing.T) {
	db := openTestDB(t)
	pies := NewPieService(db)
	slices := NewSliceService(db)

	pie := createPie(t, pies, 1, "Tech", "50")
	a := createSlice(t, slices, pie.ID, 1, "AAPL", "40")
	b := createSlice(t, slices, pie.ID, 1, "MSFT", "30")
	c := createSlice(t, slices, pie.ID, 1, "NVDA", "30")

	require.NoError(t, slices.Reorder(pie.ID, 1, []string{c.ID, b.ID, a.ID}))

	listed, err := slices.List(pie.ID, 1, false)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "NVDA", listed[0].Symbol)
	assert.Equal(t, "MSFT", listed[1].Symbol)
	assert.Equal(t, "AAPL", listed[2].Symbol)

	// reordering a pie you do not own is NotFound, not a silent no-op
	err = slices.Reorder(pie.ID, 2, []string{a.ID})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSliceListIncludeInactive(t *testing.T) {
	db := openTestDB(t)
	pies := NewPieService(db)
	slices := NewSliceService(db)

	pie := createPie(t, pies, 1, "Tech", "50")
	createSlice(t, slices, pie.ID, 1, "AAPL", "60")
	msft := createSlice(t, slices, pie.ID, 1, "MSFT", "40")

	inactive := false
	_, err := slices.Update(msft.ID, 1, SlicePatch{IsActive: &inactive})
	require.NoError(t, err)

	listed, err := slices.List(pie.ID, 1, false)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "AAPL", listed[0].Symbol)

	listed, err = slices.List(pie.ID, 1, true)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
