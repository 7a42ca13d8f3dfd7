package competitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/device-tycoon/internal/entropy"
	"github.com/talgya/device-tycoon/internal/game"
)

func TestGenerate(t *testing.T) {
	list := Generate(game.DifficultyNormal, entropy.NewSeeded(7))
	require.Len(t, list, 6)

	for i, c := range list {
		assert.Equal(t, Names[i], c.Name)
		assert.GreaterOrEqual(t, c.MarketShare, 10.0)
		assert.Less(t, c.MarketShare, 20.0)
		assert.GreaterOrEqual(t, c.Strength, 100.0)
		assert.Less(t, c.Strength, 130.0)
		assert.GreaterOrEqual(t, c.ActiveProducts, 1)
		assert.LessOrEqual(t, c.ActiveProducts, 5)
		assert.Equal(t, int64(50000+i*10000), c.Cash)
	}
	assert.Equal(t, "comp-0", list[0].ID)
	assert.Equal(t, []Strategy{Aggressive, Balanced, Conservative, Aggressive, Balanced, Conservative},
		[]Strategy{list[0].Strategy, list[1].Strategy, list[2].Strategy, list[3].Strategy, list[4].Strategy, list[5].Strategy})
}

func TestGenerate_ChallengingIsStronger(t *testing.T) {
	for _, c := range Generate(game.DifficultyChallenging, entropy.NewSeeded(1)) {
		assert.GreaterOrEqual(t, c.Strength, 150.0)
		assert.Less(t, c.Strength, 180.0)
	}
}

func TestGenerate_DeterministicForSeed(t *testing.T) {
	a := Generate(game.DifficultyNormal, entropy.NewSeeded(99))
	b := Generate(game.DifficultyNormal, entropy.NewSeeded(99))
	assert.Equal(t, a, b)
}

func TestEnsureInitialized_OnlyWhenEmpty(t *testing.T) {
	r := NewRoster(nil)
	assert.True(t, r.EnsureInitialized(game.DifficultyNormal, entropy.NewSeeded(1)))
	before := r.List()
	assert.False(t, r.EnsureInitialized(game.DifficultyChallenging, entropy.NewSeeded(2)))
	assert.Equal(t, before, r.List())
}

func TestUpdate_MergesOnlyGivenFields(t *testing.T) {
	r := NewRoster([]Competitor{{ID: "c1", Name: "A", Cash: 10, MarketShare: 12, Strength: 100, Strategy: Balanced}})

	share := 14.5
	got, err := r.Update("c1", Patch{MarketShare: &share})
	require.NoError(t, err)
	assert.Equal(t, Competitor{ID: "c1", Name: "A", Cash: 10, MarketShare: 14.5, Strength: 100, Strategy: Balanced}, got)

	_, err = r.Update("missing", Patch{MarketShare: &share})
	assert.ErrorIs(t, err, ErrUnknownCompetitor)
	assert.Equal(t, 1, r.Len())
}

func TestShiftShare(t *testing.T) {
	r := NewRoster([]Competitor{
		{ID: "a", MarketShare: 1},
		{ID: "b", MarketShare: 29.5},
	})

	require.NoError(t, r.ShiftShare("", -2, MaxMarketShare))
	assert.Equal(t, 0.0, r.At(0).MarketShare)
	assert.Equal(t, 27.5, r.At(1).MarketShare)

	require.NoError(t, r.ShiftShare("b", 5, MaxMarketShare))
	assert.Equal(t, MaxMarketShare, r.At(1).MarketShare)
	assert.Equal(t, 0.0, r.At(0).MarketShare)

	assert.ErrorIs(t, r.ShiftShare("zzz", 1, MaxMarketShare), ErrUnknownCompetitor)

	require.NoError(t, r.ShiftShare("a", 50, 12))
	assert.Equal(t, 12.0, r.At(0).MarketShare)
}

func TestList_ReturnsCopy(t *testing.T) {
	r := NewRoster([]Competitor{{ID: "a", MarketShare: 10}})
	l := r.List()
	l[0].MarketShare = 99
	assert.Equal(t, 10.0, r.At(0).MarketShare)
}
