package game

// Difficulty keys.
const (
	DifficultyNormal      = "normal"
	DifficultyChallenging = "challenging"
)

// DifficultyPreset tunes a new game.
type DifficultyPreset struct {
	Key                string  `json:"key"`
	Name               string  `json:"name"`
	StartingCash       int64   `json:"starting_cash"`
	CompetitorStrength int     `json:"competitor_strength"`
	RDCostMultiplier   float64 `json:"rd_cost_multiplier"`
	MarketVolatility   float64 `json:"market_volatility"`
}

var presets = map[string]DifficultyPreset{
	DifficultyNormal: {
		Key:                DifficultyNormal,
		Name:               "Normal",
		StartingCash:       100000,
		CompetitorStrength: 100,
		RDCostMultiplier:   1.0,
		MarketVolatility:   1.0,
	},
	DifficultyChallenging: {
		Key:                DifficultyChallenging,
		Name:               "Challenging",
		StartingCash:       50000,
		CompetitorStrength: 150,
		RDCostMultiplier:   1.5,
		MarketVolatility:   1.8,
	},
}

// Preset returns the preset for key, falling back to normal for unknown keys.
func Preset(key string) DifficultyPreset {
	if p, ok := presets[key]; ok {
		return p
	}
	return presets[DifficultyNormal]
}
