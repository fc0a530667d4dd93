package perception

// Config holds the sampler tunables. Times are seconds, distances world units.
type Config struct {
	Interval float64 `yaml:"interval"`
	Jitter   float64 `yaml:"jitter"` // uniform ± deviation applied to each interval

	DetectionHalfLength float64 `yaml:"detection_half_length"`
	DetectionRadius     float64 `yaml:"detection_radius"`
	ForwardOffset       float64 `yaml:"forward_offset"`
	EyeHeight           float64 `yaml:"eye_height"`

	LKPValidity float64 `yaml:"lkp_validity"`

	FleeAngleWeight float64 `yaml:"flee_angle_weight"`
	// MinCollectibleDistance skips collectibles closer than this. Zero keeps
	// every candidate.
	MinCollectibleDistance float64 `yaml:"min_collectible_distance"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Interval:            0.15,
		Jitter:              0.02,
		DetectionHalfLength: 500,
		DetectionRadius:     250,
		ForwardOffset:       100,
		EyeHeight:           60,
		LKPValidity:         3,
		FleeAngleWeight:     100,
	}
}
