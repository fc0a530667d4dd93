package nav

// Config holds the follower's tunables. Distances are world units, speeds
// units per second, rates per second.
type Config struct {
	MaxSpeed         float64 `yaml:"max_speed"`
	MinSpeed         float64 `yaml:"min_speed"`
	SlowDownDistance float64 `yaml:"slow_down_distance"`
	RotationRate     float64 `yaml:"rotation_rate"`

	// AcceptanceRadius is the planar distance at which a ground point counts
	// as reached.
	AcceptanceRadius float64 `yaml:"acceptance_radius"`
	// JumpImminentRadius stops translation before a jump point so the agent
	// can align with the link.
	JumpImminentRadius float64 `yaml:"jump_imminent_radius"`
	// LandingRadius is how close to the landing point a grounded agent must be
	// for the jump to count as landed.
	LandingRadius float64 `yaml:"landing_radius"`

	LaunchAlignment  float64 `yaml:"launch_alignment"`
	LandingAlignment float64 `yaml:"landing_alignment"`

	JumpApexHeight float64 `yaml:"jump_apex_height"`
	Gravity        float64 `yaml:"gravity"`
	MaxLaunchSpeed float64 `yaml:"max_launch_speed"`
	// MaxFlightTime bounds how long a grounded agent may sit outside the
	// landing radius before it walks the rest of the link.
	MaxFlightTime float64 `yaml:"max_flight_time"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		MaxSpeed:           500,
		MinSpeed:           300,
		SlowDownDistance:   200,
		RotationRate:       8,
		AcceptanceRadius:   20,
		JumpImminentRadius: 40,
		LandingRadius:      80,
		LaunchAlignment:    0.99,
		LandingAlignment:   0.95,
		JumpApexHeight:     150,
		Gravity:            980,
		MaxLaunchSpeed:     2000,
		MaxFlightTime:      3,
	}
}

// CommandedSpeed returns the steering speed for a planar distance to the
// segment end: full speed outside the slow-down distance, otherwise linearly
// interpolated from MinSpeed (at zero) to MaxSpeed.
func (c Config) CommandedSpeed(distance float64) float64 {
	if c.SlowDownDistance <= 0 || distance >= c.SlowDownDistance {
		return c.MaxSpeed
	}
	t := distance / c.SlowDownDistance
	if t < 0 {
		t = 0
	}
	return c.MinSpeed + (c.MaxSpeed-c.MinSpeed)*t
}
