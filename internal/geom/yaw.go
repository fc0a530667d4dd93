package geom

import "math"

// YawOf returns the planar heading of dir in radians (0 = +X, pi/2 = +Y).
func YawOf(dir Vec3) float64 {
	return math.Atan2(dir.Y, dir.X)
}

// Forward returns the unit planar forward vector for a yaw.
func Forward(yaw float64) Vec3 {
	return Vec3{X: math.Cos(yaw), Y: math.Sin(yaw)}
}

// NormalizeAngle wraps an angle to [-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// InterpYaw moves current toward target along the shortest arc by a fraction
// dt*rate of the remaining difference. A non-positive rate snaps to target.
func InterpYaw(current, target, dt, rate float64) float64 {
	if rate <= 0 {
		return NormalizeAngle(target)
	}
	diff := NormalizeAngle(target - current)
	if math.Abs(diff) < 1e-6 {
		return NormalizeAngle(target)
	}
	return NormalizeAngle(current + diff*Clamp01(dt*rate))
}
