package units

import (
	"errors"
	"fmt"
	"math"

	"github.com/talgya/hexfront/internal/world"
)

// MoveConfig holds movement tuning shared by every unit.
type MoveConfig struct {
	Speed         float64 // World units per second
	ArriveEpsilon float64 // Snap distance at each waypoint
	TurnSpeed     float64 // Radians per second
}

// DefaultMoveConfig returns the standard movement tuning.
func DefaultMoveConfig() MoveConfig {
	return MoveConfig{
		Speed:         5.0,
		ArriveEpsilon: 0.1,
		TurnSpeed:     6.0,
	}
}

// Validate checks the movement tuning.
func (c MoveConfig) Validate() error {
	var errs []error
	if c.Speed <= 0 {
		errs = append(errs, fmt.Errorf("speed %v must be positive", c.Speed))
	}
	if c.ArriveEpsilon <= 0 {
		errs = append(errs, fmt.Errorf("arrive epsilon %v must be positive", c.ArriveEpsilon))
	}
	if c.TurnSpeed <= 0 {
		errs = append(errs, fmt.Errorf("turn speed %v must be positive", c.TurnSpeed))
	}
	return errors.Join(errs...)
}

// SetPath replaces the unit's route. A non-empty path starts the unit moving
// toward its first waypoint; an empty one leaves it idle where it stands.
func (u *Unit) SetPath(path []*world.Tile) {
	u.owed = 0
	if len(path) == 0 {
		u.target = nil
		u.path = nil
		u.State = StateIdle
		return
	}
	u.target = path[0]
	u.path = append([]*world.Tile(nil), path[1:]...)
	u.State = StateMoving
}

// Stop clears the route without moving the unit.
func (u *Unit) Stop() {
	u.SetPath(nil)
}

// Advance moves the unit dt seconds along its route. Distance left over after
// reaching a waypoint is spent on the next one, so the total distance covered
// per second is Speed regardless of the frame rate. A waypoint closer than
// ArriveEpsilon is snapped to only while budget remains, and any distance the
// snap overdraws is charged to the next call. Non-finite or non-positive dt
// is ignored.
func (u *Unit) Advance(dt float64, cfg MoveConfig) {
	if u.State != StateMoving || !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	budget := cfg.Speed*dt - u.owed
	u.owed = 0

	for u.target != nil {
		dest := u.target.Center
		d := u.Pos.Dist(dest)
		if d > cfg.ArriveEpsilon {
			u.TargetHeading = headingTo(u.Pos, dest)
		}

		if d <= budget || (d < cfg.ArriveEpsilon && budget > 0) {
			budget -= d
			u.Pos = dest
			u.nextWaypoint()
			continue
		}
		if budget <= 0 {
			break
		}

		f := budget / d
		u.Pos = world.Point{
			X: u.Pos.X + (dest.X-u.Pos.X)*f,
			Z: u.Pos.Z + (dest.Z-u.Pos.Z)*f,
		}
		budget = 0
		break
	}
	if budget < 0 && u.State == StateMoving {
		u.owed = -budget
	}

	u.Heading = turnToward(u.Heading, u.TargetHeading, cfg.TurnSpeed*dt)
}

// nextWaypoint pops the next tile off the route, or idles the unit.
func (u *Unit) nextWaypoint() {
	if len(u.path) == 0 {
		u.target = nil
		u.path = nil
		u.owed = 0
		u.State = StateIdle
		return
	}
	u.target = u.path[0]
	u.path = u.path[1:]
}

// headingTo returns the angle from a toward b in the X-Z plane.
func headingTo(a, b world.Point) float64 {
	return math.Atan2(b.Z-a.Z, b.X-a.X)
}

// turnToward rotates heading toward target by at most maxStep radians.
func turnToward(heading, target, maxStep float64) float64 {
	diff := normalizeAngle(target - heading)
	if math.Abs(diff) <= maxStep {
		return normalizeAngle(target)
	}
	if diff > 0 {
		return normalizeAngle(heading + maxStep)
	}
	return normalizeAngle(heading - maxStep)
}

// normalizeAngle wraps an angle to [-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
