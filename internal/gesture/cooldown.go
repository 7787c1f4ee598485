package gesture

import "time"

// DefaultCooldown is the minimum gap between two discrete actions.
const DefaultCooldown = 500 * time.Millisecond

// Cooldown gates discrete actions. An action may fire only when strictly
// more than Window has passed since Last. The zero Last never blocks.
type Cooldown struct {
	Last   time.Time
	Window time.Duration
}

// Ready reports whether an action may fire at now.
func (c *Cooldown) Ready(now time.Time) bool {
	return c.Last.IsZero() || now.Sub(c.Last) > c.Window
}

// Mark records a firing at now.
func (c *Cooldown) Mark(now time.Time) {
	c.Last = now
}
