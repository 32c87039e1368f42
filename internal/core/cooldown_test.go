package core_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"recipepic.dev/recipe-pic-gen/internal/core"
)

func TestCooldownWindow(t *testing.T) {
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c := core.NewCooldown(5*time.Second, core.WithClock(func() time.Time { return current }))

	gt.Equal(t, c.Active(), false)
	gt.Equal(t, c.Remaining(), time.Duration(0))

	c.Arm()
	gt.Equal(t, c.Active(), true)
	gt.Equal(t, c.Remaining(), 5*time.Second)

	current = current.Add(4999 * time.Millisecond)
	gt.Equal(t, c.Active(), true)
	gt.Equal(t, c.Remaining(), time.Millisecond)

	current = current.Add(time.Millisecond)
	gt.Equal(t, c.Active(), false)
	gt.Equal(t, c.Remaining(), time.Duration(0))
}

func TestCooldownRearm(t *testing.T) {
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c := core.NewCooldown(5*time.Second, core.WithClock(func() time.Time { return current }))

	c.Arm()
	current = current.Add(3 * time.Second)
	c.Arm() // the window restarts from the latest submission

	gt.Equal(t, c.Remaining(), 5*time.Second)
}

func TestCooldownZeroWindow(t *testing.T) {
	c := core.NewCooldown(0)
	c.Arm()
	gt.Equal(t, c.Active(), false)
}
