package park

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = 1.0 / 60.0

func TestNewWorldSpawns(t *testing.T) {
	layout := DefaultLayout()
	w := NewWorld(layout)

	assert.Equal(t, layout.KeeperHome, w.KeeperPosition())
	assert.Equal(t, layout.GooseSpawn, w.GoosePosition())
	assert.Equal(t, layout.AppleSpawn, w.ApplePosition())
	assert.False(t, w.GooseHasApple())
	assert.Zero(t, w.Score())
}

func TestAppleScoresOncePerDelivery(t *testing.T) {
	w := NewWorld(DefaultLayout())

	w.SetGoosePosition(w.Layout().AppleSpawn)
	w.Step(dt)
	require.True(t, w.GooseHasApple())
	assert.False(t, w.ConsumeAppleScored())

	w.SetGoosePosition(cp.Vector{})
	w.Step(dt)
	assert.Equal(t, cp.Vector{}, w.ApplePosition())
	require.True(t, w.ConsumeAppleScored())
	assert.False(t, w.ConsumeAppleScored(), "report must clear after being consumed")

	w.Step(dt)
	assert.False(t, w.ConsumeAppleScored(), "apple already delivered")

	w.ReturnApple()
	assert.False(t, w.GooseHasApple())
	assert.Equal(t, w.Layout().AppleSpawn, w.ApplePosition())
}

func TestKeeperForceMovesKeeper(t *testing.T) {
	w := NewWorld(DefaultLayout())
	start := w.KeeperPosition()

	for i := 0; i < 30; i++ {
		w.ApplyKeeperForce(cp.Vector{X: -50})
		w.Step(dt)
	}
	assert.Less(t, w.KeeperPosition().X, start.X)

	w.SetKeeperPosition(w.KeeperHome())
	assert.Equal(t, w.KeeperHome(), w.KeeperPosition())
}

func TestMoveGoose(t *testing.T) {
	w := NewWorld(DefaultLayout())
	start := w.GoosePosition()

	w.MoveGoose(cp.Vector{X: 1})
	w.Step(dt)
	assert.Greater(t, w.GoosePosition().X, start.X)

	w.MoveGoose(cp.Vector{})
	before := w.GoosePosition()
	w.Step(dt)
	assert.Equal(t, before, w.GoosePosition())
}

func TestLineOfSight(t *testing.T) {
	w := NewWorld(DefaultLayout())

	assert.True(t, w.LineOfSight(cp.Vector{X: -20, Y: 0}, cp.Vector{X: 20, Y: 0}))
	// the wall at x -40..-30 spans y 20..90
	assert.False(t, w.LineOfSight(cp.Vector{X: -60, Y: 50}, cp.Vector{X: 0, Y: 50}))
}

func TestResetRestoresScene(t *testing.T) {
	w := NewWorld(DefaultLayout())
	w.AddScore(30)
	w.SetGoosePosition(w.Layout().AppleSpawn)
	w.Step(dt)
	require.True(t, w.GooseHasApple())

	w.Reset()
	assert.Zero(t, w.Score())
	assert.False(t, w.GooseHasApple())
	assert.Equal(t, w.Layout().GooseSpawn, w.GoosePosition())
}

func TestTeleportThenStepAndQuery(t *testing.T) {
	w := NewWorld(DefaultLayout())

	w.SetKeeperPosition(cp.Vector{})
	assert.Equal(t, cp.Vector{}, w.KeeperPosition())
	w.Step(dt)
	assert.Equal(t, cp.Vector{}, w.KeeperPosition(), "teleported keeper has no leftover velocity")
	// actors never block sight
	assert.True(t, w.LineOfSight(cp.Vector{X: -20}, cp.Vector{X: 20}))

	// overlapping actors are pushed apart once the space sees their new spots
	w.SetGoosePosition(cp.Vector{X: 2})
	for i := 0; i < 10; i++ {
		w.Step(dt)
	}
	assert.Greater(t, w.KeeperPosition().DistanceSq(w.GoosePosition()), 4.0)
}
