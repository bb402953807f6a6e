package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuffleraid/raid-api/internal/catalog"
	"github.com/shuffleraid/raid-api/internal/engine"
	"github.com/shuffleraid/raid-api/internal/entities"
	"github.com/shuffleraid/raid-api/internal/pkg/roller"
	"github.com/shuffleraid/raid-api/internal/testutils"
)

// scriptRoller feeds predetermined rolls so a test controls every random
// outcome the engine draws
type scriptRoller struct {
	t     *testing.T
	rolls []int
}

func (r *scriptRoller) Roll(_ int) (int, error) {
	require.NotEmpty(r.t, r.rolls, "engine drew more rolls than scripted")
	v := r.rolls[0]
	r.rolls = r.rolls[1:]
	return v, nil
}

func (r *scriptRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		v, err := r.Roll(size)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// scriptedEngine builds an engine whose rolls are fully predetermined
func scriptedEngine(t *testing.T, rolls ...int) *engine.Engine {
	t.Helper()
	e, err := engine.New(&engine.Config{Roller: &scriptRoller{t: t, rolls: rolls}})
	require.NoError(t, err)
	return e
}

// seededEngine builds an engine on the production roller with a pinned seed
func seededEngine(t *testing.T, seed int64) *engine.Engine {
	t.Helper()
	e, err := engine.New(&engine.Config{Roller: roller.NewSeeded(seed)})
	require.NoError(t, err)
	return e
}

func TestNew_RequiresRoller(t *testing.T) {
	_, err := engine.New(&engine.Config{})
	require.Error(t, err)
}

func TestStartCombat_PermutationCoverage(t *testing.T) {
	// with three players every one of the six orderings should show up
	// in a modest sample if the shuffle is unbiased
	e := seededEngine(t, 7)

	base := testutils.LobbySession(t)
	third, err := catalog.NewPlayer("player-third", "Cara", "Hunter", entities.RoleGuest)
	require.NoError(t, err)
	third.Ready = true
	base.Players[third.UID] = third

	seen := make(map[string]bool)
	for i := 0; i < 300; i++ {
		next, _, err := e.StartCombat(base, testutils.HostUID)
		require.NoError(t, err)
		require.Len(t, next.TurnOrder, 3)

		key := next.TurnOrder[0] + "|" + next.TurnOrder[1] + "|" + next.TurnOrder[2]
		seen[key] = true
	}
	assert.Len(t, seen, 6, "every permutation of three players should occur")
}

func TestStartCombat_RejectionIsNoOp(t *testing.T) {
	e := seededEngine(t, 1)

	s := testutils.LobbySession(t)
	s.Players[testutils.GuestUID].Ready = false
	before := s.Clone()

	_, _, err := e.StartCombat(s, testutils.HostUID)
	require.Error(t, err)
	assert.Equal(t, before, s, "a rejected intent must not touch the session")
}
