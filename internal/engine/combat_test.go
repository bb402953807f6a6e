package engine_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuffleraid/raid-api/internal/entities"
	"github.com/shuffleraid/raid-api/internal/errors"
	"github.com/shuffleraid/raid-api/internal/testutils"
)

func TestStartCombat(t *testing.T) {
	t.Run("fixes turn order and opens the first turn", func(t *testing.T) {
		// shuffle over two players draws one roll; a 2 keeps the
		// sorted base order [guest, host]
		e := scriptedEngine(t, 2)
		s := testutils.LobbySession(t)

		next, patch, err := e.StartCombat(s, testutils.HostUID)
		require.NoError(t, err)

		assert.Equal(t, entities.StatusCombat, next.Status)
		assert.Equal(t, entities.PhasePlayers, next.Phase)
		assert.Equal(t, []string{testutils.GuestUID, testutils.HostUID}, next.TurnOrder)
		assert.Equal(t, testutils.GuestUID, next.ActiveTurnUID)

		require.Len(t, patch.AppendLog, 1)
		assert.True(t, strings.HasPrefix(patch.AppendLog[0], "The party descends. Turn order: "))
		assert.True(t, patch.ClearReady)
	})

	t.Run("only the host may start", func(t *testing.T) {
		e := scriptedEngine(t)
		s := testutils.LobbySession(t)

		_, _, err := e.StartCombat(s, testutils.GuestUID)
		require.Error(t, err)
		assert.Equal(t, errors.CodePermissionDenied, errors.GetCode(err))
	})

	t.Run("rejected once combat is running", func(t *testing.T) {
		e := scriptedEngine(t)
		s := testutils.CombatSession(t)

		_, _, err := e.StartCombat(s, testutils.HostUID)
		require.Error(t, err)
		assert.True(t, errors.IsFailedPrecondition(err))
	})
}

func readyBarrier(s *entities.Session) *entities.Session {
	for uid := range s.Players {
		s.ReadyForNext[uid] = true
	}
	return s
}

func TestDrawEncounter(t *testing.T) {
	t.Run("draws from the pool and decrements the budget", func(t *testing.T) {
		// pool pick 1 selects the Skeleton, ambush roll 2 misses
		e := scriptedEngine(t, 1, 2)
		s := readyBarrier(testutils.CombatSession(t))

		next, patch, err := e.DrawEncounter(s)
		require.NoError(t, err)

		require.NotNil(t, next.Enemy)
		assert.Equal(t, "Skeleton", next.Enemy.Name)
		assert.Equal(t, next.Enemy.MaxHP, next.Enemy.HP, "the enemy spawns at full health")
		assert.Equal(t, 12, next.Enemy.MaxHP)
		assert.Equal(t, 14, next.EncounterBudget)
		assert.Empty(t, next.ReadyForNext, "the barrier resets on draw")

		require.NotNil(t, patch.Enemy)
		require.NotNil(t, patch.EncounterBudget)
		assert.Equal(t, 14, *patch.EncounterBudget)
		assert.True(t, patch.ClearReady)
		assert.Equal(t, []string{"A Skeleton blocks the path!"}, patch.AppendLog)
	})

	t.Run("an ambush strikes the weakest player before anyone acts", func(t *testing.T) {
		// pool pick 3 selects the Abyssal Wolf, ambush roll 1 hits
		e := scriptedEngine(t, 3, 1)
		s := readyBarrier(testutils.CombatSession(t))
		s.Players[testutils.GuestUID].HP = 9

		next, patch, err := e.DrawEncounter(s)
		require.NoError(t, err)

		// wolf damage 4 against mage defense 1
		assert.Equal(t, 6, next.Players[testutils.GuestUID].HP)
		require.NotNil(t, patch.Players[testutils.GuestUID])
		require.Len(t, patch.AppendLog, 2)
		assert.Equal(t, "Ambush! The Abyssal Wolf lunges at Bob for 3 damage.", patch.AppendLog[1])
	})

	t.Run("an ambush wipe clears the enemy with the defeat", func(t *testing.T) {
		// pool pick 3 selects the Abyssal Wolf, ambush roll 1 hits
		e := scriptedEngine(t, 3, 1)
		s := readyBarrier(testutils.CombatSession(t))
		s.Players[testutils.HostUID].HP = 0
		s.Players[testutils.GuestUID].HP = 2

		next, patch, err := e.DrawEncounter(s)
		require.NoError(t, err)

		assert.Equal(t, entities.StatusDefeat, next.Status)
		assert.Nil(t, next.Enemy, "a defeated session holds no enemy")
		assert.True(t, patch.ClearEnemy)
		assert.Nil(t, patch.Enemy)
		assert.Equal(t, 0, next.Players[testutils.GuestUID].HP)
		assert.Contains(t, next.Log, "Bob has fallen!")
		assert.Contains(t, next.Log, "The party has fallen.")
	})

	t.Run("an ambush kill passes the turn off its victim", func(t *testing.T) {
		// wolf damage 4 against warrior defense 2 kills the 2 HP host
		e := scriptedEngine(t, 3, 1)
		s := readyBarrier(testutils.CombatSession(t))
		s.Players[testutils.HostUID].HP = 2

		next, patch, err := e.DrawEncounter(s)
		require.NoError(t, err)

		assert.Equal(t, 0, next.Players[testutils.HostUID].HP)
		assert.Equal(t, testutils.GuestUID, next.ActiveTurnUID)
		require.NotNil(t, patch.ActiveTurnUID)
		assert.Equal(t, testutils.GuestUID, *patch.ActiveTurnUID)

		_, _, err = e.EndTurn(next, testutils.GuestUID)
		require.NoError(t, err)
	})

	t.Run("an ambush kill on the last slot hands the round to the enemy", func(t *testing.T) {
		e := scriptedEngine(t, 3, 1)
		s := readyBarrier(testutils.CombatSession(t))
		s.ActiveTurnUID = testutils.GuestUID
		s.Players[testutils.GuestUID].HP = 2

		next, patch, err := e.DrawEncounter(s)
		require.NoError(t, err)

		assert.Equal(t, entities.PhaseEnemy, next.Phase)
		assert.Empty(t, next.ActiveTurnUID)
		require.NotNil(t, patch.Phase)
		assert.Equal(t, entities.PhaseEnemy, *patch.Phase)
	})

	t.Run("endless budget never decrements", func(t *testing.T) {
		e := scriptedEngine(t, 1, 2)
		s := readyBarrier(testutils.CombatSession(t))
		s.EncounterBudget = entities.BudgetUnlimited

		next, patch, err := e.DrawEncounter(s)
		require.NoError(t, err)
		assert.Equal(t, entities.BudgetUnlimited, next.EncounterBudget)
		assert.Nil(t, patch.EncounterBudget)
	})

	t.Run("exhausted budget is final victory", func(t *testing.T) {
		e := scriptedEngine(t)
		s := readyBarrier(testutils.CombatSession(t))
		s.EncounterBudget = 0

		next, patch, err := e.DrawEncounter(s)
		require.NoError(t, err)
		assert.Equal(t, entities.StatusFinalVictory, next.Status)
		assert.Nil(t, next.Enemy)
		require.NotNil(t, patch.Status)
		assert.Equal(t, entities.StatusFinalVictory, *patch.Status)
	})

	t.Run("rejected until the barrier is full", func(t *testing.T) {
		e := scriptedEngine(t)
		s := testutils.CombatSession(t)
		s.ReadyForNext[testutils.HostUID] = true

		_, _, err := e.DrawEncounter(s)
		require.Error(t, err)
		assert.True(t, errors.IsFailedPrecondition(err))
	})

	t.Run("rejected while an enemy is alive", func(t *testing.T) {
		e := scriptedEngine(t)
		s := readyBarrier(testutils.WithEnemy(t, testutils.CombatSession(t), "Skeleton"))

		_, _, err := e.DrawEncounter(s)
		require.Error(t, err)
		assert.True(t, errors.IsFailedPrecondition(err))
	})
}
