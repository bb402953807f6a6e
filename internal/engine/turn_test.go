package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuffleraid/raid-api/internal/entities"
	"github.com/shuffleraid/raid-api/internal/errors"
	"github.com/shuffleraid/raid-api/internal/testutils"
)

func TestEndTurn(t *testing.T) {
	t.Run("advances to the next living player", func(t *testing.T) {
		e := scriptedEngine(t)
		s := testutils.CombatSession(t)

		next, patch, err := e.EndTurn(s, testutils.HostUID)
		require.NoError(t, err)
		assert.Equal(t, testutils.GuestUID, next.ActiveTurnUID)
		assert.Equal(t, entities.PhasePlayers, next.Phase)
		require.NotNil(t, patch.ActiveTurnUID)
		assert.Equal(t, testutils.GuestUID, *patch.ActiveTurnUID)
	})

	t.Run("skips downed players", func(t *testing.T) {
		e := scriptedEngine(t)
		s := testutils.CombatSession(t)
		s.Players[testutils.GuestUID].HP = 0

		next, _, err := e.EndTurn(s, testutils.HostUID)
		require.NoError(t, err)
		assert.Equal(t, entities.PhaseEnemy, next.Phase)
		assert.Empty(t, next.ActiveTurnUID)
	})

	t.Run("the last living slot hands the round to the enemy", func(t *testing.T) {
		e := scriptedEngine(t)
		s := testutils.CombatSession(t)
		s.ActiveTurnUID = testutils.GuestUID

		next, patch, err := e.EndTurn(s, testutils.GuestUID)
		require.NoError(t, err)
		assert.Equal(t, entities.PhaseEnemy, next.Phase)
		require.NotNil(t, patch.Phase)
		assert.Equal(t, entities.PhaseEnemy, *patch.Phase)
	})

	t.Run("a non-active player is rejected without effect", func(t *testing.T) {
		e := scriptedEngine(t)
		s := testutils.CombatSession(t)
		before := s.Clone()

		_, _, err := e.EndTurn(s, testutils.GuestUID)
		require.Error(t, err)
		assert.True(t, errors.IsFailedPrecondition(err))
		assert.Equal(t, before, s)
	})
}

func enemyPhase(t *testing.T, enemyName string) *entities.Session {
	s := testutils.WithEnemy(t, testutils.CombatSession(t), enemyName)
	s.Phase = entities.PhaseEnemy
	s.ActiveTurnUID = ""
	return s
}

func TestResolveEnemy(t *testing.T) {
	t.Run("the enemy strikes the top damage contributor", func(t *testing.T) {
		// focus roll 2 keeps threat targeting
		e := scriptedEngine(t, 2)
		s := enemyPhase(t, "Skeleton")
		s.Enemy.DamageContribution[testutils.GuestUID] = 5

		next, patch, err := e.ResolveEnemy(s)
		require.NoError(t, err)

		// skeleton damage 2 against mage defense 1
		assert.Equal(t, 14, next.Players[testutils.GuestUID].HP)
		assert.Equal(t, 15, next.Players[testutils.HostUID].HP)
		require.NotNil(t, patch.Players[testutils.GuestUID])
	})

	t.Run("a focus roll of 1 targets the weakest instead", func(t *testing.T) {
		e := scriptedEngine(t, 1)
		s := enemyPhase(t, "Skeleton")
		s.Enemy.DamageContribution[testutils.GuestUID] = 5
		s.Players[testutils.HostUID].HP = 4

		next, _, err := e.ResolveEnemy(s)
		require.NoError(t, err)

		// skeleton damage 2 against warrior defense 2, floor 1
		assert.Equal(t, 3, next.Players[testutils.HostUID].HP)
		assert.Equal(t, 15, next.Players[testutils.GuestUID].HP)
	})

	t.Run("guard stacks with defense, shield absorbs the rest", func(t *testing.T) {
		e := scriptedEngine(t, 2)
		s := enemyPhase(t, "Minotaur")
		target := s.Players[testutils.HostUID]
		target.Guard = 1
		target.Shield = 1

		next, _, err := e.ResolveEnemy(s)
		require.NoError(t, err)

		// minotaur damage 5 against defense 2+1, shield soaks 1 of 2
		assert.Equal(t, 14, next.Players[testutils.HostUID].HP)
	})

	t.Run("evasion dodges the whole attack", func(t *testing.T) {
		e := scriptedEngine(t, 2)
		s := enemyPhase(t, "Minotaur")
		s.Players[testutils.HostUID].Evasion = true

		next, patch, err := e.ResolveEnemy(s)
		require.NoError(t, err)
		assert.Equal(t, 15, next.Players[testutils.HostUID].HP)
		assert.Contains(t, patch.AppendLog[0], "evades")
	})

	t.Run("a wounded regenerator knits back together first", func(t *testing.T) {
		e := scriptedEngine(t, 2)
		s := enemyPhase(t, "Skeleton")
		s.Enemy.HP = 6

		next, _, err := e.ResolveEnemy(s)
		require.NoError(t, err)
		assert.Equal(t, 7, next.Enemy.HP)
	})

	t.Run("lifesteal heals what it actually dealt", func(t *testing.T) {
		e := scriptedEngine(t, 2)
		s := enemyPhase(t, "Specter")
		s.Enemy.HP = 6

		next, _, err := e.ResolveEnemy(s)
		require.NoError(t, err)

		// specter damage 3 against warrior defense 2 deals 1
		assert.Equal(t, 14, next.Players[testutils.HostUID].HP)
		assert.Equal(t, 7, next.Enemy.HP)
	})

	t.Run("burn can finish the enemy before it acts", func(t *testing.T) {
		e := scriptedEngine(t)
		s := enemyPhase(t, "Skeleton")
		s.Enemy.HP = 1
		s.Enemy.Burn = 2

		next, patch, err := e.ResolveEnemy(s)
		require.NoError(t, err)

		assert.Nil(t, next.Enemy)
		assert.True(t, patch.ClearEnemy)
		assert.Contains(t, patch.AppendLog, "The Skeleton has been defeated!")
		// nobody was attacked, the round still closes
		assert.Equal(t, entities.PhasePlayers, next.Phase)
	})

	t.Run("the round boundary refills exactly once", func(t *testing.T) {
		e := scriptedEngine(t, 2)
		s := enemyPhase(t, "Skeleton")
		host := s.Players[testutils.HostUID]
		host.Energy = 1
		host.Guard = 2
		host.Shield = 3
		host.Evasion = true
		host.Cooldowns["offense"] = 2
		s.Players[testutils.GuestUID].Cooldowns["support"] = 1

		next, _, err := e.ResolveEnemy(s)
		require.NoError(t, err)

		refreshed := next.Players[testutils.HostUID]
		assert.Equal(t, refreshed.MaxEnergy, refreshed.Energy)
		assert.Zero(t, refreshed.Guard)
		assert.Zero(t, refreshed.Shield)
		assert.False(t, refreshed.Evasion)
		assert.Equal(t, 1, refreshed.Cooldowns["offense"], "cooldowns tick down once per full round")
		assert.Equal(t, 0, next.Players[testutils.GuestUID].Cooldowns["support"])

		assert.Equal(t, entities.PhasePlayers, next.Phase)
		assert.Equal(t, testutils.HostUID, next.ActiveTurnUID)
	})

	t.Run("an empty enemy phase still closes the round", func(t *testing.T) {
		e := scriptedEngine(t)
		s := testutils.CombatSession(t)
		s.Phase = entities.PhaseEnemy
		s.ActiveTurnUID = ""
		s.Players[testutils.HostUID].Energy = 0

		next, _, err := e.ResolveEnemy(s)
		require.NoError(t, err)
		assert.Equal(t, entities.PhasePlayers, next.Phase)
		assert.Equal(t, 5, next.Players[testutils.HostUID].Energy)
	})

	t.Run("wiping the party is defeat, with no refill after", func(t *testing.T) {
		e := scriptedEngine(t, 2)
		s := enemyPhase(t, "Abyssal Wolf")
		s.Players[testutils.HostUID].HP = 2
		s.Players[testutils.HostUID].Energy = 1
		s.Players[testutils.GuestUID].HP = 0

		next, patch, err := e.ResolveEnemy(s)
		require.NoError(t, err)

		assert.Equal(t, entities.StatusDefeat, next.Status)
		require.NotNil(t, patch.Status)
		assert.Equal(t, entities.StatusDefeat, *patch.Status)
		assert.Contains(t, patch.AppendLog, "Alice has fallen!")
		assert.Equal(t, 1, next.Players[testutils.HostUID].Energy, "no round boundary after a wipe")
	})

	t.Run("rejected outside the enemy phase", func(t *testing.T) {
		e := scriptedEngine(t)
		s := testutils.CombatSession(t)

		_, _, err := e.ResolveEnemy(s)
		require.Error(t, err)
		assert.True(t, errors.IsFailedPrecondition(err))
	})
}
