package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuffleraid/raid-api/internal/catalog"
	"github.com/shuffleraid/raid-api/internal/entities"
	"github.com/shuffleraid/raid-api/internal/errors"
)

func TestClass(t *testing.T) {
	for _, name := range catalog.ClassNames() {
		class, err := catalog.Class(name)
		require.NoError(t, err)
		assert.Equal(t, name, class.Name)
		assert.Len(t, class.Abilities, 3, "every class carries base, offense, and support")

		for _, id := range []string{"base", "offense", "support"} {
			_, err := class.Ability(id)
			assert.NoError(t, err, "class %s ability %s", name, id)
		}
	}

	_, err := catalog.Class("Necromancer")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestNewPlayer(t *testing.T) {
	p, err := catalog.NewPlayer("u1", "Alice", "Warrior", entities.RoleHost)
	require.NoError(t, err)

	assert.Equal(t, "u1", p.UID)
	assert.Equal(t, entities.RoleHost, p.Role)
	assert.Equal(t, p.MaxHP, p.HP)
	assert.Equal(t, p.MaxEnergy, p.Energy)
	assert.Equal(t, 2, p.Defense)
	assert.NotNil(t, p.Cooldowns)
	assert.False(t, p.Ready)

	_, err = catalog.NewPlayer("u1", "Alice", "Bard", entities.RoleHost)
	require.Error(t, err)
}

func TestEnemyTemplate_Instantiate(t *testing.T) {
	require.NotEmpty(t, catalog.Enemies())

	for _, tmpl := range catalog.Enemies() {
		enemy := tmpl.Instantiate()
		assert.Equal(t, tmpl.HP, enemy.HP)
		assert.Equal(t, tmpl.HP, enemy.MaxHP)
		assert.Zero(t, enemy.Burn)
		assert.NotNil(t, enemy.DamageContribution)
	}

	// instances must not share contribution maps
	a := catalog.Enemies()[0].Instantiate()
	b := catalog.Enemies()[0].Instantiate()
	a.DamageContribution["u1"] = 5
	assert.Empty(t, b.DamageContribution)
}

func TestRewardCards(t *testing.T) {
	cards := catalog.RewardCards()
	require.Len(t, cards, 4)

	card, err := catalog.RewardCard("extra2")
	require.NoError(t, err)
	assert.Equal(t, "Dragon Breath", card.Name)

	_, err = catalog.RewardCard("extra9")
	require.Error(t, err)
}

func TestByDifficulty(t *testing.T) {
	cases := []struct {
		name    string
		budget  int
		rewards bool
	}{
		{"easy", 10, false},
		{"normal", 15, false},
		{"hard", 20, true},
		{"endless", entities.BudgetUnlimited, false},
	}
	for _, tc := range cases {
		d, err := catalog.ByDifficulty(tc.name)
		require.NoError(t, err)
		assert.Equal(t, tc.budget, d.Budget)
		assert.Equal(t, tc.rewards, d.Rewards)
	}

	_, err := catalog.ByDifficulty("nightmare")
	require.Error(t, err)
}
