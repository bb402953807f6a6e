// Package catalog exposes the static hero class, enemy template, reward
// card, and difficulty definitions. Lookups are read-only; a missing id is
// a configuration error surfaced at wiring time, never a runtime condition
// to recover from.
package catalog

import (
	"github.com/shuffleraid/raid-api/internal/entities"
	"github.com/shuffleraid/raid-api/internal/errors"
)

// HeroClass is the immutable definition a player state is derived from
type HeroClass struct {
	Name      string
	HP        int
	Defense   int
	Energy    int
	Icon      string
	Abilities []entities.Ability
}

// Ability returns the class ability with the given id
func (c *HeroClass) Ability(id string) (*entities.Ability, error) {
	for i := range c.Abilities {
		if c.Abilities[i].ID == id {
			return &c.Abilities[i], nil
		}
	}
	return nil, errors.NotFoundf("class %s has no ability %q", c.Name, id)
}

// EnemyTemplate is drawn at encounter time and instantiated at full health
type EnemyTemplate struct {
	Name     string
	HP       int
	Damage   int
	Defense  int
	Icon     string
	Behavior entities.EnemyBehavior
}

// Instantiate builds a fresh enemy state from the template
func (t *EnemyTemplate) Instantiate() *entities.Enemy {
	return &entities.Enemy{
		Name:               t.Name,
		HP:                 t.HP,
		MaxHP:              t.HP,
		Damage:             t.Damage,
		Defense:            t.Defense,
		Icon:               t.Icon,
		Behavior:           t.Behavior,
		DamageContribution: make(map[string]int),
	}
}

// Difficulty fixes the encounter budget for a session
type Difficulty struct {
	Name    string
	Budget  int
	Rewards bool
}

var classes = map[string]*HeroClass{
	"Warrior": {
		Name: "Warrior", HP: 15, Defense: 2, Energy: 5, Icon: "shield-halved",
		Abilities: []entities.Ability{
			{ID: "base", Name: "Strike", Kind: entities.AbilityBasic, Cost: 1, Cooldown: 0, Power: 3, Icon: "hand-fist"},
			{ID: "offense", Name: "Mighty Blow", Kind: entities.AbilityAttack, Cost: 3, Cooldown: 2, Power: 6, Icon: "sword"},
			{ID: "support", Name: "Intervene", Kind: entities.AbilitySupport, Cost: 2, Cooldown: 2, Power: 2,
				Effect: entities.EffectGuard, Target: entities.TargetAlly, Icon: "shield-heart"},
		},
	},
	"Mage": {
		Name: "Mage", HP: 15, Defense: 1, Energy: 5, Icon: "wand-sparkles",
		Abilities: []entities.Ability{
			{ID: "base", Name: "Spark", Kind: entities.AbilityBasic, Cost: 1, Cooldown: 0, Power: 3, Icon: "sparkles"},
			{ID: "offense", Name: "Incinerate", Kind: entities.AbilityAttack, Cost: 3, Cooldown: 2, Power: 3,
				BurnTurns: 2, Icon: "fire"},
			{ID: "support", Name: "Arcane Ward", Kind: entities.AbilitySupport, Cost: 2, Cooldown: 2, Power: 2,
				Effect: entities.EffectShield, Target: entities.TargetSelf, Icon: "shield-halved"},
		},
	},
	"Hunter": {
		Name: "Hunter", HP: 15, Defense: 1, Energy: 5, Icon: "crosshairs",
		Abilities: []entities.Ability{
			{ID: "base", Name: "Arrow", Kind: entities.AbilityBasic, Cost: 1, Cooldown: 0, Power: 3, Icon: "location-arrow"},
			{ID: "offense", Name: "Multishot", Kind: entities.AbilityAttack, Cost: 3, Cooldown: 2, Power: 2,
				Hits: 2, Icon: "arrows-to-eye"},
			{ID: "support", Name: "Distract", Kind: entities.AbilitySupport, Cost: 2, Cooldown: 2,
				Effect: entities.EffectEvasion, Target: entities.TargetSelf, Icon: "bullseye"},
		},
	},
}

var enemies = []EnemyTemplate{
	{Name: "Skeleton", HP: 12, Damage: 2, Defense: 1, Icon: "skeleton", Behavior: entities.BehaviorRegenerate},
	{Name: "Specter", HP: 10, Damage: 3, Defense: 0, Icon: "ghost", Behavior: entities.BehaviorLifesteal},
	{Name: "Abyssal Wolf", HP: 8, Damage: 4, Defense: 0, Icon: "dog"},
	{Name: "Minotaur", HP: 20, Damage: 5, Defense: 2, Icon: "vihara"},
}

var rewardCards = []entities.Card{
	{ID: "extra1", Name: "Holy Nova", Kind: entities.CardHeal, Value: 20, Cost: 3, Flavor: "Blinding light heals all.", Icon: "sun"},
	{ID: "extra2", Name: "Dragon Breath", Kind: entities.CardAttack, Value: 25, Cost: 4, Flavor: "Incinerate your foes.", Icon: "dragon"},
	{ID: "extra3", Name: "Shadow Cloak", Kind: entities.CardDefend, Value: 15, Cost: 2, Flavor: "Become untraceable.", Icon: "mask"},
	{ID: "extra4", Name: "Execution", Kind: entities.CardSpecial, Value: 30, Cost: 5, Flavor: "A final, lethal strike.", Icon: "skull"},
}

// DefaultDifficulty is used when a session is created without one.
const DefaultDifficulty = "normal"

var difficulties = map[string]*Difficulty{
	"easy":    {Name: "easy", Budget: 10},
	"normal":  {Name: "normal", Budget: 15},
	"hard":    {Name: "hard", Budget: 20, Rewards: true},
	"endless": {Name: "endless", Budget: entities.BudgetUnlimited},
}

// Class returns the hero class definition for the given name
func Class(name string) (*HeroClass, error) {
	c, ok := classes[name]
	if !ok {
		return nil, errors.NotFoundf("unknown hero class %q", name)
	}
	return c, nil
}

// ClassNames returns the available class names
func ClassNames() []string {
	return []string{"Warrior", "Mage", "Hunter"}
}

// Enemies returns the enemy template pool
func Enemies() []EnemyTemplate {
	return enemies
}

// RewardCards returns the reward card pool
func RewardCards() []entities.Card {
	return rewardCards
}

// RewardCard returns the reward card with the given id
func RewardCard(id string) (*entities.Card, error) {
	for i := range rewardCards {
		if rewardCards[i].ID == id {
			return &rewardCards[i], nil
		}
	}
	return nil, errors.NotFoundf("unknown reward card %q", id)
}

// ByDifficulty returns the difficulty definition for the given name
func ByDifficulty(name string) (*Difficulty, error) {
	d, ok := difficulties[name]
	if !ok {
		return nil, errors.NotFoundf("unknown difficulty %q", name)
	}
	return d, nil
}

// NewPlayer derives a fresh player state from a class definition
func NewPlayer(uid, name, className string, role entities.Role) (*entities.Player, error) {
	class, err := Class(className)
	if err != nil {
		return nil, err
	}
	return &entities.Player{
		UID:       uid,
		Name:      name,
		Class:     class.Name,
		Role:      role,
		HP:        class.HP,
		MaxHP:     class.HP,
		Energy:    class.Energy,
		MaxEnergy: class.Energy,
		Defense:   class.Defense,
		Cooldowns: make(map[string]int),
	}, nil
}
