package entities

// AbilityKind classifies how an ability resolves
type AbilityKind string

// Ability kinds
const (
	AbilityBasic   AbilityKind = "basic"
	AbilityAttack  AbilityKind = "attack"
	AbilitySupport AbilityKind = "support"
)

// Effect is the support-ability semantic
type Effect string

// Support effects
const (
	EffectNone     Effect = ""
	EffectHeal     Effect = "heal"
	EffectEnergize Effect = "energize"
	EffectGuard    Effect = "guard"
	EffectShield   Effect = "shield"
	EffectEvasion  Effect = "evasion"
)

// TargetRequirement declares what a support ability must be aimed at
type TargetRequirement string

// Target requirements
const (
	TargetNone TargetRequirement = "none"
	TargetSelf TargetRequirement = "self"
	TargetAlly TargetRequirement = "ally"
)

// Ability is a priced action with an effect. Attack abilities apply
// max(1, power - enemy defense) per hit; support abilities apply Effect
// with Power as magnitude.
type Ability struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Kind     AbilityKind       `json:"kind"`
	Cost     int               `json:"cost"`
	Cooldown int               `json:"cooldown"`
	Power    int               `json:"power"`
	Hits     int               `json:"hits,omitempty"`
	Effect   Effect            `json:"effect,omitempty"`
	Target   TargetRequirement `json:"target,omitempty"`
	// BurnTurns > 0 leaves the enemy burning for that many enemy phases
	BurnTurns int    `json:"burn_turns,omitempty"`
	Icon      string `json:"icon,omitempty"`
}

// HitCount returns the number of hits an attack resolves, never below one
func (a *Ability) HitCount() int {
	if a.Hits < 1 {
		return 1
	}
	return a.Hits
}

// CardKind classifies reward cards from the deck-based variant
type CardKind string

// Card kinds
const (
	CardAttack  CardKind = "Attack"
	CardDefend  CardKind = "Defend"
	CardHeal    CardKind = "Heal"
	CardSpecial CardKind = "Special"
)

// Card is the deck-based variant of a priced action; claimed reward cards
// are converted into granted abilities.
type Card struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Kind   CardKind `json:"kind"`
	Value  int      `json:"value"`
	Cost   int      `json:"cost"`
	Flavor string   `json:"flavor,omitempty"`
	Icon   string   `json:"icon,omitempty"`
}

// EnemyBehavior tags per-turn resolution quirks of an enemy template
type EnemyBehavior string

// Enemy behaviors
const (
	BehaviorNone       EnemyBehavior = ""
	BehaviorRegenerate EnemyBehavior = "regenerate"
	BehaviorLifesteal  EnemyBehavior = "lifesteal"
)
