// Package entities provides the shared session document and its parts.
//
// A Session is the single writable shared document per active game. It is
// only ever mutated through turn-engine transitions, which return a new
// Session value plus the minimal Patch that produced it.
package entities

import (
	"time"

	"github.com/KirkDiggler/rpg-toolkit/core"
)

// Status drives which session transitions are legal
type Status string

// Session statuses
const (
	StatusWaiting      Status = "waiting"
	StatusLobby        Status = "lobby"
	StatusCombat       Status = "combat"
	StatusReward       Status = "reward"
	StatusVictory      Status = "victory"
	StatusDefeat       Status = "defeat"
	StatusFinalVictory Status = "final_victory"
)

// Terminal reports whether no further combat transitions are legal
func (s Status) Terminal() bool {
	return s == StatusDefeat || s == StatusVictory || s == StatusFinalVictory
}

// Phase is the combat sub-state, orthogonal to Status
type Phase string

// Combat phases
const (
	PhasePlayers Phase = "players"
	PhaseEnemy   Phase = "enemy"
)

// Role distinguishes the session host from guests
type Role string

// Player roles
const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// Mode is the session game mode
type Mode string

// Session modes
const (
	ModeCampaign   Mode = "campaign"
	ModeIndividual Mode = "individual"
	ModeMulti      Mode = "multi"
)

// BudgetUnlimited is the encounter budget sentinel for endless sessions
const BudgetUnlimited = -1

// MaxPlayers bounds the party size
const MaxPlayers = 4

// Player is the per-participant state, owned exclusively by the session
type Player struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	Class     string `json:"class"`
	Role      Role   `json:"role"`
	Ready     bool   `json:"ready"`
	HP        int    `json:"hp"`
	MaxHP     int    `json:"max_hp"`
	Energy    int    `json:"energy"`
	MaxEnergy int    `json:"max_energy"`
	Defense   int    `json:"defense"`
	// Cooldowns maps ability id to remaining turns
	Cooldowns map[string]int `json:"cooldowns"`

	// Transient combat buffs, cleared when the enemy phase resolves
	Guard   int  `json:"guard,omitempty"`
	Shield  int  `json:"shield,omitempty"`
	Evasion bool `json:"evasion,omitempty"`

	// Extra abilities granted by claimed reward cards
	Extra []Ability `json:"extra,omitempty"`
}

// GetID implements core.Entity
func (p *Player) GetID() string { return p.UID }

// GetType implements core.Entity
func (p *Player) GetType() string { return "player" }

// Alive reports whether the player still participates in combat
func (p *Player) Alive() bool { return p.HP > 0 }

// Clone returns a deep copy of the player
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Cooldowns = make(map[string]int, len(p.Cooldowns))
	for k, v := range p.Cooldowns {
		cp.Cooldowns[k] = v
	}
	if p.Extra != nil {
		cp.Extra = make([]Ability, len(p.Extra))
		copy(cp.Extra, p.Extra)
	}
	return &cp
}

// Enemy is the current encounter opponent; nil between encounters
type Enemy struct {
	Name     string        `json:"name"`
	HP       int           `json:"hp"`
	MaxHP    int           `json:"max_hp"`
	Damage   int           `json:"damage"`
	Defense  int           `json:"defense"`
	Icon     string        `json:"icon,omitempty"`
	Behavior EnemyBehavior `json:"behavior,omitempty"`
	// Burn is the number of enemy phases the enemy keeps burning
	Burn int `json:"burn,omitempty"`
	// DamageContribution tallies cumulative damage per attacker uid for
	// threat targeting
	DamageContribution map[string]int `json:"damage_contribution,omitempty"`
}

// GetID implements core.Entity
func (e *Enemy) GetID() string { return e.Name }

// GetType implements core.Entity
func (e *Enemy) GetType() string { return "enemy" }

// Clone returns a deep copy of the enemy
func (e *Enemy) Clone() *Enemy {
	if e == nil {
		return nil
	}
	cp := *e
	if e.DamageContribution != nil {
		cp.DamageContribution = make(map[string]int, len(e.DamageContribution))
		for k, v := range e.DamageContribution {
			cp.DamageContribution[k] = v
		}
	}
	return &cp
}

// ChatMessage is one append-only chat entry
type ChatMessage struct {
	Author string    `json:"author"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// Session is the root aggregate: exactly one writable shared document per
// active game.
type Session struct {
	Code       string `json:"code"`
	HostUID    string `json:"host_uid"`
	Status     Status `json:"status"`
	Phase      Phase  `json:"phase"`
	Mode       Mode   `json:"mode"`
	Difficulty string `json:"difficulty"`

	Players map[string]*Player `json:"players"`
	Enemy   *Enemy             `json:"enemy,omitempty"`

	// TurnOrder is fixed once per combat start; ActiveTurnUID must be an
	// element of it while status=combat and phase=players
	TurnOrder     []string `json:"turn_order,omitempty"`
	ActiveTurnUID string   `json:"active_turn_uid,omitempty"`

	// EncounterBudget only decreases; BudgetUnlimited means endless
	EncounterBudget int `json:"encounter_budget"`

	RewardsEnabled bool   `json:"rewards_enabled,omitempty"`
	RewardOptions  []Card `json:"reward_options,omitempty"`

	Log []string `json:"log"`
	// ReadyForNext is the synchronization barrier before the next encounter
	ReadyForNext map[string]bool `json:"ready_for_next,omitempty"`
	Chat         []ChatMessage   `json:"chat,omitempty"`

	// Version is the optimistic-concurrency counter maintained by the store
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

var _ core.Entity = (*Session)(nil)

// GetID implements core.Entity
func (s *Session) GetID() string { return s.Code }

// GetType implements core.Entity
func (s *Session) GetType() string { return "session" }

// Player returns the participant with the given uid, or nil
func (s *Session) Player(uid string) *Player {
	return s.Players[uid]
}

// LivingInOrder returns the uids of living players in turn order. It is
// empty before combat fixes a turn order.
func (s *Session) LivingInOrder() []string {
	living := make([]string, 0, len(s.TurnOrder))
	for _, uid := range s.TurnOrder {
		if p := s.Players[uid]; p != nil && p.Alive() {
			living = append(living, uid)
		}
	}
	return living
}

// BarrierComplete reports whether every participant has opted into the
// next encounter
func (s *Session) BarrierComplete() bool {
	if len(s.Players) == 0 {
		return false
	}
	for uid := range s.Players {
		if !s.ReadyForNext[uid] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	cp := *s
	cp.Players = make(map[string]*Player, len(s.Players))
	for uid, p := range s.Players {
		cp.Players[uid] = p.Clone()
	}
	cp.Enemy = s.Enemy.Clone()
	cp.TurnOrder = append([]string(nil), s.TurnOrder...)
	cp.Log = append([]string(nil), s.Log...)
	cp.Chat = append([]ChatMessage(nil), s.Chat...)
	if s.RewardOptions != nil {
		cp.RewardOptions = append([]Card(nil), s.RewardOptions...)
	}
	cp.ReadyForNext = make(map[string]bool, len(s.ReadyForNext))
	for uid, ok := range s.ReadyForNext {
		cp.ReadyForNext[uid] = ok
	}
	return &cp
}
