// Package engine implements the turn-resolution engine as pure state
// transitions. Every operation takes the current session document and an
// intent, and either returns the next document plus the minimal Patch that
// produces it, or rejects with a typed error and no state change.
//
// Randomness is only drawn from the injected dice.Roller, so resolution is
// deterministic under a seeded roller.
package engine

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/shuffleraid/raid-api/internal/entities"
	"github.com/shuffleraid/raid-api/internal/errors"
)

// Tuning holds the probability constants of the engine. They are
// configuration, not contracts; zero values fall back to the defaults.
type Tuning struct {
	// AmbushDie: on a roll of 1 the drawn enemy acts before any player
	AmbushDie int
	// FocusDie: on a roll of 1 the enemy targets the weakest player
	// instead of the top threat
	FocusDie int
	// EvasionDie and EvasionThreshold gate evasion support abilities
	EvasionDie       int
	EvasionThreshold int
	// RewardChoices is how many reward cards are offered after a kill
	RewardChoices int
}

func (t Tuning) withDefaults() Tuning {
	if t.AmbushDie == 0 {
		t.AmbushDie = 6
	}
	if t.FocusDie == 0 {
		t.FocusDie = 6
	}
	if t.EvasionDie == 0 {
		t.EvasionDie = 20
	}
	if t.EvasionThreshold == 0 {
		t.EvasionThreshold = 6
	}
	if t.RewardChoices == 0 {
		t.RewardChoices = 3
	}
	return t
}

// Config holds the dependencies for the engine
type Config struct {
	Roller dice.Roller
	Tuning Tuning
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Roller == nil {
		vb.RequiredField("Roller")
	}

	return vb.Build()
}

// Engine resolves session state transitions
type Engine struct {
	roller dice.Roller
	tuning Tuning
}

// New creates a new engine with the provided dependencies
func New(cfg *Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Engine{
		roller: cfg.Roller,
		tuning: cfg.Tuning.withDefaults(),
	}, nil
}

// roll is a helper for die rolls that cannot legitimately fail
func (e *Engine) roll(size int) int {
	v, err := e.roller.Roll(size)
	if err != nil {
		// only reachable with size < 1, which is a programming error
		panic(err)
	}
	return v
}

// pick returns a uniform index in [0, n)
func (e *Engine) pick(n int) int {
	return e.roll(n) - 1
}

// shuffle produces an unbiased permutation of uids: walking from the last
// index down, each position swaps with a uniformly chosen earlier-or-equal
// index.
func (e *Engine) shuffle(uids []string) {
	for i := len(uids) - 1; i > 0; i-- {
		j := e.pick(i + 1)
		uids[i], uids[j] = uids[j], uids[i]
	}
}

// damageAgainst computes attack damage against a defense value, floor 1
func damageAgainst(power, defense int) int {
	dmg := power - defense
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// weakestLiving returns the lowest-current-HP living player, ties broken
// by first occurrence in turn order
func weakestLiving(s *entities.Session) *entities.Player {
	var weakest *entities.Player
	for _, uid := range s.LivingInOrder() {
		p := s.Players[uid]
		if weakest == nil || p.HP < weakest.HP {
			weakest = p
		}
	}
	return weakest
}

// topThreat returns the living player with the highest cumulative damage
// contribution, ties broken by first occurrence in turn order
func topThreat(s *entities.Session) *entities.Player {
	if s.Enemy == nil {
		return nil
	}
	var top *entities.Player
	for _, uid := range s.LivingInOrder() {
		p := s.Players[uid]
		if top == nil || s.Enemy.DamageContribution[uid] > s.Enemy.DamageContribution[top.UID] {
			top = p
		}
	}
	return top
}

// firstLiving returns the uid of the first living player in turn order,
// or empty when everyone is down
func firstLiving(s *entities.Session) string {
	living := s.LivingInOrder()
	if len(living) == 0 {
		return ""
	}
	return living[0]
}

func allPlayersDown(s *entities.Session) bool {
	for _, p := range s.Players {
		if p.Alive() {
			return false
		}
	}
	return len(s.Players) > 0
}

func requireParticipant(s *entities.Session, uid string) (*entities.Player, error) {
	p := s.Player(uid)
	if p == nil {
		return nil, errors.FailedPreconditionf("player %s is not in session %s", uid, s.Code)
	}
	return p, nil
}
