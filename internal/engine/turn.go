package engine

import (
	"fmt"

	"github.com/shuffleraid/raid-api/internal/entities"
	"github.com/shuffleraid/raid-api/internal/errors"
)

// EndTurn advances to the next living slot in turn order; wrapping past
// the last living player flips the session into the enemy phase. Cooldown
// and energy bookkeeping happens only at the full-round boundary, inside
// ResolveEnemy.
func (e *Engine) EndTurn(s *entities.Session, actorUID string) (*entities.Session, *entities.Patch, error) {
	if s.Status != entities.StatusCombat {
		return nil, nil, errors.FailedPreconditionf("cannot end a turn in status %s", s.Status)
	}
	if s.Phase != entities.PhasePlayers {
		return nil, nil, errors.FailedPrecondition("cannot end a turn during the enemy phase")
	}
	if _, err := requireParticipant(s, actorUID); err != nil {
		return nil, nil, err
	}
	if s.ActiveTurnUID != actorUID {
		return nil, nil, errors.FailedPrecondition("it is not your turn")
	}

	next := s.Clone()
	patch := &entities.Patch{}

	if uid := nextLivingAfter(s, actorUID); uid != "" {
		next.ActiveTurnUID = uid
		patch.ActiveTurnUID = &uid
		return next, patch, nil
	}

	// last living slot: hand the round to the enemy
	phase := entities.PhaseEnemy
	active := ""
	next.Phase = phase
	next.ActiveTurnUID = active
	patch.Phase = &phase
	patch.ActiveTurnUID = &active
	return next, patch, nil
}

// nextLivingAfter finds the next living player strictly after the given
// uid in turn order, without wrapping
func nextLivingAfter(s *entities.Session, uid string) string {
	idx := -1
	for i, member := range s.TurnOrder {
		if member == uid {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ""
	}
	for _, member := range s.TurnOrder[idx+1:] {
		if p := s.Players[member]; p != nil && p.Alive() {
			return member
		}
	}
	return ""
}

// ResolveEnemy performs the system-triggered enemy phase: burn ticks, the
// enemy's attack against a weighted target, behavior effects, then the
// full-round boundary (buffs cleared, energy refilled, cooldowns
// decremented) before play returns to the first living player.
func (e *Engine) ResolveEnemy(s *entities.Session) (*entities.Session, *entities.Patch, error) {
	if s.Status != entities.StatusCombat {
		return nil, nil, errors.FailedPreconditionf("cannot resolve the enemy phase in status %s", s.Status)
	}
	if s.Phase != entities.PhaseEnemy {
		return nil, nil, errors.FailedPrecondition("the enemy phase is not active")
	}

	next := s.Clone()
	patch := &entities.Patch{}

	if next.Enemy != nil && next.Enemy.HP > 0 {
		e.tickBurn(next, patch)
	}
	if next.Enemy != nil && next.Enemy.HP > 0 {
		e.enemyAttack(next, patch)
	}

	if next.Status == entities.StatusDefeat {
		return next, patch, nil
	}

	e.roundBoundary(next, patch)
	return next, patch, nil
}

// tickBurn applies lingering burn damage; it can finish the enemy off
func (e *Engine) tickBurn(next *entities.Session, patch *entities.Patch) {
	enemy := next.Enemy
	if enemy.Burn <= 0 {
		return
	}
	enemy.Burn--
	enemy.HP = clamp(enemy.HP-1, 0, enemy.MaxHP)
	line := fmt.Sprintf("The %s burns for 1 damage.", enemy.Name)
	next.Log = append(next.Log, line)
	patch.AppendLog = append(patch.AppendLog, line)

	if enemy.HP == 0 {
		defeated := fmt.Sprintf("The %s has been defeated!", enemy.Name)
		next.Log = append(next.Log, defeated)
		patch.AppendLog = append(patch.AppendLog, defeated)
		next.Enemy = nil
		patch.Enemy = nil
		patch.ClearEnemy = true
		if next.RewardsEnabled {
			e.drawRewards(next, patch)
		}
		return
	}
	patch.Enemy = enemy.Clone()
}

// enemyAttack picks a target by the weighted policy: a 1 on the focus die
// means the weakest living player, otherwise the top damage contributor.
func (e *Engine) enemyAttack(next *entities.Session, patch *entities.Patch) {
	enemy := next.Enemy

	var target *entities.Player
	if e.roll(e.tuning.FocusDie) == 1 {
		target = weakestLiving(next)
	} else {
		target = topThreat(next)
	}
	if target == nil {
		return
	}

	if enemy.Behavior == entities.BehaviorRegenerate && enemy.HP < enemy.MaxHP {
		enemy.HP = clamp(enemy.HP+1, 0, enemy.MaxHP)
		line := fmt.Sprintf("The %s knits itself back together.", enemy.Name)
		next.Log = append(next.Log, line)
		patch.AppendLog = append(patch.AppendLog, line)
	}

	if target.Evasion {
		line := fmt.Sprintf("%s evades the %s's attack!", target.Name, enemy.Name)
		next.Log = append(next.Log, line)
		patch.AppendLog = append(patch.AppendLog, line)
		patch.Enemy = enemy.Clone()
		return
	}

	dmg := damageAgainst(enemy.Damage, target.Defense+target.Guard)
	absorbed := dmg
	if absorbed > target.Shield {
		absorbed = target.Shield
	}
	target.Shield -= absorbed
	dealt := dmg - absorbed
	target.HP = clamp(target.HP-dealt, 0, target.MaxHP)

	line := fmt.Sprintf("The %s strikes %s for %d damage.", enemy.Name, target.Name, dmg)
	if absorbed > 0 {
		line = fmt.Sprintf("The %s strikes %s for %d damage (%d absorbed).", enemy.Name, target.Name, dmg, absorbed)
	}
	next.Log = append(next.Log, line)
	patch.AppendLog = append(patch.AppendLog, line)

	if enemy.Behavior == entities.BehaviorLifesteal && dealt > 0 {
		enemy.HP = clamp(enemy.HP+dealt, 0, enemy.MaxHP)
		drain := fmt.Sprintf("The %s drains %d life.", enemy.Name, dealt)
		next.Log = append(next.Log, drain)
		patch.AppendLog = append(patch.AppendLog, drain)
	}

	if !target.Alive() {
		fallen := fmt.Sprintf("%s has fallen!", target.Name)
		next.Log = append(next.Log, fallen)
		patch.AppendLog = append(patch.AppendLog, fallen)
	}

	patch.SetPlayer(target.Clone())
	patch.Enemy = enemy.Clone()

	if allPlayersDown(next) {
		status := entities.StatusDefeat
		line := "The party has fallen. Defeat."
		next.Status = status
		next.Log = append(next.Log, line)
		patch.Status = &status
		patch.AppendLog = append(patch.AppendLog, line)
	}
}

// roundBoundary is the once-per-full-round bookkeeping: transient buffs
// clear, energy refills, cooldowns tick down, and play returns to the
// first living player.
func (e *Engine) roundBoundary(next *entities.Session, patch *entities.Patch) {
	for _, p := range next.Players {
		p.Guard = 0
		p.Shield = 0
		p.Evasion = false
		p.Energy = p.MaxEnergy
		for id, cd := range p.Cooldowns {
			if cd > 0 {
				p.Cooldowns[id] = cd - 1
			}
		}
		patch.SetPlayer(p.Clone())
	}

	phase := entities.PhasePlayers
	active := firstLiving(next)
	next.Phase = phase
	next.ActiveTurnUID = active
	patch.Phase = &phase
	patch.ActiveTurnUID = &active
}
