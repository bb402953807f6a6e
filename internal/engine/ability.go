package engine

import (
	"fmt"

	"github.com/shuffleraid/raid-api/internal/catalog"
	"github.com/shuffleraid/raid-api/internal/entities"
	"github.com/shuffleraid/raid-api/internal/errors"
)

// UseAbilityInput is the player intent to resolve one ability
type UseAbilityInput struct {
	ActorUID  string
	AbilityID string
	// TargetUID is required for ally-targeted support abilities
	TargetUID string
}

// abilityFor resolves an ability id against the actor's class abilities
// and any extras granted by claimed reward cards
func abilityFor(p *entities.Player, abilityID string) (*entities.Ability, error) {
	class, err := catalog.Class(p.Class)
	if err != nil {
		return nil, err
	}
	if a, err := class.Ability(abilityID); err == nil {
		return a, nil
	}
	for i := range p.Extra {
		if p.Extra[i].ID == abilityID {
			return &p.Extra[i], nil
		}
	}
	return nil, errors.InvalidArgumentf("player %s has no ability %q", p.Name, abilityID)
}

// UseAbility validates and resolves a single ability use. Any failed
// precondition rejects the intent without touching state; the first
// appended log line is always the action summary.
func (e *Engine) UseAbility(s *entities.Session, input *UseAbilityInput) (*entities.Session, *entities.Patch, error) {
	if input == nil {
		return nil, nil, errors.InvalidArgument("input is required")
	}
	if s.Status != entities.StatusCombat {
		return nil, nil, errors.FailedPreconditionf("abilities are illegal in status %s", s.Status)
	}
	if s.Phase != entities.PhasePlayers {
		return nil, nil, errors.FailedPrecondition("abilities are illegal during the enemy phase")
	}
	actor, err := requireParticipant(s, input.ActorUID)
	if err != nil {
		return nil, nil, err
	}
	if s.ActiveTurnUID != input.ActorUID {
		return nil, nil, errors.FailedPreconditionf("it is not %s's turn", actor.Name)
	}
	if !actor.Alive() {
		return nil, nil, errors.FailedPreconditionf("%s is down and cannot act", actor.Name)
	}

	ability, err := abilityFor(actor, input.AbilityID)
	if err != nil {
		return nil, nil, err
	}
	if actor.Cooldowns[ability.ID] > 0 {
		return nil, nil, errors.FailedPreconditionf("%s is on cooldown for %d more turns", ability.Name, actor.Cooldowns[ability.ID])
	}
	if actor.Energy < ability.Cost {
		return nil, nil, errors.FailedPreconditionf("%s costs %d energy, %s has %d", ability.Name, ability.Cost, actor.Name, actor.Energy)
	}

	// validate targeting before mutating anything: rejection must be a
	// strict no-op
	var targetUID string
	switch ability.Kind {
	case entities.AbilityBasic, entities.AbilityAttack:
		if s.Enemy == nil {
			return nil, nil, errors.FailedPrecondition("there is no enemy to attack")
		}
	case entities.AbilitySupport:
		switch ability.Target {
		case entities.TargetAlly:
			if input.TargetUID == "" {
				return nil, nil, errors.InvalidArgumentf("%s requires a target", ability.Name)
			}
			target, terr := requireParticipant(s, input.TargetUID)
			if terr != nil {
				return nil, nil, terr
			}
			if !target.Alive() {
				return nil, nil, errors.FailedPreconditionf("%s is down and cannot be targeted", target.Name)
			}
			targetUID = input.TargetUID
		default:
			if input.TargetUID != "" && input.TargetUID != input.ActorUID {
				return nil, nil, errors.InvalidArgumentf("%s may only target the caster", ability.Name)
			}
			targetUID = input.ActorUID
		}
	}

	next := s.Clone()
	patch := &entities.Patch{}
	nactor := next.Players[input.ActorUID]

	switch ability.Kind {
	case entities.AbilityBasic, entities.AbilityAttack:
		e.resolveAttack(next, patch, nactor, ability)
	case entities.AbilitySupport:
		e.resolveSupport(next, patch, nactor, next.Players[targetUID], ability)
	default:
		return nil, nil, errors.Internalf("unhandled ability kind %q", ability.Kind)
	}

	nactor.Energy -= ability.Cost
	if ability.Cooldown > 0 {
		nactor.Cooldowns[ability.ID] = ability.Cooldown
	}
	patch.SetPlayer(nactor.Clone())

	return next, patch, nil
}

func (e *Engine) resolveAttack(next *entities.Session, patch *entities.Patch, actor *entities.Player, ability *entities.Ability) {
	enemy := next.Enemy
	total := 0
	for i := 0; i < ability.HitCount(); i++ {
		total += damageAgainst(ability.Power, enemy.Defense)
	}
	enemy.HP = clamp(enemy.HP-total, 0, enemy.MaxHP)
	enemy.DamageContribution[actor.UID] += total
	if ability.BurnTurns > enemy.Burn {
		enemy.Burn = ability.BurnTurns
	}

	line := fmt.Sprintf("%s hits the %s with %s for %d damage.", actor.Name, enemy.Name, ability.Name, total)
	next.Log = append(next.Log, line)
	patch.AppendLog = append(patch.AppendLog, line)

	if enemy.HP > 0 {
		patch.Enemy = enemy.Clone()
		return
	}

	defeated := fmt.Sprintf("The %s has been defeated!", enemy.Name)
	next.Log = append(next.Log, defeated)
	patch.AppendLog = append(patch.AppendLog, defeated)
	next.Enemy = nil
	patch.ClearEnemy = true

	// budget bookkeeping already happened at draw time
	if next.RewardsEnabled {
		e.drawRewards(next, patch)
	}
}

// drawRewards offers a random selection from the reward pool and parks the
// session in the reward status until someone claims
func (e *Engine) drawRewards(next *entities.Session, patch *entities.Patch) {
	pool := append([]entities.Card(nil), catalog.RewardCards()...)
	for i := len(pool) - 1; i > 0; i-- {
		j := e.pick(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	n := e.tuning.RewardChoices
	if n > len(pool) {
		n = len(pool)
	}

	status := entities.StatusReward
	line := "Loot appears! Choose a relic."
	next.Status = status
	next.RewardOptions = pool[:n]
	next.Log = append(next.Log, line)

	patch.Status = &status
	patch.RewardOptions = pool[:n]
	patch.AppendLog = append(patch.AppendLog, line)
}

func (e *Engine) resolveSupport(next *entities.Session, patch *entities.Patch, actor, target *entities.Player, ability *entities.Ability) {
	var line string
	switch ability.Effect {
	case entities.EffectHeal:
		before := target.HP
		target.HP = clamp(target.HP+ability.Power, 0, target.MaxHP)
		line = fmt.Sprintf("%s uses %s and restores %d HP to %s.", actor.Name, ability.Name, target.HP-before, target.Name)
	case entities.EffectEnergize:
		before := target.Energy
		target.Energy = clamp(target.Energy+ability.Power, 0, target.MaxEnergy)
		line = fmt.Sprintf("%s uses %s and restores %d energy to %s.", actor.Name, ability.Name, target.Energy-before, target.Name)
	case entities.EffectGuard:
		target.Guard += ability.Power
		line = fmt.Sprintf("%s guards %s with %s (+%d defense).", actor.Name, target.Name, ability.Name, ability.Power)
	case entities.EffectShield:
		target.Shield += ability.Power
		line = fmt.Sprintf("%s raises %s (absorbs %d damage).", actor.Name, ability.Name, ability.Power)
	case entities.EffectEvasion:
		roll := e.roll(e.tuning.EvasionDie)
		if roll >= e.tuning.EvasionThreshold {
			target.Evasion = true
			line = fmt.Sprintf("%s uses %s. D%d: %d. Success!", actor.Name, ability.Name, e.tuning.EvasionDie, roll)
		} else {
			line = fmt.Sprintf("%s uses %s. D%d: %d. It fails.", actor.Name, ability.Name, e.tuning.EvasionDie, roll)
		}
	default:
		line = fmt.Sprintf("%s uses %s.", actor.Name, ability.Name)
	}

	next.Log = append(next.Log, line)
	patch.AppendLog = append(patch.AppendLog, line)
	if target.UID != actor.UID {
		patch.SetPlayer(target.Clone())
	}
}

// ClaimReward converts a reward card into a granted ability for the
// claiming player and resumes combat. First claim wins.
func (e *Engine) ClaimReward(s *entities.Session, actorUID, cardID string) (*entities.Session, *entities.Patch, error) {
	if s.Status != entities.StatusReward {
		return nil, nil, errors.FailedPreconditionf("no reward to claim in status %s", s.Status)
	}
	actor, err := requireParticipant(s, actorUID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.Alive() {
		return nil, nil, errors.FailedPreconditionf("%s is down and cannot claim", actor.Name)
	}

	var card *entities.Card
	for i := range s.RewardOptions {
		if s.RewardOptions[i].ID == cardID {
			card = &s.RewardOptions[i]
			break
		}
	}
	if card == nil {
		return nil, nil, errors.InvalidArgumentf("card %q is not on offer", cardID)
	}

	next := s.Clone()
	nactor := next.Players[actorUID]
	nactor.Extra = append(nactor.Extra, grantedAbility(card))

	status := entities.StatusCombat
	line := fmt.Sprintf("%s claims %s.", actor.Name, card.Name)
	next.Status = status
	next.RewardOptions = nil
	next.Log = append(next.Log, line)

	patch := &entities.Patch{
		Status:       &status,
		ClearRewards: true,
		AppendLog:    []string{line},
	}
	patch.SetPlayer(nactor.Clone())
	return next, patch, nil
}

// grantedAbility maps a deck-variant card onto the ability model
func grantedAbility(card *entities.Card) entities.Ability {
	a := entities.Ability{
		ID:       card.ID,
		Name:     card.Name,
		Cost:     card.Cost,
		Cooldown: 2,
		Icon:     card.Icon,
	}
	switch card.Kind {
	case entities.CardAttack:
		a.Kind = entities.AbilityAttack
		a.Power = damageAgainst(card.Value/5, 0)
	case entities.CardHeal:
		a.Kind = entities.AbilitySupport
		a.Effect = entities.EffectHeal
		a.Target = entities.TargetAlly
		a.Power = damageAgainst(card.Value/5, 0)
	case entities.CardDefend:
		a.Kind = entities.AbilitySupport
		a.Effect = entities.EffectGuard
		a.Target = entities.TargetSelf
		a.Power = damageAgainst(card.Value/5, 0)
	default:
		a.Kind = entities.AbilitySupport
		a.Effect = entities.EffectEvasion
		a.Target = entities.TargetSelf
	}
	return a
}
