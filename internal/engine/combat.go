package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shuffleraid/raid-api/internal/catalog"
	"github.com/shuffleraid/raid-api/internal/entities"
	"github.com/shuffleraid/raid-api/internal/errors"
)

// StartCombat moves the session into combat, fixing the turn order as a
// uniformly random permutation of the participants. Legal only from
// waiting/lobby when every non-host player is ready (or in solo play).
func (e *Engine) StartCombat(s *entities.Session, initiatorUID string) (*entities.Session, *entities.Patch, error) {
	if s.Status != entities.StatusWaiting && s.Status != entities.StatusLobby {
		return nil, nil, errors.FailedPreconditionf("cannot start combat from status %s", s.Status)
	}
	if initiatorUID != s.HostUID {
		return nil, nil, errors.PermissionDenied("only the host may start combat")
	}
	if len(s.Players) == 0 {
		return nil, nil, errors.FailedPrecondition("session has no players")
	}
	for uid, p := range s.Players {
		if uid != s.HostUID && !p.Ready {
			return nil, nil, errors.FailedPreconditionf("player %s is not ready", p.Name)
		}
	}

	order := make([]string, 0, len(s.Players))
	for uid := range s.Players {
		order = append(order, uid)
	}
	// stable base order so the shuffle alone decides the permutation
	sort.Strings(order)
	e.shuffle(order)

	next := s.Clone()
	next.Status = entities.StatusCombat
	next.Phase = entities.PhasePlayers
	next.TurnOrder = order
	next.ActiveTurnUID = order[0]
	next.ReadyForNext = make(map[string]bool)

	names := make([]string, len(order))
	for i, uid := range order {
		names[i] = next.Players[uid].Name
	}
	line := fmt.Sprintf("The party descends. Turn order: %s.", strings.Join(names, ", "))
	next.Log = append(next.Log, line)

	status := entities.StatusCombat
	phase := entities.PhasePlayers
	active := order[0]
	patch := &entities.Patch{
		Status:        &status,
		Phase:         &phase,
		TurnOrder:     order,
		ActiveTurnUID: &active,
		ClearReady:    true,
		AppendLog:     []string{line},
	}
	return next, patch, nil
}

// DrawEncounter draws the next enemy once every participant has opted in.
// With the budget exhausted it instead transitions to final victory. The
// drawn enemy ambushes the weakest player with fixed probability.
func (e *Engine) DrawEncounter(s *entities.Session) (*entities.Session, *entities.Patch, error) {
	if s.Status != entities.StatusCombat {
		return nil, nil, errors.FailedPreconditionf("cannot draw an encounter from status %s", s.Status)
	}
	if s.Enemy != nil {
		return nil, nil, errors.FailedPrecondition("an encounter is already in progress")
	}
	if !s.BarrierComplete() {
		return nil, nil, errors.FailedPrecondition("not all players are ready for the next encounter")
	}

	next := s.Clone()
	patch := &entities.Patch{}

	if s.EncounterBudget == 0 {
		status := entities.StatusFinalVictory
		line := "The depths are conquered. Final victory!"
		next.Status = status
		next.ReadyForNext = make(map[string]bool)
		next.Log = append(next.Log, line)

		patch.Status = &status
		patch.ClearReady = true
		patch.AppendLog = []string{line}
		return next, patch, nil
	}

	if s.EncounterBudget != entities.BudgetUnlimited {
		budget := s.EncounterBudget - 1
		next.EncounterBudget = budget
		patch.EncounterBudget = &budget
	}

	pool := catalog.Enemies()
	tmpl := pool[e.pick(len(pool))]
	enemy := tmpl.Instantiate()
	next.Enemy = enemy
	next.ReadyForNext = make(map[string]bool)

	line := fmt.Sprintf("A %s blocks the path!", enemy.Name)
	next.Log = append(next.Log, line)
	patch.AppendLog = append(patch.AppendLog, line)

	// enemy initiative: a 1 on the ambush die means it strikes before
	// anyone can act
	if e.roll(e.tuning.AmbushDie) == 1 {
		if target := weakestLiving(next); target != nil {
			dmg := damageAgainst(enemy.Damage, target.Defense)
			target.HP = clamp(target.HP-dmg, 0, target.MaxHP)
			ambushLine := fmt.Sprintf("Ambush! The %s lunges at %s for %d damage.", enemy.Name, target.Name, dmg)
			next.Log = append(next.Log, ambushLine)
			patch.AppendLog = append(patch.AppendLog, ambushLine)
			patch.SetPlayer(target.Clone())

			if !target.Alive() {
				fallen := fmt.Sprintf("%s has fallen!", target.Name)
				next.Log = append(next.Log, fallen)
				patch.AppendLog = append(patch.AppendLog, fallen)
			}

			// a defeated party holds no encounter
			if allPlayersDown(next) {
				status := entities.StatusDefeat
				line := "The party has fallen."
				next.Status = status
				next.Enemy = nil
				next.Log = append(next.Log, line)
				patch.Status = &status
				patch.ClearEnemy = true
				patch.AppendLog = append(patch.AppendLog, line)
				patch.ClearReady = true
				return next, patch, nil
			}

			// never leave the turn stranded on the ambush victim
			if !target.Alive() && next.ActiveTurnUID == target.UID {
				if uid := nextLivingAfter(next, target.UID); uid != "" {
					next.ActiveTurnUID = uid
					patch.ActiveTurnUID = &uid
				} else {
					phase := entities.PhaseEnemy
					active := ""
					next.Phase = phase
					next.ActiveTurnUID = active
					patch.Phase = &phase
					patch.ActiveTurnUID = &active
				}
			}
		}
	}

	patch.Enemy = next.Enemy.Clone()
	patch.ClearReady = true
	return next, patch, nil
}
