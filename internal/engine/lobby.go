package engine

import (
	"fmt"
	"time"

	"github.com/shuffleraid/raid-api/internal/catalog"
	"github.com/shuffleraid/raid-api/internal/entities"
	"github.com/shuffleraid/raid-api/internal/errors"
)

// Join adds a guest to a session that has not started combat yet
func (e *Engine) Join(s *entities.Session, uid, name, className string) (*entities.Session, *entities.Patch, error) {
	if s.Status != entities.StatusWaiting && s.Status != entities.StatusLobby {
		return nil, nil, errors.FailedPreconditionf("cannot join a session in status %s", s.Status)
	}
	if s.Player(uid) != nil {
		return nil, nil, errors.AlreadyExists("player is already in the session")
	}
	if len(s.Players) >= entities.MaxPlayers {
		return nil, nil, errors.FailedPreconditionf("the party is full (%d players)", entities.MaxPlayers)
	}

	player, err := catalog.NewPlayer(uid, name, className, entities.RoleGuest)
	if err != nil {
		return nil, nil, err
	}

	next := s.Clone()
	next.Players[uid] = player
	next.Status = entities.StatusLobby

	status := entities.StatusLobby
	line := fmt.Sprintf("%s the %s joins the party.", player.Name, player.Class)
	next.Log = append(next.Log, line)

	patch := &entities.Patch{
		Status:    &status,
		AppendLog: []string{line},
	}
	patch.SetPlayer(player.Clone())
	return next, patch, nil
}

// SetReady flips a player's lobby readiness flag
func (e *Engine) SetReady(s *entities.Session, uid string, ready bool) (*entities.Session, *entities.Patch, error) {
	if s.Status != entities.StatusWaiting && s.Status != entities.StatusLobby {
		return nil, nil, errors.FailedPreconditionf("readiness is only meaningful before combat, not in status %s", s.Status)
	}
	p, err := requireParticipant(s, uid)
	if err != nil {
		return nil, nil, err
	}
	if p.Ready == ready {
		return s.Clone(), &entities.Patch{}, nil
	}

	next := s.Clone()
	next.Players[uid].Ready = ready

	patch := &entities.Patch{}
	patch.SetPlayer(next.Players[uid].Clone())
	return next, patch, nil
}

// ReadyForNext records a player's opt-in (or opt-out) for the next
// encounter barrier. Re-adding an already present member is idempotent.
func (e *Engine) ReadyForNext(s *entities.Session, uid string, ready bool) (*entities.Session, *entities.Patch, error) {
	if s.Status != entities.StatusCombat {
		return nil, nil, errors.FailedPreconditionf("the encounter barrier is only open in combat, not status %s", s.Status)
	}
	if s.Enemy != nil {
		return nil, nil, errors.FailedPrecondition("an encounter is already in progress")
	}
	if _, err := requireParticipant(s, uid); err != nil {
		return nil, nil, err
	}

	next := s.Clone()
	patch := &entities.Patch{}
	if ready {
		if !next.ReadyForNext[uid] {
			next.ReadyForNext[uid] = true
			patch.AddReady = []string{uid}
		}
	} else if next.ReadyForNext[uid] {
		delete(next.ReadyForNext, uid)
		patch.RemoveReady = []string{uid}
	}
	return next, patch, nil
}

// AppendChat appends one chat message; chat is shared log, not rules
func (e *Engine) AppendChat(s *entities.Session, uid, text string, at time.Time) (*entities.Session, *entities.Patch, error) {
	p, err := requireParticipant(s, uid)
	if err != nil {
		return nil, nil, err
	}
	if text == "" {
		return nil, nil, errors.InvalidArgument("chat text cannot be empty")
	}

	msg := entities.ChatMessage{Author: p.Name, Text: text, SentAt: at}
	next := s.Clone()
	next.Chat = append(next.Chat, msg)

	patch := &entities.Patch{AppendChat: []entities.ChatMessage{msg}}
	return next, patch, nil
}

// Retry resets a finished session back to the lobby: fresh players from
// their classes, a fresh encounter budget, no enemy, no turn order.
func (e *Engine) Retry(s *entities.Session, actorUID string) (*entities.Session, *entities.Patch, error) {
	if !s.Status.Terminal() {
		return nil, nil, errors.FailedPreconditionf("cannot retry from status %s", s.Status)
	}
	if actorUID != s.HostUID {
		return nil, nil, errors.PermissionDenied("only the host may retry")
	}

	diff, err := catalog.ByDifficulty(s.Difficulty)
	if err != nil {
		return nil, nil, err
	}

	next := s.Clone()
	patch := &entities.Patch{}

	for uid, p := range next.Players {
		fresh, perr := catalog.NewPlayer(p.UID, p.Name, p.Class, p.Role)
		if perr != nil {
			return nil, nil, perr
		}
		next.Players[uid] = fresh
		patch.SetPlayer(fresh.Clone())
	}

	status := entities.StatusLobby
	phase := entities.PhasePlayers
	active := ""
	budget := diff.Budget
	line := "The party regroups for another attempt."

	next.Status = status
	next.Phase = phase
	next.ActiveTurnUID = active
	next.TurnOrder = nil
	next.EncounterBudget = budget
	next.Enemy = nil
	next.RewardOptions = nil
	next.ReadyForNext = make(map[string]bool)
	next.Log = append(next.Log, line)

	patch.Status = &status
	patch.Phase = &phase
	patch.ActiveTurnUID = &active
	patch.TurnOrder = []string{}
	patch.EncounterBudget = &budget
	patch.ClearEnemy = true
	patch.ClearRewards = true
	patch.ClearReady = true
	patch.AppendLog = []string{line}
	return next, patch, nil
}
