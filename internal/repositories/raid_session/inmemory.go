package raidsession

import (
	"context"
	"fmt"
	"sync"

	"github.com/shuffleraid/raid-api/internal/entities"
	"github.com/shuffleraid/raid-api/internal/errors"
)

// inMemoryRepository keeps session documents in a map. Used by tests
// and local single-process runs; semantics match the Redis repository,
// including version bumps on Apply.
type inMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entities.Session
}

// NewInMemoryRepository creates a new in-memory session repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		sessions: make(map[string]*entities.Session),
	}
}

var _ Repository = (*inMemoryRepository)(nil)

func (r *inMemoryRepository) Create(_ context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Session == nil {
		return nil, errors.InvalidArgument("session cannot be nil")
	}
	if input.Session.Code == "" {
		return nil, errors.InvalidArgument("session code cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[input.Session.Code]; exists {
		return nil, errors.AlreadyExists(fmt.Sprintf("session code %s is taken", input.Session.Code))
	}

	session := input.Session.Clone()
	session.Version = 1
	r.sessions[session.Code] = session

	return &CreateOutput{Session: session.Clone()}, nil
}

func (r *inMemoryRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if input.Code == "" {
		return nil, errors.InvalidArgument("session code cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[input.Code]
	if !exists {
		return nil, errors.NotFoundf("session %s not found", input.Code)
	}
	return &GetOutput{Session: session.Clone()}, nil
}

func (r *inMemoryRepository) Apply(_ context.Context, input ApplyInput) (*ApplyOutput, error) {
	if input.Code == "" {
		return nil, errors.InvalidArgument("session code cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[input.Code]
	if !exists {
		return nil, errors.NotFoundf("session %s not found", input.Code)
	}
	if session.Version != input.ExpectedVersion {
		return nil, errors.Abortedf("session %s moved from version %d to %d",
			input.Code, input.ExpectedVersion, session.Version)
	}
	if input.Patch == nil || input.Patch.IsEmpty() {
		return &ApplyOutput{Version: session.Version}, nil
	}

	next := session.Clone()
	mergePatch(next, input.Patch)
	next.Version = session.Version + 1
	r.sessions[input.Code] = next

	return &ApplyOutput{Version: next.Version}, nil
}

func (r *inMemoryRepository) Delete(_ context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.Code == "" {
		return nil, errors.InvalidArgument("session code cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, input.Code)
	return &DeleteOutput{}, nil
}

// mergePatch applies a patch to a session in place, mirroring how the
// Redis repository maps patch fields onto the stored document
func mergePatch(s *entities.Session, p *entities.Patch) {
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Phase != nil {
		s.Phase = *p.Phase
	}
	if p.ActiveTurnUID != nil {
		s.ActiveTurnUID = *p.ActiveTurnUID
	}
	if p.EncounterBudget != nil {
		s.EncounterBudget = *p.EncounterBudget
	}
	if p.TurnOrder != nil {
		s.TurnOrder = append([]string(nil), p.TurnOrder...)
	}
	if p.Enemy != nil {
		s.Enemy = p.Enemy.Clone()
	} else if p.ClearEnemy {
		s.Enemy = nil
	}
	if p.RewardOptions != nil {
		s.RewardOptions = append([]entities.Card(nil), p.RewardOptions...)
	} else if p.ClearRewards {
		s.RewardOptions = nil
	}
	for uid, player := range p.Players {
		if s.Players == nil {
			s.Players = make(map[string]*entities.Player)
		}
		s.Players[uid] = player.Clone()
	}
	s.Log = append(s.Log, p.AppendLog...)
	s.Chat = append(s.Chat, p.AppendChat...)
	if p.ClearReady {
		s.ReadyForNext = make(map[string]bool)
	}
	for _, uid := range p.AddReady {
		if s.ReadyForNext == nil {
			s.ReadyForNext = make(map[string]bool)
		}
		s.ReadyForNext[uid] = true
	}
	for _, uid := range p.RemoveReady {
		delete(s.ReadyForNext, uid)
	}
}
