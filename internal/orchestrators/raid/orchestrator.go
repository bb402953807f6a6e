// Package raid implements the orchestrator for raid sessions: it loads
// the shared document, runs the engine transform, applies the resulting
// patch under optimistic concurrency, and announces the new version.
package raid

//go:generate mockgen -destination=mock/mock_service.go -package=raidmock github.com/shuffleraid/raid-api/internal/orchestrators/raid Service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shuffleraid/raid-api/internal/catalog"
	"github.com/shuffleraid/raid-api/internal/engine"
	"github.com/shuffleraid/raid-api/internal/entities"
	"github.com/shuffleraid/raid-api/internal/errors"
	"github.com/shuffleraid/raid-api/internal/identity"
	"github.com/shuffleraid/raid-api/internal/narrative"
	"github.com/shuffleraid/raid-api/internal/pkg/clock"
	"github.com/shuffleraid/raid-api/internal/pkg/idgen"
	"github.com/shuffleraid/raid-api/internal/realtime"
	raidsession "github.com/shuffleraid/raid-api/internal/repositories/raid_session"
)

const (
	// createAttempts bounds retries on share code collisions
	createAttempts = 5

	// narrateTimeout bounds the advisory narration call
	narrateTimeout = 3 * time.Second

	// MaxChatLength bounds a single chat message
	MaxChatLength = 280
)

// Service defines the interface for raid session operations
type Service interface {
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)
	GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error)
	JoinSession(ctx context.Context, input *JoinSessionInput) (*JoinSessionOutput, error)
	SetReady(ctx context.Context, input *SetReadyInput) (*SetReadyOutput, error)
	StartCombat(ctx context.Context, input *StartCombatInput) (*StartCombatOutput, error)
	DrawEncounter(ctx context.Context, input *DrawEncounterInput) (*DrawEncounterOutput, error)
	UseAbility(ctx context.Context, input *UseAbilityInput) (*UseAbilityOutput, error)
	EndTurn(ctx context.Context, input *EndTurnInput) (*EndTurnOutput, error)
	ResolveEnemy(ctx context.Context, input *ResolveEnemyInput) (*ResolveEnemyOutput, error)
	ReadyForNext(ctx context.Context, input *ReadyForNextInput) (*ReadyForNextOutput, error)
	ClaimReward(ctx context.Context, input *ClaimRewardInput) (*ClaimRewardOutput, error)
	SendChat(ctx context.Context, input *SendChatInput) (*SendChatOutput, error)
	Retry(ctx context.Context, input *RetryInput) (*RetryOutput, error)
	DeleteSession(ctx context.Context, input *DeleteSessionInput) (*DeleteSessionOutput, error)
}

// Config holds the dependencies for the raid orchestrator
type Config struct {
	SessionRepo raidsession.Repository
	Engine      *engine.Engine
	Feed        realtime.Feed
	CodeGen     idgen.Generator
	Clock       clock.Clock
	// Describer is optional; without one the plain log lines stand
	Describer narrative.Describer
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.SessionRepo == nil {
		vb.RequiredField("SessionRepo")
	}
	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.Feed == nil {
		vb.RequiredField("Feed")
	}
	if c.CodeGen == nil {
		vb.RequiredField("CodeGen")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}

	return vb.Build()
}

type orchestrator struct {
	sessionRepo raidsession.Repository
	engine      *engine.Engine
	feed        realtime.Feed
	codeGen     idgen.Generator
	clock       clock.Clock
	describer   narrative.Describer
}

// NewOrchestrator creates a new raid orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		sessionRepo: cfg.SessionRepo,
		engine:      cfg.Engine,
		feed:        cfg.Feed,
		codeGen:     cfg.CodeGen,
		clock:       cfg.Clock,
		describer:   cfg.Describer,
	}, nil
}

// transform loads the session, runs one engine step, and applies the
// patch at the loaded version. A concurrent writer surfaces as an
// aborted error; the caller decides whether to re-derive and retry.
func (o *orchestrator) transform(
	ctx context.Context,
	code string,
	step func(s *entities.Session) (*entities.Session, *entities.Patch, error),
) (*entities.Session, error) {
	getOut, err := o.sessionRepo.Get(ctx, raidsession.GetInput{Code: code})
	if err != nil {
		return nil, err
	}
	current := getOut.Session

	next, patch, err := step(current)
	if err != nil {
		return nil, err
	}

	applyOut, err := o.sessionRepo.Apply(ctx, raidsession.ApplyInput{
		Code:            code,
		ExpectedVersion: current.Version,
		Patch:           patch,
	})
	if err != nil {
		return nil, err
	}
	next.Version = applyOut.Version

	o.announce(ctx, code, applyOut.Version)
	return next, nil
}

// announce publishes the new version; delivery is best effort
func (o *orchestrator) announce(ctx context.Context, code string, version int64) {
	if err := o.feed.Publish(ctx, realtime.Update{Code: code, Version: version}); err != nil {
		slog.Warn("Failed to announce session update",
			"session_code", code,
			"version", version,
			"error", err)
	}
}

// CreateSession opens a new session with the caller as host
func (o *orchestrator) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	vb := errors.NewValidationBuilder()
	if input.HostUID == "" {
		vb.RequiredField("HostUID")
	}
	if input.HostName == "" {
		vb.RequiredField("HostName")
	}
	if input.ClassName == "" {
		vb.RequiredField("ClassName")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	mode := input.Mode
	if mode == "" {
		mode = entities.ModeMulti
	}
	switch mode {
	case entities.ModeCampaign, entities.ModeIndividual, entities.ModeMulti:
	default:
		return nil, errors.InvalidArgumentf("unknown mode: %s", mode)
	}

	difficultyName := input.Difficulty
	if difficultyName == "" {
		difficultyName = catalog.DefaultDifficulty
	}
	difficulty, err := catalog.ByDifficulty(difficultyName)
	if err != nil {
		return nil, err
	}

	hostName, err := identity.SanitizeDisplayName(input.HostName)
	if err != nil {
		return nil, err
	}
	host, err := catalog.NewPlayer(input.HostUID, hostName, input.ClassName, entities.RoleHost)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		code := o.codeGen.Generate()
		session := &entities.Session{
			Code:            code,
			HostUID:         input.HostUID,
			Status:          entities.StatusLobby,
			Phase:           entities.PhasePlayers,
			Mode:            mode,
			Difficulty:      difficulty.Name,
			Players:         map[string]*entities.Player{input.HostUID: host},
			EncounterBudget: difficulty.Budget,
			RewardsEnabled:  difficulty.Rewards,
			Log:             []string{fmt.Sprintf("%s opened raid %s.", hostName, code)},
			ReadyForNext:    make(map[string]bool),
			CreatedAt:       o.clock.Now(),
		}

		out, err := o.sessionRepo.Create(ctx, raidsession.CreateInput{Session: session})
		if err != nil {
			if errors.GetCode(err) == errors.CodeAlreadyExists {
				continue
			}
			return nil, err
		}

		slog.Info("Created raid session",
			"session_code", code,
			"host_uid", input.HostUID,
			"mode", mode,
			"difficulty", difficulty.Name)
		o.announce(ctx, code, out.Session.Version)
		return &CreateSessionOutput{Session: out.Session}, nil
	}

	return nil, errors.Internal("could not find a free session code")
}

// GetSession returns the current session document
func (o *orchestrator) GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
	if input.Code == "" {
		return nil, errors.InvalidArgument("session code is required")
	}

	out, err := o.sessionRepo.Get(ctx, raidsession.GetInput{Code: input.Code})
	if err != nil {
		return nil, err
	}
	return &GetSessionOutput{Session: out.Session}, nil
}

// JoinSession puts a guest into the lobby
func (o *orchestrator) JoinSession(ctx context.Context, input *JoinSessionInput) (*JoinSessionOutput, error) {
	vb := errors.NewValidationBuilder()
	if input.Code == "" {
		vb.RequiredField("Code")
	}
	if input.UID == "" {
		vb.RequiredField("UID")
	}
	if input.Name == "" {
		vb.RequiredField("Name")
	}
	if input.ClassName == "" {
		vb.RequiredField("ClassName")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	name, err := identity.SanitizeDisplayName(input.Name)
	if err != nil {
		return nil, err
	}

	session, err := o.transform(ctx, input.Code, func(s *entities.Session) (*entities.Session, *entities.Patch, error) {
		return o.engine.Join(s, input.UID, name, input.ClassName)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Player joined raid session",
		"session_code", input.Code,
		"uid", input.UID,
		"class", input.ClassName)
	return &JoinSessionOutput{Session: session}, nil
}

// SetReady flips lobby readiness for one player
func (o *orchestrator) SetReady(ctx context.Context, input *SetReadyInput) (*SetReadyOutput, error) {
	if input.Code == "" || input.UID == "" {
		return nil, errors.InvalidArgument("session code and uid are required")
	}

	session, err := o.transform(ctx, input.Code, func(s *entities.Session) (*entities.Session, *entities.Patch, error) {
		return o.engine.SetReady(s, input.UID, input.Ready)
	})
	if err != nil {
		return nil, err
	}
	return &SetReadyOutput{Session: session}, nil
}

// StartCombat begins the raid; host only
func (o *orchestrator) StartCombat(ctx context.Context, input *StartCombatInput) (*StartCombatOutput, error) {
	if input.Code == "" || input.InitiatorUID == "" {
		return nil, errors.InvalidArgument("session code and initiator uid are required")
	}

	session, err := o.transform(ctx, input.Code, func(s *entities.Session) (*entities.Session, *entities.Patch, error) {
		return o.engine.StartCombat(s, input.InitiatorUID)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Raid combat started",
		"session_code", input.Code,
		"turn_order", session.TurnOrder)
	return &StartCombatOutput{Session: session}, nil
}

// DrawEncounter spawns the next enemy once every living player is ready
func (o *orchestrator) DrawEncounter(ctx context.Context, input *DrawEncounterInput) (*DrawEncounterOutput, error) {
	if input.Code == "" {
		return nil, errors.InvalidArgument("session code is required")
	}

	session, err := o.transform(ctx, input.Code, func(s *entities.Session) (*entities.Session, *entities.Patch, error) {
		return o.engine.DrawEncounter(s)
	})
	if err != nil {
		return nil, err
	}

	if session.Enemy != nil {
		slog.Info("Encounter drawn",
			"session_code", input.Code,
			"enemy", session.Enemy.Name,
			"budget_left", session.EncounterBudget)
	}
	return &DrawEncounterOutput{Session: session}, nil
}

// UseAbility resolves one player action and narrates its log line
func (o *orchestrator) UseAbility(ctx context.Context, input *UseAbilityInput) (*UseAbilityOutput, error) {
	vb := errors.NewValidationBuilder()
	if input.Code == "" {
		vb.RequiredField("Code")
	}
	if input.ActorUID == "" {
		vb.RequiredField("ActorUID")
	}
	if input.AbilityID == "" {
		vb.RequiredField("AbilityID")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	session, err := o.transform(ctx, input.Code, func(s *entities.Session) (*entities.Session, *entities.Patch, error) {
		next, patch, err := o.engine.UseAbility(s, &engine.UseAbilityInput{
			ActorUID:  input.ActorUID,
			AbilityID: input.AbilityID,
			TargetUID: input.TargetUID,
		})
		if err != nil {
			return nil, nil, err
		}
		o.narrate(ctx, s, next, input, patch)
		return next, patch, nil
	})
	if err != nil {
		return nil, err
	}
	return &UseAbilityOutput{Session: session}, nil
}

// narrate rewrites the action line in place when a describer is wired,
// in both the patch headed for the store and the session handed back to
// the caller. Failures keep the plain line; resolution never waits past
// the timeout.
func (o *orchestrator) narrate(ctx context.Context, s, next *entities.Session, input *UseAbilityInput, patch *entities.Patch) {
	if o.describer == nil || len(patch.AppendLog) == 0 {
		return
	}

	describeInput := narrative.DescribeInput{Line: patch.AppendLog[0]}
	if actor, ok := s.Players[input.ActorUID]; ok {
		describeInput.ActorName = actor.Name
	}
	describeInput.AbilityName = input.AbilityID
	if target, ok := s.Players[input.TargetUID]; ok {
		describeInput.TargetName = target.Name
	}

	narrateCtx, cancel := context.WithTimeout(ctx, narrateTimeout)
	defer cancel()

	line, err := o.describer.Describe(narrateCtx, describeInput)
	if err != nil {
		slog.Debug("Narration failed, keeping plain line",
			"session_code", input.Code,
			"error", err)
		return
	}
	// the appended lines sit verbatim at the tail of next.Log
	if idx := len(next.Log) - len(patch.AppendLog); idx >= 0 && next.Log[idx] == patch.AppendLog[0] {
		next.Log[idx] = line
	}
	patch.AppendLog[0] = line
}

// EndTurn hands the turn to the next living player
func (o *orchestrator) EndTurn(ctx context.Context, input *EndTurnInput) (*EndTurnOutput, error) {
	if input.Code == "" || input.ActorUID == "" {
		return nil, errors.InvalidArgument("session code and actor uid are required")
	}

	session, err := o.transform(ctx, input.Code, func(s *entities.Session) (*entities.Session, *entities.Patch, error) {
		return o.engine.EndTurn(s, input.ActorUID)
	})
	if err != nil {
		return nil, err
	}
	return &EndTurnOutput{Session: session}, nil
}

// ResolveEnemy runs the enemy phase; the host process drives this
func (o *orchestrator) ResolveEnemy(ctx context.Context, input *ResolveEnemyInput) (*ResolveEnemyOutput, error) {
	if input.Code == "" {
		return nil, errors.InvalidArgument("session code is required")
	}

	session, err := o.transform(ctx, input.Code, func(s *entities.Session) (*entities.Session, *entities.Patch, error) {
		return o.engine.ResolveEnemy(s)
	})
	if err != nil {
		return nil, err
	}
	return &ResolveEnemyOutput{Session: session}, nil
}

// ReadyForNext marks a player at the next-encounter barrier
func (o *orchestrator) ReadyForNext(ctx context.Context, input *ReadyForNextInput) (*ReadyForNextOutput, error) {
	if input.Code == "" || input.UID == "" {
		return nil, errors.InvalidArgument("session code and uid are required")
	}

	session, err := o.transform(ctx, input.Code, func(s *entities.Session) (*entities.Session, *entities.Patch, error) {
		return o.engine.ReadyForNext(s, input.UID, input.Ready)
	})
	if err != nil {
		return nil, err
	}
	return &ReadyForNextOutput{Session: session}, nil
}

// ClaimReward claims one offered card; first claim wins
func (o *orchestrator) ClaimReward(ctx context.Context, input *ClaimRewardInput) (*ClaimRewardOutput, error) {
	vb := errors.NewValidationBuilder()
	if input.Code == "" {
		vb.RequiredField("Code")
	}
	if input.ActorUID == "" {
		vb.RequiredField("ActorUID")
	}
	if input.CardID == "" {
		vb.RequiredField("CardID")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	session, err := o.transform(ctx, input.Code, func(s *entities.Session) (*entities.Session, *entities.Patch, error) {
		return o.engine.ClaimReward(s, input.ActorUID, input.CardID)
	})
	if err != nil {
		return nil, err
	}
	return &ClaimRewardOutput{Session: session}, nil
}

// SendChat appends one chat message to the session
func (o *orchestrator) SendChat(ctx context.Context, input *SendChatInput) (*SendChatOutput, error) {
	vb := errors.NewValidationBuilder()
	if input.Code == "" {
		vb.RequiredField("Code")
	}
	if input.UID == "" {
		vb.RequiredField("UID")
	}
	if input.Text == "" {
		vb.RequiredField("Text")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}
	if len(input.Text) > MaxChatLength {
		return nil, errors.InvalidArgumentf("chat message exceeds %d characters", MaxChatLength)
	}

	session, err := o.transform(ctx, input.Code, func(s *entities.Session) (*entities.Session, *entities.Patch, error) {
		return o.engine.AppendChat(s, input.UID, input.Text, o.clock.Now())
	})
	if err != nil {
		return nil, err
	}
	return &SendChatOutput{Session: session}, nil
}

// Retry restarts a finished raid in the same session; host only
func (o *orchestrator) Retry(ctx context.Context, input *RetryInput) (*RetryOutput, error) {
	if input.Code == "" || input.ActorUID == "" {
		return nil, errors.InvalidArgument("session code and actor uid are required")
	}

	session, err := o.transform(ctx, input.Code, func(s *entities.Session) (*entities.Session, *entities.Patch, error) {
		return o.engine.Retry(s, input.ActorUID)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Raid session reset",
		"session_code", input.Code)
	return &RetryOutput{Session: session}, nil
}

// DeleteSession removes the session document
func (o *orchestrator) DeleteSession(ctx context.Context, input *DeleteSessionInput) (*DeleteSessionOutput, error) {
	if input.Code == "" {
		return nil, errors.InvalidArgument("session code is required")
	}

	if _, err := o.sessionRepo.Delete(ctx, raidsession.DeleteInput{Code: input.Code}); err != nil {
		return nil, err
	}
	return &DeleteSessionOutput{}, nil
}
