package raid

import (
	"github.com/shuffleraid/raid-api/internal/entities"
)

// CreateSessionInput holds what a host needs to open a session
type CreateSessionInput struct {
	HostUID    string
	HostName   string
	ClassName  string
	Mode       entities.Mode
	Difficulty string
}

// CreateSessionOutput returns the freshly stored session
type CreateSessionOutput struct {
	Session *entities.Session
}

// GetSessionInput identifies a session by its share code
type GetSessionInput struct {
	Code string
}

// GetSessionOutput returns the current session document
type GetSessionOutput struct {
	Session *entities.Session
}

// JoinSessionInput holds what a guest needs to enter a lobby
type JoinSessionInput struct {
	Code      string
	UID       string
	Name      string
	ClassName string
}

// JoinSessionOutput returns the session after the join
type JoinSessionOutput struct {
	Session *entities.Session
}

// SetReadyInput flips a player's lobby readiness
type SetReadyInput struct {
	Code  string
	UID   string
	Ready bool
}

// SetReadyOutput returns the session after the change
type SetReadyOutput struct {
	Session *entities.Session
}

// StartCombatInput asks the host to begin the raid
type StartCombatInput struct {
	Code         string
	InitiatorUID string
}

// StartCombatOutput returns the session in combat
type StartCombatOutput struct {
	Session *entities.Session
}

// DrawEncounterInput spawns the next enemy when the barrier is full
type DrawEncounterInput struct {
	Code string
}

// DrawEncounterOutput returns the session with the new encounter
type DrawEncounterOutput struct {
	Session *entities.Session
}

// UseAbilityInput holds one player action
type UseAbilityInput struct {
	Code      string
	ActorUID  string
	AbilityID string
	TargetUID string
}

// UseAbilityOutput returns the session after the action resolves
type UseAbilityOutput struct {
	Session *entities.Session
}

// EndTurnInput passes the turn to the next living player
type EndTurnInput struct {
	Code     string
	ActorUID string
}

// EndTurnOutput returns the session after the handoff
type EndTurnOutput struct {
	Session *entities.Session
}

// ResolveEnemyInput runs the enemy phase for a session
type ResolveEnemyInput struct {
	Code string
}

// ResolveEnemyOutput returns the session after the enemy acts
type ResolveEnemyOutput struct {
	Session *entities.Session
}

// ReadyForNextInput marks a player at the next-encounter barrier
type ReadyForNextInput struct {
	Code  string
	UID   string
	Ready bool
}

// ReadyForNextOutput returns the session after the change
type ReadyForNextOutput struct {
	Session *entities.Session
}

// ClaimRewardInput picks one of the offered reward cards
type ClaimRewardInput struct {
	Code     string
	ActorUID string
	CardID   string
}

// ClaimRewardOutput returns the session after the claim
type ClaimRewardOutput struct {
	Session *entities.Session
}

// SendChatInput appends one chat message
type SendChatInput struct {
	Code string
	UID  string
	Text string
}

// SendChatOutput returns the session after the append
type SendChatOutput struct {
	Session *entities.Session
}

// RetryInput restarts a finished raid in the same session
type RetryInput struct {
	Code     string
	ActorUID string
}

// RetryOutput returns the session back in the lobby
type RetryOutput struct {
	Session *entities.Session
}

// DeleteSessionInput removes a session document
type DeleteSessionInput struct {
	Code string
}

// DeleteSessionOutput is empty; absence of error means deleted
type DeleteSessionOutput struct{}
