package testutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shuffleraid/raid-api/internal/catalog"
	"github.com/shuffleraid/raid-api/internal/entities"
)

// Fixture identities shared across suites
const (
	HostUID   = "player-host"
	GuestUID  = "player-guest"
	HostName  = "Alice"
	GuestName = "Bob"
	Code      = "RAID1"
)

// FixtureTime pins CreatedAt so round-trips compare cleanly
var FixtureTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// LobbySession builds a two-player session sitting in the lobby with
// both players ready
func LobbySession(t *testing.T) *entities.Session {
	t.Helper()

	host, err := catalog.NewPlayer(HostUID, HostName, "Warrior", entities.RoleHost)
	require.NoError(t, err)
	host.Ready = true

	guest, err := catalog.NewPlayer(GuestUID, GuestName, "Mage", entities.RoleGuest)
	require.NoError(t, err)
	guest.Ready = true

	return &entities.Session{
		Code:            Code,
		HostUID:         HostUID,
		Status:          entities.StatusLobby,
		Phase:           entities.PhasePlayers,
		Mode:            entities.ModeMulti,
		Difficulty:      "normal",
		Players:         map[string]*entities.Player{HostUID: host, GuestUID: guest},
		EncounterBudget: 15,
		Log:             []string{"Alice opened raid RAID1."},
		ReadyForNext:    make(map[string]bool),
		Version:         1,
		CreatedAt:       FixtureTime,
	}
}

// CombatSession builds a two-player session mid-combat with the host
// holding the turn and no enemy drawn yet
func CombatSession(t *testing.T) *entities.Session {
	t.Helper()

	s := LobbySession(t)
	s.Status = entities.StatusCombat
	s.TurnOrder = []string{HostUID, GuestUID}
	s.ActiveTurnUID = HostUID
	return s
}

// WithEnemy attaches a freshly instantiated enemy by template name
func WithEnemy(t *testing.T, s *entities.Session, name string) *entities.Session {
	t.Helper()

	for _, tmpl := range catalog.Enemies() {
		if tmpl.Name == name {
			s.Enemy = tmpl.Instantiate()
			return s
		}
	}
	t.Fatalf("unknown enemy template %q", name)
	return nil
}
