package entities

// Patch is the minimal merge-patch a turn-engine transition produced.
// Every field is optional; the store applies only what is set, so
// concurrent appends to log/chat and barrier membership changes commute
// instead of clobbering each other.
type Patch struct {
	Status        *Status `json:"status,omitempty"`
	Phase         *Phase  `json:"phase,omitempty"`
	ActiveTurnUID *string `json:"active_turn_uid,omitempty"`

	// TurnOrder replaces the whole order when non-nil
	TurnOrder []string `json:"turn_order,omitempty"`

	EncounterBudget *int `json:"encounter_budget,omitempty"`

	// Enemy replaces the enemy document; ClearEnemy removes it
	Enemy      *Enemy `json:"enemy,omitempty"`
	ClearEnemy bool   `json:"clear_enemy,omitempty"`

	// Players replaces individual player documents by uid
	Players map[string]*Player `json:"players,omitempty"`

	RewardOptions []Card `json:"reward_options,omitempty"`
	ClearRewards  bool   `json:"clear_rewards,omitempty"`

	AppendLog  []string      `json:"append_log,omitempty"`
	AppendChat []ChatMessage `json:"append_chat,omitempty"`

	AddReady    []string `json:"add_ready,omitempty"`
	RemoveReady []string `json:"remove_ready,omitempty"`
	ClearReady  bool     `json:"clear_ready,omitempty"`
}

// IsEmpty reports whether applying the patch would change nothing
func (p *Patch) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Status == nil && p.Phase == nil && p.ActiveTurnUID == nil &&
		p.TurnOrder == nil && p.EncounterBudget == nil &&
		p.Enemy == nil && !p.ClearEnemy &&
		len(p.Players) == 0 &&
		p.RewardOptions == nil && !p.ClearRewards &&
		len(p.AppendLog) == 0 && len(p.AppendChat) == 0 &&
		len(p.AddReady) == 0 && len(p.RemoveReady) == 0 && !p.ClearReady
}

// SetPlayer records a per-player replacement
func (p *Patch) SetPlayer(player *Player) {
	if p.Players == nil {
		p.Players = make(map[string]*Player)
	}
	p.Players[player.UID] = player
}
