package raidsession

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/shuffleraid/raid-api/internal/entities"
	"github.com/shuffleraid/raid-api/internal/errors"
	"github.com/shuffleraid/raid-api/internal/pkg/clock"
	redisclient "github.com/shuffleraid/raid-api/internal/redis"
)

const (
	// Key layout per session code:
	//   raid:{code}        hash (scalars, enemy, player:{uid} fields)
	//   raid:{code}:log    list, append-only
	//   raid:{code}:chat   list, append-only
	//   raid:{code}:ready  set, the next-encounter barrier
	sessionKeyPrefix = "raid:"
	defaultTTL       = 24 * time.Hour

	fieldCode          = "code"
	fieldHostUID       = "host_uid"
	fieldStatus        = "status"
	fieldPhase         = "phase"
	fieldMode          = "mode"
	fieldDifficulty    = "difficulty"
	fieldActiveTurn    = "active_turn_uid"
	fieldBudget        = "encounter_budget"
	fieldRewardsOn     = "rewards_enabled"
	fieldTurnOrder     = "turn_order"
	fieldEnemy         = "enemy"
	fieldRewardOptions = "reward_options"
	fieldVersion       = "version"
	fieldCreatedAt     = "created_at"
	playerFieldPrefix  = "player:"
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
	Clock  clock.Clock
	// TTL bounds how long an untouched session document survives;
	// zero means the default
	TTL time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.Clock == nil {
		return errors.InvalidArgument("clock is required")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
	ttl    time.Duration
}

// NewRedisRepository creates a new Redis repository for session documents
func NewRedisRepository(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
		ttl:    ttl,
	}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

// Create stores a new session document; the code must be unused
func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Session == nil {
		return nil, errors.InvalidArgument("session cannot be nil")
	}
	if input.Session.Code == "" {
		return nil, errors.InvalidArgument("session code cannot be empty")
	}

	session := input.Session.Clone()
	session.Version = 1

	key := r.key(session.Code)
	taken, err := r.client.HSetNX(ctx, key, fieldCode, session.Code).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to reserve session %s", session.Code)
	}
	if !taken {
		return nil, errors.AlreadyExists(fmt.Sprintf("session code %s is taken", session.Code))
	}

	fields, err := sessionToHash(session)
	if err != nil {
		return nil, err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		for _, line := range session.Log {
			pipe.RPush(ctx, r.logKey(session.Code), line)
		}
		for _, msg := range session.Chat {
			raw, merr := json.Marshal(msg)
			if merr != nil {
				return merr
			}
			pipe.RPush(ctx, r.chatKey(session.Code), raw)
		}
		for uid := range session.ReadyForNext {
			pipe.SAdd(ctx, r.readyKey(session.Code), uid)
		}
		r.refreshTTL(ctx, pipe, session.Code)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to store session %s", session.Code)
	}

	return &CreateOutput{Session: session}, nil
}

// Get retrieves the current session document by code
func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.Code == "" {
		return nil, errors.InvalidArgument("session code cannot be empty")
	}

	fields, err := r.client.HGetAll(ctx, r.key(input.Code)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get session %s", input.Code)
	}
	if len(fields) == 0 {
		return nil, errors.NotFoundf("session %s not found", input.Code)
	}

	log, err := r.client.LRange(ctx, r.logKey(input.Code), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get session %s log", input.Code)
	}
	chat, err := r.client.LRange(ctx, r.chatKey(input.Code), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get session %s chat", input.Code)
	}
	ready, err := r.client.SMembers(ctx, r.readyKey(input.Code)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get session %s barrier", input.Code)
	}

	session, err := hashToSession(fields, log, chat, ready)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Session: session}, nil
}

// Apply merges a patch under optimistic concurrency
func (r *redisRepository) Apply(ctx context.Context, input ApplyInput) (*ApplyOutput, error) {
	if input.Code == "" {
		return nil, errors.InvalidArgument("session code cannot be empty")
	}
	if input.Patch == nil || input.Patch.IsEmpty() {
		return &ApplyOutput{Version: input.ExpectedVersion}, nil
	}

	key := r.key(input.Code)
	patch := input.Patch

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, fieldVersion).Result()
		if err == redis.Nil {
			return errors.NotFoundf("session %s not found", input.Code)
		}
		if err != nil {
			return errors.Wrapf(err, "failed to read session %s version", input.Code)
		}
		version, err := strconv.ParseInt(current, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "corrupt version for session %s", input.Code)
		}
		if version != input.ExpectedVersion {
			return errors.Abortedf("session %s moved from version %d to %d", input.Code, input.ExpectedVersion, version)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return r.applyPatch(ctx, pipe, input.Code, patch)
		})
		return err
	}, key)
	if err == redis.TxFailedErr {
		return nil, errors.Abortedf("session %s changed during update", input.Code)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to apply patch to session %s", input.Code)
	}

	return &ApplyOutput{Version: input.ExpectedVersion + 1}, nil
}

func (r *redisRepository) applyPatch(ctx context.Context, pipe redis.Pipeliner, code string, patch *entities.Patch) error {
	key := r.key(code)

	sets := make(map[string]any)
	if patch.Status != nil {
		sets[fieldStatus] = string(*patch.Status)
	}
	if patch.Phase != nil {
		sets[fieldPhase] = string(*patch.Phase)
	}
	if patch.ActiveTurnUID != nil {
		sets[fieldActiveTurn] = *patch.ActiveTurnUID
	}
	if patch.EncounterBudget != nil {
		sets[fieldBudget] = strconv.Itoa(*patch.EncounterBudget)
	}
	if patch.TurnOrder != nil {
		raw, err := json.Marshal(patch.TurnOrder)
		if err != nil {
			return err
		}
		sets[fieldTurnOrder] = raw
	}
	if patch.Enemy != nil {
		raw, err := json.Marshal(patch.Enemy)
		if err != nil {
			return err
		}
		sets[fieldEnemy] = raw
	}
	if patch.RewardOptions != nil {
		raw, err := json.Marshal(patch.RewardOptions)
		if err != nil {
			return err
		}
		sets[fieldRewardOptions] = raw
	}
	for uid, player := range patch.Players {
		raw, err := json.Marshal(player)
		if err != nil {
			return err
		}
		sets[playerFieldPrefix+uid] = raw
	}
	if len(sets) > 0 {
		pipe.HSet(ctx, key, sets)
	}

	if patch.Enemy == nil && patch.ClearEnemy {
		pipe.HDel(ctx, key, fieldEnemy)
	}
	if patch.RewardOptions == nil && patch.ClearRewards {
		pipe.HDel(ctx, key, fieldRewardOptions)
	}

	for _, line := range patch.AppendLog {
		pipe.RPush(ctx, r.logKey(code), line)
	}
	for _, msg := range patch.AppendChat {
		raw, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		pipe.RPush(ctx, r.chatKey(code), raw)
	}

	if patch.ClearReady {
		pipe.Del(ctx, r.readyKey(code))
	}
	if len(patch.AddReady) > 0 {
		members := make([]any, len(patch.AddReady))
		for i, uid := range patch.AddReady {
			members[i] = uid
		}
		pipe.SAdd(ctx, r.readyKey(code), members...)
	}
	if len(patch.RemoveReady) > 0 {
		members := make([]any, len(patch.RemoveReady))
		for i, uid := range patch.RemoveReady {
			members[i] = uid
		}
		pipe.SRem(ctx, r.readyKey(code), members...)
	}

	pipe.HIncrBy(ctx, key, fieldVersion, 1)
	r.refreshTTL(ctx, pipe, code)
	return nil
}

// Delete removes a session document and its side keys
func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.Code == "" {
		return nil, errors.InvalidArgument("session code cannot be empty")
	}

	err := r.client.Del(ctx,
		r.key(input.Code),
		r.logKey(input.Code),
		r.chatKey(input.Code),
		r.readyKey(input.Code),
	).Err()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete session %s", input.Code)
	}
	return &DeleteOutput{}, nil
}

func (r *redisRepository) refreshTTL(ctx context.Context, pipe redis.Pipeliner, code string) {
	pipe.Expire(ctx, r.key(code), r.ttl)
	pipe.Expire(ctx, r.logKey(code), r.ttl)
	pipe.Expire(ctx, r.chatKey(code), r.ttl)
	pipe.Expire(ctx, r.readyKey(code), r.ttl)
}

func (r *redisRepository) key(code string) string {
	return sessionKeyPrefix + code
}

func (r *redisRepository) logKey(code string) string {
	return sessionKeyPrefix + code + ":log"
}

func (r *redisRepository) chatKey(code string) string {
	return sessionKeyPrefix + code + ":chat"
}

func (r *redisRepository) readyKey(code string) string {
	return sessionKeyPrefix + code + ":ready"
}

// sessionToHash flattens the scalar and JSON fields of a session into the
// hash representation; log, chat, and barrier live in their own keys
func sessionToHash(s *entities.Session) (map[string]any, error) {
	fields := map[string]any{
		fieldCode:       s.Code,
		fieldHostUID:    s.HostUID,
		fieldStatus:     string(s.Status),
		fieldPhase:      string(s.Phase),
		fieldMode:       string(s.Mode),
		fieldDifficulty: s.Difficulty,
		fieldActiveTurn: s.ActiveTurnUID,
		fieldBudget:     strconv.Itoa(s.EncounterBudget),
		fieldRewardsOn:  strconv.FormatBool(s.RewardsEnabled),
		fieldVersion:    strconv.FormatInt(s.Version, 10),
		fieldCreatedAt:  s.CreatedAt.Format(time.RFC3339Nano),
	}

	if s.TurnOrder != nil {
		raw, err := json.Marshal(s.TurnOrder)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal turn order")
		}
		fields[fieldTurnOrder] = raw
	}
	if s.Enemy != nil {
		raw, err := json.Marshal(s.Enemy)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal enemy")
		}
		fields[fieldEnemy] = raw
	}
	if s.RewardOptions != nil {
		raw, err := json.Marshal(s.RewardOptions)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal reward options")
		}
		fields[fieldRewardOptions] = raw
	}
	for uid, player := range s.Players {
		raw, err := json.Marshal(player)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal player %s", uid)
		}
		fields[playerFieldPrefix+uid] = raw
	}
	return fields, nil
}

// hashToSession rebuilds a session document from its stored pieces
func hashToSession(fields map[string]string, log, chat, ready []string) (*entities.Session, error) {
	s := &entities.Session{
		Code:          fields[fieldCode],
		HostUID:       fields[fieldHostUID],
		Status:        entities.Status(fields[fieldStatus]),
		Phase:         entities.Phase(fields[fieldPhase]),
		Mode:          entities.Mode(fields[fieldMode]),
		Difficulty:    fields[fieldDifficulty],
		ActiveTurnUID: fields[fieldActiveTurn],
		Players:       make(map[string]*entities.Player),
		ReadyForNext:  make(map[string]bool),
	}

	budget, err := strconv.Atoi(fields[fieldBudget])
	if err != nil {
		return nil, errors.Wrap(err, "corrupt encounter budget")
	}
	s.EncounterBudget = budget

	s.RewardsEnabled, err = strconv.ParseBool(fields[fieldRewardsOn])
	if err != nil {
		return nil, errors.Wrap(err, "corrupt rewards flag")
	}

	s.Version, err = strconv.ParseInt(fields[fieldVersion], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "corrupt version")
	}

	s.CreatedAt, err = time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if err != nil {
		return nil, errors.Wrap(err, "corrupt creation time")
	}

	if raw, ok := fields[fieldTurnOrder]; ok {
		if err := json.Unmarshal([]byte(raw), &s.TurnOrder); err != nil {
			return nil, errors.Wrap(err, "corrupt turn order")
		}
	}
	if raw, ok := fields[fieldEnemy]; ok {
		var enemy entities.Enemy
		if err := json.Unmarshal([]byte(raw), &enemy); err != nil {
			return nil, errors.Wrap(err, "corrupt enemy")
		}
		s.Enemy = &enemy
	}
	if raw, ok := fields[fieldRewardOptions]; ok {
		if err := json.Unmarshal([]byte(raw), &s.RewardOptions); err != nil {
			return nil, errors.Wrap(err, "corrupt reward options")
		}
	}

	for field, raw := range fields {
		if len(field) <= len(playerFieldPrefix) || field[:len(playerFieldPrefix)] != playerFieldPrefix {
			continue
		}
		var player entities.Player
		if err := json.Unmarshal([]byte(raw), &player); err != nil {
			return nil, errors.Wrapf(err, "corrupt player %s", field)
		}
		s.Players[player.UID] = &player
	}

	if len(log) > 0 {
		s.Log = log
	}
	for _, raw := range chat {
		var msg entities.ChatMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, errors.Wrap(err, "corrupt chat message")
		}
		s.Chat = append(s.Chat, msg)
	}
	for _, uid := range ready {
		s.ReadyForNext[uid] = true
	}
	return s, nil
}
