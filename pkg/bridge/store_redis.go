package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultRedisKeyPrefix = "cardbridge:outcome:"

// RedisOutcomeStore keeps each outcome under its own key with an expiry,
// so retention is bounded by ttl. Keys are scoped to a session because
// submission ids restart with every process.
type RedisOutcomeStore struct {
	client    *redis.Client
	prefix    string
	sessionID string
	ttl       time.Duration
}

type NewRedisOutcomeStoreOptions struct {
	Client *redis.Client
	Prefix string
	// SessionID scopes every key to one bridge process. A random id is
	// used when empty.
	SessionID string
	TTL       time.Duration
}

func NewRedisOutcomeStore(opts NewRedisOutcomeStoreOptions) *RedisOutcomeStore {
	s := &RedisOutcomeStore{
		client:    opts.Client,
		prefix:    opts.Prefix,
		sessionID: opts.SessionID,
		ttl:       opts.TTL,
	}
	if s.prefix == "" {
		s.prefix = DefaultRedisKeyPrefix
	}
	if s.sessionID == "" {
		s.sessionID = uuid.NewString()
	}
	if s.ttl <= 0 {
		s.ttl = DefaultOutcomeTTL
	}
	return s
}

// NewRedisOutcomeStoreFromURL connects to redis and verifies the connection.
func NewRedisOutcomeStoreFromURL(ctx context.Context, url string, sessionID string, ttl time.Duration) (*RedisOutcomeStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisOutcomeStore(NewRedisOutcomeStoreOptions{
		Client:    client,
		SessionID: sessionID,
		TTL:       ttl,
	}), nil
}

func (s *RedisOutcomeStore) key(submissionID uint64) string {
	return s.prefix + s.sessionID + ":" + strconv.FormatUint(submissionID, 10)
}

func (s *RedisOutcomeStore) Put(ctx context.Context, outcome ActionOutcome) error {
	b, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}
	if err := s.client.Set(ctx, s.key(outcome.SubmissionID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set outcome: %w", err)
	}
	return nil
}

func (s *RedisOutcomeStore) Get(ctx context.Context, submissionID uint64) (ActionOutcome, bool, error) {
	b, err := s.client.Get(ctx, s.key(submissionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ActionOutcome{}, false, nil
		}
		return ActionOutcome{}, false, fmt.Errorf("failed to get outcome: %w", err)
	}
	var outcome ActionOutcome
	if err := json.Unmarshal(b, &outcome); err != nil {
		return ActionOutcome{}, false, fmt.Errorf("failed to unmarshal outcome: %w", err)
	}
	return outcome, true, nil
}

func (s *RedisOutcomeStore) Close() error {
	return s.client.Close()
}
