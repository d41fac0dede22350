package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

const (
	friendsKeyPrefix        = "friends:"
	friendsVersionKeyPrefix = "friends:version:"
)

// FriendCache keeps friend id lists in Redis. Every user also has a version
// counter bumped by Invalidate; Set only writes while that counter still holds
// the value Get reported.
type FriendCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping().Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func NewFriendCache(client *redis.Client, ttl time.Duration) *FriendCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &FriendCache{client: client, ttl: ttl}
}

func FriendsKey(userID int64) string {
	return fmt.Sprintf("%s%d", friendsKeyPrefix, userID)
}

func FriendsVersionKey(userID int64) string {
	return fmt.Sprintf("%s%d", friendsVersionKeyPrefix, userID)
}

// Get reports a miss with ok=false and a nil error.
func (c *FriendCache) Get(ctx context.Context, userID int64) ([]int64, int64, bool, error) {
	client := c.client.WithContext(ctx)

	var listCmd *redis.StringCmd
	var versionCmd *redis.StringCmd
	_, err := client.Pipelined(func(pipe redis.Pipeliner) error {
		listCmd = pipe.Get(FriendsKey(userID))
		versionCmd = pipe.Get(FriendsVersionKey(userID))
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, 0, false, err
	}

	version, err := versionOf(versionCmd)
	if err != nil {
		return nil, 0, false, err
	}

	raw, err := listCmd.Result()
	if err == redis.Nil {
		return nil, version, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}

	ids, err := decodeFriendIDs(raw)
	if err != nil {
		return nil, 0, false, err
	}
	return ids, version, true, nil
}

// Set stores the list unless the user was invalidated since Get returned version.
func (c *FriendCache) Set(ctx context.Context, userID int64, friendIDs []int64, version int64) error {
	raw, err := encodeFriendIDs(friendIDs)
	if err != nil {
		return err
	}

	versionKey := FriendsVersionKey(userID)
	err = c.client.WithContext(ctx).Watch(func(tx *redis.Tx) error {
		current, err := versionOf(tx.Get(versionKey))
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.Pipelined(func(pipe redis.Pipeliner) error {
			pipe.Set(FriendsKey(userID), raw, c.ttl)
			return nil
		})
		return err
	}, versionKey)
	if err == redis.TxFailedErr {
		return nil
	}
	return err
}

func (c *FriendCache) Invalidate(ctx context.Context, userIDs ...int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := c.client.WithContext(ctx).TxPipelined(func(pipe redis.Pipeliner) error {
		for _, id := range userIDs {
			pipe.Incr(FriendsVersionKey(id))
			pipe.Expire(FriendsVersionKey(id), c.ttl)
			pipe.Del(FriendsKey(id))
		}
		return nil
	})
	return err
}

func versionOf(cmd *redis.StringCmd) (int64, error) {
	version, err := cmd.Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading friends version: %w", err)
	}
	return version, nil
}

func encodeFriendIDs(ids []int64) (string, error) {
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeFriendIDs(raw string) ([]int64, error) {
	ids := []int64{}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decoding cached friends: %w", err)
	}
	return ids, nil
}
