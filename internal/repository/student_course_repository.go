package repository

import (
	"context"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
)

// StudentCourseRepository keeps per-student course id sets in Redis.
type StudentCourseRepository struct {
	client *redis.Client
}

// NewStudentCourseRepository constructs the repository.
func NewStudentCourseRepository(client *redis.Client) *StudentCourseRepository {
	return &StudentCourseRepository{client: client}
}

// CompletedKey is the Redis set holding a student's completed course ids.
func CompletedKey(studentID string) string {
	return fmt.Sprintf("student:%s:completed", studentID)
}

// BookmarkKey is the Redis set holding a student's bookmarked course ids.
func BookmarkKey(studentID string) string {
	return fmt.Sprintf("student:%s:bookmarks", studentID)
}

// Members returns the sorted members of a set. A missing key is empty.
func (r *StudentCourseRepository) Members(ctx context.Context, key string) ([]string, error) {
	members, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers %s: %w", key, err)
	}
	slices.Sort(members)
	return members, nil
}

// Replace atomically swaps the set contents for ids.
func (r *StudentCourseRepository) Replace(ctx context.Context, key string, ids []string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(ids) > 0 {
			pipe.SAdd(ctx, key, toMembers(ids)...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis replace %s: %w", key, err)
	}
	return nil
}

// Add inserts id into the set.
func (r *StudentCourseRepository) Add(ctx context.Context, key, id string) error {
	if err := r.client.SAdd(ctx, key, id).Err(); err != nil {
		return fmt.Errorf("redis sadd %s: %w", key, err)
	}
	return nil
}

// Remove deletes id from the set.
func (r *StudentCourseRepository) Remove(ctx context.Context, key, id string) error {
	if err := r.client.SRem(ctx, key, id).Err(); err != nil {
		return fmt.Errorf("redis srem %s: %w", key, err)
	}
	return nil
}

// toggleScript flips set membership in one step and returns 1 when the
// member was added.
var toggleScript = redis.NewScript(`
if redis.call("SISMEMBER", KEYS[1], ARGV[1]) == 1 then
	redis.call("SREM", KEYS[1], ARGV[1])
	return 0
end
redis.call("SADD", KEYS[1], ARGV[1])
return 1
`)

// Toggle flips membership of id and reports whether it is now a member.
func (r *StudentCourseRepository) Toggle(ctx context.Context, key, id string) (bool, error) {
	added, err := toggleScript.Run(ctx, r.client, []string{key}, id).Int()
	if err != nil {
		return false, fmt.Errorf("redis toggle %s: %w", key, err)
	}
	return added == 1, nil
}

func toMembers(ids []string) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
