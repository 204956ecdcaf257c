package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%s"
	DogKeyPrefix  = "dog:%d"
)

const (
	UserTTL = 5 * time.Minute
	DogTTL  = 10 * time.Minute
)

func UserKey(username string) string {
	return fmt.Sprintf(UserKeyPrefix, username)
}

func DogKey(dogID uint) string {
	return fmt.Sprintf(DogKeyPrefix, dogID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, username string) {
	Invalidate(ctx, UserKey(username))
}

func InvalidateDog(ctx context.Context, dogID uint) {
	Invalidate(ctx, DogKey(dogID))
}
