package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix    = "user:%d"
	tagListKeyPrefix = "tags:assigned:%t"
)

const (
	UserTTL    = 5 * time.Minute
	TagListTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

func TagListKey(assignedOnly bool) string {
	return fmt.Sprintf(tagListKeyPrefix, assignedOnly)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateTagLists drops both variants of the cached tag listing. Post
// writes call this because they may create tags or change assignment state.
func InvalidateTagLists(ctx context.Context) {
	Invalidate(ctx, TagListKey(true))
	Invalidate(ctx, TagListKey(false))
}
