package reqctx

import (
	"context"
	"strconv"
)

type ctxKey string

const (
	keyRID    ctxKey = "rewards_rid"
	keyUserID ctxKey = "rewards_user_id"
)

// WithRID stores the request correlation id for log lines.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns correlation id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

// WithUserID stores the authenticated user id.
func WithUserID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, keyUserID, id)
}

// UserID returns the authenticated user id if present.
func UserID(ctx context.Context) uint64 {
	v, _ := ctx.Value(keyUserID).(uint64)
	return v
}

// Prefix renders "[rid=... uid=...] " for log.Printf, or "" when neither is set.
func Prefix(ctx context.Context) string {
	rid, uid := RID(ctx), UserID(ctx)
	switch {
	case rid != "" && uid != 0:
		return "[rid=" + rid + " uid=" + strconv.FormatUint(uid, 10) + "] "
	case rid != "":
		return "[rid=" + rid + "] "
	case uid != 0:
		return "[uid=" + strconv.FormatUint(uid, 10) + "] "
	}
	return ""
}
