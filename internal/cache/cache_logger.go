package cache

import (
	"context"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// InvalidateJobBoard drops every cached job listing
func InvalidateJobBoard(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Jobs, "list:*")
}
