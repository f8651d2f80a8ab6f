package queries

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReportCachePrefix is the key namespace for one user's cached reports.
// Event subscribers delete by this prefix when the user's tasks change.
func ReportCachePrefix(userID uuid.UUID) string {
	return fmt.Sprintf("reports:%s:", userID)
}

// Keys carry a one-minute time bucket so stale entries age out on their
// own even when invalidation never reaches the cache.
func priorityCacheKey(userID, taskID uuid.UUID, version int, now time.Time) string {
	bucket := now.Truncate(time.Minute).Unix()
	return fmt.Sprintf("%spriority:%s:v%d:%d", ReportCachePrefix(userID), taskID, version, bucket)
}

func workloadCacheKey(userID uuid.UUID, now time.Time) string {
	bucket := now.Truncate(time.Minute).Unix()
	return fmt.Sprintf("%sworkload:%d", ReportCachePrefix(userID), bucket)
}
