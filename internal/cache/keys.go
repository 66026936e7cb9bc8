package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

const (
	CourseListTTL       = 15 * time.Minute
	CourseDetailTTL     = 30 * time.Minute
	CourseStatsTTL      = 30 * time.Minute
	DashboardTTL        = 5 * time.Minute
	CourseAnalyticsTTL  = 10 * time.Minute
	UserAnalyticsTTL    = 5 * time.Minute
	coursesNamespace    = "courses"
	analyticsNamespace  = "analytics"
	revokedTokenKeyBase = "auth:revoked"
)

// Fingerprint hashes arbitrary query parameters into a stable key segment.
func Fingerprint(parts ...interface{}) string {
	payload, err := json.Marshal(parts)
	if err != nil {
		payload = []byte(fmt.Sprint(parts...))
	}
	sum := sha1.Sum(payload)
	return hex.EncodeToString(sum[:])
}

func CourseListKey(fingerprint string) string {
	return fmt.Sprintf("%s:list:%s", coursesNamespace, fingerprint)
}

func CourseDetailKey(id uint) string {
	return fmt.Sprintf("%s:detail:%d", coursesNamespace, id)
}

func CourseInstructorKey(instructorID uint, fingerprint string) string {
	return fmt.Sprintf("%s:instructor:%d:%s", coursesNamespace, instructorID, fingerprint)
}

func CoursePopularKey(limit int) string {
	return fmt.Sprintf("%s:popular:%d", coursesNamespace, limit)
}

func CourseSearchKey(fingerprint string) string {
	return fmt.Sprintf("%s:search:%s", coursesNamespace, fingerprint)
}

func CourseStatsKey() string {
	return coursesNamespace + ":stats"
}

func AnalyticsDashboardKey() string {
	return analyticsNamespace + ":dashboard"
}

func AnalyticsCourseKey(courseID uint) string {
	return fmt.Sprintf("%s:course:%d", analyticsNamespace, courseID)
}

func AnalyticsUserKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", analyticsNamespace, userID)
}

func RevokedTokenKey(tokenID string) string {
	return revokedTokenKeyBase + ":" + tokenID
}

// CourseCollectionPatterns are the listing namespaces any course write makes stale.
func CourseCollectionPatterns() []string {
	return []string{
		coursesNamespace + ":list:*",
		coursesNamespace + ":search:*",
		coursesNamespace + ":popular:*",
		CourseStatsKey(),
	}
}

func CourseInstructorPattern(instructorID uint) string {
	return fmt.Sprintf("%s:instructor:%d:*", coursesNamespace, instructorID)
}
