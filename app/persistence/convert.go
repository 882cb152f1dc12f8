package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/umputun/jobdao/app/persistence/enums"
)

// toMillis converts time to unix milliseconds, the storage format of all timestamps
func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// fromMillis converts stored unix milliseconds back to utc time
func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// nullMillis stores zero time as NULL
func nullMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(t), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// runningCondition selects jobs with no end time and no error
const runningCondition = "endTime IS NULL AND COALESCE(error, '') = ''"

// statusCondition returns SQL predicate on JOBS columns selecting jobs in given status.
// Columns are unqualified, so it works both in joined selects and in updates.
// Must match JobInfo.Status: an empty error column counts as no error.
func statusCondition(status enums.JobStatus) (string, error) {
	switch status {
	case enums.JobStatusRunning:
		return runningCondition, nil
	case enums.JobStatusError:
		return "COALESCE(error, '') <> ''", nil
	case enums.JobStatusFinished:
		return "endTime IS NOT NULL AND COALESCE(error, '') = ''", nil
	}
	return "", fmt.Errorf("unknown job status %q", status)
}
