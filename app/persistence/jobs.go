package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/jobdao/app/persistence/enums"
)

// ContextTerminatedClass is the error class set on jobs of a terminated context
const ContextTerminatedClass = "ContextTerminatedError"

// ErrorData is a job failure
type ErrorData struct {
	Message    string
	ErrorClass string
	StackTrace string
}

// JobInfo is a single job execution. Zero EndTime means the job has not ended.
type JobInfo struct {
	JobID       string
	ContextName string
	Binary      BinaryInfo
	ClassPath   string
	StartTime   time.Time
	EndTime     time.Time
	Error       *ErrorData
}

// Status derives job status: Error if it has an error message, Finished if ended without error,
// Running otherwise
func (j JobInfo) Status() enums.JobStatus {
	switch {
	case j.Error != nil && j.Error.Message != "":
		return enums.JobStatusError
	case !j.EndTime.IsZero():
		return enums.JobStatusFinished
	default:
		return enums.JobStatusRunning
	}
}

// JobStore keeps job records in JOBS, joined with BINARIES on read
type JobStore struct {
	db       *DB
	binaries *BinaryStore
}

// jobRow is a JOBS row joined with its binary
type jobRow struct {
	JobID           string           `db:"jobId"`
	ContextName     string           `db:"contextName"`
	AppName         string           `db:"appName"`
	BinaryType      enums.BinaryType `db:"binaryType"`
	UploadTime      int64            `db:"uploadTime"`
	ClassPath       string           `db:"classPath"`
	StartTime       int64            `db:"startTime"`
	EndTime         sql.NullInt64    `db:"endTime"`
	Error           sql.NullString   `db:"error"`
	ErrorClass      sql.NullString   `db:"errorClass"`
	ErrorStackTrace sql.NullString   `db:"errorStackTrace"`
}

const jobsSelect = `SELECT j.jobId, j.contextName, b.appName, b.binaryType, b.uploadTime, j.classPath,
	j.startTime, j.endTime, j.error, j.errorClass, j.errorStackTrace
	FROM JOBS j JOIN BINARIES b ON j.binId = b.binId`

// NewJobStore makes job store, binaries used to resolve binary ids of saved jobs
func NewJobStore(db *DB, binaries *BinaryStore) *JobStore {
	return &JobStore{db: db, binaries: binaries}
}

// SaveJobInfo inserts or replaces the job. The binary must exist, ErrNotFound returned otherwise.
func (s *JobStore) SaveJobInfo(ctx context.Context, job JobInfo) error {
	binID, err := s.binaries.resolveID(ctx, job.Binary)
	if err != nil {
		return err
	}

	var errMsg, errClass, errTrace string
	if job.Error != nil {
		errMsg, errClass, errTrace = job.Error.Message, job.Error.ErrorClass, job.Error.StackTrace
	}

	return s.db.submit(ctx, "save job", func(ctx context.Context, q sqlx.ExtContext) error {
		res, err := q.ExecContext(ctx, `INSERT OR REPLACE INTO JOBS
			(jobId, contextName, binId, classPath, startTime, endTime, error, errorClass, errorStackTrace)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			job.JobID, job.ContextName, binID, job.ClassPath, toMillis(job.StartTime), nullMillis(job.EndTime),
			nullString(errMsg), nullString(errClass), nullString(errTrace))
		if err != nil {
			return writeError("save job", job.JobID, err)
		}
		_, err = affected(res, "save job", job.JobID)
		return err
	})
}

// GetJobInfo returns the job, false if not found
func (s *JobStore) GetJobInfo(ctx context.Context, jobID string) (JobInfo, bool, error) {
	jobs, err := s.query(ctx, "get job", jobsSelect+` WHERE j.jobId = ?`, jobID)
	if err != nil || len(jobs) == 0 {
		return JobInfo{}, false, err
	}
	return jobs[0], true, nil
}

// GetJobInfos returns up to limit latest jobs by start time, in any of given statuses.
// No statuses means all jobs.
func (s *JobStore) GetJobInfos(ctx context.Context, limit int, statuses ...enums.JobStatus) ([]JobInfo, error) {
	if limit < 0 {
		limit = 0 // sqlite treats negative limit as no limit
	}
	query := jobsSelect
	if len(statuses) > 0 {
		conds := make([]string, 0, len(statuses))
		for _, st := range statuses {
			cond, err := statusCondition(st)
			if err != nil {
				return nil, fmt.Errorf("failed to get jobs: %w", err)
			}
			conds = append(conds, "("+cond+")")
		}
		query += " WHERE " + strings.Join(conds, " OR ")
	}
	query += ` ORDER BY j.startTime DESC LIMIT ?`
	return s.query(ctx, "get jobs", query, limit)
}

// GetRunningJobInfosForContext returns all running jobs of the context
func (s *JobStore) GetRunningJobInfosForContext(ctx context.Context, contextName string) ([]JobInfo, error) {
	query := jobsSelect + ` WHERE j.contextName = ? AND ` + runningCondition +
		` ORDER BY j.startTime DESC`
	return s.query(ctx, "get running jobs", query, contextName)
}

// GetJobInfosForBinary returns all jobs of the app, newest first
func (s *JobStore) GetJobInfosForBinary(ctx context.Context, appName string) ([]JobInfo, error) {
	return s.query(ctx, "get jobs for binary", jobsSelect+` WHERE b.appName = ? ORDER BY j.startTime DESC`, appName)
}

// CleanRunningJobInfosForContext marks all running jobs of the context as failed with
// a context termination error and given end time. Finished and failed jobs are not touched.
// Returns number of updated jobs.
func (s *JobStore) CleanRunningJobInfosForContext(ctx context.Context, contextName string, endTime time.Time) (int64, error) {
	var updated int64
	err := s.db.submit(ctx, "clean running jobs", func(ctx context.Context, q sqlx.ExtContext) error {
		res, err := q.ExecContext(ctx, `UPDATE JOBS SET endTime = ?, error = ?, errorClass = ?, errorStackTrace = ''
			WHERE contextName = ? AND `+runningCondition,
			toMillis(endTime), fmt.Sprintf("unexpected termination of context %s", contextName),
			ContextTerminatedClass, contextName)
		if err != nil {
			return fmt.Errorf("failed to clean running jobs of %s: %w", contextName, err)
		}
		if updated, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get affected rows for clean running jobs of %s: %w", contextName, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		log.Printf("[INFO] context %s terminated, %d running jobs marked as failed", contextName, updated)
	}
	return updated, nil
}

func (s *JobStore) query(ctx context.Context, op, query string, args ...any) ([]JobInfo, error) {
	var rows []jobRow
	err := s.db.submit(ctx, op, func(ctx context.Context, q sqlx.ExtContext) error {
		if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to %s: %w", op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := make([]JobInfo, 0, len(rows))
	for _, r := range rows {
		res = append(res, jobInfoFromRow(r))
	}
	return res, nil
}

// jobInfoFromRow assembles job with its binary and error. Error is set only if the error
// column is not empty, its class and stack trace default to empty strings.
func jobInfoFromRow(r jobRow) JobInfo {
	job := JobInfo{
		JobID:       r.JobID,
		ContextName: r.ContextName,
		Binary:      BinaryInfo{AppName: r.AppName, BinaryType: r.BinaryType, UploadTime: fromMillis(r.UploadTime)},
		ClassPath:   r.ClassPath,
		StartTime:   fromMillis(r.StartTime),
	}
	if r.EndTime.Valid {
		job.EndTime = fromMillis(r.EndTime.Int64)
	}
	if r.Error.Valid && r.Error.String != "" {
		job.Error = &ErrorData{Message: r.Error.String, ErrorClass: r.ErrorClass.String, StackTrace: r.ErrorStackTrace.String}
	}
	return job
}
