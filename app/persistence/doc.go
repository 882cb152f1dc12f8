// Package persistence is the data-access layer of the job service.
// It owns binaries (metadata, contents and the local file cache), job records
// and job configs, all stored in SQLite. Job status is never stored, it is derived
// from end time and error columns both in Go (JobInfo.Status) and in SQL filters.
//
// Every operation runs as an asynchronous unit of work on the shared connection pool
// and the caller waits for it with a fixed upper bound. Nothing is retried.
package persistence
