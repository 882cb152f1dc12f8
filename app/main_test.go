package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/umputun/jobdao/app/persistence"
	"github.com/umputun/jobdao/app/persistence/enums"
)

func prepOpts(t *testing.T) options {
	t.Helper()
	tmpDir := t.TempDir()
	var opts options
	opts.DBFile = filepath.Join(tmpDir, "test.db")
	opts.Cache = filepath.Join(tmpDir, "cache")
	opts.DB.MaxConns = 2
	opts.DB.Timeout = 5 * time.Second
	return opts
}

func Test_setupLogs(t *testing.T) {
	assert.Equal(t, os.Stdout, setupLogs("", false))

	fname := filepath.Join(t.TempDir(), "jobdao.log")
	out := setupLogs(fname, true)
	require.IsType(t, &lumberjack.Logger{}, out)
	logger := out.(*lumberjack.Logger)
	assert.Equal(t, fname, logger.Filename)
	assert.Equal(t, 100, logger.MaxSize)
	assert.Equal(t, 5, logger.MaxBackups)
	assert.True(t, logger.Compress)
	setupLogs("", false)
}

func Test_runUploadAndApps(t *testing.T) {
	opts := prepOpts(t)
	binFile := filepath.Join(t.TempDir(), "app.jar")
	require.NoError(t, os.WriteFile(binFile, []byte("jar content"), 0o600))

	opts.Upload = "app1:Jar:" + binFile
	opts.Apps = true
	buf := bytes.Buffer{}
	require.NoError(t, run(context.Background(), opts, &buf))
	assert.True(t, strings.HasPrefix(buf.String(), "app1\tJar\t"), buf.String())

	entries, err := os.ReadDir(opts.Cache)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func Test_runUploadInvalid(t *testing.T) {
	tests := []struct{ name, upload string }{
		{"no type", "app1"},
		{"bad type", "app1:Wheel:/tmp/x"},
		{"missing file", "app1:Jar:/no/such/file"},
		{"empty name", ":Jar:/tmp/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := prepOpts(t)
			opts.Upload = tt.upload
			assert.Error(t, run(context.Background(), opts, &bytes.Buffer{}))
		})
	}
}

func Test_runJobs(t *testing.T) {
	opts := prepOpts(t)
	ctx := context.Background()

	store, err := openStore(opts)
	require.NoError(t, err)
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, store.SaveBinary(ctx, "app1", enums.BinaryTypeJar, ts, []byte("b")))
	bin := persistence.BinaryInfo{AppName: "app1", BinaryType: enums.BinaryTypeJar, UploadTime: ts}
	require.NoError(t, store.SaveJobInfo(ctx, persistence.JobInfo{JobID: "j1", ContextName: "ctx1", Binary: bin,
		ClassPath: "cp", StartTime: ts.Add(time.Minute)}))
	require.NoError(t, store.SaveJobInfo(ctx, persistence.JobInfo{JobID: "j2", ContextName: "ctx1", Binary: bin,
		ClassPath: "cp", StartTime: ts.Add(2 * time.Minute), EndTime: ts.Add(3 * time.Minute)}))
	require.NoError(t, store.Close())

	opts.Jobs = 10
	buf := bytes.Buffer{}
	require.NoError(t, run(ctx, opts, &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "j2\tctx1\tapp1\tFinished\t"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "j1\tctx1\tapp1\tRunning\t"), lines[1])

	opts.Status = "Running"
	buf.Reset()
	require.NoError(t, run(ctx, opts, &buf))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}
