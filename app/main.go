package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/umputun/jobdao/app/cache"
	"github.com/umputun/jobdao/app/persistence"
	"github.com/umputun/jobdao/app/persistence/enums"
)

type options struct {
	DBFile  string `short:"d" long:"db" env:"JOBDAO_DB" default:"jobdao.db" description:"sqlite database file"`
	Cache   string `short:"c" long:"cache" env:"JOBDAO_CACHE" default:"binaries" description:"binaries cache location"`
	Apps    bool   `long:"apps" description:"list apps with the latest upload"`
	Jobs    int    `long:"jobs" description:"list up to N latest jobs"`
	Status  string `long:"status" choice:"Running" choice:"Error" choice:"Finished" description:"status filter for jobs"`
	Upload  string `long:"upload" description:"upload binary, app:type:file"`
	LogFile string `long:"log-file" env:"JOBDAO_LOG_FILE" description:"log to file with rotation"`
	Dbg     bool   `long:"dbg" env:"JOBDAO_DEBUG" description:"debug mode"`

	DB struct {
		MaxConns int           `long:"max-conns" env:"MAX_CONNS" default:"4" description:"max open connections"`
		Timeout  time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"max wait for a database operation"`
		Baseline bool          `long:"baseline" env:"BASELINE" description:"baseline existing unversioned schema"`
		Migrate  string        `long:"migrations" env:"MIGRATIONS" description:"migrations location, embedded if empty"`
	} `group:"db" namespace:"db" env-namespace:"JOBDAO_DB"`
}

var revision = "unknown"

func main() {
	fmt.Printf("jobdao %s\n", revision)

	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(2)
	}
	setupLogs(opts.LogFile, opts.Dbg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	store, err := openStore(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("[WARN] failed to close store, %v", err)
		}
	}()

	if opts.Upload != "" {
		if err := upload(ctx, store, opts.Upload); err != nil {
			return err
		}
	}
	if opts.Apps {
		if err := printApps(ctx, store, out); err != nil {
			return err
		}
	}
	if opts.Jobs > 0 {
		if err := printJobs(ctx, store, out, opts.Jobs, opts.Status); err != nil {
			return err
		}
	}
	return nil
}

// openStore opens the database, runs migrations and makes the store
func openStore(opts options) (*persistence.Store, error) {
	db, err := persistence.OpenDB(persistence.DBParams{Path: opts.DBFile, MaxConns: opts.DB.MaxConns, Timeout: opts.DB.Timeout})
	if err != nil {
		return nil, err
	}
	if err := persistence.Migrate(db, persistence.MigrateOpts{Location: opts.DB.Migrate, BaselineOnMigrate: opts.DB.Baseline}); err != nil {
		_ = db.Close()
		return nil, err
	}
	fc, err := cache.New(opts.Cache)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Printf("[INFO] store opened, db %s, cache %s", opts.DBFile, fc)
	return persistence.New(db, fc), nil
}

// upload saves binary from "app:type:file" spec with the current time as upload time
func upload(ctx context.Context, store *persistence.Store, spec string) error {
	elems := strings.SplitN(spec, ":", 3)
	if len(elems) != 3 || elems[0] == "" {
		return fmt.Errorf("invalid upload %q, expected app:type:file", spec)
	}
	bt, err := enums.ParseBinaryType(elems[1])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(elems[2])
	if err != nil {
		return fmt.Errorf("can't read %s: %w", elems[2], err)
	}
	if err := store.SaveBinary(ctx, elems[0], bt, time.Now(), data); err != nil {
		return err
	}
	log.Printf("[INFO] uploaded %s (%s), %d bytes", elems[0], bt, len(data))
	return nil
}

func printApps(ctx context.Context, store *persistence.Store, out io.Writer) error {
	apps, err := store.ListApps(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s\t%s\t%s\n", name, apps[name].BinaryType, apps[name].UploadTime.Format(time.RFC3339Nano))
	}
	return nil
}

func printJobs(ctx context.Context, store *persistence.Store, out io.Writer, limit int, status string) error {
	var statuses []enums.JobStatus
	if status != "" {
		st, err := enums.ParseJobStatus(status)
		if err != nil {
			return err
		}
		statuses = append(statuses, st)
	}
	jobs, err := store.GetJobInfos(ctx, limit, statuses...)
	if err != nil {
		return err
	}
	for _, j := range jobs {
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", j.JobID, j.ContextName, j.Binary.AppName, j.Status(),
			j.StartTime.Format(time.RFC3339Nano))
	}
	return nil
}

// setupLogs configures lgr, logs go to stdout or to rotated file. Returns the log writer.
func setupLogs(logFile string, dbg bool) io.Writer {
	var w io.Writer = os.Stdout
	if logFile != "" {
		w = &lumberjack.Logger{Filename: logFile, MaxSize: 100, MaxBackups: 5, Compress: true}
	}
	if dbg {
		log.Setup(log.Debug, log.Msec, log.CallerFunc, log.CallerPkg, log.CallerFile, log.Out(w), log.Err(w))
		return w
	}
	log.Setup(log.Msec, log.Out(w), log.Err(w))
	return w
}
