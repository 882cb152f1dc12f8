package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/jobdao/app/cache"
	"github.com/umputun/jobdao/app/persistence/enums"
)

//go:generate moq -out mocks/file_cache.go -pkg mocks -skip-ensure -fmt goimports . FileCache

// FileCache defines local disk copy of binaries, keyed by cache.Key
type FileCache interface {
	Put(key string, data []byte) error
	Exists(key string) bool
	Path(key string) string
	Delete(appName string) error
}

// BinaryInfo is the natural key of an uploaded binary
type BinaryInfo struct {
	AppName    string
	BinaryType enums.BinaryType
	UploadTime time.Time
}

func (b BinaryInfo) String() string {
	return cache.Key(b.AppName, b.BinaryType.Extension(), b.UploadTime)
}

// AppInfo is the latest upload of an app
type AppInfo struct {
	BinaryType enums.BinaryType
	UploadTime time.Time
}

// DeleteResult reports both phases of DeleteBinary
type DeleteResult struct {
	Binaries   int64         // metadata rows removed
	Contents   int64         // content rows removed, zero if cleanup failed
	CleanupErr *CleanupError // failed content delete, nil on success
}

// BinaryStore keeps binaries in BINARIES and BINARIES_CONTENTS, with a read-through file cache in front
type BinaryStore struct {
	db    *DB
	cache FileCache
}

type binaryRow struct {
	AppName    string           `db:"appName"`
	BinaryType enums.BinaryType `db:"binaryType"`
	UploadTime int64            `db:"uploadTime"`
}

// NewBinaryStore makes binary store
func NewBinaryStore(db *DB, fc FileCache) *BinaryStore {
	return &BinaryStore{db: db, cache: fc}
}

// SaveBinary caches data and inserts metadata and content rows in one transaction.
// The cache is written first, so a failed insert never leaves a stored but uncached binary.
func (s *BinaryStore) SaveBinary(ctx context.Context, appName string, binaryType enums.BinaryType,
	uploadTime time.Time, data []byte) error {
	bin := BinaryInfo{AppName: appName, BinaryType: binaryType, UploadTime: uploadTime}
	if !validBinaryType(binaryType) {
		return fmt.Errorf("failed to save binary of %s: unknown binary type %q", appName, binaryType)
	}
	if err := s.cache.Put(bin.String(), data); err != nil {
		return fmt.Errorf("failed to cache binary %s: %w", bin, err)
	}

	return s.db.inTx(ctx, "save binary", func(ctx context.Context, tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO BINARIES (appName, binaryType, uploadTime) VALUES (?, ?, ?)`,
			appName, binaryType, toMillis(uploadTime))
		if err != nil {
			return writeError("save binary", bin.String(), err)
		}
		if _, err = affected(res, "save binary", bin.String()); err != nil {
			return err
		}
		binID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get id of binary %s: %w", bin, err)
		}

		res, err = tx.ExecContext(ctx, `INSERT INTO BINARIES_CONTENTS (binId, "binary") VALUES (?, ?)`, binID, data)
		if err != nil {
			return writeError("save binary content", bin.String(), err)
		}
		_, err = affected(res, "save binary content", bin.String())
		return err
	})
}

// DeleteBinary removes all versions of the app in two phases within one transaction: content rows first,
// then metadata rows. A failed content delete is logged and reported in DeleteResult.CleanupErr,
// the metadata delete still runs. Fails if no metadata rows removed. Cached files removed after commit.
func (s *BinaryStore) DeleteBinary(ctx context.Context, appName string) (DeleteResult, error) {
	var result DeleteResult
	err := s.db.inTx(ctx, "delete binary", func(ctx context.Context, tx *sqlx.Tx) error {
		result = DeleteResult{}
		res, err := tx.ExecContext(ctx,
			`DELETE FROM BINARIES_CONTENTS WHERE binId IN (SELECT binId FROM BINARIES WHERE appName = ?)`, appName)
		if err == nil {
			result.Contents, err = res.RowsAffected()
		}
		if err != nil {
			result.Contents = 0
			result.CleanupErr = &CleanupError{Op: "delete binary contents", Key: appName, Err: err}
			log.Printf("[WARN] %v", result.CleanupErr)
		}

		res, err = tx.ExecContext(ctx, `DELETE FROM BINARIES WHERE appName = ?`, appName)
		if err != nil {
			return writeError("delete binary", appName, err)
		}
		result.Binaries, err = affected(res, "delete binary", appName)
		return err
	})
	if err != nil {
		// rolled back or abandoned, result describes nothing committed
		return DeleteResult{}, err
	}

	if err := s.cache.Delete(appName); err != nil {
		return result, fmt.Errorf("failed to delete cached binaries of %s: %w", appName, err)
	}
	log.Printf("[INFO] deleted binary %s, %d versions", appName, result.Binaries)
	return result, nil
}

// RetrieveBinaryPath returns local path of the binary. On cache miss the content is read from
// the database and cached. Returns ErrNotFound if there is no such binary.
func (s *BinaryStore) RetrieveBinaryPath(ctx context.Context, appName string, binaryType enums.BinaryType,
	uploadTime time.Time) (string, error) {
	bin := BinaryInfo{AppName: appName, BinaryType: binaryType, UploadTime: uploadTime}
	key := bin.String()
	if s.cache.Exists(key) {
		return s.cache.Path(key), nil
	}

	var data []byte
	err := s.db.inTx(ctx, "retrieve binary", func(ctx context.Context, tx *sqlx.Tx) error {
		err := sqlx.GetContext(ctx, tx, &data, `SELECT c."binary" FROM BINARIES_CONTENTS c
			JOIN BINARIES b ON b.binId = c.binId
			WHERE b.appName = ? AND b.binaryType = ? AND b.uploadTime = ?`,
			appName, binaryType, toMillis(uploadTime))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("binary %s: %w", key, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read binary %s: %w", key, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Printf("[DEBUG] binary %s not cached, restored from database", key)
	if err := s.cache.Put(key, data); err != nil {
		return "", fmt.Errorf("failed to cache binary %s: %w", key, err)
	}
	return s.cache.Path(key), nil
}

// ListApps returns the latest upload for every app name. If an app has several binary types
// uploaded at the same latest time, the one returned first by the aggregation wins.
func (s *BinaryStore) ListApps(ctx context.Context) (map[string]AppInfo, error) {
	var rows []binaryRow
	err := s.db.submit(ctx, "list apps", func(ctx context.Context, q sqlx.ExtContext) error {
		err := sqlx.SelectContext(ctx, q, &rows, `SELECT appName, binaryType, MAX(uploadTime) AS uploadTime
			FROM BINARIES GROUP BY appName, binaryType`)
		if err != nil {
			return fmt.Errorf("failed to query apps: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := make(map[string]AppInfo, len(rows))
	for _, r := range rows {
		if prev, ok := res[r.AppName]; ok && toMillis(prev.UploadTime) >= r.UploadTime {
			continue
		}
		res[r.AppName] = AppInfo{BinaryType: r.BinaryType, UploadTime: fromMillis(r.UploadTime)}
	}
	return res, nil
}

// LastUpload returns the most recent upload of the app, false if nothing uploaded under this name
func (s *BinaryStore) LastUpload(ctx context.Context, appName string) (AppInfo, bool, error) {
	var row binaryRow
	found := false
	err := s.db.submit(ctx, "last upload", func(ctx context.Context, q sqlx.ExtContext) error {
		err := sqlx.GetContext(ctx, q, &row, `SELECT appName, binaryType, uploadTime FROM BINARIES
			WHERE appName = ? ORDER BY uploadTime DESC LIMIT 1`, appName)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to query last upload of %s: %w", appName, err)
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return AppInfo{}, false, err
	}
	return AppInfo{BinaryType: row.BinaryType, UploadTime: fromMillis(row.UploadTime)}, true, nil
}

// ListBinaries returns all uploads of the app, newest first
func (s *BinaryStore) ListBinaries(ctx context.Context, appName string) ([]BinaryInfo, error) {
	var rows []binaryRow
	err := s.db.submit(ctx, "list binaries", func(ctx context.Context, q sqlx.ExtContext) error {
		err := sqlx.SelectContext(ctx, q, &rows, `SELECT appName, binaryType, uploadTime FROM BINARIES
			WHERE appName = ? ORDER BY uploadTime DESC, binaryType`, appName)
		if err != nil {
			return fmt.Errorf("failed to query binaries of %s: %w", appName, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := make([]BinaryInfo, 0, len(rows))
	for _, r := range rows {
		res = append(res, BinaryInfo{AppName: r.AppName, BinaryType: r.BinaryType, UploadTime: fromMillis(r.UploadTime)})
	}
	return res, nil
}

// resolveID returns surrogate key of the binary, ErrNotFound if missing
func (s *BinaryStore) resolveID(ctx context.Context, bin BinaryInfo) (int64, error) {
	var binID int64
	err := s.db.submit(ctx, "resolve binary id", func(ctx context.Context, q sqlx.ExtContext) error {
		err := sqlx.GetContext(ctx, q, &binID, `SELECT binId FROM BINARIES
			WHERE appName = ? AND binaryType = ? AND uploadTime = ?`,
			bin.AppName, bin.BinaryType, toMillis(bin.UploadTime))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("binary %s: %w", bin, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to resolve binary %s: %w", bin, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return binID, nil
}

func validBinaryType(bt enums.BinaryType) bool {
	for _, v := range enums.BinaryTypeValues {
		if v == bt {
			return true
		}
	}
	return false
}

// affected returns number of affected rows, PersistenceError if none
func affected(res sql.Result, op, key string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows for %s %s: %w", op, key, err)
	}
	if n == 0 {
		return 0, &PersistenceError{Op: op, Key: key}
	}
	return n, nil
}
