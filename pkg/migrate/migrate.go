package migrate

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidFileName  = errors.New("migrate: invalid migration file name")
	ErrDuplicateVersion = errors.New("migrate: duplicate migration version")
	ErrChecksumMismatch = errors.New("migrate: applied migration was modified")
	ErrApply            = errors.New("migrate: failed to apply migration")
)

// advisoryLockKey общий ключ блокировки, чтобы реплики не применяли миграции одновременно
const advisoryLockKey = 720_514_001

var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
}

// Migration одна миграция схемы
type Migration struct {
	Version  int
	Name     string
	SQL      string
	Checksum string
}

// Scan читает миграции из корня fsys и сортирует по версии
func Scan(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("migrate: read dir: %w", err)
	}

	seen := make(map[int]string)
	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		m := fileNamePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFileName, entry.Name())
		}
		version, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFileName, entry.Name())
		}
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("%w: %d in %s and %s", ErrDuplicateVersion, version, prev, entry.Name())
		}
		seen[version] = entry.Name()

		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("migrate: read %s: %w", entry.Name(), err)
		}
		if strings.TrimSpace(string(content)) == "" {
			return nil, fmt.Errorf("%w: %s is empty", ErrInvalidFileName, entry.Name())
		}

		sum := sha256.Sum256(content)
		migrations = append(migrations, Migration{
			Version:  version,
			Name:     m[2],
			SQL:      string(content),
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// Up применяет все непримененные миграции, каждую в своей транзакции
// Уже примененная миграция с другой контрольной суммой останавливает запуск
func Up(ctx context.Context, db *sql.DB, fsys fs.FS, logger Logger) error {
	migrations, err := Scan(fsys)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		checksum TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		execution_time_ms BIGINT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("%w: create schema_migrations: %w", ErrApply, err)
	}

	for _, m := range migrations {
		applied, err := apply(ctx, db, m)
		if err != nil {
			return err
		}
		if applied {
			logger.Info("Migration %03d_%s applied", m.Version, m.Name)
		}
	}

	return nil
}

func apply(ctx context.Context, db *sql.DB, m Migration) (applied bool, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %d - begin: %w", ErrApply, m.Version, err)
	}
	defer func() {
		if err != nil || !applied {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey); err != nil {
		return false, fmt.Errorf("%w: %d - lock: %w", ErrApply, m.Version, err)
	}

	var checksum string
	err = tx.QueryRowContext(ctx, `SELECT checksum FROM schema_migrations WHERE version = $1`, m.Version).Scan(&checksum)
	switch {
	case err == nil:
		if checksum != m.Checksum {
			return false, fmt.Errorf("%w: %03d_%s", ErrChecksumMismatch, m.Version, m.Name)
		}
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("%w: %d - check version: %w", ErrApply, m.Version, err)
	}

	started := time.Now()
	if _, err = tx.ExecContext(ctx, m.SQL); err != nil {
		return false, fmt.Errorf("%w: %03d_%s: %w", ErrApply, m.Version, m.Name, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, checksum, execution_time_ms) VALUES ($1, $2, $3, $4)`,
		m.Version, m.Name, m.Checksum, time.Since(started).Milliseconds(),
	)
	if err != nil {
		return false, fmt.Errorf("%w: %d - record: %w", ErrApply, m.Version, err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("%w: %d - commit: %w", ErrApply, m.Version, err)
	}

	return true, nil
}
