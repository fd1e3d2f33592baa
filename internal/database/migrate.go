package database

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*/*.sql
var migrationFS embed.FS

var migrationName = regexp.MustCompile(`^V(\d+)__(.+)\.sql$`)

// ErrChecksumMismatch is returned when an applied migration was edited afterwards.
var ErrChecksumMismatch = errors.New("applied migration checksum mismatch")

// SchemaHistory records one applied migration.
type SchemaHistory struct {
	Version     int       `gorm:"primaryKey;autoIncrement:false"`
	Description string    `gorm:"type:varchar(255);not null"`
	Script      string    `gorm:"type:varchar(255);not null"`
	Checksum    string    `gorm:"type:varchar(64);not null"`
	InstalledAt time.Time `gorm:"not null"`
}

func (SchemaHistory) TableName() string { return "schema_history" }

// Migration is a versioned SQL script.
type Migration struct {
	Version     int
	Description string
	Script      string
	Checksum    string
	SQL         string
}

// Migrator applies embedded SQL scripts in version order, each in its own
// transaction, and records them in schema_history.
type Migrator struct {
	db     *gorm.DB
	fs     fs.FS
	dirs   []string
	logger *zap.Logger
}

// NewMigrator builds a migrator for db's dialect. With seed set the
// reference catalog is loaded after the schema.
func NewMigrator(db *gorm.DB, logger *zap.Logger, seed bool) *Migrator {
	dirs := []string{path.Join("migrations", db.Dialector.Name())}
	if seed {
		dirs = append(dirs, "migrations/seed")
	}
	return &Migrator{
		db:     db,
		fs:     migrationFS,
		dirs:   dirs,
		logger: logger.With(zap.String("component", "migrator")),
	}
}

// Migrations lists the scripts this migrator would apply, sorted by version.
func (m *Migrator) Migrations() ([]Migration, error) {
	var out []Migration
	seen := make(map[int]string)
	for _, dir := range m.dirs {
		entries, err := fs.ReadDir(m.fs, dir)
		if err != nil {
			return nil, fmt.Errorf("read migrations dir %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			match := migrationName.FindStringSubmatch(entry.Name())
			if match == nil {
				continue
			}
			version, err := strconv.Atoi(match[1])
			if err != nil {
				return nil, fmt.Errorf("migration %s: %w", entry.Name(), err)
			}
			if prev, ok := seen[version]; ok {
				return nil, fmt.Errorf("duplicate migration version %d: %s and %s", version, prev, entry.Name())
			}
			seen[version] = entry.Name()

			contents, err := fs.ReadFile(m.fs, path.Join(dir, entry.Name()))
			if err != nil {
				return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
			}
			sum := sha256.Sum256(contents)
			out = append(out, Migration{
				Version:     version,
				Description: strings.ReplaceAll(match[2], "_", " "),
				Script:      entry.Name(),
				Checksum:    hex.EncodeToString(sum[:]),
				SQL:         string(contents),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Up applies every pending migration. Already applied scripts are verified
// against their recorded checksum.
func (m *Migrator) Up(ctx context.Context) error {
	db := m.db.WithContext(ctx)
	if err := db.AutoMigrate(&SchemaHistory{}); err != nil {
		return fmt.Errorf("create schema history: %w", err)
	}

	migrations, err := m.Migrations()
	if err != nil {
		return err
	}

	var history []SchemaHistory
	if err := db.Order("version").Find(&history).Error; err != nil {
		return fmt.Errorf("read schema history: %w", err)
	}
	applied := make(map[int]SchemaHistory, len(history))
	for _, h := range history {
		applied[h.Version] = h
	}

	count := 0
	for _, mig := range migrations {
		if h, ok := applied[mig.Version]; ok {
			if h.Checksum != mig.Checksum {
				return fmt.Errorf("%w: V%d %s", ErrChecksumMismatch, mig.Version, mig.Script)
			}
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			for i, stmt := range splitSQLStatements(mig.SQL) {
				if err := tx.Exec(stmt).Error; err != nil {
					return fmt.Errorf("exec %s [%d]: %w", mig.Script, i+1, err)
				}
			}
			return tx.Create(&SchemaHistory{
				Version:     mig.Version,
				Description: mig.Description,
				Script:      mig.Script,
				Checksum:    mig.Checksum,
				InstalledAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return err
		}
		count++
		m.logger.Info("migration applied", zap.Int("version", mig.Version), zap.String("script", mig.Script))
	}

	if count == 0 {
		m.logger.Info("schema is up to date")
	}
	return nil
}

func splitSQLStatements(sqlText string) []string {
	raw := strings.Split(sqlText, ";")
	out := make([]string, 0, len(raw))
	for _, stmt := range raw {
		trimmed := strings.TrimSpace(stmt)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
