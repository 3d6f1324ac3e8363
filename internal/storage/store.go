/*
Package storage
File: store.go
Description:
    SQLite-backed persistence for ChronoQuest (modernc.org/sqlite, no cgo).

    Key Responsibilities:
    - Opening the database and running migrations
    - User accounts, lifetime counters and badges
    - The durable game save, stored as JSON
*/

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/everforgeworks/chronoquest/internal/game"
	"github.com/everforgeworks/chronoquest/internal/storage/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists user profiles and airport reference data in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ game.ProfileStore = (*Store)(nil)

// Open opens a SQLite store at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateUser inserts a new profile with zeroed counters and no save.
func (s *Store) CreateUser(ctx context.Context, name string, passwordHash []byte) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("username is required")
	}
	if len(passwordHash) == 0 {
		return 0, fmt.Errorf("password hash is required")
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, player_badges, created_at) VALUES (?, ?, '[]', ?)`,
		name, passwordHash, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, game.ErrUserExists
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return res.LastInsertId()
}

// FindUser returns the profile of name (case-insensitive).
func (s *Store) FindUser(ctx context.Context, name string) (*game.User, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, username, password_hash, player_badges, wins, losses, times_played, jetstream_uses, game_state_save
		   FROM users WHERE username = ?`,
		name,
	)

	var (
		u      game.User
		badges string
		save   sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &badges,
		&u.Stats.Wins, &u.Stats.Losses, &u.Stats.Played, &u.JetstreamUses, &save)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if u.Badges, err = decodeBadges(badges); err != nil {
		return nil, err
	}
	if u.SavedGame, err = decodeSave(save); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserID returns the id of name.
func (s *Store) GetUserID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT id FROM users WHERE username = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, game.ErrProfileNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get user id: %w", err)
	}
	return id, nil
}

// UpdateStats overwrites the lifetime counters. With clearSave the durable save is dropped
// in the same statement.
func (s *Store) UpdateStats(ctx context.Context, userID int64, stats game.Stats, clearSave bool) error {
	query := `UPDATE users SET wins = ?, losses = ?, times_played = ? WHERE id = ?`
	if clearSave {
		query = `UPDATE users SET wins = ?, losses = ?, times_played = ?, game_state_save = NULL WHERE id = ?`
	}
	res, err := s.sqlDB.ExecContext(ctx, query, stats.Wins, stats.Losses, stats.Played, userID)
	if err != nil {
		return fmt.Errorf("update stats: %w", err)
	}
	return requireRow(res)
}

// AwardBadge adds badge to the profile unless it is already held.
func (s *Store) AwardBadge(ctx context.Context, userID int64, id game.BadgeID) (*game.Badge, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin award badge: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT player_badges FROM users WHERE id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read badges: %w", err)
	}

	held, err := decodeBadges(raw)
	if err != nil {
		return nil, err
	}
	held, badge := game.UnlockBadge(held, id)
	if badge == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(held)
	if err != nil {
		return nil, fmt.Errorf("encode badges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET player_badges = ? WHERE id = ?`, string(encoded), userID); err != nil {
		return nil, fmt.Errorf("write badges: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit award badge: %w", err)
	}
	return badge, nil
}

// SaveGame stores gs as the durable save. A nil gs clears it.
func (s *Store) SaveGame(ctx context.Context, userID int64, gs *game.GameState) error {
	var save sql.NullString
	if gs != nil {
		b, err := json.Marshal(gs)
		if err != nil {
			return fmt.Errorf("encode game state: %w", err)
		}
		save = sql.NullString{String: string(b), Valid: true}
	}

	res, err := s.sqlDB.ExecContext(ctx, `UPDATE users SET game_state_save = ? WHERE id = ?`, save, userID)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return requireRow(res)
}

// LoadSavedGame returns the durable save, or nil if there is none.
func (s *Store) LoadSavedGame(ctx context.Context, userID int64) (*game.GameState, error) {
	var save sql.NullString
	err := s.sqlDB.QueryRowContext(ctx, `SELECT game_state_save FROM users WHERE id = ?`, userID).Scan(&save)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load saved game: %w", err)
	}
	return decodeSave(save)
}

func decodeBadges(raw string) ([]game.BadgeID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []game.BadgeID
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode badges: %w", err)
	}
	return ids, nil
}

func decodeSave(save sql.NullString) (*game.GameState, error) {
	if !save.Valid || strings.TrimSpace(save.String) == "" || save.String == "null" {
		return nil, nil
	}
	var gs game.GameState
	if err := json.Unmarshal([]byte(save.String), &gs); err != nil {
		return nil, fmt.Errorf("decode game state: %w", err)
	}
	if gs.Shards == nil {
		gs.Shards = game.ShardSet{}
	}
	return &gs, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return game.ErrProfileNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
