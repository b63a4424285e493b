package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "chart-advisor/internal/errors"
	"chart-advisor/internal/models"
)

// kvSchemaVersion is the envelope version written for kv records. Records
// with an unknown version are treated as absent rather than decoded.
const kvSchemaVersion = 1

const (
	kvKeyPlan    = "plan"
	kvKeySession = "session"
	kvKeyTheme   = "theme"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Analysis history, bounded to the newest entries
	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		result TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Favorite symbols (set semantics)
	CREATE TABLE IF NOT EXISTS favorites (
		symbol TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Watchlist table
	CREATE TABLE IF NOT EXISTS watchlist (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		list_name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, list_name)
	);

	-- Named counters (visits)
	CREATE TABLE IF NOT EXISTS counters (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Versioned key/value records (plan, session, theme)
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp);
	CREATE INDEX IF NOT EXISTS idx_watchlist_list ON watchlist(list_name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AppendHistory stores one analysis outcome and evicts entries beyond the
// history cap, oldest first.
func (s *SQLiteStore) AppendHistory(entry models.HistoryEntry) error {
	result, err := json.Marshal(entry.Result)
	if err != nil {
		return apperrors.NewStorageError("history", "encoding result", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return apperrors.NewStorageError("history", "beginning transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO history (id, timestamp, result)
		VALUES (?, ?, ?)`,
		entry.ID, entry.Timestamp, string(result))
	if err != nil {
		return apperrors.NewStorageError("history", "inserting entry", err)
	}

	_, err = tx.Exec(`
		DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY timestamp DESC, id DESC LIMIT ?
		)`, models.HistoryCap)
	if err != nil {
		return apperrors.NewStorageError("history", "evicting old entries", err)
	}

	return tx.Commit()
}

// GetHistory returns entries newest first. limit <= 0 returns up to the cap.
func (s *SQLiteStore) GetHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 || limit > models.HistoryCap {
		limit = models.HistoryCap
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, result FROM history
		ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.NewStorageError("history", "querying", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var entry models.HistoryEntry
		var result string
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &result); err != nil {
			return nil, apperrors.NewStorageError("history", "scanning row", err)
		}
		if err := json.Unmarshal([]byte(result), &entry.Result); err != nil {
			return nil, apperrors.NewStorageError("history", "decoding result", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ClearHistory removes all stored analyses.
func (s *SQLiteStore) ClearHistory(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return apperrors.NewStorageError("history", "clearing", err)
	}
	return nil
}

// AddFavorite marks a symbol as favorite. Adding twice is a no-op.
func (s *SQLiteStore) AddFavorite(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites (symbol) VALUES (?)`, symbol)
	if err != nil {
		return apperrors.NewStorageError("favorites", "inserting", err)
	}
	return nil
}

// RemoveFavorite unmarks a symbol. Removing an absent symbol is a no-op.
func (s *SQLiteStore) RemoveFavorite(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE symbol = ?`, symbol)
	if err != nil {
		return apperrors.NewStorageError("favorites", "deleting", err)
	}
	return nil
}

// GetFavorites returns all favorite symbols sorted alphabetically.
func (s *SQLiteStore) GetFavorites(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol FROM favorites ORDER BY symbol`)
	if err != nil {
		return nil, apperrors.NewStorageError("favorites", "querying", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, apperrors.NewStorageError("favorites", "scanning row", err)
		}
		symbols = append(symbols, symbol)
	}
	return symbols, rows.Err()
}

// AddToWatchlist adds a symbol to a named list.
func (s *SQLiteStore) AddToWatchlist(ctx context.Context, symbol, listName string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO watchlist (symbol, list_name)
		VALUES (?, ?)`, symbol, listName)
	if err != nil {
		return apperrors.NewStorageError("watchlist", "inserting", err)
	}
	return nil
}

// RemoveFromWatchlist removes a symbol from a named list.
func (s *SQLiteStore) RemoveFromWatchlist(ctx context.Context, symbol, listName string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM watchlist WHERE symbol = ? AND list_name = ?`,
		symbol, listName)
	if err != nil {
		return apperrors.NewStorageError("watchlist", "deleting", err)
	}
	return nil
}

// GetWatchlist returns the symbols in a named list.
func (s *SQLiteStore) GetWatchlist(ctx context.Context, listName string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol FROM watchlist WHERE list_name = ?
		ORDER BY created_at`, listName)
	if err != nil {
		return nil, apperrors.NewStorageError("watchlist", "querying", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, apperrors.NewStorageError("watchlist", "scanning row", err)
		}
		symbols = append(symbols, symbol)
	}
	return symbols, rows.Err()
}

// GetAllWatchlists returns every list keyed by name.
func (s *SQLiteStore) GetAllWatchlists(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT list_name, symbol FROM watchlist ORDER BY list_name, created_at`)
	if err != nil {
		return nil, apperrors.NewStorageError("watchlist", "querying", err)
	}
	defer rows.Close()

	lists := make(map[string][]string)
	for rows.Next() {
		var listName, symbol string
		if err := rows.Scan(&listName, &symbol); err != nil {
			return nil, apperrors.NewStorageError("watchlist", "scanning row", err)
		}
		lists[listName] = append(lists[listName], symbol)
	}
	return lists, rows.Err()
}

// LoadProfile assembles favorites, watchlists and history into one snapshot.
func (s *SQLiteStore) LoadProfile(ctx context.Context) (*models.UserProfile, error) {
	favorites, err := s.GetFavorites(ctx)
	if err != nil {
		return nil, err
	}
	lists, err := s.GetAllWatchlists(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.GetHistory(ctx, models.HistoryCap)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(lists))
	for name := range lists {
		names = append(names, name)
	}
	sort.Strings(names)

	profile := &models.UserProfile{
		Favorites: favorites,
		History:   history,
	}
	for _, name := range names {
		profile.Watchlists = append(profile.Watchlists, models.Watchlist{
			ID:      name,
			Name:    name,
			Symbols: lists[name],
		})
	}
	return profile, nil
}

// IncrementVisits bumps the visit counter and returns the new value.
func (s *SQLiteStore) IncrementVisits() (int64, error) {
	_, err := s.db.Exec(`
		INSERT INTO counters (name, value) VALUES ('visits', 1)
		ON CONFLICT(name) DO UPDATE SET
			value = value + 1,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, apperrors.NewStorageError("counters", "incrementing visits", err)
	}
	return s.GetVisits()
}

// GetVisits returns the visit counter.
func (s *SQLiteStore) GetVisits() (int64, error) {
	var value int64
	err := s.db.QueryRow(
		`SELECT value FROM counters WHERE name = 'visits'`).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.NewStorageError("counters", "reading visits", err)
	}
	return value, nil
}

// LoadPlan returns the persisted entitlement state.
func (s *SQLiteStore) LoadPlan() (models.PlanState, error) {
	var plan models.PlanState
	if err := s.getKV(kvKeyPlan, &plan); err != nil {
		return models.PlanState{}, err
	}
	return plan, nil
}

// SavePlan persists the entitlement state.
func (s *SQLiteStore) SavePlan(plan models.PlanState) error {
	return s.putKV(kvKeyPlan, plan)
}

type sessionRecord struct {
	Authenticated bool      `json:"authenticated"`
	At            time.Time `json:"at"`
}

// SetAuthenticated records whether the passcode gate has been passed.
func (s *SQLiteStore) SetAuthenticated(v bool) error {
	return s.putKV(kvKeySession, sessionRecord{Authenticated: v, At: time.Now()})
}

// Authenticated reports whether the passcode gate has been passed.
func (s *SQLiteStore) Authenticated() (bool, error) {
	var rec sessionRecord
	if err := s.getKV(kvKeySession, &rec); err != nil {
		if apperrors.Is(err, apperrors.ErrDataNotFound) {
			return false, nil
		}
		return false, err
	}
	return rec.Authenticated, nil
}

// LoadTheme returns the persisted theme, or the default when none is stored.
func (s *SQLiteStore) LoadTheme() (models.ThemeConfig, error) {
	var theme models.ThemeConfig
	if err := s.getKV(kvKeyTheme, &theme); err != nil {
		if apperrors.Is(err, apperrors.ErrDataNotFound) {
			return models.DefaultTheme(), nil
		}
		return models.ThemeConfig{}, err
	}
	if err := theme.Validate(); err != nil {
		return models.DefaultTheme(), nil
	}
	return theme, nil
}

// SaveTheme persists the theme preference.
func (s *SQLiteStore) SaveTheme(theme models.ThemeConfig) error {
	if err := theme.Validate(); err != nil {
		return apperrors.NewValidationError("theme", theme, err.Error())
	}
	return s.putKV(kvKeyTheme, theme)
}

// putKV stores a record under the versioned envelope.
func (s *SQLiteStore) putKV(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.NewStorageError(key, "encoding", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO kv (key, version, data, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		key, kvSchemaVersion, string(data))
	if err != nil {
		return apperrors.NewStorageError(key, "writing", err)
	}
	return nil
}

// getKV loads a record. Unknown envelope versions read as not found so a
// downgrade never decodes a future shape.
func (s *SQLiteStore) getKV(key string, out interface{}) error {
	var version int
	var data string
	err := s.db.QueryRow(
		`SELECT version, data FROM kv WHERE key = ?`, key).Scan(&version, &data)
	if err == sql.ErrNoRows {
		return apperrors.Wrapf(apperrors.ErrDataNotFound, "kv key %s", key)
	}
	if err != nil {
		return apperrors.NewStorageError(key, "reading", err)
	}
	if version != kvSchemaVersion {
		return apperrors.Wrapf(apperrors.ErrDataNotFound, "kv key %s has version %d", key, version)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return apperrors.NewStorageError(key, "decoding", err)
	}
	return nil
}
