// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"chart-advisor/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Analysis history (bounded, newest first)
	AppendHistory(entry models.HistoryEntry) error
	GetHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	ClearHistory(ctx context.Context) error

	// Favorites
	AddFavorite(ctx context.Context, symbol string) error
	RemoveFavorite(ctx context.Context, symbol string) error
	GetFavorites(ctx context.Context) ([]string, error)

	// Watchlists
	AddToWatchlist(ctx context.Context, symbol, listName string) error
	RemoveFromWatchlist(ctx context.Context, symbol, listName string) error
	GetWatchlist(ctx context.Context, listName string) ([]string, error)
	GetAllWatchlists(ctx context.Context) (map[string][]string, error)

	// LoadProfile assembles favorites, watchlists and history into a
	// single profile snapshot.
	LoadProfile(ctx context.Context) (*models.UserProfile, error)

	// Visit counter
	IncrementVisits() (int64, error)
	GetVisits() (int64, error)

	// Entitlement state
	LoadPlan() (models.PlanState, error)
	SavePlan(plan models.PlanState) error
	SetAuthenticated(bool) error
	Authenticated() (bool, error)

	// Theme preference
	LoadTheme() (models.ThemeConfig, error)
	SaveTheme(theme models.ThemeConfig) error

	Close() error
}
