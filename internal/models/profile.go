package models

// Watchlist is a named, ordered list of symbols.
type Watchlist struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Symbols []string `json:"symbols"`
}

// UserProfile aggregates the user's persisted preferences and history.
// Favorites have set semantics; insertion order is not significant.
type UserProfile struct {
	Favorites  []string       `json:"favorites"`
	Watchlists []Watchlist    `json:"watchlists"`
	History    []HistoryEntry `json:"history"`
}

// HasFavorite reports whether the symbol is already a favorite.
func (p *UserProfile) HasFavorite(symbol string) bool {
	for _, s := range p.Favorites {
		if s == symbol {
			return true
		}
	}
	return false
}
