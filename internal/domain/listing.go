package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const spriteURLTemplate = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/%d.png"

// ItemRef is a lightweight listing entry, before detail enrichment.
type ItemRef struct {
	Name string `json:"name"` // Unique key, used for dedup and display
	URL  string `json:"url"`  // Detail locator, numeric id as final path segment
}

// ID extracts the numeric identifier from the final path segment of the URL.
func (r ItemRef) ID() (int, bool) {
	trimmed := strings.TrimSuffix(r.URL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return 0, false
	}

	id, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil {
		return 0, false
	}
	return id, true
}

// SpriteURL returns the official artwork for the item, or "" when the id is unknown.
func (r ItemRef) SpriteURL() string {
	id, ok := r.ID()
	if !ok {
		return ""
	}
	return fmt.Sprintf(spriteURLTemplate, id)
}

// Cursor points at the start of a page.
type Cursor struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ParseCursor reads offset and limit from a pagination URL such as
// https://pokeapi.co/api/v2/pokemon?offset=20&limit=20. A nil or empty
// URL means there is no such page.
func ParseCursor(raw *string) (*Cursor, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	u, err := url.Parse(*raw)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor url %q: %w", *raw, err)
	}

	query := u.Query()
	cursor := &Cursor{}

	if v := query.Get("offset"); v != "" {
		if cursor.Offset, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid cursor offset %q: %w", v, err)
		}
	}
	if v := query.Get("limit"); v != "" {
		if cursor.Limit, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid cursor limit %q: %w", v, err)
		}
	}

	return cursor, nil
}

type ListingPage struct {
	TotalCount int       `json:"total_count"`        // Total entities on the server
	Next       *Cursor   `json:"next,omitempty"`     // nil on the last page
	Previous   *Cursor   `json:"previous,omitempty"` // nil on the first page
	Items      []ItemRef `json:"items"`              // Server order
}
