package domain

import "fmt"

// DefaultAvatar is shown when an item has no sprite.
const DefaultAvatar = "/images/profile.png"

// RecentSearchEntry is a past search selection. The JSON layout is the
// persisted format and must stay stable.
type RecentSearchEntry struct {
	ID         int    `json:"id"`
	Username   string `json:"username"`
	FullName   string `json:"fullName"`
	Avatar     string `json:"avatar"`
	IsVerified bool   `json:"isVerified"`
}

// NewRecentSearchEntry maps a search result onto the entry shown in the search panel.
func NewRecentSearchEntry(detail *ItemDetail) RecentSearchEntry {
	avatar := detail.SpriteURL
	if avatar == "" {
		avatar = DefaultAvatar
	}

	return RecentSearchEntry{
		ID:         detail.ID,
		Username:   detail.Name,
		FullName:   fmt.Sprintf("Pokemon #%d", detail.ID),
		Avatar:     avatar,
		IsVerified: detail.IsVerified(),
	}
}
