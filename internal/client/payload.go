package client

import (
	"encoding/json"

	"pokegram/feed/internal/domain"

	log "github.com/sirupsen/logrus"
)

type pokemonListPayload struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"results"`
}

type pokemonDetailPayload struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Height  int    `json:"height"`
	Weight  int    `json:"weight"`
	Sprites struct {
		Other struct {
			OfficialArtwork struct {
				FrontDefault string `json:"front_default"`
			} `json:"official-artwork"`
		} `json:"other"`
	} `json:"sprites"`
	Types []struct {
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int `json:"base_stat"`
		Stat     struct {
			Name string `json:"name"`
		} `json:"stat"`
	} `json:"stats"`
}

// parseListingPage decodes a /pokemon listing body into a domain page.
func parseListingPage(body []byte) (*domain.ListingPage, error) {
	var payload pokemonListPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &domain.DeserializationError{Source: "pokemon list", Err: err}
	}

	next, err := domain.ParseCursor(payload.Next)
	if err != nil {
		return nil, &domain.DeserializationError{Source: "pokemon list next cursor", Err: err}
	}

	previous, err := domain.ParseCursor(payload.Previous)
	if err != nil {
		// The previous link is informational only; the list can still advance.
		log.Warnf("Ignoring malformed previous cursor: %v", err)
		previous = nil
	}

	page := &domain.ListingPage{
		TotalCount: payload.Count,
		Next:       next,
		Previous:   previous,
		Items:      make([]domain.ItemRef, 0, len(payload.Results)),
	}
	for _, r := range payload.Results {
		page.Items = append(page.Items, domain.ItemRef{Name: r.Name, URL: r.URL})
	}

	log.Debugf("Parsed listing page with %d items (total %d)", len(page.Items), page.TotalCount)
	return page, nil
}

// parseItemDetail decodes a /pokemon/{name} body into a domain detail.
func parseItemDetail(body []byte) (*domain.ItemDetail, error) {
	var payload pokemonDetailPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &domain.DeserializationError{Source: "pokemon detail", Err: err}
	}

	detail := &domain.ItemDetail{
		ID:        payload.ID,
		Name:      payload.Name,
		Height:    payload.Height,
		Weight:    payload.Weight,
		SpriteURL: payload.Sprites.Other.OfficialArtwork.FrontDefault,
		Types:     make([]string, 0, len(payload.Types)),
		Stats:     make([]domain.Stat, 0, len(payload.Stats)),
	}
	for _, t := range payload.Types {
		detail.Types = append(detail.Types, t.Type.Name)
	}
	for _, s := range payload.Stats {
		detail.Stats = append(detail.Stats, domain.Stat{Name: s.Stat.Name, BaseValue: s.BaseStat})
	}

	return detail, nil
}
