package domain

// VerifiedType is the type that marks an item as verified.
const VerifiedType = "legendary"

type Stat struct {
	Name      string `json:"name"`
	BaseValue int    `json:"base_value"`
}

type ItemDetail struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Height    int      `json:"height,omitempty"`
	Weight    int      `json:"weight,omitempty"`
	SpriteURL string   `json:"sprite_url,omitempty"`
	Types     []string `json:"types,omitempty"`
	Stats     []Stat   `json:"stats,omitempty"`
}

func (d *ItemDetail) HasType(name string) bool {
	for _, t := range d.Types {
		if t == name {
			return true
		}
	}
	return false
}

func (d *ItemDetail) IsVerified() bool {
	return d.HasType(VerifiedType)
}
