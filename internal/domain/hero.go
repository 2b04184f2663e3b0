package domain

import "strings"

type Hero struct {
	ID   int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"not null"`
}

// Validate normalizes the hero name and rejects blank names.
func (h *Hero) Validate() error {
	h.Name = strings.TrimSpace(h.Name)
	if h.Name == "" {
		return ErrInvalidHeroName
	}
	return nil
}

// IsBlank reports whether a search term or hero name carries no text.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// SeedHeroes is the starting roster used by the mock store and the seed step.
func SeedHeroes() []Hero {
	return []Hero{
		{ID: 12, Name: "Dr. Nice"},
		{ID: 13, Name: "Bombasto"},
		{ID: 14, Name: "Celeritas"},
		{ID: 15, Name: "Magneta"},
		{ID: 16, Name: "RubberMan"},
		{ID: 17, Name: "Dynama"},
		{ID: 18, Name: "Dr. IQ"},
		{ID: 19, Name: "Magma"},
		{ID: 20, Name: "Tornado"},
	}
}
