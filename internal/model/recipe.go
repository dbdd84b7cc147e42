package model

import (
	"slices"
	"time"
)

// Recipe is a named dish with an ordered list of ingredients and steps.
//
// Recipes carry no owner: every authenticated caller can read, edit and
// delete every recipe.
type Recipe struct {
	ID           string    `json:"id"`
	Nombre       string    `json:"nombre"`
	Descripcion  string    `json:"descripcion"`
	Comensales   int       `json:"comensales"`
	Tiempo       string    `json:"tiempo"`
	Ingredientes []string  `json:"ingredientes"`
	Pasos        []string  `json:"pasos"`
	Imagen       *string   `json:"imagen,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ImagePath returns the stored image path, or "" if the recipe has none.
func (r *Recipe) ImagePath() string {
	if r.Imagen == nil {
		return ""
	}
	return *r.Imagen
}

// Clone returns a deep copy, so a snapshot never aliases the lists of the
// recipe it was taken from.
func (r *Recipe) Clone() *Recipe {
	c := *r
	c.Ingredientes = slices.Clone(r.Ingredientes)
	c.Pasos = slices.Clone(r.Pasos)
	if r.Imagen != nil {
		img := *r.Imagen
		c.Imagen = &img
	}
	return &c
}
