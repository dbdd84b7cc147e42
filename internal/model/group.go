package model

// Group is a user-defined, device-local collection of recipe snapshots.
//
// Recetas on the group list entry itself stays empty; membership is kept
// under a separate per-group key (see client/groups). Snapshots are copies
// taken when the recipe was added and are never refreshed.
type Group struct {
	Nombre  string   `json:"nombre"`
	Recetas []Recipe `json:"recetas"`
}
