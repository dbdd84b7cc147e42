// Package groups manages recipe groups kept on the device only.
//
// The group list lives under the "grupos" key. Members of a group live under
// "grupo_<nombre>" as full recipe snapshots taken when they were added.
// Snapshots are never refreshed from the server, so a recipe that is later
// edited or deleted stays in its groups as captured.
package groups

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/recetapp/recetapp/internal/client/localstore"
	"github.com/recetapp/recetapp/internal/model"
)

// KeyGroups holds the JSON list of groups.
const KeyGroups = "grupos"

const membershipPrefix = "grupo_"

// Group errors.
var (
	ErrBlankName       = errors.New("el nombre del grupo no puede estar vacío")
	ErrGroupExists     = errors.New("ya existe un grupo con ese nombre")
	ErrGroupNotFound   = errors.New("grupo no encontrado")
	ErrIndexOutOfRange = errors.New("índice de grupo fuera de rango")
	ErrAlreadyMember   = errors.New("esta receta ya está en el grupo")
)

// MembershipKey returns the storage key for a group's recipes.
func MembershipKey(name string) string {
	return membershipPrefix + name
}

// Manager serializes read-modify-write cycles on the group keys within one
// process. Separate processes sharing a store are not isolated.
type Manager struct {
	mu sync.Mutex
	kv localstore.KV
}

// NewManager creates a Manager over kv.
func NewManager(kv localstore.KV) *Manager {
	return &Manager{kv: kv}
}

// List returns the groups in creation order.
func (m *Manager) List(ctx context.Context) ([]model.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadGroups(ctx)
}

// Create appends a new empty group. Names are the uniqueness key.
func (m *Manager) Create(ctx context.Context, name string) ([]model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBlankName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	groups, err := m.loadGroups(ctx)
	if err != nil {
		return nil, err
	}
	if indexOf(groups, name) >= 0 {
		return nil, ErrGroupExists
	}

	next := append(slices.Clone(groups), model.Group{Nombre: name, Recetas: []model.Recipe{}})
	if err := m.saveJSON(ctx, KeyGroups, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Delete removes the group at index and its membership list, so a later
// group with the same name starts empty.
func (m *Manager) Delete(ctx context.Context, index int) ([]model.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	groups, err := m.loadGroups(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(groups) {
		return nil, ErrIndexOutOfRange
	}

	removed := groups[index]
	next := slices.Delete(slices.Clone(groups), index, index+1)
	if err := m.saveJSON(ctx, KeyGroups, next); err != nil {
		return nil, err
	}
	if err := m.kv.Delete(ctx, MembershipKey(removed.Nombre)); err != nil {
		return nil, fmt.Errorf("failed to clear members of %s: %w", removed.Nombre, err)
	}
	return next, nil
}

// Recipes returns the snapshots stored in the named group.
func (m *Manager) Recipes(ctx context.Context, name string) ([]model.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireGroup(ctx, name); err != nil {
		return nil, err
	}
	return m.loadMembers(ctx, name)
}

// AddRecipe stores a snapshot of recipe in the group. A recipe whose id is
// already present returns ErrAlreadyMember and leaves storage untouched.
func (m *Manager) AddRecipe(ctx context.Context, name string, recipe model.Recipe) ([]model.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireGroup(ctx, name); err != nil {
		return nil, err
	}
	members, err := m.loadMembers(ctx, name)
	if err != nil {
		return nil, err
	}
	if slices.ContainsFunc(members, func(r model.Recipe) bool { return r.ID == recipe.ID }) {
		return nil, ErrAlreadyMember
	}

	next := append(slices.Clone(members), *recipe.Clone())
	if err := m.saveJSON(ctx, MembershipKey(name), next); err != nil {
		return nil, err
	}
	return next, nil
}

// RemoveRecipe drops the snapshot with the given id. Removing a recipe that
// is not a member is a no-op.
func (m *Manager) RemoveRecipe(ctx context.Context, name, id string) ([]model.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireGroup(ctx, name); err != nil {
		return nil, err
	}
	members, err := m.loadMembers(ctx, name)
	if err != nil {
		return nil, err
	}

	next := slices.DeleteFunc(slices.Clone(members), func(r model.Recipe) bool { return r.ID == id })
	if err := m.saveJSON(ctx, MembershipKey(name), next); err != nil {
		return nil, err
	}
	return next, nil
}

func (m *Manager) requireGroup(ctx context.Context, name string) error {
	groups, err := m.loadGroups(ctx)
	if err != nil {
		return err
	}
	if indexOf(groups, name) < 0 {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, name)
	}
	return nil
}

func (m *Manager) loadGroups(ctx context.Context) ([]model.Group, error) {
	groups := []model.Group{}
	if err := m.loadJSON(ctx, KeyGroups, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (m *Manager) loadMembers(ctx context.Context, name string) ([]model.Recipe, error) {
	members := []model.Recipe{}
	if err := m.loadJSON(ctx, MembershipKey(name), &members); err != nil {
		return nil, err
	}
	return members, nil
}

// loadJSON leaves dst unchanged when key was never written.
func (m *Manager) loadJSON(ctx context.Context, key string, dst any) error {
	raw, err := m.kv.Get(ctx, key)
	if errors.Is(err, localstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (m *Manager) saveJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := m.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func indexOf(groups []model.Group, name string) int {
	return slices.IndexFunc(groups, func(g model.Group) bool { return g.Nombre == name })
}
