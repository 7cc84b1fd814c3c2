// Package memory is an in-process implementation of the repository ports,
// used for local development (STORE_DRIVER=memory) and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/tenant-identity/internal/domain/entity"
	"github.com/oksasatya/tenant-identity/internal/domain/repository"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

// Store holds users and units. Entities are copied on the way in and out so
// callers never share state with the store.
type Store struct {
	mu      sync.RWMutex
	users   map[string]entity.User
	byEmail map[string]string
	units   map[string]entity.Unit
	// saves counts successful user saves; tests assert on it.
	saves int
}

func NewStore() *Store {
	return &Store{
		users:   map[string]entity.User{},
		byEmail: map[string]string{},
		units:   map[string]entity.Unit{},
	}
}

// Saves returns how many user saves have succeeded.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// journal records the state each key had before its first write inside a
// transaction. A nil entry means the key did not exist.
type journal struct {
	users map[string]*entity.User
	units map[string]*entity.Unit
	saves int
}

type txKey struct{}

func journalFrom(ctx context.Context) *journal {
	j, _ := ctx.Value(txKey{}).(*journal)
	return j
}

// recordUser must be called with s.mu held.
func (j *journal) recordUser(s *Store, id string) {
	if j == nil {
		return
	}
	if _, seen := j.users[id]; seen {
		return
	}
	if prev, ok := s.users[id]; ok {
		j.users[id] = clone(prev)
	} else {
		j.users[id] = nil
	}
}

// recordUnit must be called with s.mu held.
func (j *journal) recordUnit(s *Store, id string) {
	if j == nil {
		return
	}
	if _, seen := j.units[id]; seen {
		return
	}
	if prev, ok := s.units[id]; ok {
		j.units[id] = &prev
	} else {
		j.units[id] = nil
	}
}

// undo reverts only the keys written under j; writes made outside the
// transaction are kept.
func (s *Store) undo(j *journal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, prev := range j.users {
		if cur, ok := s.users[id]; ok && s.byEmail[cur.Email.String()] == id {
			delete(s.byEmail, cur.Email.String())
		}
		if prev == nil {
			delete(s.users, id)
			continue
		}
		s.users[id] = *prev
		s.byEmail[prev.Email.String()] = id
	}
	for id, prev := range j.units {
		if prev == nil {
			delete(s.units, id)
			continue
		}
		s.units[id] = *prev
	}
	s.saves -= j.saves
}

// TxManager emulates a transaction with an undo journal carried in ctx.
// Repositories called with that ctx record the prior state of every key they
// write; a failing fn reverts exactly those keys. Writers in other requests
// are neither isolated nor rolled back.
type TxManager struct {
	store *Store
}

func NewTxManager(s *Store) *TxManager { return &TxManager{store: s} }

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if journalFrom(ctx) != nil {
		return fn(ctx)
	}
	j := &journal{users: map[string]*entity.User{}, units: map[string]*entity.Unit{}}
	if err := fn(context.WithValue(ctx, txKey{}, j)); err != nil {
		m.store.undo(j)
		return err
	}
	return nil
}

type UserRepository struct {
	store *Store
}

func NewUserRepository(s *Store) *UserRepository { return &UserRepository{store: s} }

func clone(u entity.User) *entity.User {
	c := u
	if u.UnitID != nil {
		unit := *u.UnitID
		c.UnitID = &unit
	}
	return &c
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	email := u.Email.String()
	if ownerID, ok := s.byEmail[email]; ok && ownerID != u.ID {
		return nil, apperr.AlreadyExists("user with email " + email + " already exists")
	}
	existing, found := s.users[u.ID]
	switch {
	case u.Version == 0 && found:
		return nil, apperr.AlreadyExists("user " + u.ID + " already exists")
	case u.Version != 0 && !found:
		return nil, apperr.NotFound("user " + u.ID + " not found")
	case found && existing.Version != u.Version:
		return nil, apperr.Conflict("user " + u.ID + " was modified concurrently")
	}
	if found && existing.Email.String() != email {
		delete(s.byEmail, existing.Email.String())
	}

	j := journalFrom(ctx)
	j.recordUser(s, u.ID)

	u.Version++
	u.UpdatedAt = time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = u.UpdatedAt
	}
	s.users[u.ID] = *clone(*u)
	s.byEmail[email] = u.ID
	s.saves++
	if j != nil {
		j.saves++
	}
	return clone(*u), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, apperr.NotFound("user " + id + " not found")
	}
	return clone(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	id, ok := r.store.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("user " + email + " not found")
	}
	return clone(r.store.users[id]), nil
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.byEmail[email]
	return ok, nil
}

func (r *UserRepository) FindAllByTenantID(_ context.Context, tenantID string) ([]*entity.User, error) {
	return r.filter(func(u entity.User) bool { return u.TenantID == tenantID }), nil
}

func (r *UserRepository) FindAllByUnitID(_ context.Context, unitID string) ([]*entity.User, error) {
	return r.filter(func(u entity.User) bool { return u.UnitID != nil && *u.UnitID == unitID }), nil
}

func (r *UserRepository) FindAllByUnitIDAndTenantID(_ context.Context, unitID, tenantID string) ([]*entity.User, error) {
	return r.filter(func(u entity.User) bool {
		return u.TenantID == tenantID && u.UnitID != nil && *u.UnitID == unitID
	}), nil
}

// filter returns matches ordered by last name, first name, email, like the
// postgres queries.
func (r *UserRepository) filter(keep func(entity.User) bool) []*entity.User {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entity.User, 0)
	for _, u := range r.store.users {
		if keep(u) {
			out = append(out, clone(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].Email.String() < out[j].Email.String()
	})
	return out
}

type UnitRepository struct {
	store *Store
}

func NewUnitRepository(s *Store) *UnitRepository { return &UnitRepository{store: s} }

func (r *UnitRepository) Save(ctx context.Context, u *entity.Unit) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.units {
		if existing.ID != u.ID && existing.TenantID == u.TenantID && existing.Name == u.Name {
			return apperr.AlreadyExists("unit " + u.Name + " already exists")
		}
	}
	journalFrom(ctx).recordUnit(r.store, u.ID)
	r.store.units[u.ID] = *u
	return nil
}

func (r *UnitRepository) FindByID(_ context.Context, id string) (*entity.Unit, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.units[id]
	if !ok {
		return nil, apperr.NotFound("unit " + id + " not found")
	}
	return &u, nil
}

func (r *UnitRepository) FindAllByTenantID(_ context.Context, tenantID string) ([]*entity.Unit, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entity.Unit, 0)
	for _, u := range r.store.units {
		if u.TenantID == tenantID {
			unit := u
			out = append(out, &unit)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.UnitRepository = (*UnitRepository)(nil)
	_ repository.TxManager      = (*TxManager)(nil)
)
