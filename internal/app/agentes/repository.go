package agentes

import (
	"sync"

	"github.com/google/uuid"
)

// Agente is a police-department staff record.
type Agente struct {
	ID                 string `json:"id"`
	Nome               string `json:"nome"`
	DataDeIncorporacao string `json:"dataDeIncorporacao"`
	Cargo              string `json:"cargo"`
}

// Patch carries the fields of a partial update. Nil pointers mean the field
// was absent from the payload and must be left untouched.
type Patch struct {
	Nome               *string
	DataDeIncorporacao *string
	Cargo              *string
}

// Repository is the in-memory agent store. The slice keeps insertion order;
// the mutex guards every compound read-modify-write so concurrent requests
// for the same id cannot lose updates.
type Repository struct {
	mu      sync.RWMutex
	agentes []Agente
	newID   func() string
}

func NewRepository() *Repository {
	return &Repository{newID: uuid.NewString}
}

// FindAll returns a copy of all agents in insertion order.
func (r *Repository) FindAll() []Agente {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Agente, len(r.agentes))
	copy(out, r.agentes)
	return out
}

func (r *Repository) FindByID(id string) (Agente, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.agentes {
		if a.ID == id {
			return a, true
		}
	}
	return Agente{}, false
}

// Insert stores data under a freshly generated id and returns the record.
// Any id supplied by the caller is overwritten.
func (r *Repository) Insert(data Agente) Agente {
	r.mu.Lock()
	defer r.mu.Unlock()
	data.ID = r.newID()
	r.agentes = append(r.agentes, data)
	return data
}

// Replace overwrites every mutable field of the record with data.
func (r *Repository) Replace(id string, data Agente) (Agente, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.agentes {
		if r.agentes[i].ID == id {
			data.ID = id
			r.agentes[i] = data
			return data, true
		}
	}
	return Agente{}, false
}

// Merge shallow-merges only the supplied fields into the existing record.
func (r *Repository) Merge(id string, patch Patch) (Agente, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.agentes {
		if r.agentes[i].ID != id {
			continue
		}
		if patch.Nome != nil {
			r.agentes[i].Nome = *patch.Nome
		}
		if patch.DataDeIncorporacao != nil {
			r.agentes[i].DataDeIncorporacao = *patch.DataDeIncorporacao
		}
		if patch.Cargo != nil {
			r.agentes[i].Cargo = *patch.Cargo
		}
		return r.agentes[i], true
	}
	return Agente{}, false
}

// Delete removes the record and returns the prior value.
func (r *Repository) Delete(id string) (Agente, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.agentes {
		if a.ID == id {
			r.agentes = append(r.agentes[:i], r.agentes[i+1:]...)
			return a, true
		}
	}
	return Agente{}, false
}
