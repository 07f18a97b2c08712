package casos

import (
	"sync"

	"github.com/google/uuid"
)

// Case status values.
const (
	StatusAberto      = "aberto"
	StatusSolucionado = "solucionado"
)

// Caso is an investigation record referencing exactly one responsible agent.
// The agente_id is a weak reference: deleting the agent does not touch the
// case.
type Caso struct {
	ID        string `json:"id"`
	Titulo    string `json:"titulo"`
	Descricao string `json:"descricao"`
	Status    string `json:"status"`
	AgenteID  string `json:"agente_id"`
}

// Patch carries the fields of a partial update. Nil pointers mean the field
// was absent from the payload and must be left untouched.
type Patch struct {
	Titulo    *string
	Descricao *string
	Status    *string
	AgenteID  *string
}

// Repository is the in-memory case store, insertion-ordered and guarded for
// concurrent request handling.
type Repository struct {
	mu    sync.RWMutex
	casos []Caso
	newID func() string
}

func NewRepository() *Repository {
	return &Repository{newID: uuid.NewString}
}

// FindAll returns a copy of all cases in insertion order.
func (r *Repository) FindAll() []Caso {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Caso, len(r.casos))
	copy(out, r.casos)
	return out
}

func (r *Repository) FindByID(id string) (Caso, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.casos {
		if c.ID == id {
			return c, true
		}
	}
	return Caso{}, false
}

// Insert stores data under a freshly generated id and returns the record.
func (r *Repository) Insert(data Caso) Caso {
	r.mu.Lock()
	defer r.mu.Unlock()
	data.ID = r.newID()
	r.casos = append(r.casos, data)
	return data
}

// Replace overwrites every mutable field of the record with data.
func (r *Repository) Replace(id string, data Caso) (Caso, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.casos {
		if r.casos[i].ID == id {
			data.ID = id
			r.casos[i] = data
			return data, true
		}
	}
	return Caso{}, false
}

// Merge shallow-merges only the supplied fields into the existing record.
func (r *Repository) Merge(id string, patch Patch) (Caso, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.casos {
		if r.casos[i].ID != id {
			continue
		}
		if patch.Titulo != nil {
			r.casos[i].Titulo = *patch.Titulo
		}
		if patch.Descricao != nil {
			r.casos[i].Descricao = *patch.Descricao
		}
		if patch.Status != nil {
			r.casos[i].Status = *patch.Status
		}
		if patch.AgenteID != nil {
			r.casos[i].AgenteID = *patch.AgenteID
		}
		return r.casos[i], true
	}
	return Caso{}, false
}

// Delete removes the record and returns the prior value.
func (r *Repository) Delete(id string) (Caso, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.casos {
		if c.ID == id {
			r.casos = append(r.casos[:i], r.casos[i+1:]...)
			return c, true
		}
	}
	return Caso{}, false
}
