package agentes

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/nats-io/nuid"

	"github.com/departamento-policia/api/internal/apierror"
	"github.com/departamento-policia/api/internal/contracts"
	"github.com/departamento-policia/api/internal/sharding"
	"github.com/departamento-policia/api/internal/validation"
)

// PublishFunc delivers a resource change event. Nil disables publishing.
type PublishFunc func(subject string, payload []byte) error

// Input is the untrusted request payload. Pointer fields distinguish absent
// from empty; a client-supplied id has no field here and is dropped by the
// decoder, so identity can never be overwritten through a payload.
type Input struct {
	Nome               *string `json:"nome"`
	DataDeIncorporacao *string `json:"dataDeIncorporacao"`
	Cargo              *string `json:"cargo"`
}

// ListQuery holds the supported query parameters of GET /agentes.
type ListQuery struct {
	Cargo string
	Sort  string
}

type Service struct {
	Repo    *Repository
	Publish PublishFunc
	Now     func() time.Time
	NewID   func() string
	Logger  *slog.Logger
}

func NewService(repo *Repository) *Service {
	return &Service{
		Repo:   repo,
		Now:    func() time.Time { return time.Now().UTC() },
		NewID:  nuid.Next,
		Logger: slog.Default(),
	}
}

var nomeRule = validation.StringRule{
	Campo:    "nome",
	Min:      2,
	Max:      100,
	Required: "Nome é obrigatório",
	TooShort: "Nome deve ter pelo menos 2 caracteres",
	TooLong:  "Nome deve ter no máximo 100 caracteres",
}

var cargoRule = validation.StringRule{
	Campo:     "cargo",
	Min:       2,
	Max:       50,
	Required:  "Cargo é obrigatório",
	TooShort:  "Cargo deve ter pelo menos 2 caracteres",
	TooLong:   "Cargo deve ter no máximo 50 caracteres",
	Lowercase: true,
}

// validate runs every field rule, accumulating all violations. The returned
// patch holds only the fields that validated; in Full mode all three fields
// are required.
func (s *Service) validate(in Input, mode validation.Mode) (Patch, validation.Errors) {
	var errs validation.Errors
	var patch Patch

	if v, ok := nomeRule.Apply(&errs, in.Nome, mode); ok {
		patch.Nome = &v
	}

	if in.DataDeIncorporacao == nil {
		if mode == validation.Full {
			errs.Add("dataDeIncorporacao", "Data de incorporação é obrigatória", nil)
		}
	} else {
		raw := strings.TrimSpace(*in.DataDeIncorporacao)
		if parsed, ok := validation.ParseDate(raw); !ok {
			errs.Add("dataDeIncorporacao", "Data de incorporação deve estar em formato válido (YYYY-MM-DD ou YYYY-MM-DDTHH:mm:ss.sssZ)", *in.DataDeIncorporacao)
		} else if parsed.After(s.Now()) {
			errs.Add("dataDeIncorporacao", "Data de incorporação não pode ser futura", *in.DataDeIncorporacao)
		} else {
			patch.DataDeIncorporacao = &raw
		}
	}

	if v, ok := cargoRule.Apply(&errs, in.Cargo, mode); ok {
		patch.Cargo = &v
	}

	return patch, errs
}

// List applies the cargo filter and sort order. A filter with zero matches
// returns an empty list, never an error.
func (s *Service) List(q ListQuery) ([]Agente, error) {
	all := s.Repo.FindAll()

	if q.Cargo != "" {
		filtered := make([]Agente, 0, len(all))
		for _, a := range all {
			if strings.EqualFold(a.Cargo, q.Cargo) {
				filtered = append(filtered, a)
			}
		}
		all = filtered
	}

	if q.Sort != "" {
		if err := sortAgentes(all, q.Sort); err != nil {
			return nil, err
		}
	}
	return all, nil
}

// sortAgentes orders in place by the given key, descending when prefixed
// with '-'. Records whose stored date no longer parses sort after all
// parseable ones, in either direction, so they never silently disappear.
func sortAgentes(list []Agente, key string) error {
	desc := strings.HasPrefix(key, "-")
	field := strings.TrimPrefix(key, "-")

	var less func(a, b Agente) bool
	switch field {
	case "nome":
		less = func(a, b Agente) bool { return a.Nome < b.Nome }
	case "cargo":
		less = func(a, b Agente) bool { return a.Cargo < b.Cargo }
	case "dataDeIncorporacao":
		less = func(a, b Agente) bool {
			da, okA := validation.ParseDate(a.DataDeIncorporacao)
			db, okB := validation.ParseDate(b.DataDeIncorporacao)
			if okA != okB {
				// invalid dates always sort last
				return okA != desc
			}
			if !okA {
				return false
			}
			return da.Before(db)
		}
	default:
		return apierror.BadRequest("Parâmetro sort inválido. Use dataDeIncorporacao, nome ou cargo, com prefixo '-' para ordem decrescente.")
	}

	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
	return nil
}

func (s *Service) Get(id string) (Agente, error) {
	a, ok := s.Repo.FindByID(id)
	if !ok {
		return Agente{}, apierror.NotFound("Agente não encontrado")
	}
	return a, nil
}

// Exists is the referential check consumed by the caso service.
func (s *Service) Exists(id string) bool {
	_, ok := s.Repo.FindByID(id)
	return ok
}

func (s *Service) Create(in Input) (Agente, error) {
	patch, errs := s.validate(in, validation.Full)
	if len(errs) > 0 {
		return Agente{}, apierror.Validation(errs)
	}
	created := s.Repo.Insert(Agente{
		Nome:               *patch.Nome,
		DataDeIncorporacao: *patch.DataDeIncorporacao,
		Cargo:              *patch.Cargo,
	})
	s.publish(contracts.AcaoCriado, created.ID)
	return created, nil
}

func (s *Service) Replace(id string, in Input) (Agente, error) {
	patch, errs := s.validate(in, validation.Full)
	if len(errs) > 0 {
		return Agente{}, apierror.Validation(errs)
	}
	updated, ok := s.Repo.Replace(id, Agente{
		Nome:               *patch.Nome,
		DataDeIncorporacao: *patch.DataDeIncorporacao,
		Cargo:              *patch.Cargo,
	})
	if !ok {
		return Agente{}, apierror.NotFound("Agente não encontrado")
	}
	s.publish(contracts.AcaoAtualizado, id)
	return updated, nil
}

func (s *Service) Merge(id string, in Input) (Agente, error) {
	patch, errs := s.validate(in, validation.Partial)
	if len(errs) > 0 {
		return Agente{}, apierror.Validation(errs)
	}
	updated, ok := s.Repo.Merge(id, patch)
	if !ok {
		return Agente{}, apierror.NotFound("Agente não encontrado")
	}
	s.publish(contracts.AcaoAtualizado, id)
	return updated, nil
}

// Delete removes the agent. Cases referencing it are left orphaned on
// purpose; the relation is a weak reference.
func (s *Service) Delete(id string) error {
	if _, ok := s.Repo.Delete(id); !ok {
		return apierror.NotFound("Agente não encontrado")
	}
	s.publish(contracts.AcaoRemovido, id)
	return nil
}

// publish emits a change event, best-effort. A failed publish is logged and
// never surfaced to the client.
func (s *Service) publish(acao, id string) {
	if s.Publish == nil {
		return
	}
	evt := contracts.ResourceEvent{
		EventID:    s.NewID(),
		Recurso:    contracts.RecursoAgente,
		RecursoID:  id,
		Acao:       acao,
		OccurredAt: s.Now(),
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	if err := s.Publish(sharding.GetSubject(contracts.RecursoAgente, id), payload); err != nil {
		s.Logger.Warn("publicar evento de agente", "acao", acao, "agente_id", id, "err", err)
	}
}
