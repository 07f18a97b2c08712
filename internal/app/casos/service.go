package casos

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nuid"

	"github.com/departamento-policia/api/internal/apierror"
	"github.com/departamento-policia/api/internal/app/agentes"
	"github.com/departamento-policia/api/internal/contracts"
	"github.com/departamento-policia/api/internal/sharding"
	"github.com/departamento-policia/api/internal/validation"
)

// PublishFunc delivers a resource change event. Nil disables publishing.
type PublishFunc func(subject string, payload []byte) error

// AgentDirectory is the read-only view of the agent store used for
// referential checks and for resolving a case's agent.
type AgentDirectory interface {
	FindByID(id string) (agentes.Agente, bool)
}

// Input is the untrusted request payload. A client-supplied id has no field
// here and is dropped by the decoder.
type Input struct {
	Titulo    *string `json:"titulo"`
	Descricao *string `json:"descricao"`
	Status    *string `json:"status"`
	AgenteID  *string `json:"agente_id"`
}

// ListQuery holds the supported query parameters of GET /casos.
type ListQuery struct {
	AgenteID string
	Status   string
	Q        string
}

type Service struct {
	Repo    *Repository
	Agents  AgentDirectory
	Publish PublishFunc
	Now     func() time.Time
	NewID   func() string
	Logger  *slog.Logger
}

func NewService(repo *Repository, agents AgentDirectory) *Service {
	return &Service{
		Repo:   repo,
		Agents: agents,
		Now:    func() time.Time { return time.Now().UTC() },
		NewID:  nuid.Next,
		Logger: slog.Default(),
	}
}

var tituloRule = validation.StringRule{
	Campo:    "titulo",
	Min:      1,
	Max:      200,
	Required: "Título é obrigatório",
	TooShort: "Título não pode estar vazio",
	TooLong:  "Título deve ter no máximo 200 caracteres",
}

var descricaoRule = validation.StringRule{
	Campo:    "descricao",
	Min:      1,
	Max:      1000,
	Required: "Descrição é obrigatória",
	TooShort: "Descrição não pode estar vazia",
	TooLong:  "Descrição deve ter no máximo 1000 caracteres",
}

// validate runs every field rule, accumulating all violations. Status has
// no default here; Create pre-fills it, so a full replace that omits it
// fails as required.
func validate(in Input, mode validation.Mode) (Patch, validation.Errors) {
	var errs validation.Errors
	var patch Patch

	if v, ok := tituloRule.Apply(&errs, in.Titulo, mode); ok {
		patch.Titulo = &v
	}
	if v, ok := descricaoRule.Apply(&errs, in.Descricao, mode); ok {
		patch.Descricao = &v
	}

	if in.Status == nil {
		if mode == validation.Full {
			errs.Add("status", "Status é obrigatório", nil)
		}
	} else {
		v := strings.ToLower(strings.TrimSpace(*in.Status))
		if v != StatusAberto && v != StatusSolucionado {
			errs.Add("status", `Status deve ser "aberto" ou "solucionado"`, *in.Status)
		} else {
			patch.Status = &v
		}
	}

	if in.AgenteID == nil {
		if mode == validation.Full {
			errs.Add("agente_id", "ID do agente é obrigatório", nil)
		}
	} else {
		v := strings.TrimSpace(*in.AgenteID)
		if !validation.IsUUID(v) {
			errs.Add("agente_id", "ID do agente deve ser um UUID válido no formato: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx", *in.AgenteID)
		} else {
			patch.AgenteID = &v
		}
	}

	return patch, errs
}

// checkAgente is the referential check, run after schema validation and
// only when the mutation carries agente_id.
func (s *Service) checkAgente(id string) error {
	if _, ok := s.Agents.FindByID(id); !ok {
		return apierror.NotFound("Agente não encontrado. Verifique se o agente_id é válido.")
	}
	return nil
}

// List applies the agente_id, status and free-text filters. Multi-word q is
// conjunctive: every term must match titulo or descricao. Zero matches
// return an empty list, never an error.
func (s *Service) List(q ListQuery) []Caso {
	all := s.Repo.FindAll()
	out := make([]Caso, 0, len(all))

	terms := strings.Fields(strings.ToLower(q.Q))
	for _, c := range all {
		if q.AgenteID != "" && c.AgenteID != q.AgenteID {
			continue
		}
		if q.Status != "" && !strings.EqualFold(c.Status, q.Status) {
			continue
		}
		if !matchesTerms(c, terms) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesTerms(c Caso, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	titulo := strings.ToLower(c.Titulo)
	descricao := strings.ToLower(c.Descricao)
	for _, term := range terms {
		if !strings.Contains(titulo, term) && !strings.Contains(descricao, term) {
			return false
		}
	}
	return true
}

func (s *Service) Get(id string) (Caso, error) {
	c, ok := s.Repo.FindByID(id)
	if !ok {
		return Caso{}, apierror.NotFound("Caso não encontrado")
	}
	return c, nil
}

func (s *Service) Create(in Input) (Caso, error) {
	if in.Status == nil {
		aberto := StatusAberto
		in.Status = &aberto
	}
	patch, errs := validate(in, validation.Full)
	if len(errs) > 0 {
		return Caso{}, apierror.Validation(errs)
	}
	if err := s.checkAgente(*patch.AgenteID); err != nil {
		return Caso{}, err
	}
	created := s.Repo.Insert(Caso{
		Titulo:    *patch.Titulo,
		Descricao: *patch.Descricao,
		Status:    *patch.Status,
		AgenteID:  *patch.AgenteID,
	})
	s.publish(contracts.AcaoCriado, created.ID)
	return created, nil
}

func (s *Service) Replace(id string, in Input) (Caso, error) {
	patch, errs := validate(in, validation.Full)
	if len(errs) > 0 {
		return Caso{}, apierror.Validation(errs)
	}
	if err := s.checkAgente(*patch.AgenteID); err != nil {
		return Caso{}, err
	}
	updated, ok := s.Repo.Replace(id, Caso{
		Titulo:    *patch.Titulo,
		Descricao: *patch.Descricao,
		Status:    *patch.Status,
		AgenteID:  *patch.AgenteID,
	})
	if !ok {
		return Caso{}, apierror.NotFound("Caso não encontrado")
	}
	s.publish(contracts.AcaoAtualizado, id)
	return updated, nil
}

func (s *Service) Merge(id string, in Input) (Caso, error) {
	patch, errs := validate(in, validation.Partial)
	if len(errs) > 0 {
		return Caso{}, apierror.Validation(errs)
	}
	if patch.AgenteID != nil {
		if err := s.checkAgente(*patch.AgenteID); err != nil {
			return Caso{}, err
		}
	}
	updated, ok := s.Repo.Merge(id, patch)
	if !ok {
		return Caso{}, apierror.NotFound("Caso não encontrado")
	}
	s.publish(contracts.AcaoAtualizado, id)
	return updated, nil
}

func (s *Service) Delete(id string) error {
	if _, ok := s.Repo.Delete(id); !ok {
		return apierror.NotFound("Caso não encontrado")
	}
	s.publish(contracts.AcaoRemovido, id)
	return nil
}

// AgenteDoCaso resolves the agent responsible for a case. The reference is
// weak, so the agent may be gone even though the case still points at it.
func (s *Service) AgenteDoCaso(casoID string) (agentes.Agente, error) {
	c, ok := s.Repo.FindByID(casoID)
	if !ok {
		return agentes.Agente{}, apierror.NotFound("Caso não encontrado")
	}
	a, ok := s.Agents.FindByID(c.AgenteID)
	if !ok {
		return agentes.Agente{}, apierror.NotFound("Agente do caso não encontrado")
	}
	return a, nil
}

// publish emits a change event, best-effort.
func (s *Service) publish(acao, id string) {
	if s.Publish == nil {
		return
	}
	evt := contracts.ResourceEvent{
		EventID:    s.NewID(),
		Recurso:    contracts.RecursoCaso,
		RecursoID:  id,
		Acao:       acao,
		OccurredAt: s.Now(),
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	if err := s.Publish(sharding.GetSubject(contracts.RecursoCaso, id), payload); err != nil {
		s.Logger.Warn("publicar evento de caso", "acao", acao, "caso_id", id, "err", err)
	}
}
