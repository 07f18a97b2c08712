package contracts

import "time"

// Mutation actions carried by ResourceEvent.Acao.
const (
	AcaoCriado     = "criado"
	AcaoAtualizado = "atualizado"
	AcaoRemovido   = "removido"
)

// Resource names carried by ResourceEvent.Recurso.
const (
	RecursoAgente = "agente"
	RecursoCaso   = "caso"
)

// ResourceEvent is published after every successful store mutation so
// downstream consumers (audit, sync) can follow the department's data.
type ResourceEvent struct {
	EventID    string    `json:"event_id"`
	Recurso    string    `json:"recurso"`
	RecursoID  string    `json:"recurso_id"`
	Acao       string    `json:"acao"`
	OccurredAt time.Time `json:"occurred_at"`
}
