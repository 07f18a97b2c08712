package agentes

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/departamento-policia/api/internal/apierror"
	"github.com/departamento-policia/api/internal/contracts"
)

func ptr(s string) *string { return &s }

func newServiceForTests() *Service {
	svc := NewService(NewRepository())
	svc.Now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateNormalizesFields(t *testing.T) {
	svc := newServiceForTests()

	created, err := svc.Create(Input{
		Nome:               ptr("  Ana Souza  "),
		DataDeIncorporacao: ptr("2022-01-15"),
		Cargo:              ptr("  Delegado "),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Nome != "Ana Souza" {
		t.Fatalf("nome not trimmed: %q", created.Nome)
	}
	if created.Cargo != "delegado" {
		t.Fatalf("cargo not lower-cased: %q", created.Cargo)
	}
	if created.ID == "" {
		t.Fatal("created record has no id")
	}

	got, err := svc.Get(created.ID)
	if err != nil {
		t.Fatalf("Get after Create failed: %v", err)
	}
	if got != created {
		t.Fatalf("round-trip mismatch: %+v vs %+v", got, created)
	}
}

func TestCreateListsEveryMissingField(t *testing.T) {
	svc := newServiceForTests()

	_, err := svc.Create(Input{})
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *apierror.Error, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", apiErr.StatusCode)
	}
	if len(apiErr.Erros) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %+v", len(apiErr.Erros), apiErr.Erros)
	}
	campos := map[string]bool{}
	for _, fe := range apiErr.Erros {
		campos[fe.Campo] = true
	}
	for _, campo := range []string{"nome", "dataDeIncorporacao", "cargo"} {
		if !campos[campo] {
			t.Fatalf("missing field error for %q: %+v", campo, apiErr.Erros)
		}
	}
}

func TestCreateRejectsFutureDate(t *testing.T) {
	svc := newServiceForTests()

	_, err := svc.Create(Input{
		Nome:               ptr("Ana"),
		DataDeIncorporacao: ptr("2031-01-01"),
		Cargo:              ptr("delegado"),
	})
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(apiErr.Erros) != 1 || apiErr.Erros[0].Campo != "dataDeIncorporacao" {
		t.Fatalf("unexpected field errors: %+v", apiErr.Erros)
	}
}

func TestCreateAcceptsSameDayDate(t *testing.T) {
	svc := newServiceForTests()

	// midnight of the current day is not after a noon "now"
	if _, err := svc.Create(Input{
		Nome:               ptr("Ana"),
		DataDeIncorporacao: ptr("2026-08-28"),
		Cargo:              ptr("delegado"),
	}); err != nil {
		t.Fatalf("same-day date rejected: %v", err)
	}
}

func TestMergeChangesExactlySuppliedField(t *testing.T) {
	svc := newServiceForTests()
	created, err := svc.Create(Input{Nome: ptr("Ana"), DataDeIncorporacao: ptr("2022-01-15"), Cargo: ptr("inspetor")})
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	merged, err := svc.Merge(created.ID, Input{Cargo: ptr("Delegado")})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if merged.Cargo != "delegado" {
		t.Fatalf("cargo not normalized on merge: %q", merged.Cargo)
	}
	if merged.Nome != "Ana" || merged.DataDeIncorporacao != "2022-01-15" {
		t.Fatalf("merge touched other fields: %+v", merged)
	}
}

func TestReplaceRequiresEveryField(t *testing.T) {
	svc := newServiceForTests()
	created, _ := svc.Create(Input{Nome: ptr("Ana"), DataDeIncorporacao: ptr("2022-01-15"), Cargo: ptr("inspetor")})

	_, err := svc.Replace(created.ID, Input{Nome: ptr("Ana Maria")})
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(apiErr.Erros) != 2 {
		t.Fatalf("expected 2 field errors, got %+v", apiErr.Erros)
	}
}

func TestReplaceUnknownIDIs404(t *testing.T) {
	svc := newServiceForTests()
	_, err := svc.Replace("nope", Input{Nome: ptr("Ana"), DataDeIncorporacao: ptr("2022-01-15"), Cargo: ptr("inspetor")})
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestListFiltersCargoCaseInsensitive(t *testing.T) {
	svc := newServiceForTests()
	svc.Create(Input{Nome: ptr("Ana"), DataDeIncorporacao: ptr("2022-01-15"), Cargo: ptr("delegado")})
	svc.Create(Input{Nome: ptr("Bia"), DataDeIncorporacao: ptr("2023-03-10"), Cargo: ptr("analista")})

	list, err := svc.List(ListQuery{Cargo: "DELEGADO"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 1 || list[0].Nome != "Ana" {
		t.Fatalf("unexpected filter result: %+v", list)
	}

	empty, err := svc.List(ListQuery{Cargo: "escrivao"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty list for zero matches, got %+v", empty)
	}
}

func TestListSortsByDateDescending(t *testing.T) {
	svc := newServiceForTests()
	svc.Create(Input{Nome: ptr("Um"), DataDeIncorporacao: ptr("2022-01-15"), Cargo: ptr("supervisor")})
	svc.Create(Input{Nome: ptr("Dois"), DataDeIncorporacao: ptr("2023-03-10"), Cargo: ptr("analista")})
	svc.Create(Input{Nome: ptr("Tres"), DataDeIncorporacao: ptr("2021-05-20"), Cargo: ptr("delegado")})

	list, err := svc.List(ListQuery{Sort: "-dataDeIncorporacao"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	got := []string{list[0].DataDeIncorporacao, list[1].DataDeIncorporacao, list[2].DataDeIncorporacao}
	want := []string{"2023-03-10", "2022-01-15", "2021-05-20"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("descending date order wrong: got %v want %v", got, want)
		}
	}
}

func TestListPlacesUnparseableDatesLast(t *testing.T) {
	svc := newServiceForTests()
	svc.Create(Input{Nome: ptr("Um"), DataDeIncorporacao: ptr("2022-01-15"), Cargo: ptr("supervisor")})
	// corrupt a stored date directly, bypassing validation
	broken := svc.Repo.Insert(Agente{Nome: "Quebrado", DataDeIncorporacao: "not-a-date", Cargo: "analista"})
	svc.Create(Input{Nome: ptr("Dois"), DataDeIncorporacao: ptr("2023-03-10"), Cargo: ptr("analista")})

	for _, key := range []string{"dataDeIncorporacao", "-dataDeIncorporacao"} {
		list, err := svc.List(ListQuery{Sort: key})
		if err != nil {
			t.Fatalf("List(%q) returned error: %v", key, err)
		}
		if len(list) != 3 {
			t.Fatalf("record with invalid date disappeared: %+v", list)
		}
		if list[2].ID != broken.ID {
			t.Fatalf("invalid date not sorted last for %q: %+v", key, list)
		}
	}
}

func TestListRejectsUnknownSortKey(t *testing.T) {
	svc := newServiceForTests()
	_, err := svc.List(ListQuery{Sort: "id"})
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown sort key, got %v", err)
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	svc := newServiceForTests()
	svc.NewID = func() string { return "evt-1" }

	var subjects []string
	var events []contracts.ResourceEvent
	svc.Publish = func(subject string, payload []byte) error {
		subjects = append(subjects, subject)
		var evt contracts.ResourceEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			t.Fatalf("payload is not a ResourceEvent: %v", err)
		}
		events = append(events, evt)
		return nil
	}

	created, err := svc.Create(Input{Nome: ptr("Ana"), DataDeIncorporacao: ptr("2022-01-15"), Cargo: ptr("delegado")})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Acao != contracts.AcaoCriado || events[1].Acao != contracts.AcaoRemovido {
		t.Fatalf("unexpected actions: %+v", events)
	}
	if events[0].Recurso != contracts.RecursoAgente || events[0].RecursoID != created.ID {
		t.Fatalf("unexpected event: %+v", events[0])
	}
}

func TestFailedValidationPublishesNothing(t *testing.T) {
	svc := newServiceForTests()
	published := 0
	svc.Publish = func(string, []byte) error { published++; return nil }

	if _, err := svc.Create(Input{Nome: ptr("A")}); err == nil {
		t.Fatal("expected validation error")
	}
	if published != 0 {
		t.Fatalf("event published for a failed create: %d", published)
	}
}
