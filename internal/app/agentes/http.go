package agentes

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/departamento-policia/api/internal/apierror"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// Register mounts the /agentes routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/agentes", h.handleList)
	r.Get("/agentes/{id}", h.handleGet)
	r.Post("/agentes", h.handleCreate)
	r.Put("/agentes/{id}", h.handleReplace)
	r.Patch("/agentes/{id}", h.handleMerge)
	r.Delete("/agentes/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{
		Cargo: r.URL.Query().Get("cargo"),
		Sort:  r.URL.Query().Get("sort"),
	}
	list, err := h.Service.List(q)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	agente, err := h.Service.Get(chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, agente)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apierror.Write(w, apierror.BadRequest("Payload JSON inválido"))
		return
	}
	created, err := h.Service.Create(in)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apierror.Write(w, apierror.BadRequest("Payload JSON inválido"))
		return
	}
	updated, err := h.Service.Replace(chi.URLParam(r, "id"), in)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Agente atualizado com sucesso",
		"data":    updated,
	})
}

func (h *Handler) handleMerge(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apierror.Write(w, apierror.BadRequest("Payload JSON inválido"))
		return
	}
	updated, err := h.Service.Merge(chi.URLParam(r, "id"), in)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Agente atualizado com sucesso",
		"data":    updated,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(chi.URLParam(r, "id")); err != nil {
		apierror.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
