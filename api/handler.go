package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leeforge/console/json"
	"github.com/leeforge/console/plugin"
	"github.com/leeforge/console/registry"
)

// Handler exposes the registry's operations to the rendering layer over
// HTTP. Descriptor registration stays a Go-level concern (descriptors
// carry factories); everything else from the registry surface is routed.
type Handler struct {
	reg *registry.Registry
}

// NewHandler creates a Handler over the given registry.
func NewHandler(reg *registry.Registry) *Handler {
	return &Handler{reg: reg}
}

// Routes mounts all registry endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(TraceID())

	r.Get("/healthz", h.health)
	r.Get("/state", h.state)
	r.Get("/graph", h.graph)

	r.Route("/plugins", func(r chi.Router) {
		r.Get("/", h.listPlugins)
		r.Post("/activate", h.activateMultiple)
		r.Post("/deactivate", h.deactivateMultiple)
		r.Post("/reload", h.reloadAll)

		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.getPlugin)
			r.Delete("/", h.unregister)
			r.Post("/activate", h.activate)
			r.Post("/deactivate", h.deactivate)
			r.Post("/load", h.load)
			r.Post("/unload", h.unload)
			r.Get("/dependents", h.dependents)
		})
	})

	r.Route("/navigation", func(r chi.Router) {
		r.Get("/", h.navigation)
		r.Post("/select", h.selectPlugin)
		r.Post("/page", h.selectPage)
		r.Post("/back", h.navigateBack)
		r.Post("/forward", h.navigateForward)
		r.Post("/clear", h.clearNavigation)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ok(w, r, map[string]string{"status": "ok"})
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	ok(w, r, h.reg.State())
}

func (h *Handler) graph(w http.ResponseWriter, r *http.Request) {
	graph, err := h.reg.BuildDependencyGraph()
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, r, graph)
}

func (h *Handler) listPlugins(w http.ResponseWriter, r *http.Request) {
	ok(w, r, h.reg.State().Plugins)
}

func (h *Handler) getPlugin(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	info, found := h.reg.GetPlugin(name)
	if !found {
		writeJSON(w, r, http.StatusNotFound, Response{Error: &Error{
			Code:    "PLUGIN_NOT_FOUND",
			Message: "plugin is not registered",
		}})
		return
	}
	ok(w, r, info)
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	if err := h.reg.Unregister(chi.URLParam(r, "name")); err != nil {
		fail(w, r, err)
		return
	}
	ok(w, r, nil)
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	if err := h.reg.Activate(r.Context(), chi.URLParam(r, "name")); err != nil {
		fail(w, r, err)
		return
	}
	ok(w, r, nil)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.reg.Deactivate(chi.URLParam(r, "name")); err != nil {
		fail(w, r, err)
		return
	}
	ok(w, r, nil)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body struct {
		Capability string `json:"capability"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, r, http.StatusBadRequest, Response{Error: &Error{
				Code:    "BAD_REQUEST",
				Message: "malformed request body",
			}})
			return
		}
	}

	var err error
	if body.Capability != "" {
		err = h.reg.LoadPlugin(r.Context(), name, plugin.CapabilityKind(body.Capability))
	} else {
		err = h.reg.LoadPlugin(r.Context(), name)
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, r, nil)
}

func (h *Handler) unload(w http.ResponseWriter, r *http.Request) {
	if err := h.reg.UnloadPlugin(chi.URLParam(r, "name")); err != nil {
		fail(w, r, err)
		return
	}
	ok(w, r, nil)
}

func (h *Handler) dependents(w http.ResponseWriter, r *http.Request) {
	ok(w, r, h.reg.Dependents(chi.URLParam(r, "name")))
}

type namesRequest struct {
	Names []string `json:"names"`
}

func (h *Handler) activateMultiple(w http.ResponseWriter, r *http.Request) {
	var body namesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, r, http.StatusBadRequest, Response{Error: &Error{
			Code:    "BAD_REQUEST",
			Message: "malformed request body",
		}})
		return
	}
	if err := h.reg.ActivateMultiple(r.Context(), body.Names); err != nil {
		fail(w, r, err)
		return
	}
	ok(w, r, nil)
}

func (h *Handler) deactivateMultiple(w http.ResponseWriter, r *http.Request) {
	var body namesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, r, http.StatusBadRequest, Response{Error: &Error{
			Code:    "BAD_REQUEST",
			Message: "malformed request body",
		}})
		return
	}
	if err := h.reg.DeactivateMultiple(body.Names); err != nil {
		fail(w, r, err)
		return
	}
	ok(w, r, nil)
}

func (h *Handler) reloadAll(w http.ResponseWriter, r *http.Request) {
	if err := h.reg.ReloadAll(r.Context()); err != nil {
		fail(w, r, err)
		return
	}
	ok(w, r, nil)
}

type selectRequest struct {
	Plugin string `json:"plugin"`
	Page   string `json:"page"`
}

func (h *Handler) navigation(w http.ResponseWriter, r *http.Request) {
	ok(w, r, h.reg.State().Navigation)
}

func (h *Handler) selectPlugin(w http.ResponseWriter, r *http.Request) {
	var body selectRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, r, http.StatusBadRequest, Response{Error: &Error{
			Code:    "BAD_REQUEST",
			Message: "malformed request body",
		}})
		return
	}
	if body.Page != "" {
		h.reg.SelectPlugin(body.Plugin, body.Page)
	} else {
		h.reg.SelectPlugin(body.Plugin)
	}
	ok(w, r, h.reg.State().Navigation)
}

func (h *Handler) selectPage(w http.ResponseWriter, r *http.Request) {
	var body selectRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, r, http.StatusBadRequest, Response{Error: &Error{
			Code:    "BAD_REQUEST",
			Message: "malformed request body",
		}})
		return
	}
	h.reg.SelectPage(body.Plugin, body.Page)
	ok(w, r, h.reg.State().Navigation)
}

func (h *Handler) navigateBack(w http.ResponseWriter, r *http.Request) {
	moved := h.reg.NavigateBack()
	ok(w, r, map[string]any{"moved": moved, "navigation": h.reg.State().Navigation})
}

func (h *Handler) navigateForward(w http.ResponseWriter, r *http.Request) {
	moved := h.reg.NavigateForward()
	ok(w, r, map[string]any{"moved": moved, "navigation": h.reg.State().Navigation})
}

func (h *Handler) clearNavigation(w http.ResponseWriter, r *http.Request) {
	h.reg.ClearNavigation()
	ok(w, r, nil)
}
