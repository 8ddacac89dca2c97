package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bronystylecrazy/amvisie/controller"
	"github.com/bronystylecrazy/amvisie/dispatch"
	"github.com/bronystylecrazy/amvisie/web"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// MuxHandler serves a controller through net/http. Route data comes from
// gorilla/mux path variables.
type MuxHandler struct {
	controller *controller.Controller
	dispatcher *dispatch.Dispatcher
	options    routeOptions
	logger     *zap.Logger
}

func NewMuxHandler(d *dispatch.Dispatcher, c *controller.Controller, opts ...RouteOption) *MuxHandler {
	return &MuxHandler{
		controller: c,
		dispatcher: d,
		options:    newRouteOptions(opts),
		logger:     zap.NewNop(),
	}
}

// WithLogger sets the logger used for response write failures.
func (h *MuxHandler) WithLogger(logger *zap.Logger) *MuxHandler {
	h.logger = logger
	return h
}

func (h *MuxHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.options.bodyLimit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.write(w, web.NewResponse(http.StatusRequestEntityTooLarge, web.StatusContent(http.StatusRequestEntityTooLarge, nil)))
			return
		}
		h.write(w, web.NewResponse(http.StatusBadRequest, web.StatusContent(http.StatusBadRequest, err)))
		return
	}

	req := &dispatch.Request{
		Verb:        r.Method,
		Body:        raw,
		ContentType: r.Header.Get("Content-Type"),
		Query:       queryFields(r.URL.RequestURI()),
		RouteData:   mux.Vars(r),
		RouteMethod: h.options.method,
	}
	h.write(w, h.dispatcher.Dispatch(r.Context(), h.controller, req))
}

func (h *MuxHandler) write(w http.ResponseWriter, resp *web.Response) {
	if resp.Content == nil {
		w.WriteHeader(resp.Status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(resp.Status)
	if err := json.NewEncoder(w).Encode(resp.Content); err != nil {
		h.logger.Warn("failed to write response", zap.Error(err))
	}
}

// MountMux registers a dispatching handler for c on r.
func MountMux(r *mux.Router, path string, d *dispatch.Dispatcher, c *controller.Controller, opts ...RouteOption) *mux.Route {
	h := NewMuxHandler(d, c, opts...)
	return r.Handle(path, h).Methods(h.options.verbs...)
}
