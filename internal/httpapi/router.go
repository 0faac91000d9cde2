package httpapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Router uses the standard library http.ServeMux (no third-party routing
// dependency needed for this surface).
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// ServeHTTP tags every request with an X-Request-Id (generated when the
// caller did not send one) before dispatching.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	reqID := req.Header.Get("X-Request-Id")
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set("X-Request-Id", reqID)

	r.logger.Debug("Incoming request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", reqID),
	)

	r.mux.ServeHTTP(w, req)
}

// RegisterAllocationRoutes wires the allocation API surface.
func (r *Router) RegisterAllocationRoutes(h *AllocationHandler) {
	// catalog + allocation views
	r.Handle("/allocation/api/v1/rooms", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetRooms(w, req)
	})

	r.Handle("/allocation/api/v1/allocations", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetAllocations(w, req)
	})

	// removal flow: /allocation/api/v1/allocations/{id}/removal[/confirm|/cancel]
	r.Handle("/allocation/api/v1/allocations/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(req.URL.Path, "/allocation/api/v1/allocations/")
		parts := strings.Split(rest, "/")
		id, ok := parseID(parts[0])
		if !ok || len(parts) < 2 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch strings.Join(parts[1:], "/") {
		case "removal":
			h.RequestRemoval(w, req, id)
		case "removal/confirm":
			h.ConfirmRemoval(w, req, id)
		case "removal/cancel":
			h.CancelRemoval(w, req, id)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	// draft editing: /allocation/api/v1/draft/{customerID}[/...]
	r.Handle("/allocation/api/v1/draft/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/allocation/api/v1/draft/")
		parts := strings.Split(rest, "/")
		customerID, ok := parseID(parts[0])
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		switch {
		case len(parts) == 1:
			switch req.Method {
			case http.MethodGet:
				h.GetDraft(w, req, customerID)
			case http.MethodPut:
				h.PutDraft(w, req, customerID)
			case http.MethodDelete:
				h.DeleteDraft(w, req, customerID)
			default:
				w.WriteHeader(http.StatusMethodNotAllowed)
			}

		case len(parts) == 2 && parts[1] == "lines":
			if req.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			h.AddLine(w, req, customerID)

		case len(parts) == 3 && parts[1] == "lines":
			roomID, ok := parseID(parts[2])
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			switch req.Method {
			case http.MethodPatch:
				h.UpdateLine(w, req, customerID, roomID)
			case http.MethodDelete:
				h.RemoveLine(w, req, customerID, roomID)
			default:
				w.WriteHeader(http.StatusMethodNotAllowed)
			}

		case len(parts) == 2 && parts[1] == "commit":
			if req.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			h.CommitDraft(w, req, customerID)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}
