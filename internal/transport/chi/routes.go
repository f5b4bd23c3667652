package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ParamErrorHandler writes the response for a malformed path or query parameter.
type ParamErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Options configures Handler.
type Options struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc ParamErrorHandler
}

// Handler mounts the API routes on opts.BaseRouter (a new router when nil).
func Handler(s *Server, opts Options) http.Handler {
	r := opts.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	onParamErr := opts.ErrorHandlerFunc
	if onParamErr == nil {
		onParamErr = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		}
	}

	r.Get("/", s.Root)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Post("/search", s.Search)

	r.Get("/usage/{user_id}", func(w http.ResponseWriter, req *http.Request) {
		var userID string
		err := runtime.BindStyledParameterWithOptions("simple", "user_id", chi.URLParam(req, "user_id"), &userID,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			onParamErr(w, req, fmt.Errorf("invalid format for parameter user_id: %w", err))
			return
		}
		s.GetUsage(w, req, userID)
	})

	r.Get("/documents", func(w http.ResponseWriter, req *http.Request) {
		var params ListDocumentsParams
		if err := runtime.BindQueryParameter("form", true, false, "offset", req.URL.Query(), &params.Offset); err != nil {
			onParamErr(w, req, fmt.Errorf("invalid format for parameter offset: %w", err))
			return
		}
		if err := runtime.BindQueryParameter("form", true, false, "limit", req.URL.Query(), &params.Limit); err != nil {
			onParamErr(w, req, fmt.Errorf("invalid format for parameter limit: %w", err))
			return
		}
		s.ListDocuments(w, req, params)
	})

	return r
}
