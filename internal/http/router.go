package http

import (
	"net/http"
	"strings"
	"time"

	"talentflow/internal/http/handlers"
	"talentflow/internal/http/metrics"
	httpmw "talentflow/internal/http/middleware"
	"talentflow/internal/observability"
)

type RouterDependencies struct {
	CandidateHandler  *handlers.CandidateHandler
	InterviewHandler  *handlers.InterviewHandler
	AssessmentHandler *handlers.AssessmentHandler
	OfferHandler      *handlers.OfferHandler
	SprintHandler     *handlers.SprintHandler
	ChangesHandler    *handlers.ChangesHandler
	AuthMiddleware    *httpmw.AuthMiddleware
	Limiter           httpmw.Limiter
	Metrics           *metrics.Collector
	Logger            *observability.Logger
	RequestTimeout    time.Duration
}

type Router struct {
	deps RouterDependencies
}

const (
	maxBodyBytes     = 1 << 20
	clientRateLimit  = 300
	clientRateWindow = time.Minute
)

func NewRouter(deps RouterDependencies) http.Handler {
	return &Router{deps: deps}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := httpmw.Chain(r.baseHandler(),
		httpmw.RequestID,
		httpmw.Logging(r.deps.Logger),
		httpmw.BodyLimit(maxBodyBytes),
		httpmw.Recover,
		httpmw.Metrics(r.deps.Metrics),
		httpmw.RateLimit(r.deps.Limiter, httpmw.ClientIP, clientRateLimit, clientRateWindow),
		httpmw.Timeout(r.deps.RequestTimeout, map[string]bool{"/changes/stream": true}),
	)
	handler.ServeHTTP(w, req)
}

func (r *Router) baseHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		switch {
		case req.Method == http.MethodGet && path == "/health":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		case req.Method == http.MethodGet && path == "/metrics":
			r.deps.Metrics.Handler().ServeHTTP(w, req)
			return
		}

		if strings.HasPrefix(path, "/candidates") || strings.HasPrefix(path, "/interviews") ||
			strings.HasPrefix(path, "/interview-slots") || strings.HasPrefix(path, "/offers") ||
			strings.HasPrefix(path, "/sprints") || strings.HasPrefix(path, "/changes") {
			protected := r.deps.AuthMiddleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				r.handleProtected(w, req)
			}))
			protected.ServeHTTP(w, req)
			return
		}

		http.NotFound(w, req)
	})
}

func (r *Router) handleProtected(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path

	switch {
	case req.Method == http.MethodGet && path == "/changes/stream":
		r.deps.ChangesHandler.Stream(w, req)
		return
	case req.Method == http.MethodGet && path == "/interview-slots/preview":
		r.deps.InterviewHandler.PreviewSlots(w, req)
		return
	case req.Method == http.MethodPost && path == "/candidates":
		r.deps.CandidateHandler.Create(w, req)
		return
	case req.Method == http.MethodGet && path == "/candidates":
		r.deps.CandidateHandler.List(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/candidates/") && strings.HasSuffix(path, "/transition"):
		r.deps.CandidateHandler.Transition(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/candidates/") && strings.HasSuffix(path, "/hr-review"):
		r.deps.CandidateHandler.SetHRReview(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/candidates/") && strings.HasSuffix(path, "/events"):
		r.deps.CandidateHandler.History(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/candidates/") && strings.HasSuffix(path, "/interviews"):
		r.deps.InterviewHandler.Book(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/candidates/") && strings.HasSuffix(path, "/interviews"):
		r.deps.InterviewHandler.ListByCandidate(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/candidates/") && strings.HasSuffix(path, "/offers"):
		r.deps.OfferHandler.Create(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/candidates/") && strings.HasSuffix(path, "/offers"):
		r.deps.OfferHandler.ListByCandidate(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/candidates/") && strings.HasSuffix(path, "/sprints"):
		r.deps.SprintHandler.Assign(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/candidates/") && strings.HasSuffix(path, "/sprints"):
		r.deps.SprintHandler.ListByCandidate(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/candidates/"):
		r.deps.CandidateHandler.Get(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/interviews/") && strings.HasSuffix(path, "/cancel"):
		r.deps.InterviewHandler.Cancel(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/interviews/") && strings.HasSuffix(path, "/reschedule"):
		r.deps.InterviewHandler.Reschedule(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/interviews/") && strings.HasSuffix(path, "/status"):
		r.deps.InterviewHandler.SetStatus(w, req)
		return
	case strings.HasPrefix(path, "/interviews/") && strings.Contains(path, "-assessment"):
		r.routeAssessment(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/interviews/"):
		r.deps.InterviewHandler.Get(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/sprints/") && strings.HasSuffix(path, "/assign-reviewer"):
		r.deps.SprintHandler.AssignReviewer(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/sprints/"):
		r.deps.SprintHandler.Update(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/sprints/"):
		r.deps.SprintHandler.Get(w, req)
		return
	case strings.HasPrefix(path, "/offers/"):
		r.routeOffer(w, req)
		return
	}

	http.NotFound(w, req)
}

func (r *Router) routeAssessment(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path
	switch {
	case req.Method == http.MethodPost && strings.HasSuffix(path, "/submit"):
		r.deps.AssessmentHandler.Submit(w, req)
	case req.Method == http.MethodPut || req.Method == http.MethodPost:
		r.deps.AssessmentHandler.Save(w, req)
	case req.Method == http.MethodGet:
		r.deps.AssessmentHandler.Get(w, req)
	default:
		http.NotFound(w, req)
	}
}

func (r *Router) routeOffer(w http.ResponseWriter, req *http.Request) {
	parts := strings.Split(strings.Trim(req.URL.Path, "/"), "/")
	switch {
	case req.Method == http.MethodGet && len(parts) == 2:
		r.deps.OfferHandler.Get(w, req)
	case req.Method == http.MethodPatch && len(parts) == 2:
		r.deps.OfferHandler.Update(w, req)
	case req.Method == http.MethodPost && len(parts) == 3:
		r.deps.OfferHandler.Action(w, req, parts[2])
	default:
		http.NotFound(w, req)
	}
}
