// Package handler provides the contract between the edgefn execution
// environment and user function code, plus a small server for running a
// function on its own.
package handler

import (
	"io"
	"net/http"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"edgefn/pkg/logger"
)

// DefaultContentType is applied to responses that set no Content-Type of
// their own.
const DefaultContentType = "text/plain; charset=utf-8"

// Event is the inbound request as seen by a function.
type Event struct {
	Body        string            `json:"body"`
	Path        string            `json:"path"`
	HTTPMethod  string            `json:"httpMethod"`
	Headers     map[string]string `json:"headers"`
	QueryParams map[string]string `json:"queryParams"`
	RequestID   string            `json:"requestId"`
}

// Response is what a function hands back to the execution environment.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
	RequestID  string            `json:"requestId"`
}

// Context carries what the execution environment supplies to a function
// besides the event itself.
type Context struct {
	RequestID string
	GetEnv    func(string) (string, bool)
	Logger    *zap.Logger
}

// Handler is the function signature the environment invokes for each
// inbound request. It is total: there is no error return.
type Handler func(Context, Event) Response

// NewResponse creates a new Response with default headers.
func NewResponse(statusCode int, body string, requestID string) Response {
	return Response{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type": DefaultContentType,
		},
		Body:      body,
		RequestID: requestID,
	}
}

// WithHeader adds or updates a header in the Response
func (r Response) WithHeader(key, value string) Response {
	r.Headers[key] = value
	return r
}

// WithStatusCode updates the status code in the Response
func (r Response) WithStatusCode(statusCode int) Response {
	r.StatusCode = statusCode
	return r
}

// FromRequest builds an Event from an inbound HTTP request. Only the first
// value of repeated headers and query parameters is kept. The request ID is
// taken from X-Request-Id when present, otherwise generated.
func FromRequest(r *http.Request) (Event, error) {
	event := Event{
		Path:        r.URL.Path,
		HTTPMethod:  r.Method,
		Headers:     make(map[string]string),
		QueryParams: make(map[string]string),
	}

	for key, values := range r.Header {
		if len(values) > 0 {
			event.Headers[key] = values[0]
		}
	}

	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			event.QueryParams[key] = values[0]
		}
	}

	if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return Event{}, err
		}
		event.Body = string(body)
	}

	event.RequestID = r.Header.Get("X-Request-Id")
	if event.RequestID == "" {
		event.RequestID = uuid.New().String()
	}

	return event, nil
}

// HTTP adapts a Handler to an http.HandlerFunc. Every method and path is
// passed through to the function unchanged.
func HTTP(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logger.FromCtx(r.Context())

		event, err := FromRequest(r)
		if err != nil {
			l.Error("Failed to read request body", zap.Error(err))
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}

		l.Debug("Invoking function",
			zap.String("method", event.HTTPMethod),
			zap.String("path", event.Path),
			zap.String("requestId", event.RequestID))

		resp := h(Context{
			RequestID: event.RequestID,
			GetEnv:    os.LookupEnv,
			Logger:    l,
		}, event)

		writeResponse(w, resp)

		l.Info("Function invocation complete",
			zap.String("requestId", event.RequestID),
			zap.Int("status", resp.StatusCode))
	}
}

func writeResponse(w http.ResponseWriter, resp Response) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", DefaultContentType)
	}
	if resp.RequestID != "" {
		w.Header().Set("X-Request-Id", resp.RequestID)
	}

	statusCode := resp.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	w.WriteHeader(statusCode)
	w.Write([]byte(resp.Body))
}

// HandleHealth is the health check endpoint.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Start serves the handler on its own, without the dev server harness.
// The port comes from PORT (injected by the execution environment).
func Start(h Handler) {
	l := logger.Get()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // Default port
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", HandleHealth)
	mux.Handle("/", HTTP(h))

	l.Info("Function server starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		l.Fatal("Function server failed", zap.Error(err))
	}
}
