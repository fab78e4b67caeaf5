package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponse(t *testing.T) {
	resp := NewResponse(http.StatusOK, "hello", "req-123")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-123", resp.RequestID)
	assert.Equal(t, map[string]string{"Content-Type": DefaultContentType}, resp.Headers)
	assert.Equal(t, "hello", resp.Body)
}

func TestResponse_WithHeader(t *testing.T) {
	resp := NewResponse(http.StatusOK, "", "")
	resp = resp.WithHeader("X-Custom-Header", "value")

	assert.Equal(t, "value", resp.Headers["X-Custom-Header"])
	assert.Equal(t, DefaultContentType, resp.Headers["Content-Type"]) // Ensure default is still there
}

func TestResponse_WithStatusCode(t *testing.T) {
	resp := NewResponse(http.StatusOK, "", "")
	resp = resp.WithStatusCode(http.StatusAccepted)

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestFromRequest(t *testing.T) {
	t.Run("populates event from request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/things?limit=10&limit=20&q=abc", bytes.NewBufferString(`{"name":"test"}`))
		req.Header.Set("X-Request-Id", "req-1")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Add("Accept", "text/plain")
		req.Header.Add("Accept", "application/json")

		event, err := FromRequest(req)
		require.NoError(t, err)

		assert.Equal(t, "/things", event.Path)
		assert.Equal(t, http.MethodPost, event.HTTPMethod)
		assert.Equal(t, `{"name":"test"}`, event.Body)
		assert.Equal(t, "req-1", event.RequestID)
		assert.Equal(t, "application/json", event.Headers["Content-Type"])
		// Only the first value of repeated headers and query params is kept
		assert.Equal(t, "text/plain", event.Headers["Accept"])
		assert.Equal(t, "10", event.QueryParams["limit"])
		assert.Equal(t, "abc", event.QueryParams["q"])
	})

	t.Run("generates request id when header is missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		event, err := FromRequest(req)
		require.NoError(t, err)
		assert.NotEmpty(t, event.RequestID)
	})

	t.Run("request with no headers at all", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header = nil

		event, err := FromRequest(req)
		require.NoError(t, err)
		assert.Empty(t, event.Headers)
		assert.NotEmpty(t, event.RequestID)
	})
}

func TestHTTP(t *testing.T) {
	echoHandler := func(ctx Context, event Event) Response {
		assert.NotEmpty(t, event.RequestID, "RequestID should be populated")
		assert.Equal(t, event.RequestID, ctx.RequestID)
		require.NotNil(t, ctx.Logger)
		require.NotNil(t, ctx.GetEnv)

		if event.Body == "teapot" {
			return NewResponse(http.StatusTeapot, "short and stout", event.RequestID).
				WithHeader("X-Teapot", "true")
		}
		return NewResponse(http.StatusOK, "echo: "+event.Body, event.RequestID)
	}

	httpHandler := HTTP(echoHandler)

	tests := []struct {
		name            string
		method          string
		path            string
		body            string
		headers         map[string]string
		expectedStatus  int
		expectedBody    string
		expectedHeaders map[string]string
	}{
		{
			name:           "GET request",
			method:         http.MethodGet,
			path:           "/",
			expectedStatus: http.StatusOK,
			expectedBody:   "echo: ",
		},
		{
			name:           "POST request with body",
			method:         http.MethodPost,
			path:           "/anything",
			body:           "payload",
			expectedStatus: http.StatusOK,
			expectedBody:   "echo: payload",
		},
		{
			name:           "handler controls status and headers",
			method:         http.MethodPut,
			path:           "/teapot",
			body:           "teapot",
			expectedStatus: http.StatusTeapot,
			expectedBody:   "short and stout",
			expectedHeaders: map[string]string{
				"X-Teapot": "true",
			},
		},
		{
			name:           "inbound request id is echoed back",
			method:         http.MethodPost,
			path:           "/",
			body:           "payload",
			headers:        map[string]string{"X-Request-Id": "fixed-id"},
			expectedStatus: http.StatusOK,
			expectedBody:   "echo: payload",
			expectedHeaders: map[string]string{
				"X-Request-Id": "fixed-id",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()

			httpHandler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedBody, rr.Body.String())
			assert.Equal(t, DefaultContentType, rr.Header().Get("Content-Type"))
			assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
			for k, v := range tt.expectedHeaders {
				assert.Equal(t, v, rr.Header().Get(k))
			}
		})
	}
}

func TestHTTP_ZeroValueResponse(t *testing.T) {
	// A handler returning the zero Response still produces a valid reply.
	httpHandler := HTTP(func(ctx Context, event Event) Response {
		return Response{}
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	httpHandler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())
	assert.Equal(t, DefaultContentType, rr.Header().Get("Content-Type"))
}

func TestHandleHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	HandleHealth(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}
