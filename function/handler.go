// Package function holds the user-editable function code. The template
// ships a handler that answers every request with a fixed greeting;
// replace Handle with your own logic.
package function

import (
	"net/http"

	"edgefn/pkg/handler"
)

// Handle maps any inbound event to the fixed greeting. It ignores every
// property of the event and cannot fail.
func Handle(ctx handler.Context, event handler.Event) handler.Response {
	return handler.NewResponse(http.StatusOK, "Hello World!", event.RequestID)
}
