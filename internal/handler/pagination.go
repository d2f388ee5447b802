package handler

import (
	"net/http"
	"strconv"

	"github.com/resultshub/chat-server-go/internal/config"
)

// pageParams reads limit/offset query parameters, clamping them to the
// configured pagination bounds. Missing or malformed values fall back to
// the defaults rather than erroring.
func pageParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	if limit <= 0 || limit > config.PageMaxLimit {
		limit = config.PageDefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
