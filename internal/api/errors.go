package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ServerRejectedError is returned for any non-2xx backend response.
type ServerRejectedError struct {
	Status int
	Detail string
}

func (e *ServerRejectedError) Error() string {
	return "server rejected request: " + e.Detail
}

// newServerRejectedError extracts a human-readable detail from body. It looks
// at "error", then "detail", then "message". FastAPI validation errors put a
// list under "detail"; the first entry's "msg" is used in that case.
func newServerRejectedError(status int, body []byte) *ServerRejectedError {
	detail := extractDetail(body)
	if detail == "" {
		detail = fmt.Sprintf("server error (status %d)", status)
	}
	return &ServerRejectedError{Status: status, Detail: detail}
}

func extractDetail(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"error", "detail", "message"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if s := detailText(raw); s != "" {
			return s
		}
	}
	return ""
}

func detailText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0].Msg)
	}
	return ""
}
