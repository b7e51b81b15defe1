package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx response from the measurement service.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Detail)
}

// errorBody is the {"detail": ...} envelope. Detail is either a message or
// a list of field validation errors.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type fieldError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func parseError(status int, body []byte) *Error {
	e := &Error{Status: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		e.Detail = strings.TrimSpace(string(body))
		return e
	}

	var msg string
	if err := json.Unmarshal(eb.Detail, &msg); err == nil {
		e.Detail = msg
		return e
	}
	var fields []fieldError
	if err := json.Unmarshal(eb.Detail, &fields); err == nil {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			if len(f.Loc) > 0 {
				parts = append(parts, fmt.Sprintf("%v: %s", f.Loc[len(f.Loc)-1], f.Msg))
			} else {
				parts = append(parts, f.Msg)
			}
		}
		e.Detail = strings.Join(parts, "; ")
		return e
	}
	e.Detail = string(eb.Detail)
	return e
}
