package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cristianoliveira/flightdeck/internal/gateway"
)

// NormalizeError turns a failed request into the one string shown to the user.
// Precedence: the body's field-level "errors", then its "message", then the raw
// body, then the error text, then fallback.
func NormalizeError(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var httpErr *gateway.HTTPError
	if errors.As(err, &httpErr) {
		if msg := fromBody(httpErr.Body); msg != "" {
			return msg
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

func fromBody(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		// Not an object: show it as the server sent it.
		var s string
		if json.Unmarshal(body, &s) == nil {
			return s
		}
		return string(body)
	}
	if msg := fieldErrors(fields["errors"]); msg != "" {
		return msg
	}
	var message string
	if raw, ok := fields["message"]; ok && json.Unmarshal(raw, &message) == nil && message != "" {
		return message
	}
	return string(body)
}

// fieldErrors renders the "errors" member: a string, a list of strings or
// {msg|message} objects, or an object of field -> message.
func fieldErrors(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if p := errorItem(item); p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, "; ")
	}

	var byField map[string]json.RawMessage
	if json.Unmarshal(raw, &byField) == nil {
		keys := make([]string, 0, len(byField))
		for k := range byField {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if p := errorItem(byField[k]); p != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", k, p))
			}
		}
		return strings.Join(parts, "; ")
	}
	return string(raw)
}

func errorItem(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		if obj.Msg != "" {
			return obj.Msg
		}
		if obj.Message != "" {
			return obj.Message
		}
	}
	return string(bytes.TrimSpace(raw))
}
