package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// LegacyQuery serves the GET aliases of mutating routes: the first value of
// each query parameter is copied into a JSON request body so the regular
// handler can decode it.
func LegacyQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if len(query) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		fields := make(map[string]string, len(query))
		for key, values := range query {
			if len(values) > 0 {
				fields[key] = values[0]
			}
		}
		body, err := json.Marshal(fields)
		if err != nil {
			writeError(w, http.StatusBadRequest, "malformed query")
			return
		}
		r = r.Clone(r.Context())
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		r.Header.Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// looseInt decodes a JSON number or a numeric string. Values that are
// present but not integers leave Valid false instead of failing the decode.
type looseInt struct {
	Value int
	Set   bool
	Valid bool
}

func (l *looseInt) UnmarshalJSON(data []byte) error {
	*l = looseInt{}
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	l.Set = true
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	l.Value = n
	l.Valid = true
	return nil
}
