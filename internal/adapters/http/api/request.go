package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	// idempotencyHeader carries the client command id used for de-duplication.
	idempotencyHeader = "Idempotency-Key"
	maxBodyBytes      = 1 << 20
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func matchID(r *http.Request) string {
	return chi.URLParam(r, "matchID")
}

func commandID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(idempotencyHeader))
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("%w: %w", ErrBodyTooBig, err)
		}
		return fmt.Errorf("%w: invalid json: %w", ErrBadRequest, err)
	}
	return nil
}

// setParam reads the "set" query parameter: empty is the current period,
// "all" the whole match.
func setParam(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("set"))
	switch v {
	case "":
		return 0, nil
	case "all":
		return -1, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: set must be a positive number or \"all\"", ErrBadRequest)
	}
	return n, nil
}

func intParam(r *http.Request, name string, def, minimum, maximum int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < minimum || n > maximum {
		return 0, fmt.Errorf("%w: %s must be between %d and %d", ErrBadRequest, name, minimum, maximum)
	}
	return n, nil
}

func writeRequestError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBodyTooBig) {
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", err)
		return
	}
	writeError(w, http.StatusBadRequest, "bad_request", err)
}
