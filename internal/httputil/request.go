package httputil

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// GetRequiredQueryParameters reads the given query parameters and returns
// them as a map, along with a logger pre-populated with each value. If any
// parameter is missing or blank it writes a 400 with the reason and returns
// false.
func GetRequiredQueryParameters(w http.ResponseWriter, r *http.Request, paramKeys ...string) (map[string]string, zerolog.Logger, bool) {
	params := make(map[string]string, len(paramKeys))
	logger := log.With()
	for _, key := range paramKeys {
		value := r.URL.Query().Get(key)
		if value == "" {
			http.Error(w, fmt.Sprintf("expected %s query parameter", key), http.StatusBadRequest)
			return nil, zerolog.Nop(), false
		}
		params[key] = value
		logger = logger.Str(key, value)
	}
	return params, logger.Logger(), true
}
