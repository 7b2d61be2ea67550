package response

import (
	"encoding/json"
	"net/http"
)

// JSON responds 200 with v encoded as JSON.
func JSON(v any) Response {
	return JSONWithStatus(v, http.StatusOK)
}

// JSONWithStatus responds with status and v encoded as JSON.
// Status 0 means 200, or 204 when v is nil.
func JSONWithStatus(v any, status int) Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if status == 0 {
			if v == nil {
				status = http.StatusNoContent
			} else {
				status = http.StatusOK
			}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)

		switch status {
		case http.StatusNoContent, http.StatusNotModified:
			return nil
		}
		return json.NewEncoder(w).Encode(v)
	}
}
