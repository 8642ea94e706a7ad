package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/tinoosan/tunegrab/internal/validate"
)

// MiddlewareSubmitValidation decodes and validates the submit body before
// the handler runs. Rejections here mean no task is ever created.
func MiddlewareSubmitValidation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body submitBody
		if err := decodeJSONStrict(w, r, &body, 1<<20, "application/json"); err != nil {
			markErr(w, err)
			if err == ErrContentType {
				http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
				return
			}
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(body.URL) == "" {
			markErr(w, ErrURLRequired)
			http.Error(w, ErrURLRequired.Error(), http.StatusBadRequest)
			return
		}

		if !validate.IsValid(body.URL) {
			markErr(w, ErrInvalidURL)
			writeJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidURL.Error()})
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeySubmit{}, body)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
