package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"scoutlineAPI/internal/apperr"
)

var validate = validator.New()

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Anything that is not a known sentinel is a 500 with a generic body so
// store errors never leak to clients.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		respondWithError(w, http.StatusNotFound, apperr.Message(err))
	case errors.Is(err, apperr.ErrConflict):
		respondWithError(w, http.StatusConflict, apperr.Message(err))
	case errors.Is(err, apperr.ErrValidation):
		respondWithError(w, http.StatusBadRequest, apperr.Message(err))
	default:
		log.Printf("Unhandled service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeAndValidate parses a JSON body and runs validator tags over it.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validationf("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return apperr.Validationf("%s", validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		switch f.Tag() {
		case "required":
			return f.Field() + " is required"
		case "email":
			return f.Field() + " must be a valid email address"
		case "uuid":
			return f.Field() + " must be a valid UUID"
		case "url":
			return f.Field() + " must be a valid URL"
		case "min":
			return f.Field() + " is below the minimum of " + f.Param()
		case "max":
			return f.Field() + " is above the maximum of " + f.Param()
		}
		return f.Field() + " is invalid"
	}
	return "invalid request body"
}
