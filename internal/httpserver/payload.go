package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const maxBodyBytes = 1 << 20

type loginPayload struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userPayload struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type userPatchPayload struct {
	Email    *string `json:"email" validate:"omitnil,email,max=254"`
	Password *string `json:"password" validate:"omitnil,min=1,maxbytes=72"`
}

func (p userPatchPayload) empty() bool { return p.Email == nil && p.Password == nil }

type advertPayload struct {
	Title       string `json:"title" validate:"required,notblank,max=40"`
	Description string `json:"description" validate:"required,max=120"`
}

type advertPatchPayload struct {
	Title       *string `json:"title" validate:"omitnil,notblank,max=40"`
	Description *string `json:"description" validate:"omitnil,max=120"`
}

func (p advertPatchPayload) empty() bool { return p.Title == nil && p.Description == nil }

type partial interface {
	empty() bool
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "maxbytes", maxBytes)
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// maxBytes bounds the encoded length of a string, unlike max which counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// bind decodes a strict JSON body into dst and validates it, answering 400
// itself when anything is wrong.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: []fieldError{decodeFailure(err)}})
		return false
	}
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: []fieldError{{Field: "body", Rule: "json"}}})
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			respondError(w, r, err)
			return false
		}
		fields := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldError{Field: fe.Field(), Rule: fe.Tag()})
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fields})
		return false
	}

	if p, ok := dst.(partial); ok && p.empty() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: []fieldError{{Field: "body", Rule: "required_any"}}})
		return false
	}
	return true
}

func decodeFailure(err error) fieldError {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return fieldError{Field: "body", Rule: "required"}
	case errors.As(err, &typeErr):
		return fieldError{Field: typeErr.Field, Rule: "type"}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return fieldError{Field: field, Rule: "unknown"}
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fieldError{Field: "body", Rule: "max"}
	}
	return fieldError{Field: "body", Rule: "json"}
}
