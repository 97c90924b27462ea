package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/grapevine/internal/common"
	"github.com/dmitrijs2005/grapevine/internal/server/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=12"`
	Password string `json:"password" validate:"required,min=6,bcrypt_max"`
}

type updateUserRequest struct {
	Username *string `json:"username" validate:"omitnil,min=3,max=12"`
	Password *string `json:"password" validate:"omitnil,min=6,bcrypt_max"`
}

type listUsersQuery struct {
	Page  int `json:"page" validate:"min=1,max=1000000"`
	Limit int `json:"limit" validate:"min=1,max=100"`
}

type uploadURLRequest struct {
	FileName string `json:"fileName" validate:"required,max=255"`
	FileType string `json:"fileType" validate:"required"`
}

type createAudioFileRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Key         string   `json:"key" validate:"required"`
	Tags        []string `json:"tags" validate:"omitempty,dive,audio_category"`
}

type updateAudioFileRequest struct {
	Title       *string  `json:"title" validate:"omitnil,min=1,max=100"`
	Description *string  `json:"description" validate:"omitnil,max=500"`
	Tags        []string `json:"tags" validate:"omitempty,dive,audio_category"`
}

type listAudioFilesQuery struct {
	Page   int      `json:"page" validate:"min=1,max=1000000"`
	Limit  int      `json:"limit" validate:"min=1,max=100"`
	Search string   `json:"search" validate:"max=100"`
	Tags   []string `json:"tags" validate:"omitempty,dive,audio_category"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("bcrypt_max", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= auth.MaxPasswordBytes
	})
	_ = v.RegisterValidation("audio_category", func(fl validator.FieldLevel) bool {
		return common.IsAudioCategory(fl.Field().String())
	})
	return v
}

// validationMessage renders the first failed rule as a client message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}

	fe := verrs[0]
	field := fe.Field()
	isText := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "min":
		if isText {
			return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%q must be greater than or equal to %s", field, fe.Param())
	case "max":
		if isText {
			return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%q must be less than or equal to %s", field, fe.Param())
	case "bcrypt_max":
		return fmt.Sprintf("%q must not exceed %d bytes", field, auth.MaxPasswordBytes)
	case "audio_category":
		return fmt.Sprintf("%q must be one of [%s]", field, strings.Join(common.AudioCategories, ", "))
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

// decode reads a JSON body into dst and validates it. On failure it writes
// the 400 response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		msg := msgInvalidBody
		if strings.HasPrefix(err.Error(), "json: unknown field ") {
			msg = fmt.Sprintf("%s is not allowed", strings.TrimPrefix(err.Error(), "json: unknown field "))
		}
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}

	return s.check(w, dst)
}

// check validates v, writing a 400 response on failure.
func (s *Server) check(w http.ResponseWriter, v any) bool {
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q must be a number", name)
	}
	return n, nil
}

// queryList splits a comma-separated query parameter, dropping blanks.
func queryList(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q must be a positive integer", "id")
	}
	return id, nil
}
