package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"casetracker/core"
	"casetracker/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

var (
	connectionStringPattern = regexp.MustCompile(`(?:mysql|postgres|postgresql|sqlite|redis|file)://[^\s"']+`)
	filePathPattern         = regexp.MustCompile(`(?:[A-Za-z]:\\|/)(?:[^\\/:*?"<>|\s]+[\\/ ])*[^\\/:*?"<>|\s]+`)
	privateIPPattern        = regexp.MustCompile(`\b(?:10|127)(?:\.\d{1,3}){3}(?::\d{1,5})?\b`)
	privateIP172Pattern     = regexp.MustCompile(`\b172\.(?:1[6-9]|2[0-9]|3[01])(?:\.\d{1,3}){2}(?::\d{1,5})?\b`)
	privateIP192Pattern     = regexp.MustCompile(`\b192\.168(?:\.\d{1,3}){2}(?::\d{1,5})?\b`)
	credentialPattern       = regexp.MustCompile(`(?i)(password|secret|token|key|credential|auth)[:=]\s*["']?[^"'\s]+["']?`)
	goroutinePattern        = regexp.MustCompile(`(?m)^goroutine \d+.*$`)
)

// sanitizeErrorMessage removes sensitive information from error messages before they are sent to clients
func sanitizeErrorMessage(message string) string {
	// Remove database connection strings first, the path pattern would split them
	message = connectionStringPattern.ReplaceAllString(message, "[DATABASE_CONNECTION]")
	message = filePathPattern.ReplaceAllString(message, "[FILE_PATH]")

	// Only private addresses are redacted
	message = privateIPPattern.ReplaceAllString(message, "[PRIVATE_IP]")
	message = privateIP172Pattern.ReplaceAllString(message, "[PRIVATE_IP]")
	message = privateIP192Pattern.ReplaceAllString(message, "[PRIVATE_IP]")

	message = credentialPattern.ReplaceAllString(message, "$1=[REDACTED]")
	message = goroutinePattern.ReplaceAllString(message, "[STACK_TRACE]")

	if len(message) > core.MaxErrorMessageLength {
		message = message[:core.MaxErrorMessageLength-3] + "..."
	}

	return message
}

// Problem is the JSON body of every error response
type Problem struct {
	Title      string `json:"title"`
	Status     int    `json:"status"`
	EntityName string `json:"entityName,omitempty"`
	ErrorKey   string `json:"errorKey,omitempty"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message,omitempty"`
}

// writeProblem writes a problem body. Client failures tied to an entity also
// carry the X-<app>-error and X-<app>-params headers.
func (a *API) writeProblem(w http.ResponseWriter, status int, title, entity, errorKey, field, message string) {
	if status < http.StatusInternalServerError && entity != "" && errorKey != "" {
		a.setFailureAlert(w, entity, errorKey)
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)

	problem := Problem{
		Title:      title,
		Status:     status,
		EntityName: entity,
		ErrorKey:   errorKey,
		Field:      field,
		Message:    sanitizeErrorMessage(message),
	}
	if err := json.NewEncoder(w).Encode(problem); err != nil {
		a.logger.Errorw("Failed to encode problem response", "error", err)
	}
}

// writeError writes an error response to the client and logs it with proper sanitization
func writeError(w http.ResponseWriter, statusCode int, message string, err error, logger *zap.SugaredLogger) {
	// Log the FULL error internally (unsanitized for debugging)
	if logger != nil {
		if err != nil {
			logger.Errorw(message, "error", err.Error(), "status_code", statusCode)
		} else {
			logger.Errorw(message, "status_code", statusCode)
		}
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Problem{
		Title:   http.StatusText(statusCode),
		Status:  statusCode,
		Message: sanitizeErrorMessage(message),
	})
}

// writeServiceError maps a controller error to its HTTP status
func (a *API) writeServiceError(w http.ResponseWriter, r *http.Request, entity string, err error) {
	logger := LogWithRequestID(r.Context(), a.logger)

	var entityErr *core.EntityError
	switch {
	case errors.As(err, &entityErr):
		status := http.StatusBadRequest
		title := "Bad Request"
		if !entityErr.IsPrecondition() {
			status = http.StatusNotFound
			title = "Not Found"
		}
		logger.Debugw("Entity request rejected", "entity", entityErr.Entity, "error_key", entityErr.Key, "message", entityErr.Message)
		a.writeProblem(w, status, title, entityErr.Entity, entityErr.Key, entityErr.Field, entityErr.Message)
	case errors.Is(err, storage.ErrConstraintViolation):
		logger.Debugw("Constraint violation", "entity", entity, "error", err)
		a.writeProblem(w, http.StatusBadRequest, "Bad Request", entity, "constraintviolation", "",
			"The request violates a data integrity constraint")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error", err, logger)
	}
}

// parseIDParam reads the {id} path variable
func (a *API) parseIDParam(w http.ResponseWriter, r *http.Request, entity string) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		a.writeProblem(w, http.StatusBadRequest, "Bad Request", entity, core.ErrorKeyIDInvalid, "id",
			fmt.Sprintf("Invalid id: %q", raw))
		return 0, false
	}
	return id, true
}

// decodeJSONBodyWithLimit decodes JSON from request body with a size limit
func (a *API) decodeJSONBodyWithLimit(w http.ResponseWriter, r *http.Request, dst interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	err := decoder.Decode(dst)
	if err == nil && decoder.More() {
		err = errors.New("request body must contain a single JSON value")
	}
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &maxBytesError):
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large", err, a.logger)
		case errors.As(err, &syntaxError):
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON syntax at byte offset %d", syntaxError.Offset), err, a.logger)
		case errors.As(err, &unmarshalTypeError):
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid type for field '%s': expected %s", unmarshalTypeError.Field, unmarshalTypeError.Type), err, a.logger)
		case strings.HasPrefix(err.Error(), "json: unknown field"):
			writeError(w, http.StatusBadRequest, fmt.Sprintf("JSON contains %s", strings.TrimPrefix(err.Error(), "json: ")), err, a.logger)
		default:
			writeError(w, http.StatusBadRequest, "Invalid JSON body", err, a.logger)
		}
		return err
	}

	return nil
}

// decodeJSONBody decodes with the configured body limit
func (a *API) decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return a.decodeJSONBodyWithLimit(w, r, dst, int64(a.config.Security.JSONBodyLimit))
}

// requireContentType rejects bodies whose media type is not in allowed
func (a *API) requireContentType(w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil {
		for _, t := range allowed {
			if mediaType == t {
				return true
			}
		}
	}
	writeError(w, http.StatusUnsupportedMediaType,
		fmt.Sprintf("Content-Type must be one of: %s", strings.Join(allowed, ", ")), nil, a.logger)
	return false
}

// validateBody runs struct tag validation and reports the first violation
func (a *API) validateBody(w http.ResponseWriter, entity string, body interface{}) bool {
	err := a.validate.Struct(body)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		a.writeProblem(w, http.StatusBadRequest, "Bad Request", entity, "validation", fe.Field(),
			fmt.Sprintf("Field '%s' failed on the '%s' rule", fe.Field(), fe.Tag()))
		return false
	}

	writeError(w, http.StatusBadRequest, "Invalid request body", err, a.logger)
	return false
}

// respondJSON writes data as a JSON response with the given status
func (a *API) respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Errorw("Failed to encode JSON response",
			"error", err,
			"data_type", fmt.Sprintf("%T", data))
	}
}

// newValidator returns a validator that understands patch fields
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(patchFieldValue[string], core.Field[string]{})
	v.RegisterCustomTypeFunc(patchFieldValue[int64], core.Field[int64]{})
	v.RegisterCustomTypeFunc(patchFieldValue[bool], core.Field[bool]{})
	return v
}

// patchFieldValue exposes the carried value of a present, non-null field
func patchFieldValue[T any](field reflect.Value) interface{} {
	f, ok := field.Interface().(core.Field[T])
	if !ok {
		return nil
	}
	if v, ok := f.Value(); ok {
		return v
	}
	return nil
}
