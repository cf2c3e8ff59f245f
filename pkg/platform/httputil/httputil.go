// Package httputil holds the JSON envelope helpers shared by every handler.
//
// Success bodies:  {"success": true, "message"?: "...", "data": {...}}
// Failure bodies:  {"success": false, "message": "...", "error": "<code>", "errors"?: {field: [msgs]}}
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "formation/pkg/domain-errors"
)

// MaxBodyBytes caps request bodies; a full application is a few KB.
const MaxBodyBytes = 1 << 20

// SuccessResponse is the envelope for every 2xx body.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// ErrorResponse is the envelope for every non-2xx body.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  dErrors.FieldErrors `json:"errors,omitempty"`
	Detail  string              `json:"detail,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess wraps data (which may be nil) in the success envelope.
func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, SuccessResponse{Success: true, Message: message, Data: data})
}

// WriteError renders err without exposing internal causes.
func WriteError(w http.ResponseWriter, err error) {
	writeError(w, err, false)
}

// WriteErrorDebug renders err and, when debug is set, includes the wrapped
// cause of internal errors as "detail".
func WriteErrorDebug(w http.ResponseWriter, err error, debug bool) {
	writeError(w, err, debug)
}

func writeError(w http.ResponseWriter, err error, debug bool) {
	de, ok := dErrors.As(err)
	if !ok {
		de = &dErrors.Error{Code: dErrors.CodeInternal, Message: "Internal server error", Err: err}
	}

	resp := ErrorResponse{
		Success: false,
		Message: de.Message,
		Error:   string(de.Code),
		Errors:  de.Fields,
	}
	if de.Code == dErrors.CodeInternal && debug && de.Err != nil {
		resp.Detail = de.Err.Error()
	}
	WriteJSON(w, dErrors.ToHTTPStatus(de.Code), resp)
}

// Validatable is implemented by request bodies that check their own shape.
type Validatable interface {
	Validate() error
}

// Normalizable is implemented by request bodies that trim or canonicalize input
// before validation.
type Normalizable interface {
	Normalize()
}

// DecodeAndPrepare decodes a JSON body into T, then runs Normalize and
// Validate when T implements them. On failure it writes the error response and
// returns ok=false; the caller just returns.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	if err := DecodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, err)
		return nil, false
	}

	if n, ok := any(&req).(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := any(&req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			logger.InfoContext(ctx, "request failed validation",
				"request_id", requestID,
				"error", err,
			)
			WriteError(w, err)
			return nil, false
		}
	}
	return &req, true
}

// DecodeJSON decodes a bounded JSON body into dst. Syntax errors become
// CodeBadRequest; a value of the wrong JSON type becomes a CodeValidation
// error keyed by the offending field path.
func DecodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.UseNumber()

	err := dec.Decode(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return dErrors.New(dErrors.CodeBadRequest, "Request body is required")
	case errors.As(err, &maxErr):
		return dErrors.New(dErrors.CodeBadRequest, "Request body too large")
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		fields := dErrors.NewFieldErrors()
		fields.Add(field, "The "+field+" field must be of type "+jsonTypeName(typeErr.Type.Kind().String())+".")
		return dErrors.Validation("Validation failed", fields)
	default:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "Request body must be valid JSON")
	}
}

func jsonTypeName(kind string) string {
	switch kind {
	case "string":
		return "string"
	case "bool":
		return "boolean"
	case "slice", "array":
		return "array"
	case "struct", "map":
		return "object"
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return "integer"
	default:
		return "number"
	}
}
