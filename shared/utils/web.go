package utils

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/itchan-dev/anonboard/shared/domain"
	"github.com/itchan-dev/anonboard/shared/errors"
	"github.com/itchan-dev/anonboard/shared/logger"
)

// maxBodySize bounds request bodies; posts are far smaller.
const maxBodySize = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	if e, ok := err.(*errors.ErrorWithStatusCode); ok {
		http.Error(w, e.Message, e.StatusCode)
		return
	}
	// default error is 500
	logger.Log.Error("request failed", "error", err)
	http.Error(w, "Server error", http.StatusInternalServerError)
}

// WriteAck writes one of the literal acknowledgment bodies with status 200.
func WriteAck(w http.ResponseWriter, ack domain.Ack) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, string(ack))
}

// Decode fills body (a pointer to a struct of string fields) from the request.
// JSON and urlencoded bodies are accepted for every method, DELETE included.
// Fields left empty by the body are taken from the query string.
// An empty body is not an error.
func Decode(r *http.Request, body any) error {
	raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err != nil {
		return errors.Validation("Body is too large")
	}

	if len(strings.TrimSpace(string(raw))) > 0 {
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		switch mediaType {
		case "application/x-www-form-urlencoded":
			values, err := url.ParseQuery(string(raw))
			if err != nil {
				return errors.Validation("Body is invalid form")
			}
			fillFromValues(body, values)
		default:
			if err := json.Unmarshal(raw, body); err != nil {
				logger.Log.Debug("invalid json body", "error", err)
				return errors.Validation("Body is invalid json")
			}
		}
	}

	fillFromValues(body, r.URL.Query())
	return nil
}

// DecodeValidate is Decode followed by struct tag validation.
func DecodeValidate(r *http.Request, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("validation failed", "error", err)
		return errors.ErrMissingFields
	}
	return nil
}

// fillFromValues sets empty string fields of the struct pointed to by dst,
// matching keys against the field's json tag name.
func fillFromValues(dst any, values url.Values) {
	if len(values) == 0 {
		return
	}
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() != reflect.String || !f.CanSet() || f.String() != "" {
			continue
		}
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		if val := values.Get(name); val != "" {
			f.SetString(val)
		}
	}
}
