package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/eleven-am/eventhub/internal/orm"
)

const (
	paramPage     = "page"
	paramPageSize = "page_size"
	paramOrdering = "ordering"
	paramEager    = "eager"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ListRequest is a parsed list query string
type ListRequest struct {
	Options orm.QueryOptions
	Eager   bool
}

// ParseListRequest reads page, page_size, ordering and eager. Every other
// parameter becomes a filter passed through unchanged; repeated values are
// kept as a list for the in operator.
func ParseListRequest(values url.Values, maxPageSize int) (ListRequest, error) {
	var req ListRequest
	filters := make(map[string]interface{})

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		raw := vals[0]

		switch key {
		case paramPage:
			page, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return req, orm.ValidationError(paramPage, "must be an integer, got %q", raw)
			}
			if page < 1 {
				return req, orm.ValidationError(paramPage, "must be at least 1, got %d", page)
			}
			req.Options.Page = page
		case paramPageSize:
			size, err := orm.ParsePageSize(raw)
			if err != nil {
				return req, err
			}
			if maxPageSize > 0 && !size.IsAll() && size.Size() > uint64(maxPageSize) {
				return req, orm.ValidationError(paramPageSize, "must be at most %d, got %d", maxPageSize, size.Size())
			}
			req.Options.PageSize = size
		case paramOrdering:
			req.Options.Ordering = raw
		case paramEager:
			eager, err := strconv.ParseBool(raw)
			if err != nil {
				return req, orm.ValidationError(paramEager, "must be a boolean, got %q", raw)
			}
			req.Eager = eager
		default:
			if len(vals) > 1 && strings.HasSuffix(key, orm.OperatorSeparator+string(orm.OperatorIn)) {
				filters[key] = vals
				continue
			}
			filters[key] = raw
		}
	}

	if len(filters) > 0 {
		req.Options.Filters = filters
	}
	return req, nil
}

// decodeJSON decodes a single JSON value into dst and validates it
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return orm.ValidationError("body", "invalid JSON: %v", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return orm.ValidationError("body", "invalid JSON: multiple values")
	}

	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return orm.ValidationError("body", "%v", err)
	}

	fe := verrs[0]
	return orm.ValidationError(jsonName(fe), "%s", describe(fe))
}

func jsonName(fe validator.FieldError) string {
	return toSnake(fe.Field())
}

func describe(fe validator.FieldError) string {
	field := jsonName(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, orm.ValidationError(name, "invalid id %q", raw)
	}
	return id, nil
}
