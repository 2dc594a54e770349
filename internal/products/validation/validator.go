// Package validation gates product write payloads before they reach the
// store.
//
// A payload passes two gates in order. The presence gate checks that the
// required fields are supplied with the right JSON types; the price gate then
// checks that price is a non-negative number. A payload that passes both is
// stamped with the request timestamp.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"products-api/internal/products"

	"github.com/go-playground/validator/v10"
)

const (
	MsgInvalidJSON   = "Invalid JSON payload"
	MsgInvalidFields = "Missing or invalid product fields"
	MsgInvalidPrice  = "Price must be a non-negative number"
)

const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldPrice       = "price"
	fieldCategory    = "category"
	fieldInStock     = "inStock"
)

var fieldOrder = []string{fieldName, fieldDescription, fieldPrice, fieldCategory, fieldInStock}

// fields holds the decoded payload. Price stays raw until the price gate.
type fields struct {
	Name        *string
	Description *string
	Price       json.RawMessage
	Category    *string
	InStock     *bool
}

type createFields struct {
	Name        *string         `json:"name" validate:"required,min=1"`
	Description *string         `json:"description" validate:"required"`
	Price       json.RawMessage `json:"price" validate:"required"`
	Category    *string         `json:"category" validate:"required,min=1"`
	InStock     *bool           `json:"inStock" validate:"required"`
}

type updateFields struct {
	Name        *string         `json:"name" validate:"omitnil,min=1"`
	Description *string         `json:"description"`
	Price       json.RawMessage `json:"price"`
	Category    *string         `json:"category" validate:"omitnil,min=1"`
	InStock     *bool           `json:"inStock"`
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Create validates a full product payload.
func (v *Validator) Create(body []byte, now time.Time) (products.Input, error) {
	f, invalid, err := decode(body)
	if err != nil {
		return products.Input{}, err
	}
	return v.check(createFields(f), f, invalid, now)
}

// Update validates a partial product payload. Only supplied fields are
// checked.
func (v *Validator) Update(body []byte, now time.Time) (products.Input, error) {
	f, invalid, err := decode(body)
	if err != nil {
		return products.Input{}, err
	}
	return v.check(updateFields(f), f, invalid, now)
}

func (v *Validator) check(rules any, f fields, invalid map[string]bool, now time.Time) (products.Input, error) {
	if err := v.validate.Struct(rules); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return products.Input{}, err
		}
		for _, fe := range fieldErrs {
			invalid[fe.Field()] = true
		}
	}
	if len(invalid) > 0 {
		return products.Input{}, products.Validation(MsgInvalidFields, ordered(invalid))
	}

	in := products.Input{
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		InStock:     f.InStock,
		StampedAt:   now,
	}

	if f.Price != nil {
		price, err := v.price(f.Price)
		if err != nil {
			return products.Input{}, err
		}
		in.Price = &price
	}

	return in, nil
}

func (v *Validator) price(raw json.RawMessage) (float64, error) {
	var price float64
	if err := json.Unmarshal(raw, &price); err != nil {
		return 0, products.Validation(MsgInvalidPrice, []string{fieldPrice})
	}
	if err := v.validate.Var(price, "gte=0"); err != nil {
		return 0, products.Validation(MsgInvalidPrice, []string{fieldPrice})
	}
	return price, nil
}

// decode splits body into typed fields. JSON null counts as absent; a value
// of the wrong JSON type is recorded in invalid.
func decode(body []byte) (fields, map[string]bool, error) {
	invalid := make(map[string]bool)

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return fields{}, invalid, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return fields{}, nil, products.Validation(MsgInvalidJSON, nil)
	}

	var f fields
	f.Name = decodeField[string](raw, fieldName, invalid)
	f.Description = decodeField[string](raw, fieldDescription, invalid)
	f.Category = decodeField[string](raw, fieldCategory, invalid)
	f.InStock = decodeField[bool](raw, fieldInStock, invalid)
	if value, ok := raw[fieldPrice]; ok && !isNull(value) {
		f.Price = value
	}

	return f, invalid, nil
}

func decodeField[T any](raw map[string]json.RawMessage, key string, invalid map[string]bool) *T {
	value, ok := raw[key]
	if !ok || isNull(value) {
		return nil
	}

	var out T
	if err := json.Unmarshal(value, &out); err != nil {
		invalid[key] = true
		return nil
	}
	return &out
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func ordered(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for _, name := range fieldOrder {
		if set[name] {
			out = append(out, name)
		}
	}
	return out
}
