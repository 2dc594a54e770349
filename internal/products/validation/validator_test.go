package validation

import (
	"errors"
	"testing"
	"time"

	"products-api/internal/products"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stampedAt = time.Date(2026, 2, 24, 12, 0, 0, 0, time.UTC)

func requireValidationError(t *testing.T, err error, wantMsg string, wantFields []string) {
	t.Helper()

	var domainErr *products.Error
	require.True(t, errors.As(err, &domainErr), "want domain error, got %v", err)
	assert.Equal(t, products.KindValidation, domainErr.Kind)
	assert.Equal(t, wantMsg, domainErr.Message)
	if wantFields != nil {
		assert.Equal(t, wantFields, domainErr.Detail)
	}
}

func TestValidator_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantMsg    string
		wantFields []string
	}{
		{
			name: "valid",
			body: `{"name":"Pen","description":"blue","price":1,"category":"Office","inStock":true}`,
		},
		{
			name: "empty description and zero price are allowed",
			body: `{"name":"Pen","description":"","price":0,"category":"Office","inStock":false}`,
		},
		{
			name:       "empty body",
			body:       ``,
			wantMsg:    MsgInvalidFields,
			wantFields: []string{"name", "description", "price", "category", "inStock"},
		},
		{
			name:       "only name",
			body:       `{"name":"Invalid"}`,
			wantMsg:    MsgInvalidFields,
			wantFields: []string{"description", "price", "category", "inStock"},
		},
		{
			name:       "empty name",
			body:       `{"name":"","description":"blue","price":1,"category":"Office","inStock":true}`,
			wantMsg:    MsgInvalidFields,
			wantFields: []string{"name"},
		},
		{
			name:       "inStock is not coerced from string",
			body:       `{"name":"Pen","description":"blue","price":1,"category":"Office","inStock":"true"}`,
			wantMsg:    MsgInvalidFields,
			wantFields: []string{"inStock"},
		},
		{
			name:       "inStock is not coerced from number",
			body:       `{"name":"Pen","description":"blue","price":1,"category":"Office","inStock":1}`,
			wantMsg:    MsgInvalidFields,
			wantFields: []string{"inStock"},
		},
		{
			name:       "wrong typed name",
			body:       `{"name":5,"description":"blue","price":1,"category":"Office","inStock":true}`,
			wantMsg:    MsgInvalidFields,
			wantFields: []string{"name"},
		},
		{
			name:       "null counts as missing",
			body:       `{"name":"Pen","description":null,"price":1,"category":"Office","inStock":true}`,
			wantMsg:    MsgInvalidFields,
			wantFields: []string{"description"},
		},
		{
			name:       "negative price",
			body:       `{"name":"Pen","description":"blue","price":-5,"category":"Office","inStock":true}`,
			wantMsg:    MsgInvalidPrice,
			wantFields: []string{"price"},
		},
		{
			name:       "non-numeric price",
			body:       `{"name":"Pen","description":"blue","price":"cheap","category":"Office","inStock":true}`,
			wantMsg:    MsgInvalidPrice,
			wantFields: []string{"price"},
		},
		{
			name:       "presence gate runs before price gate",
			body:       `{"name":"Pen","price":-5,"category":"Office","inStock":true}`,
			wantMsg:    MsgInvalidFields,
			wantFields: []string{"description"},
		},
		{
			name:    "not an object",
			body:    `[1,2,3]`,
			wantMsg: MsgInvalidJSON,
		},
		{
			name:    "malformed json",
			body:    `{"name":`,
			wantMsg: MsgInvalidJSON,
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := v.Create([]byte(tt.body), stampedAt)
			if tt.wantMsg != "" {
				requireValidationError(t, err, tt.wantMsg, tt.wantFields)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, in.Name)
			require.NotNil(t, in.Description)
			require.NotNil(t, in.Price)
			require.NotNil(t, in.Category)
			require.NotNil(t, in.InStock)
			assert.Equal(t, stampedAt, in.StampedAt)
		})
	}
}

func TestValidator_CreateDecodesValues(t *testing.T) {
	in, err := New().Create([]byte(`{"name":"Pen","description":"blue","price":1.25,"category":"Office","inStock":true,"id":"client-id"}`), stampedAt)
	require.NoError(t, err)

	p := in.Apply(products.Product{ID: "server-id"})
	assert.Equal(t, products.Product{
		ID:          "server-id",
		Name:        "Pen",
		Description: "blue",
		Price:       1.25,
		Category:    "Office",
		InStock:     true,
	}, p)
}

func TestValidator_Update(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantMsg    string
		wantFields []string
		check      func(t *testing.T, in products.Input)
	}{
		{
			name: "partial price and stock",
			body: `{"price":79.99,"inStock":false}`,
			check: func(t *testing.T, in products.Input) {
				assert.Nil(t, in.Name)
				assert.Nil(t, in.Category)
				require.NotNil(t, in.Price)
				assert.Equal(t, 79.99, *in.Price)
				require.NotNil(t, in.InStock)
				assert.False(t, *in.InStock)
			},
		},
		{
			name: "empty object is a no-op",
			body: `{}`,
			check: func(t *testing.T, in products.Input) {
				assert.Equal(t, products.Input{StampedAt: stampedAt}, in)
			},
		},
		{
			name:       "repeated field must still be valid",
			body:       `{"name":""}`,
			wantMsg:    MsgInvalidFields,
			wantFields: []string{"name"},
		},
		{
			name:       "wrong typed inStock",
			body:       `{"inStock":"no"}`,
			wantMsg:    MsgInvalidFields,
			wantFields: []string{"inStock"},
		},
		{
			name:       "negative price",
			body:       `{"price":-1}`,
			wantMsg:    MsgInvalidPrice,
			wantFields: []string{"price"},
		},
		{
			name:    "malformed json",
			body:    `nope`,
			wantMsg: MsgInvalidJSON,
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := v.Update([]byte(tt.body), stampedAt)
			if tt.wantMsg != "" {
				requireValidationError(t, err, tt.wantMsg, tt.wantFields)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, stampedAt, in.StampedAt)
			if tt.check != nil {
				tt.check(t, in)
			}
		})
	}
}
