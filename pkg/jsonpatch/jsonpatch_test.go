package jsonpatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brandDoc struct {
	Name *string `json:"name"`
}

type productDoc struct {
	CategoryID *int64   `json:"categoryId"`
	BrandID    *int64   `json:"brandId"`
	Price      *float64 `json:"price"`
}

func TestApplyReplace(t *testing.T) {
	name := "A"
	var out brandDoc

	err := Apply(brandDoc{Name: &name}, []byte(`[{"op":"replace","path":"/name","value":"New A"}]`), &out)
	require.NoError(t, err)
	require.NotNil(t, out.Name)
	assert.Equal(t, "New A", *out.Name)
}

func TestApplyKeepsUntouchedFields(t *testing.T) {
	brandID, categoryID, price := int64(2), int64(3), 1000.0
	var out productDoc

	err := Apply(productDoc{CategoryID: &categoryID, BrandID: &brandID, Price: &price},
		[]byte(`[{"op":"replace","path":"/price","value":1500}]`), &out)
	require.NoError(t, err)
	assert.Equal(t, int64(3), *out.CategoryID)
	assert.Equal(t, int64(2), *out.BrandID)
	assert.Equal(t, 1500.0, *out.Price)
}

func TestApplyTestOperation(t *testing.T) {
	name := "A"
	var out brandDoc

	err := Apply(brandDoc{Name: &name}, []byte(`[{"op":"test","path":"/name","value":"B"}]`), &out)
	assert.ErrorIs(t, err, ErrInvalidPatch)
}

func TestApplyRejectsInvalidDocuments(t *testing.T) {
	name := "A"
	cases := map[string]string{
		"not json":       `not json`,
		"not an array":   `{"op":"replace","path":"/name","value":"B"}`,
		"unknown op":     `[{"op":"rename","path":"/name","value":"B"}]`,
		"missing path":   `[{"op":"remove","path":"/missing"}]`,
		"unknown member": `[{"op":"add","path":"/color","value":"red"}]`,
	}
	for tc, patch := range cases {
		t.Run(tc, func(t *testing.T) {
			var out brandDoc
			err := Apply(brandDoc{Name: &name}, []byte(patch), &out)
			assert.ErrorIs(t, err, ErrInvalidPatch)
		})
	}
}
