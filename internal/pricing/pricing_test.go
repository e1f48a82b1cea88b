package pricing_test

import (
	"testing"

	"homecare/internal/pricing"
	"homecare/internal/schema"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layout(t *testing.T, raw string) schema.Layout {
	t.Helper()

	parsed, err := schema.ParseLayout([]byte(raw))
	require.NoError(t, err)

	return parsed
}

func TestResolve(t *testing.T) {
	base := decimal.NewFromInt(400000)
	withPackages := layout(t, `[
		{"type":"intro","data":{}},
		{"type":"pricing","data":{"service_title":"Cleaning","subservices":[
			{"id":"2br","subservice_title":"Two bedrooms","price":550000},
			{"id":3,"subservice_title":"Three bedrooms","price":"700000.50"}
		]}}
	]`)

	tests := []struct {
		name   string
		layout schema.Layout
		data   map[string]any
		want   string
	}{
		{name: "matching package", layout: withPackages, data: map[string]any{"subservice_id": "2br"}, want: "550000"},
		{name: "unknown package falls back", layout: withPackages, data: map[string]any{"subservice_id": "unknown"}, want: "400000"},
		{name: "numeric id", layout: withPackages, data: map[string]any{"subservice_id": float64(3)}, want: "700000.5"},
		{name: "no selection", layout: withPackages, data: map[string]any{}, want: "400000"},
		{name: "no pricing block", layout: layout(t, `[]`), data: map[string]any{"subservice_id": "2br"}, want: "400000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricing.Resolve(base, tt.layout, tt.data)

			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestPackages(t *testing.T) {
	packages, err := pricing.Packages(layout(t, `[{"type":"pricing","data":{"subservices":[{"id":"1br","subservice_title":"One","price":300000}]}}]`))
	require.NoError(t, err)
	require.Len(t, packages, 1)
	assert.Equal(t, "1br", packages[0].ID)
	assert.True(t, decimal.NewFromInt(300000).Equal(packages[0].Price))

	_, err = pricing.Packages(layout(t, `[{"type":"pricing","data":{"subservices":"none"}}]`))
	assert.Error(t, err)
}
