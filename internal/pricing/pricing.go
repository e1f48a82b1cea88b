// Package pricing resolves the price of a booking from the pricing block of a
// service layout.
package pricing

import (
	"encoding/json"
	"fmt"
	"strings"

	"homecare/internal/schema"

	"github.com/shopspring/decimal"
)

// SelectionKey is the booking_data key that carries the chosen package id.
const SelectionKey = "subservice_id"

type Package struct {
	ID    string          `json:"id"`
	Title string          `json:"subservice_title"`
	Price decimal.Decimal `json:"price"`
}

// Packages lists the packages of the first pricing block. A layout without one has none.
func Packages(layout schema.Layout) ([]Package, error) {
	block, ok := layout.Find(schema.BlockPricing)
	if !ok {
		return nil, nil
	}

	var data struct {
		Subservices []struct {
			ID    json.RawMessage `json:"id"`
			Title string          `json:"subservice_title"`
			Price decimal.Decimal `json:"price"`
		} `json:"subservices"`
	}

	if err := block.Decode(&data); err != nil {
		return nil, fmt.Errorf("invalid pricing block: %w", err)
	}

	packages := make([]Package, 0, len(data.Subservices))
	for _, sub := range data.Subservices {
		packages = append(packages, Package{ID: rawID(sub.ID), Title: sub.Title, Price: sub.Price})
	}

	return packages, nil
}

// rawID accepts numeric ids written by the page builder as well as strings.
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	return strings.TrimSpace(string(raw))
}

// Selection returns the package id chosen in booking data, if any.
func Selection(data map[string]any) (string, bool) {
	value, ok := data[SelectionKey]
	if !ok || value == nil {
		return "", false
	}

	id := strings.TrimSpace(fmt.Sprint(value))

	return id, id != ""
}

// Lookup finds the selected package of a layout.
func Lookup(layout schema.Layout, data map[string]any) (Package, bool) {
	id, ok := Selection(data)
	if !ok {
		return Package{}, false
	}

	packages, err := Packages(layout)
	if err != nil {
		return Package{}, false
	}

	for _, pkg := range packages {
		if pkg.ID == id {
			return pkg, true
		}
	}

	return Package{}, false
}

// Resolve prices a booking. The selected package price wins; anything else, an
// unknown package id included, falls back to base.
func Resolve(base decimal.Decimal, layout schema.Layout, data map[string]any) decimal.Decimal {
	if pkg, ok := Lookup(layout, data); ok {
		return pkg.Price
	}

	return base
}
