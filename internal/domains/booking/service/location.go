package service

import (
	"fmt"
	"strings"
)

const noLocation = "Address not provided"

// locationSummary prefers a from/to pair, as filled in by moving forms, over a single address.
func locationSummary(data map[string]any) string {
	from, to := text(data, "from_address"), text(data, "to_address")
	if from != "" && to != "" {
		return fmt.Sprintf("%s ➝ %s", from, to)
	}

	for _, key := range []string{"address", "location", "from_address"} {
		if value := text(data, key); value != "" {
			return value
		}
	}

	return noLocation
}

func text(data map[string]any, key string) string {
	value, ok := data[key].(string)
	if !ok {
		return ""
	}

	return strings.TrimSpace(value)
}
