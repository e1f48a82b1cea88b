package repository

import (
	"testing"

	"homecare/internal/domains/booking/model/dto"
	"homecare/internal/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchConditions(t *testing.T) {
	tests := []struct {
		name     string
		filter   dto.AdminFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "plain search",
			filter:   dto.AdminFilter{Search: "Le Loi"},
			wantSQL:  "((location ILIKE ? OR note ILIKE ?))",
			wantArgs: []any{"%Le Loi%", "%Le Loi%"},
		},
		{
			name:     "wildcards in search text match literally",
			filter:   dto.AdminFilter{Search: `50%_off\`},
			wantSQL:  "((location ILIKE ? OR note ILIKE ?))",
			wantArgs: []any{`%50\%\_off\\%`, `%50\%\_off\\%`},
		},
		{
			name:     "status only",
			filter:   dto.AdminFilter{Status: lifecycle.StatusPending},
			wantSQL:  "(status = ?)",
			wantArgs: []any{"PENDING"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conditions, err := searchConditions(tt.filter)
			require.NoError(t, err)

			sql, args, err := conditions.ToSql()
			require.NoError(t, err)

			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestSearchConditions_InvalidDay(t *testing.T) {
	_, err := searchConditions(dto.AdminFilter{Day: "03/03/2026"})

	assert.Error(t, err)
}
