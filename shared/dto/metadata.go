package dto

import (
	"time"

	"homecare/shared/constant"
	"homecare/shared/model"
	"homecare/shared/timezone"
)

// Metadata is the audit trail echoed on every resource, rendered in the app timezone.
type Metadata struct {
	CreatedAt  string `json:"created_at,omitempty"`
	CreatedBy  string `json:"created_by,omitempty"`
	ModifiedAt string `json:"modified_at,omitempty"`
	ModifiedBy string `json:"modified_by,omitempty"`
}

func (m *Metadata) FromModel(source model.Metadata) {
	*m = Metadata{
		CreatedAt:  stamp(source.CreatedAt),
		CreatedBy:  source.CreatedBy,
		ModifiedAt: stamp(source.ModifiedAt),
		ModifiedBy: source.ModifiedBy,
	}
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return timezone.Format(t, constant.DateFormat)
}
