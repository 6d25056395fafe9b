package enums

import "fmt"

// RecordStatus is the active/inactive flag exposed on catalog list filters.
type RecordStatus string

const (
	RecordStatusActive   RecordStatus = "active"
	RecordStatusInactive RecordStatus = "inactive"
)

// IsActive maps the filter value onto the is_active column.
func (r RecordStatus) IsActive() bool {
	return r == RecordStatusActive
}

// ParseRecordStatus converts raw input into a RecordStatus.
func ParseRecordStatus(value string) (RecordStatus, error) {
	switch RecordStatus(value) {
	case RecordStatusActive, RecordStatusInactive:
		return RecordStatus(value), nil
	}
	return "", fmt.Errorf("invalid status %q", value)
}
