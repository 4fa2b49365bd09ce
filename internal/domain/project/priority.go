package project

// Priority represents the urgency level of a Project. The zero value means
// no priority has been assigned.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid returns true if the priority is one of the defined constants.
// The empty value is not valid; optionality is handled by the validator.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (p Priority) String() string {
	return string(p)
}
