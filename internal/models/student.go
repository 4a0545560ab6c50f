package models

// Student is the read-only subset of the user profile this service needs:
// a foreign-key target and the scope for aggregation.
type Student struct {
	ID        string  `db:"id" json:"id"`
	RollNo    string  `db:"roll_no" json:"roll_no"`
	FullName  string  `db:"full_name" json:"full_name"`
	SectionID string  `db:"section_id" json:"section_id"`
	GroupID   *string `db:"group_id" json:"group_id,omitempty"`
}
