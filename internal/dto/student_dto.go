package dto

// StudentSummary is the listing/search projection of a stored student.
type StudentSummary struct {
	RollNo     string `json:"roll_no"`
	Name       string `json:"name"`
	Course     string `json:"course"`
	Year       int    `json:"year"`
	YearString string `json:"year_string"`
}

// StudentDetail is the full profile of one student, including the loose
// metrics document the risk engine reads.
type StudentDetail struct {
	StudentSummary
	Metrics map[string]any `json:"metrics"`
}

// SeedResult reports the outcome of a student import.
type SeedResult struct {
	Imported int   `json:"imported"`
	Skipped  int   `json:"skipped"`
	Total    int64 `json:"total"`
}
