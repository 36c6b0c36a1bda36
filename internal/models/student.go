package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/edupulse/dropout-risk-api/internal/record"
)

// Student is a stored learner profile. Identity fields are typed columns;
// everything the risk engine consumes beyond identity lives in the loosely
// structured Metrics document, mirroring the per-student JSON records the
// institution exports.
type Student struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	RollNo     string            `gorm:"size:64;uniqueIndex;not null" json:"roll_no"`
	Name       string            `gorm:"size:255;not null" json:"name"`
	Course     string            `gorm:"size:255" json:"course"`
	Year       int               `json:"year"`
	YearString string            `gorm:"size:32" json:"year_string"`
	Metrics    datatypes.JSONMap `json:"metrics"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ToRecord flattens the student into the raw record shape the risk engine
// consumes: metrics first, identity fields layered on top.
func (s Student) ToRecord() record.Record {
	rec := record.FromMap(s.Metrics)

	rec["student_id"] = record.Str(s.RollNo)
	rec["roll_no"] = record.Str(s.RollNo)
	rec["name"] = record.Str(s.Name)
	if s.Course != "" {
		rec["course"] = record.Str(s.Course)
	}
	if s.Year != 0 {
		rec["year"] = record.Num(float64(s.Year))
	}
	if s.YearString != "" {
		rec["year_string"] = record.Str(s.YearString)
	}

	return rec
}
