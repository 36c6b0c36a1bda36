package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/edupulse/dropout-risk-api/internal/dto"
	"github.com/edupulse/dropout-risk-api/internal/models"
	"github.com/edupulse/dropout-risk-api/internal/repository"
)

// SeedService imports student records from the institution's JSON export:
// a document of roll number to loosely structured student fields.
type SeedService interface {
	ImportFile(ctx context.Context, path string) (dto.SeedResult, error)
}

type seedService struct {
	students repository.StudentRepository
	logger   zerolog.Logger
}

// NewSeedService constructs the importer.
func NewSeedService(students repository.StudentRepository, logger zerolog.Logger) SeedService {
	return &seedService{
		students: students,
		logger:   logger.With().Str("component", "seed_service").Logger(),
	}
}

type seedFile struct {
	Students map[string]map[string]any `json:"students"`
	Metadata map[string]any            `json:"metadata"`
}

func (s *seedService) ImportFile(ctx context.Context, path string) (dto.SeedResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return dto.SeedResult{}, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file seedFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return dto.SeedResult{}, fmt.Errorf("seed file is not valid JSON: %w", err)
	}

	result := dto.SeedResult{}
	for rollNo, fields := range file.Students {
		student, ok := studentFromFields(rollNo, fields)
		if !ok {
			s.logger.Warn().Str("roll_no", rollNo).Msg("skipping student without a name")
			result.Skipped++
			continue
		}

		if err := s.students.Upsert(ctx, student); err != nil {
			return result, fmt.Errorf("failed to import student %s: %w", rollNo, err)
		}
		result.Imported++
	}

	result.Total, err = s.students.Count(ctx)
	if err != nil {
		return result, err
	}

	s.logger.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).Msg("student seed complete")
	return result, nil
}

// studentFromFields lifts identity fields into typed columns and keeps the
// rest as the metrics document the risk engine reads.
func studentFromFields(rollNo string, fields map[string]any) (models.Student, bool) {
	name, _ := fields["name"].(string)
	if name == "" {
		return models.Student{}, false
	}

	student := models.Student{
		RollNo:  rollNo,
		Name:    name,
		Metrics: datatypes.JSONMap{},
	}
	if course, ok := fields["course"].(string); ok {
		student.Course = course
	}
	if year, ok := fields["year"].(float64); ok {
		student.Year = int(year)
	}
	if yearString, ok := fields["year_string"].(string); ok {
		student.YearString = yearString
	}

	for key, value := range fields {
		switch key {
		case "name", "course", "year", "year_string", "roll_no", "student_id":
			continue
		default:
			student.Metrics[key] = value
		}
	}

	return student, true
}
