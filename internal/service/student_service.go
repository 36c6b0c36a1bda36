package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/edupulse/dropout-risk-api/internal/dto"
	"github.com/edupulse/dropout-risk-api/internal/models"
	"github.com/edupulse/dropout-risk-api/internal/repository"
)

// StudentService exposes read access to the stored student roster.
type StudentService interface {
	List(ctx context.Context) ([]dto.StudentSummary, error)
	Search(ctx context.Context, query string) ([]dto.StudentSummary, error)
	Get(ctx context.Context, rollNo string) (dto.StudentDetail, error)
}

type studentService struct {
	students repository.StudentRepository
	logger   zerolog.Logger
}

// NewStudentService constructs the roster service.
func NewStudentService(students repository.StudentRepository, logger zerolog.Logger) StudentService {
	return &studentService{
		students: students,
		logger:   logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context) ([]dto.StudentSummary, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(students), nil
}

func (s *studentService) Search(ctx context.Context, query string) ([]dto.StudentSummary, error) {
	if query == "" {
		return s.List(ctx)
	}
	students, err := s.students.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return summarize(students), nil
}

func (s *studentService) Get(ctx context.Context, rollNo string) (dto.StudentDetail, error) {
	student, err := s.students.GetByRollNo(ctx, rollNo)
	if err != nil {
		return dto.StudentDetail{}, err
	}

	metrics := make(map[string]any, len(student.Metrics))
	for k, v := range student.Metrics {
		metrics[k] = v
	}
	return dto.StudentDetail{
		StudentSummary: summaryOf(student),
		Metrics:        metrics,
	}, nil
}

func summarize(students []models.Student) []dto.StudentSummary {
	summaries := make([]dto.StudentSummary, 0, len(students))
	for _, st := range students {
		summaries = append(summaries, summaryOf(st))
	}
	return summaries
}

func summaryOf(st models.Student) dto.StudentSummary {
	return dto.StudentSummary{
		RollNo:     st.RollNo,
		Name:       st.Name,
		Course:     st.Course,
		Year:       st.Year,
		YearString: st.YearString,
	}
}
