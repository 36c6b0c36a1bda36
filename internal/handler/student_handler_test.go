package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/dropout-risk-api/internal/dto"
	"github.com/edupulse/dropout-risk-api/internal/handler"
	"github.com/edupulse/dropout-risk-api/internal/repository"
)

type mockStudentService struct {
	students  []dto.StudentSummary
	detail    dto.StudentDetail
	err       error
	lastQuery string
}

func (m *mockStudentService) List(context.Context) ([]dto.StudentSummary, error) {
	return m.students, m.err
}

func (m *mockStudentService) Search(_ context.Context, query string) ([]dto.StudentSummary, error) {
	m.lastQuery = query
	return m.students, m.err
}

func (m *mockStudentService) Get(_ context.Context, rollNo string) (dto.StudentDetail, error) {
	if m.err != nil {
		return dto.StudentDetail{}, m.err
	}
	detail := m.detail
	detail.RollNo = rollNo
	return detail, nil
}

func studentApp(svc *mockStudentService) *fiber.App {
	app := fiber.New()
	handler.NewStudentHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/students"))
	return app
}

func TestStudentHandler_List(t *testing.T) {
	svc := &mockStudentService{students: []dto.StudentSummary{{RollNo: "2023CS001", Name: "Rahul Sharma"}}}
	app := studentApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data []dto.StudentSummary `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Len(t, response.Data, 1)
	require.Empty(t, svc.lastQuery)
}

func TestStudentHandler_SearchQueryForwarded(t *testing.T) {
	svc := &mockStudentService{}
	app := studentApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students?search=rahul", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "rahul", svc.lastQuery)
}

func TestStudentHandler_Get(t *testing.T) {
	svc := &mockStudentService{detail: dto.StudentDetail{
		StudentSummary: dto.StudentSummary{Name: "Rahul Sharma"},
		Metrics:        map[string]any{"attendance_percentage": 42.3},
	}}
	app := studentApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students/2023CS001", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.StudentDetail `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "2023CS001", response.Data.RollNo)
	require.Equal(t, 42.3, response.Data.Metrics["attendance_percentage"])
}

func TestStudentHandler_GetNotFound(t *testing.T) {
	svc := &mockStudentService{err: repository.ErrStudentNotFound}
	app := studentApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students/NOPE", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
