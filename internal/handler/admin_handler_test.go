package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/dropout-risk-api/internal/dto"
	"github.com/edupulse/dropout-risk-api/internal/handler"
)

type mockSeedService struct {
	result   dto.SeedResult
	err      error
	lastPath string
}

func (m *mockSeedService) ImportFile(_ context.Context, path string) (dto.SeedResult, error) {
	m.lastPath = path
	return m.result, m.err
}

func adminApp(predictions *mockPredictionService, seeder *mockSeedService) *fiber.App {
	app := fiber.New()
	handler.NewAdminHandler(predictions, seeder, "data/students.json", zerolog.New(io.Discard)).
		Register(app.Group("/api/v1/admin"))
	return app
}

func TestAdminHandler_ClearCache(t *testing.T) {
	app := adminApp(&mockPredictionService{cleared: 4}, &mockSeedService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/admin/cache/clear", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data struct {
			Removed int64 `json:"removed"`
		} `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, int64(4), response.Data.Removed)
}

func TestAdminHandler_Seed(t *testing.T) {
	seeder := &mockSeedService{result: dto.SeedResult{Imported: 10, Total: 10}}
	app := adminApp(&mockPredictionService{}, seeder)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/admin/seed", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "data/students.json", seeder.lastPath)

	var response struct {
		Data dto.SeedResult `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, 10, response.Data.Imported)
}

func TestAdminHandler_SeedFailure(t *testing.T) {
	seeder := &mockSeedService{err: errors.New("missing file")}
	app := adminApp(&mockPredictionService{}, seeder)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/admin/seed", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
