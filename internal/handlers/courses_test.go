package handlers_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/training-tracker/internal/handlers"
	"github.com/BradenHooton/training-tracker/internal/models"
	"github.com/BradenHooton/training-tracker/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCourse(id int64) *models.Course {
	return &models.Course{
		ID:        id,
		Title:     "Intro to Go",
		Date:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Icon:      "code",
		TrainerID: "trainer-1",
		Trainer:   &models.UserSummary{ID: "trainer-1", Username: "coach"},
	}
}

func TestGetCourses_List(t *testing.T) {
	var gotFilter models.CourseFilter
	mockCourses := &handlers.MockCourseService{
		ListCoursesFunc: func(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error) {
			gotFilter = filter
			return []*models.Course{sampleCourse(1), sampleCourse(2)}, nil
		},
	}

	w := httptest.NewRecorder()
	handlers.NewCourseHandler(mockCourses, discardLogger()).GetCourses(w, httptest.NewRequest("GET", "/api/courses?trainerId=trainer-1", nil))

	var resp []models.Course
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Len(t, resp, 2)
	assert.Equal(t, "trainer-1", gotFilter.TrainerID)
	assert.Contains(t, w.Body.String(), `"trainerId":"trainer-1"`)
}

func TestGetCourses_EmptyListIsArray(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.NewCourseHandler(&handlers.MockCourseService{}, discardLogger()).GetCourses(w, httptest.NewRequest("GET", "/api/courses", nil))

	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetCourses_ByID(t *testing.T) {
	mockCourses := &handlers.MockCourseService{
		GetCourseFunc: func(ctx context.Context, id int64) (*models.Course, error) {
			if id == 7 {
				return sampleCourse(7), nil
			}
			return nil, models.ErrNotFound
		},
	}
	h := handlers.NewCourseHandler(mockCourses, discardLogger())

	w := httptest.NewRecorder()
	h.GetCourses(w, httptest.NewRequest("GET", "/api/courses?id=7", nil))
	var resp models.Course
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, int64(7), resp.ID)

	w = httptest.NewRecorder()
	h.GetCourses(w, httptest.NewRequest("GET", "/api/courses?id=8", nil))
	handlers.AssertErrorResponse(t, w, 404, "not_found", "Course not found")

	w = httptest.NewRecorder()
	h.GetCourses(w, httptest.NewRequest("GET", "/api/courses?id=abc", nil))
	handlers.AssertErrorResponse(t, w, 400, "bad_request", "Invalid course ID")
}

func TestCreateCourse_Success(t *testing.T) {
	var got services.CreateCourseInput
	var actor *models.SessionClaims
	mockCourses := &handlers.MockCourseService{
		CreateCourseFunc: func(ctx context.Context, a *models.SessionClaims, in services.CreateCourseInput) (*models.Course, error) {
			got, actor = in, a
			return sampleCourse(3), nil
		},
	}

	req := handlers.NewTestRequest(t, "POST", "/api/courses", map[string]string{
		"title":       " Intro to Go ",
		"description": "Basics",
		"date":        "2026-03-01T09:00",
		"icon":        "code",
	})
	req = handlers.WithSessionContext(req, "trainer-1", models.RoleTrainer)
	w := httptest.NewRecorder()
	handlers.NewCourseHandler(mockCourses, discardLogger()).CreateCourse(w, req)

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, "Intro to Go", got.Title)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), got.Date)
	require.NotNil(t, actor)
	assert.Equal(t, "trainer-1", actor.UserID)
}

func TestCreateCourse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]string
		wantMsg string
	}{
		{name: "missing title", body: map[string]string{"description": "d", "date": "2026-03-01", "icon": "i"}, wantMsg: "title is required"},
		{name: "missing date", body: map[string]string{"title": "t", "description": "d", "icon": "i"}, wantMsg: "date is required"},
		{name: "bad date", body: map[string]string{"title": "t", "description": "d", "date": "next tuesday", "icon": "i"}, wantMsg: "date must be a valid date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := handlers.WithSessionContext(handlers.NewTestRequest(t, "POST", "/api/courses", tt.body), "trainer-1", models.RoleTrainer)
			w := httptest.NewRecorder()
			handlers.NewCourseHandler(&handlers.MockCourseService{}, discardLogger()).CreateCourse(w, req)

			handlers.AssertErrorResponse(t, w, 400, "bad_request", tt.wantMsg)
		})
	}
}

func TestCreateCourse_ForOtherTrainerForbidden(t *testing.T) {
	mockCourses := &handlers.MockCourseService{
		CreateCourseFunc: func(ctx context.Context, a *models.SessionClaims, in services.CreateCourseInput) (*models.Course, error) {
			return nil, models.ErrForbidden
		},
	}

	req := handlers.NewTestRequest(t, "POST", "/api/courses", map[string]string{
		"title": "t", "description": "d", "date": "2026-03-01", "icon": "i", "trainerId": "someone-else",
	})
	req = handlers.WithSessionContext(req, "trainer-1", models.RoleTrainer)
	w := httptest.NewRecorder()
	handlers.NewCourseHandler(mockCourses, discardLogger()).CreateCourse(w, req)

	handlers.AssertErrorResponse(t, w, 403, "forbidden", "")
}
