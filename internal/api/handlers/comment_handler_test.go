package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/EshwarReddy13/tassot-backend/internal/api/middleware"
	"github.com/EshwarReddy13/tassot-backend/internal/repository"
	"github.com/EshwarReddy13/tassot-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type stubCommentService struct {
	service.CommentService

	comments   []*repository.Comment
	created    *repository.Comment
	listErr    error
	createErr  error
	gotTaskID  string
	gotContent string
}

func (s *stubCommentService) ListByTask(ctx context.Context, taskID, userID string) ([]*repository.Comment, error) {
	s.gotTaskID = taskID
	return s.comments, s.listErr
}

func (s *stubCommentService) Create(ctx context.Context, taskID, userID, content string) (*repository.Comment, error) {
	s.gotTaskID = taskID
	s.gotContent = content
	return s.created, s.createErr
}

func newCommentRouter(svc service.CommentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &CommentHandler{commentService: svc}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "user-1")
	})
	r.GET("/api/tasks/:taskId/comments", h.ListByTask)
	r.POST("/api/tasks/:taskId/comments", h.Create)
	return r
}

func TestCommentEndpoints(t *testing.T) {
	t.Run("create returns 201 with the hydrated comment", func(t *testing.T) {
		now := time.Now()
		svc := &stubCommentService{created: &repository.Comment{
			ID:        "comment-1",
			TaskID:    "task-1",
			UserID:    "user-1",
			Content:   "looks good",
			CreatedAt: now,
			UpdatedAt: now,
			Author:    &repository.User{FirstName: "Dana", LastName: "Reyes"},
		}}
		r := newCommentRouter(svc)

		payload, _ := json.Marshal(map[string]string{"content": "looks good"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/tasks/task-1/comments", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		require.Equal(t, "task-1", svc.gotTaskID)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, "comment-1", body["id"])
		require.Equal(t, "Dana Reyes", body["author_name"])
	})

	t.Run("create maps forbidden to 403", func(t *testing.T) {
		svc := &stubCommentService{
			createErr: &service.Error{Kind: service.ErrForbidden, Message: "you do not have access to this task"},
		}
		r := newCommentRouter(svc)

		payload, _ := json.Marshal(map[string]string{"content": "hi"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/tasks/task-1/comments", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("create maps blank content to 400", func(t *testing.T) {
		svc := &stubCommentService{
			createErr: &service.Error{Kind: service.ErrInvalidInput, Message: "comment content is required"},
		}
		r := newCommentRouter(svc)

		payload, _ := json.Marshal(map[string]string{"content": "   "})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/tasks/task-1/comments", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, "comment content is required", body["error"])
	})

	t.Run("list returns comments with author names", func(t *testing.T) {
		svc := &stubCommentService{comments: []*repository.Comment{
			{ID: "c1", TaskID: "task-1", Content: "first", Author: &repository.User{FirstName: "Priya", LastName: "Sharma"}},
			{ID: "c2", TaskID: "task-1", Content: "second"},
		}}
		r := newCommentRouter(svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/task-1/comments", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body, 2)
		require.Equal(t, "Priya Sharma", body[0]["author_name"])
	})
}
