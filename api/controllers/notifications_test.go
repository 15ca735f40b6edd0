package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/raedalotaibi/mashary-backend/internal/notifications"
	"github.com/raedalotaibi/mashary-backend/pkg/types"
)

type testNotificationsService struct {
	listFn        func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error)
	markReadFn    func(ctx context.Context, userID, notificationID uuid.UUID) error
	markAllReadFn func(ctx context.Context, userID uuid.UUID) (int64, error)
	unreadCountFn func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (s *testNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return &notifications.ListResult{}, nil
}

func (s *testNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, userID, notificationID)
	}
	return nil
}

func (s *testNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if s.markAllReadFn != nil {
		return s.markAllReadFn(ctx, userID)
	}
	return 0, nil
}

func (s *testNotificationsService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if s.unreadCountFn != nil {
		return s.unreadCountFn(ctx, userID)
	}
	return 0, nil
}

func TestMarkNotificationReadSuccess(t *testing.T) {
	notificationID := uuid.New()
	called := false
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, userID, nid uuid.UUID) error {
			called = true
			if nid != notificationID {
				t.Fatalf("notification id = %s", nid)
			}
			return nil
		},
	}

	req := authedRequest(t, http.MethodPost, "/api/v1/notifications/"+notificationID.String()+"/read", "")
	req = withRouteParam(req, "id", notificationID.String())
	rec := httptest.NewRecorder()
	MarkNotificationRead(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !called {
		t.Fatal("service not called")
	}
	var envelope struct {
		Success bool            `json:"success"`
		Body    map[string]bool `json:"body"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !envelope.Body["read"] {
		t.Fatal("response missing read flag")
	}
}

func TestListNotificationsRejectsBadLimit(t *testing.T) {
	req := authedRequest(t, http.MethodGet, "/api/v1/notifications?limit=zero", "")
	rec := httptest.NewRecorder()
	ListNotifications(&testNotificationsService{}, testControllerLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMarkAllNotificationsReadReportsCount(t *testing.T) {
	svc := &testNotificationsService{
		markAllReadFn: func(ctx context.Context, userID uuid.UUID) (int64, error) {
			return 7, nil
		},
	}

	req := authedRequest(t, http.MethodPost, "/api/v1/notifications/read-all", "")
	rec := httptest.NewRecorder()
	MarkAllNotificationsRead(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var envelope types.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	body, ok := envelope.Body.(map[string]any)
	if !ok || body["updated"] != float64(7) {
		t.Fatalf("unexpected body: %+v", envelope.Body)
	}
}
