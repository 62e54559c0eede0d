package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLister struct {
	ids []string
	err error
}

func (f *fakeLister) Identifiers(_ context.Context) ([]string, error) {
	return f.ids, f.err
}

func TestCheckAll_Healthy(t *testing.T) {
	checker := New(&fakeLister{ids: []string{"db-1", "db-2"}}, "us-east-1", zap.NewNop())

	status, checks := checker.CheckAll(context.Background())

	assert.Equal(t, StatusHealthy, status)
	require.Len(t, checks, 2)
	assert.Equal(t, "configuration", checks[0].Name)
	assert.Equal(t, StatusHealthy, checks[0].Status)
	assert.Equal(t, "aws_connectivity", checks[1].Name)
	assert.Contains(t, checks[1].Message, "2 instances visible")
}

func TestCheckAll_MissingRegion(t *testing.T) {
	checker := New(&fakeLister{ids: []string{"db-1"}}, "", zap.NewNop())

	status, checks := checker.CheckAll(context.Background())

	assert.Equal(t, StatusUnhealthy, status)
	assert.Equal(t, StatusUnhealthy, checks[0].Status)
}

func TestCheckAll_UnreachableAPI(t *testing.T) {
	checker := New(&fakeLister{err: errors.New("connection refused")}, "us-east-1", zap.NewNop())

	status, checks := checker.CheckAll(context.Background())

	assert.Equal(t, StatusUnhealthy, status)
	assert.Equal(t, StatusUnhealthy, checks[1].Status)
	assert.Contains(t, checks[1].Message, "RDS API unreachable")
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		lister     *fakeLister
		region     string
		wantStatus int
		wantBody   Status
	}{
		{
			name:       "healthy",
			lister:     &fakeLister{ids: []string{"db-1"}},
			region:     "us-east-1",
			wantStatus: http.StatusOK,
			wantBody:   StatusHealthy,
		},
		{
			name:       "unhealthy",
			lister:     &fakeLister{err: errors.New("boom")},
			region:     "us-east-1",
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.lister, tt.region, zap.NewNop())
			srv := NewServer(checker, zap.NewNop(), 0, "", false)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			srv.healthHandler(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantBody, resp.Status)
			assert.Len(t, resp.Checks, 2)
		})
	}
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	checker := New(&fakeLister{}, "us-east-1", zap.NewNop())
	srv := NewServer(checker, zap.NewNop(), 0, "", false)

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	srv.healthHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestReadyHandler(t *testing.T) {
	checker := New(&fakeLister{}, "us-east-1", zap.NewNop())
	srv := NewServer(checker, zap.NewNop(), 0, "", false)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)

	rec := httptest.NewRecorder()
	srv.readyHandler(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	srv.SetReady(true)
	rec = httptest.NewRecorder()
	srv.readyHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLiveHandler(t *testing.T) {
	checker := New(&fakeLister{}, "us-east-1", zap.NewNop())
	srv := NewServer(checker, zap.NewNop(), 0, "", false)

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()
	srv.liveHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
