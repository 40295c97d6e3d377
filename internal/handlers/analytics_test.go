package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"task-tracker/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusBreakdown_Endpoint(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice", models.RoleUser)
	router := newRouter(db, alice.AsCaller())

	w := doJSON(t, router, http.MethodPost, "/tasks", map[string]interface{}{"title": "t"})
	mustStatus(t, w, http.StatusCreated)

	w = doJSON(t, router, http.MethodGet, "/analytics/statuses", nil)
	mustStatus(t, w, http.StatusOK)

	var breakdown struct {
		Total int64 `json:"total"`
		Items []struct {
			Code    string  `json:"code"`
			Count   int64   `json:"count"`
			Percent float64 `json:"percent"`
		} `json:"items"`
	}
	decode(t, w, &breakdown)
	assert.Equal(t, int64(1), breakdown.Total)
	require.Len(t, breakdown.Items, 4)
	assert.Equal(t, 100.0, breakdown.Items[0].Percent)

	w = doJSON(t, router, http.MethodGet, "/analytics/statuses?date_from=garbage", nil)
	mustStatus(t, w, http.StatusBadRequest)
}

func TestTopicBreakdown_Endpoint_NoTopicsIs404(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice", models.RoleUser)
	router := newRouter(db, alice.AsCaller())

	w := doJSON(t, router, http.MethodGet, "/analytics/topics", nil)
	mustStatus(t, w, http.StatusNotFound)
	assert.Contains(t, w.Body.String(), "no_data")
}

func TestSummary_Endpoint(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice", models.RoleUser)
	router := newRouter(db, alice.AsCaller())

	for i := 0; i < 2; i++ {
		w := doJSON(t, router, http.MethodPost, "/tasks", map[string]interface{}{"title": fmt.Sprintf("t%d", i)})
		mustStatus(t, w, http.StatusCreated)
	}

	w := doJSON(t, router, http.MethodGet, "/analytics/summary", nil)
	mustStatus(t, w, http.StatusOK)

	var summary struct {
		Total int64 `json:"total"`
		Open  int64 `json:"open"`
		Done  int64 `json:"done"`
	}
	decode(t, w, &summary)
	assert.Equal(t, int64(2), summary.Total)
	assert.Equal(t, summary.Total, summary.Open+summary.Done)
}

func TestLeadTimeAndBurndown_Endpoints_EmptyIs404(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice", models.RoleUser)
	router := newRouter(db, alice.AsCaller())

	w := doJSON(t, router, http.MethodGet, "/analytics/lead_time", nil)
	mustStatus(t, w, http.StatusNotFound)

	w = doJSON(t, router, http.MethodGet, "/analytics/burndown", nil)
	mustStatus(t, w, http.StatusNotFound)
}

func TestBurndown_Endpoint(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice", models.RoleUser)
	router := newRouter(db, alice.AsCaller())

	w := doJSON(t, router, http.MethodPost, "/tasks", map[string]interface{}{"title": "t"})
	mustStatus(t, w, http.StatusCreated)
	var task models.Task
	decode(t, w, &task)

	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/tasks/%d/status", task.ID), map[string]interface{}{
		"status_code": "done",
	})
	mustStatus(t, w, http.StatusOK)

	w = doJSON(t, router, http.MethodGet, "/analytics/burndown", nil)
	mustStatus(t, w, http.StatusOK)

	var resp struct {
		Items []struct {
			Day       string `json:"day"`
			DoneCount int64  `json:"done_count"`
		} `json:"items"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(1), resp.Items[0].DoneCount)
}

func TestAssigneeBreakdown_Endpoint(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice", models.RoleUser)
	router := newRouter(db, alice.AsCaller())

	w := doJSON(t, router, http.MethodPost, "/tasks", map[string]interface{}{
		"title": "unowned",
	})
	mustStatus(t, w, http.StatusCreated)

	w = doJSON(t, router, http.MethodGet, "/analytics/assignees", nil)
	mustStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), "unassigned")

	w = doJSON(t, router, http.MethodGet, "/analytics/assignees?include_unassigned=false", nil)
	mustStatus(t, w, http.StatusOK)
	assert.NotContains(t, w.Body.String(), "unassigned")
}
