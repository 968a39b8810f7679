package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.ObserveEvent("text", 10*time.Millisecond)
	p.ObserveEvent("text", 20*time.Millisecond)
	p.ObserveEvent("callback", time.Millisecond)
	p.IncCallback("main_menu")
	p.IncTransportError("send")
	p.AddTasksCreated(3)
	p.SetActiveChats(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.events.WithLabelValues("text")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.events.WithLabelValues("callback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.callbacks.WithLabelValues("main_menu")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.transportErrors.WithLabelValues("send")))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.tasksCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.activeChats))
	assert.Equal(t, 2, testutil.CollectAndCount(p.handleDuration))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)
	p.AddTasksCreated(1)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "sprintbot_tasks_created_total 1"))
}

func TestNop(t *testing.T) {
	r := Nop()
	r.ObserveEvent("text", time.Second)
	r.IncCallback("x")
	r.IncTransportError("edit")
	r.AddTasksCreated(1)
	r.SetActiveChats(0)
}
