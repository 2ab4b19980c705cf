package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildRecentQuery_Defaults(t *testing.T) {
	query, args := buildRecentQuery(Query{})

	assert.Contains(t, query, "SELECT id, job_id, backend")
	assert.Contains(t, query, "FROM synthesis_runs WHERE 1=1")
	assert.NotContains(t, query, "status =")
	assert.Contains(t, query, "ORDER BY created_at DESC LIMIT $1")
	assert.Equal(t, []any{20}, args)
}

func TestBuildRecentQuery_AllFilters(t *testing.T) {
	since := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	query, args := buildRecentQuery(Query{
		Status:  "failed",
		Backend: "xtts-server",
		Since:   &since,
		Limit:   5,
	})

	assert.Contains(t, query, "AND status = $1")
	assert.Contains(t, query, "AND backend = $2")
	assert.Contains(t, query, "AND created_at >= $3")
	assert.Contains(t, query, "LIMIT $4")
	assert.Equal(t, []any{"failed", "xtts-server", since, 5}, args)
}

func TestBuildRecentQuery_BackendOnly(t *testing.T) {
	query, args := buildRecentQuery(Query{Backend: "local-xtts", Limit: 3})

	assert.Contains(t, query, "AND backend = $1")
	assert.Contains(t, query, "LIMIT $2")
	assert.Equal(t, []any{"local-xtts", 3}, args)
}

func TestBuildRecentQuery_JobID(t *testing.T) {
	query, args := buildRecentQuery(Query{JobID: "5f1c2a7e-0000-4000-8000-000000000001", Status: "failed"})

	assert.Contains(t, query, "AND job_id = $1")
	assert.Contains(t, query, "AND status = $2")
	assert.Contains(t, query, "LIMIT $3")
	assert.Equal(t, []any{"5f1c2a7e-0000-4000-8000-000000000001", "failed", 20}, args)
}
