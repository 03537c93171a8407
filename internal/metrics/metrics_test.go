package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestObservers(t *testing.T) {
	m := New()
	m.ObserveSummaryJob("summarized", time.Second)
	m.ObserveSummaryJob("summarized", time.Second)
	m.ObserveGatewayCall("rejected", time.Millisecond)
	m.ObserveMail("welcome", errors.New("smtp down"))

	assert.Equal(t, 2.0, counterValue(t, m, "thoughtforest_summary_jobs_total", map[string]string{"outcome": "summarized"}))
	assert.Equal(t, 1.0, counterValue(t, m, "thoughtforest_llm_calls_total", map[string]string{"result": "rejected"}))
	assert.Equal(t, 1.0, counterValue(t, m, "thoughtforest_mail_sent_total", map[string]string{"kind": "welcome", "result": "error"}))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/items/42", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	assert.Equal(t, 1.0, counterValue(t, m, "thoughtforest_http_requests_total",
		map[string]string{"method": "GET", "route": "/items/:id", "status": "204"}))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "thoughtforest_http_requests_total")
}
