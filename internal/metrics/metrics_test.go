package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/nevermore/pkg/dialogue"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	events := []dialogue.Event{
		{Kind: dialogue.EventStarted, NodeID: "yara_greeting"},
		{Kind: dialogue.EventPresented, NodeID: "yara_greeting"},
		{Kind: dialogue.EventChose, NodeID: "yara_greeting"},
		{Kind: dialogue.EventJournal, Text: "Yara promised a late-night choir under the glass dome."},
		{Kind: dialogue.EventPresented, NodeID: "yara_offer"},
		{Kind: dialogue.EventCompleted, Text: "met_yara"},
		{Kind: dialogue.EventClosed, NodeID: "yara_offer"},
		{Kind: dialogue.EventStarted, NodeID: "missing"},
		{Kind: dialogue.EventBrokenLink, NodeID: "missing"},
	}
	for _, ev := range events {
		m.Observe(ev)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues(string(dialogue.EventStarted))))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues(string(dialogue.EventPresented))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.choices.WithLabelValues("yara_greeting")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.completions.WithLabelValues("met_yara")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.journal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.brokenLinks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeDialog))

	m.Observe(dialogue.Event{Kind: dialogue.EventFaulted, Err: errors.New("boom")})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.faults))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeDialog))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Observe(dialogue.Event{Kind: dialogue.EventChose, NodeID: "statue_vision"})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `nevermore_choices_total{node="statue_vision"} 1`)
	assert.Contains(t, string(body), "nevermore_dialogue_active 0")
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a, b := New(), New()
	a.Observe(dialogue.Event{Kind: dialogue.EventJournal})
	assert.Equal(t, 1.0, testutil.ToFloat64(a.journal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.journal))
	assert.NotSame(t, a.Registry(), b.Registry())
}
