package google

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalendar(t *testing.T, h http.HandlerFunc) *Calendar {
	t.Helper()
	c, err := NewCalendar(context.Background(), fakeAPI(t, h)...)
	require.NoError(t, err)
	return c
}

func TestCalendar_ListCalendars(t *testing.T) {
	c := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/users/me/calendarList"))
		writeJSON(w, map[string]any{"items": []map[string]any{
			{"id": "primary@example.com", "summary": "Me", "primary": true, "accessRole": "owner", "timeZone": "UTC"},
			{"id": "team", "summary": "Team", "accessRole": "reader"},
		}})
	})

	cals, err := c.ListCalendars()
	require.NoError(t, err)
	assert.Equal(t, []CalendarEntry{
		{ID: "primary@example.com", Summary: "Me", Primary: true, AccessRole: "owner", TimeZone: "UTC"},
		{ID: "team", Summary: "Team", AccessRole: "reader"},
	}, cals)
}

func TestCalendar_ListEvents(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	c := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary/events"))
		q := r.URL.Query()
		assert.Equal(t, "2026-01-01T00:00:00Z", q.Get("timeMin"))
		assert.Equal(t, "2026-01-02T00:00:00Z", q.Get("timeMax"))
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))
		assert.Equal(t, "5", q.Get("maxResults"))
		assert.Equal(t, "standup", q.Get("q"))

		writeJSON(w, map[string]any{"items": []map[string]any{
			{
				"id": "e1", "summary": "Standup", "status": "confirmed",
				"start":     map[string]any{"dateTime": "2026-01-01T09:00:00Z"},
				"end":       map[string]any{"dateTime": "2026-01-01T09:15:00Z"},
				"attendees": []map[string]any{{"email": "a@example.com"}},
			},
			{
				"id": "e2", "summary": "Holiday",
				"start": map[string]any{"date": "2026-01-01"},
				"end":   map[string]any{"date": "2026-01-02"},
			},
		}})
	})

	events, err := c.ListEvents("primary", EventQuery{TimeMin: from, TimeMax: to, MaxResults: 5, Query: "standup"})
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, Event{
		ID: "e1", Summary: "Standup", Status: "confirmed",
		Start: "2026-01-01T09:00:00Z", End: "2026-01-01T09:15:00Z",
		Attendees: []string{"a@example.com"},
	}, events[0])
	assert.True(t, events[1].AllDay)
	assert.Equal(t, "2026-01-01", events[1].Start)
	assert.Equal(t, "2026-01-02", events[1].End)
}

func TestCalendar_ListEvents_DefaultsTimeMinToNow(t *testing.T) {
	before := time.Now().Add(-time.Second)
	c := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		got, err := time.Parse(time.RFC3339, r.URL.Query().Get("timeMin"))
		assert.NoError(t, err)
		assert.False(t, got.Before(before.Truncate(time.Second)))
		assert.Empty(t, r.URL.Query().Get("timeMax"))
		writeJSON(w, map[string]any{"items": []any{}})
	})

	events, err := c.ListEvents("primary", EventQuery{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCalendar_AddEvent(t *testing.T) {
	c := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/work/events"))

		var body map[string]any
		readRequest(t, r, &body)
		assert.Equal(t, "Review", body["summary"])
		assert.Equal(t, map[string]any{"dateTime": "2026-03-01T10:00:00+01:00"}, body["start"])

		body["id"] = "new-id"
		body["htmlLink"] = "https://calendar.example/new-id"
		writeJSON(w, body)
	})

	event, err := c.AddEvent("work", &NewEvent{
		Summary:   "Review",
		Start:     "2026-03-01T10:00:00+01:00",
		End:       "2026-03-01T11:00:00+01:00",
		Attendees: []string{"b@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", event.ID)
	assert.Equal(t, "https://calendar.example/new-id", event.HTMLLink)
	assert.Equal(t, []string{"b@example.com"}, event.Attendees)
	assert.False(t, event.AllDay)
}

func TestCalendar_AddEvent_Validation(t *testing.T) {
	c := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	tests := []struct {
		name  string
		event NewEvent
		want  string
	}{
		{"no summary", NewEvent{Start: "2026-01-01", End: "2026-01-02"}, "summary is required"},
		{"bad start", NewEvent{Summary: "x", Start: "tomorrow", End: "2026-01-02"}, "invalid start"},
		{"mixed kinds", NewEvent{Summary: "x", Start: "2026-01-01", End: "2026-01-01T10:00:00Z"}, "both be dates"},
		{"end before start", NewEvent{Summary: "x", Start: "2026-01-02", End: "2026-01-01"}, "end must be after start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.AddEvent("primary", &tt.event)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewEvent_Validate(t *testing.T) {
	assert.NoError(t, (&NewEvent{Summary: "x", Start: "2026-01-01", End: "2026-01-02"}).Validate())
	assert.ErrorContains(t, (&NewEvent{Summary: "x", Start: "garbage", End: "garbage"}).Validate(), "invalid start")
	assert.ErrorContains(t, (&NewEvent{Start: "2026-01-01", End: "2026-01-02"}).Validate(), "summary is required")
}

func TestCalendar_GetEvent_NotFound(t *testing.T) {
	c := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusNotFound, "Not Found")
	})

	_, err := c.GetEvent("primary", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "failed to get event")
}

func TestCalendar_DeleteEvent(t *testing.T) {
	var called bool
	c := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary/events/e1"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteEvent("primary", "e1"))
	assert.True(t, called)
}

func TestParseEventTime(t *testing.T) {
	dt, allDay, err := ParseEventTime("2026-05-01T08:30:00Z")
	require.NoError(t, err)
	assert.False(t, allDay)
	assert.Equal(t, "2026-05-01T08:30:00Z", dt.DateTime)

	dt, allDay, err = ParseEventTime("2026-05-01")
	require.NoError(t, err)
	assert.True(t, allDay)
	assert.Equal(t, "2026-05-01", dt.Date)

	_, _, err = ParseEventTime("")
	assert.Error(t, err)
}
