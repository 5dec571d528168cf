package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const dateLayout = "2006-01-02"

// Event is the envelope shape of a calendar event.
type Event struct {
	ID          string   `json:"id"`
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Start       string   `json:"start,omitempty"`
	End         string   `json:"end,omitempty"`
	AllDay      bool     `json:"allDay"`
	Status      string   `json:"status,omitempty"`
	HTMLLink    string   `json:"htmlLink,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`
}

// CalendarEntry is one calendar from the user's calendar list.
type CalendarEntry struct {
	ID         string `json:"id"`
	Summary    string `json:"summary,omitempty"`
	Primary    bool   `json:"primary"`
	AccessRole string `json:"accessRole,omitempty"`
	TimeZone   string `json:"timeZone,omitempty"`
}

// EventQuery narrows an events listing. A zero TimeMin means now.
type EventQuery struct {
	TimeMin    time.Time
	TimeMax    time.Time
	MaxResults int64
	Query      string
}

// NewEvent describes an event to create. Start and End are RFC3339
// date-times or YYYY-MM-DD dates for all-day events.
type NewEvent struct {
	Summary     string
	Description string
	Location    string
	Start       string
	End         string
	Attendees   []string
}

type Calendar struct {
	service *calendar.Service
	ctx     context.Context
}

func NewCalendar(ctx context.Context, opts ...option.ClientOption) (*Calendar, error) {
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &Calendar{
		service: service,
		ctx:     ctx,
	}, nil
}

func (g *Calendar) ListCalendars() ([]CalendarEntry, error) {
	list, err := g.service.CalendarList.List().Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", WrapError(err))
	}

	result := make([]CalendarEntry, 0, len(list.Items))
	for _, item := range list.Items {
		result = append(result, CalendarEntry{
			ID:         item.Id,
			Summary:    item.Summary,
			Primary:    item.Primary,
			AccessRole: item.AccessRole,
			TimeZone:   item.TimeZone,
		})
	}
	return result, nil
}

func (g *Calendar) ListEvents(calendarID string, q EventQuery) ([]Event, error) {
	timeMin := q.TimeMin
	if timeMin.IsZero() {
		timeMin = time.Now()
	}

	call := g.service.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	if !q.TimeMax.IsZero() {
		call = call.TimeMax(q.TimeMax.Format(time.RFC3339))
	}
	if q.MaxResults > 0 {
		call = call.MaxResults(q.MaxResults)
	}
	if q.Query != "" {
		call = call.Q(q.Query)
	}

	events, err := call.Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", WrapError(err))
	}

	result := make([]Event, 0, len(events.Items))
	for _, item := range events.Items {
		result = append(result, convertEvent(item))
	}
	return result, nil
}

func (g *Calendar) GetEvent(calendarID string, eventID string) (*Event, error) {
	item, err := g.service.Events.Get(calendarID, eventID).Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", WrapError(err))
	}
	event := convertEvent(item)
	return &event, nil
}

func (g *Calendar) AddEvent(calendarID string, event *NewEvent) (*Event, error) {
	googleEvent, err := event.toAPI()
	if err != nil {
		return nil, err
	}

	created, err := g.service.Events.Insert(calendarID, googleEvent).Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", WrapError(err))
	}
	result := convertEvent(created)
	return &result, nil
}

func (g *Calendar) DeleteEvent(calendarID string, eventID string) error {
	err := g.service.Events.Delete(calendarID, eventID).Context(g.ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", WrapError(err))
	}
	return nil
}

// Validate checks the event without building the API request.
func (e *NewEvent) Validate() error {
	_, err := e.toAPI()
	return err
}

func (e *NewEvent) toAPI() (*calendar.Event, error) {
	if e.Summary == "" {
		return nil, errors.New("event summary is required")
	}
	start, startAllDay, err := ParseEventTime(e.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid start: %w", err)
	}
	end, endAllDay, err := ParseEventTime(e.End)
	if err != nil {
		return nil, fmt.Errorf("invalid end: %w", err)
	}
	if startAllDay != endAllDay {
		return nil, errors.New("start and end must both be dates or both be date-times")
	}
	if !eventTime(end).After(eventTime(start)) {
		return nil, errors.New("end must be after start")
	}

	googleEvent := &calendar.Event{
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Start:       start,
		End:         end,
	}
	for _, email := range e.Attendees {
		googleEvent.Attendees = append(googleEvent.Attendees, &calendar.EventAttendee{Email: email})
	}
	return googleEvent, nil
}

// ParseEventTime accepts an RFC3339 date-time or a YYYY-MM-DD date and
// reports whether it was a date.
func ParseEventTime(s string) (*calendar.EventDateTime, bool, error) {
	if s == "" {
		return nil, false, errors.New("time is required")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &calendar.EventDateTime{DateTime: t.Format(time.RFC3339)}, false, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return &calendar.EventDateTime{Date: t.Format(dateLayout)}, true, nil
	}
	return nil, false, fmt.Errorf("%q is neither RFC3339 nor YYYY-MM-DD", s)
}

func eventTime(dt *calendar.EventDateTime) time.Time {
	if dt.DateTime != "" {
		t, _ := time.Parse(time.RFC3339, dt.DateTime)
		return t
	}
	t, _ := time.Parse(dateLayout, dt.Date)
	return t
}

func convertEvent(item *calendar.Event) Event {
	event := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Status:      item.Status,
		HTMLLink:    item.HtmlLink,
	}
	if item.Start != nil {
		event.Start = item.Start.DateTime
		if event.Start == "" {
			event.Start = item.Start.Date
			event.AllDay = true
		}
	}
	if item.End != nil {
		event.End = item.End.DateTime
		if event.End == "" {
			event.End = item.End.Date
		}
	}
	for _, attendee := range item.Attendees {
		event.Attendees = append(event.Attendees, attendee.Email)
	}
	return event
}
