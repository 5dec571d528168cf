package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobuk/gtools/internal/google"
)

const primaryCalendar = "primary"

// CalendarCommand groups the Google Calendar commands.
func (a *App) CalendarCommand() *cobra.Command {
	cmd := group("calendar", "List, create and delete Google Calendar events")

	calendars := &cobra.Command{
		Use:   "calendars",
		Short: "List calendars in the user's calendar list",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string) (any, error) {
			g, err := a.calendar(cmd)
			if err != nil {
				return nil, err
			}
			list, err := g.ListCalendars()
			if err != nil {
				return nil, err
			}
			return map[string]any{"calendars": list}, nil
		}),
	}

	var (
		from, to string
		query    google.EventQuery
	)
	events := &cobra.Command{
		Use:   "events [calendar-id]",
		Short: "List upcoming events, expanded and ordered by start time",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			calendarID := primaryCalendar
			if len(args) == 1 {
				calendarID = args[0]
			}
			var err error
			if query.TimeMin, err = parseBound("from", from); err != nil {
				return nil, err
			}
			if query.TimeMax, err = parseBound("to", to); err != nil {
				return nil, err
			}
			g, err := a.calendar(cmd)
			if err != nil {
				return nil, err
			}
			list, err := g.ListEvents(calendarID, query)
			if err != nil {
				return nil, err
			}
			return map[string]any{"events": list}, nil
		}),
	}
	events.Flags().Int64Var(&query.MaxResults, "max", 10, "maximum number of events")
	events.Flags().StringVar(&from, "from", "", "earliest event end time, RFC3339 (default now)")
	events.Flags().StringVar(&to, "to", "", "latest event start time, RFC3339")
	events.Flags().StringVar(&query.Query, "query", "", "free text filter")

	var getCalendar string
	get := &cobra.Command{
		Use:   "get <event-id>",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			g, err := a.calendar(cmd)
			if err != nil {
				return nil, err
			}
			return g.GetEvent(getCalendar, args[0])
		}),
	}
	get.Flags().StringVar(&getCalendar, "calendar", primaryCalendar, "calendar ID")

	var (
		event          google.NewEvent
		attendees      string
		createCalendar string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Example: `  calendar create --summary="Standup" --start=2026-03-02T09:00:00Z --end=2026-03-02T09:15:00Z
  calendar create --summary="Offsite" --start=2026-04-01 --end=2026-04-03`,
		Args: cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string) (any, error) {
			event.Attendees = splitList(attendees)
			if err := event.Validate(); err != nil {
				return nil, err
			}
			g, err := a.calendar(cmd)
			if err != nil {
				return nil, err
			}
			return g.AddEvent(createCalendar, &event)
		}),
	}
	create.Flags().StringVar(&event.Summary, "summary", "", "event title")
	create.Flags().StringVar(&event.Start, "start", "", "start as RFC3339 or YYYY-MM-DD")
	create.Flags().StringVar(&event.End, "end", "", "end as RFC3339 or YYYY-MM-DD")
	create.Flags().StringVar(&event.Description, "description", "", "event description")
	create.Flags().StringVar(&event.Location, "location", "", "event location")
	create.Flags().StringVar(&attendees, "attendees", "", "attendee emails, comma separated")
	create.Flags().StringVar(&createCalendar, "calendar", primaryCalendar, "calendar ID")
	_ = create.MarkFlagRequired("summary")
	_ = create.MarkFlagRequired("start")
	_ = create.MarkFlagRequired("end")

	var deleteCalendar string
	del := &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			g, err := a.calendar(cmd)
			if err != nil {
				return nil, err
			}
			if err := g.DeleteEvent(deleteCalendar, args[0]); err != nil {
				return nil, err
			}
			return map[string]any{"id": args[0], "deleted": true}, nil
		}),
	}
	del.Flags().StringVar(&deleteCalendar, "calendar", primaryCalendar, "calendar ID")

	cmd.AddCommand(calendars, events, get, create, del)
	return cmd
}

func (a *App) calendar(cmd *cobra.Command) (*google.Calendar, error) {
	opts, err := a.options(cmd.Context())
	if err != nil {
		return nil, err
	}
	return google.NewCalendar(cmd.Context(), opts...)
}

func parseBound(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: expected RFC3339", name, value)
	}
	return t, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
