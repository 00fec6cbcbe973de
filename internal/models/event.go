package models

import (
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventColors is the fixed palette events may use. Creation and update refuse
// any color outside this list.
var EventColors = []string{
	"#1E90FF",
	"#00BFFF",
	"#32CD32",
	"#f6d137",
	"#FF8C00",
	"#FF4500",
	"#DC143C",
	"#FF69B4",
	"#BA55D3",
	"#6A5ACD",
	"#7B68EE",
	"#8A2BE2",
	"#D2691E",
	"#A0522D",
	"#FF6347",
	"#FF1493",
	"#FFB6C1",
	"#DDA0DD",
	"#4682B4",
	"#5F9EA0",
	"#66CDAA",
}

// DefaultEventColor fills in events stored without a color.
func DefaultEventColor() string { return EventColors[0] }

// ValidEventColor reports whether c belongs to the palette.
func ValidEventColor(c string) bool {
	for _, v := range EventColors {
		if v == c {
			return true
		}
	}
	return false
}

// EventDateLayout is the calendar-date format events carry. Start and end
// times are free text and deliberately not validated as clock times.
const EventDateLayout = "2006-01-02"

// Event is a calendar event document. IsShared is a visibility flag: a shared
// event is visible to every user holding a friend edge toward the owner,
// never to an explicit guest list.
type Event struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID      string             `json:"userId" bson:"userId"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Date        string             `json:"date" bson:"date"`
	StartTime   string             `json:"startTime,omitempty" bson:"startTime,omitempty"`
	EndTime     string             `json:"endTime,omitempty" bson:"endTime,omitempty"`
	Location    string             `json:"location,omitempty" bson:"location,omitempty"`
	Latitude    float64            `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude   float64            `json:"longitude,omitempty" bson:"longitude,omitempty"`
	Color       string             `json:"color" bson:"color"`
	IsShared    bool               `json:"isShared" bson:"isShared"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`

	// Username is the resolved owner display name. Populated by feed
	// aggregation, never stored.
	Username string `json:"username,omitempty" bson:"-"`
}

// HasCoordinates reports whether the event carries usable stored coordinates.
// A {0,0} pair means "never geocoded" and forces the re-geocode sub-flow.
func (e *Event) HasCoordinates() bool {
	return e.Latitude != 0 || e.Longitude != 0
}

// ParsedDate parses the event's calendar date. The second return value is
// false for absent or malformed dates; callers sort those after valid ones.
func (e *Event) ParsedDate() (time.Time, bool) {
	t, err := time.Parse(EventDateLayout, e.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type CreateEventRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date" validate:"required"`
	StartTime   string  `json:"startTime,omitempty"`
	EndTime     string  `json:"endTime,omitempty"`
	Location    string  `json:"location,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	Color       string  `json:"color" validate:"required"`
	IsShared    bool    `json:"isShared"`
}

// Validate applies the checks that block submission before any write: name,
// date, and a palette color are required.
func (r *CreateEventRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("event name is required")
	}
	if r.Date == "" {
		return fmt.Errorf("event date is required")
	}
	if _, err := time.Parse(EventDateLayout, r.Date); err != nil {
		return fmt.Errorf("event date must use the %s format", EventDateLayout)
	}
	if !ValidEventColor(r.Color) {
		return fmt.Errorf("event color must be one of the %d palette colors", len(EventColors))
	}
	return nil
}

// EventsByDate maps a calendar-date string to the events on that day. Each
// live-query emission is one complete replacement snapshot of this shape.
type EventsByDate map[string][]Event

// GroupEventsByDate shapes a query result into a calendar snapshot. Store
// order within a day is preserved but unspecified; events persisted without
// a color get the palette default.
func GroupEventsByDate(events []Event) EventsByDate {
	grouped := make(EventsByDate)
	for _, event := range events {
		if event.Color == "" {
			event.Color = DefaultEventColor()
		}
		grouped[event.Date] = append(grouped[event.Date], event)
	}
	return grouped
}

// SortedDates returns the snapshot's date keys in ascending calendar order.
func (m EventsByDate) SortedDates() []string {
	dates := make([]string, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// EventPartition splits a user's events by the visibility flag, mirroring the
// personal/social tabs of the manage-events view.
type EventPartition struct {
	Personal []Event `json:"personal"`
	Social   []Event `json:"social"`
}
