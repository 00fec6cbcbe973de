package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEventRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateEventRequest
		wantErr bool
	}{
		{
			name: "valid",
			req:  CreateEventRequest{Name: "Lunch", Date: "2025-06-01", Color: "#1E90FF"},
		},
		{
			name:    "missing name",
			req:     CreateEventRequest{Date: "2025-06-01", Color: "#1E90FF"},
			wantErr: true,
		},
		{
			name:    "missing date",
			req:     CreateEventRequest{Name: "Lunch", Color: "#1E90FF"},
			wantErr: true,
		},
		{
			name:    "malformed date",
			req:     CreateEventRequest{Name: "Lunch", Date: "June 1st", Color: "#1E90FF"},
			wantErr: true,
		},
		{
			name:    "color outside palette",
			req:     CreateEventRequest{Name: "Lunch", Date: "2025-06-01", Color: "#123456"},
			wantErr: true,
		},
		{
			name:    "missing color",
			req:     CreateEventRequest{Name: "Lunch", Date: "2025-06-01"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEventColorsPalette(t *testing.T) {
	require.Len(t, EventColors, 21)
	assert.Equal(t, "#1E90FF", DefaultEventColor())
	assert.True(t, ValidEventColor("#66CDAA"))
	assert.False(t, ValidEventColor("#ffffff"))
	assert.False(t, ValidEventColor(""))
}

func TestGroupEventsByDate(t *testing.T) {
	events := []Event{
		{Name: "a", Date: "2025-06-02", Color: "#32CD32"},
		{Name: "b", Date: "2025-06-01"},
		{Name: "c", Date: "2025-06-02", Color: "#FF4500"},
	}

	grouped := GroupEventsByDate(events)
	require.Len(t, grouped, 2)
	require.Len(t, grouped["2025-06-02"], 2)

	// Stored without a color: the palette default fills in.
	assert.Equal(t, DefaultEventColor(), grouped["2025-06-01"][0].Color)
	assert.Equal(t, "#32CD32", grouped["2025-06-02"][0].Color)

	assert.Equal(t, []string{"2025-06-01", "2025-06-02"}, grouped.SortedDates())
}

func TestEventHasCoordinates(t *testing.T) {
	assert.False(t, (&Event{}).HasCoordinates())
	assert.True(t, (&Event{Latitude: 40.7}).HasCoordinates())
	assert.True(t, (&Event{Longitude: -74.0}).HasCoordinates())
}

func TestEventParsedDate(t *testing.T) {
	_, ok := (&Event{Date: "2025-06-01"}).ParsedDate()
	assert.True(t, ok)

	_, ok = (&Event{Date: "not-a-date"}).ParsedDate()
	assert.False(t, ok)

	_, ok = (&Event{}).ParsedDate()
	assert.False(t, ok)
}
