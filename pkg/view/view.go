// Package view derives the date-bucketed presentation projection of a
// canonical message stream. Projection is a pure function of its inputs:
// bucketing is pinned to UTC calendar days and labels are computed against
// an explicit reference time, so output never depends on the wall clock.
package view

import (
	"time"

	"chatfeed/pkg/models"
)

// Entry is one projected message with its presentation flags.
type Entry struct {
	models.Message
	// Self marks messages authored by the viewing participant.
	Self bool
	// ShowSenderHeader is set for the first message of a bucket and on
	// sender change within the bucket, never for self-authored messages
	// and never across bucket boundaries.
	ShowSenderHeader bool
}

// Group is one calendar-day bucket of consecutive messages.
type Group struct {
	// Date is midnight UTC of the bucket's day.
	Date time.Time
	// Key is the bucket key, "2006-01-02".
	Key      string
	Messages []Entry
}

// Project buckets an ordered message sequence into per-day groups and
// annotates sender headers. The input must already be sorted ascending;
// the canonical stream guarantees that.
func Project(msgs []models.Message, selfID string) []Group {
	var out []Group
	for _, m := range msgs {
		day := dayOf(m.Created())
		if len(out) == 0 || !out[len(out)-1].Date.Equal(day) {
			out = append(out, Group{Date: day, Key: day.Format("2006-01-02")})
		}
		g := &out[len(out)-1]
		e := Entry{Message: m, Self: m.Sender == selfID}
		if !e.Self {
			if len(g.Messages) == 0 || g.Messages[len(g.Messages)-1].Sender != m.Sender {
				e.ShowSenderHeader = true
			}
		}
		g.Messages = append(g.Messages, e)
	}
	return out
}

// LabelAt renders the bucket header relative to a reference time:
// "Today", "Yesterday", or the full date.
func (g Group) LabelAt(ref time.Time) string {
	today := dayOf(ref.UTC())
	switch {
	case g.Date.Equal(today):
		return "Today"
	case g.Date.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return g.Date.Format("2 January 2006")
	}
}

// FormatMessageTime renders a message timestamp the way the bucket labels
// do: clock time for today, "Yesterday 15:04", otherwise a short date.
func FormatMessageTime(at, ref time.Time) string {
	at = at.UTC()
	today := dayOf(ref.UTC())
	switch day := dayOf(at); {
	case day.Equal(today):
		return at.Format("15:04")
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday " + at.Format("15:04")
	default:
		return at.Format("02/01/06 15:04")
	}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
