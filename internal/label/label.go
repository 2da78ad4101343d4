package label

import (
	"fmt"
	"strings"
)

// Category is the intent label assigned to an inbound reply
type Category string

const (
	Unsubscribed     Category = "unsubscribed"      // Asked to stop receiving email
	Bounced          Category = "bounced"           // Delivery failure notice
	OutOfOffice      Category = "out_of_office"     // Autoreply or leave notice
	WrongPerson      Category = "wrong_person"      // Mis-routed, points elsewhere
	NotInterested    Category = "not_interested"    // Explicit rejection
	MeetingBooked    Category = "meeting_booked"    // Call or demo scheduled
	MeetingCompleted Category = "meeting_completed" // Meeting already held
	Won              Category = "won"               // Ready to buy or sign
	Lost             Category = "lost"              // Deal closed lost
	Interested       Category = "interested"        // Positive, not yet booked
)

// InterestType is the coarse sentiment derived from a category
type InterestType string

const (
	Positive InterestType = "POSITIVE"
	Neutral  InterestType = "NEUTRAL"
	Negative InterestType = "NEGATIVE"
)

// all lists the closed label set. Rule priority lives in the rule table, not here.
var all = []Category{
	Unsubscribed,
	Bounced,
	OutOfOffice,
	WrongPerson,
	NotInterested,
	MeetingBooked,
	MeetingCompleted,
	Won,
	Lost,
	Interested,
}

var interest = map[Category]InterestType{
	Interested:       Positive,
	MeetingBooked:    Positive,
	MeetingCompleted: Positive,
	Won:              Positive,

	OutOfOffice: Neutral,

	WrongPerson:   Negative,
	NotInterested: Negative,
	Lost:          Negative,
	Unsubscribed:  Negative,
	Bounced:       Negative,
}

// All returns a copy of the closed label set
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// Valid reports whether c belongs to the closed label set
func Valid(c Category) bool {
	for _, known := range all {
		if c == known {
			return true
		}
	}
	return false
}

// Parse converts a raw label string into a Category.
// Surrounding whitespace is ignored and the comparison is case-insensitive.
func Parse(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !Valid(c) {
		return "", fmt.Errorf("unknown label %q", s)
	}
	return c, nil
}

// Interest maps a category to its coarse sentiment. Unmapped values are NEUTRAL.
func Interest(c Category) InterestType {
	if it, ok := interest[c]; ok {
		return it
	}
	return Neutral
}

func (c Category) String() string { return string(c) }
