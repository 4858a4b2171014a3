package upstream

// Schedule is one group's timetable as returned by the schedule endpoint.
type Schedule struct {
	Times []TimeSlot
	Items []ClassItem
}

// TimeSlot is one entry of the pair catalog ("Times"). Begin and End are the
// raw wall-clock strings as sent by the upstream and may be empty.
type TimeSlot struct {
	Code  string
	Label string
	Begin string
	End   string
}

// ClassItem is a single scheduled class occurrence. Any field may be absent:
// an empty string (or nil DayNumber) means the upstream did not send it, and
// consumers must skip the item for that correlation rather than assume a
// default.
type ClassItem struct {
	DayName   string
	DayNumber *int
	TimeCode  string
	Room      string
	Subject   string
	Teacher   string
}
