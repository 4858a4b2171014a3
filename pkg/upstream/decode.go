package upstream

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The upstream is not consistent about field names: the same logical field
// shows up under different keys depending on the endpoint revision. Each
// logical field therefore has an explicit priority list of keys, and a field
// whose keys are all missing stays absent instead of defaulting.

// DecodeSchedule parses the raw JSON document of the schedule endpoint.
func DecodeSchedule(data []byte) (*Schedule, error) {
	var raw struct {
		Times []map[string]json.RawMessage `json:"Times"`
		Data  []map[string]json.RawMessage `json:"Data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	schedule := &Schedule{}

	for _, entry := range raw.Times {
		code, ok := pickString(entry, "Code", "code", "ID", "Id")
		if !ok {
			continue // a slot without a code cannot be referenced
		}
		label, _ := pickString(entry, "Time", "Name")
		begin, _ := pickString(entry, "Begin", "Start", "TimeStart")
		end, _ := pickString(entry, "End", "Finish", "TimeEnd")
		schedule.Times = append(schedule.Times, TimeSlot{
			Code:  code,
			Label: label,
			Begin: begin,
			End:   end,
		})
	}

	for _, entry := range raw.Data {
		item := ClassItem{}
		if day, ok := pickString(entry, "Day"); ok {
			item.DayName = day
		}
		if num, ok := pickInt(entry, "DayNumber", "DayNum"); ok {
			n := num
			item.DayNumber = &n
		}
		item.TimeCode = extractTimeCode(entry)
		item.Room = extractRoom(entry)
		item.Subject, item.Teacher = extractClass(entry)
		schedule.Items = append(schedule.Items, item)
	}

	return schedule, nil
}

// extractTimeCode resolves the slot reference of a class item: a "Time"
// object with a Code/code field, a bare "Time" string, or a top-level
// TimeCode/TimeID value.
func extractTimeCode(entry map[string]json.RawMessage) string {
	if raw, ok := entry["Time"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(raw, &nested); err == nil {
			code, _ := pickString(nested, "Code", "code")
			return code
		}
		var plain string
		if err := json.Unmarshal(raw, &plain); err == nil {
			return strings.TrimSpace(plain)
		}
	}
	code, _ := pickString(entry, "TimeCode", "TimeID")
	return code
}

// extractClass pulls the subject and teacher out of the "Class" object; a
// bare string is taken as the subject alone.
func extractClass(entry map[string]json.RawMessage) (string, string) {
	raw, ok := entry["Class"]
	if !ok {
		subject, _ := pickString(entry, "Name", "Subject")
		return subject, ""
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err == nil {
		subject, _ := pickString(nested, "Name", "name")
		teacher, _ := pickString(nested, "TeacherFull", "Teacher")
		return subject, teacher
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return strings.TrimSpace(plain), ""
	}
	return "", ""
}

// extractRoom accepts both a bare string and a {"Name": ...} object.
func extractRoom(entry map[string]json.RawMessage) string {
	raw, ok := entry["Room"]
	if !ok {
		return ""
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return strings.TrimSpace(plain)
	}
	var nested struct {
		Name string `json:"Name"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return strings.TrimSpace(nested.Name)
	}
	return ""
}

// pickString returns the first present key as a string. Numeric values are
// accepted and formatted, since codes arrive as both "3" and 3.
func pickString(entry map[string]json.RawMessage, keys ...string) (string, bool) {
	for _, key := range keys {
		raw, ok := entry[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			s = strings.TrimSpace(s)
			if s != "" {
				return s, true
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String(), true
		}
	}
	return "", false
}

// pickInt returns the first present key as an int, accepting numeric strings.
func pickInt(entry map[string]json.RawMessage, keys ...string) (int, bool) {
	for _, key := range keys {
		raw, ok := entry[key]
		if !ok {
			continue
		}
		var n int
		if err := json.Unmarshal(raw, &n); err == nil {
			return n, true
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if parsed, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}
