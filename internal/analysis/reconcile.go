package analysis

import "strings"

// LectureFacts is what the database knows about a lecture's header fields.
type LectureFacts struct {
	TeacherName   string
	TeacherSchool string
	ClassSchool   string
	Grade         string
	Section       string
	Date          string
}

// School prefers the teacher's school over the class's.
func (f LectureFacts) School() string {
	if strings.TrimSpace(f.TeacherSchool) != "" {
		return f.TeacherSchool
	}
	return f.ClassSchool
}

// NeedsPatching reports whether any reconciled header field is empty or a placeholder.
func NeedsPatching(h Header) bool {
	for _, v := range []string{h.Facilitator, h.School, h.Grade, h.Section, h.Date} {
		if IsPlaceholder(v) {
			return true
		}
	}
	return false
}

// Patch fills placeholder header fields from facts and returns the names of the fields it changed.
// Fields holding a real value are left alone.
func Patch(h *Header, facts LectureFacts) []string {
	if h == nil {
		return nil
	}
	var changed []string
	fill := func(name string, dst *string, v string) {
		v = strings.TrimSpace(v)
		if !IsPlaceholder(*dst) || !usableCallerValue(v) || *dst == v {
			return
		}
		*dst = v
		changed = append(changed, name)
	}
	fill("facilitator", &h.Facilitator, facts.TeacherName)
	fill("school", &h.School, facts.School())
	fill("grade", &h.Grade, facts.Grade)
	fill("section", &h.Section, facts.Section)
	fill("date", &h.Date, facts.Date)
	return changed
}
