package analysis

import (
	"reflect"
	"testing"
)

func TestPatchFillsOnlyPlaceholders(t *testing.T) {
	h := Header{Facilitator: "Name", School: "Unknown School", Grade: "7", Section: "", Date: "N/A", Subject: "Science"}
	facts := LectureFacts{
		TeacherName:   "Jane Doe",
		TeacherSchool: "Green Valley",
		ClassSchool:   "Other School",
		Grade:         "8",
		Section:       "B",
		Date:          "2024-01-01",
	}
	if !NeedsPatching(h) {
		t.Fatalf("NeedsPatching: expected true")
	}
	changed := Patch(&h, facts)
	want := []string{"facilitator", "school", "section", "date"}
	if !reflect.DeepEqual(changed, want) {
		t.Fatalf("Patch changed: got=%v want=%v", changed, want)
	}
	if h.School != "Green Valley" {
		t.Fatalf("teacher school should win: %q", h.School)
	}
	if h.Grade != "7" {
		t.Fatalf("real value overwritten: grade=%q", h.Grade)
	}
}

func TestPatchIsIdempotent(t *testing.T) {
	h := Header{Facilitator: "Jane Doe", School: "Green Valley", Grade: "5", Section: "A", Date: "2024-01-01"}
	if NeedsPatching(h) {
		t.Fatalf("complete header should not need patching")
	}
	facts := LectureFacts{TeacherName: "Someone Else", ClassSchool: "Elsewhere", Grade: "9", Section: "C", Date: "2025-01-01"}
	before := h
	for i := 0; i < 2; i++ {
		if changed := Patch(&h, facts); len(changed) != 0 {
			t.Fatalf("Patch #%d changed %v", i+1, changed)
		}
	}
	if h != before {
		t.Fatalf("header mutated: %+v", h)
	}
}

func TestPatchFallsBackToClassSchool(t *testing.T) {
	h := Header{School: "N/A"}
	Patch(&h, LectureFacts{ClassSchool: "Riverside"})
	if h.School != "Riverside" {
		t.Fatalf("school: got=%q", h.School)
	}
}
