package audit

import (
	"testing"
	"time"
)

func TestFormatLine_WithText(t *testing.T) {
	e := Entry{
		At:    time.Date(2024, 5, 1, 15, 4, 59, 0, time.UTC),
		Label: "Cancelled by resident",
		Text:  "schedule conflict",
	}
	if got := FormatLine(e); got != "[2024-05-01 15:04] Cancelled by resident: schedule conflict" {
		t.Fatalf("unexpected line: %q", got)
	}
}

func TestFormatLine_EmptyTextOmitsColon(t *testing.T) {
	e := Entry{
		At:    time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Label: "Confirmed by staff",
	}
	if got := FormatLine(e); got != "[2024-05-01 09:00] Confirmed by staff" {
		t.Fatalf("unexpected line: %q", got)
	}
}

func TestAppend_DoesNotMutatePrior(t *testing.T) {
	first := Entry{At: time.Unix(100, 0).UTC(), Label: "Booked"}
	log := []Entry{first}

	grown := Append(log, Entry{At: time.Unix(200, 0).UTC(), Label: "Confirmed by staff"})
	if len(grown) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(grown))
	}
	if len(log) != 1 || log[0] != first {
		t.Fatalf("original slice mutated: %+v", log)
	}
	if grown[0] != first {
		t.Fatalf("prior entry changed: %+v", grown[0])
	}
}

func TestRender(t *testing.T) {
	log := []Entry{
		{At: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), Label: "Booked"},
		{At: time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC), Label: "Cancelled by resident", Text: "sick"},
	}
	want := "[2024-05-01 08:00] Booked\n[2024-05-02 08:30] Cancelled by resident: sick"
	if got := Render(log); got != want {
		t.Fatalf("unexpected render:\n%s", got)
	}
}
