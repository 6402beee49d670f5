package event

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDateSpecUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want DateSpec
	}{
		{
			name: "instant string",
			json: `"2025-09-21T20:00:00.000Z"`,
			want: DateSpec{Kind: DateKindInstant, Instant: "2025-09-21T20:00:00.000Z"},
		},
		{
			name: "date-only string",
			json: `"2025-09-21"`,
			want: DateSpec{Kind: DateKindAllDay, Date: "2025-09-21"},
		},
		{
			name: "structured pair",
			json: `{"dateTime":"2025-09-21T16:00:00","timeZone":"America/Indiana/Indianapolis"}`,
			want: DateSpec{Kind: DateKindLocal, DateTime: "2025-09-21T16:00:00", TimeZone: "America/Indiana/Indianapolis"},
		},
		{
			name: "structured pair without zone",
			json: `{"dateTime":"2025-09-21T16:00:00"}`,
			want: DateSpec{Kind: DateKindLocal, DateTime: "2025-09-21T16:00:00"},
		},
		{
			name: "structured all-day",
			json: `{"date":"2025-09-21"}`,
			want: DateSpec{Kind: DateKindAllDay, Date: "2025-09-21"},
		},
		{
			name: "null",
			json: `null`,
			want: DateSpec{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got DateSpec
			if err := json.Unmarshal([]byte(tt.json), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRecurrenceSpecUnmarshal(t *testing.T) {
	var single RecurrenceSpec
	if err := json.Unmarshal([]byte(`"RRULE:FREQ=WEEKLY"`), &single); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if len(single) != 1 || single[0] != "RRULE:FREQ=WEEKLY" {
		t.Errorf("single string: got %v", single)
	}

	var many RecurrenceSpec
	if err := json.Unmarshal([]byte(`["a","b"]`), &many); err != nil {
		t.Fatalf("unmarshal array: %v", err)
	}
	if len(many) != 2 {
		t.Errorf("array: got %v", many)
	}

	var absent RecurrenceSpec
	if err := json.Unmarshal([]byte(`null`), &absent); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if absent != nil {
		t.Errorf("null: got %v", absent)
	}
}

func TestCreateEventRequestLegacyAliases(t *testing.T) {
	body := `{"title":"t","start":"2025-09-21","end":"2025-09-21","desc":"legacy","exDates":["2025-10-05"]}`
	var req CreateEventRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Description != "legacy" {
		t.Errorf("desc alias not honored: %q", req.Description)
	}
	if len(req.ExceptionDates) != 1 || req.ExceptionDates[0] != "2025-10-05" {
		t.Errorf("exDates alias not honored: %v", req.ExceptionDates)
	}
}

func TestValidateMissingFields(t *testing.T) {
	start := DateSpec{Kind: DateKindAllDay, Date: "2025-09-21"}
	tests := []struct {
		name string
		req  CreateEventRequest
	}{
		{"missing title", CreateEventRequest{Start: start, End: start}},
		{"blank title", CreateEventRequest{Title: "  ", Start: start, End: start}},
		{"missing start", CreateEventRequest{Title: "t", End: start}},
		{"missing end", CreateEventRequest{Title: "t", Start: start}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !errors.Is(err, ErrMissingField) {
				t.Errorf("got %v, want ErrMissingField", err)
			}
		})
	}
}

func TestNormalizeDateInstant(t *testing.T) {
	got, err := NormalizeDate(DateSpec{Kind: DateKindInstant, Instant: "2025-09-21T20:00:00.000Z"}, "")
	if err != nil {
		t.Fatalf("NormalizeDate: %v", err)
	}
	want := EventDateTime{DateTime: "2025-09-21T20:00:00Z", TimeZone: DefaultTimeZone}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestNormalizeDateLocalIsNeverReinterpreted(t *testing.T) {
	// Wall-clock round-trip: the literal dateTime string and zone must
	// survive unchanged, never converted to a UTC instant.
	spec := DateSpec{Kind: DateKindLocal, DateTime: "2025-09-21T16:00:00", TimeZone: "America/Indiana/Indianapolis"}
	got, err := NormalizeDate(spec, "UTC")
	if err != nil {
		t.Fatalf("NormalizeDate: %v", err)
	}
	if got.DateTime != "2025-09-21T16:00:00" || got.TimeZone != "America/Indiana/Indianapolis" {
		t.Errorf("local date was reinterpreted: %+v", got)
	}

	// Idempotence: feeding the canonical pair back in changes nothing.
	again, err := NormalizeDate(DateSpec{Kind: DateKindLocal, DateTime: got.DateTime, TimeZone: got.TimeZone}, "UTC")
	if err != nil {
		t.Fatalf("NormalizeDate (again): %v", err)
	}
	if again != got {
		t.Errorf("normalization is not idempotent: %+v vs %+v", again, got)
	}
}

func TestNormalizeDateLocalDefaultZone(t *testing.T) {
	got, err := NormalizeDate(DateSpec{Kind: DateKindLocal, DateTime: "2025-09-21T16:00:00"}, "Europe/Berlin")
	if err != nil {
		t.Fatalf("NormalizeDate: %v", err)
	}
	if got.TimeZone != "Europe/Berlin" {
		t.Errorf("default zone not applied: %+v", got)
	}
}

func TestNormalizeDateInvalid(t *testing.T) {
	_, err := NormalizeDate(DateSpec{Kind: DateKindInstant, Instant: "next tuesday"}, "")
	if !errors.Is(err, ErrInvalidTime) {
		t.Errorf("got %v, want ErrInvalidTime", err)
	}
}

func TestNormalizeDateAllDay(t *testing.T) {
	got, err := NormalizeDate(DateSpec{Kind: DateKindAllDay, Date: "2025-09-21"}, "")
	if err != nil {
		t.Fatalf("NormalizeDate: %v", err)
	}
	if !got.AllDay() || got.Date != "2025-09-21" {
		t.Errorf("got %+v", got)
	}
}

func TestNormalizeRecurrence(t *testing.T) {
	tests := []struct {
		name  string
		lines RecurrenceSpec
		want  []string
	}{
		{
			name:  "lower case with spaces",
			lines: RecurrenceSpec{"rrule: freq=weekly;interval=1;byday=su"},
			want:  []string{"RRULE:FREQ=WEEKLY;INTERVAL=1;BYDAY=SU"},
		},
		{
			name:  "already canonical",
			lines: RecurrenceSpec{"RRULE:FREQ=MONTHLY;BYMONTHDAY=1"},
			want:  []string{"RRULE:FREQ=MONTHLY;BYMONTHDAY=1"},
		},
		{
			name:  "non-rule dropped silently",
			lines: RecurrenceSpec{"not a rule"},
			want:  nil,
		},
		{
			name:  "missing FREQ dropped",
			lines: RecurrenceSpec{"RRULE:INTERVAL=2"},
			want:  nil,
		},
		{
			name:  "mixed keeps only valid",
			lines: RecurrenceSpec{"not a rule", "rrule:freq=daily"},
			want:  []string{"RRULE:FREQ=DAILY"},
		},
		{
			name:  "empty input",
			lines: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeRecurrence(tt.lines, PolicyLenient)
			if err != nil {
				t.Fatalf("NormalizeRecurrence: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNormalizeRecurrenceStrict(t *testing.T) {
	if _, err := NormalizeRecurrence(RecurrenceSpec{"not a rule"}, PolicyStrict); !errors.Is(err, ErrInvalidRecurrence) {
		t.Errorf("strict non-rule: got %v, want ErrInvalidRecurrence", err)
	}
	if _, err := NormalizeRecurrence(RecurrenceSpec{"RRULE:FREQ=BOGUS"}, PolicyStrict); !errors.Is(err, ErrInvalidRecurrence) {
		t.Errorf("strict bad freq: got %v, want ErrInvalidRecurrence", err)
	}
	got, err := NormalizeRecurrence(RecurrenceSpec{"rrule:freq=weekly;byday=mo,we"}, PolicyStrict)
	if err != nil {
		t.Fatalf("strict valid rule: %v", err)
	}
	if len(got) != 1 || got[0] != "RRULE:FREQ=WEEKLY;BYDAY=MO,WE" {
		t.Errorf("strict valid rule: got %v", got)
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy(""); err != nil || p != PolicyLenient {
		t.Errorf("empty: %v %v", p, err)
	}
	if p, err := ParsePolicy("Strict"); err != nil || p != PolicyStrict {
		t.Errorf("strict: %v %v", p, err)
	}
	if _, err := ParsePolicy("maybe"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestBuildExceptionDatesTimed(t *testing.T) {
	start := EventDateTime{DateTime: "2025-09-21T16:00:00", TimeZone: "America/Indiana/Indianapolis"}
	line, ok := BuildExceptionDates([]string{"2025-10-05", "2025-10-12"}, start)
	if !ok {
		t.Fatal("expected an EXDATE line")
	}
	want := "EXDATE;TZID=America/Indiana/Indianapolis:20251005T160000,20251012T160000"
	if line != want {
		t.Errorf("got %q, want %q", line, want)
	}
}

func TestBuildExceptionDatesMinuteOnlyStart(t *testing.T) {
	start := EventDateTime{DateTime: "2025-09-21T16:30", TimeZone: "UTC"}
	line, ok := BuildExceptionDates([]string{"2025-10-05"}, start)
	if !ok {
		t.Fatal("expected an EXDATE line")
	}
	if line != "EXDATE;TZID=UTC:20251005T163000" {
		t.Errorf("got %q", line)
	}
}

func TestBuildExceptionDatesAllDay(t *testing.T) {
	start := EventDateTime{Date: "2025-09-21"}
	line, ok := BuildExceptionDates([]string{"2025-10-05", "2025-10-12"}, start)
	if !ok {
		t.Fatal("expected an EXDATE line")
	}
	if line != "EXDATE;VALUE=DATE:20251005,20251012" {
		t.Errorf("got %q", line)
	}
}

func TestBuildExceptionDatesFiltersMalformed(t *testing.T) {
	start := EventDateTime{DateTime: "2025-09-21T16:00:00", TimeZone: "UTC"}
	line, ok := BuildExceptionDates([]string{"10/05/2025", "2025-10-12", "soon"}, start)
	if !ok {
		t.Fatal("expected an EXDATE line")
	}
	if line != "EXDATE;TZID=UTC:20251012T160000" {
		t.Errorf("got %q", line)
	}

	if _, ok := BuildExceptionDates([]string{"nope"}, start); ok {
		t.Error("expected no line when every date is malformed")
	}
	if _, ok := BuildExceptionDates(nil, start); ok {
		t.Error("expected no line for empty input")
	}
}

func TestNormalizeComposition(t *testing.T) {
	req := &CreateEventRequest{
		Title: "Youth Group",
		Start: DateSpec{Kind: DateKindLocal, DateTime: "2025-09-21T16:00:00", TimeZone: "America/Indiana/Indianapolis"},
		End:   DateSpec{Kind: DateKindLocal, DateTime: "2025-09-21T18:00:00", TimeZone: "America/Indiana/Indianapolis"},
		Recurrence: RecurrenceSpec{
			"rrule: freq=weekly;interval=1;byday=su",
			"not a rule",
		},
		ExceptionDates: []string{"2025-10-05", "2025-10-12"},
	}

	got, err := Normalize(req, "", PolicyLenient)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	wantRecurrence := []string{
		"RRULE:FREQ=WEEKLY;INTERVAL=1;BYDAY=SU",
		"EXDATE;TZID=America/Indiana/Indianapolis:20251005T160000,20251012T160000",
	}
	if len(got.Recurrence) != len(wantRecurrence) {
		t.Fatalf("recurrence: got %v, want %v", got.Recurrence, wantRecurrence)
	}
	for i := range wantRecurrence {
		if got.Recurrence[i] != wantRecurrence[i] {
			t.Errorf("recurrence[%d]: got %q, want %q", i, got.Recurrence[i], wantRecurrence[i])
		}
	}
	if got.Start.DateTime != "2025-09-21T16:00:00" {
		t.Errorf("start was reinterpreted: %+v", got.Start)
	}
}

func TestNormalizeNoRecurrenceMeansNoLines(t *testing.T) {
	req := &CreateEventRequest{
		Title:      "One-off",
		Start:      DateSpec{Kind: DateKindInstant, Instant: "2025-09-21T20:00:00.000Z"},
		End:        DateSpec{Kind: DateKindInstant, Instant: "2025-09-21T21:00:00.000Z"},
		Recurrence: RecurrenceSpec{"not a rule"},
	}

	got, err := Normalize(req, "", PolicyLenient)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(got.Recurrence) != 0 {
		t.Errorf("expected empty recurrence set, got %v", got.Recurrence)
	}
}
