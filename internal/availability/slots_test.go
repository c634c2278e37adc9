package availability

import (
	"testing"
	"time"
)

// clocks renders minute offsets for readable failure messages.
func clocks(starts []int) []string {
	out := make([]string, len(starts))
	for i, s := range starts {
		out[i] = FormatClock(s)
	}
	return out
}

func TestGenerateStarts(t *testing.T) {
	// 2025-03-03 is a Monday; "now" is two days earlier so lead-time rules
	// stay out of the way unless a case moves the clock.
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	window := []Window{{Open: 12 * 60, Close: 22 * 60, LastRes: 21 * 60}}

	tests := []struct {
		name string
		in   GenerateInput
		want []string
	}{
		{
			name: "last reservation bound is inclusive",
			in: GenerateInput{
				Windows:         []Window{{Open: 20 * 60, Close: 22 * 60, LastRes: 21 * 60}},
				Granularity:     30,
				DurationMinutes: 90,
				Date:            date, Now: now, MaxLeadDays: 30,
			},
			want: []string{"20:00", "20:30", "21:00"},
		},
		{
			name: "blackout removes slots whose service interval touches it",
			in: GenerateInput{
				Windows:         window,
				Blackouts:       []Span{{From: 15 * 60, To: 16 * 60}},
				Granularity:     60,
				DurationMinutes: 60,
				Date:            date, Now: now, MaxLeadDays: 30,
			},
			// 14:00 ends exactly at 15:00 and survives; 15:00 is inside.
			want: []string{"12:00", "13:00", "14:00", "16:00", "17:00", "18:00", "19:00", "20:00", "21:00"},
		},
		{
			name: "partial blackout overlap still excludes",
			in: GenerateInput{
				Windows:         []Window{{Open: 12 * 60, Close: 15 * 60, LastRes: 14 * 60}},
				Blackouts:       []Span{{From: 13*60 + 15, To: 13*60 + 45}},
				Granularity:     30,
				DurationMinutes: 60,
				Date:            date, Now: now, MaxLeadDays: 30,
			},
			// 12:30, 13:00 and 13:30 all serve through part of the range.
			want: []string{"12:00", "14:00"},
		},
		{
			name: "duplicate starts across misconfigured shifts deduplicate",
			in: GenerateInput{
				Windows: []Window{
					{Open: 12 * 60, Close: 15 * 60, LastRes: 14 * 60},
					{Open: 13 * 60, Close: 16 * 60, LastRes: 15 * 60},
				},
				Granularity:     60,
				DurationMinutes: 60,
				Date:            date, Now: now, MaxLeadDays: 30,
			},
			want: []string{"12:00", "13:00", "14:00", "15:00"},
		},
		{
			name: "today keeps only starts past the minimum lead",
			in: GenerateInput{
				Windows:         window,
				Granularity:     60,
				DurationMinutes: 60,
				Date:            time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
				Now:             time.Date(2025, 3, 1, 13, 10, 0, 0, time.UTC),
				MinLeadMinutes:  60,
				MaxLeadDays:     30,
			},
			// now+lead = 14:10, so 15:00 is the first surviving start.
			want: []string{"15:00", "16:00", "17:00", "18:00", "19:00", "20:00", "21:00"},
		},
		{
			name: "beyond max lead short-circuits",
			in: GenerateInput{
				Windows:         window,
				Granularity:     30,
				DurationMinutes: 60,
				Date:            date, Now: now, MaxLeadDays: 1,
			},
			want: nil,
		},
		{
			name: "past dates yield nothing",
			in: GenerateInput{
				Windows:         window,
				Granularity:     30,
				DurationMinutes: 60,
				Date:            time.Date(2025, 2, 27, 0, 0, 0, 0, time.UTC),
				Now:             now, MaxLeadDays: 30,
			},
			want: nil,
		},
		{
			name: "closed day",
			in: GenerateInput{
				Granularity:     30,
				DurationMinutes: 60,
				Date:            date, Now: now, MaxLeadDays: 30,
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clocks(GenerateStarts(tt.in))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestGenerateStartsAscendingAndUnique(t *testing.T) {
	in := GenerateInput{
		Windows: []Window{
			{Open: 18 * 60, Close: 23 * 60, LastRes: 22 * 60},
			{Open: 12 * 60, Close: 15 * 60, LastRes: 14 * 60},
		},
		Granularity:     15,
		DurationMinutes: 90,
		Date:            time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		Now:             time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		MaxLeadDays:     30,
	}
	starts := GenerateStarts(in)
	for i := 1; i < len(starts); i++ {
		if starts[i] <= starts[i-1] {
			t.Fatalf("starts not strictly ascending at %d: %v", i, clocks(starts))
		}
	}
}

func TestGenerateStartsOnSpringForwardDay(t *testing.T) {
	// Amsterdam skips 02:00-03:00 on 2025-03-30, so midnight plus twelve
	// hours of elapsed time is 13:00 on the wall clock.  Slot instants must
	// follow the wall clock: with "now" at 12:30 local, the 12:00 slot is
	// already in the past.
	ams, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	date := time.Date(2025, 3, 30, 0, 0, 0, 0, ams)
	now := time.Date(2025, 3, 30, 12, 30, 0, 0, ams)

	got := clocks(GenerateStarts(GenerateInput{
		Windows:         []Window{{Open: 12 * 60, Close: 15 * 60, LastRes: 14 * 60}},
		Granularity:     60,
		DurationMinutes: 60,
		Date:            date, Now: now, MaxLeadDays: 30,
	}))
	want := []string{"13:00", "14:00"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if WithinLeadWindow(date, 12*60, now, 0, 30) {
		t.Errorf("12:00 local already passed and should fail the lead check")
	}
}

func TestWithinLeadWindowIsTimezoneLocal(t *testing.T) {
	// 23:30 UTC on March 2nd is already March 3rd in Tokyo, so a March 10th
	// booking sits exactly at a 7-day horizon there.
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	now := time.Date(2025, 3, 2, 23, 30, 0, 0, time.UTC)
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, tokyo)

	if !WithinLeadWindow(date, 12*60, now, 0, 7) {
		t.Errorf("date at the horizon should be within a 7-day lead window")
	}
	if WithinLeadWindow(date, 12*60, now, 0, 6) {
		t.Errorf("date one day past a 6-day horizon should be rejected")
	}
}
