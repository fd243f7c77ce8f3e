package date

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNew_Normalizes(t *testing.T) {
	// Out-of-range day values roll over into the next month.
	got := New(2025, time.January, 32)
	want := New(2025, time.February, 1)
	if got != want {
		t.Errorf("New(2025, January, 32) = %v, want %v", got, want)
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-07-01", want: New(2025, time.July, 1)},
		{in: "2025-7-1", want: New(2025, time.July, 1)},
		{in: "2025-12-31", want: New(2025, time.December, 31)},
		{in: "not-a-date", wantErr: true},
		{in: "2025/07/01", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := Parse(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestOrdering(t *testing.T) {
	a := MustParse("2025-03-01")
	b := MustParse("2025-03-02")

	if !a.Before(b) {
		t.Errorf("%v should be before %v", a, b)
	}
	if !b.After(a) {
		t.Errorf("%v should be after %v", b, a)
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("Compare is inconsistent for %v and %v", a, b)
	}
}

func TestAdd_CrossesMonth(t *testing.T) {
	d := MustParse("2025-01-30").Add(3)
	if want := MustParse("2025-02-02"); d != want {
		t.Errorf("Add(3) = %v, want %v", d, want)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := MustParse("2025-08-15")
	bytes, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(bytes) != `"2025-08-15"` {
		t.Errorf("Marshal() = %s, want %q", bytes, "2025-08-15")
	}
	var back Date
	if err := json.Unmarshal(bytes, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}
}

func TestFromTime_Truncates(t *testing.T) {
	ts := time.Date(2025, time.June, 3, 23, 59, 59, 0, time.UTC)
	if got, want := FromTime(ts), New(2025, time.June, 3); got != want {
		t.Errorf("FromTime(%v) = %v, want %v", ts, got, want)
	}
}
