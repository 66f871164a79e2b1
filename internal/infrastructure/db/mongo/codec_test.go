package mongo

import (
	"testing"
	"time"
)

func TestDecimalRoundTrip(t *testing.T) {
	// Values that drift under naive binary float storage.
	for _, v := range []float64{49.99, 2.5, 0.1, 1234.56, 0, 150} {
		dec, err := decimalFromFloat(v)
		if err != nil {
			t.Fatalf("encode %v: %v", v, err)
		}
		got, err := floatFromDecimal(dec)
		if err != nil {
			t.Fatalf("decode %v: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %v: got %v", v, got)
		}
	}
}

func TestDecimalStringForm(t *testing.T) {
	dec, err := decimalFromFloat(49.99)
	if err != nil {
		t.Fatal(err)
	}
	if dec.String() != "49.99" {
		t.Errorf("expected exact decimal form 49.99, got %s", dec.String())
	}
}

func TestTimeRoundTrip(t *testing.T) {
	ref := time.Date(2026, 6, 2, 14, 30, 15, 123456789, time.UTC)

	parsed, err := parseTime(formatTime(ref))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(ref) {
		t.Errorf("round trip: want %v, got %v", ref, parsed)
	}
}

func TestParseTime_WithoutFraction(t *testing.T) {
	parsed, err := parseTime("2026-06-02T14:30:15Z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Second() != 15 {
		t.Errorf("unexpected value: %v", parsed)
	}
}

func TestFormatTime_NormalisesToUTC(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	local := time.Date(2026, 6, 2, 8, 30, 0, 0, loc)

	s := formatTime(local)
	if s != "2026-06-02T14:30:00Z" {
		t.Errorf("expected UTC form, got %s", s)
	}
}
