package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDate(t *testing.T) {
	got, ok := ParseTime("2024-06-15")
	if !ok {
		t.Fatalf("expected ok")
	}
	if !got.Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("yesterday", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestTruncateDay(t *testing.T) {
	in := time.Date(2024, 6, 15, 23, 59, 59, 5, time.UTC)
	if got := FormatDate(TruncateDay(in)); got != "2024-06-15" {
		t.Fatalf("unexpected day %s", got)
	}
	if TruncateDay(in).Hour() != 0 {
		t.Fatalf("clock not dropped")
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := SplitAndTrim(" SPY , QQQ,,DIA ", ",")
	want := []string{"SPY", "QQQ", "", "DIA"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestParseIntDefault(t *testing.T) {
	if ParseIntDefault(" 12 ", 3) != 12 {
		t.Fatalf("expected 12")
	}
	if ParseIntDefault("x", 3) != 3 {
		t.Fatalf("expected default")
	}
}
