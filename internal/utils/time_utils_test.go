package utils

import (
	"testing"
	"time"
)

func TestNow(t *testing.T) {
	now := Now()
	if now.Location() != time.UTC {
		t.Errorf("Now() should be in UTC, but got %s", now.Location())
	}
	if time.Since(now) > time.Second {
		t.Errorf("Now() is not returning the current time")
	}
}

func TestNowPtr(t *testing.T) {
	nowPtr := NowPtr()
	if nowPtr == nil {
		t.Fatal("NowPtr() returned nil")
	}
	if nowPtr.Location() != time.UTC {
		t.Errorf("NowPtr() should be in UTC, but got %s", nowPtr.Location())
	}
}

func TestParseOriginDate_RFC1123Z(t *testing.T) {
	input := "Mon, 02 Jan 2006 15:04:05 -0700"
	dt, err := ParseOriginDate(input)
	if err != nil {
		t.Fatalf("ParseOriginDate returned an error for a valid RFC1123Z header: %v", err)
	}
	if dt.Location() != time.UTC {
		t.Errorf("ParseOriginDate should normalize to UTC, got %s", dt.Location())
	}
}

func TestParseOriginDate_CustomLayout(t *testing.T) {
	dt, err := ParseOriginDate("2006-01-02 15:04:05")
	if err != nil {
		t.Fatalf("ParseOriginDate failed for custom layout: %v", err)
	}
	if dt.Year() != 2006 || dt.Month() != time.January || dt.Day() != 2 {
		t.Errorf("unexpected parsed date: %v", dt)
	}
}

func TestParseOriginDate_Invalid(t *testing.T) {
	if _, err := ParseOriginDate(""); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := ParseOriginDate("not a date"); err == nil {
		t.Error("expected error for unparseable input")
	}
}

func TestIsInFuture(t *testing.T) {
	if !IsInFuture(time.Now().Add(time.Hour)) {
		t.Error("expected future timestamp to be in the future")
	}
	if IsInFuture(time.Now().Add(-time.Hour)) {
		t.Error("expected past timestamp to not be in the future")
	}
}
