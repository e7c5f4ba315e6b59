package util

import (
	"testing"
	"time"
)

func TestSecondsToHuman(t *testing.T) {
	cases := map[uint64]string{
		0:      "00s",
		5:      "05s",
		65:     "01m 05s",
		3725:   "01h 02m 05s",
		86399:  "23h 59m 59s",
		259200: "3d 00h 00m 00s",
		273906: "3d 04h 05m 06s",
	}

	for seconds, want := range cases {
		if got := SecondsToHuman(seconds); got != want {
			t.Errorf("SecondsToHuman(%d) = %s, want %s", seconds, got, want)
		}
	}
}

func TestDurationToHuman(t *testing.T) {
	if got := DurationToHuman(9 * 24 * time.Hour); got != "9d 00h 00m 00s" {
		t.Errorf("DurationToHuman(9 days) = %s", got)
	}

	if got := DurationToHuman(1500 * time.Millisecond); got != "01s" {
		t.Errorf("DurationToHuman(1.5s) = %s", got)
	}

	if got := DurationToHuman(-time.Minute); got != "00s" {
		t.Errorf("DurationToHuman(-1m) = %s", got)
	}
}
