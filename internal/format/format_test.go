package format

import (
	"math"
	"math/big"
	"testing"
	"time"
)

func TestTruncateAddress(t *testing.T) {
	got := TruncateAddress("0x8626f6940E2eb28930eFb4CeF49B2d1F2C9C1199")
	if got != "0x8626...1199" {
		t.Fatalf("unexpected truncation: %s", got)
	}
	if TruncateAddress("") != "" {
		t.Fatalf("empty address should stay empty")
	}
	if TruncateAddress("0x1234") != "0x1234" {
		t.Fatalf("short address should not be truncated")
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, time.March, 5, 13, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "Mar 5, 2024" {
		t.Fatalf("unexpected date: %s", got)
	}
}

func TestRemainingDays(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := RemainingDays(now, now); got != 0 {
		t.Fatalf("deadline at now: got %d", got)
	}
	if got := RemainingDays(now.Add(-72*time.Hour), now); got != 0 {
		t.Fatalf("past deadline: got %d", got)
	}
	if got := RemainingDays(now.Add(time.Minute), now); got != 1 {
		t.Fatalf("one minute left: got %d", got)
	}
	if got := RemainingDays(now.Add(48*time.Hour), now); got != 2 {
		t.Fatalf("exactly two days: got %d", got)
	}
	if got := RemainingDays(now.Add(49*time.Hour), now); got != 3 {
		t.Fatalf("just over two days: got %d", got)
	}
}

func TestParseAndFormatEther(t *testing.T) {
	wei, err := ParseEther("2.8")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want, _ := new(big.Int).SetString("2800000000000000000", 10)
	if wei.Cmp(want) != 0 {
		t.Fatalf("wei mismatch: %s", wei)
	}
	if got := FormatEther(wei); got != "2.8" {
		t.Fatalf("format mismatch: %s", got)
	}

	five, err := ParseEther("5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := FormatEther(five); got != "5.0" {
		t.Fatalf("format whole: %s", got)
	}

	oneWei, err := ParseEther("0.000000000000000001")
	if err != nil {
		t.Fatalf("parse smallest unit: %v", err)
	}
	if oneWei.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("smallest unit mismatch: %s", oneWei)
	}
	if got := FormatEther(oneWei); got != "0.000000000000000001" {
		t.Fatalf("format smallest unit: %s", got)
	}

	if got, err := ParseEther(".5"); err != nil || FormatEther(got) != "0.5" {
		t.Fatalf("leading dot: %v %v", got, err)
	}
}

func TestParseEtherInvalid(t *testing.T) {
	for _, input := range []string{"", "-1", "abc", "1.2.3", ".", "1.0000000000000000001", "1e18"} {
		if _, err := ParseEther(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestProgress(t *testing.T) {
	if got := Progress("2.1", "2.8"); math.Abs(got-75) > 1e-9 {
		t.Fatalf("expected 75, got %v", got)
	}
	if got := Progress("12", "10"); got != 100 {
		t.Fatalf("overfunded should clamp, got %v", got)
	}
	if got := Progress("0", "10"); got != 0 {
		t.Fatalf("nothing raised, got %v", got)
	}
	if got := Progress("1", "0"); got != 0 {
		t.Fatalf("zero goal, got %v", got)
	}
	if got := Progress("1", "oops"); got != 0 {
		t.Fatalf("bad goal, got %v", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(58.18); got != "58%" {
		t.Fatalf("unexpected percent: %s", got)
	}
	if got := Percent(90.67); got != "91%" {
		t.Fatalf("unexpected percent: %s", got)
	}
}
