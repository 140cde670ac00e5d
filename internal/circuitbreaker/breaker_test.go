package circuitbreaker

import (
	"testing"
	"time"
)

func TestBreaker_ClosedByDefault(t *testing.T) {
	b := New(3, time.Second)

	if !b.Allow("alerts") {
		t.Error("Expected new key to be allowed")
	}
	if b.State("alerts") != StateClosed {
		t.Errorf("Expected closed state, got %s", b.State("alerts"))
	}
}

func TestBreaker_TripsAfterThreshold(t *testing.T) {
	b := New(3, time.Minute)

	b.RecordFailure("alerts")
	b.RecordFailure("alerts")
	if b.State("alerts") != StateClosed {
		t.Error("Should stay closed below threshold")
	}

	b.RecordFailure("alerts")
	if b.State("alerts") != StateOpen {
		t.Errorf("Expected open after 3 failures, got %s", b.State("alerts"))
	}
	if b.Allow("alerts") {
		t.Error("Open circuit should reject requests")
	}
}

func TestBreaker_KeysAreIndependent(t *testing.T) {
	b := New(1, time.Minute)

	b.RecordFailure("alerts")
	if b.State("alerts") != StateOpen {
		t.Fatal("Expected alerts circuit open")
	}
	if !b.Allow("stats") {
		t.Error("stats circuit should be unaffected")
	}
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	b := New(1, 10*time.Millisecond)

	b.RecordFailure("alerts")
	if b.Allow("alerts") {
		t.Fatal("Expected rejection while open")
	}

	time.Sleep(20 * time.Millisecond)

	// First request after openDuration is the probe.
	if !b.Allow("alerts") {
		t.Fatal("Expected probe to be allowed after open duration")
	}
	if b.State("alerts") != StateHalfOpen {
		t.Errorf("Expected half-open, got %s", b.State("alerts"))
	}

	// Second concurrent request is rejected until the probe completes.
	if b.Allow("alerts") {
		t.Error("Expected rejection while probing")
	}
}

func TestBreaker_ProbeSuccessCloses(t *testing.T) {
	b := New(1, 10*time.Millisecond)

	b.RecordFailure("alerts")
	time.Sleep(20 * time.Millisecond)
	b.Allow("alerts") // probe
	b.RecordSuccess("alerts")

	if b.State("alerts") != StateClosed {
		t.Errorf("Expected closed after successful probe, got %s", b.State("alerts"))
	}
	if !b.Allow("alerts") {
		t.Error("Closed circuit should allow requests")
	}
}

func TestBreaker_ProbeFailureReopens(t *testing.T) {
	b := New(1, 10*time.Millisecond)

	b.RecordFailure("alerts")
	time.Sleep(20 * time.Millisecond)
	b.Allow("alerts") // probe
	b.RecordFailure("alerts")

	if b.State("alerts") != StateOpen {
		t.Errorf("Expected open after failed probe, got %s", b.State("alerts"))
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New(3, time.Minute)

	b.RecordFailure("alerts")
	b.RecordFailure("alerts")
	b.RecordSuccess("alerts")
	b.RecordFailure("alerts")
	b.RecordFailure("alerts")

	if b.State("alerts") != StateClosed {
		t.Error("Success should reset the consecutive failure count")
	}
}

func TestState_String(t *testing.T) {
	if StateClosed.String() != "closed" || StateOpen.String() != "open" || StateHalfOpen.String() != "half_open" {
		t.Error("Unexpected state names")
	}
	if State(99).String() != "unknown" {
		t.Error("Expected unknown for invalid state")
	}
}
