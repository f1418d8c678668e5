package domain

import (
	"testing"
)

func TestValidationOutcomeFirstReasonWins(t *testing.T) {
	var o ValidationOutcome
	if o.Cancelled() {
		t.Fatal("fresh outcome must not be cancelled")
	}

	o.Cancel("first")
	o.Cancel("second")

	if !o.Cancelled() || o.Reason() != "first" {
		t.Fatalf("got cancelled=%v reason=%q, want first", o.Cancelled(), o.Reason())
	}
}

func TestSanitizationOutcomeCommitIsIdempotent(t *testing.T) {
	o := NewSanitizationOutcome("raw text")
	if o.Final() != "raw text" {
		t.Fatalf("Final() before commit = %q", o.Final())
	}

	o.Commit("first candidate")
	o.Commit("second candidate")

	if o.Final() != "first candidate" {
		t.Fatalf("Final() = %q, want first candidate", o.Final())
	}
	if o.Raw() != "raw text" {
		t.Fatalf("Raw() changed: %q", o.Raw())
	}
}

func TestSanitizationOutcomeCommitEmptyStillCounts(t *testing.T) {
	o := NewSanitizationOutcome("raw")
	o.Commit("")
	o.Commit("late")
	if !o.Committed() || o.Final() != "" {
		t.Fatalf("Final() = %q, want empty committed value", o.Final())
	}
}

func TestAttemptKindFollowsPayload(t *testing.T) {
	tests := []struct {
		payload AttemptPayload
		want    ChatKind
	}{
		{nil, KindVerbal},
		{VerbalPayload{}, KindVerbal},
		{VisualPayload{}, KindVisual},
		{AnnouncementPayload{Sender: "Central"}, KindAnnouncement},
		{OOCPayload{}, KindOOC},
		{RadioPayload{Frequency: "1459"}, KindRadio},
	}
	for _, tt := range tests {
		a := ChatAttempt{Payload: tt.payload}
		if got := a.Kind(); got != tt.want {
			t.Errorf("Kind() = %q, want %q", got, tt.want)
		}
		if PayloadForKind(tt.want).Kind() != tt.want {
			t.Errorf("PayloadForKind(%q) mismatch", tt.want)
		}
	}
}

func TestRecordCloneIsDeep(t *testing.T) {
	target := ActorID(7)
	r := &ChatRecord{ID: 1, Text: "hi", Target: &target}
	c := r.Clone()
	*c.Target = 9
	c.Text = "changed"

	if *r.Target != 7 || r.Text != "hi" {
		t.Fatalf("clone shares state with original: %+v", r)
	}
}

func TestPositionDistance(t *testing.T) {
	a := Position{MapID: 1, X: 0, Y: 0}
	if d, ok := a.Distance(Position{MapID: 1, X: 3, Y: 4}); !ok || d != 5 {
		t.Fatalf("Distance = %v,%v want 5,true", d, ok)
	}
	if _, ok := a.Distance(Position{MapID: 2}); ok {
		t.Fatal("different maps must not be comparable")
	}
}

func TestChannelWhisper(t *testing.T) {
	whisper := ChannelPrototype{Range: 5, ClearRange: 2}
	local := ChannelPrototype{Range: 10}
	if !whisper.Whisper() || local.Whisper() {
		t.Fatal("whisper detection is wrong")
	}
	if !(ChannelPrototype{Kind: KindOOC}).EntityIndependent() {
		t.Fatal("ooc channel must be entity independent")
	}
}

func TestEntityUnderstands(t *testing.T) {
	e := Entity{Language: "common", Known: []string{"canilunzt"}}
	if !e.Understands("") || !e.Understands("common") || !e.Understands("canilunzt") {
		t.Fatal("entity should understand own and known languages")
	}
	if e.Understands("sinta") {
		t.Fatal("entity must not understand unknown language")
	}
}
