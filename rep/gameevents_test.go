package rep

import (
	"errors"
	"testing"

	"github.com/heroesreplay/hsprot"
)

func TestCmdFlagsWidth(t *testing.T) {
	cases := []struct {
		build, major uint32
		want         uint
	}{
		{build: 30000, major: 1, want: 22},
		{build: 34000, major: 1, want: 23},
		{build: 37500, major: 1, want: 24},
		{build: 40000, major: 1, want: 25},
		{build: 43000, major: 1, want: 24},
		{build: 45000, major: 1, want: 26},
		{build: 50000, major: 1, want: 25},
		{build: 50000, major: 2, want: 26},
	}
	for _, c := range cases {
		if got := cmdFlagsWidth(c.build, c.major); got != c.want {
			t.Errorf("cmdFlagsWidth(%d, %d) = %d, want %d", c.build, c.major, got, c.want)
		}
	}
}

func TestSelectionArrayWidths(t *testing.T) {
	if l, i := selectionArrayWidths(1); l != 9 || i != 9 {
		t.Errorf("major 1: got (%d, %d), want (9, 9)", l, i)
	}
	if l, i := selectionArrayWidths(2); l != 6 || i != 5 {
		t.Errorf("major 2: got (%d, %d), want (6, 5)", l, i)
	}
}

func TestGameEventTypeByCode(t *testing.T) {
	if _, ok := gameEventTypeByCode(0); ok {
		t.Error("code 0 should be unassigned")
	}
	if _, ok := gameEventTypeByCode(127); ok {
		t.Error("code 127 should be unassigned")
	}
	got, ok := gameEventTypeByCode(uint64(GameEventTypeDropOurselves))
	if !ok || got != GameEventTypeDropOurselves {
		t.Errorf("got (%v, %v), want (DropOurselves, true)", got, ok)
	}
}

// writeGameEventHeader writes the tick-delta/addressed-player/type-code
// header every game event record starts with, using the smallest
// tick-delta width (multiplier 0, a 6-bit delta).
func writeGameEventHeader(w *bitWriter, delta uint64, playerIdx uint64, code uint64) {
	w.writeBits(0, 2) // multiplier -> width 6
	w.writeBits(delta, 6)
	w.writeBits(playerIdx, 5)
	w.writeBits(code, 7)
}

func TestDecodeGameEventsNoPayloadEvent(t *testing.T) {
	r := &Replay{Build: 50000, VersionMajor: 2}
	w := &bitWriter{}
	writeGameEventHeader(w, 5, 16, uint64(GameEventTypeDropOurselves))
	data := w.bytes()

	if err := decodeGameEvents(r, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.GameEvents) != 1 {
		t.Fatalf("got %d events, want 1", len(r.GameEvents))
	}
	ev := r.GameEvents[0]
	if ev.EventType != GameEventTypeDropOurselves {
		t.Errorf("got type %v, want DropOurselves", ev.EventType)
	}
	if ev.TicksElapsed != 5 {
		t.Errorf("got ticksElapsed %d, want 5", ev.TicksElapsed)
	}
	if ev.PlayerRef != -1 {
		t.Errorf("got playerRef %d, want -1 (global)", ev.PlayerRef)
	}
	if ev.Data != nil {
		t.Errorf("expected nil payload, got %+v", ev.Data)
	}
}

func TestDecodeGameEventsUnknownCodeIsStructureError(t *testing.T) {
	r := &Replay{Build: 50000, VersionMajor: 2}
	w := &bitWriter{}
	writeGameEventHeader(w, 1, 0, 127)
	data := w.bytes()

	err := decodeGameEvents(r, data)
	var herr *hsprot.Error
	if !errors.As(err, &herr) || herr.Kind != hsprot.StructureError {
		t.Fatalf("got %v, want StructureError", err)
	}
}

func TestDecodeGameEventsEOFMidEventIsReaderError(t *testing.T) {
	r := &Replay{Build: 50000, VersionMajor: 2}
	w := &bitWriter{}
	// CommandManagerReset's payload needs a trailing u32 that is never
	// written, so the decoder must run out of buffer mid-payload.
	writeGameEventHeader(w, 1, 0, uint64(GameEventTypeCommandManagerReset))
	data := w.bytes()

	err := decodeGameEvents(r, data)
	var herr *hsprot.Error
	if !errors.As(err, &herr) || herr.Kind != hsprot.ReaderError {
		t.Fatalf("got %v, want ReaderError", err)
	}
}

func TestDecodeGameEventsMultipleEventsAccumulateTicks(t *testing.T) {
	r := &Replay{Build: 50000, VersionMajor: 2}
	w := &bitWriter{}
	writeGameEventHeader(w, 3, 16, uint64(GameEventTypeDropOurselves))
	w.align()
	writeGameEventHeader(w, 4, 16, uint64(GameEventTypeDropOurselves))
	data := w.bytes()

	if err := decodeGameEvents(r, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.GameEvents) != 2 {
		t.Fatalf("got %d events, want 2", len(r.GameEvents))
	}
	if r.GameEvents[0].TicksElapsed != 3 {
		t.Errorf("first event ticksElapsed = %d, want 3", r.GameEvents[0].TicksElapsed)
	}
	if r.GameEvents[1].TicksElapsed != 7 {
		t.Errorf("second event ticksElapsed = %d, want 7 (cumulative)", r.GameEvents[1].TicksElapsed)
	}
}
