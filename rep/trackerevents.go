/*

Tracker events decoding: replay.tracker.events is a flat stream of
(frame-skip, tick-delta, event-type, data) records read until EOF, each
data payload a self-describing TrackerValue dict. StatGameEvent records
carry a fixed-point encoding in one of their sub-entries that this
decoder reverses during post-processing.

*/

package rep

import "github.com/heroesreplay/hsprot"

// statGameEventFixedPointScale is the fixed-point divisor StatGameEvent
// applies to dict entry 3's sub-entries.
const statGameEventFixedPointScale = 4096

// decodeTrackerEvents decodes replay.tracker.events into r.TrackerEvents.
func decodeTrackerEvents(r *Replay, data []byte) error {
	b := hsprot.NewBitReader(data, true)

	var ticksElapsed uint32
	for !b.EOF() {
		if _, err := b.ReadBytes(3); err != nil { // framing bytes
			return err
		}
		delta, err := readTrackerVarInt(b)
		if err != nil {
			return err
		}
		ticksElapsed += uint32(delta)

		code, err := readTrackerVarInt(b)
		if err != nil {
			return err
		}
		evType := TrackerEventType(code)

		value, err := hsprot.DecodeTrackerValue(b)
		if err != nil {
			return err
		}

		if evType == TrackerEventTypeStatGameEvent {
			rescaleStatGameEvent(value)
		}

		r.TrackerEvents = append(r.TrackerEvents, TrackerEvent{
			EventType:    evType,
			TicksElapsed: ticksElapsed,
			Data:         value,
		})
	}

	return nil
}

// rescaleStatGameEvent reverses StatGameEvent's internal fixed-point
// encoding: if dict entry 3 is a present Optional, every sub-entry's
// dict[1] varint is divided by statGameEventFixedPointScale in place.
func rescaleStatGameEvent(v *hsprot.TrackerValue) {
	entry3, ok := v.DictGet(3)
	if !ok || entry3.Tag != hsprot.TagOptional || entry3.OptionalVal == nil {
		return
	}
	for _, sub := range entry3.OptionalVal.Array() {
		if scaled, ok := sub.DictGet(1); ok && scaled.Tag == hsprot.TagVarInt {
			scaled.VarIntVal /= statGameEventFixedPointScale
		}
	}
}

// readTrackerVarInt reads one zig-zag VarInt directly from the stream,
// the same encoding TrackerValue uses for its own VarInt tag (8-bit
// groups, 7 data bits each, high bit signals continuation), for the
// tick-delta and event-type fields that precede each tracker event's
// TrackerValue payload.
func readTrackerVarInt(b *hsprot.BitReader) (int64, error) {
	var value int64
	for shift := uint(0); ; shift += 7 {
		data, err := b.ReadU8()
		if err != nil {
			return 0, err
		}
		value |= int64(data&0x7f) << shift
		if data&0x80 == 0 {
			if value&0x01 != 0 {
				return -(value >> 1), nil
			}
			return value >> 1, nil
		}
	}
}
