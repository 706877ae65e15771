/*

Game events decoding: replay.game.events is a flat stream of
(tick-delta, addressed-player, event-type, payload) records, byte-aligned
after each one. Most payload shapes are small fixed-width field groups;
a handful (Cmd, SelectionDelta, ControlGroupUpdate) are gated by build
number or major version the same way Init's slot table is. Payloads are
represented as the same self-describing TrackerValue tree used
elsewhere, rather than one Go struct per event type, so GameEvent.Data
stays a single uniform field across all ~40 shapes.

*/

package rep

import "github.com/heroesreplay/hsprot"

func tvU8(v byte) *hsprot.TrackerValue  { return &hsprot.TrackerValue{Tag: hsprot.TagU8, U8Val: v} }
func tvU32(v uint32) *hsprot.TrackerValue {
	return &hsprot.TrackerValue{Tag: hsprot.TagU32, U32Val: v}
}
func tvVarInt(v int64) *hsprot.TrackerValue {
	return &hsprot.TrackerValue{Tag: hsprot.TagVarInt, VarIntVal: v}
}
func tvBlob(s string) *hsprot.TrackerValue {
	return &hsprot.TrackerValue{Tag: hsprot.TagBlob, BlobVal: []byte(s)}
}
func tvBool(v bool) *hsprot.TrackerValue {
	if v {
		return tvU8(1)
	}
	return tvU8(0)
}
func tvArray(vs ...*hsprot.TrackerValue) *hsprot.TrackerValue {
	return &hsprot.TrackerValue{Tag: hsprot.TagArray, ArrayVal: vs}
}
func tvDict(entries ...hsprot.DictEntry) *hsprot.TrackerValue {
	return &hsprot.TrackerValue{Tag: hsprot.TagDict, DictVal: entries}
}

// tvOptional wraps v as a present Optional, or builds an absent Optional
// if v is nil.
func tvOptional(v *hsprot.TrackerValue) *hsprot.TrackerValue {
	return &hsprot.TrackerValue{Tag: hsprot.TagOptional, OptionalVal: v}
}

func tvChoice(tag int32, v *hsprot.TrackerValue) *hsprot.TrackerValue {
	return &hsprot.TrackerValue{Tag: hsprot.TagChoice, ChoiceVal: hsprot.Choice{Tag: tag, Value: v}}
}

func dictEntry(key int32, v *hsprot.TrackerValue) hsprot.DictEntry {
	return hsprot.DictEntry{Key: key, Value: v}
}

// decodeGameEvents decodes replay.game.events into r.GameEvents. Must run
// after decodeMetadata (every build/major gate below reads r.Build /
// r.VersionMajor).
func decodeGameEvents(r *Replay, data []byte) error {
	b := hsprot.NewBitReader(data, true)

	var ticksElapsed uint32
	for !b.EOF() {
		multiplier, err := b.ReadBits(2)
		if err != nil {
			return err
		}
		width := 6 + uint(multiplier<<3)
		delta, err := b.ReadBits(width)
		if err != nil {
			return err
		}
		ticksElapsed += uint32(delta)

		playerIdx, err := b.ReadBits(5)
		if err != nil {
			return err
		}
		playerRef := -1
		if playerIdx != 16 {
			playerRef = int(playerIdx)
		}

		code, err := b.ReadBits(7)
		if err != nil {
			return err
		}
		evType, ok := gameEventTypeByCode(code)
		if !ok {
			return hsprot.Errorf(hsprot.StructureError, "hsprot: unknown game event type code %d", code)
		}

		payload, err := decodeGameEventPayload(r, b, evType)
		if err != nil {
			return err
		}
		b.Align()

		r.GameEvents = append(r.GameEvents, GameEvent{
			EventType:    evType,
			TicksElapsed: ticksElapsed,
			PlayerRef:    playerRef,
			Data:         payload,
		})
	}

	return nil
}

// decodePoint3d reads the x/y/z triple shared by several game-event
// payloads: two 20-bit unsigned coordinates and a signed i32 height.
func decodePoint3d(b *hsprot.BitReader) (*hsprot.TrackerValue, error) {
	x, err := b.ReadBits(20)
	if err != nil {
		return nil, err
	}
	y, err := b.ReadBits(20)
	if err != nil {
		return nil, err
	}
	z, err := b.ReadI32()
	if err != nil {
		return nil, err
	}
	return tvDict(
		dictEntry(0, tvU32(uint32(x))),
		dictEntry(1, tvU32(uint32(y))),
		dictEntry(2, tvVarInt(int64(z))),
	), nil
}

// decodeTargetUnit reads the unit-targeting payload shared by Cmd,
// CmdUpdateTargetUnit and GameCheat.
func decodeTargetUnit(b *hsprot.BitReader) (*hsprot.TrackerValue, error) {
	flags, err := b.ReadU16()
	if err != nil {
		return nil, err
	}
	timer, err := b.ReadU8()
	if err != nil {
		return nil, err
	}
	tag, err := b.ReadU32()
	if err != nil {
		return nil, err
	}
	snapshotUnitLink, err := b.ReadU16()
	if err != nil {
		return nil, err
	}

	var controlPlayer *hsprot.TrackerValue
	if err := readOptional(b, func() error {
		v, err := b.ReadBits(4)
		if err != nil {
			return err
		}
		controlPlayer = tvU32(uint32(v))
		return nil
	}); err != nil {
		return nil, err
	}

	var upkeepPlayer *hsprot.TrackerValue
	if err := readOptional(b, func() error {
		v, err := b.ReadBits(4)
		if err != nil {
			return err
		}
		upkeepPlayer = tvU32(uint32(v))
		return nil
	}); err != nil {
		return nil, err
	}

	point, err := decodePoint3d(b)
	if err != nil {
		return nil, err
	}

	return tvDict(
		dictEntry(0, tvU32(uint32(flags))),
		dictEntry(1, tvU32(uint32(timer))),
		dictEntry(2, tvU32(tag)),
		dictEntry(3, tvU32(uint32(snapshotUnitLink))),
		dictEntry(4, tvOptional(controlPlayer)),
		dictEntry(5, tvOptional(upkeepPlayer)),
		dictEntry(6, point),
	), nil
}

// cmdFlagsWidth returns the bit width of Cmd's cmd_flags field, a
// build/major-gated schedule matched in priority order.
func cmdFlagsWidth(build, major uint32) uint {
	switch {
	case build < 33684:
		return 22
	case build < 37117:
		return 23
	case build < 38236:
		return 24
	case build < 42958:
		return 25
	case build < 44256:
		return 24
	case build <= 45635:
		return 26
	case major < 2:
		return 25
	default:
		return 26
	}
}

// decodeGameEventPayload dispatches on evType and decodes the bit layout
// that follows the event header, returning the decoded TrackerValue (nil
// when the variant has no payload worth retaining on the model).
func decodeGameEventPayload(r *Replay, b *hsprot.BitReader, evType GameEventType) (*hsprot.TrackerValue, error) {
	switch evType {
	case GameEventTypeDropOurselves,
		GameEventTypeStartGame,
		GameEventTypeUserFinishedLoadingSync,
		GameEventTypeTriggerSkipped:
		return nil, nil

	case GameEventTypeCommandManagerReset:
		if _, err := b.ReadU32(); err != nil { // sequence number, not retained
			return nil, err
		}
		return nil, nil

	case GameEventTypeUserOptions:
		flags := make([]*hsprot.TrackerValue, 10)
		for i := range flags {
			v, err := b.ReadBool()
			if err != nil {
				return nil, err
			}
			flags[i] = tvBool(v)
		}
		baseBuildNum, err := b.ReadU32()
		if err != nil {
			return nil, err
		}
		buildNum, err := b.ReadU32()
		if err != nil {
			return nil, err
		}
		versionFlags, err := b.ReadU32()
		if err != nil {
			return nil, err
		}
		hotkeyProfile, err := b.ReadLenPrefixedString(9)
		if err != nil {
			return nil, err
		}
		return tvDict(
			dictEntry(0, tvArray(flags...)),
			dictEntry(1, tvU32(baseBuildNum)),
			dictEntry(2, tvU32(buildNum)),
			dictEntry(3, tvU32(versionFlags)),
			dictEntry(4, tvBlob(hotkeyProfile)),
		), nil

	case GameEventTypeBankFile:
		name, err := b.ReadLenPrefixedString(7)
		if err != nil {
			return nil, err
		}
		return tvDict(dictEntry(0, tvBlob(name))), nil

	case GameEventTypeBankSection:
		name, err := b.ReadLenPrefixedString(6)
		if err != nil {
			return nil, err
		}
		return tvDict(dictEntry(0, tvBlob(name))), nil

	case GameEventTypeBankKey:
		section, err := b.ReadLenPrefixedString(6)
		if err != nil {
			return nil, err
		}
		kind, err := b.ReadU32()
		if err != nil {
			return nil, err
		}
		name, err := b.ReadLenPrefixedString(7)
		if err != nil {
			return nil, err
		}
		return tvDict(
			dictEntry(0, tvBlob(section)),
			dictEntry(1, tvU32(kind)),
			dictEntry(2, tvBlob(name)),
		), nil

	case GameEventTypeBankSignature:
		length, err := b.ReadVarUint(5)
		if err != nil {
			return nil, err
		}
		signature := make([]*hsprot.TrackerValue, length)
		for i := range signature {
			v, err := b.ReadU8()
			if err != nil {
				return nil, err
			}
			signature[i] = tvU8(v)
		}
		toonHandle, err := b.ReadLenPrefixedString(7)
		if err != nil {
			return nil, err
		}
		return tvDict(
			dictEntry(0, tvArray(signature...)),
			dictEntry(1, tvBlob(toonHandle)),
		), nil

	case GameEventTypeCameraSave:
		if _, err := b.ReadBits(3); err != nil { // which
			return nil, err
		}
		if _, err := b.ReadBits(16); err != nil { // x
			return nil, err
		}
		if _, err := b.ReadBits(16); err != nil { // y
			return nil, err
		}
		return nil, nil

	case GameEventTypeGameCheat:
		tag, err := b.ReadBits(2)
		if err != nil {
			return nil, err
		}
		var inner *hsprot.TrackerValue
		switch tag {
		case 1:
			inner, err = decodePoint3d(b)
		case 2:
			inner, err = decodeTargetUnit(b)
		}
		if err != nil {
			return nil, err
		}
		t, err := b.ReadU32()
		if err != nil {
			return nil, err
		}
		verb, err := b.ReadLenPrefixedString(10)
		if err != nil {
			return nil, err
		}
		arguments, err := b.ReadLenPrefixedString(10)
		if err != nil {
			return nil, err
		}
		return tvDict(
			dictEntry(0, tvChoice(int32(tag), inner)),
			dictEntry(1, tvU32(t)),
			dictEntry(2, tvBlob(verb)),
			dictEntry(3, tvBlob(arguments)),
		), nil

	case GameEventTypeCmd:
		return decodeCmd(r, b)

	case GameEventTypeSelectionDelta:
		return decodeSelectionDelta(r, b)

	case GameEventTypeControlGroupUpdate:
		return decodeControlGroupUpdate(r, b)

	case GameEventTypeSelectionSyncCheck:
		lengthBits, indexBits := selectionArrayWidths(r.VersionMajor)
		if _, err := b.ReadBits(4); err != nil { // controlGroupId
			return nil, err
		}
		for _, w := range [3]uint{lengthBits, lengthBits, indexBits} {
			if _, err := b.ReadBits(w); err != nil {
				return nil, err
			}
		}
		for i := 0; i < 3; i++ {
			if _, err := b.ReadU32(); err != nil { // checksums
				return nil, err
			}
		}
		return nil, nil

	case GameEventTypeResourceTrade:
		if _, err := b.ReadBits(4); err != nil { // recipientId
			return nil, err
		}
		for i := 0; i < 3; i++ {
			if _, err := b.ReadI32(); err != nil { // resource amounts
				return nil, err
			}
		}
		return nil, nil

	case GameEventTypeTriggerChatMessage:
		msg, err := b.ReadLenPrefixedString(10)
		if err != nil {
			return nil, err
		}
		return tvDict(dictEntry(0, tvBlob(msg))), nil

	case GameEventTypeSetAbsoluteGameSpeed:
		if _, err := b.ReadBits(3); err != nil {
			return nil, err
		}
		return nil, nil

	case GameEventTypeTriggerPing:
		x, err := b.ReadI32()
		if err != nil {
			return nil, err
		}
		y, err := b.ReadI32()
		if err != nil {
			return nil, err
		}
		which, err := b.ReadU32()
		if err != nil {
			return nil, err
		}
		withText, err := b.ReadBool()
		if err != nil {
			return nil, err
		}
		balance, err := b.ReadI32()
		if err != nil {
			return nil, err
		}
		return tvArray(tvVarInt(int64(x)), tvVarInt(int64(y)), tvU32(which), tvBool(withText), tvVarInt(int64(balance))), nil

	case GameEventTypeUnitClick:
		tag, err := b.ReadU32()
		if err != nil {
			return nil, err
		}
		return tvDict(dictEntry(0, tvU32(tag))), nil

	case GameEventTypeTriggerSoundLengthQuery:
		a, err := b.ReadU32()
		if err != nil {
			return nil, err
		}
		c, err := b.ReadU32()
		if err != nil {
			return nil, err
		}
		return tvArray(tvU32(a), tvU32(c)), nil

	case GameEventTypeTriggerSoundOffset:
		v, err := b.ReadU32()
		if err != nil {
			return nil, err
		}
		return tvU32(v), nil

	case GameEventTypeTriggerTransmissionOffset:
		a, err := b.ReadI32()
		if err != nil {
			return nil, err
		}
		c, err := b.ReadU32()
		if err != nil {
			return nil, err
		}
		return tvArray(tvVarInt(int64(a)), tvU32(c)), nil

	case GameEventTypeTriggerTransmissionComplete:
		v, err := b.ReadI32()
		if err != nil {
			return nil, err
		}
		return tvVarInt(int64(v)), nil

	case GameEventTypeCameraUpdate:
		return decodeCameraUpdate(b)

	case GameEventTypeTriggerPlanetMissionLaunched:
		if err := b.SkipBytesRaw(4); err != nil { // difficulty level, not retained
			return nil, err
		}
		return nil, nil

	case GameEventTypeTriggerDialogControl:
		a, err := b.ReadVarUint(32)
		if err != nil {
			return nil, err
		}
		c, err := b.ReadVarUint(32)
		if err != nil {
			return nil, err
		}
		tag, err := b.ReadBits(3)
		if err != nil {
			return nil, err
		}
		var inner *hsprot.TrackerValue
		switch tag {
		case 1:
			v, err := b.ReadBool()
			if err != nil {
				return nil, err
			}
			inner = tvBool(v)
		case 2:
			v, err := b.ReadU32()
			if err != nil {
				return nil, err
			}
			inner = tvU32(v)
		case 3:
			v, err := b.ReadI32()
			if err != nil {
				return nil, err
			}
			inner = tvVarInt(int64(v))
		case 4:
			v, err := b.ReadLenPrefixedString(11)
			if err != nil {
				return nil, err
			}
			inner = tvBlob(v)
		case 5:
			v, err := b.ReadU32()
			if err != nil {
				return nil, err
			}
			inner = tvU32(v)
		}
		return tvArray(tvU32(a), tvU32(c), tvChoice(int32(tag), inner)), nil

	case GameEventTypeTriggerSoundLengthSync:
		first, err := decodeU32Array(b, 7)
		if err != nil {
			return nil, err
		}
		second, err := decodeU32Array(b, 7)
		if err != nil {
			return nil, err
		}
		return tvArray(first, second), nil

	case GameEventTypeTriggerConversationSkipped:
		v, err := b.ReadBool()
		if err != nil {
			return nil, err
		}
		return tvBool(v), nil

	case GameEventTypeTriggerMouseClicked:
		if err := b.SkipBytesRaw(17); err != nil {
			return nil, err
		}
		return nil, nil

	case GameEventTypeTriggerMouseMoved:
		if err := b.SkipBytesRaw(13); err != nil {
			return nil, err
		}
		return nil, nil

	case GameEventTypeTriggerHotkeyPressed:
		v, err := b.ReadU32()
		if err != nil {
			return nil, err
		}
		return tvU32(v), nil

	case GameEventTypeTriggerTargetModeUpdate:
		if _, err := b.ReadU16(); err != nil { // abilLink
			return nil, err
		}
		if _, err := b.ReadBits(5); err != nil { // abilCmdIndex
			return nil, err
		}
		if _, err := b.ReadU8(); err != nil { // state
			return nil, err
		}
		return nil, nil

	case GameEventTypeTriggerSoundtrackDone:
		v, err := b.ReadU32()
		if err != nil {
			return nil, err
		}
		return tvU32(v), nil

	case GameEventTypeTriggerKeyPressed:
		a, err := b.ReadI8()
		if err != nil {
			return nil, err
		}
		c, err := b.ReadI8()
		if err != nil {
			return nil, err
		}
		return tvArray(tvVarInt(int64(a)), tvVarInt(int64(c))), nil

	case GameEventTypeTriggerCutsceneBookmarkFired:
		cutsceneID, err := b.ReadI32()
		if err != nil {
			return nil, err
		}
		bookmarkName, err := b.ReadLenPrefixedString(7)
		if err != nil {
			return nil, err
		}
		return tvDict(
			dictEntry(0, tvVarInt(int64(cutsceneID))),
			dictEntry(1, tvBlob(bookmarkName)),
		), nil

	case GameEventTypeTriggerCutsceneEndSceneFired:
		v, err := b.ReadI32()
		if err != nil {
			return nil, err
		}
		return tvVarInt(int64(v)), nil

	case GameEventTypeGameUserLeave:
		width := uint(4)
		if r.Build >= 55929 {
			width = 5
		}
		if _, err := b.ReadBits(width); err != nil { // leave reason, not retained
			return nil, err
		}
		return nil, nil

	case GameEventTypeGameUserJoin:
		return decodeGameUserJoin(b)

	case GameEventTypeCommandManagerState:
		return decodeCommandManagerState(r, b)

	case GameEventTypeCmdUpdateTargetPoint:
		if r.Build >= 40336 {
			skip, err := b.ReadBool()
			if err != nil {
				return nil, err
			}
			if skip {
				if err := b.SkipBytesRaw(4); err != nil { // sequence number, not retained
					return nil, err
				}
			}
		}
		return decodePoint3d(b)

	case GameEventTypeCmdUpdateTargetUnit:
		if r.Build >= 40336 {
			skip, err := b.ReadBool()
			if err != nil {
				return nil, err
			}
			if skip {
				if err := b.SkipBytesRaw(4); err != nil { // sequence number, not retained
					return nil, err
				}
			}
		}
		return decodeTargetUnit(b)

	case GameEventTypeHeroTalentSelected:
		v, err := b.ReadU32()
		if err != nil {
			return nil, err
		}
		return tvU32(v), nil

	case GameEventTypeHeroTalentTreeSelectionPanelToggled:
		v, err := b.ReadBool()
		if err != nil {
			return nil, err
		}
		return tvBool(v), nil
	}

	return nil, hsprot.Errorf(hsprot.StructureError, "hsprot: unhandled game event type %v", evType)
}

// decodeU32Array reads a lengthBits-wide count followed by that many u32
// elements, wrapped as a TrackerValue array.
func decodeU32Array(b *hsprot.BitReader, lengthBits uint) (*hsprot.TrackerValue, error) {
	length, err := b.ReadVarUint(lengthBits)
	if err != nil {
		return nil, err
	}
	elems := make([]*hsprot.TrackerValue, length)
	for i := range elems {
		v, err := b.ReadU32()
		if err != nil {
			return nil, err
		}
		elems[i] = tvU32(v)
	}
	return tvArray(elems...), nil
}

// decodeCmd decodes the Cmd payload: a build/major-gated cmd_flags
// bitmask, an optional ability reference, a 2-bit tagged data field, an
// optional vector and sequence number (not retained), and optional
// unit/unit-group references.
func decodeCmd(r *Replay, b *hsprot.BitReader) (*hsprot.TrackerValue, error) {
	cmdFlags, err := b.ReadBits(cmdFlagsWidth(r.Build, r.VersionMajor))
	if err != nil {
		return nil, err
	}

	var ability *hsprot.TrackerValue
	if err := readOptional(b, func() error {
		abilLink, err := b.ReadU16()
		if err != nil {
			return err
		}
		abilCmdIndex, err := b.ReadBits(5)
		if err != nil {
			return err
		}
		var abilCmdData *hsprot.TrackerValue
		if err := readOptional(b, func() error {
			v, err := b.ReadU8()
			if err != nil {
				return err
			}
			abilCmdData = tvU8(v)
			return nil
		}); err != nil {
			return err
		}
		ability = tvDict(
			dictEntry(0, tvU32(uint32(abilLink))),
			dictEntry(1, tvU32(uint32(abilCmdIndex))),
			dictEntry(2, tvOptional(abilCmdData)),
		)
		return nil
	}); err != nil {
		return nil, err
	}

	tag, err := b.ReadBits(2)
	if err != nil {
		return nil, err
	}
	var dataInner *hsprot.TrackerValue
	switch tag {
	case 1:
		dataInner, err = decodePoint3d(b)
	case 2:
		dataInner, err = decodeTargetUnit(b)
	case 3:
		v, e := b.ReadU32()
		err = e
		dataInner = tvU32(v)
	}
	if err != nil {
		return nil, err
	}

	if r.Build >= 44256 {
		if err := readOptional(b, func() error {
			_, err := decodePoint3d(b) // vector, not retained
			return err
		}); err != nil {
			return nil, err
		}
	}

	if r.Build >= 33684 {
		if _, err := b.ReadU32(); err != nil { // sequence, not retained
			return nil, err
		}
	}

	var otherUnit *hsprot.TrackerValue
	if err := readOptional(b, func() error {
		v, err := b.ReadU32()
		if err != nil {
			return err
		}
		otherUnit = tvU32(v)
		return nil
	}); err != nil {
		return nil, err
	}

	var unitGroup *hsprot.TrackerValue
	if err := readOptional(b, func() error {
		v, err := b.ReadU32()
		if err != nil {
			return err
		}
		unitGroup = tvU32(v)
		return nil
	}); err != nil {
		return nil, err
	}

	return tvDict(
		dictEntry(0, tvU32(uint32(cmdFlags))),
		dictEntry(1, tvOptional(ability)),
		dictEntry(2, tvChoice(int32(tag), dataInner)),
		dictEntry(3, tvOptional(otherUnit)),
		dictEntry(4, tvOptional(unitGroup)),
	), nil
}

// selectionArrayWidths returns the (length-field, index-field) bit
// widths used by SelectionDelta and SelectionSyncCheck's arrays, which
// narrow starting with major version 2.
func selectionArrayWidths(major uint32) (lengthBits, indexBits uint) {
	if major < 2 {
		return 9, 9
	}
	return 6, 5
}

// decodeSelectionDelta decodes the SelectionDelta payload: a
// control-group id, then the delta itself — its subgroup index, a tagged
// removal mask, an add-subgroups array and an add-unit-tags array.
func decodeSelectionDelta(r *Replay, b *hsprot.BitReader) (*hsprot.TrackerValue, error) {
	lengthBits, indexBits := selectionArrayWidths(r.VersionMajor)

	controlGroupID, err := b.ReadBits(4)
	if err != nil {
		return nil, err
	}

	subgroupIndex, err := b.ReadBits(indexBits)
	if err != nil {
		return nil, err
	}

	removeMask, err := decodeRemoveMask(b, lengthBits, indexBits)
	if err != nil {
		return nil, err
	}

	subgroupsCount, err := b.ReadVarUint(lengthBits)
	if err != nil {
		return nil, err
	}
	subgroups := make([]*hsprot.TrackerValue, subgroupsCount)
	for i := range subgroups {
		unitLink, err := b.ReadU16()
		if err != nil {
			return nil, err
		}
		subgroupPriority, err := b.ReadU8()
		if err != nil {
			return nil, err
		}
		intraSubgroupPriority, err := b.ReadU8()
		if err != nil {
			return nil, err
		}
		count, err := b.ReadBits(lengthBits)
		if err != nil {
			return nil, err
		}
		subgroups[i] = tvDict(
			dictEntry(0, tvU32(uint32(unitLink))),
			dictEntry(1, tvU32(uint32(subgroupPriority))),
			dictEntry(2, tvU32(uint32(intraSubgroupPriority))),
			dictEntry(3, tvU32(uint32(count))),
		)
	}

	unitTagsArray, err := decodeU32Array(b, lengthBits)
	if err != nil {
		return nil, err
	}

	return tvDict(
		dictEntry(0, tvU32(uint32(controlGroupID))),
		dictEntry(1, tvU32(uint32(subgroupIndex))),
		dictEntry(2, removeMask),
		dictEntry(3, tvArray(subgroups...)),
		dictEntry(4, unitTagsArray),
	), nil
}

// decodeIndexArray reads a lengthBits-wide count followed by that many
// indexBits-wide indices.
func decodeIndexArray(b *hsprot.BitReader, lengthBits, indexBits uint) (*hsprot.TrackerValue, error) {
	count, err := b.ReadBits(lengthBits)
	if err != nil {
		return nil, err
	}
	elems := make([]*hsprot.TrackerValue, count)
	for i := range elems {
		v, err := b.ReadBits(indexBits)
		if err != nil {
			return nil, err
		}
		elems[i] = tvU32(uint32(v))
	}
	return tvArray(elems...), nil
}

// decodeRemoveMask reads the shared 2-bit-tagged removal mask used by
// SelectionDelta and ControlGroupUpdate: None, a raw bitmask, or an
// index array of one/zero bits.
func decodeRemoveMask(b *hsprot.BitReader, lengthBits, indexBits uint) (*hsprot.TrackerValue, error) {
	tag, err := b.ReadBits(2)
	if err != nil {
		return nil, err
	}
	switch tag {
	case 1:
		maskLen, err := b.ReadBits(lengthBits)
		if err != nil {
			return nil, err
		}
		bits := make([]*hsprot.TrackerValue, maskLen)
		for i := range bits {
			v, err := b.ReadBool()
			if err != nil {
				return nil, err
			}
			bits[i] = tvBool(v)
		}
		return tvChoice(int32(tag), tvArray(bits...)), nil
	case 2, 3:
		arr, err := decodeIndexArray(b, lengthBits, indexBits)
		if err != nil {
			return nil, err
		}
		return tvChoice(int32(tag), arr), nil
	default:
		return tvChoice(int32(tag), nil), nil
	}
}

// decodeControlGroupUpdate decodes the ControlGroupUpdate payload: a
// control-group index, an update code (width gated by build), and the
// shared tagged removal mask at major-gated widths.
func decodeControlGroupUpdate(r *Replay, b *hsprot.BitReader) (*hsprot.TrackerValue, error) {
	controlGroupIndex, err := b.ReadBits(4)
	if err != nil {
		return nil, err
	}

	codeWidth := uint(2)
	if r.Build >= 36359 {
		codeWidth = 3
	}
	updateCode, err := b.ReadBits(codeWidth)
	if err != nil {
		return nil, err
	}

	valueBits := uint(9)
	lengthBits := uint(9)
	if r.VersionMajor >= 2 {
		valueBits = 5
		lengthBits = 6
	}
	mask, err := decodeRemoveMask(b, lengthBits, valueBits)
	if err != nil {
		return nil, err
	}

	return tvDict(
		dictEntry(0, tvU32(uint32(controlGroupIndex))),
		dictEntry(1, tvU32(uint32(updateCode))),
		dictEntry(2, mask),
	), nil
}

// decodeCameraUpdate decodes CameraUpdate's six optional/always-present
// fields: target, distance, pitch, yaw, reason and the always-present
// follow flag.
func decodeCameraUpdate(b *hsprot.BitReader) (*hsprot.TrackerValue, error) {
	var target *hsprot.TrackerValue
	if err := readOptional(b, func() error {
		x, err := b.ReadU16()
		if err != nil {
			return err
		}
		y, err := b.ReadU16()
		if err != nil {
			return err
		}
		target = tvDict(dictEntry(0, tvU32(uint32(x))), dictEntry(1, tvU32(uint32(y))))
		return nil
	}); err != nil {
		return nil, err
	}

	var distance *hsprot.TrackerValue
	if err := readOptional(b, func() error {
		v, err := b.ReadU16()
		if err != nil {
			return err
		}
		distance = tvU32(uint32(v))
		return nil
	}); err != nil {
		return nil, err
	}

	var pitch *hsprot.TrackerValue
	if err := readOptional(b, func() error {
		v, err := b.ReadU16()
		if err != nil {
			return err
		}
		pitch = tvU32(uint32(v))
		return nil
	}); err != nil {
		return nil, err
	}

	var yaw *hsprot.TrackerValue
	if err := readOptional(b, func() error {
		v, err := b.ReadU16()
		if err != nil {
			return err
		}
		yaw = tvU32(uint32(v))
		return nil
	}); err != nil {
		return nil, err
	}

	var reason *hsprot.TrackerValue
	if err := readOptional(b, func() error {
		v, err := b.ReadI8()
		if err != nil {
			return err
		}
		reason = tvVarInt(int64(v))
		return nil
	}); err != nil {
		return nil, err
	}

	follow, err := b.ReadBool()
	if err != nil {
		return nil, err
	}

	return tvArray(
		tvOptional(target),
		tvOptional(distance),
		tvOptional(pitch),
		tvOptional(yaw),
		tvOptional(reason),
		tvBool(follow),
	), nil
}

// decodeGameUserJoin decodes the GameUserJoin payload: a 2-bit slot
// type, the joining user's name, and three optional identity blobs.
func decodeGameUserJoin(b *hsprot.BitReader) (*hsprot.TrackerValue, error) {
	slotType, err := b.ReadBits(2)
	if err != nil {
		return nil, err
	}
	name, err := b.ReadLenPrefixedString(8)
	if err != nil {
		return nil, err
	}

	var clanTag *hsprot.TrackerValue
	if err := readOptional(b, func() error {
		v, err := b.ReadLenPrefixedString(7)
		if err != nil {
			return err
		}
		clanTag = tvBlob(v)
		return nil
	}); err != nil {
		return nil, err
	}

	var clanLogo *hsprot.TrackerValue
	if err := readOptional(b, func() error {
		v, err := b.ReadLenPrefixedBlob(8)
		if err != nil {
			return err
		}
		clanLogo = tvBlob(string(v))
		return nil
	}); err != nil {
		return nil, err
	}

	var hash *hsprot.TrackerValue
	if err := readOptional(b, func() error {
		v, err := b.ReadBytes(40)
		if err != nil {
			return err
		}
		hash = tvBlob(string(v))
		return nil
	}); err != nil {
		return nil, err
	}

	return tvArray(
		tvU32(uint32(slotType)),
		tvBlob(name),
		tvOptional(clanTag),
		tvOptional(clanLogo),
		tvOptional(hash),
	), nil
}

// decodeCommandManagerState decodes the CommandManagerState payload: a
// 2-bit state code, plus (build >= 33684) an optional triple of sequence
// numbers.
func decodeCommandManagerState(r *Replay, b *hsprot.BitReader) (*hsprot.TrackerValue, error) {
	state, err := b.ReadBits(2)
	if err != nil {
		return nil, err
	}

	entries := []hsprot.DictEntry{dictEntry(0, tvU32(uint32(state)))}

	if r.Build >= 33684 {
		var sequences *hsprot.TrackerValue
		if err := readOptional(b, func() error {
			a, err := b.ReadBits(8)
			if err != nil {
				return err
			}
			c, err := b.ReadBits(8)
			if err != nil {
				return err
			}
			d, err := b.ReadBits(16)
			if err != nil {
				return err
			}
			sequences = tvArray(tvU32(uint32(a)), tvU32(uint32(c)), tvU32(uint32(d)))
			return nil
		}); err != nil {
			return nil, err
		}
		entries = append(entries, dictEntry(1, tvOptional(sequences)))
	}

	return tvDict(entries...), nil
}
