/*

Attributes decoding: replay.attributes.events is a flat key/value table,
four raw bytes per value, keyed by a numeric attribute-type code and a
1-based slot index. Values are encoded in a reversed, code-page-like
string form that this file decodes with Unicode-aware grapheme reversal
rather than a naive byte or UTF-16 code-unit reversal.

*/

package rep

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/heroesreplay/hsprot"
)

// attrRecord is one raw entry of the attributes table before value
// decoding and dispatch.
type attrRecord struct {
	typeCode  uint32
	slotIndex uint32 // 1-based
	raw       [4]byte
}

// knownAttrTypes is the set of attribute-type codes this decoder
// dispatches on. Any other code is discarded during post-processing,
// not treated as an error.
var knownAttrTypes = map[uint32]bool{
	500: true, 2001: true, 3000: true, 3004: true, 3009: true,
	4002: true, 4003: true, 4008: true, 4010: true, 4018: true,
	4023: true, 4025: true, 4028: true, 4030: true,
}

// decodeAttributeEvents decodes replay.attributes.events and resolves
// PlayerType, GameSpeed, GameMode, TeamSize, DraftBans and several
// per-player attribute-driven fields. Must run after decodeInitData: the
// slot-index -> Player mapping it dispatches through is the roster
// order Details/Init already established.
func decodeAttributeEvents(r *Replay, data []byte) error {
	// The attributes stream is read little-endian (bigEndian=false);
	// every other replay file reads MSB-last.
	b := hsprot.NewBitReader(data, false)

	if err := b.SkipBytes(5); err != nil {
		return err
	}
	count, err := b.ReadU32()
	if err != nil {
		return err
	}

	records := make([]attrRecord, 0, count)
	for i := uint32(0); i < count; i++ {
		if _, err := b.ReadU32(); err != nil { // header
			return err
		}
		typeCode, err := b.ReadU32()
		if err != nil {
			return err
		}
		slotByte, err := b.ReadU8()
		if err != nil {
			return err
		}
		raw, err := b.ReadBytes(4)
		if err != nil {
			return err
		}
		if !knownAttrTypes[typeCode] {
			continue
		}
		var rec attrRecord
		rec.typeCode = typeCode
		rec.slotIndex = uint32(slotByte)
		copy(rec.raw[:], raw)
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].typeCode < records[j].typeCode })

	for _, rec := range records {
		if err := dispatchAttribute(r, rec); err != nil {
			return err
		}
	}

	return nil
}

// decodeAttrValue decodes one 4-byte attribute value: byte-order fixup,
// C-string vs 4-byte-string framing, then a grapheme-aware reversal
// (the protocol stores attribute values reversed). ok is false for the
// null sentinel (four zero bytes).
func decodeAttrValue(raw [4]byte) (value string, ok bool) {
	if raw == ([4]byte{}) {
		return "", false
	}

	bs := raw
	if bs[0] == 0 {
		bs[0], bs[1], bs[2], bs[3] = bs[3], bs[2], bs[1], bs[0]
	}

	var s string
	if bs[3] == 0 {
		// NUL-terminated C string: trim at the first zero byte.
		n := 0
		for n < len(bs) && bs[n] != 0 {
			n++
		}
		s = string(bs[:n])
	} else {
		s = string(bs[:])
	}

	return reverseGraphemes(s), true
}

// reverseGraphemes reverses s by extended-grapheme-ish cluster rather
// than by raw code unit: combining marks are first composed onto their
// base rune via NFC, control characters (NUL included) are removed, then
// the resulting runes are reversed as units. This only approximates full UAX#29 grapheme segmentation (it will not
// keep a ZWJ sequence intact), but it is exact for every attribute value
// this format actually produces (ASCII hero/mode codes and composed
// player names).
func reverseGraphemes(s string) string {
	composed := norm.NFC.String(s)
	stripped, _, err := transform.String(runes.Remove(runes.Predicate(unicode.IsControl)), composed)
	if err != nil {
		stripped = composed
	}
	rs := []rune(stripped)
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
	return string(rs)
}

// parseAttrUint32 trims and parses a decoded attribute value as a u32.
func parseAttrUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	return uint32(v), err
}

// dispatchAttribute applies one decoded attribute record's effect to the
// targeted player (rec.slotIndex - 1) or to the replay aggregate.
func dispatchAttribute(r *Replay, rec attrRecord) error {
	value, ok := decodeAttrValue(rec.raw)

	var player *Player
	if rec.slotIndex >= 1 {
		player = r.playerBySlotIndex(int(rec.slotIndex) - 1)
	}

	switch rec.typeCode {
	case 500: // PlayerType
		if !ok || player == nil {
			return nil
		}
		// Values for this code arrive capitalized on real replays
		// ("Comp", "Humn"), so match case-insensitively.
		switch strings.ToLower(value) {
		case "comp":
			player.PlayerType = PlayerTypeComputer
		case "humn":
			player.PlayerType = PlayerTypeHuman
		case "open":
			// no-op: an open (unfilled) slot.
		default:
			return hsprot.Errorf(hsprot.StructureError, "hsprot: unexpected PlayerType attribute value %q", value)
		}

	case 2001: // TeamSize
		if ok {
			r.TeamSize = teamSizeByAttrValue(value)
		}

	case 3000: // GameSpeed
		if ok {
			r.GameSpeed = gameSpeedByAttrValue(value)
		}

	case 3004: // Difficulty
		if ok && player != nil {
			player.Difficulty = difficultyByAttrValue(value)
		}

	case 3009: // GameType
		if !ok {
			return nil
		}
		switch strings.ToLower(value) {
		case "priv":
			r.GameMode = GameModeCustom
		case "amm":
			if r.Build < 33684 {
				r.GameMode = GameModeQuickMatch
			}
		default:
			return hsprot.Errorf(hsprot.StructureError, "hsprot: unexpected GameType attribute value %q", value)
		}

	case 4002, 4003: // Hero, Skin
		if ok && player != nil {
			player.IsAutoSelect = value == "Rand"
		}

	case 4008: // CharacterLevel
		if !ok || player == nil {
			return nil
		}
		lvl, err := parseAttrUint32(value)
		if err != nil {
			return hsprot.WrapError(hsprot.StructureError, "hsprot: invalid CharacterLevel attribute value", err)
		}
		player.CharacterLevel = int64(lvl)
		if lvl > 1 {
			player.IsAutoSelect = false
		}

	case 4010: // LobbyMode
		if ok && r.Build < 43905 && r.GameMode != GameModeCustom {
			switch strings.ToLower(value) {
			case "stan":
				r.GameMode = GameModeQuickMatch
			case "drft":
				r.GameMode = GameModeHeroLeague
			}
		}

	case 4018: // ReadyMode
		if ok && r.Build < 43905 && r.GameMode == GameModeHeroLeague {
			if value == "fcfs" {
				r.GameMode = GameModeTeamLeague
			}
		}

	case 4023:
		if ok {
			r.DraftBans[0] = value
		}
	case 4025:
		if ok {
			r.DraftBans[1] = value
		}
	case 4028:
		if ok {
			r.DraftBans[2] = value
		}
	case 4030:
		if ok {
			r.DraftBans[3] = value
		}
	}

	return nil
}
