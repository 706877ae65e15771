/*

Init decoding: replay.initData carries the lobby setup, the slot table
that binds each roster Player to its UserID/SlotID, and derives GameMode
and MapSize. Nearly every field width here is gated by build number or
major version; the field-by-field schedule below follows the wire
layout in order.

*/

package rep

import "github.com/heroesreplay/hsprot"

// readOptional reads a 1-bit presence flag and, if set, invokes fn to
// consume the value it guards. Mirrors the format's pervasive
// "optional" field encoding: one bit, then the payload if present.
func readOptional(b *hsprot.BitReader, fn func() error) error {
	present, err := b.ReadBool()
	if err != nil {
		return err
	}
	if !present {
		return nil
	}
	return fn()
}

// decodeInitData decodes replay.initData and binds the roster's
// UserID/SlotID pairs, GameMode and MapSize. Must run after decodeDetails
// (the slot table reconciles against the roster Details already seeded)
// and after decodeMetadata (every gate below reads r.Build/r.VersionMajor).
func decodeInitData(r *Replay, data []byte) error {
	b := hsprot.NewBitReader(data, true)
	major := r.VersionMajor

	// Step 1: player array (lobby join records). Nothing here is
	// surfaced on the model; the slot table in step 13 is what binds
	// players. Still must be walked field-by-field to keep the stream
	// aligned for everything that follows.
	playerCount, err := b.ReadVarUint(5)
	if err != nil {
		return err
	}
	for i := uint32(0); i < playerCount; i++ {
		if err := decodeInitPlayerArrayEntry(b, major); err != nil {
			return err
		}
	}

	// Step 2.
	initRandomSeed, err := b.ReadU32()
	if err != nil {
		return err
	}
	r.RandomSeed = initRandomSeed

	// Step 3.
	if _, err := b.ReadLenPrefixedString(10); err != nil { // cache name
		return err
	}
	for i := 0; i < 11; i++ {
		if _, err := b.ReadBool(); err != nil { // lobby flags
			return err
		}
	}
	for i := 0; i < 3; i++ {
		if _, err := b.ReadBits(2); err != nil { // enums
			return err
		}
	}
	if _, err := b.ReadU64(); err != nil { // client debug flags
		return err
	}

	// Step 4.
	if r.Build >= 43905 {
		hasMatchmaking, err := b.ReadBool()
		if err != nil {
			return err
		}
		if hasMatchmaking {
			mmID, err := b.ReadU32()
			if err != nil {
				return err
			}
			r.GameMode = gameModeByMatchmakingID(mmID)
		}
	}

	// Step 5.
	gameSpeedCode, err := b.ReadBits(3)
	if err != nil {
		return err
	}
	r.GameSpeed = gameSpeedByInitCode(gameSpeedCode)
	if _, err := b.ReadBits(3); err != nil { // game type
		return err
	}
	maxUsers, err := b.ReadBits(5)
	if err != nil {
		return err
	}
	if maxUsers != 10 {
		r.GameMode = GameModeTryMe
	}
	if _, err := b.ReadBits(5); err != nil { // max observers
		return err
	}
	if _, err := b.ReadBits(5); err != nil { // max players
		return err
	}
	if _, err := b.ReadBits(4); err != nil { // max teams
		return err
	}
	if _, err := b.ReadBits(6); err != nil { // max colors
		return err
	}
	if _, err := b.ReadU8(); err != nil { // max races
		return err
	}
	if _, err := b.ReadU8(); err != nil { // max controls
		return err
	}

	// Step 6: map size.
	x, err := b.ReadVarUint(8)
	if err != nil {
		return err
	}
	y, err := b.ReadVarUint(8)
	if err != nil {
		return err
	}
	if y == 1 {
		y = x
	} else if x == 0 {
		x = y
	}
	r.MapSize = MapSize{X: int32(x), Y: int32(y)}

	// Step 7: older builds diverge beyond this point.
	if r.Build < 39595 {
		return nil
	}

	// Step 8.
	if _, err := b.ReadU32(); err != nil { // map checksum
		return err
	}
	if _, err := b.ReadLenPrefixedBlob(11); err != nil { // map filename
		return err
	}
	if _, err := b.ReadLenPrefixedBlob(8); err != nil { // author
		return err
	}
	if _, err := b.ReadU32(); err != nil { // mod checksum
		return err
	}

	// Step 9: slot-description array.
	slotDescCount, err := b.ReadVarUint(5)
	if err != nil {
		return err
	}
	for i := uint32(0); i < slotDescCount; i++ {
		// Allowed colors, races, difficulties, controls, observe types
		// and AI builds: each a length-prefixed bit array.
		for _, n := range [...]uint{6, 8, 6, 8, 2, 7} {
			length, err := b.ReadBits(n)
			if err != nil {
				return err
			}
			if err := b.SkipBits(uint(length)); err != nil {
				return err
			}
		}
	}

	// Step 10.
	if _, err := b.ReadBits(6); err != nil { // default difficulty
		return err
	}
	if _, err := b.ReadBits(7); err != nil { // default AI build
		return err
	}

	// Step 11: cache handles.
	cacheHandleCount, err := b.ReadVarUint(6)
	if err != nil {
		return err
	}
	for i := uint32(0); i < cacheHandleCount; i++ {
		if _, err := b.ReadBytes(40); err != nil {
			return err
		}
	}

	// Step 12.
	for i := 0; i < 4; i++ {
		if _, err := b.ReadBool(); err != nil {
			return err
		}
	}
	if _, err := b.ReadBits(3); err != nil { // phase
		return err
	}
	if _, err := b.ReadBits(5); err != nil { // maxUsers
		return err
	}
	if _, err := b.ReadBits(5); err != nil { // maxObservers
		return err
	}

	// Step 13: slot array, identity reconciliation.
	slotCount, err := b.ReadVarUint(5)
	if err != nil {
		return err
	}
	for i := uint32(0); i < slotCount; i++ {
		if err := decodeInitSlot(r, b, major); err != nil {
			return err
		}
	}

	// Step 14: random seed verification.
	verifySeed, err := b.ReadU32()
	if err != nil {
		return err
	}
	if verifySeed != initRandomSeed {
		return hsprot.Errorf(hsprot.IntegrityError, "hsprot: init random seed mismatch: %d != %d", verifySeed, initRandomSeed)
	}

	// Step 15.
	if err := readOptional(b, func() error {
		_, err := b.ReadBits(4) // host user id
		return err
	}); err != nil {
		return err
	}
	if _, err := b.ReadBool(); err != nil { // isSinglePlayer
		return err
	}
	if _, err := b.ReadU8(); err != nil { // picked map tag
		return err
	}
	if _, err := b.ReadU32(); err != nil { // game duration
		return err
	}
	if _, err := b.ReadBits(6); err != nil { // default difficulty
		return err
	}
	if _, err := b.ReadBits(7); err != nil { // default AI build
		return err
	}

	return nil
}

// decodeInitPlayerArrayEntry consumes one entry of the step-1 player
// array. None of these fields are surfaced on the model (the slot table
// in step 13 is the source of truth for roster binding); this only
// needs to keep the bit cursor correctly positioned.
func decodeInitPlayerArrayEntry(b *hsprot.BitReader, major uint32) error {
	if _, err := b.ReadLenPrefixedString(8); err != nil { // name
		return err
	}
	if err := readOptional(b, func() error { _, err := b.ReadLenPrefixedString(8); return err }); err != nil { // clan tag
		return err
	}
	if err := readOptional(b, func() error { _, err := b.ReadLenPrefixedBlob(40); return err }); err != nil { // clan logo
		return err
	}
	if err := readOptional(b, func() error { _, err := b.ReadU8(); return err }); err != nil { // highest league
		return err
	}
	if err := readOptional(b, func() error { _, err := b.ReadU32(); return err }); err != nil { // combined race levels
		return err
	}
	if _, err := b.ReadU32(); err != nil { // random seed (always 0 in practice)
		return err
	}
	if err := readOptional(b, func() error { _, err := b.ReadU8(); return err }); err != nil { // race pref
		return err
	}
	if err := readOptional(b, func() error { _, err := b.ReadU8(); return err }); err != nil { // team pref
		return err
	}
	for i := 0; i < 4; i++ {
		if _, err := b.ReadBool(); err != nil { // four flags
			return err
		}
	}
	if _, err := b.ReadU32(); err != nil { // test type
		return err
	}
	if _, err := b.ReadBits(2); err != nil { // observer flag
		return err
	}
	for i := 0; i < 3; i++ {
		if _, err := b.ReadLenPrefixedBlob(9); err != nil { // hero, skin, mount
			return err
		}
	}
	if major >= 2 {
		for i := 0; i < 2; i++ {
			if _, err := b.ReadLenPrefixedBlob(9); err != nil { // banner, spray
				return err
			}
		}
	}
	if _, err := b.ReadLenPrefixedString(7); err != nil { // toon handle
		return err
	}
	return nil
}

// decodeInitSlot decodes one entry of the slot array and applies the
// user-id-or-slot-id identity reconciliation.
func decodeInitSlot(r *Replay, b *hsprot.BitReader, major uint32) error {
	if _, err := b.ReadU8(); err != nil { // control
		return err
	}

	var userID uint64
	var hasUserID bool
	if err := readOptional(b, func() error {
		v, err := b.ReadBits(4)
		userID, hasUserID = v, true
		return err
	}); err != nil {
		return err
	}

	if _, err := b.ReadBits(4); err != nil { // teamId
		return err
	}
	if err := readOptional(b, func() error { _, err := b.ReadBits(5); return err }); err != nil { // colorPref
		return err
	}
	if err := readOptional(b, func() error { _, err := b.ReadU8(); return err }); err != nil { // racePref
		return err
	}
	if _, err := b.ReadBits(6); err != nil { // difficulty
		return err
	}
	if _, err := b.ReadBits(7); err != nil { // aiBuild
		return err
	}
	if _, err := b.ReadBits(7); err != nil { // handicap
		return err
	}
	observeStatus, err := b.ReadBits(2)
	if err != nil {
		return err
	}
	if _, err := b.ReadU32(); err != nil { // logo index
		return err
	}
	if _, err := b.ReadLenPrefixedBlob(9); err != nil { // hero, empty in practice
		return err
	}
	skin, err := b.ReadLenPrefixedString(9)
	if err != nil {
		return err
	}
	mount, err := b.ReadLenPrefixedString(9)
	if err != nil {
		return err
	}

	artifactCount, err := b.ReadBits(4)
	if err != nil {
		return err
	}
	for i := uint64(0); i < artifactCount; i++ {
		if _, err := b.ReadLenPrefixedBlob(9); err != nil {
			return err
		}
	}

	var workingSetSlotID uint64
	var hasWorkingSetSlotID bool
	if err := readOptional(b, func() error {
		v, err := b.ReadU8()
		workingSetSlotID, hasWorkingSetSlotID = uint64(v), true
		return err
	}); err != nil {
		return err
	}

	var boundPlayer *Player
	if hasUserID && hasWorkingSetSlotID {
		boundPlayer = r.playerByUserOrSlot(int(userID), int(workingSetSlotID))
		if boundPlayer != nil {
			boundPlayer.UserID = int(userID)
			boundPlayer.SlotID = int(workingSetSlotID)
			if observeStatus == 2 {
				boundPlayer.PlayerType = PlayerTypeSpectator
			}
			boundPlayer.Skin = skin
			boundPlayer.Mount = mount
		}
	}

	rewardsCount, err := b.ReadVarUint(17)
	if err != nil {
		return err
	}
	for i := uint32(0); i < rewardsCount; i++ {
		if _, err := b.ReadU32(); err != nil {
			return err
		}
	}

	if _, err := b.ReadLenPrefixedString(7); err != nil { // toon handle
		return err
	}

	if r.Build < 49582 || r.Build == 49838 {
		licenseCount, err := b.ReadVarUint(9)
		if err != nil {
			return err
		}
		for i := uint32(0); i < licenseCount; i++ {
			if _, err := b.ReadU32(); err != nil {
				return err
			}
		}
	}

	if err := readOptional(b, func() error { _, err := b.ReadBits(4); return err }); err != nil { // tandemLeaderUserId
		return err
	}

	if r.Build <= 41504 {
		if _, err := b.ReadLenPrefixedBlob(9); err != nil { // commander
			return err
		}
		if _, err := b.ReadU32(); err != nil { // commander level
			return err
		}
	}

	hasSilencePenalty, err := b.ReadBool()
	if err != nil {
		return err
	}
	if hasSilencePenalty && hasUserID {
		if p := r.playerByUserOrSlot(int(userID), 0); p != nil {
			p.IsSilenced = true
		}
	}

	if major >= 2 {
		for i := 0; i < 4; i++ { // banner, spray, announcer, voice-line
			if _, err := b.ReadLenPrefixedBlob(9); err != nil {
				return err
			}
		}
		if r.Build >= 52561 {
			masteryCount, err := b.ReadVarUint(10)
			if err != nil {
				return err
			}
			for i := uint32(0); i < masteryCount; i++ {
				if _, err := b.ReadU32(); err != nil {
					return err
				}
				if _, err := b.ReadU8(); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// gameSpeedByInitCode maps Init's 3-bit numeric game-speed field to a
// GameSpeed in index order. Attributes' string-keyed mapping is the
// final authority and may override this provisional value.
func gameSpeedByInitCode(code uint64) GameSpeed {
	switch code {
	case 0:
		return GameSpeedSlower
	case 1:
		return GameSpeedSlow
	case 2:
		return GameSpeedNormal
	case 3:
		return GameSpeedFast
	case 4:
		return GameSpeedFaster
	default:
		return GameSpeedUnknown
	}
}
