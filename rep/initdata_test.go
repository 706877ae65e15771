package rep

import (
	"errors"
	"testing"

	"github.com/heroesreplay/hsprot"
)

// initFixtureOpts configures buildInitFixture's output.
type initFixtureOpts struct {
	build          uint32
	hasMatchmaking bool
	matchmakingID  uint32
	maxUsers       uint64
	verifySeed     uint32 // only used when full (build >= 39595)
	randomSeed     uint32
	slots          []initSlotFixture
}

// initSlotFixture is one hand-encoded entry of the slot array, with
// every field a test does not care about held at zero/absent.
type initSlotFixture struct {
	hasUserID        bool
	userID           uint64
	hasWorkingSet    bool
	workingSetSlotID uint64
	observeStatus    uint64
	hero             string
	skin             string
	mount            string
	silenced         bool
}

func writeInitSlot(w *bitWriter, build uint32, s initSlotFixture) {
	w.writeBits(0, 8) // control
	w.writeBool(s.hasUserID)
	if s.hasUserID {
		w.writeBits(s.userID, 4)
	}
	w.writeBits(0, 4)  // teamId
	w.writeBool(false) // colorPref absent
	w.writeBool(false) // racePref absent
	w.writeBits(0, 6)  // difficulty
	w.writeBits(0, 7)  // aiBuild
	w.writeBits(0, 7)  // handicap
	w.writeBits(s.observeStatus, 2)
	w.writeBits(0, 32) // logo index
	w.writeLenPrefixedBlob(9, []byte(s.hero))
	w.writeLenPrefixedBlob(9, []byte(s.skin))
	w.writeLenPrefixedBlob(9, []byte(s.mount))
	w.writeBits(0, 4) // artifact count
	w.writeBool(s.hasWorkingSet)
	if s.hasWorkingSet {
		w.writeBits(s.workingSetSlotID, 8)
	}
	w.writeBits(0, 17)              // rewards count
	w.writeLenPrefixedBlob(7, nil)  // toon handle
	if build < 49582 || build == 49838 {
		w.writeBits(0, 9) // license count
	}
	w.writeBool(false) // tandemLeaderUserId absent
	if build <= 41504 {
		w.writeLenPrefixedBlob(9, nil) // commander
		w.writeBits(0, 32)             // commander level
	}
	w.writeBool(s.silenced)
}

// buildInitFixture hand-encodes a replay.initData buffer through however
// much of the field schedule the given build reaches, with all
// structural counts (players, slot descriptions, cache handles, slots) at
// zero so the fixture only has to cover the fields a test cares about.
func buildInitFixture(o initFixtureOpts) []byte {
	w := &bitWriter{}

	w.writeBits(0, 5) // player array count

	w.writeBits(uint64(o.randomSeed), 32)

	w.writeBits(0, 10) // cache name length
	w.align()
	for i := 0; i < 11; i++ {
		w.writeBool(false)
	}
	for i := 0; i < 3; i++ {
		w.writeBits(0, 2)
	}
	w.writeBits(0, 64) // client debug flags

	if o.build >= 43905 {
		w.writeBool(o.hasMatchmaking)
		if o.hasMatchmaking {
			w.writeBits(uint64(o.matchmakingID), 32)
		}
	}

	w.writeBits(2, 3) // game speed code: Normal
	w.writeBits(0, 3) // game type
	w.writeBits(o.maxUsers, 5)
	w.writeBits(0, 5) // max observers
	w.writeBits(0, 5) // max players
	w.writeBits(0, 4) // max teams
	w.writeBits(0, 6) // max colors
	w.writeBits(0, 8) // max races
	w.writeBits(0, 8) // max controls

	w.writeBits(100, 8) // map size x
	w.writeBits(100, 8) // map size y

	if o.build < 39595 {
		return w.bytes()
	}

	w.writeBits(0, 32)        // map checksum
	w.writeLenPrefixedBlob(11, nil) // map filename
	w.writeLenPrefixedBlob(8, nil)  // author
	w.writeBits(0, 32)        // mod checksum

	w.writeBits(0, 5) // slot description count

	w.writeBits(0, 6) // default difficulty
	w.writeBits(0, 7) // default AI build

	w.writeBits(0, 6) // cache handle count

	for i := 0; i < 4; i++ {
		w.writeBool(false)
	}
	w.writeBits(0, 3) // phase
	w.writeBits(0, 5) // max users (step 12)
	w.writeBits(0, 5) // max observers (step 12)

	w.writeBits(uint64(len(o.slots)), 5)
	for _, s := range o.slots {
		writeInitSlot(w, o.build, s)
	}

	w.writeBits(uint64(o.verifySeed), 32)

	w.writeBool(false) // host user id absent
	w.writeBool(false) // isSinglePlayer
	w.writeBits(0, 8)  // picked map tag
	w.writeBits(0, 32) // game duration
	w.writeBits(0, 6)  // default difficulty
	w.writeBits(0, 7)  // default AI build

	return w.bytes()
}

func newReplayForBuild(build uint32) *Replay {
	return &Replay{Build: build, VersionMajor: 1}
}

func TestDecodeInitDataMaxUsersTriggersTryMe(t *testing.T) {
	r := newReplayForBuild(30000)
	data := buildInitFixture(initFixtureOpts{build: 30000, maxUsers: 8, randomSeed: 0xdeadbeef})

	if err := decodeInitData(r, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.GameMode != GameModeTryMe {
		t.Errorf("got GameMode %v, want TryMe", r.GameMode)
	}
	if r.RandomSeed != 0xdeadbeef {
		t.Errorf("got RandomSeed %#x, want %#x", r.RandomSeed, 0xdeadbeef)
	}
	if r.MapSize != (MapSize{X: 100, Y: 100}) {
		t.Errorf("got MapSize %+v, want {100 100}", r.MapSize)
	}
}

func TestDecodeInitDataMaxUsersTenDoesNotTriggerTryMe(t *testing.T) {
	r := newReplayForBuild(30000)
	data := buildInitFixture(initFixtureOpts{build: 30000, maxUsers: 10, randomSeed: 1})

	if err := decodeInitData(r, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.GameMode == GameModeTryMe {
		t.Errorf("maxUsers=10 should not force TryMe")
	}
}

func TestDecodeInitDataMatchmakingHeroLeague(t *testing.T) {
	r := newReplayForBuild(43905)
	data := buildInitFixture(initFixtureOpts{
		build: 43905, hasMatchmaking: true, matchmakingID: 50061,
		maxUsers: 10, randomSeed: 0x12345678, verifySeed: 0x12345678,
	})

	if err := decodeInitData(r, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.GameMode != GameModeHeroLeague {
		t.Errorf("got GameMode %v, want HeroLeague", r.GameMode)
	}
}

func TestDecodeInitDataSlotReconciliation(t *testing.T) {
	r := newReplayForBuild(43905)
	r.Players = []*Player{
		{Name: "Alice", PlayerType: PlayerTypeHuman},
		{Name: "Bob", PlayerType: PlayerTypeHuman},
	}
	data := buildInitFixture(initFixtureOpts{
		build: 43905, maxUsers: 10, randomSeed: 7, verifySeed: 7,
		slots: []initSlotFixture{
			{
				hasUserID: true, userID: 0, hasWorkingSet: true, workingSetSlotID: 2,
				skin: "MuradinSkin", silenced: true,
			},
			{
				hasUserID: true, userID: 1, hasWorkingSet: true, workingSetSlotID: 0,
				observeStatus: 2,
			},
		},
	})

	if err := decodeInitData(r, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	alice := r.Players[0]
	if alice.UserID != 0 || alice.SlotID != 2 {
		t.Errorf("Alice bound to (%d, %d), want (0, 2)", alice.UserID, alice.SlotID)
	}
	if alice.Skin != "MuradinSkin" || alice.Mount != "" {
		t.Errorf("Alice slot fields: %q/%q", alice.Skin, alice.Mount)
	}
	if alice.Character != "" {
		t.Errorf("Init must not overwrite Character (Details owns it), got %q", alice.Character)
	}
	if !alice.IsSilenced {
		t.Error("Alice should carry the silence penalty")
	}

	// The second entry's user id matches nobody, but its working-set slot
	// id (0) matches Bob's still-unbound SlotID.
	bob := r.Players[1]
	if bob.UserID != 1 || bob.SlotID != 0 {
		t.Errorf("Bob bound to (%d, %d), want (1, 0)", bob.UserID, bob.SlotID)
	}
	if bob.PlayerType != PlayerTypeSpectator {
		t.Errorf("observe status 2 must mark Bob a spectator, got %v", bob.PlayerType)
	}
}

func TestDecodeInitDataSeedMismatchIsIntegrityError(t *testing.T) {
	r := newReplayForBuild(43905)
	data := buildInitFixture(initFixtureOpts{
		build: 43905, maxUsers: 10,
		randomSeed: 0x12345678, verifySeed: 0x99999999,
	})

	err := decodeInitData(r, data)
	if err == nil {
		t.Fatal("expected IntegrityError, got nil")
	}
	var herr *hsprot.Error
	if !errors.As(err, &herr) {
		t.Fatalf("expected *hsprot.Error, got %T: %v", err, err)
	}
	if herr.Kind != hsprot.IntegrityError {
		t.Errorf("got Kind %v, want IntegrityError", herr.Kind)
	}
}
