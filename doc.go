/*

Package hsprot decodes Heroes of the Storm replay files (*.StormReplay).

A replay is an MPQ archive (see https://github.com/icza/mpq) holding a
handful of internal files, each encoded in a bit-packed, version-evolving
format. This package provides the low-level primitives shared by every
such file:

  - BitReader: an MSB-last bit-granular reader over a byte buffer.
  - TrackerValue: a recursive, self-describing tagged-union value tree used
    by replay.details, replay.tracker.events, and embedded inside several
    replay.game.events payloads.
  - Version: the (build, major) pair every higher-level decoder branches on.
  - Error: the single error type covering every failure kind a decode can
    produce.

The replay-specific file decoders (metadata, details, init, attributes,
game events, tracker events) and the Replay aggregate type live in the
sibling rep package, which depends on this one.

High-level usage

	import "github.com/heroesreplay/hsprot/rep"

	r, err := rep.NewFromFile("my.StormReplay")
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("Map:    %s\n", r.MapName)
	fmt.Printf("Build:  %d\n", r.Build)
	fmt.Printf("Length: %ds\n", r.DurationSeconds)
	for _, p := range r.Players {
		fmt.Printf("\t%-20s %s\n", p.Name, p.Character)
	}

Low-level usage

To decode just the replay's metadata (the MPQ archive's user data):

	import "github.com/icza/mpq"

	m, err := mpq.NewFromFile("my.StormReplay")
	if err != nil {
		panic(err)
	}
	defer m.Close()

	meta, err := hsprot.DecodeTrackerValue(hsprot.NewBitReader(m.UserData(), true))
	if err != nil {
		panic(err)
	}

Information sources

  - nuclearfurnace/rs-storm-parser: an independent Rust decoder for this
    same format, used here only to cross-check field widths and build
    thresholds.

*/
package hsprot
