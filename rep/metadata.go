/*

Metadata decoding: the archive's user-data header bytes, decoded before
any named file since every other decoder branches on the build/major
pair it extracts.

*/

package rep

import (
	"fmt"

	"github.com/heroesreplay/hsprot"
)

// decodeMetadata decodes the archive's user-data bytes (a single
// TrackerValue dict) and populates the version/build/frame fields on r.
// It must run before every other decoder: Details, Init, Attributes and
// the game-event stream all branch on r.Build / r.VersionMajor.
func decodeMetadata(r *Replay, userData []byte) error {
	b := hsprot.NewBitReader(userData, true)
	v, err := hsprot.DecodeTrackerValue(b)
	if err != nil {
		return err
	}

	// version_string = "{d.1.0}.{d.1.1}.{d.1.2}.{d.1.3}"
	versionDict, _ := v.DictGet(1)
	part := func(key int32) int64 {
		e, _ := versionDict.DictGet(key)
		return e.Int()
	}
	major := part(1)
	versionString := fmt.Sprintf("%d.%d.%d.%d", part(0), major, part(2), part(3))

	build := uint32(part(4))
	if build >= 39951 {
		// More accurate build number observed empirically after this
		// release; d.1.4 drifts from the true build on later clients.
		if d6, ok := v.DictGet(6); ok {
			build = uint32(d6.Int())
		}
	}

	versionMajor := uint32(1)
	if build >= 51978 {
		versionMajor = uint32(major)
	}

	frames := uint32(0)
	if d3, ok := v.DictGet(3); ok {
		frames = uint32(d3.Int())
	}

	r.Build = build
	r.VersionMajor = versionMajor
	r.VersionString = versionString
	r.Frames = frames
	r.DurationSeconds = frames / 16

	return nil
}
