package rep

import "github.com/heroesreplay/hsprot"

// Byte-level TrackerValue fixture builders shared by metadata_test.go and
// details_test.go. Both replay.details and the archive user-data header
// are single byte-aligned TrackerValue trees, so no bit-packing is needed
// to construct them, unlike initdata.go/gameevents.go's sub-byte grammar.

func zigzag(v int64) []byte {
	var zz uint64
	if v < 0 {
		zz = uint64(-v)<<1 | 1
	} else {
		zz = uint64(v) << 1
	}
	var out []byte
	for {
		b := byte(zz & 0x7f)
		zz >>= 7
		if zz != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			break
		}
	}
	return out
}

func tvbU8(v byte) []byte { return []byte{hsprot.TagU8, v} }

func tvbU32(v uint32) []byte {
	return []byte{hsprot.TagU32, byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func tvbU64(v uint64) []byte {
	out := []byte{hsprot.TagU64}
	for i := uint(0); i < 8; i++ {
		out = append(out, byte(v>>(8*i)))
	}
	return out
}

func tvbBlob(s string) []byte {
	out := append([]byte{hsprot.TagBlob}, zigzag(int64(len(s)))...)
	return append(out, s...)
}

type tvbEntry struct {
	key   int64
	value []byte
}

func tvbDict(entries ...tvbEntry) []byte {
	out := append([]byte{hsprot.TagDict}, zigzag(int64(len(entries)))...)
	for _, e := range entries {
		out = append(out, zigzag(e.key)...)
		out = append(out, e.value...)
	}
	return out
}

func tvbArray(elems ...[]byte) []byte {
	out := append([]byte{hsprot.TagArray}, zigzag(int64(len(elems)))...)
	for _, e := range elems {
		out = append(out, e...)
	}
	return out
}

func tvbOptional(inner []byte) []byte {
	if inner == nil {
		return []byte{hsprot.TagOptional, 0}
	}
	return append([]byte{hsprot.TagOptional, 1}, inner...)
}
