package rep

import "testing"

func metadataFixture(major, build int64, d6 []byte, frames int64) []byte {
	versionDict := tvbDict(
		tvbEntry{key: 0, value: tvbU8(0)},
		tvbEntry{key: 1, value: tvbU8(byte(major))},
		tvbEntry{key: 2, value: tvbU8(0)},
		tvbEntry{key: 3, value: tvbU8(0)},
		tvbEntry{key: 4, value: tvbU32(uint32(build))},
	)
	entries := []tvbEntry{
		{key: 1, value: versionDict},
		{key: 3, value: tvbU32(uint32(frames))},
	}
	if d6 != nil {
		entries = append(entries, tvbEntry{key: 6, value: d6})
	}
	return tvbDict(entries...)
}

func TestDecodeMetadataUsesDirectBuildBelowThreshold(t *testing.T) {
	r := &Replay{}
	data := metadataFixture(2, 39000, nil, 1600)

	if err := decodeMetadata(r, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Build != 39000 {
		t.Errorf("got Build %d, want 39000", r.Build)
	}
	if r.VersionMajor != 1 {
		t.Errorf("got VersionMajor %d, want 1 (below 51978)", r.VersionMajor)
	}
	if r.VersionString != "0.2.0.0" {
		t.Errorf("got VersionString %q, want %q", r.VersionString, "0.2.0.0")
	}
	if r.Frames != 1600 || r.DurationSeconds != 100 {
		t.Errorf("got Frames=%d DurationSeconds=%d, want 1600/100", r.Frames, r.DurationSeconds)
	}
}

func TestDecodeMetadataD6OverridesBuildAboveThreshold(t *testing.T) {
	r := &Replay{}
	data := metadataFixture(2, 40000, tvbU32(55000), 0)

	if err := decodeMetadata(r, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Build != 55000 {
		t.Errorf("got Build %d, want d.6 override 55000", r.Build)
	}
}

func TestDecodeMetadataVersionMajorFollowsVersionStringAboveThreshold(t *testing.T) {
	r := &Replay{}
	data := metadataFixture(2, 52000, nil, 0)

	if err := decodeMetadata(r, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.VersionMajor != 2 {
		t.Errorf("got VersionMajor %d, want 2 (build >= 51978)", r.VersionMajor)
	}
}
