/*

The Replay aggregate and its decode orchestration.

*/

package rep

import (
	"io"

	"github.com/icza/mpq"

	"github.com/heroesreplay/hsprot"
)

// NewFromFile decodes the replay at the given path in full. The returned
// Replay is an immutable value; there is nothing to Close once this
// returns successfully, since all five internal files are read and the
// archive handle is released before NewFromFile returns.
func NewFromFile(name string) (*Replay, error) {
	m, err := mpq.NewFromFile(name)
	if err != nil {
		return nil, hsprot.WrapError(hsprot.FileError, "hsprot: opening replay archive", err)
	}
	defer m.Close()
	return newReplay(m)
}

// New decodes a replay read from input, an io.ReadSeeker positioned at
// the start of a complete archive.
func New(input io.ReadSeeker) (*Replay, error) {
	m, err := mpq.New(input)
	if err != nil {
		return nil, hsprot.WrapError(hsprot.FileError, "hsprot: opening replay archive", err)
	}
	defer m.Close()
	return newReplay(m)
}

// newReplay runs the decoders in fixed order: metadata seeds
// Build/VersionMajor that every later decoder gates on; Details seeds the
// roster; Init binds UserID/SlotID; Attributes resolves PlayerType and
// the remaining attribute-driven fields; the two event streams are
// independent of each other and decoded last. A bare panic anywhere in
// this chain (an internal invariant violation, not a recognized grammar
// error) is converted to a ReaderError instead of propagating.
func newReplay(m *mpq.MPQ) (result *Replay, errRes error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			errRes = hsprot.Errorf(hsprot.ReaderError, "hsprot: panic decoding replay: %v", r)
		}
	}()

	r := &Replay{}

	if err := decodeMetadata(r, m.UserData()); err != nil {
		return nil, err
	}

	if err := decodeFile(m, "replay.details", func(data []byte) error {
		return decodeDetails(r, data)
	}); err != nil {
		return nil, err
	}

	if err := decodeFile(m, "replay.initData", func(data []byte) error {
		return decodeInitData(r, data)
	}); err != nil {
		return nil, err
	}

	if err := decodeFile(m, "replay.attributes.events", func(data []byte) error {
		return decodeAttributeEvents(r, data)
	}); err != nil {
		return nil, err
	}

	if err := decodeFile(m, "replay.game.events", func(data []byte) error {
		return decodeGameEvents(r, data)
	}); err != nil {
		return nil, err
	}

	if err := decodeFile(m, "replay.tracker.events", func(data []byte) error {
		return decodeTrackerEvents(r, data)
	}); err != nil {
		return nil, err
	}

	return r, nil
}

// decodeFile reads name from the archive and hands its bytes to decode,
// wrapping a read failure as an ArchiveError.
func decodeFile(m *mpq.MPQ, name string, decode func([]byte) error) error {
	data, err := m.FileByName(name)
	if err != nil {
		return hsprot.WrapError(hsprot.ArchiveError, "hsprot: reading "+name, err)
	}
	return decode(data)
}
