/*

Details decoding: replay.details seeds the player roster (in file order)
and supplies the map name and save timestamp.

*/

package rep

import (
	"sort"
	"time"

	"github.com/heroesreplay/hsprot"
)

// windowsEpochDiff100ns is the number of 100-ns ticks between the
// Windows FILETIME epoch (1601-01-01 UTC) and the Unix epoch
// (1970-01-01 UTC).
const windowsEpochDiff100ns = 116444736000000000

// buggyTimestampBuild is one (build, before, forced) override entry for
// builds whose clients saved replays with a stale clock.
type buggyTimestampBuild struct {
	build  uint32
	before time.Time
	forced time.Time
}

var buggyTimestampBuilds = []buggyTimestampBuild{
	{34053, time.Date(2015, 2, 8, 0, 0, 0, 0, time.UTC), time.Date(2015, 2, 13, 0, 0, 0, 0, time.UTC)},
	{34190, time.Date(2015, 2, 15, 0, 0, 0, 0, time.UTC), time.Date(2015, 2, 20, 0, 0, 0, 0, time.UTC)},
}

// decodeDetails decodes replay.details and seeds r.Players, r.MapName and
// r.Timestamp. Must run after decodeMetadata: the bad-build timestamp
// overrides compare against r.Build.
func decodeDetails(r *Replay, data []byte) error {
	b := hsprot.NewBitReader(data, true)
	d, err := hsprot.DecodeTrackerValue(b)
	if err != nil {
		return err
	}

	if playersOpt, ok := d.DictGet(0); ok && playersOpt.Tag == hsprot.TagOptional && playersOpt.OptionalVal != nil {
		for _, pd := range playersOpt.OptionalVal.Array() {
			r.Players = append(r.Players, newPlayerFromDetails(pd))
		}
	}

	if mapName, ok := d.DictGet(1); ok {
		r.MapName = mapName.Text()
	}

	if timeUTC, ok := d.DictGet(5); ok {
		fileTime := timeUTC.Int()
		r.Timestamp = time.Unix(0, (fileTime-windowsEpochDiff100ns)*100).UTC()
	}

	for _, o := range buggyTimestampBuilds {
		if r.Build == o.build && r.Timestamp.Before(o.before) {
			r.Timestamp = o.forced
		}
	}

	return nil
}

// newPlayerFromDetails builds one roster Player from its details dict
// entry, defaulting PlayerType to Human (Attributes later corrects this
// for computer-controlled slots).
func newPlayerFromDetails(pd *hsprot.TrackerValue) *Player {
	p := &Player{PlayerType: PlayerTypeHuman, Difficulty: DifficultyUnknown}

	if name, ok := pd.DictGet(0); ok {
		p.Name = name.Text()
	}

	if battlenet, ok := pd.DictGet(1); ok {
		if v, ok := battlenet.DictGet(0); ok {
			p.BattlenetRegionID = v.Int()
		}
		if v, ok := battlenet.DictGet(2); ok {
			p.BattlenetSubID = v.Int()
		}
		if v, ok := battlenet.DictGet(4); ok {
			p.BattlenetID = v.Int()
		}
	}

	if colorDict, ok := pd.DictGet(3); ok && colorDict.Tag == hsprot.TagDict {
		entries := append([]hsprot.DictEntry(nil), colorDict.DictVal...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
		for i := 0; i < len(entries) && i < 4; i++ {
			p.Color[i] = byte(entries[i].Value.Int())
		}
	}

	if team, ok := pd.DictGet(5); ok {
		p.Team = team.Int()
	}
	if handicap, ok := pd.DictGet(6); ok {
		p.Handicap = handicap.Int()
	}
	if result, ok := pd.DictGet(8); ok {
		p.IsWinner = result.Int() == 1
	}
	if character, ok := pd.DictGet(10); ok {
		p.Character = character.Text()
	}

	return p
}
