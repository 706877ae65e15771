/*

Common types and constants used in decoded replay data.

*/

package rep

import (
	"encoding/json"
	"time"

	"github.com/heroesreplay/hsprot"
)

// Enum is the base of enum-like types carrying just a display name.
// Embedding types inherit its JSON representation (a plain string) along
// with String().
type Enum struct {
	Name string
}

// String returns the string representation of the enum (the name).
func (e Enum) String() string {
	return e.Name
}

// MarshalJSON renders the enum as its name, so embedding types (PlayerType,
// GameMode, etc.) serialize as plain JSON strings rather than objects.
func (e Enum) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Name)
}

// PlayerType classifies a roster slot's occupant.
type PlayerType struct{ Enum }

// Named player types.
var (
	PlayerTypeHuman     = PlayerType{Enum{"Human"}}
	PlayerTypeComputer  = PlayerType{Enum{"Computer"}}
	PlayerTypeSpectator = PlayerType{Enum{"Spectator"}}
)

// Difficulty is the AI / bot difficulty assigned to a slot.
type Difficulty struct {
	Enum
	attrValue string // value used in the PlayerDifficulty attribute (code 3004)
}

// Named difficulties, ordered easiest to hardest.
var (
	DifficultyBeginner = Difficulty{Enum{"Beginner"}, "vyey"}
	DifficultyRecruit  = Difficulty{Enum{"Recruit"}, "easy"}
	DifficultyAdept    = Difficulty{Enum{"Adept"}, "medi"}
	DifficultyVeteran  = Difficulty{Enum{"Veteran"}, "hdvh"}
	DifficultyElite    = Difficulty{Enum{"Elite"}, "vyhd"}
	DifficultyUnknown  = Difficulty{Enum{"Unknown"}, ""}
)

var difficultiesByAttrValue = map[string]Difficulty{
	"vyey": DifficultyBeginner,
	"easy": DifficultyRecruit,
	"medi": DifficultyAdept,
	"hdvh": DifficultyVeteran,
	"vyhd": DifficultyElite,
}

func difficultyByAttrValue(v string) Difficulty {
	if d, ok := difficultiesByAttrValue[v]; ok {
		return d
	}
	return DifficultyUnknown
}

// GameSpeed is the simulation speed the lobby was configured with.
type GameSpeed struct {
	Enum
	attrValue string // value used in the GameSpeed attribute (code 3000)
}

// Named game speeds.
var (
	GameSpeedSlower  = GameSpeed{Enum{"Slower"}, "slor"}
	GameSpeedSlow    = GameSpeed{Enum{"Slow"}, "slow"}
	GameSpeedNormal  = GameSpeed{Enum{"Normal"}, "norm"}
	GameSpeedFast    = GameSpeed{Enum{"Fast"}, "fast"}
	GameSpeedFaster  = GameSpeed{Enum{"Faster"}, "fasr"}
	GameSpeedUnknown = GameSpeed{Enum{"Unknown"}, ""}
)

var gameSpeedsByAttrValue = map[string]GameSpeed{
	"slor": GameSpeedSlower,
	"slow": GameSpeedSlow,
	"norm": GameSpeedNormal,
	"fast": GameSpeedFast,
	"fasr": GameSpeedFaster,
}

func gameSpeedByAttrValue(v string) GameSpeed {
	if s, ok := gameSpeedsByAttrValue[v]; ok {
		return s
	}
	return GameSpeedUnknown
}

// GameMode is the lobby matchmaking mode, derived from either the Init
// matchmaking ID (build >= 43905) or the LobbyMode/ReadyMode attributes
// on older builds.
type GameMode struct{ Enum }

// Named game modes.
var (
	GameModeUnknown       = GameMode{Enum{"Unknown"}}
	GameModeTryMe         = GameMode{Enum{"TryMe"}}
	GameModeCustom        = GameMode{Enum{"Custom"}}
	GameModeQuickMatch    = GameMode{Enum{"QuickMatch"}}
	GameModeBrawl         = GameMode{Enum{"Brawl"}}
	GameModeUnrankedDraft = GameMode{Enum{"UnrankedDraft"}}
	GameModeHeroLeague    = GameMode{Enum{"HeroLeague"}}
	GameModeTeamLeague    = GameMode{Enum{"TeamLeague"}}
)

// gameModeByMatchmakingID maps the Init matchmaking-queue identifier
// (build >= 43905) to a GameMode. GameModeUnknown is returned for any
// value outside the enumerated set (not a StructureError: the source
// tolerates unrecognized matchmaking queues).
func gameModeByMatchmakingID(id uint32) GameMode {
	switch id {
	case 50001:
		return GameModeQuickMatch
	case 50031:
		return GameModeBrawl
	case 50051:
		return GameModeUnrankedDraft
	case 50061:
		return GameModeHeroLeague
	case 50071:
		return GameModeTeamLeague
	default:
		return GameModeUnknown
	}
}

// TeamSize is the lobby's team-size attribute, e.g. "3v3" or "ffa".
type TeamSize struct{ Enum }

// Named team sizes. The Enum name is the literal attribute string.
var (
	TeamSizeOneVsOne     = TeamSize{Enum{"1v1"}}
	TeamSizeTwoVsTwo     = TeamSize{Enum{"2v2"}}
	TeamSizeThreeVsThree = TeamSize{Enum{"3v3"}}
	TeamSizeFourVsFour   = TeamSize{Enum{"4v4"}}
	TeamSizeFiveVsFive   = TeamSize{Enum{"5v5"}}
	TeamSizeFFA          = TeamSize{Enum{"ffa"}}
	TeamSizeUnknown      = TeamSize{Enum{""}}
)

var teamSizesByAttrValue = map[string]TeamSize{
	"1v1": TeamSizeOneVsOne,
	"2v2": TeamSizeTwoVsTwo,
	"3v3": TeamSizeThreeVsThree,
	"4v4": TeamSizeFourVsFour,
	"5v5": TeamSizeFiveVsFive,
	"ffa": TeamSizeFFA,
}

func teamSizeByAttrValue(v string) TeamSize {
	if t, ok := teamSizesByAttrValue[v]; ok {
		return t
	}
	return TeamSizeUnknown
}

// MapSize is the map's dimensions in game tiles.
type MapSize struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Color is a player's ARGB slot color, in declaration order A,R,G,B.
type Color [4]byte

// Player is one roster entry (participant or observer) of the replay.
//
// It is assembled across three decoders: Details seeds the roster in
// index order, Init binds UserID/SlotID (and several slot-table fields)
// through the user-id-or-slot-id reconciliation match, and Attributes
// resolves PlayerType and a handful of attribute-driven fields by
// 1-based slot index.
type Player struct {
	Name              string     `json:"name"`
	PlayerType        PlayerType `json:"playerType"`
	BattlenetRegionID int64      `json:"battlenetRegionId"`
	BattlenetSubID    int64      `json:"battlenetSubId"`
	BattlenetID       int64      `json:"battlenetId"`
	UserID            int        `json:"userId"`
	SlotID            int        `json:"slotId"`
	Color             Color      `json:"color"`
	Team              int64      `json:"team"`
	Handicap          int64      `json:"handicap"`
	IsWinner          bool       `json:"isWinner"`
	IsSilenced        bool       `json:"isSilenced"`
	Character         string     `json:"character"`
	CharacterLevel    int64      `json:"characterLevel"`
	Skin              string     `json:"skin"`
	Mount             string     `json:"mount"`
	Difficulty        Difficulty `json:"difficulty"`
	IsAutoSelect      bool       `json:"isAutoSelect"`
}

// GameEvent is one decoded entry of replay.game.events.
type GameEvent struct {
	EventType    GameEventType `json:"eventType"`
	TicksElapsed uint32        `json:"ticksElapsed"`
	// PlayerRef is the addressed user index (0..15), or -1 for the
	// "global" sentinel (wire value 16).
	PlayerRef int                 `json:"playerRef"`
	Data      *hsprot.TrackerValue `json:"data,omitempty"`
}

// TrackerEvent is one decoded entry of replay.tracker.events. Data is
// always a Dict-tagged TrackerValue at the top level.
type TrackerEvent struct {
	EventType    TrackerEventType     `json:"eventType"`
	TicksElapsed uint32               `json:"ticksElapsed"`
	Data         *hsprot.TrackerValue `json:"data"`
}

// Replay is the aggregate root: a single immutable match summary fused
// from all five internal replay files. Construct with NewFromFile or New;
// once returned by either, a Replay is never mutated further.
type Replay struct {
	Build           uint32 `json:"build"`
	VersionMajor    uint32 `json:"versionMajor"`
	VersionString   string `json:"versionString"`
	RandomSeed      uint32 `json:"randomSeed"`
	Frames          uint32 `json:"frames"`
	DurationSeconds uint32 `json:"durationSeconds"`

	GameSpeed GameSpeed `json:"gameSpeed"`
	GameMode  GameMode  `json:"gameMode"`
	MapName   string    `json:"mapName"`
	Timestamp time.Time `json:"timestamp"`
	MapSize   MapSize   `json:"mapSize"`
	TeamSize  TeamSize  `json:"teamSize"`

	// DraftBans holds the four ban slots in draft order; an empty string
	// marks a slot that was never banned into (e.g. non-draft modes).
	DraftBans [4]string `json:"draftBans"`

	Players []*Player `json:"players"`

	GameEvents    []GameEvent    `json:"gameEvents"`
	TrackerEvents []TrackerEvent `json:"trackerEvents"`
}

// playerByUserOrSlot implements the "by user-id OR by slot-id" match
// required by Init's slot table: the first player in roster order whose
// current UserID equals userID or whose current SlotID equals slotID.
// Players not yet bound by Init sit at UserID = SlotID = 0, which is what
// lets the first slot-table entry claim them.
func (r *Replay) playerByUserOrSlot(userID, slotID int) *Player {
	for _, p := range r.Players {
		if p.UserID == userID || p.SlotID == slotID {
			return p
		}
	}
	return nil
}

// playerBySlotIndex returns the player at 0-based slotIndex (the
// Attributes decoder's slot_index - 1), or nil if out of range.
func (r *Replay) playerBySlotIndex(slotIndex int) *Player {
	if slotIndex < 0 || slotIndex >= len(r.Players) {
		return nil
	}
	return r.Players[slotIndex]
}

// Version returns the (build, major) pair the internal decoders gate on,
// bundled as a single value for callers that want to reapply the same
// build/major thresholds documented in this package (e.g. to decide
// whether a derived tool should expect the major-version-2 slot-table
// layout).
func (r *Replay) Version() hsprot.Version {
	return hsprot.Version{Build: int(r.Build), Major: int(r.VersionMajor)}
}
