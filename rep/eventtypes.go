/*

GameEventType and TrackerEventType: the two wire-code enums that game
events and tracker events dispatch on.

Game-event wire codes are 7-bit values assigned in catalog declaration
order, with GameEventTypeUnknown pinned to 0 as a sentinel that is never
dispatched. Codes past the end of the catalog (up to and including 127,
the highest representable value) are rejected as structure errors.

*/

package rep

import "encoding/json"

// GameEventType identifies the payload shape of one replay.game.events
// entry.
type GameEventType int

// Game event type constants, in catalog order. See gameEventTypeNames for
// the name each renders as.
const (
	GameEventTypeUnknown GameEventType = iota // unreachable: never itself dispatched

	GameEventTypeDropOurselves
	GameEventTypeStartGame
	GameEventTypeUserFinishedLoadingSync
	GameEventTypeTriggerSkipped
	GameEventTypeCommandManagerReset

	GameEventTypeUserOptions
	GameEventTypeBankFile
	GameEventTypeBankSection
	GameEventTypeBankKey
	GameEventTypeBankSignature
	GameEventTypeCameraSave
	GameEventTypeGameCheat
	GameEventTypeCmd
	GameEventTypeSelectionDelta
	GameEventTypeControlGroupUpdate
	GameEventTypeSelectionSyncCheck
	GameEventTypeResourceTrade
	GameEventTypeTriggerChatMessage
	GameEventTypeSetAbsoluteGameSpeed
	GameEventTypeTriggerPing
	GameEventTypeUnitClick
	GameEventTypeTriggerSoundLengthQuery
	GameEventTypeTriggerSoundOffset
	GameEventTypeTriggerTransmissionOffset
	GameEventTypeTriggerTransmissionComplete
	GameEventTypeCameraUpdate
	GameEventTypeTriggerPlanetMissionLaunched
	GameEventTypeTriggerDialogControl
	GameEventTypeTriggerSoundLengthSync
	GameEventTypeTriggerConversationSkipped
	GameEventTypeTriggerMouseClicked
	GameEventTypeTriggerMouseMoved
	GameEventTypeTriggerHotkeyPressed
	GameEventTypeTriggerTargetModeUpdate
	GameEventTypeTriggerSoundtrackDone
	GameEventTypeTriggerKeyPressed
	GameEventTypeTriggerCutsceneBookmarkFired
	GameEventTypeTriggerCutsceneEndSceneFired
	GameEventTypeGameUserLeave
	GameEventTypeGameUserJoin
	GameEventTypeCommandManagerState
	GameEventTypeCmdUpdateTargetPoint
	GameEventTypeCmdUpdateTargetUnit
	GameEventTypeHeroTalentSelected
	GameEventTypeHeroTalentTreeSelectionPanelToggled

	numGameEventTypes
)

var gameEventTypeNames = [numGameEventTypes]string{
	GameEventTypeUnknown:                              "Unknown",
	GameEventTypeDropOurselves:                        "DropOurselves",
	GameEventTypeStartGame:                             "StartGame",
	GameEventTypeUserFinishedLoadingSync:               "UserFinishedLoadingSync",
	GameEventTypeTriggerSkipped:                        "TriggerSkipped",
	GameEventTypeCommandManagerReset:                   "CommandManagerReset",
	GameEventTypeUserOptions:                           "UserOptions",
	GameEventTypeBankFile:                              "BankFile",
	GameEventTypeBankSection:                           "BankSection",
	GameEventTypeBankKey:                               "BankKey",
	GameEventTypeBankSignature:                         "BankSignature",
	GameEventTypeCameraSave:                            "CameraSave",
	GameEventTypeGameCheat:                             "GameCheat",
	GameEventTypeCmd:                                   "Cmd",
	GameEventTypeSelectionDelta:                        "SelectionDelta",
	GameEventTypeControlGroupUpdate:                    "ControlGroupUpdate",
	GameEventTypeSelectionSyncCheck:                    "SelectionSyncCheck",
	GameEventTypeResourceTrade:                         "ResourceTrade",
	GameEventTypeTriggerChatMessage:                    "TriggerChatMessage",
	GameEventTypeSetAbsoluteGameSpeed:                  "SetAbsoluteGameSpeed",
	GameEventTypeTriggerPing:                           "TriggerPing",
	GameEventTypeUnitClick:                             "UnitClick",
	GameEventTypeTriggerSoundLengthQuery:               "TriggerSoundLengthQuery",
	GameEventTypeTriggerSoundOffset:                    "TriggerSoundOffset",
	GameEventTypeTriggerTransmissionOffset:             "TriggerTransmissionOffset",
	GameEventTypeTriggerTransmissionComplete:           "TriggerTransmissionComplete",
	GameEventTypeCameraUpdate:                          "CameraUpdate",
	GameEventTypeTriggerPlanetMissionLaunched:          "TriggerPlanetMissionLaunched",
	GameEventTypeTriggerDialogControl:                  "TriggerDialogControl",
	GameEventTypeTriggerSoundLengthSync:                "TriggerSoundLengthSync",
	GameEventTypeTriggerConversationSkipped:            "TriggerConversationSkipped",
	GameEventTypeTriggerMouseClicked:                   "TriggerMouseClicked",
	GameEventTypeTriggerMouseMoved:                     "TriggerMouseMoved",
	GameEventTypeTriggerHotkeyPressed:                  "TriggerHotkeyPressed",
	GameEventTypeTriggerTargetModeUpdate:               "TriggerTargetModeUpdate",
	GameEventTypeTriggerSoundtrackDone:                 "TriggerSoundtrackDone",
	GameEventTypeTriggerKeyPressed:                     "TriggerKeyPressed",
	GameEventTypeTriggerCutsceneBookmarkFired:          "TriggerCutsceneBookmarkFired",
	GameEventTypeTriggerCutsceneEndSceneFired:          "TriggerCutsceneEndSceneFired",
	GameEventTypeGameUserLeave:                         "GameUserLeave",
	GameEventTypeGameUserJoin:                          "GameUserJoin",
	GameEventTypeCommandManagerState:                   "CommandManagerState",
	GameEventTypeCmdUpdateTargetPoint:                  "CmdUpdateTargetPoint",
	GameEventTypeCmdUpdateTargetUnit:                   "CmdUpdateTargetUnit",
	GameEventTypeHeroTalentSelected:                    "HeroTalentSelected",
	GameEventTypeHeroTalentTreeSelectionPanelToggled:   "HeroTalentTreeSelectionPanelToggled",
}

// gameEventTypeByCode looks up the GameEventType for a decoded 7-bit wire
// code. ok is false for any code outside the catalog (including the
// reserved top value 127), which the caller must surface as a
// StructureError.
func gameEventTypeByCode(code uint64) (GameEventType, bool) {
	if code == 0 || code >= uint64(numGameEventTypes) {
		return GameEventTypeUnknown, false
	}
	return GameEventType(code), true
}

func (t GameEventType) String() string {
	if t < 0 || int(t) >= len(gameEventTypeNames) {
		return "Unknown"
	}
	return gameEventTypeNames[t]
}

// MarshalJSON renders the event type as its name.
func (t GameEventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// TrackerEventType identifies the payload shape of one
// replay.tracker.events entry. Unlike GameEventType, the wire code here
// is not assigned by this decoder: it is read directly as a VarInt from
// the stream and only one value is semantically significant to the
// decoder (StatGameEvent, for the fixed-point rescale).
type TrackerEventType int32

// TrackerEventTypeStatGameEvent is the only tracker event code the
// decoder branches on post-processing for (see decodeTrackerEvents).
const TrackerEventTypeStatGameEvent TrackerEventType = 0

func (t TrackerEventType) String() string {
	if t == TrackerEventTypeStatGameEvent {
		return "StatGameEvent"
	}
	return "Unknown"
}

// MarshalJSON renders recognized tracker event types by name and falls
// back to the bare numeric code for everything else; there is no
// complete tracker-event catalog the way there is for game events.
func (t TrackerEventType) MarshalJSON() ([]byte, error) {
	if t == TrackerEventTypeStatGameEvent {
		return json.Marshal(t.String())
	}
	return json.Marshal(int32(t))
}
