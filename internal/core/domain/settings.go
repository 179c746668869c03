package domain

// SyncSettings are the display names matched against a timeline's template
// and the feature flags of a synchronisation.
type SyncSettings struct {
	NarrativeArc string

	PropertyDescription string
	PropertyNotes       string
	PropertyMoonPhase   string

	TypeArc       string
	TypeCharacter string
	TypeLocation  string
	TypeItem      string

	RoleArc       string
	RolePlotLine  string
	RoleCharacter string
	RoleLocation  string
	RoleItem      string

	// ColorSection is the colour of new events for narrative sections.
	ColorSection string

	// ColorEvent is the colour of other new events.
	ColorEvent string

	// AddMoonPhase adds a moon phase property to exported events.
	AddMoonPhase bool

	// LockOnExport locks the novel project after a successful export.
	LockOnExport bool

	// WatchSeconds is the minimum time between two imports of a watched timeline.
	WatchSeconds int
}

// DefaultSyncSettings returns the names a fresh timeline uses.
func DefaultSyncSettings() SyncSettings {
	return SyncSettings{
		NarrativeArc:        "Narrative",
		PropertyDescription: "Description",
		PropertyNotes:       "Notes",
		PropertyMoonPhase:   "Moon phase",
		TypeArc:             "Arc",
		TypeCharacter:       "Character",
		TypeLocation:        "Location",
		TypeItem:            "Item",
		RoleArc:             "Arc",
		RolePlotLine:        "Storyline",
		RoleCharacter:       "Participant",
		RoleLocation:        "Location",
		RoleItem:            "Item",
		ColorSection:        "Red",
		ColorEvent:          "Yellow",
		WatchSeconds:        2,
	}
}
