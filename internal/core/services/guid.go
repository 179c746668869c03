package services

import "github.com/google/uuid"

// Fixed fragments for fabricated template definitions and the narrative arc.
const (
	fragTypeCharacter     = "_typeCharacterGuid"
	fragTypeLocation      = "_typeLocationGuid"
	fragTypeItem          = "_typeItemGuid"
	fragTypeArc           = "typeArcGuid"
	fragRoleCharacter     = "_roleCharacterGuid"
	fragRoleLocation      = "_roleLocationGuid"
	fragRoleItem          = "_roleItemGuid"
	fragRoleArc           = "_roleArcGuid"
	fragRolePlotLine      = "_roleStorylineGuid"
	fragPropertyDesc      = "_propertyDescGuid"
	fragPropertyNotes     = "_propertyNotesGuid"
	fragPropertyMoonPhase = "_propertyMoonphaseGuid"
	fragNarrative         = "entityNarrativeGuid"
	fragSectionPrefix     = "section"
)

// StableID returns the RFC 4122 version 3 UUID of the URL
// "file:///<seed>#<fragment>". Equal inputs always give equal ids, so
// repeated syncs of one project fabricate identical definitions.
func StableID(seed, fragment string) string {
	return uuid.NewMD5(uuid.NameSpaceURL, []byte("file:///"+seed+"#"+fragment)).String()
}
