package services

import (
	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/logger"
)

// SchemaGUIDs are the template guids a sync addresses by display name.
// An empty field means the definition does not exist.
type SchemaGUIDs struct {
	DateProperty string

	TypeCharacter string
	TypeLocation  string
	TypeItem      string
	TypeArc       string

	RoleCharacter string
	RoleLocation  string
	RoleItem      string
	RoleArc       string
	RolePlotLine  string

	PropertyDesc      string
	PropertyNotes     string
	PropertyMoonPhase string
}

// SchemaReconciler makes sure a template has the types, roles and
// properties a sync needs.
type SchemaReconciler struct {
	names domain.SyncSettings
	seed  string
}

// NewSchemaReconciler creates a reconciler for the project identified by seed.
func NewSchemaReconciler(names domain.SyncSettings, seed string) *SchemaReconciler {
	return &SchemaReconciler{names: names, seed: seed}
}

type typeDefaults struct {
	name       string
	fragment   string
	color      string
	icon       string
	persistent bool
}

type roleDefaults struct {
	typeName string
	name     string
	fragment string
	icon     string
}

// Reconcile resolves the guids of all required definitions and appends
// those that are missing. Fabricated guids are derived from the project
// seed, so reconciling an already healed template changes nothing.
// The returned flag reports whether the template was modified.
func (r *SchemaReconciler) Reconcile(t *domain.Template) (SchemaGUIDs, bool, error) {
	var ids SchemaGUIDs
	dateGUID, ok := t.DateRangeProperty()
	if !ok {
		return ids, false, &domain.SchemaError{Reason: `"AD" era is missing in the calendar`}
	}
	ids.DateProperty = dateGUID

	changed := false

	types := []struct {
		def typeDefaults
		dst *string
	}{
		{typeDefaults{r.names.TypeCharacter, fragTypeCharacter, "iconRed", "person", false}, &ids.TypeCharacter},
		{typeDefaults{r.names.TypeLocation, fragTypeLocation, "iconOrange", "map", true}, &ids.TypeLocation},
		{typeDefaults{r.names.TypeItem, fragTypeItem, "iconPurple", "cube", true}, &ids.TypeItem},
		{typeDefaults{r.names.TypeArc, fragTypeArc, "iconYellow", "book", true}, &ids.TypeArc},
	}
	for _, tt := range types {
		guid, added := r.ensureType(t, tt.def)
		*tt.dst = guid
		changed = changed || added
	}

	roles := []struct {
		def roleDefaults
		dst *string
	}{
		{roleDefaults{r.names.TypeArc, r.names.RoleArc, fragRoleArc, "circle text"}, &ids.RoleArc},
		{roleDefaults{r.names.TypeCharacter, r.names.RoleCharacter, fragRoleCharacter, "circle text"}, &ids.RoleCharacter},
		{roleDefaults{r.names.TypeLocation, r.names.RoleLocation, fragRoleLocation, "circle text"}, &ids.RoleLocation},
		{roleDefaults{r.names.TypeItem, r.names.RoleItem, fragRoleItem, "circle text"}, &ids.RoleItem},
		{roleDefaults{r.names.TypeArc, r.names.RolePlotLine, fragRolePlotLine, "circle filled text"}, &ids.RolePlotLine},
	}
	for _, rr := range roles {
		guid, added := r.ensureRole(t, rr.def)
		*rr.dst = guid
		changed = changed || added
	}

	// Notes goes first; the other properties are appended.
	if p := t.PropertyByName(r.names.PropertyNotes); p != nil {
		ids.PropertyNotes = p.GUID
	} else {
		for _, tp := range t.Properties {
			tp.SortOrder++
		}
		ids.PropertyNotes = StableID(r.seed, fragPropertyNotes)
		t.Properties = append([]*domain.TemplateProperty{
			newProperty(ids.PropertyNotes, r.names.PropertyNotes, "tag", "multitext", 0),
		}, t.Properties...)
		logger.Debug("Added property %q", r.names.PropertyNotes)
		changed = true
	}

	if p := t.PropertyByName(r.names.PropertyDescription); p != nil {
		ids.PropertyDesc = p.GUID
	} else {
		ids.PropertyDesc = StableID(r.seed, fragPropertyDesc)
		t.Properties = append(t.Properties,
			newProperty(ids.PropertyDesc, r.names.PropertyDescription, "tag", "multitext", len(t.Properties)))
		logger.Debug("Added property %q", r.names.PropertyDescription)
		changed = true
	}

	if p := t.PropertyByName(r.names.PropertyMoonPhase); p != nil {
		ids.PropertyMoonPhase = p.GUID
	} else if r.names.AddMoonPhase {
		ids.PropertyMoonPhase = StableID(r.seed, fragPropertyMoonPhase)
		t.Properties = append(t.Properties,
			newProperty(ids.PropertyMoonPhase, r.names.PropertyMoonPhase, "flag", "text", len(t.Properties)))
		logger.Debug("Added property %q", r.names.PropertyMoonPhase)
		changed = true
	}

	return ids, changed, nil
}

func (r *SchemaReconciler) ensureType(t *domain.Template, def typeDefaults) (string, bool) {
	if tt := t.TypeByName(def.name); tt != nil {
		return tt.GUID, false
	}
	guid := StableID(r.seed, def.fragment)
	t.Types = append(t.Types, &domain.TemplateType{
		GUID:       guid,
		Name:       def.name,
		Color:      def.color,
		Icon:       def.icon,
		Persistent: def.persistent,
		SortOrder:  len(t.Types),
		Roles:      []*domain.TemplateRole{},
	})
	logger.Debug("Added type %q", def.name)
	return guid, true
}

func (r *SchemaReconciler) ensureRole(t *domain.Template, def roleDefaults) (string, bool) {
	tt := t.TypeByName(def.typeName)
	if tt == nil {
		return "", false
	}
	if role := tt.RoleByName(def.name); role != nil {
		return role.GUID, false
	}
	guid := StableID(r.seed, def.fragment)
	tt.Roles = append(tt.Roles, &domain.TemplateRole{
		GUID:                    guid,
		Name:                    def.name,
		Icon:                    def.icon,
		AllowsMultipleForEntity: true,
		AllowsMultipleForEvent:  true,
	})
	logger.Debug("Added role %q to type %q", def.name, def.typeName)
	return guid, true
}

func newProperty(guid, name, icon, typ string, sortOrder int) *domain.TemplateProperty {
	return &domain.TemplateProperty{
		GUID:      guid,
		Name:      name,
		Type:      typ,
		Icon:      icon,
		SortOrder: sortOrder,
		CalcMode:  "default",
	}
}
