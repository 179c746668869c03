package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// TimelineMember is the archive member holding the timeline payload.
const TimelineMember = "timeline.json"

// Timestamp is a count of seconds since 0001-01-01T00:00:00 in the
// timeline's proleptic calendar. Negative values are BC dates.
type Timestamp int64

// UnmarshalJSON accepts integral and fractional JSON numbers.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*t = Timestamp(i)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	*t = Timestamp(math.Floor(f))
	return nil
}

// DisplayID is the ordinal shown for an event in the timeline UI.
// Timelines store it as a string or a number; it is always written as a string.
type DisplayID string

// UnmarshalJSON accepts both string and numeric ids.
func (d *DisplayID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = DisplayID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = DisplayID(n.String())
	return nil
}

// Number returns the numeric value of the id, or 0 if it is not numeric.
func (d DisplayID) Number() float64 {
	f, err := strconv.ParseFloat(string(d), 64)
	if err != nil {
		return 0
	}
	return f
}

// Document is a parsed timeline: a template plus the entities and events
// defined against it.
type Document struct {
	Template Template       `json:"template"`
	Entities []*Entity      `json:"entities"`
	Events   []*EventRecord `json:"events"`
	Extra    Extra          `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*d = Document(p)
	d.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	p := plain(d)
	if p.Entities == nil {
		p.Entities = []*Entity{}
	}
	if p.Events == nil {
		p.Events = []*EventRecord{}
	}
	return encodeWithExtra(p, d.Extra)
}

// ParseDocument decodes and validates a timeline payload.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode serialises the document. Equal documents encode to equal bytes.
func (d *Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// Validate checks the fields synchronisation relies on. A null element in
// any list the sync walks is rejected.
func (d *Document) Validate() error {
	if err := d.Template.validate(); err != nil {
		return err
	}
	for i, e := range d.Entities {
		if e == nil || e.GUID == "" {
			return fmt.Errorf("%w: entity %d has no guid", ErrInvalidDocument, i)
		}
		if e.EntityType == "" {
			return fmt.Errorf("%w: entity %q has no entityType", ErrInvalidDocument, e.Name)
		}
	}
	for i, ev := range d.Events {
		if ev == nil || ev.GUID == "" {
			return fmt.Errorf("%w: event %d has no guid", ErrInvalidDocument, i)
		}
		if err := ev.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Template) validate() error {
	for i, tt := range t.Types {
		if tt == nil || tt.GUID == "" || tt.Name == "" {
			return fmt.Errorf("%w: template type %d needs guid and name", ErrInvalidDocument, i)
		}
		if hasNil(tt.Roles) {
			return fmt.Errorf("%w: template type %q has a null role", ErrInvalidDocument, tt.Name)
		}
	}
	for i, tp := range t.Properties {
		if tp == nil || tp.GUID == "" {
			return fmt.Errorf("%w: template property %d has no guid", ErrInvalidDocument, i)
		}
	}
	if hasNil(t.Colors) {
		return fmt.Errorf("%w: template has a null colour", ErrInvalidDocument)
	}
	for i, rp := range t.RangeProperties {
		if rp == nil {
			return fmt.Errorf("%w: template range property %d is null", ErrInvalidDocument, i)
		}
		if rp.Calendar != nil && hasNil(rp.Calendar.Eras) {
			return fmt.Errorf("%w: calendar of range property %q has a null era", ErrInvalidDocument, rp.GUID)
		}
	}
	return nil
}

func (ev *EventRecord) validate() error {
	var what string
	switch {
	case hasNil(ev.Values):
		what = "value"
	case hasNil(ev.RangeValues):
		what = "range value"
	case hasNil(ev.Relationships):
		what = "relationship"
	default:
		return nil
	}
	return fmt.Errorf("%w: event %q has a null %s", ErrInvalidDocument, ev.Title, what)
}

func hasNil[T any](items []*T) bool {
	for _, item := range items {
		if item == nil {
			return true
		}
	}
	return false
}

// Template defines the types, properties, colours and calendars of a timeline.
type Template struct {
	Types           []*TemplateType     `json:"types"`
	Properties      []*TemplateProperty `json:"properties"`
	Colors          []*TemplateColor    `json:"colors"`
	RangeProperties []*RangeProperty    `json:"rangeProperties"`
	Extra           Extra               `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Template) UnmarshalJSON(data []byte) error {
	type plain Template
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*t = Template(p)
	t.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Template) MarshalJSON() ([]byte, error) {
	type plain Template
	p := plain(t)
	if p.Types == nil {
		p.Types = []*TemplateType{}
	}
	if p.Properties == nil {
		p.Properties = []*TemplateProperty{}
	}
	if p.Colors == nil {
		p.Colors = []*TemplateColor{}
	}
	if p.RangeProperties == nil {
		p.RangeProperties = []*RangeProperty{}
	}
	return encodeWithExtra(p, t.Extra)
}

// TypeByName returns the first type with the given name.
func (t *Template) TypeByName(name string) *TemplateType {
	for _, tt := range t.Types {
		if tt.Name == name {
			return tt
		}
	}
	return nil
}

// PropertyByName returns the first property with the given name.
func (t *Template) PropertyByName(name string) *TemplateProperty {
	for _, tp := range t.Properties {
		if tp.Name == name {
			return tp
		}
	}
	return nil
}

// ColorGUID returns the guid of the named colour, or "" if undefined.
func (t *Template) ColorGUID(name string) string {
	for _, c := range t.Colors {
		if c.Name == name {
			return c.GUID
		}
	}
	return ""
}

// DateRangeProperty returns the guid of the first date range property
// whose calendar has an "AD" era.
func (t *Template) DateRangeProperty() (string, bool) {
	for _, rp := range t.RangeProperties {
		if rp.Type != "date" || rp.Calendar == nil {
			continue
		}
		for _, era := range rp.Calendar.Eras {
			if era.Name == "AD" {
				return rp.GUID, true
			}
		}
	}
	return "", false
}

// TemplateType is an entity type such as Character or Arc.
type TemplateType struct {
	GUID       string          `json:"guid"`
	Name       string          `json:"name"`
	Color      string          `json:"color,omitempty"`
	Icon       string          `json:"icon,omitempty"`
	Persistent bool            `json:"persistent"`
	SortOrder  int             `json:"sortOrder"`
	Roles      []*TemplateRole `json:"roles"`
	Extra      Extra           `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TemplateType) UnmarshalJSON(data []byte) error {
	type plain TemplateType
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*t = TemplateType(p)
	t.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t TemplateType) MarshalJSON() ([]byte, error) {
	type plain TemplateType
	p := plain(t)
	if p.Roles == nil {
		p.Roles = []*TemplateRole{}
	}
	return encodeWithExtra(p, t.Extra)
}

// RoleByName returns the first role of the type with the given name.
func (t *TemplateType) RoleByName(name string) *TemplateRole {
	for _, r := range t.Roles {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// TemplateRole is a relationship slot between an event and an entity of a type.
type TemplateRole struct {
	GUID                    string `json:"guid"`
	Name                    string `json:"name"`
	Icon                    string `json:"icon,omitempty"`
	SortOrder               int    `json:"sortOrder"`
	AllowsMultipleForEntity bool   `json:"allowsMultipleForEntity"`
	AllowsMultipleForEvent  bool   `json:"allowsMultipleForEvent"`
	AllowsPercentAllocated  bool   `json:"allowsPercentAllocated"`
	MandatoryForEntity      bool   `json:"mandatoryForEntity"`
	MandatoryForEvent       bool   `json:"mandatoryForEvent"`
	Extra                   Extra  `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *TemplateRole) UnmarshalJSON(data []byte) error {
	type plain TemplateRole
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*r = TemplateRole(p)
	r.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r TemplateRole) MarshalJSON() ([]byte, error) {
	type plain TemplateRole
	return encodeWithExtra(plain(r), r.Extra)
}

// TemplateProperty is an event property such as Description.
type TemplateProperty struct {
	GUID        string `json:"guid"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Icon        string `json:"icon,omitempty"`
	SortOrder   int    `json:"sortOrder"`
	CalcMode    string `json:"calcMode,omitempty"`
	Calculate   bool   `json:"calculate"`
	FadeEvents  bool   `json:"fadeEvents"`
	IsMandatory bool   `json:"isMandatory"`
	Extra       Extra  `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *TemplateProperty) UnmarshalJSON(data []byte) error {
	type plain TemplateProperty
	var v plain
	extra, err := decodeWithExtra(data, &v)
	if err != nil {
		return err
	}
	*p = TemplateProperty(v)
	p.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p TemplateProperty) MarshalJSON() ([]byte, error) {
	type plain TemplateProperty
	return encodeWithExtra(plain(p), p.Extra)
}

// TemplateColor maps a colour name to the guid events refer to.
type TemplateColor struct {
	GUID  string `json:"guid"`
	Name  string `json:"name"`
	Extra Extra  `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *TemplateColor) UnmarshalJSON(data []byte) error {
	type plain TemplateColor
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*c = TemplateColor(p)
	c.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c TemplateColor) MarshalJSON() ([]byte, error) {
	type plain TemplateColor
	return encodeWithExtra(plain(c), c.Extra)
}

// RangeProperty is a dimension events are placed on, usually the date.
type RangeProperty struct {
	GUID     string    `json:"guid"`
	Type     string    `json:"type"`
	Calendar *Calendar `json:"calendar,omitempty"`
	Extra    Extra     `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RangeProperty) UnmarshalJSON(data []byte) error {
	type plain RangeProperty
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*r = RangeProperty(p)
	r.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r RangeProperty) MarshalJSON() ([]byte, error) {
	type plain RangeProperty
	return encodeWithExtra(plain(r), r.Extra)
}

// Calendar holds the eras of a date range property.
type Calendar struct {
	Eras  []*Era `json:"eras"`
	Extra Extra  `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Calendar) UnmarshalJSON(data []byte) error {
	type plain Calendar
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*c = Calendar(p)
	c.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Calendar) MarshalJSON() ([]byte, error) {
	type plain Calendar
	p := plain(c)
	if p.Eras == nil {
		p.Eras = []*Era{}
	}
	return encodeWithExtra(p, c.Extra)
}

// Era is a named calendar era.
type Era struct {
	Name  string `json:"name"`
	Extra Extra  `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Era) UnmarshalJSON(data []byte) error {
	type plain Era
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*e = Era(p)
	e.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e Era) MarshalJSON() ([]byte, error) {
	type plain Era
	return encodeWithExtra(plain(e), e.Extra)
}

// Entity is an instance of a template type: a character, location, item or arc.
type Entity struct {
	GUID                 string         `json:"guid"`
	EntityType           string         `json:"entityType"`
	Name                 string         `json:"name"`
	Notes                string         `json:"notes"`
	Icon                 string         `json:"icon,omitempty"`
	SortOrder            int            `json:"sortOrder"`
	SwatchColor          string         `json:"swatchColor,omitempty"`
	CreateRangePosition  *RangePosition `json:"createRangePosition,omitempty"`
	DestroyRangePosition *RangePosition `json:"destroyRangePosition,omitempty"`
	Extra                Extra          `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entity) UnmarshalJSON(data []byte) error {
	type plain Entity
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*e = Entity(p)
	e.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e Entity) MarshalJSON() ([]byte, error) {
	type plain Entity
	return encodeWithExtra(plain(e), e.Extra)
}

// RangePosition marks the creation or destruction of an entity.
type RangePosition struct {
	Precision         string    `json:"precision"`
	RangePropertyGUID string    `json:"rangePropertyGuid"`
	Timestamp         Timestamp `json:"timestamp"`
	Extra             Extra     `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RangePosition) UnmarshalJSON(data []byte) error {
	type plain RangePosition
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*r = RangePosition(p)
	r.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r RangePosition) MarshalJSON() ([]byte, error) {
	type plain RangePosition
	return encodeWithExtra(plain(r), r.Extra)
}

// EventRecord is a timeline event. Events related to the narrative arc
// correspond to novel sections.
type EventRecord struct {
	GUID          string           `json:"guid"`
	Title         string           `json:"title"`
	DisplayID     DisplayID        `json:"displayId"`
	Tags          []string         `json:"tags"`
	Color         string           `json:"color"`
	Values        []*PropertyValue `json:"values"`
	RangeValues   []*RangeValue    `json:"rangeValues"`
	Relationships []*Relationship  `json:"relationships"`
	Extra         Extra            `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (ev *EventRecord) UnmarshalJSON(data []byte) error {
	type plain EventRecord
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*ev = EventRecord(p)
	ev.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ev EventRecord) MarshalJSON() ([]byte, error) {
	type plain EventRecord
	p := plain(ev)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Values == nil {
		p.Values = []*PropertyValue{}
	}
	if p.RangeValues == nil {
		p.RangeValues = []*RangeValue{}
	}
	if p.Relationships == nil {
		p.Relationships = []*Relationship{}
	}
	return encodeWithExtra(p, ev.Extra)
}

// NewEventExtra returns the members a fresh event needs beyond the modelled ones.
func NewEventExtra() Extra {
	return Extra{
		"attachments": rawJSON([]any{}),
		"links":       rawJSON([]any{}),
		"locked":      rawJSON(false),
		"priority":    rawJSON(500),
	}
}

// Value returns the event's value for a property guid.
func (ev *EventRecord) Value(property string) (*PropertyValue, bool) {
	for _, v := range ev.Values {
		if v.Property == property {
			return v, true
		}
	}
	return nil, false
}

// RangeValueFor returns the event's position on the given range property.
func (ev *EventRecord) RangeValueFor(rangeProperty string) *RangeValue {
	for _, rv := range ev.RangeValues {
		if rv.RangeProperty == rangeProperty {
			return rv
		}
	}
	return nil
}

// HasRelationship reports whether the event relates to entity in role.
func (ev *EventRecord) HasRelationship(entity, role string) bool {
	for _, rel := range ev.Relationships {
		if rel.Entity == entity && rel.Role == role {
			return true
		}
	}
	return false
}

// PropertyValue is an event's value for one template property. Non-string
// values are kept verbatim until Value is assigned.
type PropertyValue struct {
	Property string          `json:"property"`
	Value    string          `json:"value"`
	Extra    Extra           `json:"-"`
	raw      json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	type plain struct {
		Property string          `json:"property"`
		Value    json.RawMessage `json:"value"`
	}
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*v = PropertyValue{Property: p.Property, Extra: extra}
	if len(p.Value) == 0 || string(p.Value) == "null" {
		return nil
	}
	if p.Value[0] == '"' {
		return json.Unmarshal(p.Value, &v.Value)
	}
	v.raw = p.Value
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	type plain struct {
		Property string          `json:"property"`
		Value    json.RawMessage `json:"value"`
	}
	p := plain{Property: v.Property, Value: rawJSON(v.Value)}
	if v.Value == "" && v.raw != nil {
		p.Value = v.raw
	}
	return encodeWithExtra(p, v.Extra)
}

// Relationship links an event to an entity in a role.
type Relationship struct {
	Entity           string  `json:"entity"`
	Role             string  `json:"role"`
	PercentAllocated float64 `json:"percentAllocated"`
	Extra            Extra   `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Relationship) UnmarshalJSON(data []byte) error {
	type plain Relationship
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*r = Relationship(p)
	r.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Relationship) MarshalJSON() ([]byte, error) {
	type plain Relationship
	return encodeWithExtra(plain(r), r.Extra)
}

// RangeValue places an event on a range property.
type RangeValue struct {
	RangeProperty string   `json:"rangeProperty"`
	MinimumZoom   *int     `json:"minimumZoom,omitempty"`
	Position      Position `json:"position"`
	Span          Span     `json:"span"`
	Extra         Extra    `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RangeValue) UnmarshalJSON(data []byte) error {
	type plain RangeValue
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*r = RangeValue(p)
	r.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r RangeValue) MarshalJSON() ([]byte, error) {
	type plain RangeValue
	return encodeWithExtra(plain(r), r.Extra)
}

// Position is the start of an event.
type Position struct {
	Precision string    `json:"precision,omitempty"`
	Timestamp Timestamp `json:"timestamp"`
	Extra     Extra     `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Position) UnmarshalJSON(data []byte) error {
	type plain Position
	var v plain
	extra, err := decodeWithExtra(data, &v)
	if err != nil {
		return err
	}
	*p = Position(v)
	p.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Position) MarshalJSON() ([]byte, error) {
	type plain Position
	return encodeWithExtra(plain(p), p.Extra)
}

// Span is an event duration in mixed units. A nil field is absent, which
// is distinct from zero.
type Span struct {
	Years   *int  `json:"years,omitempty"`
	Months  *int  `json:"months,omitempty"`
	Weeks   *int  `json:"weeks,omitempty"`
	Days    *int  `json:"days,omitempty"`
	Hours   *int  `json:"hours,omitempty"`
	Minutes *int  `json:"minutes,omitempty"`
	Seconds *int  `json:"seconds,omitempty"`
	Extra   Extra `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Span) UnmarshalJSON(data []byte) error {
	type plain Span
	var p plain
	extra, err := decodeWithExtra(data, &p)
	if err != nil {
		return err
	}
	*s = Span(p)
	s.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Span) MarshalJSON() ([]byte, error) {
	type plain Span
	return encodeWithExtra(plain(s), s.Extra)
}

// IntPtr returns a pointer to v, for building spans.
func IntPtr(v int) *int {
	return &v
}
