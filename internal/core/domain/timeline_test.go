package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
	"version": 3,
	"template": {
		"types": [{"guid": "t-char", "name": "Character", "persistent": true, "sortOrder": 0,
			"roles": [{"guid": "r-part", "name": "Participant", "sortOrder": 0}]}],
		"properties": [{"guid": "p-desc", "name": "Description", "type": "multitext", "sortOrder": 0}],
		"colors": [{"guid": "c-red", "name": "Red"}],
		"rangeProperties": [{"guid": "rp-date", "type": "date",
			"calendar": {"eras": [{"name": "BC"}, {"name": "AD"}], "weekStart": 1}}],
		"viewSettings": {"zoom":4}
	},
	"entities": [{"guid": "e-alice", "entityType": "t-char", "name": "Alice", "notes": "", "sortOrder": 0, "imageRef": "x"}],
	"events": [{
		"guid": "ev-1",
		"title": "Arrival",
		"displayId": 12,
		"tags": ["sea"],
		"color": "c-red",
		"locked": true,
		"values": [
			{"property": "p-desc", "value": "The ship docks."},
			{"property": "p-rating", "value": 4}
		],
		"rangeValues": [{"rangeProperty": "rp-date", "position": {"precision": "minute", "timestamp": 63842689800},
			"span": {"hours": 2, "minutes": 30}}],
		"relationships": [{"entity": "e-alice", "role": "r-part", "percentAllocated": 1}]
	}]
}`

func parseSample(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseDocument([]byte(samplePayload))
	require.NoError(t, err)
	return doc
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Timestamp
	}{
		{"42", 42},
		{"-62135596800", -62135596800},
		{"42.7", 42},
		{"-1.5", -2},
		{"1e3", 1000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			assert.Equal(t, tt.want, ts)
		})
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &ts))
}

func TestDisplayID(t *testing.T) {
	tests := []struct {
		in     string
		want   DisplayID
		number float64
	}{
		{`"7"`, "7", 7},
		{`7`, "7", 7},
		{`7.5`, "7.5", 7.5},
		{`"A1"`, "A1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d DisplayID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &d))
			assert.Equal(t, tt.want, d)
			assert.Equal(t, tt.number, d.Number())
		})
	}

	data, err := json.Marshal(DisplayID("3"))
	require.NoError(t, err)
	assert.Equal(t, `"3"`, string(data))
}

func TestParseDocument(t *testing.T) {
	doc := parseSample(t)

	require.Len(t, doc.Events, 1)
	ev := doc.Events[0]
	assert.Equal(t, "Arrival", ev.Title)
	assert.Equal(t, DisplayID("12"), ev.DisplayID)
	assert.Equal(t, Timestamp(63842689800), ev.RangeValues[0].Position.Timestamp)
	assert.Equal(t, Span{Hours: IntPtr(2), Minutes: IntPtr(30)}, ev.RangeValues[0].Span)

	desc, ok := ev.Value("p-desc")
	require.True(t, ok)
	assert.Equal(t, "The ship docks.", desc.Value)

	rating, ok := ev.Value("p-rating")
	require.True(t, ok)
	assert.Empty(t, rating.Value)

	assert.Contains(t, doc.Extra, "version")
	assert.Contains(t, doc.Template.Extra, "viewSettings")
	assert.Contains(t, ev.Extra, "locked")
	assert.Contains(t, doc.Entities[0].Extra, "imageRef")
}

func TestParseDocument_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{"template": `},
		{"type without guid", `{"template": {"types": [{"name": "Arc"}]}}`},
		{"type without name", `{"template": {"types": [{"guid": "t1"}]}}`},
		{"property without guid", `{"template": {"properties": [{"name": "Notes"}]}}`},
		{"entity without guid", `{"entities": [{"entityType": "t1", "name": "Alice"}]}`},
		{"entity without type", `{"entities": [{"guid": "e1", "name": "Alice"}]}`},
		{"event without guid", `{"events": [{"title": "Arrival"}]}`},
		{"null event", `{"events": [null]}`},
		{"null role", `{"template": {"types": [{"guid": "t1", "name": "Arc", "roles": [null]}]}}`},
		{"null colour", `{"template": {"colors": [null]}}`},
		{"null range property", `{"template": {"rangeProperties": [null]}}`},
		{"null era", `{"template": {"rangeProperties": [{"guid": "rp", "type": "date", "calendar": {"eras": [null]}}]}}`},
		{"null value", `{"events": [{"guid": "ev1", "values": [null]}]}`},
		{"null range value", `{"events": [{"guid": "ev1", "rangeValues": [null]}]}`},
		{"null relationship", `{"events": [{"guid": "ev1", "relationships": [null]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.payload))
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

// Members the model does not declare survive a decode and encode.
func TestDocument_RoundTripKeepsUnknownMembers(t *testing.T) {
	doc := parseSample(t)
	data, err := doc.Encode()
	require.NoError(t, err)

	var got struct {
		Version  int `json:"version"`
		Template struct {
			ViewSettings    map[string]int `json:"viewSettings"`
			RangeProperties []struct {
				Calendar struct {
					WeekStart int `json:"weekStart"`
				} `json:"calendar"`
			} `json:"rangeProperties"`
		} `json:"template"`
		Entities []map[string]any `json:"entities"`
		Events   []struct {
			DisplayID string           `json:"displayId"`
			Locked    bool             `json:"locked"`
			Values    []map[string]any `json:"values"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, 3, got.Version)
	assert.Equal(t, map[string]int{"zoom": 4}, got.Template.ViewSettings)
	assert.Equal(t, 1, got.Template.RangeProperties[0].Calendar.WeekStart)
	assert.Equal(t, "x", got.Entities[0]["imageRef"])
	assert.Equal(t, "12", got.Events[0].DisplayID)
	assert.True(t, got.Events[0].Locked)
	assert.Equal(t, float64(4), got.Events[0].Values[1]["value"])

	again, err := ParseDocument(data)
	require.NoError(t, err)
	if diff := cmp.Diff(doc, again, cmp.AllowUnexported(PropertyValue{})); diff != "" {
		t.Errorf("document changed over a round trip (-want +got):\n%s", diff)
	}
}

func TestDocument_EncodeDeterministic(t *testing.T) {
	doc := parseSample(t)
	first, err := doc.Encode()
	require.NoError(t, err)
	second, err := doc.Encode()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDocument_EncodeEmpty(t *testing.T) {
	data, err := (&Document{}).Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"template": {"types": [], "properties": [], "colors": [], "rangeProperties": []},
		"entities": [],
		"events": []
	}`, string(data))
}

func TestPropertyValue_AssignReplacesRaw(t *testing.T) {
	var v PropertyValue
	require.NoError(t, json.Unmarshal([]byte(`{"property": "p1", "value": [1, 2]}`), &v))

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"property": "p1", "value": [1, 2]}`, string(data))

	v.Value = "text"
	data, err = json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"property": "p1", "value": "text"}`, string(data))
}

func TestTemplate_Lookups(t *testing.T) {
	doc := parseSample(t)
	tpl := &doc.Template

	char := tpl.TypeByName("Character")
	require.NotNil(t, char)
	assert.Equal(t, "t-char", char.GUID)
	assert.Nil(t, tpl.TypeByName("Arc"))

	role := char.RoleByName("Participant")
	require.NotNil(t, role)
	assert.Equal(t, "r-part", role.GUID)
	assert.Nil(t, char.RoleByName("Storyline"))

	require.NotNil(t, tpl.PropertyByName("Description"))
	assert.Nil(t, tpl.PropertyByName("Notes"))

	assert.Equal(t, "c-red", tpl.ColorGUID("Red"))
	assert.Empty(t, tpl.ColorGUID("Blue"))

	guid, ok := tpl.DateRangeProperty()
	assert.True(t, ok)
	assert.Equal(t, "rp-date", guid)
}

func TestTemplate_DateRangePropertyNeedsAD(t *testing.T) {
	tpl := Template{RangeProperties: []*RangeProperty{
		{GUID: "rp-text", Type: "text"},
		{GUID: "rp-date", Type: "date"},
		{GUID: "rp-other", Type: "date", Calendar: &Calendar{Eras: []*Era{{Name: "Age of Sail"}}}},
	}}
	_, ok := tpl.DateRangeProperty()
	assert.False(t, ok)
}

func TestEventRecord_Helpers(t *testing.T) {
	ev := parseSample(t).Events[0]

	assert.NotNil(t, ev.RangeValueFor("rp-date"))
	assert.Nil(t, ev.RangeValueFor("rp-other"))
	assert.True(t, ev.HasRelationship("e-alice", "r-part"))
	assert.False(t, ev.HasRelationship("e-alice", "r-loc"))

	_, ok := ev.Value("p-notes")
	assert.False(t, ok)
}

func TestNewEventExtra(t *testing.T) {
	ev := EventRecord{GUID: "ev-new", Title: "New", DisplayID: "1", Extra: NewEventExtra()}
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"guid": "ev-new",
		"title": "New",
		"displayId": "1",
		"tags": [],
		"color": "",
		"values": [],
		"rangeValues": [],
		"relationships": [],
		"attachments": [],
		"links": [],
		"locked": false,
		"priority": 500
	}`, string(data))
}
