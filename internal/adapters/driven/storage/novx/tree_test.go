package novx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTree(t *testing.T) {
	root, err := parseTree(strings.NewReader(`<?xml version="1.0" encoding="utf-8"?>
<!-- comment -->
<novx version="1.4" xml:lang="de">
	<PROJECT>
		<Title>Fish &amp; Chips</Title>
		<Desc><p>One</p><p></p><p>Three</p></Desc>
	</PROJECT>
</novx>`))
	require.NoError(t, err)

	assert.Equal(t, "novx", root.name)
	assert.Equal(t, "de", root.attr("xml:lang"))
	assert.Equal(t, "1.4", root.attr("version"))

	project := root.child("PROJECT")
	require.NotNil(t, project)
	assert.Len(t, project.children, 2, "indentation is dropped")
	assert.Equal(t, "Fish & Chips", project.child("Title").text())
	assert.Equal(t, "One\n\nThree", project.child("Desc").text())
}

func TestParseTree_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "mismatched", input: "<a><b></a></b>"},
		{name: "unclosed", input: "<a><b></b>"},
		{name: "two roots", input: "<a/><b/>"},
		{name: "malformed", input: "<a attr=></a>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTree(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestElement_Marshal(t *testing.T) {
	root, err := parseTree(strings.NewReader(
		`<novx xml:lang="en"><PROJECT><Title>A &lt;b&gt; "c"</Title><Empty/></PROJECT></novx>`))
	require.NoError(t, err)
	root.child("PROJECT").setAttr("note", `say "hi"`)

	want := `<?xml version="1.0" encoding="UTF-8"?>
<novx xml:lang="en">
	<PROJECT note="say &quot;hi&quot;">
		<Title>A &lt;b&gt; "c"</Title>
		<Empty/>
	</PROJECT>
</novx>
`
	assert.Equal(t, want, string(root.marshal()))

	again, err := parseTree(strings.NewReader(string(root.marshal())))
	require.NoError(t, err)
	assert.Equal(t, string(root.marshal()), string(again.marshal()))
}

func TestElement_Upsert(t *testing.T) {
	order := []string{"Title", "Desc", "Tags", "Content"}
	el := newElement("SECTION")
	el.setText("Tags", "a;b", order)
	el.setText("Title", "First", order)
	el.children = append(el.children, newElement("Content"))
	el.setParagraphs("Desc", "line one\nline two", order)
	el.setText("Custom", "kept", order)

	var names []string
	for _, c := range el.children {
		names = append(names, c.(*element).name)
	}
	assert.Equal(t, []string{"Title", "Desc", "Tags", "Content", "Custom"}, names)
	assert.Equal(t, "line one\nline two", el.child("Desc").text())

	el.setText("Title", "Second", order)
	assert.Equal(t, "Second", el.child("Title").text())
	assert.Len(t, el.elements("Title"), 1)

	el.setText("Title", "", order)
	assert.Nil(t, el.child("Title"))
}

func TestElement_Attributes(t *testing.T) {
	el := newElement("SECTION")
	el.setAttr("status", "2")
	el.setAttr("xml:lang", "en")
	assert.Equal(t, "2", el.attr("status"))
	assert.Equal(t, "en", el.attr("xml:lang"))

	el.setAttr("status", "3")
	assert.Equal(t, "3", el.attr("status"))
	el.setAttr("status", "")
	assert.Empty(t, el.attr("status"))
	assert.Len(t, el.attrs, 1)

	el.setIDs("Characters", []string{"cr1", "cr2"}, nil)
	assert.Equal(t, []string{"cr1", "cr2"}, el.ids("Characters"))
	el.setIDs("Characters", nil, nil)
	assert.Nil(t, el.child("Characters"))
	assert.Empty(t, el.ids("Characters"))
}

func TestParseTree_KeepsInlineSpaces(t *testing.T) {
	root, err := parseTree(strings.NewReader("<Content>\n\t<p><em>a</em> <strong>b</strong></p>\n</Content>"))
	require.NoError(t, err)

	assert.Len(t, root.children, 1)
	assert.Equal(t, "<p><em>a</em> <strong>b</strong></p>", func() string {
		var b bytes.Buffer
		root.child("p").writeInline(&b)
		return b.String()
	}())
}
