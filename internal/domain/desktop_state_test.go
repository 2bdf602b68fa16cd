package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStateDocument_EmptyObjectDefaults(t *testing.T) {
	doc, err := ParseStateDocument([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, doc.Apps)
	assert.Empty(t, doc.Apps)
	assert.NotNil(t, doc.AppPositions)
	assert.Empty(t, doc.AppPositions)

	encoded, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"apps":[],"appPositions":{}}`, string(encoded))

	again, err := ParseStateDocument(encoded)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestParseStateDocument_RoundTrip(t *testing.T) {
	raw := `{
		"apps": [
			{"id":"a1","name":"Notes","iconKey":"StickyNote","color":"#FFEB3B","type":"memo","content":"<p>hi</p>"},
			{"id":"a2","name":"Site","iconKey":"Globe","color":"#2196F3","type":"website","url":"https://example.com","favicon":"https://example.com/favicon.ico"},
			{"id":"f1","name":"Stuff","iconKey":"FolderIcon","color":"#abc","type":"folder"}
		],
		"appPositions": {
			"a1": {"row":0,"col":0},
			"a2": {"folderId":"f1"},
			"f1": {"row":9,"col":5}
		}
	}`

	doc, err := ParseStateDocument([]byte(raw))
	require.NoError(t, err)
	require.Len(t, doc.Apps, 3)
	assert.Equal(t, AppTypeMemo, doc.Apps[0].Type)
	assert.Equal(t, "<p>hi</p>", doc.Apps[0].Content)
	assert.Equal(t, "https://example.com", doc.Apps[1].URL)
	assert.Equal(t, Placed(0, 0), doc.AppPositions["a1"])
	assert.Equal(t, InFolder("f1"), doc.AppPositions["a2"])

	encoded, err := json.Marshal(doc)
	require.NoError(t, err)
	again, err := ParseStateDocument(encoded)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestParseStateDocument_IgnoresUnknownKeys(t *testing.T) {
	doc, err := ParseStateDocument([]byte(`{"apps":[{"id":"a","name":"A","iconKey":"Globe","color":"#fff","extra":1}],"appPositions":{"a":{"row":1,"col":1}},"version":3}`))
	require.NoError(t, err)
	assert.Equal(t, "a", doc.Apps[0].ID)
}

func TestParseStateDocument_NullOptionalFieldsAreAbsent(t *testing.T) {
	doc, err := ParseStateDocument([]byte(`{"apps":[{"id":"a","name":"A","iconKey":"Globe","color":"#fff","type":null,"url":null}]}`))
	require.NoError(t, err)
	assert.Equal(t, AppType(""), doc.Apps[0].Type)
	assert.Equal(t, "", doc.Apps[0].URL)
}

func TestParseStateDocument_AnyAbsoluteURL(t *testing.T) {
	doc, err := ParseStateDocument([]byte(`{"apps":[{"id":"a","name":"A","iconKey":"Globe","color":"#fff","type":"website",
		"url":"ftp://example.com/x","favicon":"data:image/png;base64,iVBORw0KGgo="}]}`))
	require.NoError(t, err)
	assert.Equal(t, "ftp://example.com/x", doc.Apps[0].URL)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", doc.Apps[0].Favicon)
}

func TestParseStateDocument_NullPlacementMembersAreAbsent(t *testing.T) {
	doc, err := ParseStateDocument([]byte(`{"appPositions":{
		"a":{"row":0,"col":1,"folderId":null},
		"b":{"row":null,"col":null,"folderId":"f"}}}`))
	require.NoError(t, err)
	assert.Equal(t, Placed(0, 1), doc.AppPositions["a"])
	assert.Equal(t, InFolder("f"), doc.AppPositions["b"])

	_, err = ParseStateDocument([]byte(`{"appPositions":{"a":{"folderId":null}}}`))
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "appPositions.a", shapeErr.Issues[0].Path)
}

func TestParseStateDocument_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		path string
	}{
		{"not an object", `[]`, ""},
		{"null document", `null`, ""},
		{"malformed json", `{"apps":`, ""},
		{"apps not array", `{"apps":{}}`, "apps"},
		{"apps null", `{"apps":null}`, "apps"},
		{"app not object", `{"apps":[1]}`, "apps[0]"},
		{"missing id", `{"apps":[{"name":"A","iconKey":"Globe","color":"#fff"}]}`, "apps[0].id"},
		{"empty id", `{"apps":[{"id":"","name":"A","iconKey":"Globe","color":"#fff"}]}`, "apps[0].id"},
		{"empty name", `{"apps":[{"id":"a","name":"","iconKey":"Globe","color":"#fff"}]}`, "apps[0].name"},
		{"numeric name", `{"apps":[{"id":"a","name":5,"iconKey":"Globe","color":"#fff"}]}`, "apps[0].name"},
		{"unknown icon", `{"apps":[{"id":"a","name":"A","iconKey":"Rocket","color":"#fff"}]}`, "apps[0].iconKey"},
		{"bad color", `{"apps":[{"id":"a","name":"A","iconKey":"Globe","color":"red"}]}`, "apps[0].color"},
		{"four digit color", `{"apps":[{"id":"a","name":"A","iconKey":"Globe","color":"#abcd"}]}`, "apps[0].color"},
		{"unknown type", `{"apps":[{"id":"a","name":"A","iconKey":"Globe","color":"#fff","type":"widget"}]}`, "apps[0].type"},
		{"relative url", `{"apps":[{"id":"a","name":"A","iconKey":"Globe","color":"#fff","url":"/home"}]}`, "apps[0].url"},
		{"bad favicon", `{"apps":[{"id":"a","name":"A","iconKey":"Globe","color":"#fff","favicon":"not a url"}]}`, "apps[0].favicon"},
		{"positions not object", `{"appPositions":[]}`, "appPositions"},
		{"placement not object", `{"appPositions":{"a":5}}`, "appPositions.a"},
		{"placement empty", `{"appPositions":{"a":{}}}`, "appPositions.a"},
		{"placement both forms", `{"appPositions":{"a":{"row":0,"col":0,"folderId":"f"}}}`, "appPositions.a"},
		{"missing col", `{"appPositions":{"a":{"row":0}}}`, "appPositions.a.col"},
		{"fractional row", `{"appPositions":{"a":{"row":1.5,"col":0}}}`, "appPositions.a.row"},
		{"string row", `{"appPositions":{"a":{"row":"1","col":0}}}`, "appPositions.a.row"},
		{"negative col", `{"appPositions":{"a":{"row":0,"col":-1}}}`, "appPositions.a.col"},
		{"empty folder id", `{"appPositions":{"a":{"folderId":""}}}`, "appPositions.a.folderId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseStateDocument([]byte(tt.raw))
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.True(t, errors.Is(err, ErrInvalidState))

			var shapeErr *ShapeError
			require.True(t, errors.As(err, &shapeErr))
			paths := make([]string, len(shapeErr.Issues))
			for i, issue := range shapeErr.Issues {
				paths[i] = issue.Path
			}
			assert.Contains(t, paths, tt.path)
		})
	}
}

func TestParseStateDocument_ReportsEveryIssue(t *testing.T) {
	raw := `{"apps":[{"id":"a","name":"","iconKey":"Rocket","color":"blue"}],"appPositions":{"a":{"row":10,"col":6}}}`

	_, err := ParseStateDocument([]byte(raw))

	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Len(t, shapeErr.Issues, 5)
}

func TestParseStateDocument_GridBounds(t *testing.T) {
	_, err := ParseStateDocument([]byte(`{"appPositions":{"a":{"row":10,"col":0}}}`))
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = ParseStateDocument([]byte(`{"appPositions":{"a":{"row":0,"col":6}}}`))
	assert.ErrorIs(t, err, ErrInvalidState)

	doc, err := ParseStateDocument([]byte(`{"appPositions":{"a":{"row":9,"col":5}}}`))
	require.NoError(t, err)
	assert.Equal(t, Placed(9, 5), doc.AppPositions["a"])
	assert.True(t, doc.AppPositions["a"].Position.InBounds())
}

func TestParseStateDocument_Deterministic(t *testing.T) {
	raw := []byte(`{"appPositions":{"z":{"row":99,"col":0},"b":{"row":0,"col":99},"m":"x"}}`)

	_, first := ParseStateDocument(raw)
	_, second := ParseStateDocument(raw)
	assert.Equal(t, first.Error(), second.Error())
}

func TestPlacement_UnmarshalJSON(t *testing.T) {
	var positions map[string]Placement
	err := json.Unmarshal([]byte(`{"a":{"row":2,"col":3},"b":{"folderId":"f"}}`), &positions)
	require.NoError(t, err)
	assert.Equal(t, Placed(2, 3), positions["a"])
	assert.Equal(t, InFolder("f"), positions["b"])

	err = json.Unmarshal([]byte(`{"a":{"row":20,"col":3}}`), &positions)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestFolderContents(t *testing.T) {
	doc := &StateDocument{
		Apps: []AppEntry{
			{ID: "f1", Name: "Folder", IconKey: IconFolder, Color: "#000", Type: AppTypeFolder},
			{ID: "f2", Name: "Empty", IconKey: IconFolder, Color: "#000", Type: AppTypeFolder},
			{ID: "m1", Name: "Memo", IconKey: IconStickyNote, Color: "#fff", Type: AppTypeMemo},
			{ID: "m2", Name: "Memo 2", IconKey: IconStickyNote, Color: "#fff", Type: AppTypeMemo},
		},
		AppPositions: map[string]Placement{
			"f1": Placed(0, 0),
			"f2": Placed(0, 1),
			"m1": InFolder("f1"),
			"m2": InFolder("f1"),
		},
	}

	contents := doc.FolderContents()
	assert.Equal(t, []string{"m1", "m2"}, contents["f1"])
	assert.Equal(t, []string{}, contents["f2"])
}
