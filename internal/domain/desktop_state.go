package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Grid dimensions of every desktop
const (
	GridRows = 10
	GridCols = 6
)

var hexColorPattern = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// GridPosition is a single cell on the desktop grid
type GridPosition struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether the position lies on the grid
func (p GridPosition) InBounds() bool {
	return p.Row >= 0 && p.Row < GridRows && p.Col >= 0 && p.Col < GridCols
}

func (p GridPosition) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// AppType determines which optional AppEntry fields are meaningful
type AppType string

const (
	AppTypeApp     AppType = "app"
	AppTypeMemo    AppType = "memo"
	AppTypeWebsite AppType = "website"
	AppTypeFolder  AppType = "folder"
)

// IsValid reports whether t is a known app type
func (t AppType) IsValid() bool {
	switch t {
	case AppTypeApp, AppTypeMemo, AppTypeWebsite, AppTypeFolder:
		return true
	}
	return false
}

// AppEntry is one placeable unit on a desktop. Empty optional fields are
// treated as absent.
type AppEntry struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	IconKey IconKey `json:"iconKey"`
	Color   string  `json:"color"`
	Type    AppType `json:"type,omitempty"`
	Content string  `json:"content,omitempty"`
	URL     string  `json:"url,omitempty"`
	Favicon string  `json:"favicon,omitempty"`
}

// Placement is where an app lives: either a grid cell or inside a folder.
// Exactly one of Position and FolderID is set.
type Placement struct {
	Position *GridPosition
	FolderID string
}

// Placed returns a grid placement
func Placed(row, col int) Placement {
	return Placement{Position: &GridPosition{Row: row, Col: col}}
}

// InFolder returns a folder placement
func InFolder(folderID string) Placement {
	return Placement{FolderID: folderID}
}

// IsPlaced reports whether the placement is a grid cell
func (p Placement) IsPlaced() bool {
	return p.Position != nil
}

// MarshalJSON encodes grid placements as {"row","col"} and folder
// placements as {"folderId"}
func (p Placement) MarshalJSON() ([]byte, error) {
	if p.Position != nil {
		return json.Marshal(*p.Position)
	}
	return json.Marshal(struct {
		FolderID string `json:"folderId"`
	}{p.FolderID})
}

// UnmarshalJSON applies the same shape rules as ParseStateDocument
func (p *Placement) UnmarshalJSON(data []byte) error {
	parser := &shapeParser{}
	placement, ok := parser.placement("placement", data)
	if !ok {
		return &ShapeError{Issues: parser.issues}
	}
	*p = placement
	return nil
}

// StateDocument is the full desktop snapshot of one user
type StateDocument struct {
	Apps         []AppEntry           `json:"apps"`
	AppPositions map[string]Placement `json:"appPositions"`
}

// NewStateDocument returns an empty document
func NewStateDocument() *StateDocument {
	return &StateDocument{
		Apps:         []AppEntry{},
		AppPositions: map[string]Placement{},
	}
}

// MarshalJSON always emits apps and appPositions, never null
func (d StateDocument) MarshalJSON() ([]byte, error) {
	type wire StateDocument
	w := wire(d)
	if w.Apps == nil {
		w.Apps = []AppEntry{}
	}
	if w.AppPositions == nil {
		w.AppPositions = map[string]Placement{}
	}
	return json.Marshal(w)
}

// FolderContents derives folder id -> member app ids, in app order
func (d *StateDocument) FolderContents() map[string][]string {
	contents := make(map[string][]string)
	for _, app := range d.Apps {
		if app.Type == AppTypeFolder {
			if _, ok := contents[app.ID]; !ok {
				contents[app.ID] = []string{}
			}
		}
	}
	for _, app := range d.Apps {
		placement, ok := d.AppPositions[app.ID]
		if !ok || placement.IsPlaced() {
			continue
		}
		contents[placement.FolderID] = append(contents[placement.FolderID], app.ID)
	}
	return contents
}

// ShapeIssue is a single field-level problem found while parsing
type ShapeIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ShapeError reports every field-level problem of a candidate document
type ShapeError struct {
	Issues []ShapeIssue
}

func (e *ShapeError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return "invalid desktop state shape: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrInvalidState) true
func (e *ShapeError) Is(target error) bool {
	return target == ErrInvalidState
}

// ParseStateDocument parses a candidate JSON value into a StateDocument.
// Absent apps and appPositions default to empty values; unknown keys are
// dropped. Every shape problem is reported in one *ShapeError.
func ParseStateDocument(raw []byte) (*StateDocument, error) {
	parser := &shapeParser{}
	doc := parser.document(raw)
	if len(parser.issues) > 0 {
		return nil, &ShapeError{Issues: parser.issues}
	}
	return doc, nil
}

type shapeParser struct {
	issues []ShapeIssue
}

func (p *shapeParser) add(path, format string, args ...any) {
	p.issues = append(p.issues, ShapeIssue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (p *shapeParser) object(path string, raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		p.add(path, "must be an object")
		return nil, false
	}
	return fields, true
}

func (p *shapeParser) document(raw []byte) *StateDocument {
	doc := NewStateDocument()

	fields, ok := p.object("", raw)
	if !ok {
		return doc
	}

	if rawApps, present := fields["apps"]; present {
		doc.Apps = p.apps(rawApps)
	}
	if rawPositions, present := fields["appPositions"]; present {
		doc.AppPositions = p.positions(rawPositions)
	}
	return doc
}

func (p *shapeParser) apps(raw json.RawMessage) []AppEntry {
	var items []json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &items) != nil {
		p.add("apps", "must be an array")
		return []AppEntry{}
	}

	apps := make([]AppEntry, 0, len(items))
	for i, item := range items {
		if app, ok := p.app(fmt.Sprintf("apps[%d]", i), item); ok {
			apps = append(apps, app)
		}
	}
	return apps
}

func (p *shapeParser) app(path string, raw json.RawMessage) (AppEntry, bool) {
	fields, ok := p.object(path, raw)
	if !ok {
		return AppEntry{}, false
	}

	before := len(p.issues)
	var app AppEntry

	if id, present := p.stringField(path, fields, "id", true); present && id == "" {
		p.add(path+".id", "must not be empty")
	} else {
		app.ID = id
	}

	if name, present := p.stringField(path, fields, "name", true); present && name == "" {
		p.add(path+".name", "must not be empty")
	} else {
		app.Name = name
	}

	if key, present := p.stringField(path, fields, "iconKey", true); present {
		if _, known := LookupIcon(IconKey(key)); !known {
			p.add(path+".iconKey", "must be one of StickyNote, Globe, FolderIcon")
		}
		app.IconKey = IconKey(key)
	}

	if color, present := p.stringField(path, fields, "color", true); present {
		if !hexColorPattern.MatchString(color) {
			p.add(path+".color", "must be a hex color like #RGB or #RRGGBB")
		}
		app.Color = color
	}

	if appType, present := p.stringField(path, fields, "type", false); present {
		if !AppType(appType).IsValid() {
			p.add(path+".type", "must be one of app, memo, website, folder")
		}
		app.Type = AppType(appType)
	}

	app.Content, _ = p.stringField(path, fields, "content", false)

	if link, present := p.stringField(path, fields, "url", false); present {
		if !IsAbsoluteURL(link) {
			p.add(path+".url", "must be an absolute URL")
		}
		app.URL = link
	}

	if favicon, present := p.stringField(path, fields, "favicon", false); present {
		if !IsAbsoluteURL(favicon) {
			p.add(path+".favicon", "must be an absolute URL")
		}
		app.Favicon = favicon
	}

	return app, len(p.issues) == before
}

// stringField decodes fields[key] as a string. Optional fields that are
// absent or null report present=false.
func (p *shapeParser) stringField(path string, fields map[string]json.RawMessage, key string, required bool) (string, bool) {
	raw, ok := fields[key]
	if !ok || (!required && isNull(raw)) {
		if required {
			p.add(path+"."+key, "is required")
		}
		return "", false
	}

	var value string
	if isNull(raw) || json.Unmarshal(raw, &value) != nil {
		p.add(path+"."+key, "must be a string")
		return "", false
	}
	return value, true
}

func (p *shapeParser) positions(raw json.RawMessage) map[string]Placement {
	positions := map[string]Placement{}

	var entries map[string]json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &entries) != nil {
		p.add("appPositions", "must be an object")
		return positions
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if placement, ok := p.placement("appPositions."+id, entries[id]); ok {
			positions[id] = placement
		}
	}
	return positions
}

func (p *shapeParser) placement(path string, raw json.RawMessage) (Placement, bool) {
	fields, ok := p.object(path, raw)
	if !ok {
		return Placement{}, false
	}

	// null members count as absent
	rowRaw, hasRow := member(fields, "row")
	colRaw, hasCol := member(fields, "col")
	folderRaw, hasFolder := member(fields, "folderId")

	switch {
	case hasFolder && (hasRow || hasCol):
		p.add(path, "must be either a grid position or a folder reference, not both")
		return Placement{}, false
	case hasFolder:
		var folderID string
		if json.Unmarshal(folderRaw, &folderID) != nil {
			p.add(path+".folderId", "must be a string")
			return Placement{}, false
		}
		if folderID == "" {
			p.add(path+".folderId", "must not be empty")
			return Placement{}, false
		}
		return InFolder(folderID), true
	case hasRow || hasCol:
		row, rowOK := p.coordinate(path+".row", rowRaw, hasRow, GridRows-1)
		col, colOK := p.coordinate(path+".col", colRaw, hasCol, GridCols-1)
		if !rowOK || !colOK {
			return Placement{}, false
		}
		return Placed(row, col), true
	default:
		p.add(path, "must have row and col or folderId")
		return Placement{}, false
	}
}

func (p *shapeParser) coordinate(path string, raw json.RawMessage, present bool, max int) (int, bool) {
	if !present {
		p.add(path, "is required")
		return 0, false
	}

	var value float64
	if isNull(raw) || json.Unmarshal(raw, &value) != nil || value != math.Trunc(value) {
		p.add(path, "must be an integer")
		return 0, false
	}
	if value < 0 || value > float64(max) {
		p.add(path, "must be between 0 and %d", max)
		return 0, false
	}
	return int(value), true
}

// IsAbsoluteURL reports whether s parses as a URL with a scheme
func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.IsAbs()
}

// IsWebURL reports whether s is an absolute http or https URL with a host
func IsWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func member(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
