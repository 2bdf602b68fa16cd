package domain

// IconKey selects the glyph an app is rendered with
type IconKey string

const (
	IconStickyNote IconKey = "StickyNote"
	IconGlobe      IconKey = "Globe"
	IconFolder     IconKey = "FolderIcon"
)

// IconSpec describes how an IconKey is rendered by clients
type IconSpec struct {
	Key         IconKey `json:"key"`
	Glyph       string  `json:"glyph"`
	DefaultType AppType `json:"defaultType"`
}

// iconCatalog is the closed lookup table of renderable icons
var iconCatalog = map[IconKey]IconSpec{
	IconStickyNote: {Key: IconStickyNote, Glyph: "sticky-note", DefaultType: AppTypeMemo},
	IconGlobe:      {Key: IconGlobe, Glyph: "globe", DefaultType: AppTypeWebsite},
	IconFolder:     {Key: IconFolder, Glyph: "folder", DefaultType: AppTypeFolder},
}

// LookupIcon returns the IconSpec registered for key
func LookupIcon(key IconKey) (IconSpec, bool) {
	spec, ok := iconCatalog[key]
	return spec, ok
}

// IconCatalog returns every IconSpec in a stable order
func IconCatalog() []IconSpec {
	return []IconSpec{
		iconCatalog[IconStickyNote],
		iconCatalog[IconGlobe],
		iconCatalog[IconFolder],
	}
}
