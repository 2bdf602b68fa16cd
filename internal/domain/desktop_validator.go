package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ConsistencyError lists every cross-field invariant a shape-valid document
// violates, one list per category
type ConsistencyError struct {
	DuplicateIDs       []string       `json:"duplicateIds,omitempty"`
	MissingPlacements  []string       `json:"missingPlacements,omitempty"`
	OrphanedPlacements []string       `json:"orphanedPlacements,omitempty"`
	CollidingPositions []GridPosition `json:"collidingPositions,omitempty"`
	InvalidFolderRefs  []string       `json:"invalidFolderRefs,omitempty"`
}

func (e *ConsistencyError) Error() string {
	var parts []string
	if len(e.DuplicateIDs) > 0 {
		parts = append(parts, "duplicate app ids: "+strings.Join(e.DuplicateIDs, ", "))
	}
	if len(e.MissingPlacements) > 0 {
		parts = append(parts, "apps without placement: "+strings.Join(e.MissingPlacements, ", "))
	}
	if len(e.OrphanedPlacements) > 0 {
		parts = append(parts, "placements without app: "+strings.Join(e.OrphanedPlacements, ", "))
	}
	if len(e.CollidingPositions) > 0 {
		cells := make([]string, len(e.CollidingPositions))
		for i, pos := range e.CollidingPositions {
			cells[i] = pos.String()
		}
		parts = append(parts, "colliding positions: "+strings.Join(cells, ", "))
	}
	if len(e.InvalidFolderRefs) > 0 {
		parts = append(parts, "invalid folder references: "+strings.Join(e.InvalidFolderRefs, ", "))
	}
	return fmt.Sprintf("inconsistent desktop state: %s", strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrInvalidState) true
func (e *ConsistencyError) Is(target error) bool {
	return target == ErrInvalidState
}

// Violation categories, named after the ConsistencyError JSON fields
const (
	CategoryDuplicateIDs       = "duplicateIds"
	CategoryMissingPlacements  = "missingPlacements"
	CategoryOrphanedPlacements = "orphanedPlacements"
	CategoryCollidingPositions = "collidingPositions"
	CategoryInvalidFolderRefs  = "invalidFolderRefs"
)

// Violation is one offending app id or coordinate
type Violation struct {
	Category string
	Subject  string
}

// Violations flattens the error into one entry per offending id or
// coordinate, in category order
func (e *ConsistencyError) Violations() []Violation {
	var out []Violation
	add := func(category string, subjects []string) {
		for _, s := range subjects {
			out = append(out, Violation{Category: category, Subject: s})
		}
	}
	add(CategoryDuplicateIDs, e.DuplicateIDs)
	add(CategoryMissingPlacements, e.MissingPlacements)
	add(CategoryOrphanedPlacements, e.OrphanedPlacements)
	for _, pos := range e.CollidingPositions {
		out = append(out, Violation{Category: CategoryCollidingPositions, Subject: pos.String()})
	}
	add(CategoryInvalidFolderRefs, e.InvalidFolderRefs)
	return out
}

// Categories returns the names of the categories with at least one violation
func (e *ConsistencyError) Categories() []string {
	var out []string
	for _, v := range e.Violations() {
		if len(out) == 0 || out[len(out)-1] != v.Category {
			out = append(out, v.Category)
		}
	}
	return out
}

func (e *ConsistencyError) empty() bool {
	return len(e.DuplicateIDs) == 0 &&
		len(e.MissingPlacements) == 0 &&
		len(e.OrphanedPlacements) == 0 &&
		len(e.CollidingPositions) == 0 &&
		len(e.InvalidFolderRefs) == 0
}

// ValidateState checks the document-level invariants of a shape-valid
// document. All checks run; the result is nil or a *ConsistencyError.
func ValidateState(doc *StateDocument) error {
	result := &ConsistencyError{
		DuplicateIDs:       duplicateIDs(doc.Apps),
		MissingPlacements:  missingPlacements(doc),
		OrphanedPlacements: orphanedPlacements(doc),
		CollidingPositions: collidingPositions(doc.AppPositions),
		InvalidFolderRefs:  invalidFolderRefs(doc),
	}
	if result.empty() {
		return nil
	}
	return result
}

// DecodeState parses and validates raw in one step. Writes and reads from
// storage both go through here.
func DecodeState(raw []byte) (*StateDocument, error) {
	doc, err := ParseStateDocument(raw)
	if err != nil {
		return nil, err
	}
	if err := ValidateState(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func duplicateIDs(apps []AppEntry) []string {
	first := make(map[string]int, len(apps))
	for i, app := range apps {
		if _, seen := first[app.ID]; !seen {
			first[app.ID] = i
		}
	}

	var duplicates []string
	reported := make(map[string]bool)
	for i, app := range apps {
		if first[app.ID] != i && !reported[app.ID] {
			reported[app.ID] = true
			duplicates = append(duplicates, app.ID)
		}
	}
	return duplicates
}

func missingPlacements(doc *StateDocument) []string {
	var missing []string
	reported := make(map[string]bool)
	for _, app := range doc.Apps {
		if _, ok := doc.AppPositions[app.ID]; !ok && !reported[app.ID] {
			reported[app.ID] = true
			missing = append(missing, app.ID)
		}
	}
	return missing
}

func orphanedPlacements(doc *StateDocument) []string {
	ids := make(map[string]bool, len(doc.Apps))
	for _, app := range doc.Apps {
		ids[app.ID] = true
	}

	var orphaned []string
	for id := range doc.AppPositions {
		if !ids[id] {
			orphaned = append(orphaned, id)
		}
	}
	sort.Strings(orphaned)
	return orphaned
}

func collidingPositions(positions map[string]Placement) []GridPosition {
	counts := make(map[GridPosition]int)
	for _, placement := range positions {
		if placement.IsPlaced() {
			counts[*placement.Position]++
		}
	}

	var collisions []GridPosition
	for pos, n := range counts {
		if n > 1 {
			collisions = append(collisions, pos)
		}
	}
	sort.Slice(collisions, func(i, j int) bool {
		if collisions[i].Row != collisions[j].Row {
			return collisions[i].Row < collisions[j].Row
		}
		return collisions[i].Col < collisions[j].Col
	})
	return collisions
}

// invalidFolderRefs reports apps placed in something that is not a
// grid-placed folder. Folders do not nest.
func invalidFolderRefs(doc *StateDocument) []string {
	byID := make(map[string]AppEntry, len(doc.Apps))
	for _, app := range doc.Apps {
		if _, seen := byID[app.ID]; !seen {
			byID[app.ID] = app
		}
	}

	var invalid []string
	for id, placement := range doc.AppPositions {
		if placement.IsPlaced() {
			continue
		}
		folder, exists := byID[placement.FolderID]
		switch {
		case placement.FolderID == id, !exists, folder.Type != AppTypeFolder, byID[id].Type == AppTypeFolder:
			invalid = append(invalid, id)
		default:
			if folderPlacement, ok := doc.AppPositions[folder.ID]; ok && !folderPlacement.IsPlaced() {
				invalid = append(invalid, id)
			}
		}
	}
	sort.Strings(invalid)
	return invalid
}
