package importer

import (
	"github.com/cory-johannsen/wastehunter/internal/game/character"
)

// Source loads entity documents from a format-specific directory.
//
// Precondition: dir must exist and contain the expected layout for the format.
// Postcondition: returns the loaded entities (possibly with empty IDs), or a
// non-nil error.
type Source interface {
	Load(dir string) ([]*character.Entity, error)
}

// SheetSource reads YAML entity sheets, one entity per file.
type SheetSource struct{}

// NewSheetSource returns a Source over YAML sheets.
func NewSheetSource() SheetSource {
	return SheetSource{}
}

// Load reads every .yaml/.yml sheet in dir.
func (SheetSource) Load(dir string) ([]*character.Entity, error) {
	return character.LoadSheets(dir)
}
