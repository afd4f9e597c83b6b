// Package models defines the persisted entities of the store: developers,
// plugins with their versioned sources, and resources with their versioned
// data files.
package models

// AllModels returns all GORM models for auto-migration.
func AllModels() []any {
	return []any{
		&Developer{},
		&Plugin{},
		&Source{},
		&Resource{},
		&ResourceData{},
	}
}
