// Package models holds the persisted entities and their enumerations.
package models

// All returns every model managed by schema migration, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Agent{},
		&Property{},
		&Lead{},
		&Inquiry{},
		&Visit{},
		&Favorite{},
		&Session{},
		&PropertySnapshot{},
		&PropertyChange{},
		&DeleteLog{},
	}
}
