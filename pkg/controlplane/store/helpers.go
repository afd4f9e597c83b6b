package store

import (
	"context"

	"gorm.io/gorm"
)

// ============================================================================
// Generic GORM Helpers
// ============================================================================
//
// These helpers reduce repetitive CRUD boilerplate across store implementation
// files. They operate on the raw *gorm.DB to avoid coupling to GORMStore and
// handle context propagation, not-found error conversion and unique
// constraint detection.

// getWhere retrieves the first record of type T matching query.
// gorm.ErrRecordNotFound is converted to notFoundErr.
//
// Example:
//
//	src, err := getWhere[models.Source](db, ctx, models.ErrSourceNotFound, "plugin_id = ? AND plugin_version = ?", 1, 2)
func getWhere[T any](db *gorm.DB, ctx context.Context, notFoundErr error, query string, args ...any) (*T, error) {
	var result T
	if err := db.WithContext(ctx).Where(query, args...).First(&result).Error; err != nil {
		return nil, convertNotFoundError(err, notFoundErr)
	}
	return &result, nil
}

// listWhere retrieves all records of type T matching query in the given
// order. An empty query matches every record. Returns an empty slice (not
// nil) when nothing matches.
//
// Example:
//
//	plugins, err := listWhere[models.Plugin](db, ctx, "id ASC", "username = ?", "alice")
func listWhere[T any](db *gorm.DB, ctx context.Context, order string, query string, args ...any) ([]*T, error) {
	results := make([]*T, 0)
	q := db.WithContext(ctx)
	if query != "" {
		q = q.Where(query, args...)
	}
	if order != "" {
		q = q.Order(order)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// create inserts entity, converting unique constraint violations to dupErr.
func create[T any](db *gorm.DB, ctx context.Context, entity *T, dupErr error) error {
	if err := db.WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueConstraintError(err) {
			return dupErr
		}
		return err
	}
	return nil
}

// updateWhere updates the named columns of the records matching query from
// values. Columns listed in fields are written even when their value is
// the zero value. Returns notFoundErr if no row matched.
//
// Example:
//
//	err := updateWhere[models.Plugin](db, ctx, p, models.ErrPluginNotFound, []string{"Name"}, "id = ?", p.ID)
func updateWhere[T any](db *gorm.DB, ctx context.Context, values any, notFoundErr error, fields []string, query string, args ...any) error {
	var zero T
	result := db.WithContext(ctx).
		Model(&zero).
		Where(query, args...).
		Select(fields).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundErr
	}
	return nil
}

// deleteWhere deletes records of type T matching query.
// Returns notFoundErr if no rows were affected.
//
// Example:
//
//	err := deleteWhere[models.Developer](db, ctx, models.ErrDeveloperNotFound, "username = ?", "alice")
func deleteWhere[T any](db *gorm.DB, ctx context.Context, notFoundErr error, query string, args ...any) error {
	var zero T
	result := db.WithContext(ctx).Where(query, args...).Delete(&zero)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundErr
	}
	return nil
}
