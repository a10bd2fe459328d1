package postgres

import (
	"context"
)

// Find retrieves all records matching the given conditions into dest.
func (p *Postgres) Find(ctx context.Context, dest interface{}, conditions ...interface{}) error {
	return p.DB().WithContext(ctx).Find(dest, conditions...).Error
}

// First retrieves the first record matching the given conditions into dest,
// ordered by primary key. Returns gorm.ErrRecordNotFound when no row matches.
func (p *Postgres) First(ctx context.Context, dest interface{}, conditions ...interface{}) error {
	return p.DB().WithContext(ctx).First(dest, conditions...).Error
}

// Create inserts the given value.
func (p *Postgres) Create(ctx context.Context, value interface{}) error {
	return p.DB().WithContext(ctx).Create(value).Error
}

// Save updates the given value, inserting it if it has no primary key.
func (p *Postgres) Save(ctx context.Context, value interface{}) error {
	return p.DB().WithContext(ctx).Save(value).Error
}

// Update applies attrs to all rows matching the model's non-zero fields.
// Returns the number of affected rows.
func (p *Postgres) Update(ctx context.Context, model interface{}, attrs interface{}) (int64, error) {
	result := p.DB().WithContext(ctx).Model(model).Where(model).Updates(attrs)
	return result.RowsAffected, result.Error
}

// UpdateWhere applies attrs to all rows of model matching the condition.
// Returns the number of affected rows.
func (p *Postgres) UpdateWhere(ctx context.Context, model interface{}, attrs interface{}, condition string, args ...interface{}) (int64, error) {
	result := p.DB().WithContext(ctx).Model(model).Where(condition, args...).Updates(attrs)
	return result.RowsAffected, result.Error
}

// Delete removes records matching the given conditions.
// Returns the number of deleted rows.
func (p *Postgres) Delete(ctx context.Context, value interface{}, conditions ...interface{}) (int64, error) {
	result := p.DB().WithContext(ctx).Delete(value, conditions...)
	return result.RowsAffected, result.Error
}

// Count counts rows of model matching the given conditions.
func (p *Postgres) Count(ctx context.Context, model interface{}, count *int64, conditions ...interface{}) error {
	query := p.DB().WithContext(ctx).Model(model)
	if len(conditions) > 0 {
		query = query.Where(conditions[0], conditions[1:]...)
	}
	return query.Count(count).Error
}

// Exec runs a raw SQL statement. Returns the number of affected rows.
func (p *Postgres) Exec(ctx context.Context, sql string, values ...interface{}) (int64, error) {
	result := p.DB().WithContext(ctx).Exec(sql, values...)
	return result.RowsAffected, result.Error
}

// AutoMigrate creates or updates the schema for the given models.
func (p *Postgres) AutoMigrate(models ...interface{}) error {
	return p.DB().AutoMigrate(models...)
}
