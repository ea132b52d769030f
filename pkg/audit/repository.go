package audit

import (
	"time"

	"gorm.io/gorm"
)

// Repository handles Run persistence, adapted from the teacher's
// TransmissionRepository (same Create/GetRecent/DeleteOlderThan shape,
// applied to decode runs instead of DMR transmissions).
type Repository struct {
	db *gorm.DB
}

// NewRepository wraps a GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create records one completed or failed run.
func (r *Repository) Create(run *Run) error {
	return r.db.Create(run).Error
}

// GetRecent retrieves the most recent N runs, newest first.
func (r *Repository) GetRecent(limit int) ([]Run, error) {
	var runs []Run
	err := r.db.Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// GetByID retrieves a single run.
func (r *Repository) GetByID(id uint) (*Run, error) {
	var run Run
	if err := r.db.First(&run, id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// DeleteOlderThan removes runs started before the given time, used by the
// retention sweep (spec.md's no-network-I/O non-goal excludes any remote
// fetch, but a local prune is pure bookkeeping).
func (r *Repository) DeleteOlderThan(before time.Time) (int64, error) {
	result := r.db.Where("started_at < ?", before).Delete(&Run{})
	return result.RowsAffected, result.Error
}
