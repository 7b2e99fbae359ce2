package repository

import "gorm.io/gorm"

// AutoMigrate creates/updates the tables behind every repository. The gorm
// models are private to this package, so migration runs from here.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&formModel{},
		&submissionModel{},
		&leadModel{},
	)
}
