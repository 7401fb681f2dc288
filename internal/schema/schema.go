// Package schema lists the persisted models and migrates them.
package schema

import (
	"fmt"

	"gorm.io/gorm"

	catalog "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	production "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/domain"
	tasktemplate "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
)

// Models returns every table-backed model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&catalog.Borne{},
		&catalog.Item{},
		&catalog.CompositionLink{},
		&catalog.StockLog{},
		&tasktemplate.TaskTemplate{},
		&tasktemplate.TemplateItem{},
		&tasktemplate.TemplateLog{},
		&production.Production{},
		&production.Line{},
		&production.Task{},
		&production.TaskLog{},
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
