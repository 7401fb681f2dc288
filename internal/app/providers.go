// Package app assembles repositories, use cases and HTTP handlers.
package app

import (
	"gorm.io/gorm"

	catalogHTTP "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/delivery/http"
	catalog "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	catalogrepo "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/repository"
	catalogcmd "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/usecase/command"
	productionHTTP "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/delivery/http"
	production "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/domain"
	productionrepo "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/repository"
	productioncmd "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/usecase/command"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/seed"
	templateHTTP "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/delivery/http"
	tasktemplate "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
	templaterepo "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/repository"
)

// Handlers groups every HTTP handler of the service.
type Handlers struct {
	Catalog     *catalogHTTP.CatalogHandler
	Templates   *templateHTTP.TemplateHandler
	Productions *productionHTTP.ProductionHandler
	Seeder      *seed.Seeder
}

func NewHandlers(
	c *catalogHTTP.CatalogHandler,
	t *templateHTTP.TemplateHandler,
	p *productionHTTP.ProductionHandler,
	s *seed.Seeder,
) *Handlers {
	return &Handlers{Catalog: c, Templates: t, Productions: p, Seeder: s}
}

// ProvideBorneRepository provides the borne repository
func ProvideBorneRepository(db *gorm.DB) catalog.BorneRepository {
	return catalogrepo.NewGormBorneRepository(db)
}

// ProvideItemRepository provides the catalog item repository
func ProvideItemRepository(db *gorm.DB) catalog.ItemRepository {
	return catalogrepo.NewGormItemRepository(db)
}

// ProvideLinkRepository provides the composition link repository
func ProvideLinkRepository(db *gorm.DB) catalog.LinkRepository {
	return catalogrepo.NewGormLinkRepository(db)
}

// ProvideStockRepository provides the traced stock repository
func ProvideStockRepository(db *gorm.DB) catalog.StockRepository {
	return catalogrepo.NewTracingStockRepository(catalogrepo.NewGormStockRepository(db))
}

// ProvideTemplateRepository provides the task template repository
func ProvideTemplateRepository(db *gorm.DB) tasktemplate.Repository {
	return templaterepo.NewGormTemplateRepository(db)
}

// ProvideTemplateSource exposes the template repository to productions
func ProvideTemplateSource(repo tasktemplate.Repository) production.TemplateSource {
	return repo
}

// ProvideProductionRepository provides the production repository
func ProvideProductionRepository(db *gorm.DB) production.ProductionRepository {
	return productionrepo.NewGormProductionRepository(db)
}

// ProvideTaskRepository provides the production task repository
func ProvideTaskRepository(db *gorm.DB) production.TaskRepository {
	return productionrepo.NewGormTaskRepository(db)
}

// Publishers carries the optional event sinks. Nil fields disable publishing.
type Publishers struct {
	Stock catalogcmd.StockPublisher
	Tasks productioncmd.TaskPublisher
}

// ProvideStockPublisher extracts the stock publisher
func ProvideStockPublisher(p Publishers) catalogcmd.StockPublisher {
	return p.Stock
}

// ProvideTaskPublisher extracts the task publisher
func ProvideTaskPublisher(p Publishers) productioncmd.TaskPublisher {
	return p.Tasks
}
