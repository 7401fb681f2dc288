//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	catalogHTTP "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/delivery/http"
	catalogquery "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/usecase/query"
	productionHTTP "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/delivery/http"
	production "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/domain"
	productioncmd "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/usecase/command"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/seed"
	templateHTTP "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/delivery/http"
	tasktemplate "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
)

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideBorneRepository,
	ProvideItemRepository,
	ProvideLinkRepository,
	ProvideStockRepository,
	ProvideTemplateRepository,
	ProvideTemplateSource,
	ProvideProductionRepository,
	ProvideTaskRepository,
)

var ServiceSet = wire.NewSet(
	catalogquery.NewLookup,
	wire.Bind(new(tasktemplate.CatalogLookup), new(*catalogquery.Lookup)),
	wire.Bind(new(production.BorneLookup), new(*catalogquery.Lookup)),
	productioncmd.NewSyncer,
	wire.Bind(new(tasktemplate.ProductionSync), new(*productioncmd.Syncer)),
	ProvideStockPublisher,
	ProvideTaskPublisher,
)

var HandlerSet = wire.NewSet(
	catalogHTTP.NewCatalogHandler,
	templateHTTP.NewTemplateHandler,
	productionHTTP.NewProductionHandler,
	seed.NewSeeder,
	NewHandlers,
)

// InitializeHandlers builds every HTTP handler with its dependencies
func InitializeHandlers(db *gorm.DB, publishers Publishers) (*Handlers, error) {
	wire.Build(
		RepositorySet,
		ServiceSet,
		HandlerSet,
	)
	return nil, nil
}
