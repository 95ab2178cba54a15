package catalog

import (
	"github.com/invopad/invopad/internal/catalog/repository"
	"github.com/invopad/invopad/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
