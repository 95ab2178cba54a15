package invoice

import (
	"github.com/invopad/invopad/internal/invoice/repository"
	"github.com/invopad/invopad/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
