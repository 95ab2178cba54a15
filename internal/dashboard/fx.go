package dashboard

import (
	"github.com/invopad/invopad/internal/dashboard/repository"
	"github.com/invopad/invopad/internal/dashboard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dashboard.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
