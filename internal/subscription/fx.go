package subscription

import (
	"github.com/invopad/invopad/internal/subscription/repository"
	"github.com/invopad/invopad/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
