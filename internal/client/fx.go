package client

import (
	"github.com/invopad/invopad/internal/client/repository"
	"github.com/invopad/invopad/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
