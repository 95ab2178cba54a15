package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/invopad/invopad/internal/clock"
	"github.com/invopad/invopad/internal/config"
	"github.com/invopad/invopad/internal/logger"
	"github.com/invopad/invopad/internal/migration"
	"github.com/invopad/invopad/internal/observability"
	"github.com/invopad/invopad/internal/server"
	"github.com/invopad/invopad/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
