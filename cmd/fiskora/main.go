package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/fiskora/fiskora/internal/clock"
	"github.com/fiskora/fiskora/internal/config"
	"github.com/fiskora/fiskora/internal/locking"
	"github.com/fiskora/fiskora/internal/migration"
	"github.com/fiskora/fiskora/internal/observability"
	"github.com/fiskora/fiskora/internal/server"
	"github.com/fiskora/fiskora/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		locking.Module,

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
