package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/shipmentdna/internal/clock"
	"github.com/smallbiznis/shipmentdna/internal/config"
	"github.com/smallbiznis/shipmentdna/internal/migration"
	"github.com/smallbiznis/shipmentdna/internal/observability"
	"github.com/smallbiznis/shipmentdna/internal/scheduler"
	"github.com/smallbiznis/shipmentdna/internal/server"
	"github.com/smallbiznis/shipmentdna/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Functional domains
		migration.Module,
		server.Module,
		scheduler.Module,
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
