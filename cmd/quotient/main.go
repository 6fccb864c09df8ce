package main

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quotient/internal/config"
	"github.com/smallbiznis/quotient/internal/logger"
	"github.com/smallbiznis/quotient/internal/metrics"
	"github.com/smallbiznis/quotient/internal/migration"
	"github.com/smallbiznis/quotient/internal/server"
	"github.com/smallbiznis/quotient/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		metrics.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(nodeID())
	if err != nil {
		panic(err)
	}
	return node
}

func nodeID() int64 {
	raw := os.Getenv("SNOWFLAKE_NODE_ID")
	if raw == "" {
		return 1
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 || id > 1023 {
		return 1
	}
	return id
}
