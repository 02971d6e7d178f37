// Command mcp-server exposes qdrant-find and qdrant-store, plus collection
// management when COLLECTION_NAME is unset, as Model Context Protocol tools.
//
// The transport is stdio unless MCP_TRANSPORT=sse. Logs go to stderr so the
// stdio transport keeps stdout to itself.
package main

import (
	"context"
	"os"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/blocksearch/internal/cli"
	"github.com/Aleph-Alpha/blocksearch/v1/embedcache"
	"github.com/Aleph-Alpha/blocksearch/v1/embedding"
	"github.com/Aleph-Alpha/blocksearch/v1/logger"
	"github.com/Aleph-Alpha/blocksearch/v1/mcpserver"
	"github.com/Aleph-Alpha/blocksearch/v1/metrics"
	"github.com/Aleph-Alpha/blocksearch/v1/qdrant"
	"github.com/Aleph-Alpha/blocksearch/v1/search"
	"github.com/Aleph-Alpha/blocksearch/v1/tracer"
)

func main() {
	if err := cli.LoadEnv(); err != nil {
		cli.Fail(os.Stderr, "%v", err)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	var (
		log    logger.Logger
		server *mcpserver.Server
	)
	err := cli.Run(ctx, func(ctx context.Context) error {
		err := server.Serve(ctx)
		if err != nil {
			log.Error("MCP server stopped", err, nil)
		}
		return err
	},
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		qdrant.FXModule,
		embedding.FXModule,
		embedcache.FXModule,
		search.FXModule,
		mcpserver.FXModule,
		fx.Populate(&log, &server),
	)
	if err != nil {
		cli.Fail(os.Stderr, "%v", err)
	}
}
