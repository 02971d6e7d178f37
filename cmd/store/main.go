// Command store embeds preprocessed blocks and upserts them into Qdrant.
//
//	store [-collection novel_blocks] [preprocessed-file]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/blocksearch/internal/cli"
	"github.com/Aleph-Alpha/blocksearch/v1/blocks"
	"github.com/Aleph-Alpha/blocksearch/v1/embedcache"
	"github.com/Aleph-Alpha/blocksearch/v1/embedding"
	"github.com/Aleph-Alpha/blocksearch/v1/logger"
	"github.com/Aleph-Alpha/blocksearch/v1/metrics"
	"github.com/Aleph-Alpha/blocksearch/v1/objectstore"
	"github.com/Aleph-Alpha/blocksearch/v1/qdrant"
	"github.com/Aleph-Alpha/blocksearch/v1/store"
	"github.com/Aleph-Alpha/blocksearch/v1/tracer"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: store [options] [preprocessed-file]\n\n")
	fmt.Fprintf(os.Stderr, "The file defaults to %s.\n\n", blocks.DefaultOutputFile)
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

type deps struct {
	fx.In

	Log          logger.Logger
	Files        *objectstore.Store
	Loader       *store.Loader
	QdrantCfg    qdrant.Config
	EmbeddingCfg embedding.Config
}

func main() {
	collectionFlag := flag.String("collection", "", "target collection (default $COLLECTION_NAME or "+cli.DefaultCollection+")")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) > 1 {
		usage()
		os.Exit(1)
	}

	if err := cli.LoadEnv(); err != nil {
		cli.Fail(os.Stderr, "%v", err)
	}

	inputArg := blocks.DefaultOutputFile
	if len(args) == 1 {
		inputArg = args[0]
	}
	input, err := objectstore.ParseLocation(inputArg)
	if err != nil {
		cli.Fail(os.Stderr, "%v", err)
	}
	collection := cli.Collection(*collectionFlag)

	ctx, stop := cli.SignalContext()
	defer stop()

	fmt.Println("Storing blocks...")

	var d deps
	err = cli.Run(ctx, func(ctx context.Context) error {
		return run(ctx, d, input, collection)
	},
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		objectstore.FXModule,
		qdrant.FXModule,
		embedding.FXModule,
		embedcache.FXModule,
		store.FXModule,
		fx.Populate(&d),
	)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			cli.Fail(os.Stderr, "%s does not exist; run preprocess first", input)
		}
		cli.Fail(os.Stderr, "%v", err)
	}

	fmt.Println()
	fmt.Println("Next step:")
	fmt.Println(`  search "<current story text>"`)
}

func run(ctx context.Context, d deps, input objectstore.Location, collection string) error {
	r, err := d.Files.Open(ctx, input)
	if err != nil {
		return err
	}
	records, err := blocks.ReadRecords(r)
	r.Close()
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d preprocessed blocks\n", len(records))

	fmt.Println("Settings:")
	fmt.Printf("  Qdrant URL:      %s\n", d.QdrantCfg.URL)
	fmt.Printf("  collection:      %s\n", collection)
	fmt.Printf("  embedding model: %s\n", d.EmbeddingCfg.Model)

	report, err := d.Loader.Load(ctx, collection, records, func(done, total int) {
		fmt.Printf("  stored %d/%d blocks...\n", done, total)
	})
	if err != nil {
		return err
	}

	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "Warning: failed to store block (ID: %s): %v\n", f.BlockID, f.Err)
	}

	fmt.Println("Store finished")
	fmt.Printf("  stored:     %d/%d blocks\n", report.Stored, report.Total)
	fmt.Printf("  collection: %s\n", report.Collection)
	fmt.Printf("  took:       %s\n", report.Duration.Round(time.Millisecond))

	d.Log.Info("Store command finished", nil, map[string]interface{}{
		"input":      input.String(),
		"collection": report.Collection,
		"stored":     report.Stored,
		"failed":     len(report.Failures),
	})

	if report.Total > 0 && report.Stored == 0 {
		return fmt.Errorf("no block could be stored")
	}
	return nil
}
