// Command preprocess reduces a raw block export to the records the store
// command embeds.
//
//	preprocess [-field LLMOutput] <input> [output]
//
// Input and output may be local paths or s3://bucket/key locations.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/blocksearch/internal/cli"
	"github.com/Aleph-Alpha/blocksearch/v1/blocks"
	"github.com/Aleph-Alpha/blocksearch/v1/logger"
	"github.com/Aleph-Alpha/blocksearch/v1/objectstore"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: preprocess [options] <input> [output]\n\n")
	fmt.Fprintf(os.Stderr, "Examples:\n")
	fmt.Fprintf(os.Stderr, "  preprocess block_data.json\n")
	fmt.Fprintf(os.Stderr, "  preprocess block_data.json my_preprocessed.json\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	field := flag.String("field", blocks.DefaultField, "source field holding the block text")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 || len(args) > 2 {
		usage()
		os.Exit(1)
	}

	if err := cli.LoadEnv(); err != nil {
		cli.Fail(os.Stderr, "%v", err)
	}

	input, err := objectstore.ParseLocation(args[0])
	if err != nil {
		cli.Fail(os.Stderr, "%v", err)
	}
	outputArg := blocks.DefaultOutputFile
	if len(args) == 2 {
		outputArg = args[1]
	}
	output, err := objectstore.ParseLocation(outputArg)
	if err != nil {
		cli.Fail(os.Stderr, "%v", err)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	var (
		log   logger.Logger
		files *objectstore.Store
	)

	fmt.Println("Preprocessing blocks...")
	err = cli.Run(ctx, func(ctx context.Context) error {
		return run(ctx, log, files, input, output, *field)
	},
		logger.FXModule,
		objectstore.FXModule,
		fx.Populate(&log, &files),
	)
	if err != nil {
		switch {
		case errors.Is(err, objectstore.ErrNotFound):
			cli.Fail(os.Stderr, "input file %s does not exist", input)
		case errors.Is(err, blocks.ErrUnsupportedShape):
			cli.Fail(os.Stderr, "unsupported JSON structure in %s", input)
		default:
			cli.Fail(os.Stderr, "%v", err)
		}
	}

	fmt.Println()
	fmt.Println("Next step:")
	fmt.Printf("  store %s\n", output)
}

func run(ctx context.Context, log logger.Logger, files *objectstore.Store, input, output objectstore.Location, field string) error {
	r, err := files.Open(ctx, input)
	if err != nil {
		return err
	}
	defer r.Close()

	records, stats, err := blocks.Preprocess(r, blocks.Options{Field: field, Now: time.Now})
	if err != nil {
		log.Error("Preprocessing failed", err, map[string]interface{}{"input": input.String()})
		return err
	}
	fmt.Printf("Loaded %d source items\n", stats.Total)

	var buf bytes.Buffer
	if err := blocks.WriteRecords(&buf, records); err != nil {
		return err
	}
	if err := files.Create(ctx, output, buf.Bytes()); err != nil {
		return err
	}

	log.Info("Preprocessing finished", nil, map[string]interface{}{
		"input":   input.String(),
		"output":  output.String(),
		"kept":    stats.Kept,
		"skipped": stats.Skipped,
	})

	fmt.Println("Preprocessing finished")
	fmt.Printf("  valid blocks: %d\n", stats.Kept)
	if stats.Skipped > 0 {
		fmt.Printf("  skipped:      %d (missing or empty %s)\n", stats.Skipped, field)
	}
	fmt.Printf("  output file:  %s\n", output)
	if len(records) > 0 {
		fmt.Printf("  sample block: %s\n", blocks.Preview(records[0].Content, 100))
	}
	return nil
}
