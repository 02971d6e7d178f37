// Package cli holds what the block commands share: .env loading, signal
// handling, collection resolution and a short-lived Fx application.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// DefaultCollection is used when neither -collection nor COLLECTION_NAME is set.
const DefaultCollection = "novel_blocks"

// LoadEnv loads .env from the working directory if it exists. Variables
// already set in the environment win.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Collection resolves the collection name from a flag value, then
// COLLECTION_NAME, then DefaultCollection.
func Collection(flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("COLLECTION_NAME")); v != "" {
		return v
	}
	return DefaultCollection
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Run builds an Fx application from opts, starts it, calls run and stops the
// application again. Dependencies reach run through fx.Populate.
func Run(ctx context.Context, run func(ctx context.Context) error, opts ...fx.Option) error {
	app := fx.New(append([]fx.Option{fx.NopLogger}, opts...)...)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	runErr := run(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// Fail prints a one-line error to w and exits with status 1.
func Fail(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// Filters collects repeated key=value flags.
type Filters []string

func (f *Filters) String() string {
	return strings.Join(*f, ",")
}

func (f *Filters) Set(v string) error {
	*f = append(*f, v)
	return nil
}
