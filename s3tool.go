package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sgaunet/s3tool/pkg/cli"
)

func main() {
	// Handle SIGTERM/SIGINT
	ctx, cancelFunc := context.WithCancel(context.Background())
	SetupCloseHandler(cancelFunc)

	// cobra prints the error on stderr
	err := cli.NewRootCmd(cli.NewService).ExecuteContext(ctx)
	cancelFunc()
	if err != nil {
		os.Exit(1)
	}
}

// SetupCloseHandler cancels the running command on SIGINT/SIGTERM.
func SetupCloseHandler(cancelFunc context.CancelFunc) {
	c := make(chan os.Signal, 5)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-c
		cancelFunc()
	}()
}
