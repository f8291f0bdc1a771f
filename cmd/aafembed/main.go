// SPDX-License-Identifier: EPL-2.0

// Command aafembed embeds PCM audio files into AAF-class container files.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ik5/aafembed/cmd/aafembed/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
