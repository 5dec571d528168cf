package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/bobuk/gtools/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	app := cli.NewApp()
	code := cli.Execute(ctx, app.ToolRoot(app.GmailCommand()), os.Stdout)
	stop()
	os.Exit(code)
}
