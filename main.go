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
	root := app.Root("gtools", "Gmail, Calendar, Sheets, Docs and YouTube from the command line",
		app.GmailCommand(),
		app.CalendarCommand(),
		app.SheetsCommand(),
		app.DocsCommand(),
		app.YouTubeCommand(),
	)
	code := cli.Execute(ctx, root, os.Stdout)
	stop()
	os.Exit(code)
}
