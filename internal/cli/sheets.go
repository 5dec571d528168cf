package cli

import (
	"github.com/spf13/cobra"

	"github.com/bobuk/gtools/internal/google"
)

// SheetsCommand groups the Google Sheets commands.
func (a *App) SheetsCommand() *cobra.Command {
	cmd := group("sheets", "Read and write Google Sheets values")

	info := &cobra.Command{
		Use:   "info <spreadsheet-id>",
		Short: "Show spreadsheet metadata and its sheets",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			g, err := a.sheets(cmd)
			if err != nil {
				return nil, err
			}
			return g.Info(args[0])
		}),
	}

	var readRange string
	read := &cobra.Command{
		Use:   "read <spreadsheet-id>",
		Short: "Read the values of an A1 range",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			g, err := a.sheets(cmd)
			if err != nil {
				return nil, err
			}
			return g.Read(args[0], readRange)
		}),
	}
	read.Flags().StringVar(&readRange, "range", "", "A1 range, e.g. Sheet1!A1:C10")
	_ = read.MarkFlagRequired("range")

	write := valuesCommand(a, "write <spreadsheet-id>", "Overwrite an A1 range with values",
		func(g *google.Sheets, id, rng string, values [][]any, raw bool) (any, error) {
			return g.Write(id, rng, values, raw)
		})
	appendCmd := valuesCommand(a, "append <spreadsheet-id>", "Append rows after the table found in an A1 range",
		func(g *google.Sheets, id, rng string, values [][]any, raw bool) (any, error) {
			return g.Append(id, rng, values, raw)
		})

	var title string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an empty spreadsheet",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string) (any, error) {
			g, err := a.sheets(cmd)
			if err != nil {
				return nil, err
			}
			return g.Create(title)
		}),
	}
	create.Flags().StringVar(&title, "title", "", "spreadsheet title")
	_ = create.MarkFlagRequired("title")

	cmd.AddCommand(info, read, write, appendCmd, create)
	return cmd
}

type valuesFunc func(g *google.Sheets, spreadsheetID, valueRange string, values [][]any, raw bool) (any, error)

// valuesCommand builds write and append, which share their flags.
func valuesCommand(a *App, use, short string, fn valuesFunc) *cobra.Command {
	var (
		valueRange string
		values     string
		raw        bool
	)
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: `  sheets write 1AbC --range=Sheet1!A1 --values='[["name","score"],["ada",42]]'`,
		Args:    cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			rows, err := google.ParseValues(values)
			if err != nil {
				return nil, err
			}
			g, err := a.sheets(cmd)
			if err != nil {
				return nil, err
			}
			return fn(g, args[0], valueRange, rows, raw)
		}),
	}
	cmd.Flags().StringVar(&valueRange, "range", "", "A1 range")
	cmd.Flags().StringVar(&values, "values", "", "JSON array of rows")
	cmd.Flags().BoolVar(&raw, "raw", false, "store values as typed instead of parsing them like the UI")
	_ = cmd.MarkFlagRequired("range")
	_ = cmd.MarkFlagRequired("values")
	return cmd
}

func (a *App) sheets(cmd *cobra.Command) (*google.Sheets, error) {
	opts, err := a.options(cmd.Context())
	if err != nil {
		return nil, err
	}
	return google.NewSheets(cmd.Context(), opts...)
}
