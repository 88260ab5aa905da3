package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

func withCommonFlags(flags []cli.Flag) []cli.Flag {
	res := make([]cli.Flag, len(commonCliFlags))
	copy(res, commonCliFlags)
	return append(res, flags...)
}

func NewApp() *cli.App {
	return &cli.App{
		Name:           "github-pr-label-tagger",
		Usage:          "Create the next semantic version tag from the labels of a merged pull request",
		DefaultCommand: "next-tag",
		Commands: []*cli.Command{
			{
				Name:   "next-tag",
				Usage:  "Compute (and publish) the next semantic version tag",
				Flags:  withCommonFlags(nextTagCliFlags),
				Action: nextTagAction,
			},
			{
				Name:   "label-files",
				Usage:  "Comment a pull request with its diff stats and label it by file extension",
				Flags:  withCommonFlags(labelFilesCliFlags),
				Action: labelFilesAction,
			},
		},
	}
}

// run runs the app and returns the exit code for the errors not already handled by the app
func run(app *cli.App, args []string, stderr io.Writer) int {
	if err := app.Run(args); err != nil {
		fmt.Fprintf(stderr, "bad CLI arguments: %s\n", err)
		return exitCodeUsage
	}
	return 0
}

func Main() {
	if code := run(NewApp(), os.Args, os.Stderr); code != 0 {
		os.Exit(code)
	}
}
