package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/csvnorm/csvnorm/internal/normalize"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "csvnorm",
		Usage:   "Deterministic CSV normalization",
		Version: Version,
		Commands: []*cli.Command{
			normalizeCmd(),
			inspectCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// normalizeCmd creates the normalize command.
func normalizeCmd() *cli.Command {
	return &cli.Command{
		Name:      "normalize",
		Usage:     "Normalize a CSV file (reads the file argument, or stdin)",
		ArgsUsage: "[input.csv]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write normalized CSV to this path (default: stdout)"},
			&cli.StringFlag{Name: "report", Aliases: []string{"r"}, Usage: "Write the report JSON to this path ('-' for stderr)"},
		},
		Action: func(c *cli.Context) error {
			raw, err := readInput(c)
			if err != nil {
				return err
			}

			artifact, report, err := normalize.New().Normalize(context.Background(), raw)
			if err != nil {
				return err
			}

			if err := writeArtifact(c.String("output"), artifact.Bytes); err != nil {
				return err
			}

			return writeReport(c.String("report"), report)
		},
	}
}

// inspectCmd creates the inspect command.
func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Normalize and print the full result JSON without writing files",
		ArgsUsage: "[input.csv]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "pretty", Aliases: []string{"p"}, Usage: "Indent the JSON output"},
		},
		Action: func(c *cli.Context) error {
			raw, err := readInput(c)
			if err != nil {
				return err
			}

			result, err := normalize.New().Run(context.Background(), raw)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			if c.Bool("pretty") {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(result)
		},
	}
}

// Helper functions

// readInput returns the raw bytes of the file argument, or stdin when no
// argument is given.
func readInput(c *cli.Context) ([]byte, error) {
	if c.NArg() > 0 {
		path := c.Args().First()
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return data, nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

// writeArtifact writes the normalized bytes to path, or stdout when path
// is empty.
func writeArtifact(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeReport writes the report JSON. An empty path suppresses the report;
// "-" sends it to stderr so it can ride alongside the artifact on stdout.
func writeReport(path string, report normalize.Report) error {
	if path == "" {
		return nil
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "-" {
		_, err := os.Stderr.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
