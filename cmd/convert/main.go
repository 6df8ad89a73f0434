package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robalyx/igsheet/internal/classifier"
	"github.com/robalyx/igsheet/internal/export"
	"github.com/robalyx/igsheet/internal/setup"
	"github.com/robalyx/igsheet/internal/setup/telemetry"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	// ConvertLogDir specifies where convert log files are stored.
	ConvertLogDir = "logs/convert_logs"
)

var (
	ErrMissingInput = errors.New("input file is required")
	ErrNoRecords    = errors.New("input contains no records")
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "convert",
		Usage: "Convert a JSON account export into phone and email files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "JSON file to convert",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "exports",
				Usage:   "Base output directory for export files",
			},
			&cli.StringSliceFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output formats (xlsx, csv, sqlite)",
			},
			&cli.StringFlag{
				Name:  "log-dir",
				Value: ConvertLogDir,
				Usage: "Directory for log sessions",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			// Initialize application with required dependencies
			app, err := setup.InitializeApp(ctx, telemetry.ServiceConvert, c.String("log-dir"))
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.Cleanup(ctx)

			input, formatNames, err := getConvertOptions(c)
			if err != nil {
				return err
			}

			formats, err := export.ParseFormats(formatNames)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			result, err := classifier.Classify(raw)
			if err != nil {
				return err
			}
			if result.Empty() {
				return ErrNoRecords
			}

			// Create timestamped output directory
			offset := time.Duration(app.Config.Bot.TimestampOffsetHours) * time.Hour
			timestamp := export.Timestamp(time.Now(), offset)
			outDir := filepath.Join(c.String("output"), timestamp)
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			app.Logger.Info("Converting input",
				zap.String("input", input),
				zap.String("size", humanize.Bytes(uint64(len(raw)))),
				zap.Int("phone", result.Phone.Len()),
				zap.Int("email", result.Email.Len()))

			exporter := export.New(outDir, timestamp, formats, app.Logger)
			if err := exporter.ExportAll(result.Groups()); err != nil {
				return fmt.Errorf("failed to export data: %w", err)
			}

			log.Printf("Wrote %d phone and %d email records to %s",
				result.Phone.Len(), result.Email.Len(), outDir)

			return nil
		},
	}

	return app.Run(context.Background(), os.Args)
}

// getConvertOptions reads the input path and formats from flags, prompting for
// whichever is missing.
func getConvertOptions(c *cli.Command) (string, []string, error) {
	input := c.String("input")
	formats := c.StringSlice("format")

	reader := bufio.NewReader(os.Stdin)

	if input == "" {
		val, err := promptString(reader, "Enter path to JSON file")
		if err != nil {
			return "", nil, fmt.Errorf("failed to read input path: %w", err)
		}
		if val == "" {
			return "", nil, ErrMissingInput
		}
		input = val
	}

	if len(formats) == 0 {
		val, err := promptString(reader, "Enter formats, comma separated [xlsx]")
		if err != nil {
			return "", nil, fmt.Errorf("failed to read formats: %w", err)
		}
		if val != "" {
			formats = strings.Split(val, ",")
		}
	}

	return input, formats, nil
}

// promptString prompts for a string value.
func promptString(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt + ": ")

	input, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	return strings.TrimSpace(input), nil
}
