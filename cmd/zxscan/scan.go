package main

import (
	"errors"
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/codec"
	"github.com/ericlevine/zxscan/config"
	"github.com/ericlevine/zxscan/internal/logger"
	"github.com/ericlevine/zxscan/publish"
)

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     l10n.T("Decode barcodes from image files"),
		ArgsUsage: "<image-file> [image-file...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file")},
			&cli.BoolFlag{Name: "any", Usage: l10n.T("look for every supported format")},
			&cli.BoolFlag{Name: "qr", Usage: l10n.T("look for QR codes only")},
			&cli.BoolFlag{Name: "all", Usage: l10n.T("report every barcode in each image")},
			&cli.BoolFlag{Name: "gallery", Usage: l10n.T("retry on the image turned a quarter turn")},
			&cli.IntFlag{Name: "width", Usage: l10n.T("maximum decode width in pixels")},
			&cli.IntFlag{Name: "height", Usage: l10n.T("maximum decode height in pixels")},
			&cli.BoolFlag{Name: "try-harder", Usage: l10n.T("spend more time looking for barcodes")},
			&cli.BoolFlag{Name: "pure", Usage: l10n.T("hint that the image is a clean barcode render with minimal border")},
			&cli.StringFlag{Name: "charset", Usage: l10n.T("character set of byte payloads")},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("log level (debug, info, warn, error, quiet)")},
			&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: l10n.T("number of files decoded in parallel")},
			&cli.StringFlag{Name: "mqtt-broker", Usage: l10n.T("publish results to this MQTT broker")},
			&cli.StringFlag{Name: "mqtt-topic", Usage: l10n.T("MQTT topic for results")},
		},
		Action: runScan,
	}
}

// loadConfig reads the configuration file, if any, and applies flag
// overrides on top of it.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if c.IsSet("width") {
		cfg.MaxWidth = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.MaxHeight = c.Int("height")
	}
	if c.IsSet("try-harder") {
		cfg.TryHarder = c.Bool("try-harder")
	}
	if c.IsSet("pure") {
		cfg.PureBarcode = c.Bool("pure")
	}
	if c.IsSet("charset") {
		cfg.CharacterSet = c.String("charset")
	}
	if c.IsSet("gallery") {
		cfg.Gallery = c.Bool("gallery")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("jobs") {
		cfg.Jobs = c.Int("jobs")
	}
	if c.IsSet("mqtt-broker") {
		cfg.MQTT.Broker = c.String("mqtt-broker")
	}
	if c.IsSet("mqtt-topic") {
		cfg.MQTT.Topic = c.String("mqtt-topic")
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	return cfg, cfg.Validate()
}

type scanResult struct {
	path    string
	results []*zxscan.Result
	err     error
}

func runScan(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return cli.Exit(l10n.T("no image files given"), 2)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	hints, err := cfg.DecodeHints()
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if hints.PossibleFormats == nil {
		if c.Bool("any") {
			hints.PossibleFormats = zxscan.AllFormats()
		} else {
			hints.PossibleFormats = codec.CodeHints().PossibleFormats
		}
	}

	log := logger.New(zxscan.ParseLogLevel(cfg.LogLevel))
	dec := codec.New(log).WithBounds(cfg.MaxWidth, cfg.MaxHeight)

	var pub *publish.Publisher
	if cfg.MQTT.Broker != "" {
		pub, err = publish.Connect(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer pub.Close()
	}

	decode := func(path string) ([]*zxscan.Result, error) {
		var result *zxscan.Result
		var err error
		switch {
		case c.Bool("all"):
			return dec.ParseAllResults(path, hints)
		case c.Bool("qr"):
			result, err = dec.ParseQRCodeResult(path, hints)
		case cfg.Gallery:
			result, err = dec.ParseGalleryResult(path, hints)
		default:
			result, err = dec.ParseCodeResult(path, hints)
		}
		if err != nil {
			return nil, err
		}
		return []*zxscan.Result{result}, nil
	}

	log.Debug("Scanning %d files with %d workers", len(paths), cfg.Jobs)
	results := make([]scanResult, len(paths))
	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(cfg.Jobs)
	for i, path := range paths {
		if ctx.Err() != nil {
			log.Warn("Interrupted, shutting down...")
			break
		}
		i, path := i, path
		g.Go(func() error {
			found, err := decode(path)
			results[i] = scanResult{path: path, results: found, err: err}
			return nil
		})
	}
	g.Wait()

	failed := false
	for _, r := range results {
		if r.path == "" {
			failed = true
			continue
		}
		if r.err != nil {
			failed = true
			if errors.Is(r.err, zxscan.ErrNotFound) && !errors.Is(r.err, zxscan.ErrUnreadable) {
				log.Warn("%s: no barcode found", r.path)
			} else {
				log.Error("%s: %v", r.path, r.err)
			}
			continue
		}
		for _, result := range r.results {
			if len(paths) > 1 {
				fmt.Fprintf(c.App.Writer, "%s: ", r.path)
			}
			fmt.Fprintf(c.App.Writer, "[%s] %s\n", result.Format, result.Text)
			if pub == nil {
				continue
			}
			if err := pub.Publish(publish.NewMessage(r.path, result)); err != nil {
				log.Error("%s: %v", r.path, err)
				failed = true
			} else {
				log.Debug("Published %s to %s", r.path, pub.Topic())
			}
		}
	}
	if failed {
		return cli.Exit("", 1)
	}
	return nil
}
