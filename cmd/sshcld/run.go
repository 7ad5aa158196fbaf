package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/sshcld/sshcld/internal/config"
	"github.com/sshcld/sshcld/internal/emitter"
	"github.com/sshcld/sshcld/internal/enrich"
	"github.com/sshcld/sshcld/internal/plugin"
	"github.com/sshcld/sshcld/internal/render"
	"github.com/sshcld/sshcld/pkg/instance"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// run loads configuration, queries the selected provider and writes the
// rendered result to out.
func run(ctx context.Context, opts *options, out io.Writer) error {
	if opts.output != outputTable && opts.output != outputJSON {
		return fmt.Errorf("unknown output format %q, expected %s or %s", opts.output, outputTable, outputJSON)
	}

	defaultPath, userPath := config.DefaultPaths()
	if opts.configPath != "" {
		userPath = opts.configPath
	}

	cfg, err := config.Load(defaultPath, userPath)
	if err != nil {
		return err
	}

	opts.flags.Cloud = opts.cloud()
	if err := cfg.Apply(opts.flags); err != nil {
		return err
	}

	desc, ok := plugin.Get(cfg.DefaultCloud)
	if !ok {
		log.Debug().Str("cloud", cfg.DefaultCloud).Strs("supported", plugin.Names()).Msg("unknown cloud")
		return &config.ConfigurationError{Message: "you specified cloud that is not supported at the moment"}
	}

	instances, err := fetch(ctx, desc, cfg, opts.metricsFile)
	if err != nil {
		return err
	}

	records := enrich.Instances(instances, cfg)

	var rendered string
	switch opts.output {
	case outputJSON:
		if rendered, err = render.JSON(records); err != nil {
			return err
		}
	default:
		rendered = render.Table(cfg, records)
	}

	_, err = fmt.Fprintf(out, "\n%s\n\n", rendered)
	return err
}

// fetch queries the provider. With metricsFile set, query metrics are
// written there once the query finishes, whether or not it succeeded.
func fetch(ctx context.Context, desc plugin.Descriptor, cfg *config.Config, metricsFile string) ([]instance.Instance, error) {
	opts := plugin.Options{Profile: cfg.CloudProfile}

	var metrics *emitter.PrometheusEmitter
	if metricsFile != "" {
		var err error
		if metrics, err = emitter.NewPrometheusEmitter(); err != nil {
			return nil, fmt.Errorf("create metrics emitter: %w", err)
		}
		defer func() {
			if err := metrics.Close(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Msg("close metrics emitter")
			}
		}()
		opts.Recorder = metrics
	}

	p, err := desc.New(ctx, opts)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("cloud", p.Name()).
		Str("region", cfg.CloudRegion).
		Str("filters", cfg.Filters).
		Msg("querying instances")

	instances, err := p.Instances(ctx, cfg.CloudRegion, cfg.Filters)

	if metrics != nil {
		if werr := metrics.WriteTextfile(metricsFile); werr != nil {
			log.Warn().Err(werr).Str("path", metricsFile).Msg("metrics not written")
		}
	}

	if err != nil {
		return nil, err
	}
	return instances, nil
}
