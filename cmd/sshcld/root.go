package main

import (
	"github.com/spf13/cobra"

	"github.com/sshcld/sshcld/internal/config"
)

var version = "0.1.0"

// options holds every command line setting of one invocation.
type options struct {
	flags config.Flags

	aws   bool
	azure bool

	configPath  string
	output      string
	debug       bool
	metricsFile string
}

// cloud returns the provider selected on the command line, if any.
func (o *options) cloud() string {
	switch {
	case o.aws:
		return "aws"
	case o.azure:
		return "azure"
	}
	return ""
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "sshcld",
		Short: "List cloud instances and how to connect to them",
		Long: `sshcld - cloud instance inventory

sshcld queries your cloud provider for compute instances, filters them by
tags or instance ID, and prints a table with their addresses, selected tags
and ready-to-use SSH and native connection commands.

Settings come from the command line, then ~/sshcld.yaml, then the
sshcld.yaml shipped next to the binary.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.ErrOrStderr(), opts.debug)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.SetVersionTemplate("sshcld {{.Version}}\n")

	f := cmd.Flags()
	f.StringVarP(&opts.flags.Region, "region", "r", "", `region to query, comma separated list or "all"`)
	f.StringVarP(&opts.flags.Profile, "profile", "p", "", "cloud credentials profile")
	f.StringVarP(&opts.flags.Filter, "filter", "f", "", "tag filter, e.g. Environment=production,Team=web")
	f.StringVarP(&opts.flags.Name, "name", "n", "", "filter by the Name tag")
	f.StringVarP(&opts.flags.ID, "id", "i", "", "look up a single instance ID")
	f.BoolVar(&opts.aws, "aws", false, "use Amazon Web Services")
	f.BoolVar(&opts.azure, "azure", false, "use Microsoft Azure (not supported yet)")
	f.BoolVar(&opts.flags.SSH, "ssh", false, "show SSH connection strings")
	f.BoolVar(&opts.flags.SSM, "ssm", false, "show AWS SSM connection strings")
	f.StringVarP(&opts.configPath, "config", "c", "", "user configuration file (default ~/sshcld.yaml)")
	f.StringVarP(&opts.output, "output", "o", outputTable, "output format: table or json")
	f.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")

	cmd.MarkFlagsMutuallyExclusive("filter", "name", "id")
	cmd.MarkFlagsMutuallyExclusive("aws", "azure")

	return cmd
}
