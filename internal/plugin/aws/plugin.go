// Package aws implements the AWS EC2 inventory plugin for sshcld.
package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/rs/zerolog/log"

	"github.com/sshcld/sshcld/internal/filter"
	"github.com/sshcld/sshcld/internal/plugin"
	"github.com/sshcld/sshcld/pkg/instance"
)

const (
	// Name is the plugin identifier.
	Name = "aws"

	// AllRegions is the region selector that expands to every enabled region.
	AllRegions = "all"

	// fallbackRegion is used to enumerate regions when no region is configured.
	fallbackRegion = "us-east-1"
)

var errMissingRegion = errors.New("you must specify a region")

func init() {
	plugin.Register(plugin.Descriptor{
		Name: Name,
		Native: plugin.NativeClient{
			Label:     "SSM Connection",
			ConfigKey: "aws_ssm_connection_string",
		},
		New: func(ctx context.Context, opts plugin.Options) (plugin.Plugin, error) {
			return New(ctx, opts)
		},
	})
}

// Plugin implements the AWS EC2 inventory.
type Plugin struct {
	// defaultRegion is the region resolved by the SDK from profile or environment.
	defaultRegion string

	// clientFor returns an EC2 client bound to region (interface for testability).
	clientFor func(region string) EC2API

	recorder plugin.Recorder
}

// New creates a new AWS plugin using the SDK default credential chain and
// the optional shared config profile.
func New(ctx context.Context, opts plugin.Options) (*Plugin, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, plugin.NewAPIError(Name, "", fmt.Errorf("load aws config: %w", err))
	}

	log.Debug().
		Str("profile", opts.Profile).
		Str("default_region", awsCfg.Region).
		Msg("aws config loaded")

	return &Plugin{
		defaultRegion: awsCfg.Region,
		clientFor: func(region string) EC2API {
			return ec2.NewFromConfig(awsCfg, func(o *ec2.Options) {
				o.Region = region
			})
		},
		recorder: opts.Recorder,
	}, nil
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return Name
}

// Instances returns EC2 instances matching filters in every selected
// region. Regions are queried one after another and the results are
// concatenated in region order.
func (p *Plugin) Instances(ctx context.Context, regions, filters string) ([]instance.Instance, error) {
	query := filter.Parse(filters)

	regionList, err := p.resolveRegions(ctx, regions)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Strs("regions", regionList).
		Bool("filtered", !query.IsEmpty()).
		Bool("id_lookup", query.IsIDLookup()).
		Msg("querying instances")

	var instances []instance.Instance
	for _, region := range regionList {
		start := time.Now()
		found, err := p.scanRegion(ctx, region, query)
		p.record(ctx, region, len(found), time.Since(start), err)
		if err != nil {
			return nil, err
		}

		log.Debug().Str("region", region).Int("count", len(found)).Msg("region scanned")
		instances = append(instances, found...)
	}

	return instances, nil
}

// resolveRegions expands a region selector into the list of regions to query.
func (p *Plugin) resolveRegions(ctx context.Context, selector string) ([]string, error) {
	selector = strings.TrimSpace(selector)

	switch selector {
	case "":
		if p.defaultRegion == "" {
			return nil, plugin.NewAPIError(Name, "", errMissingRegion)
		}
		return []string{p.defaultRegion}, nil
	case AllRegions:
		return p.enabledRegions(ctx)
	}

	var regions []string
	for _, r := range strings.Split(selector, ",") {
		if r = strings.TrimSpace(r); r != "" {
			regions = append(regions, r)
		}
	}
	if len(regions) == 0 {
		return nil, plugin.NewAPIError(Name, "", errMissingRegion)
	}
	return regions, nil
}

// enabledRegions lists the regions enabled for the account.
func (p *Plugin) enabledRegions(ctx context.Context) ([]string, error) {
	region := p.defaultRegion
	if region == "" {
		region = fallbackRegion
	}

	output, err := p.clientFor(region).DescribeRegions(ctx, &ec2.DescribeRegionsInput{
		AllRegions: aws.Bool(false),
	})
	if err != nil {
		return nil, plugin.NewAPIError(Name, region, fmt.Errorf("describe regions: %w", err))
	}

	regions := make([]string, 0, len(output.Regions))
	for _, r := range output.Regions {
		if r.RegionName != nil {
			regions = append(regions, aws.ToString(r.RegionName))
		}
	}
	return regions, nil
}

func (p *Plugin) record(ctx context.Context, region string, count int, d time.Duration, err error) {
	if p.recorder == nil {
		return
	}
	p.recorder.RecordQuery(ctx, Name, region, count, d, err)
}
