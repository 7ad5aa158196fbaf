package aws

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog/log"

	"github.com/sshcld/sshcld/internal/filter"
	"github.com/sshcld/sshcld/internal/plugin"
	"github.com/sshcld/sshcld/pkg/instance"
)

// maxResults bounds a single unfiltered DescribeInstances call.
const maxResults = 1000

// notFoundCodes are EC2 error codes that mean "nothing matches" rather
// than a failure.
var notFoundCodes = map[string]bool{
	"InvalidInstanceID.NotFound":  true,
	"InvalidInstanceID.Malformed": true,
}

// scanRegion queries the instances of one region.
func (p *Plugin) scanRegion(ctx context.Context, region string, query filter.Query) ([]instance.Instance, error) {
	output, err := p.clientFor(region).DescribeInstances(ctx, describeInstancesInput(query))
	if err != nil {
		if isNotFoundError(err) {
			log.Debug().Err(err).Str("region", region).Msg("no matching instances")
			return nil, nil
		}
		return nil, plugin.NewAPIError(Name, region, err)
	}

	var instances []instance.Instance
	for _, reservation := range output.Reservations {
		for _, inst := range reservation.Instances {
			instances = append(instances, convertEC2Instance(region, inst))
		}
	}

	return instances, nil
}

// describeInstancesInput builds the EC2 request for query. ID lookups go
// through InstanceIds, which EC2 does not allow together with MaxResults.
func describeInstancesInput(query filter.Query) *ec2.DescribeInstancesInput {
	if query.IsIDLookup() {
		return &ec2.DescribeInstancesInput{InstanceIds: query.InstanceIDs}
	}

	input := &ec2.DescribeInstancesInput{MaxResults: aws.Int32(maxResults)}
	for _, c := range query.TagClauses {
		input.Filters = append(input.Filters, ec2types.Filter{
			Name:   aws.String("tag:" + c.Key),
			Values: []string{c.Value},
		})
	}
	return input
}

// convertEC2Instance normalizes one EC2 record. A record without an
// instance ID degrades to a placeholder instead of failing the scan.
func convertEC2Instance(region string, inst ec2types.Instance) instance.Instance {
	name := extractNameTag(inst.Tags)

	if inst.InstanceId == nil {
		log.Debug().Str("region", region).Str("name", name).Msg("instance record without id, using placeholder")
		return instance.Placeholder(region, name)
	}

	state := instance.Unknown
	if inst.State != nil {
		state = string(inst.State.Name)
	}

	tags := make(map[string]string, len(inst.Tags))
	for _, tag := range inst.Tags {
		if tag.Key == nil {
			continue
		}
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}

	return instance.Instance{
		ID:               aws.ToString(inst.InstanceId),
		Name:             name,
		State:            state,
		Region:           region,
		PrivateIPAddress: aws.ToString(inst.PrivateIpAddress),
		PublicIPAddress:  aws.ToString(inst.PublicIpAddress),
		Tags:             tags,
	}
}

func extractNameTag(tags []ec2types.Tag) string {
	for _, tag := range tags {
		if aws.ToString(tag.Key) == "Name" {
			return aws.ToString(tag.Value)
		}
	}
	return ""
}

// isNotFoundError checks if the error is an EC2 not found error.
func isNotFoundError(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return notFoundCodes[apiErr.ErrorCode()]
	}
	return false
}
