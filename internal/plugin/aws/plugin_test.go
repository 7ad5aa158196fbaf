package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshcld/sshcld/internal/plugin"
)

type recordedQuery struct {
	region string
	count  int
	err    error
}

type mockRecorder struct {
	queries []recordedQuery
}

func (m *mockRecorder) RecordQuery(_ context.Context, _ string, region string, count int, _ time.Duration, err error) {
	m.queries = append(m.queries, recordedQuery{region: region, count: count, err: err})
}

// regionalClients returns a clientFor func serving one instance per region,
// with the instance ID equal to "i-" + region.
func regionalClients(calls *[]string) func(string) EC2API {
	return func(region string) EC2API {
		return &mockEC2Client{
			DescribeInstancesFunc: func(_ context.Context, _ *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
				*calls = append(*calls, region)
				return &ec2.DescribeInstancesOutput{
					Reservations: []types.Reservation{{Instances: []types.Instance{{InstanceId: aws.String("i-" + region)}}}},
				}, nil
			},
			DescribeRegionsFunc: func(_ context.Context, _ *ec2.DescribeRegionsInput, _ ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
				return &ec2.DescribeRegionsOutput{
					Regions: []types.Region{
						{RegionName: aws.String("eu-west-1")},
						{RegionName: nil},
						{RegionName: aws.String("us-east-1")},
					},
				}, nil
			},
		}
	}
}

func TestPluginName(t *testing.T) {
	p := &Plugin{}
	assert.Equal(t, "aws", p.Name())
}

func TestRegistered(t *testing.T) {
	d, ok := plugin.Get(Name)
	require.True(t, ok)
	assert.Equal(t, "SSM Connection", d.Native.Label)
	assert.Equal(t, "aws_ssm_connection_string", d.Native.ConfigKey)
	assert.NotNil(t, d.New)
}

func TestResolveRegions(t *testing.T) {
	var calls []string
	p := &Plugin{defaultRegion: "eu-central-1", clientFor: regionalClients(&calls)}
	ctx := context.Background()

	tests := []struct {
		name     string
		selector string
		want     []string
	}{
		{"default region", "", []string{"eu-central-1"}},
		{"single region", "us-west-2", []string{"us-west-2"}},
		{"region list", "us-east-1, eu-west-1,", []string{"us-east-1", "eu-west-1"}},
		{"all regions", "all", []string{"eu-west-1", "us-east-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.resolveRegions(ctx, tt.selector)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRegions_MissingRegion(t *testing.T) {
	p := &Plugin{}

	for _, selector := range []string{"", " , "} {
		_, err := p.resolveRegions(context.Background(), selector)

		var apiErr *plugin.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.ErrorIs(t, err, errMissingRegion)
	}
}

func TestResolveRegions_AllUsesFallbackRegion(t *testing.T) {
	var asked string
	p := &Plugin{clientFor: func(region string) EC2API {
		asked = region
		return &mockEC2Client{}
	}}

	regions, err := p.resolveRegions(context.Background(), AllRegions)
	require.NoError(t, err)
	assert.Empty(t, regions)
	assert.Equal(t, fallbackRegion, asked)
}

func TestResolveRegions_DescribeRegionsError(t *testing.T) {
	p := newTestPlugin(&mockEC2Client{
		DescribeRegionsFunc: func(_ context.Context, _ *ec2.DescribeRegionsInput, _ ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "UnauthorizedOperation", Message: "not allowed"}
		},
	})

	_, err := p.resolveRegions(context.Background(), AllRegions)

	var apiErr *plugin.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "not allowed")
}

func TestInstances_RegionOrder(t *testing.T) {
	var calls []string
	p := &Plugin{defaultRegion: "us-east-1", clientFor: regionalClients(&calls)}

	instances, err := p.Instances(context.Background(), "us-west-2,eu-west-1,us-west-2", "")

	require.NoError(t, err)
	assert.Equal(t, []string{"us-west-2", "eu-west-1", "us-west-2"}, calls)
	require.Len(t, instances, 3)
	assert.Equal(t, "i-us-west-2", instances[0].ID)
	assert.Equal(t, "us-west-2", instances[0].Region)
	assert.Equal(t, "i-eu-west-1", instances[1].ID)
	assert.Equal(t, "eu-west-1", instances[1].Region)
	assert.Equal(t, "i-us-west-2", instances[2].ID)
}

func TestInstances_AllRegions(t *testing.T) {
	var calls []string
	p := &Plugin{defaultRegion: "us-east-1", clientFor: regionalClients(&calls)}

	instances, err := p.Instances(context.Background(), "all", "")

	require.NoError(t, err)
	assert.Equal(t, []string{"eu-west-1", "us-east-1"}, calls)
	assert.Len(t, instances, 2)
}

func TestInstances_StopsOnError(t *testing.T) {
	var calls []string
	p := &Plugin{
		defaultRegion: "us-east-1",
		clientFor: func(region string) EC2API {
			return &mockEC2Client{
				DescribeInstancesFunc: func(_ context.Context, _ *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
					calls = append(calls, region)
					if region == "bad-region-1" {
						return nil, errors.New("dial tcp: lookup ec2.bad-region-1.amazonaws.com: no such host")
					}
					return &ec2.DescribeInstancesOutput{}, nil
				},
			}
		},
	}

	instances, err := p.Instances(context.Background(), "us-east-1,bad-region-1,eu-west-1", "")

	var apiErr *plugin.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "bad-region-1", apiErr.Region)
	assert.Nil(t, instances)
	assert.Equal(t, []string{"us-east-1", "bad-region-1"}, calls)
}

func TestInstances_RecordsQueries(t *testing.T) {
	var calls []string
	rec := &mockRecorder{}
	p := &Plugin{defaultRegion: "us-east-1", clientFor: regionalClients(&calls), recorder: rec}

	_, err := p.Instances(context.Background(), "us-east-1,eu-west-1", "")

	require.NoError(t, err)
	require.Len(t, rec.queries, 2)
	assert.Equal(t, recordedQuery{region: "us-east-1", count: 1}, rec.queries[0])
	assert.Equal(t, recordedQuery{region: "eu-west-1", count: 1}, rec.queries[1])
}

func TestInstances_RecordsFailedQuery(t *testing.T) {
	rec := &mockRecorder{}
	p := newTestPlugin(&mockEC2Client{
		DescribeInstancesFunc: func(_ context.Context, _ *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "AuthFailure", Message: "denied"}
		},
	})
	p.recorder = rec

	_, err := p.Instances(context.Background(), "", "")

	require.Error(t, err)
	require.Len(t, rec.queries, 1)
	assert.Equal(t, "us-east-1", rec.queries[0].region)
	assert.Error(t, rec.queries[0].err)
}
