package prefixlist

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEC2API struct {
	describePrefixListsFunc func(ctx context.Context, params *awsec2.DescribePrefixListsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribePrefixListsOutput, error)
}

func (m *mockEC2API) DescribePrefixLists(ctx context.Context, params *awsec2.DescribePrefixListsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribePrefixListsOutput, error) {
	return m.describePrefixListsFunc(ctx, params, optFns...)
}

func sdkList(id, name string, cidrs ...string) types.PrefixList {
	return types.PrefixList{
		PrefixListId:   awssdk.String(id),
		PrefixListName: awssdk.String(name),
		Cidrs:          cidrs,
	}
}

func TestList_Paginates(t *testing.T) {
	var calls int
	mock := &mockEC2API{
		describePrefixListsFunc: func(ctx context.Context, params *awsec2.DescribePrefixListsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribePrefixListsOutput, error) {
			calls++
			if params.NextToken == nil {
				return &awsec2.DescribePrefixListsOutput{
					PrefixLists: []types.PrefixList{sdkList("pl-63a5400a", "com.amazonaws.us-east-1.s3", "54.231.0.0/17")},
					NextToken:   awssdk.String("page2"),
				}, nil
			}
			assert.Equal(t, "page2", awssdk.ToString(params.NextToken))
			return &awsec2.DescribePrefixListsOutput{
				PrefixLists: []types.PrefixList{sdkList("pl-02cd2c6b", "com.amazonaws.us-east-1.dynamodb")},
			}, nil
		},
	}

	lists, err := NewClient(mock).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, lists, 2)

	assert.Equal(t, "pl-02cd2c6b", lists[0].ID)
	assert.Equal(t, "dynamodb", lists[0].Service())
	assert.Equal(t, "pl-63a5400a", lists[1].ID)
	assert.Equal(t, []string{"54.231.0.0/17"}, lists[1].CIDRs)
}

func TestList_Error(t *testing.T) {
	mock := &mockEC2API{
		describePrefixListsFunc: func(ctx context.Context, params *awsec2.DescribePrefixListsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribePrefixListsOutput, error) {
			return nil, errors.New("access denied")
		},
	}

	_, err := NewClient(mock).List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DescribePrefixLists")
	assert.Contains(t, err.Error(), "access denied")
}

func TestGateways(t *testing.T) {
	mock := &mockEC2API{
		describePrefixListsFunc: func(ctx context.Context, params *awsec2.DescribePrefixListsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribePrefixListsOutput, error) {
			require.Len(t, params.Filters, 1)
			assert.Equal(t, "prefix-list-name", awssdk.ToString(params.Filters[0].Name))
			assert.ElementsMatch(t, []string{
				"com.amazonaws.eu-west-1.s3",
				"com.amazonaws.eu-west-1.dynamodb",
			}, params.Filters[0].Values)

			return &awsec2.DescribePrefixListsOutput{
				PrefixLists: []types.PrefixList{
					sdkList("pl-6da54004", "com.amazonaws.eu-west-1.s3"),
					sdkList("pl-6fa54006", "com.amazonaws.eu-west-1.dynamodb"),
				},
			}, nil
		},
	}

	gw, err := NewClient(mock).Gateways(context.Background(), "eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", gw.Region)
	assert.Equal(t, "pl-6da54004", gw.Storage.ID)
	assert.Equal(t, "pl-6fa54006", gw.KeyValue.ID)
}

func TestGateways_Missing(t *testing.T) {
	mock := &mockEC2API{
		describePrefixListsFunc: func(ctx context.Context, params *awsec2.DescribePrefixListsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribePrefixListsOutput, error) {
			return &awsec2.DescribePrefixListsOutput{
				PrefixLists: []types.PrefixList{sdkList("pl-1", "com.amazonaws.ap-east-2.s3")},
			}, nil
		},
	}

	gw, err := NewClient(mock).Gateways(context.Background(), "ap-east-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "com.amazonaws.ap-east-2.dynamodb")
	assert.Equal(t, "pl-1", gw.Storage.ID)
}

func TestServiceName(t *testing.T) {
	assert.Equal(t, "com.amazonaws.us-west-2.s3", ServiceName("us-west-2", "s3"))
}
