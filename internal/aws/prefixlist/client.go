// Package prefixlist looks up the AWS-managed prefix lists of the S3 and
// DynamoDB gateway endpoints, which the cluster instance security group
// needs for its egress rules.
package prefixlist

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// EC2API is the subset of the EC2 client the lookup needs.
type EC2API interface {
	DescribePrefixLists(ctx context.Context, params *awsec2.DescribePrefixListsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribePrefixListsOutput, error)
}

// PrefixList is an AWS-managed prefix list.
type PrefixList struct {
	ID    string   `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	CIDRs []string `json:"cidrs,omitempty" yaml:"cidrs,omitempty"`
}

// Service returns the service part of the list name, e.g. "s3" for
// "com.amazonaws.us-east-1.s3".
func (p PrefixList) Service() string {
	if i := strings.LastIndex(p.Name, "."); i >= 0 {
		return p.Name[i+1:]
	}
	return p.Name
}

// Gateways holds the prefix lists of the two gateway endpoint services.
type Gateways struct {
	Region   string
	Storage  PrefixList
	KeyValue PrefixList
}

type Client struct {
	api EC2API
}

func NewClient(api EC2API) *Client {
	return &Client{api: api}
}

// List returns every AWS-managed prefix list visible in the region, sorted
// by name.
func (c *Client) List(ctx context.Context) ([]PrefixList, error) {
	var lists []PrefixList
	var nextToken *string

	for {
		out, err := c.api.DescribePrefixLists(ctx, &awsec2.DescribePrefixListsInput{
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribePrefixLists: %w", err)
		}

		for _, pl := range out.PrefixLists {
			lists = append(lists, fromSDK(pl))
		}

		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	sort.Slice(lists, func(i, j int) bool { return lists[i].Name < lists[j].Name })
	return lists, nil
}

// Gateways resolves the S3 and DynamoDB prefix lists of region.
func (c *Client) Gateways(ctx context.Context, region string) (Gateways, error) {
	storageName := ServiceName(region, "s3")
	keyValueName := ServiceName(region, "dynamodb")

	out, err := c.api.DescribePrefixLists(ctx, &awsec2.DescribePrefixListsInput{
		Filters: []types.Filter{
			{Name: aws.String("prefix-list-name"), Values: []string{storageName, keyValueName}},
		},
	})
	if err != nil {
		return Gateways{}, fmt.Errorf("DescribePrefixLists: %w", err)
	}

	gw := Gateways{Region: region}
	for _, pl := range out.PrefixLists {
		switch aws.ToString(pl.PrefixListName) {
		case storageName:
			gw.Storage = fromSDK(pl)
		case keyValueName:
			gw.KeyValue = fromSDK(pl)
		}
	}

	var missing []string
	if gw.Storage.ID == "" {
		missing = append(missing, storageName)
	}
	if gw.KeyValue.ID == "" {
		missing = append(missing, keyValueName)
	}
	if len(missing) > 0 {
		return gw, fmt.Errorf("prefix lists not found: %s", strings.Join(missing, ", "))
	}
	return gw, nil
}

// ServiceName is the managed prefix list name of service in region.
func ServiceName(region, service string) string {
	return fmt.Sprintf("com.amazonaws.%s.%s", region, service)
}

func fromSDK(pl types.PrefixList) PrefixList {
	return PrefixList{
		ID:    aws.ToString(pl.PrefixListId),
		Name:  aws.ToString(pl.PrefixListName),
		CIDRs: pl.Cidrs,
	}
}
