package metadata

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

const roleSessionName = "flappy-detector"

// ClientFactory returns an EC2 client scoped to an account and region.
type ClientFactory interface {
	EC2(ctx context.Context, account, region string) (EC2API, error)
}

// AssumeRoleFactory builds EC2 clients that act in other accounts by assuming
// a role of the same name in each of them. Credentials and clients are cached
// for the lifetime of the factory; it is not safe for concurrent use.
type AssumeRoleFactory struct {
	awsCfg    aws.Config
	sts       stscreds.AssumeRoleAPIClient
	roleName  string
	partition string

	credentials map[string]aws.CredentialsProvider
	clients     map[string]EC2API
}

// NewAssumeRoleFactory creates a new AssumeRoleFactory.
func NewAssumeRoleFactory(awsCfg aws.Config, sts stscreds.AssumeRoleAPIClient, roleName string) *AssumeRoleFactory {
	return &AssumeRoleFactory{
		awsCfg:      awsCfg,
		sts:         sts,
		roleName:    roleName,
		partition:   "aws",
		credentials: make(map[string]aws.CredentialsProvider),
		clients:     make(map[string]EC2API),
	}
}

// EC2 returns an EC2 client for the account and region.
func (f *AssumeRoleFactory) EC2(_ context.Context, account, region string) (EC2API, error) {
	cacheKey := account + "/" + region
	if client, ok := f.clients[cacheKey]; ok {
		return client, nil
	}

	creds, ok := f.credentials[account]
	if !ok {
		roleARN, err := RoleARN(f.partition, account, f.roleName)
		if err != nil {
			return nil, err
		}

		creds = aws.NewCredentialsCache(stscreds.NewAssumeRoleProvider(f.sts, roleARN,
			func(o *stscreds.AssumeRoleOptions) {
				o.RoleSessionName = roleSessionName
			}))
		f.credentials[account] = creds
	}

	client := ec2.NewFromConfig(f.awsCfg, func(o *ec2.Options) {
		o.Region = region
		o.Credentials = creds
	})
	f.clients[cacheKey] = client

	return client, nil
}

// RoleARN builds the ARN of a role in the given account.
func RoleARN(partition, account, roleName string) (string, error) {
	if account == "" {
		return "", fmt.Errorf("cannot build role arn: account is empty")
	}
	if roleName == "" {
		return "", fmt.Errorf("cannot build role arn: role name is empty")
	}

	return arn.ARN{
		Partition: partition,
		Service:   "iam",
		AccountID: account,
		Resource:  "role/" + roleName,
	}.String(), nil
}
