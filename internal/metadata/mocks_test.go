package metadata

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/stretchr/testify/mock"
)

// EC2APIMock is a mock implementation of the EC2API interface.
type EC2APIMock struct {
	mock.Mock
}

func (m *EC2APIMock) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ec2.DescribeInstancesOutput), args.Error(1)
}

// ClientFactoryMock is a mock implementation of the ClientFactory interface.
type ClientFactoryMock struct {
	mock.Mock
}

func (m *ClientFactoryMock) EC2(ctx context.Context, account, region string) (EC2API, error) {
	args := m.Called(ctx, account, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(EC2API), args.Error(1)
}
