package client

import (
	"licenseplatform/services/activation-service/pkg/activationrpc"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type ActivationClient struct {
	Client activationrpc.ActivationServiceClient
	conn   *grpc.ClientConn
}

func NewActivationClient(url string) (*ActivationClient, error) {
	cc, err := grpc.NewClient(url, grpc.WithTransportCredentials(insecure.NewCredentials()))

	if err != nil {
		return nil, err
	}

	return &ActivationClient{
		Client: activationrpc.NewActivationServiceClient(cc),
		conn:   cc,
	}, nil
}

func (c *ActivationClient) Close() error {
	return c.conn.Close()
}
