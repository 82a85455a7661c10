package cache

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/jrabinow/kpsync/internal/common"
)

// Client talks to a running kpsyncd over its unix socket.
type Client struct {
	conn *grpc.ClientConn
}

func NewClient(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient("unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCacheUnavailable, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Ping checks that the daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.conn.Invoke(ctx, pingMethod, &PingRequest{}, &PingResponse{}); err != nil {
		return fmt.Errorf("%w: %v", common.ErrCacheUnavailable, err)
	}
	return nil
}

// Lookup returns the cached derived key for a store file path, if the
// daemon holds an unexpired one.
func (c *Client) Lookup(ctx context.Context, path string) ([]byte, bool, error) {
	resp := &LookupResponse{}
	if err := c.conn.Invoke(ctx, lookupMethod, &LookupRequest{Path: path}, resp); err != nil {
		return nil, false, fmt.Errorf("%w: %v", common.ErrCacheUnavailable, err)
	}
	if !resp.Found {
		return nil, false, nil
	}
	return resp.Key, true, nil
}

// Register hands a derived key to the daemon for ttl.
func (c *Client) Register(ctx context.Context, path string, key []byte, ttl time.Duration) error {
	req := &RegisterRequest{Path: path, Key: key, TTLSeconds: int64(ttl / time.Second)}
	if err := c.conn.Invoke(ctx, registerMethod, req, &RegisterResponse{}); err != nil {
		return fmt.Errorf("%w: %v", common.ErrCacheUnavailable, err)
	}
	return nil
}
