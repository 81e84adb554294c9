package bot

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

type Client struct {
	// NATS connection
	nc      *nats.Conn
	channel string
}

func NewClient(nc *nats.Conn, channel string) *Client {
	return &Client{nc: nc, channel: channel}
}

// RequestAnalysis sends a snapshot to the bot and waits for its answer.
func (c *Client) RequestAnalysis(ctx context.Context, req *AnalysisRequest) (*AnalysisResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	res, err := c.nc.RequestWithContext(ctx, c.channel, data)
	if err != nil {
		if c.nc.LastError() != nil {
			log.Error().Err(c.nc.LastError()).Msg("nats-last-error")
		}
		return nil, err
	}
	return decodeResponse(res.Data)
}

func decodeResponse(data []byte) (*AnalysisResponse, error) {
	resp := &AnalysisResponse{}
	if err := json.Unmarshal(data, resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New("bot returned: " + resp.Error)
	}
	return resp, nil
}

func (c *Client) Close() {
	c.nc.Close()
}
