package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/blockfish/ai"
	"github.com/domino14/blockfish/config"
	"github.com/domino14/blockfish/shapetable"
)

const (
	connectAttempts = 5
	connectDelay    = 500 * time.Millisecond
)

// Bot answers analysis requests.
type Bot struct {
	config *config.Config
	table  *shapetable.ShapeTable
	svc    *ai.AI
}

func NewBot(cfg *config.Config, table *shapetable.ShapeTable) (*Bot, error) {
	svc, err := ai.New(cfg.AIConfig(), table)
	if err != nil {
		return nil, err
	}
	return &Bot{config: cfg, table: table, svc: svc}, nil
}

func errorResponse(message string, err error) *AnalysisResponse {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &AnalysisResponse{Error: msg}
}

// Handle answers one request body.
func (bot *Bot) Handle(ctx context.Context, data []byte) *AnalysisResponse {
	req := AnalysisRequest{}
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse("could not parse request", err)
	}
	snap, err := ai.ParseSnapshot(req.Hold, req.Next, req.Field)
	if err != nil {
		return errorResponse("bad snapshot", err)
	}

	svc := bot.svc
	if req.Config != nil {
		if svc, err = ai.New(*req.Config, bot.table); err != nil {
			return errorResponse("bad config", err)
		}
	}
	job := svc.Analyze(snap)
	defer job.Discard()
	if err := job.Wait(ctx); err != nil {
		return errorResponse("analysis failed", err)
	}

	maxInputs := ai.Unlimited
	if req.MaxInputs != nil {
		maxInputs = *req.MaxInputs
	}
	sugs, err := job.Ranked(maxInputs)
	if err != nil {
		return errorResponse("analysis failed", err)
	}
	if req.TopN > 0 && len(sugs) > req.TopN {
		sugs = sugs[:req.TopN]
	}
	st, err := job.Stats()
	if err != nil {
		return errorResponse("analysis failed", err)
	}
	return newAnalysisResponse(st, sugs)
}

// Connect dials NATS, retrying with backoff while ctx allows.
func Connect(ctx context.Context, url string) (*nats.Conn, error) {
	var nc *nats.Conn
	err := retry.Do(
		func() error {
			var err error
			nc, err = nats.Connect(url)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(connectAttempts),
		retry.Delay(connectDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Str("url", url).Msg("nats-connect-retry")
		}),
	)
	if err != nil {
		return nil, err
	}
	return nc, nil
}

// Main serves requests on channel until ctx is done.
func Main(ctx context.Context, channel string, bot *Bot) error {
	nc, err := Connect(ctx, bot.config.GetString(config.ConfigNatsURL))
	if err != nil {
		return err
	}
	defer nc.Drain()

	_, err = nc.Subscribe(channel, func(m *nats.Msg) {
		log.Info().Int("bytes", len(m.Data)).Msg("recv-request")
		resp := bot.Handle(ctx, m.Data)
		data, err := json.Marshal(resp)
		if err != nil {
			// plain structs always marshal; answer anyway so the caller does not hang
			data = []byte(`{"error":"internal error"}`)
		}
		if err := m.Respond(data); err != nil {
			log.Err(err).Msg("respond-failed")
		}
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Str("channel", channel).Msg("listening")

	<-ctx.Done()
	log.Info().Msg("bot-exiting")
	return nil
}
