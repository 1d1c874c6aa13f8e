package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/greenqif/pkg/auth"
	"github.com/yurifrl/greenqif/pkg/config"
	"github.com/yurifrl/greenqif/pkg/greengot"
	"github.com/yurifrl/greenqif/pkg/models"
)

// Processor runs the fetch pipeline: credential load or bootstrap, version
// gate, session sanity check, then the full paginated history.
type Processor struct {
	config  *config.Config
	logger  *log.Logger
	lines   greengot.LineReader
	prompts io.Writer
}

func NewProcessor(cfg *config.Config, logger *log.Logger, lines greengot.LineReader, prompts io.Writer) *Processor {
	return &Processor{
		config:  cfg,
		logger:  logger,
		lines:   lines,
		prompts: prompts,
	}
}

// Client returns an authenticated API client, walking the user through the
// interactive signin when no credential is stored yet. The version gate runs
// before anything else in both paths.
func (p *Processor) Client(ctx context.Context) (*greengot.Client, error) {
	opts := []greengot.Option{
		greengot.WithBaseURL(p.config.APIURL),
		greengot.WithPageSize(p.config.PageSize),
		greengot.WithSigninRetryLimit(p.config.SigninMaxRetries),
		greengot.WithDoer(&http.Client{Timeout: time.Duration(p.config.TimeoutSeconds) * time.Second}),
	}

	cred, err := auth.Load(p.config.AuthFile)
	switch {
	case err == nil:
		client := greengot.New(cred.DeviceID, cred.IDToken, p.logger, opts...)
		if err := client.CheckMinimumVersion(ctx); err != nil {
			return nil, err
		}
		return client, nil

	case errors.Is(err, auth.ErrNotFound):
		p.logger.Warn("no credential file, starting signin. This will unregister any phone tied to the account", "path", p.config.AuthFile)

		cred = &auth.Credential{DeviceID: auth.NewDeviceID()}
		client := greengot.New(cred.DeviceID, "", p.logger, opts...)
		if err := client.CheckMinimumVersion(ctx); err != nil {
			return nil, err
		}

		token, err := client.InteractiveSignin(ctx, p.lines, p.prompts)
		if err != nil {
			return nil, err
		}
		cred.IDToken = token
		if err := auth.Save(p.config.AuthFile, cred); err != nil {
			return nil, fmt.Errorf("persisting credential: %w", err)
		}
		p.logger.Info("credential saved", "path", p.config.AuthFile, "device_id", cred.DeviceID)
		return client, nil

	default:
		return nil, err
	}
}

// Fetch retrieves the whole transaction history, checking the session with a
// user-info call first.
func (p *Processor) Fetch(ctx context.Context) ([]models.Transaction, error) {
	client, err := p.Client(ctx)
	if err != nil {
		return nil, err
	}

	info, err := client.UserInfo(ctx)
	if err != nil {
		return nil, err
	}
	if email, ok := info["email"].(string); ok {
		p.logger.Info("session verified", "email", email)
	}

	txs, err := client.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.Info("fetched account history", "transactions", len(txs))
	return txs, nil
}
