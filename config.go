package ycd

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	tlsclient "github.com/bogdanfinn/tls-client"

	"github.com/rubpy/crawly/cclient"
)

//////////////////////////////////////////////////

type config struct {
	logger     *slog.Logger
	client     cclient.Client
	credential *Credential
	observer   Observer
	store      BinaryDataStore

	settings struct {
		v  Settings
		ok bool
	}
}

var (
	NilConfig = errors.New("config is nil")
	NilClient = errors.New("client is nil")
)

const userAgent = "ycd-go/1.0"

func validateConfig(cfg *config) error {
	if cfg == nil {
		return NilConfig
	}

	if err := cfg.credential.Validate(); err != nil {
		return err
	}

	return nil
}

func buildClientFromConfig(cfg *config) (c *Client, err error) {
	if cfg == nil {
		err = NilConfig
		return
	}

	settings := DefaultSettings
	if cfg.settings.ok {
		settings = cfg.settings.v
	}

	cred := *cfg.credential

	cl := cfg.client
	if cl == nil {
		logger := cfg.logger
		if logger != nil {
			logger = logger.WithGroup("client")
		}

		opts := make([]tlsclient.HttpClientOption, 0, len(cclient.DefaultHTTPClientOptions)+3)
		opts = append(opts, cclient.DefaultHTTPClientOptions...)
		opts = append(opts, tlsclient.WithCookieJar(tlsclient.NewCookieJar()))
		if settings.RequestTimeoutSeconds > 0 {
			opts = append(opts, tlsclient.WithTimeoutSeconds(settings.RequestTimeoutSeconds))
		}
		if cred.IgnoreSSLIssues {
			opts = append(opts, tlsclient.WithInsecureSkipVerify())
		}

		var bc *cclient.BasicClient
		bc, err = cclient.NewClient(
			cclient.WithLogger(logger),
			cclient.WithHTTPClientOptions(opts),
		)
		if err != nil {
			return nil, fmt.Errorf("cclient.NewClient: %w", err)
		}

		// BasicClient writes request headers into its default header map, which
		// must not be shared between concurrent requests.
		bc.SetDefaultHeader(nil)
		cl = bc
	}

	var apiLogger *slog.Logger
	if cfg.logger != nil {
		apiLogger = cfg.logger.WithGroup("api")
	}

	api, err := cclient.NewAPIClient(apiLogger, cl, "", http.Header{
		"Accept":     {"application/json"},
		"User-Agent": {userAgent},
		"X-Api-Key":  {cred.APIKey},
	})
	if err != nil {
		return nil, fmt.Errorf("cclient.NewAPIClient: %w", err)
	}
	api.SetBaseURL(cred.baseURL())

	observer := cfg.observer
	if observer == nil {
		observer = nopObserver{}
	}

	c = &Client{
		api:        api,
		logger:     cfg.logger,
		credential: cred,
		observer:   observer,
		store:      cfg.store,
	}
	c.setSettings(settings)

	return c, nil
}

type ConfigOption func(cfg *config)

//////////////////////////////////////////////////

func WithLogger(logger *slog.Logger) ConfigOption {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

func WithCredential(credential Credential) ConfigOption {
	return func(cfg *config) {
		cfg.credential = &credential
	}
}

// WithHTTPClient replaces the default tls-client backed client. The given client
// must be safe for concurrent use.
func WithHTTPClient(client cclient.Client) ConfigOption {
	return func(cfg *config) {
		cfg.client = client
	}
}

func WithSettings(settings Settings) ConfigOption {
	return func(cfg *config) {
		cfg.settings.v = settings
		cfg.settings.ok = true
	}
}

func WithObserver(observer Observer) ConfigOption {
	return func(cfg *config) {
		cfg.observer = observer
	}
}

func WithBinaryDataStore(store BinaryDataStore) ConfigOption {
	return func(cfg *config) {
		cfg.store = store
	}
}
