package sweepmon

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sweepmon/go-monitor-sdk/api"
	"github.com/sweepmon/go-monitor-sdk/util"
	"gopkg.in/yaml.v3"
)

// Options configures a Client. Base URIs are explicit inputs so every
// component can be tested against an injected endpoint; nothing in this
// package reads the environment.
type Options struct {
	// APIBaseURI is the benchmark engine's REST root, e.g. "https://bench.internal:8300".
	APIBaseURI string `json:"apiBaseURI" yaml:"apiBaseURI"`
	// StreamBaseURI overrides the host used for SSE connections. Defaults to
	// APIBaseURI.
	StreamBaseURI string `json:"streamBaseURI,omitempty" yaml:"streamBaseURI,omitempty"`

	PollingInterval time.Duration `json:"pollingInterval,omitempty" yaml:"pollingInterval,omitempty"`
	RequestTimeout  time.Duration `json:"requestTimeout,omitempty" yaml:"requestTimeout,omitempty"`

	// MaxEventBufferSize caps each monitor's event log. Oldest records are
	// evicted first.
	MaxEventBufferSize int `json:"maxEventBufferSize,omitempty" yaml:"maxEventBufferSize,omitempty"`

	// DisableStreaming makes monitors rely on polling alone.
	DisableStreaming bool `json:"disableStreaming,omitempty" yaml:"disableStreaming,omitempty"`

	// ClientEventHandler, when set, receives lifecycle notifications
	// (connection state, anomalies, control failures). Sends are
	// non-blocking; a full channel drops the notification.
	ClientEventHandler chan api.ClientEvent `json:"-" yaml:"-"`

	Logger util.Logger `json:"-" yaml:"-"`
}

const (
	defaultPollingInterval = 5 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultEventBufferSize = 200
)

// CheckDefaults clamps option values into sane operating ranges.
func (o *Options) CheckDefaults() {
	if o.StreamBaseURI == "" {
		o.StreamBaseURI = o.APIBaseURI
	}
	if o.PollingInterval < time.Second {
		if o.PollingInterval != 0 {
			util.Warnf("PollingInterval cannot be less than 1 second. Defaulting to %s.", defaultPollingInterval)
		}
		o.PollingInterval = defaultPollingInterval
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = defaultRequestTimeout
	}
	if o.MaxEventBufferSize <= 0 {
		o.MaxEventBufferSize = defaultEventBufferSize
	} else if o.MaxEventBufferSize < 10 {
		util.Warnf("MaxEventBufferSize cannot be less than 10. Defaulting to 10.")
		o.MaxEventBufferSize = 10
	}
}

// LoadOptionsFromFile reads a YAML options file. Durations use Go syntax
// ("5s", "500ms").
func LoadOptionsFromFile(path string) (*Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading options file: %w", err)
	}
	var fileOptions struct {
		APIBaseURI         string `yaml:"apiBaseURI"`
		StreamBaseURI      string `yaml:"streamBaseURI"`
		PollingInterval    string `yaml:"pollingInterval"`
		RequestTimeout     string `yaml:"requestTimeout"`
		MaxEventBufferSize int    `yaml:"maxEventBufferSize"`
		DisableStreaming   bool   `yaml:"disableStreaming"`
	}
	if err = yaml.Unmarshal(raw, &fileOptions); err != nil {
		return nil, fmt.Errorf("parsing options file %s: %w", path, err)
	}

	options := &Options{
		APIBaseURI:         fileOptions.APIBaseURI,
		StreamBaseURI:      fileOptions.StreamBaseURI,
		MaxEventBufferSize: fileOptions.MaxEventBufferSize,
		DisableStreaming:   fileOptions.DisableStreaming,
	}
	if fileOptions.PollingInterval != "" {
		if options.PollingInterval, err = time.ParseDuration(fileOptions.PollingInterval); err != nil {
			return nil, fmt.Errorf("parsing pollingInterval: %w", err)
		}
	}
	if fileOptions.RequestTimeout != "" {
		if options.RequestTimeout, err = time.ParseDuration(fileOptions.RequestTimeout); err != nil {
			return nil, fmt.Errorf("parsing requestTimeout: %w", err)
		}
	}
	return options, nil
}

// HTTPConfiguration carries the resolved endpoints and the shared HTTP
// client. Every outbound request inherits the client's timeout so no fetch
// can hang a monitor.
type HTTPConfiguration struct {
	BasePath       string            `json:"basePath,omitempty"`
	StreamBasePath string            `json:"streamBasePath,omitempty"`
	DefaultHeader  map[string]string `json:"defaultHeader,omitempty"`
	UserAgent      string            `json:"userAgent,omitempty"`
	HTTPClient     *http.Client
}

func NewConfiguration(options *Options) *HTTPConfiguration {
	cfg := &HTTPConfiguration{
		BasePath:       options.APIBaseURI,
		StreamBasePath: options.StreamBaseURI,
		DefaultHeader:  make(map[string]string),
		UserAgent:      "SweepMonitor-SDK/" + VERSION + "/go",
		HTTPClient: &http.Client{
			// Set an explicit timeout so that we don't wait forever on a request
			Timeout: options.RequestTimeout,
		},
	}
	return cfg
}

func (c *HTTPConfiguration) AddDefaultHeader(key string, value string) {
	c.DefaultHeader[key] = value
}
