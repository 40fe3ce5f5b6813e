package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/nakamauwu/chatsync/validator"
	"github.com/peterbourgon/ff/v4"
)

const EnvVarPrefix = "CHATSYNC"

var (
	Transports = []string{"auto", "websocket", "longpoll", "nats"}
	Codecs     = []string{"json", "msgpack"}
)

type Config struct {
	APIURL            string        `ff:"long: api-url, default: http://localhost:5000/api, usage: Base URL of the REST API"`
	SocketURL         string        `ff:"long: socket-url, usage: Base URL of the push endpoint (defaults to the API host)"`
	Transport         string        `ff:"long: transport, default: auto, usage: Push transport (auto websocket longpoll or nats)"`
	NATSURL           string        `ff:"long: nats-url, usage: NATS server URL for the nats transport"`
	Codec             string        `ff:"long: codec, default: json, usage: Push frame encoding (json or msgpack)"`
	RequestTimeout    time.Duration `ff:"long: request-timeout, default: 15s, usage: Timeout for REST requests"`
	ConnectTimeout    time.Duration `ff:"long: connect-timeout, default: 20s, usage: Timeout for one push connection attempt"`
	ReconnectAttempts uint64        `ff:"long: reconnect-attempts, default: 10, usage: Reconnection attempts before giving up"`
	ReconnectDelay    time.Duration `ff:"long: reconnect-delay, default: 1s, usage: Delay before the first reconnection attempt"`
	ReconnectDelayMax time.Duration `ff:"long: reconnect-delay-max, default: 5s, usage: Longest delay between reconnection attempts"`
	RefreshInterval   time.Duration `ff:"long: refresh-interval, default: 30s, usage: Interval between full conversation list refreshes"`
	TypingQuiet       time.Duration `ff:"long: typing-quiet, default: 1s, usage: Idle time after the last keystroke before typing stops"`
	TypingExpiry      time.Duration `ff:"long: typing-expiry, default: 3s, usage: Time after which a remote typing flag is dropped"`
	MaxFileSize       string        `ff:"long: max-file-size, default: 5MiB, usage: Largest attachment accepted for upload"`
	StateFile         string        `ff:"long: state-file, usage: Credential file (defaults to the user config dir)"`
	MinioEndpoint     string        `ff:"long: minio-endpoint, usage: MinIO endpoint serving object storage attachments"`
	MinioAccessKey    string        `ff:"long: minio-access-key, default: minioadmin, usage: MinIO access key"`
	MinioSecretKey    string        `ff:"long: minio-secret-key, default: minioadmin, usage: MinIO secret key"`
	MinioSecure       bool          `ff:"long: minio-secure, default: false, usage: Use secure connection to MinIO"`
	MetricsAddr       string        `ff:"long: metrics-addr, usage: Address to serve Prometheus metrics on"`
	Debug             bool          `ff:"long: debug, short: d, default: false, usage: Log debug messages"`
}

// FlagSet binds the fields of cfg to flags, setting the defaults.
func (cfg *Config) FlagSet() *ff.FlagSet {
	return ff.NewFlagSetFrom("chatsync", cfg)
}

// Parse reads a .env file when present, then args and the CHATSYNC_
// environment into the flags of root and its subcommands.
func Parse(root *ff.Command, args []string) error {
	_ = godotenv.Load()
	return root.Parse(args, ff.WithEnvVarPrefix(EnvVarPrefix))
}

func (cfg Config) Validate() error {
	v := validator.New()

	u, err := url.Parse(cfg.APIURL)
	v.Check(err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "", "APIURL", "API URL must be an http(s) URL")
	v.Check(slices.Contains(Transports, cfg.Transport), "Transport", "Transport must be one of "+strings.Join(Transports, ", "))
	v.Check(slices.Contains(Codecs, cfg.Codec), "Codec", "Codec must be one of "+strings.Join(Codecs, ", "))
	v.Check(cfg.Transport != "nats" || cfg.NATSURL != "", "NATSURL", "NATS URL is required for the nats transport")
	v.Check(cfg.ReconnectDelay > 0 && cfg.ReconnectDelayMax >= cfg.ReconnectDelay, "ReconnectDelay", "Reconnect delays must be positive and ordered")

	_, err = cfg.MaxFileSizeBytes()
	v.Check(err == nil, "MaxFileSize", "Max file size must be a size like 5MiB")

	return v.AsError()
}

func (cfg Config) MaxFileSizeBytes() (int64, error) {
	n, err := humanize.ParseBytes(cfg.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("parse max file size: %w", err)
	}
	if n == 0 || n > 1<<40 {
		return 0, fmt.Errorf("max file size %q out of range", cfg.MaxFileSize)
	}
	return int64(n), nil
}

// SocketBaseURL is the push endpoint. Without an explicit one it is the
// API host, as the API path usually ends in /api.
func (cfg Config) SocketBaseURL() string {
	if cfg.SocketURL != "" {
		return strings.TrimSuffix(cfg.SocketURL, "/")
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil {
		return cfg.APIURL
	}
	u.Path = strings.TrimSuffix(strings.TrimSuffix(u.Path, "/"), "/api")
	u.RawQuery = ""
	return strings.TrimSuffix(u.String(), "/")
}
