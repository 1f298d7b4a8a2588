package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel    LogLevel    `json:"log_level" yaml:"log_level"`
	HTTP        HTTP        `json:"http"`
	Session     Session     `json:"session"`
	Bridge      Bridge      `json:"bridge"`
	Console     Console     `json:"console"`
	Persistence Persistence `json:"persistence"`
	Redis       Redis       `json:"redis"`
	NATS        NATS        `json:"nats"`
	Audit       Audit       `json:"audit"`
}

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Session holds the shared passcode and the session cookie/flag settings.
type Session struct {
	Secret   string        `json:"secret"`
	Passcode string        `json:"passcode"`
	Key      string        `json:"key"`
	TTL      time.Duration `json:"ttl"`
}

type Topics struct {
	MoveJointService  string `json:"move_joint_service" yaml:"move_joint_service"`
	MoveJointType     string `json:"move_joint_type" yaml:"move_joint_type"`
	GripperTopic      string `json:"gripper_topic" yaml:"gripper_topic"`
	GripperType       string `json:"gripper_type" yaml:"gripper_type"`
	ScriptTopic       string `json:"script_topic" yaml:"script_topic"`
	ScriptType        string `json:"script_type" yaml:"script_type"`
	ScriptResultTopic string `json:"script_result_topic" yaml:"script_result_topic"`
	ScriptResultType  string `json:"script_result_type" yaml:"script_result_type"`
}

type Bridge struct {
	DefaultEndpoint  string        `json:"default_endpoint" yaml:"default_endpoint"`
	HandshakeTimeout time.Duration `json:"handshake_timeout" yaml:"handshake_timeout"`
	Velocity         float64       `json:"velocity"`
	Acceleration     float64       `json:"acceleration"`
	Topics           Topics        `json:"topics"`
}

type Console struct {
	MaxEntries int `json:"max_entries" yaml:"max_entries"`
}

type Persistence struct {
	Database Database `json:"database"`
	Library  Library  `json:"library"`
}

type DatabaseDriver string

const (
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
	DatabaseDriverMySQL    DatabaseDriver = "mysql"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
)

type Database struct {
	Driver          DatabaseDriver `json:"driver"`
	Database        string         `json:"database"`
	Username        string         `json:"username"`
	Password        string         `json:"password"`
	Host            string         `json:"host"`
	Port            uint16         `json:"port"`
	ExtraParameters string         `json:"extra_parameters" yaml:"extra_parameters"`
}

type LibraryDriver string

const (
	LibraryDriverFilesystem LibraryDriver = "filesystem"
	LibraryDriverS3         LibraryDriver = "s3"
)

type FilesystemOptions struct {
	Directory string `json:"directory"`
}

type S3Options struct {
	Region   string `json:"region"`
	Bucket   string `json:"bucket"`
	Endpoint string `json:"endpoint"`
}

// Library is where saved scripts and console archives are kept.
type Library struct {
	Driver            LibraryDriver     `json:"driver"`
	FilesystemOptions FilesystemOptions `json:"filesystem" yaml:"filesystem"`
	S3Options         S3Options         `json:"s3" yaml:"s3"`
}

type RedisSentinel struct {
	Enabled    bool     `json:"enabled"`
	MasterName string   `json:"master_name" yaml:"master_name"`
	Addresses  []string `json:"addresses"`
	Password   string   `json:"password"`
}

type Redis struct {
	Enabled  bool          `json:"enabled"`
	Address  string        `json:"address"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Database int           `json:"database"`
	Sentinel RedisSentinel `json:"sentinel"`
}

type NATS struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
	Subject string `json:"subject"`
}

type Audit struct {
	Enabled bool `json:"enabled"`
	Workers uint `json:"workers"`
}

type HTTPListener struct {
	IPV4Host string `json:"ipv4_host" yaml:"ipv4_host"`
	IPV6Host string `json:"ipv6_host" yaml:"ipv6_host"`
	Port     uint16 `json:"port"`
}

type Tracing struct {
	Enabled      bool   `json:"enabled"`
	OTLPEndpoint string `json:"otlp_endpoint" yaml:"otlp_endpoint"`
}

type PProf struct {
	Enabled bool `json:"enabled"`
}

type Metrics struct {
	HTTPListener `yaml:",inline"`
	Enabled      bool `json:"enabled"`
}

type HTTP struct {
	HTTPListener   `yaml:",inline"`
	Tracing        Tracing  `json:"tracing"`
	PProf          PProf    `json:"pprof"`
	TrustedProxies []string `json:"trusted_proxies" yaml:"trusted_proxies"`
	Metrics        Metrics  `json:"metrics"`
	CORSHosts      []string `json:"cors_hosts" yaml:"cors_hosts"`
}

//nolint:golint,gochecknoglobals
var (
	ConfigFileKey                         = "config"
	LogLevelKey                           = "log_level"
	HTTPIPV4HostKey                       = "http.ipv4_host"
	HTTPIPV6HostKey                       = "http.ipv6_host"
	HTTPPortKey                           = "http.port"
	HTTPTracingEnabledKey                 = "http.tracing.enabled"
	HTTPTracingOTLPEndKey                 = "http.tracing.otlp_endpoint"
	HTTPPProfEnabledKey                   = "http.pprof.enabled"
	HTTPTrustedProxiesKey                 = "http.trusted_proxies"
	HTTPMetricsEnabledKey                 = "http.metrics.enabled"
	HTTPMetricsIPV4HostKey                = "http.metrics.ipv4_host"
	HTTPMetricsIPV6HostKey                = "http.metrics.ipv6_host"
	HTTPMetricsPortKey                    = "http.metrics.port"
	HTTPCORSHostsKey                      = "http.cors_hosts"
	SessionKeyKey                         = "session.key"
	SessionTTLKey                         = "session.ttl"
	BridgeDefaultEndpointKey              = "bridge.default_endpoint"
	BridgeHandshakeTimeoutKey             = "bridge.handshake_timeout"
	BridgeVelocityKey                     = "bridge.velocity"
	BridgeAccelerationKey                 = "bridge.acceleration"
	BridgeTopicsMoveJointServiceKey       = "bridge.topics.move_joint_service"
	BridgeTopicsMoveJointTypeKey          = "bridge.topics.move_joint_type"
	BridgeTopicsGripperTopicKey           = "bridge.topics.gripper_topic"
	BridgeTopicsGripperTypeKey            = "bridge.topics.gripper_type"
	BridgeTopicsScriptTopicKey            = "bridge.topics.script_topic"
	BridgeTopicsScriptTypeKey             = "bridge.topics.script_type"
	BridgeTopicsScriptResultTopicKey      = "bridge.topics.script_result_topic"
	BridgeTopicsScriptResultTypeKey       = "bridge.topics.script_result_type"
	ConsoleMaxEntriesKey                  = "console.max_entries"
	PersistenceDatabaseDriverKey          = "persistence.database.driver"
	PersistenceDatabaseDatabaseKey        = "persistence.database.database"
	PersistenceDatabaseUsernameKey        = "persistence.database.username"
	PersistenceDatabasePasswordKey        = "persistence.database.password"
	PersistenceDatabaseHostKey            = "persistence.database.host"
	PersistenceDatabasePortKey            = "persistence.database.port"
	PersistenceDatabaseExtraParametersKey = "persistence.database.extra_parameters"
	PersistenceLibraryDriverKey           = "persistence.library.driver"
	PersistenceLibraryFilesystemDirKey    = "persistence.library.filesystem.directory"
	PersistenceLibraryS3RegionKey         = "persistence.library.s3.region"
	PersistenceLibraryS3BucketKey         = "persistence.library.s3.bucket"
	PersistenceLibraryS3EndpointKey       = "persistence.library.s3.endpoint"
	RedisEnabledKey                       = "redis.enabled"
	RedisAddressKey                       = "redis.address"
	RedisUsernameKey                      = "redis.username"
	RedisPasswordKey                      = "redis.password"
	RedisDatabaseKey                      = "redis.database"
	RedisSentinelEnabledKey               = "redis.sentinel.enabled"
	RedisSentinelMasterNameKey            = "redis.sentinel.master_name"
	RedisSentinelAddressesKey             = "redis.sentinel.addresses"
	RedisSentinelPasswordKey              = "redis.sentinel.password"
	NATSEnabledKey                        = "nats.enabled"
	NATSURLKey                            = "nats.url"
	NATSSubjectKey                        = "nats.subject"
	AuditEnabledKey                       = "audit.enabled"
	AuditWorkersKey                       = "audit.workers"
	//nolint:golint,gosec
	SessionSecretKey   = "session.secret"
	//nolint:golint,gosec
	SessionPasscodeKey = "session.passcode"
)

const (
	DefaultConfigPath                  = "config.yaml"
	DefaultLogLevel                    = LogLevelInfo
	DefaultHTTPIPV4Host                = "0.0.0.0"
	DefaultHTTPIPV6Host                = "::"
	DefaultHTTPPort                    = 8080
	DefaultHTTPMetricsIPV4Host         = "127.0.0.1"
	DefaultHTTPMetricsIPV6Host         = "::1"
	DefaultHTTPMetricsPort             = 8081
	DefaultSessionKey                  = "robot_control_authenticated"
	DefaultSessionTTL                  = 12 * time.Hour
	DefaultBridgeDefaultEndpoint       = "localhost:9090"
	DefaultBridgeHandshakeTimeout      = 10 * time.Second
	DefaultBridgeVelocity              = 60.0
	DefaultBridgeAcceleration          = 60.0
	DefaultMoveJointService            = "/dsr01/motion/move_joint"
	DefaultMoveJointType               = "dsr_msgs2/srv/MoveJoint"
	DefaultGripperTopic                = "/dsr01/gripper/position_cmd"
	DefaultGripperType                 = "std_msgs/msg/Int32"
	DefaultScriptTopic                 = "/execute_script"
	DefaultScriptType                  = "std_msgs/msg/String"
	DefaultScriptResultTopic           = "/script_result"
	DefaultScriptResultType            = "std_msgs/msg/String"
	DefaultConsoleMaxEntries           = 1000
	DefaultPersistenceDatabaseDriver   = DatabaseDriverSQLite
	DefaultPersistenceDatabaseDatabase = "arm-panel.db"
	DefaultPersistenceLibraryDriver    = LibraryDriverFilesystem
	DefaultPersistenceLibraryDirectory = "data/"
	DefaultNATSSubject                 = "arm-panel.events"
	DefaultAuditWorkers                = 2
)

func RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(ConfigFileKey, "c", DefaultConfigPath, "Config file path")
	cmd.Flags().String(LogLevelKey, string(DefaultLogLevel), "Log level (debug, info, warn, error)")
	cmd.Flags().String(HTTPIPV4HostKey, DefaultHTTPIPV4Host, "HTTP server IPv4 host")
	cmd.Flags().String(HTTPIPV6HostKey, DefaultHTTPIPV6Host, "HTTP server IPv6 host")
	cmd.Flags().Uint16(HTTPPortKey, DefaultHTTPPort, "HTTP server port")
	cmd.Flags().Bool(HTTPTracingEnabledKey, false, "Enable Open Telemetry tracing")
	cmd.Flags().String(HTTPTracingOTLPEndKey, "", "Open Telemetry endpoint")
	cmd.Flags().Bool(HTTPPProfEnabledKey, false, "Enable pprof")
	cmd.Flags().StringSlice(HTTPTrustedProxiesKey, []string{}, "Comma-separated list of trusted proxies")
	cmd.Flags().Bool(HTTPMetricsEnabledKey, false, "Enable metrics server")
	cmd.Flags().String(HTTPMetricsIPV4HostKey, DefaultHTTPMetricsIPV4Host, "Metrics server IPv4 host")
	cmd.Flags().String(HTTPMetricsIPV6HostKey, DefaultHTTPMetricsIPV6Host, "Metrics server IPv6 host")
	cmd.Flags().Uint16(HTTPMetricsPortKey, DefaultHTTPMetricsPort, "Metrics server port")
	cmd.Flags().StringSlice(HTTPCORSHostsKey, []string{}, "Comma-separated list of CORS hosts")
	cmd.Flags().String(SessionSecretKey, "", "Session cookie signing secret")
	cmd.Flags().String(SessionPasscodeKey, "", "Shared panel passcode")
	cmd.Flags().String(SessionKeyKey, DefaultSessionKey, "Name of the session authenticated flag")
	cmd.Flags().Duration(SessionTTLKey, DefaultSessionTTL, "How long an authenticated session flag is kept server-side")
	cmd.Flags().String(BridgeDefaultEndpointKey, DefaultBridgeDefaultEndpoint, "rosbridge host:port suggested to the operator")
	cmd.Flags().Duration(BridgeHandshakeTimeoutKey, DefaultBridgeHandshakeTimeout, "rosbridge websocket handshake timeout")
	cmd.Flags().Float64(BridgeVelocityKey, DefaultBridgeVelocity, "Joint velocity sent with every move")
	cmd.Flags().Float64(BridgeAccelerationKey, DefaultBridgeAcceleration, "Joint acceleration sent with every move")
	cmd.Flags().String(BridgeTopicsMoveJointServiceKey, DefaultMoveJointService, "MoveJoint service name")
	cmd.Flags().String(BridgeTopicsMoveJointTypeKey, DefaultMoveJointType, "MoveJoint service type")
	cmd.Flags().String(BridgeTopicsGripperTopicKey, DefaultGripperTopic, "Gripper command topic")
	cmd.Flags().String(BridgeTopicsGripperTypeKey, DefaultGripperType, "Gripper command message type")
	cmd.Flags().String(BridgeTopicsScriptTopicKey, DefaultScriptTopic, "Script topic")
	cmd.Flags().String(BridgeTopicsScriptTypeKey, DefaultScriptType, "Script message type")
	cmd.Flags().String(BridgeTopicsScriptResultTopicKey, DefaultScriptResultTopic, "Script result topic")
	cmd.Flags().String(BridgeTopicsScriptResultTypeKey, DefaultScriptResultType, "Script result message type")
	cmd.Flags().Int(ConsoleMaxEntriesKey, DefaultConsoleMaxEntries, "Maximum console lines kept in memory")
	cmd.Flags().String(PersistenceDatabaseDriverKey, string(DefaultPersistenceDatabaseDriver), "Database driver")
	cmd.Flags().String(PersistenceDatabaseDatabaseKey, DefaultPersistenceDatabaseDatabase, "Database path")
	cmd.Flags().String(PersistenceDatabaseUsernameKey, "", "Database username")
	cmd.Flags().String(PersistenceDatabasePasswordKey, "", "Database password")
	cmd.Flags().String(PersistenceDatabaseHostKey, "", "Database host")
	cmd.Flags().Uint16(PersistenceDatabasePortKey, 0, "Database port")
	cmd.Flags().String(PersistenceDatabaseExtraParametersKey, "", "Database extra parameters")
	cmd.Flags().String(PersistenceLibraryDriverKey, string(DefaultPersistenceLibraryDriver), "Script library storage driver (filesystem, s3)")
	cmd.Flags().String(PersistenceLibraryFilesystemDirKey, DefaultPersistenceLibraryDirectory, "Directory holding saved scripts and console archives")
	cmd.Flags().String(PersistenceLibraryS3RegionKey, "", "Script library S3 region")
	cmd.Flags().String(PersistenceLibraryS3BucketKey, "", "Script library S3 bucket")
	cmd.Flags().String(PersistenceLibraryS3EndpointKey, "", "Script library S3 endpoint")
	cmd.Flags().Bool(RedisEnabledKey, false, "Store sessions in Redis")
	cmd.Flags().String(RedisAddressKey, "", "Redis address")
	cmd.Flags().String(RedisUsernameKey, "", "Redis username")
	cmd.Flags().String(RedisPasswordKey, "", "Redis password")
	cmd.Flags().Int(RedisDatabaseKey, 0, "Redis database")
	cmd.Flags().Bool(RedisSentinelEnabledKey, false, "Use Redis sentinel")
	cmd.Flags().String(RedisSentinelMasterNameKey, "", "Redis sentinel master name")
	cmd.Flags().StringSlice(RedisSentinelAddressesKey, []string{}, "Comma-separated list of Redis sentinel addresses")
	cmd.Flags().String(RedisSentinelPasswordKey, "", "Redis sentinel password")
	cmd.Flags().Bool(NATSEnabledKey, false, "Mirror panel events to NATS")
	cmd.Flags().String(NATSURLKey, "", "NATS URL")
	cmd.Flags().String(NATSSubjectKey, DefaultNATSSubject, "NATS subject prefix for panel events")
	cmd.Flags().Bool(AuditEnabledKey, true, "Record dispatched commands and results in the database")
	cmd.Flags().Uint(AuditWorkersKey, DefaultAuditWorkers, "Number of concurrent audit writers")
}

var (
	ErrSessionSecretRequired    = errors.New("Session secret is required")
	ErrSessionPasscodeRequired  = errors.New("Session passcode is required")
	ErrSessionKeyRequired       = errors.New("Session key is required")
	ErrOTLPEndpointRequired     = errors.New("OTLP endpoint is required when tracing is enabled")
	ErrInvalidLogLevel          = errors.New("Invalid log level")
	ErrHandshakeTimeoutInvalid  = errors.New("Bridge handshake timeout must be positive")
	ErrTopicRequired            = errors.New("All bridge topic and service names are required")
	ErrConsoleMaxEntriesInvalid = errors.New("Console max entries must be positive")
	ErrDBHostRequired           = errors.New("Database host is required")
	ErrDBDatabaseRequired       = errors.New("Database name is required")
	ErrDatabaseDriverRequired   = errors.New("Database driver is required")
	ErrInvalidLibraryDriver     = errors.New("Invalid script library driver")
	ErrLibraryDirectoryRequired = errors.New("Script library directory is required")
	ErrLibraryS3BucketRequired  = errors.New("Script library S3 bucket is required")
	ErrRedisAddressRequired     = errors.New("Redis address is required when Redis is enabled")
	ErrRedisSentinelRequired    = errors.New("Redis sentinel master name and addresses are required when sentinel is enabled")
	ErrNATSURLRequired          = errors.New("NATS URL is required when NATS is enabled")
	ErrAuditWorkersRequired     = errors.New("At least one audit worker is required when auditing is enabled")
)

func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return ErrInvalidLogLevel
	}
	if c.Session.Secret == "" {
		return ErrSessionSecretRequired
	}
	if c.Session.Passcode == "" {
		return ErrSessionPasscodeRequired
	}
	if c.Session.Key == "" {
		return ErrSessionKeyRequired
	}
	if c.HTTP.Tracing.Enabled && c.HTTP.Tracing.OTLPEndpoint == "" {
		return ErrOTLPEndpointRequired
	}
	if c.Bridge.HandshakeTimeout <= 0 {
		return ErrHandshakeTimeoutInvalid
	}
	topics := c.Bridge.Topics
	for _, name := range []string{
		topics.MoveJointService, topics.MoveJointType,
		topics.GripperTopic, topics.GripperType,
		topics.ScriptTopic, topics.ScriptType,
		topics.ScriptResultTopic, topics.ScriptResultType,
	} {
		if name == "" {
			return ErrTopicRequired
		}
	}
	if c.Console.MaxEntries <= 0 {
		return ErrConsoleMaxEntriesInvalid
	}
	if c.Persistence.Database.Driver == "" {
		return ErrDatabaseDriverRequired
	}
	if c.Persistence.Database.Driver != DatabaseDriverSQLite && c.Persistence.Database.Host == "" {
		return ErrDBHostRequired
	}
	if c.Persistence.Database.Database == "" {
		return ErrDBDatabaseRequired
	}
	switch c.Persistence.Library.Driver {
	case LibraryDriverFilesystem:
		if c.Persistence.Library.FilesystemOptions.Directory == "" {
			return ErrLibraryDirectoryRequired
		}
	case LibraryDriverS3:
		if c.Persistence.Library.S3Options.Bucket == "" {
			return ErrLibraryS3BucketRequired
		}
	default:
		return ErrInvalidLibraryDriver
	}
	if c.Redis.Enabled {
		if c.Redis.Sentinel.Enabled {
			if c.Redis.Sentinel.MasterName == "" || len(c.Redis.Sentinel.Addresses) == 0 {
				return ErrRedisSentinelRequired
			}
		} else if c.Redis.Address == "" {
			return ErrRedisAddressRequired
		}
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return ErrNATSURLRequired
	}
	if c.Audit.Enabled && c.Audit.Workers == 0 {
		return ErrAuditWorkersRequired
	}

	return nil
}

// SlogLevel maps the configured level onto slog. Unknown levels fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func LoadConfig(cmd *cobra.Command) (*Config, error) {
	// Boolean defaults that are true have to be in place before the file is
	// read, otherwise an explicit false in yaml is indistinguishable from unset.
	config := Config{
		Audit: Audit{
			Enabled: true,
			Workers: DefaultAuditWorkers,
		},
	}

	// Load flags from envs
	ctx, cancel := context.WithCancelCause(cmd.Context())
	defer cancel(nil)
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if ctx.Err() != nil {
			return
		}
		optName := strings.ReplaceAll(strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_"), ".", "__")
		if val, ok := os.LookupEnv(optName); !f.Changed && ok {
			if err := f.Value.Set(val); err != nil {
				cancel(err)
			}
			f.Changed = true
		}
	})
	if ctx.Err() != nil {
		return &config, fmt.Errorf("failed to load env: %w", context.Cause(ctx))
	}

	configPath, err := cmd.Flags().GetString(ConfigFileKey)
	if err != nil {
		return &config, fmt.Errorf("failed to get config path: %w", err)
	}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return &config, fmt.Errorf("failed to read config: %w", err)
		} else if err == nil {
			if err := yaml.Unmarshal(data, &config); err != nil {
				return &config, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	err = overrideFlags(&config, cmd)
	if err != nil {
		return &config, fmt.Errorf("failed to override flags: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

// applyDefaults fills anything neither the file nor an explicit flag set.
func applyDefaults(config *Config) {
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}
	if config.HTTP.IPV4Host == "" {
		config.HTTP.IPV4Host = DefaultHTTPIPV4Host
	}
	if config.HTTP.IPV6Host == "" {
		config.HTTP.IPV6Host = DefaultHTTPIPV6Host
	}
	if config.HTTP.Port == 0 {
		config.HTTP.Port = DefaultHTTPPort
	}
	if config.HTTP.Metrics.IPV4Host == "" {
		config.HTTP.Metrics.IPV4Host = DefaultHTTPMetricsIPV4Host
	}
	if config.HTTP.Metrics.IPV6Host == "" {
		config.HTTP.Metrics.IPV6Host = DefaultHTTPMetricsIPV6Host
	}
	if config.HTTP.Metrics.Port == 0 {
		config.HTTP.Metrics.Port = DefaultHTTPMetricsPort
	}
	if config.Session.Key == "" {
		config.Session.Key = DefaultSessionKey
	}
	if config.Session.TTL == 0 {
		config.Session.TTL = DefaultSessionTTL
	}
	if config.Bridge.DefaultEndpoint == "" {
		config.Bridge.DefaultEndpoint = DefaultBridgeDefaultEndpoint
	}
	if config.Bridge.HandshakeTimeout == 0 {
		config.Bridge.HandshakeTimeout = DefaultBridgeHandshakeTimeout
	}
	if config.Bridge.Velocity == 0 {
		config.Bridge.Velocity = DefaultBridgeVelocity
	}
	if config.Bridge.Acceleration == 0 {
		config.Bridge.Acceleration = DefaultBridgeAcceleration
	}
	topics := &config.Bridge.Topics
	defaultString(&topics.MoveJointService, DefaultMoveJointService)
	defaultString(&topics.MoveJointType, DefaultMoveJointType)
	defaultString(&topics.GripperTopic, DefaultGripperTopic)
	defaultString(&topics.GripperType, DefaultGripperType)
	defaultString(&topics.ScriptTopic, DefaultScriptTopic)
	defaultString(&topics.ScriptType, DefaultScriptType)
	defaultString(&topics.ScriptResultTopic, DefaultScriptResultTopic)
	defaultString(&topics.ScriptResultType, DefaultScriptResultType)
	if config.Console.MaxEntries == 0 {
		config.Console.MaxEntries = DefaultConsoleMaxEntries
	}
	if config.Persistence.Database.Driver == "" {
		config.Persistence.Database.Driver = DefaultPersistenceDatabaseDriver
	}
	if config.Persistence.Database.Database == "" {
		config.Persistence.Database.Database = DefaultPersistenceDatabaseDatabase
	}
	if config.Persistence.Library.Driver == "" {
		config.Persistence.Library.Driver = DefaultPersistenceLibraryDriver
	}
	if config.Persistence.Library.FilesystemOptions.Directory == "" {
		config.Persistence.Library.FilesystemOptions.Directory = DefaultPersistenceLibraryDirectory
	}
	if config.NATS.Subject == "" {
		config.NATS.Subject = DefaultNATSSubject
	}
}

func defaultString(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
