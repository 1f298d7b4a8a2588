package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func overrideFlags(config *Config, cmd *cobra.Command) error {
	var err error

	if cmd.Flags().Changed(LogLevelKey) {
		value, err := cmd.Flags().GetString(LogLevelKey)
		if err != nil {
			return fmt.Errorf("failed to get log level: %w", err)
		}
		config.LogLevel = LogLevel(strings.ToLower(value))
	}

	if cmd.Flags().Changed(HTTPIPV4HostKey) {
		config.HTTP.IPV4Host, err = cmd.Flags().GetString(HTTPIPV4HostKey)
		if err != nil {
			return fmt.Errorf("failed to get HTTP IPv4 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPIPV6HostKey) {
		config.HTTP.IPV6Host, err = cmd.Flags().GetString(HTTPIPV6HostKey)
		if err != nil {
			return fmt.Errorf("failed to get HTTP IPv6 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPPortKey) {
		config.HTTP.Port, err = cmd.Flags().GetUint16(HTTPPortKey)
		if err != nil {
			return fmt.Errorf("failed to get HTTP port: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPPProfEnabledKey) {
		config.HTTP.PProf.Enabled, err = cmd.Flags().GetBool(HTTPPProfEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get pprof enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPTrustedProxiesKey) {
		config.HTTP.TrustedProxies, err = cmd.Flags().GetStringSlice(HTTPTrustedProxiesKey)
		if err != nil {
			return fmt.Errorf("failed to get trusted proxies: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsEnabledKey) {
		config.HTTP.Metrics.Enabled, err = cmd.Flags().GetBool(HTTPMetricsEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsIPV4HostKey) {
		config.HTTP.Metrics.IPV4Host, err = cmd.Flags().GetString(HTTPMetricsIPV4HostKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics IPv4 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsIPV6HostKey) {
		config.HTTP.Metrics.IPV6Host, err = cmd.Flags().GetString(HTTPMetricsIPV6HostKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics IPv6 host: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPMetricsPortKey) {
		config.HTTP.Metrics.Port, err = cmd.Flags().GetUint16(HTTPMetricsPortKey)
		if err != nil {
			return fmt.Errorf("failed to get metrics port: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPTracingEnabledKey) {
		config.HTTP.Tracing.Enabled, err = cmd.Flags().GetBool(HTTPTracingEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get tracing enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPTracingOTLPEndKey) {
		config.HTTP.Tracing.OTLPEndpoint, err = cmd.Flags().GetString(HTTPTracingOTLPEndKey)
		if err != nil {
			return fmt.Errorf("failed to get tracing OTLP endpoint: %w", err)
		}
	}

	if cmd.Flags().Changed(HTTPCORSHostsKey) {
		config.HTTP.CORSHosts, err = cmd.Flags().GetStringSlice(HTTPCORSHostsKey)
		if err != nil {
			return fmt.Errorf("failed to get CORS hosts: %w", err)
		}
	}

	if cmd.Flags().Changed(SessionSecretKey) {
		config.Session.Secret, err = cmd.Flags().GetString(SessionSecretKey)
		if err != nil {
			return fmt.Errorf("failed to get session secret: %w", err)
		}
	}

	if cmd.Flags().Changed(SessionPasscodeKey) {
		config.Session.Passcode, err = cmd.Flags().GetString(SessionPasscodeKey)
		if err != nil {
			return fmt.Errorf("failed to get session passcode: %w", err)
		}
	}

	if cmd.Flags().Changed(SessionKeyKey) {
		config.Session.Key, err = cmd.Flags().GetString(SessionKeyKey)
		if err != nil {
			return fmt.Errorf("failed to get session key: %w", err)
		}
	}

	if cmd.Flags().Changed(SessionTTLKey) {
		config.Session.TTL, err = cmd.Flags().GetDuration(SessionTTLKey)
		if err != nil {
			return fmt.Errorf("failed to get session TTL: %w", err)
		}
	}

	if cmd.Flags().Changed(BridgeDefaultEndpointKey) {
		config.Bridge.DefaultEndpoint, err = cmd.Flags().GetString(BridgeDefaultEndpointKey)
		if err != nil {
			return fmt.Errorf("failed to get bridge default endpoint: %w", err)
		}
	}

	if cmd.Flags().Changed(BridgeHandshakeTimeoutKey) {
		config.Bridge.HandshakeTimeout, err = cmd.Flags().GetDuration(BridgeHandshakeTimeoutKey)
		if err != nil {
			return fmt.Errorf("failed to get bridge handshake timeout: %w", err)
		}
	}

	if cmd.Flags().Changed(BridgeVelocityKey) {
		config.Bridge.Velocity, err = cmd.Flags().GetFloat64(BridgeVelocityKey)
		if err != nil {
			return fmt.Errorf("failed to get bridge velocity: %w", err)
		}
	}

	if cmd.Flags().Changed(BridgeAccelerationKey) {
		config.Bridge.Acceleration, err = cmd.Flags().GetFloat64(BridgeAccelerationKey)
		if err != nil {
			return fmt.Errorf("failed to get bridge acceleration: %w", err)
		}
	}

	if cmd.Flags().Changed(BridgeTopicsMoveJointServiceKey) {
		config.Bridge.Topics.MoveJointService, err = cmd.Flags().GetString(BridgeTopicsMoveJointServiceKey)
		if err != nil {
			return fmt.Errorf("failed to get MoveJoint service name: %w", err)
		}
	}

	if cmd.Flags().Changed(BridgeTopicsMoveJointTypeKey) {
		config.Bridge.Topics.MoveJointType, err = cmd.Flags().GetString(BridgeTopicsMoveJointTypeKey)
		if err != nil {
			return fmt.Errorf("failed to get MoveJoint service type: %w", err)
		}
	}

	if cmd.Flags().Changed(BridgeTopicsGripperTopicKey) {
		config.Bridge.Topics.GripperTopic, err = cmd.Flags().GetString(BridgeTopicsGripperTopicKey)
		if err != nil {
			return fmt.Errorf("failed to get gripper topic: %w", err)
		}
	}

	if cmd.Flags().Changed(BridgeTopicsGripperTypeKey) {
		config.Bridge.Topics.GripperType, err = cmd.Flags().GetString(BridgeTopicsGripperTypeKey)
		if err != nil {
			return fmt.Errorf("failed to get gripper message type: %w", err)
		}
	}

	if cmd.Flags().Changed(BridgeTopicsScriptTopicKey) {
		config.Bridge.Topics.ScriptTopic, err = cmd.Flags().GetString(BridgeTopicsScriptTopicKey)
		if err != nil {
			return fmt.Errorf("failed to get script topic: %w", err)
		}
	}

	if cmd.Flags().Changed(BridgeTopicsScriptTypeKey) {
		config.Bridge.Topics.ScriptType, err = cmd.Flags().GetString(BridgeTopicsScriptTypeKey)
		if err != nil {
			return fmt.Errorf("failed to get script message type: %w", err)
		}
	}

	if cmd.Flags().Changed(BridgeTopicsScriptResultTopicKey) {
		config.Bridge.Topics.ScriptResultTopic, err = cmd.Flags().GetString(BridgeTopicsScriptResultTopicKey)
		if err != nil {
			return fmt.Errorf("failed to get script result topic: %w", err)
		}
	}

	if cmd.Flags().Changed(BridgeTopicsScriptResultTypeKey) {
		config.Bridge.Topics.ScriptResultType, err = cmd.Flags().GetString(BridgeTopicsScriptResultTypeKey)
		if err != nil {
			return fmt.Errorf("failed to get script result message type: %w", err)
		}
	}

	if cmd.Flags().Changed(ConsoleMaxEntriesKey) {
		config.Console.MaxEntries, err = cmd.Flags().GetInt(ConsoleMaxEntriesKey)
		if err != nil {
			return fmt.Errorf("failed to get console max entries: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseDriverKey) {
		value, err := cmd.Flags().GetString(PersistenceDatabaseDriverKey)
		if err != nil {
			return fmt.Errorf("failed to get database driver: %w", err)
		}
		config.Persistence.Database.Driver = DatabaseDriver(strings.ToLower(value))
	}

	if cmd.Flags().Changed(PersistenceDatabaseDatabaseKey) {
		config.Persistence.Database.Database, err = cmd.Flags().GetString(PersistenceDatabaseDatabaseKey)
		if err != nil {
			return fmt.Errorf("failed to get database name: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseUsernameKey) {
		config.Persistence.Database.Username, err = cmd.Flags().GetString(PersistenceDatabaseUsernameKey)
		if err != nil {
			return fmt.Errorf("failed to get database username: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabasePasswordKey) {
		config.Persistence.Database.Password, err = cmd.Flags().GetString(PersistenceDatabasePasswordKey)
		if err != nil {
			return fmt.Errorf("failed to get database password: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseHostKey) {
		config.Persistence.Database.Host, err = cmd.Flags().GetString(PersistenceDatabaseHostKey)
		if err != nil {
			return fmt.Errorf("failed to get database host: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabasePortKey) {
		config.Persistence.Database.Port, err = cmd.Flags().GetUint16(PersistenceDatabasePortKey)
		if err != nil {
			return fmt.Errorf("failed to get database port: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceDatabaseExtraParametersKey) {
		config.Persistence.Database.ExtraParameters, err = cmd.Flags().GetString(PersistenceDatabaseExtraParametersKey)
		if err != nil {
			return fmt.Errorf("failed to get database extra parameters: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceLibraryDriverKey) {
		value, err := cmd.Flags().GetString(PersistenceLibraryDriverKey)
		if err != nil {
			return fmt.Errorf("failed to get script library driver: %w", err)
		}
		config.Persistence.Library.Driver = LibraryDriver(strings.ToLower(value))
	}

	if cmd.Flags().Changed(PersistenceLibraryFilesystemDirKey) {
		config.Persistence.Library.FilesystemOptions.Directory, err = cmd.Flags().GetString(PersistenceLibraryFilesystemDirKey)
		if err != nil {
			return fmt.Errorf("failed to get script library directory: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceLibraryS3RegionKey) {
		config.Persistence.Library.S3Options.Region, err = cmd.Flags().GetString(PersistenceLibraryS3RegionKey)
		if err != nil {
			return fmt.Errorf("failed to get script library S3 region: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceLibraryS3BucketKey) {
		config.Persistence.Library.S3Options.Bucket, err = cmd.Flags().GetString(PersistenceLibraryS3BucketKey)
		if err != nil {
			return fmt.Errorf("failed to get script library S3 bucket: %w", err)
		}
	}

	if cmd.Flags().Changed(PersistenceLibraryS3EndpointKey) {
		config.Persistence.Library.S3Options.Endpoint, err = cmd.Flags().GetString(PersistenceLibraryS3EndpointKey)
		if err != nil {
			return fmt.Errorf("failed to get script library S3 endpoint: %w", err)
		}
	}

	if cmd.Flags().Changed(RedisEnabledKey) {
		config.Redis.Enabled, err = cmd.Flags().GetBool(RedisEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(RedisAddressKey) {
		config.Redis.Address, err = cmd.Flags().GetString(RedisAddressKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis address: %w", err)
		}
	}

	if cmd.Flags().Changed(RedisUsernameKey) {
		config.Redis.Username, err = cmd.Flags().GetString(RedisUsernameKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis username: %w", err)
		}
	}

	if cmd.Flags().Changed(RedisPasswordKey) {
		config.Redis.Password, err = cmd.Flags().GetString(RedisPasswordKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis password: %w", err)
		}
	}

	if cmd.Flags().Changed(RedisDatabaseKey) {
		config.Redis.Database, err = cmd.Flags().GetInt(RedisDatabaseKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis database: %w", err)
		}
	}

	if cmd.Flags().Changed(RedisSentinelEnabledKey) {
		config.Redis.Sentinel.Enabled, err = cmd.Flags().GetBool(RedisSentinelEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis sentinel enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(RedisSentinelMasterNameKey) {
		config.Redis.Sentinel.MasterName, err = cmd.Flags().GetString(RedisSentinelMasterNameKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis sentinel master name: %w", err)
		}
	}

	if cmd.Flags().Changed(RedisSentinelAddressesKey) {
		config.Redis.Sentinel.Addresses, err = cmd.Flags().GetStringSlice(RedisSentinelAddressesKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis sentinel addresses: %w", err)
		}
	}

	if cmd.Flags().Changed(RedisSentinelPasswordKey) {
		config.Redis.Sentinel.Password, err = cmd.Flags().GetString(RedisSentinelPasswordKey)
		if err != nil {
			return fmt.Errorf("failed to get Redis sentinel password: %w", err)
		}
	}

	if cmd.Flags().Changed(NATSEnabledKey) {
		config.NATS.Enabled, err = cmd.Flags().GetBool(NATSEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get NATS enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(NATSURLKey) {
		config.NATS.URL, err = cmd.Flags().GetString(NATSURLKey)
		if err != nil {
			return fmt.Errorf("failed to get NATS URL: %w", err)
		}
	}

	if cmd.Flags().Changed(NATSSubjectKey) {
		config.NATS.Subject, err = cmd.Flags().GetString(NATSSubjectKey)
		if err != nil {
			return fmt.Errorf("failed to get NATS subject: %w", err)
		}
	}

	if cmd.Flags().Changed(AuditEnabledKey) {
		config.Audit.Enabled, err = cmd.Flags().GetBool(AuditEnabledKey)
		if err != nil {
			return fmt.Errorf("failed to get audit enabled: %w", err)
		}
	}

	if cmd.Flags().Changed(AuditWorkersKey) {
		config.Audit.Workers, err = cmd.Flags().GetUint(AuditWorkersKey)
		if err != nil {
			return fmt.Errorf("failed to get audit workers: %w", err)
		}
	}

	return nil
}
