package config

// 支持的数据库驱动
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// SourceConfig 代表一个数据库源（主库或从库）的配置
type SourceConfig struct {
	DSN string `mapstructure:"dsn" json:"dsn" yaml:"dsn"`
	// 独立的连接池设置，未设置时使用共享设置
	MaxIdleConns    *int `mapstructure:"max_idle_conns,omitempty" json:"max_idle_conns,omitempty" yaml:"max_idle_conns,omitempty"`
	MaxOpenConns    *int `mapstructure:"max_open_conns,omitempty" json:"max_open_conns,omitempty" yaml:"max_open_conns,omitempty"`
	ConnMaxLifetime *int `mapstructure:"conn_max_lifetime,omitempty" json:"conn_max_lifetime,omitempty" yaml:"conn_max_lifetime,omitempty"` // 秒
}

// DatabaseConfig 主库、从库以及驱动类型。
// Driver 为 mysql / postgres / sqlite 之一，三者在业务层完全等价。
type DatabaseConfig struct {
	Driver string         `mapstructure:"driver" json:"driver" yaml:"driver"`
	Write  SourceConfig   `mapstructure:"write" json:"write" yaml:"write"`
	Read   []SourceConfig `mapstructure:"read" json:"read" yaml:"read"` // 为空表示不启用读写分离

	SharedMaxIdleConns    int `mapstructure:"max_idle_conns" json:"max_idle_conns" yaml:"max_idle_conns"`
	SharedMaxOpenConns    int `mapstructure:"max_open_conns" json:"max_open_conns" yaml:"max_open_conns"`
	SharedConnMaxLifetime int `mapstructure:"conn_max_lifetime" json:"conn_max_lifetime" yaml:"conn_max_lifetime"` // 秒

	// MaxRetries 启动时连接主库的重试次数
	MaxRetries int `mapstructure:"max_retries" json:"max_retries" yaml:"max_retries"`
}
