package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件与环境变量覆盖
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
	Business BusinessConfig `mapstructure:"business"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// 数据库驱动
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql | postgres | memory
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// LockWaitTimeout 行锁等待上限，超时按冲突处理
	LockWaitTimeout time.Duration `mapstructure:"lock_wait_timeout"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN 生成连接字符串
// MySQL：user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local
// PostgreSQL：host=... port=... user=... password=... dbname=... sslmode=disable TimeZone=...
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverPostgres {
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
		if d.Loc != "" && d.Loc != "Local" {
			dsn += " TimeZone=" + d.Loc
		}
		return dsn
	}
	// loc需要URL编码（Asia/Shanghai → Asia%2FShanghai）
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, url.QueryEscape(d.Loc))
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type RabbitMQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"` // OTLP gRPC，如 localhost:4317
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // text | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// BusinessConfig 业务参数
type BusinessConfig struct {
	// RentalPeriod 借期，默认14天
	RentalPeriod time.Duration `mapstructure:"rental_period"`
	// PromotionPolicy any：只要促销存在就打折；active：还需在有效期内
	PromotionPolicy   string        `mapstructure:"promotion_policy"`
	PromotionCacheTTL time.Duration `mapstructure:"promotion_cache_ttl"`
	// SkipLocked 锁定可用副本时跳过已被其他事务锁住的行（MySQL 8 / PostgreSQL）
	SkipLocked bool `mapstructure:"skip_locked"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("database.driver", DriverMySQL)
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.loc", "Local")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.lock_wait_timeout", 5*time.Second)

	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("rabbitmq.exchange", "bookstore.events")
	v.SetDefault("tracing.service_name", "bookstore-core")
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("business.rental_period", 14*24*time.Hour)
	v.SetDefault("business.promotion_policy", "active")
	v.SetDefault("business.promotion_cache_ttl", 5*time.Minute)
}

// Load 加载配置文件
// 1. 默认加载config/config.yaml
// 2. 环境变量BOOKSTORE_ENV指定环境（如prod → config.prod.yaml）
// 3. 环境变量覆盖（如BOOKSTORE_DATABASE_PASSWORD → database.password）
func Load() (*Config, error) {
	name := "config"
	if env := os.Getenv("BOOKSTORE_ENV"); env != "" {
		name = "config." + env
	}

	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	return load(v)
}

// LoadFile 从指定文件加载
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("BOOKSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	switch cfg.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", cfg.Database.Driver)
	}

	switch cfg.Business.PromotionPolicy {
	case "any", "active":
	default:
		return fmt.Errorf("无效的促销策略: %q（可选any、active）", cfg.Business.PromotionPolicy)
	}

	if cfg.Business.RentalPeriod <= 0 {
		return fmt.Errorf("借期必须大于0: %s", cfg.Business.RentalPeriod)
	}

	if cfg.RabbitMQ.Enabled && cfg.RabbitMQ.URL == "" {
		return fmt.Errorf("启用RabbitMQ时必须配置rabbitmq.url")
	}
	return nil
}
