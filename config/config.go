package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Events     EventsConfig     `mapstructure:"events"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int             `mapstructure:"port"`
	CORS         CORSConfig      `mapstructure:"cors"`
	MaxBodyBytes int64           `mapstructure:"max_body_bytes"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimitConfig 写接口限流配置
type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（仅用于限流计数）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig 链路追踪配置
type TelemetryConfig struct {
	Exporter     string `mapstructure:"exporter"` // none | stdout | otlp
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

// EventsConfig 换班事件投递配置
type EventsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Region   string `mapstructure:"region"`
	QueueURL string `mapstructure:"queue_url"`
	Endpoint string `mapstructure:"endpoint"` // 本地开发时指向 LocalStack
}

// ── 业务策略 ──

// 开放式换班申请（未指定被申请人）的审批人范围
const (
	OpenOfferAnyWorker     = "any_worker"
	OpenOfferSameWorkplace = "same_workplace"
	OpenOfferAdminOnly     = "admin_only"
)

// 删除被待处理换班申请引用的班次时的处理方式
const (
	DeletePolicyBlock         = "block"
	DeletePolicyCascadeReject = "cascade_reject"
)

// 同一周期重复生成报表时的处理方式
const (
	ReportSnapshot = "snapshot"
	ReportUpsert   = "upsert"
)

// SchedulingConfig 排班与换班策略配置
type SchedulingConfig struct {
	OpenOfferApprovers    string `mapstructure:"open_offer_approvers"`
	DeleteReferencedShift string `mapstructure:"delete_referenced_shift"`
	ReportRegeneration    string `mapstructure:"report_regeneration"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > .env > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("读取 .env 失败: %w", err)
	}

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.rate_limit.limit", 60)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "workshift")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("telemetry.exporter", "none")
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.service_name", "workshift")

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.region", "eu-central-1")

	v.SetDefault("scheduling.open_offer_approvers", OpenOfferSameWorkplace)
	v.SetDefault("scheduling.delete_referenced_shift", DeletePolicyBlock)
	v.SetDefault("scheduling.report_regeneration", ReportSnapshot)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("WORKSHIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Scheduling.OpenOfferApprovers {
	case OpenOfferAnyWorker, OpenOfferSameWorkplace, OpenOfferAdminOnly:
	default:
		return fmt.Errorf("配置校验失败: scheduling.open_offer_approvers 取值无效 %q", c.Scheduling.OpenOfferApprovers)
	}
	switch c.Scheduling.DeleteReferencedShift {
	case DeletePolicyBlock, DeletePolicyCascadeReject:
	default:
		return fmt.Errorf("配置校验失败: scheduling.delete_referenced_shift 取值无效 %q", c.Scheduling.DeleteReferencedShift)
	}
	switch c.Scheduling.ReportRegeneration {
	case ReportSnapshot, ReportUpsert:
	default:
		return fmt.Errorf("配置校验失败: scheduling.report_regeneration 取值无效 %q", c.Scheduling.ReportRegeneration)
	}
	switch c.Telemetry.Exporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("配置校验失败: telemetry.exporter 取值无效 %q", c.Telemetry.Exporter)
	}
	if c.Events.Enabled && c.Events.QueueURL == "" {
		return fmt.Errorf("配置校验失败: 启用事件投递时 events.queue_url 不能为空")
	}
	return nil
}
