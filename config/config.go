package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	WorkerPool WorkerPoolConfig `mapstructure:"worker_pool"`
	Risk       RiskConfig       `mapstructure:"risk"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type KafkaConfig struct {
	Brokers           []string `mapstructure:"brokers"`
	ActivityTopic     string   `mapstructure:"activity_topic"`
	NotificationTopic string   `mapstructure:"notification_topic"`
	ConsumerGroup     string   `mapstructure:"consumer_group"`
}

type JWTConfig struct {
	Secret       string `mapstructure:"secret"`
	ExpireHours  int    `mapstructure:"expire_hours"`
	RefreshHours int    `mapstructure:"refresh_hours"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"` // json, text
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`
}

type RateLimitConfig struct {
	QPS            int64 `mapstructure:"qps"`
	Burst          int64 `mapstructure:"burst"`
	MaxConcurrency int   `mapstructure:"max_concurrency"`
}

type WorkerPoolConfig struct {
	Size      int `mapstructure:"size"`
	QueueSize int `mapstructure:"queue_size"`
}

// RiskConfig 风险分类策略配置
// 分类器本身不持有任何全局状态，策略整体作为参数传入每次分类调用
type RiskConfig struct {
	BannedKeywords   []string `mapstructure:"banned_keywords"`
	MaxMessageLen    int      `mapstructure:"max_message_len"`
	MaxLinks         int      `mapstructure:"max_links"`
	CapsRatio        float64  `mapstructure:"caps_ratio"`
	CapsMinLen       int      `mapstructure:"caps_min_len"`
	FloodCount       int      `mapstructure:"flood_count"`
	NewMemberAgeMins int      `mapstructure:"new_member_age_mins"`
	ContentMaxLen    int      `mapstructure:"content_max_len"`

	// 告警与升级阈值（有序风险等级的字符串形式）
	AlertThreshold string `mapstructure:"alert_threshold"`
	SuspiciousAt   string `mapstructure:"suspicious_at"`
	DangerousAt    string `mapstructure:"dangerous_at"`

	// 通知限流：每个群组在窗口期内最多发出的通知数
	NotifyLimit     int `mapstructure:"notify_limit"`
	NotifyWindowSec int `mapstructure:"notify_window_sec"`

	// 存储冲突重试次数上限
	MaxRetries int `mapstructure:"max_retries"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 如果文件不存在，可以根据情况决定是报错还是使用默认值
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 将配置反序列化到结构体
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("risk.max_message_len", 500)
	v.SetDefault("risk.max_links", 3)
	v.SetDefault("risk.caps_ratio", 0.7)
	v.SetDefault("risk.caps_min_len", 10)
	v.SetDefault("risk.flood_count", 20)
	v.SetDefault("risk.new_member_age_mins", 10)
	v.SetDefault("risk.content_max_len", 500)
	v.SetDefault("risk.alert_threshold", "high")
	v.SetDefault("risk.suspicious_at", "high")
	v.SetDefault("risk.dangerous_at", "critical")
	v.SetDefault("risk.notify_limit", 5)
	v.SetDefault("risk.notify_window_sec", 60)
	v.SetDefault("risk.max_retries", 3)
}
