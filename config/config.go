package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig          `mapstructure:"server"`
	Database  DatabaseConfig        `mapstructure:"database"`
	Storage   StorageConfig         `mapstructure:"storage"`
	Redis     RedisConfig           `mapstructure:"redis"`
	Session   SessionConfig         `mapstructure:"session"`
	PayPal    PayPalConfig          `mapstructure:"paypal"`
	Replicate ReplicateConfig       `mapstructure:"replicate"`
	OSS       OSSConfig             `mapstructure:"oss"`
	Email     EmailConfig           `mapstructure:"email"`
	CORS      CORSConfig            `mapstructure:"cors"`
	Plans     map[string]PlanConfig `mapstructure:"plans"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, postgres, sqlite；URL 形式的 dsn 按 scheme 识别
	DSN          string `mapstructure:"dsn"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// Enabled 是否配置了关系型数据库
func (c DatabaseConfig) Enabled() bool {
	return c.DSN != "" || c.Host != ""
}

// ConnString 返回连接串，显式 DSN 优先
func (c DatabaseConfig) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}

// StorageConfig 未配置数据库时使用的 JSON 文件
type StorageConfig struct {
	UsersFile  string `mapstructure:"users_file"`
	OrdersFile string `mapstructure:"orders_file"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type SessionConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
	CookieName  string `mapstructure:"cookie_name"`
	Secure      bool   `mapstructure:"secure"`
}

type PayPalConfig struct {
	ClientID       string            `mapstructure:"client_id"`
	Secret         string            `mapstructure:"secret"`
	Env            string            `mapstructure:"env"` // sandbox, live
	BaseURL        string            `mapstructure:"base_url"`
	Currency       string            `mapstructure:"currency"`
	TimeoutSeconds int               `mapstructure:"timeout_seconds"`
	PlanIDs        map[string]string `mapstructure:"plan_ids"` // 订阅按钮使用的 PayPal plan id
}

const (
	PayPalSandboxURL = "https://api-m.sandbox.paypal.com"
	PayPalLiveURL    = "https://api-m.paypal.com"
)

// APIBase 根据环境返回 PayPal REST 地址
func (c PayPalConfig) APIBase() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if strings.ToLower(c.Env) == "live" {
		return PayPalLiveURL
	}
	return PayPalSandboxURL
}

type ReplicateConfig struct {
	APIToken       string `mapstructure:"api_token"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	PlaceholderURL string `mapstructure:"placeholder_url"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

// Enabled 是否启用 OSS 转存
func (c OSSConfig) Enabled() bool {
	return c.Endpoint != "" && c.AccessKeyID != "" && c.BucketName != ""
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// PlanConfig 覆盖内置套餐
type PlanConfig struct {
	Name        string  `mapstructure:"name"`
	Price       float64 `mapstructure:"price"`
	Credits     int     `mapstructure:"credits"`
	MaxDuration int     `mapstructure:"max_duration"`
}

// 兼容旧部署使用的环境变量名
var legacyEnv = map[string]string{
	"database.dsn":          "DATABASE_URL",
	"paypal.client_id":      "PAYPAL_CLIENT_ID",
	"paypal.secret":         "PAYPAL_SECRET",
	"paypal.env":            "PAYPAL_ENV",
	"paypal.plan_ids.basic": "PAYPAL_PLAN_BASIC",
	"paypal.plan_ids.pro":   "PAYPAL_PLAN_PRO",
	"paypal.plan_ids.elite": "PAYPAL_PLAN_ELITE",
	"replicate.api_token":   "REPLICATE_API_TOKEN",
	"email.username":        "SMTP_EMAIL",
	"email.password":        "SMTP_PASS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)

	v.SetDefault("storage.users_file", "users.json")
	v.SetDefault("storage.orders_file", "orders.json")

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("session.secret", "")
	v.SetDefault("session.expire_hours", 24*14)
	v.SetDefault("session.cookie_name", "vidgen_session")
	v.SetDefault("session.secure", false)

	v.SetDefault("paypal.client_id", "")
	v.SetDefault("paypal.secret", "")
	v.SetDefault("paypal.env", "sandbox")
	v.SetDefault("paypal.base_url", "")
	v.SetDefault("paypal.currency", "GBP")
	v.SetDefault("paypal.timeout_seconds", 20)

	v.SetDefault("replicate.api_token", "")
	v.SetDefault("replicate.base_url", "https://api.replicate.com")
	v.SetDefault("replicate.model", "minimax/hailuo-02")
	v.SetDefault("replicate.timeout_seconds", 120)
	v.SetDefault("replicate.placeholder_url", "https://sample-videos.com/video321/mp4/720/big_buck_bunny_720p_1mb.mp4")

	v.SetDefault("email.smtp_host", "smtp.gmail.com")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "")

	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization"})
}

func Load(configPath string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load(filepath.Join(filepath.Dir(configPath), ".env"))

	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, err
		}
	}

	// 配置文件可选，纯环境变量部署时不存在
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Email.From == "" {
		cfg.Email.From = cfg.Email.Username
	}

	return &cfg, nil
}
