package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qs3c/vidgen_server/config"
)

// NewGorm 按驱动打开关系型数据库
func NewGorm(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	driver, dsn, err := ResolveDSN(cfg)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 等价于 pool_pre_ping：启动时确认连接可用
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// ResolveDSN 识别 URL 形式的连接串（旧部署的 DATABASE_URL，如 postgresql://、mysql+pymysql://、
// sqlite:///app.db），返回驱动名和驱动可直接使用的 DSN；其余按 cfg.Driver 原样返回
func ResolveDSN(cfg *config.DatabaseConfig) (string, string, error) {
	dsn := cfg.ConnString()
	driver := strings.ToLower(cfg.Driver)
	if driver == "" {
		driver = "mysql"
	}

	i := strings.Index(dsn, "://")
	if i < 0 {
		return driver, dsn, nil
	}
	scheme := strings.ToLower(dsn[:i])
	if j := strings.Index(scheme, "+"); j >= 0 {
		scheme = scheme[:j]
	}
	rest := dsn[i+len("://"):]

	switch scheme {
	case "postgres", "postgresql":
		return "postgres", "postgres://" + rest, nil
	case "mysql", "mariadb":
		converted, err := mysqlDSN(rest)
		if err != nil {
			return "", "", err
		}
		return "mysql", converted, nil
	case "sqlite":
		// sqlite:///rel.db 为相对路径，sqlite:////abs.db 为绝对路径
		path := strings.TrimPrefix(rest, "/")
		if path == "" {
			path = ":memory:"
		}
		return "sqlite", path, nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme: %s", scheme)
	}
}

// mysqlDSN 把 user:pass@host:port/db?x=y 转为 go-sql-driver 的 DSN
func mysqlDSN(rest string) (string, error) {
	u, err := url.Parse("mysql://" + rest)
	if err != nil {
		return "", fmt.Errorf("invalid mysql url: %w", err)
	}

	c := mysqldriver.NewConfig()
	c.Net = "tcp"
	c.Addr = u.Host
	if u.Port() == "" {
		c.Addr = u.Hostname() + ":3306"
	}
	c.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		c.User = u.User.Username()
		c.Passwd, _ = u.User.Password()
	}
	c.ParseTime = true
	c.Loc = time.Local
	c.Params = map[string]string{"charset": "utf8mb4"}
	for key, values := range u.Query() {
		if len(values) > 0 {
			c.Params[key] = values[0]
		}
	}
	return c.FormatDSN(), nil
}

// NewRedis 连接 Redis 并 ping 一次
func NewRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}
