package engine

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	DefaultDriver       = "mysql"
	DefaultHost         = "127.0.0.1"
	DefaultPort         = 3306
	DefaultPostgresPort = 5432
)

// Config describes one database connection and how its statements are logged.
type Config struct {
	// Driver selects the database driver: mysql (default), postgres or sqlite.
	Driver   string
	Username string
	Password string
	// Database is the schema name, or the file path for sqlite.
	Database string
	Host     string
	Port     int
	// ConnectTimeout bounds dialing. Zero leaves the driver default.
	ConnectTimeout time.Duration

	// LogSQL enables SQL logging.
	LogSQL bool
	// LogArgs enables argument logging in SQL logs.
	LogArgs bool
	// SlowQuery sets the threshold for slow query logging.
	SlowQuery time.Duration
	// MaxLogSQLLen truncates logged SQL. Zero means 2048.
	MaxLogSQLLen int
	// MaxLogArgsItems limits how many arguments are logged. Zero means 20.
	MaxLogArgsItems int
	// MaxLogArgsLen limits the formatted argument list. Zero means 512.
	MaxLogArgsLen int
	// ArgFormatter renders one argument for logs. Defaults to redaction.
	ArgFormatter func(any) string
}

func (c Config) withDefaults() Config {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.Driver == "" {
		c.Driver = DefaultDriver
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		if c.isPostgres() {
			c.Port = DefaultPostgresPort
		} else {
			c.Port = DefaultPort
		}
	}
	return c
}

func (c Config) isPostgres() bool {
	return c.Driver == "postgres" || c.Driver == "postgresql"
}

// driverName is the name the driver registered with database/sql.
func (c Config) driverName() string {
	if c.isPostgres() {
		return "postgres"
	}
	return c.Driver
}

// DSN renders the driver-specific data source name. Defaults are applied
// first, so a zero Host or Port yields 127.0.0.1 and the driver's port.
func (c Config) DSN() (string, error) {
	c = c.withDefaults()
	switch {
	case c.Driver == "mysql":
		mc := mysql.NewConfig()
		mc.User = c.Username
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		mc.DBName = c.Database
		mc.Timeout = c.ConnectTimeout
		mc.Params = map[string]string{"autocommit": "true"}
		return mc.FormatDSN(), nil
	case c.isPostgres():
		q := url.Values{}
		q.Set("sslmode", "disable")
		if c.ConnectTimeout > 0 {
			secs := int(c.ConnectTimeout / time.Second)
			if secs < 1 {
				secs = 1
			}
			q.Set("connect_timeout", strconv.Itoa(secs))
		}
		u := url.URL{
			Scheme:   "postgres",
			Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
			Path:     "/" + c.Database,
			RawQuery: q.Encode(),
		}
		if c.Username != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		}
		return u.String(), nil
	case c.Driver == "sqlite":
		if c.Database == "" {
			return "", errors.New("dbutils: sqlite requires a database path")
		}
		if c.Database == ":memory:" || strings.Contains(c.Database, "?") {
			return c.Database, nil
		}
		return c.Database + "?_pragma=busy_timeout(5000)", nil
	default:
		return "", fmt.Errorf("dbutils: unsupported driver: %s", c.Driver)
	}
}
