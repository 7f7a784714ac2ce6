package connector

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

const defaultConnectTimeout = 10 * time.Second

// BuildDSN creates a PostgreSQL connection URL for cfg. Credentials are
// escaped as URL userinfo. sslmode defaults to "prefer" and connect_timeout
// to cfg.ConnectTimeout (10s when unset); entries in cfg.Params override
// both. Query parameters are sorted, so equal configs give equal DSNs.
func BuildDSN(cfg Config) string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     cfg.Host,
		RawQuery: dsnParams(cfg).Encode(),
	}
	if cfg.Port > 0 {
		u.Host = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	}
	if cfg.Username != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.Username, cfg.Password)
		} else {
			u.User = url.User(cfg.Username)
		}
	}
	if cfg.Database != "" {
		u.Path = "/" + cfg.Database
	}
	return u.String()
}

func dsnParams(cfg Config) url.Values {
	q := url.Values{}
	q.Set("sslmode", "prefer")
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	q.Set("connect_timeout", connectTimeoutSeconds(cfg.ConnectTimeout))
	for k, v := range cfg.Params {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// connectTimeoutSeconds rounds d up to whole seconds; libpq has no finer unit.
func connectTimeoutSeconds(d time.Duration) string {
	if d <= 0 {
		d = defaultConnectTimeout
	}
	secs := int64((d + time.Second - 1) / time.Second)
	return strconv.FormatInt(secs, 10)
}
