package config

import (
	"fmt"
	"net"
	neturl "net/url"
	"strconv"
	"strings"
)

// DSNValue returns the explicit DSN, or one assembled from host parts for the configured driver.
func (c DatabaseRuntimeConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}
	switch c.Driver {
	case DriverSQLite:
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = defaultDBName
		}
		return name + ".db"
	case DriverPostgres:
		return c.postgresDSN()
	default:
		return c.mysqlDSN()
	}
}

func (c DatabaseRuntimeConfig) mysqlDSN() string {
	host := orDefault(c.Host, defaultDBHost)
	port := c.Port
	if port == 0 {
		port = defaultDBPort
	}
	user := orDefault(c.User, defaultDBUser)
	name := orDefault(c.Name, defaultDBName)

	params := neturl.Values{}
	for key, value := range c.Params {
		params.Set(key, value)
	}
	if params.Get("charset") == "" {
		params.Set("charset", orDefault(c.Charset, defaultDBCharset))
	}
	if params.Get("parseTime") == "" {
		params.Set("parseTime", strconv.FormatBool(c.ParseTime))
	}
	if params.Get("loc") == "" {
		params.Set("loc", orDefault(c.Loc, defaultDBLoc))
	}

	auth := user
	if c.Password != "" {
		auth += ":" + c.Password
	}
	auth += "@"

	dsn := fmt.Sprintf("%stcp(%s)/%s", auth, net.JoinHostPort(host, strconv.Itoa(port)), name)
	if query := params.Encode(); query != "" {
		dsn += "?" + query
	}
	return dsn
}

func (c DatabaseRuntimeConfig) postgresDSN() string {
	port := c.Port
	if port == 0 || port == defaultDBPort {
		port = 5432
	}
	u := &neturl.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(orDefault(c.Host, defaultDBHost), strconv.Itoa(port)),
		Path:   "/" + orDefault(c.Name, defaultDBName),
	}
	if c.Password != "" {
		u.User = neturl.UserPassword(orDefault(c.User, "postgres"), c.Password)
	} else {
		u.User = neturl.User(orDefault(c.User, "postgres"))
	}
	q := neturl.Values{}
	for key, value := range c.Params {
		q.Set(key, value)
	}
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func orDefault(v, def string) string {
	if t := strings.TrimSpace(v); t != "" {
		return t
	}
	return def
}
