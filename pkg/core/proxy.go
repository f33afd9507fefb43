package core

import (
	"fmt"
	"net/url"
)

// Proxy is one outbound proxy endpoint. Identity is Host:Port; credentials
// are optional. Entries are loaded once at pool initialization and are never
// removed at runtime, only marked reachable or not.
type Proxy struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
	IsActive bool   `yaml:"-" json:"is_active"`
}

// Addr returns the host:port form used as the proxy identity.
func (p Proxy) Addr() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// URL builds the http proxy URL, including basic-auth credentials when set.
func (p Proxy) URL() *url.URL {
	u := &url.URL{Scheme: "http", Host: p.Addr()}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u
}

func (p Proxy) String() string {
	return p.Addr()
}
