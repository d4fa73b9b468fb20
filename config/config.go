package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr         string
	DBUrl        string
	TokenSecret  string
	TokenTTL     time.Duration
	SaveDebounce time.Duration
	Debug        bool
}

func ParseFlags() (cfg Config, err error) {
	var host string
	flag.StringVar(&host, "host", "0.0.0.0", "listen host name")
	var port uint
	flag.UintVar(&port, "port", 80, "listen port number")
	flag.StringVar(&cfg.DBUrl, "db-url", "formdesk.sqlite", "path to SQLite3 DB file")
	flag.StringVar(&cfg.TokenSecret, "token-secret", "", "secret key for token encryption and decryption")
	var ttl uint
	flag.UintVar(&ttl, "token-ttl", 1200, "access token TTL in seconds")
	var debounce uint
	flag.UintVar(&debounce, "save-debounce", 1000, "builder auto-save quiescence in milliseconds")
	flag.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	flag.Parse()

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	cfg.SaveDebounce = time.Duration(debounce) * time.Millisecond

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

func (cfg Config) Url() string {
	addr, _ := strings.CutPrefix(cfg.Addr, "0.0.0.0")
	if addr != cfg.Addr {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
