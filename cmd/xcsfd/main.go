/*
xcsfd serves an XCSF classifier system over HTTP: POST /learn and
/predict drive trials, GET /state reports population summary stats, and
/telemetry streams population snapshots over a websocket. Config is read
from a YAML file (or Default() if none is given) and then layered with
XCSF_* environment overrides, same two-stage precedence as niceyeti-tabular's
main.go took from flags and a config.yaml.
*/
package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/rpreen/xcsf"
	"github.com/rpreen/xcsf/api"
	"github.com/rpreen/xcsf/config"
	"github.com/rpreen/xcsf/xlog"
)

var (
	configPath *string
	addr       *string
	popPath    *string
)

func init() {
	configPath = flag.String("config", "", "path to a YAML config file (optional, overrides Default())")
	addr = flag.String("addr", ":8080", "listen address")
	popPath = flag.String("pop", "xcsf.pop", "default population save/load path")
	flag.Parse()
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.FromYAML(*configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
	}
	return config.FromEnv(cfg)
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	x, err := xcsf.New(cfg)
	if err != nil {
		return fmt.Errorf("new xcsf: %w", err)
	}

	srv := api.New(x, *popPath)
	xlog.Info("xcsfd: listening on %s", *addr)
	return http.ListenAndServe(*addr, srv.Router())
}

// TODO: graceful shutdown on SIGINT/SIGTERM with a final autosave to popPath.
func main() {
	if err := run(); err != nil {
		xlog.Fatal(err)
	}
}
