// Package autoload initializes the global logger from the LOG_* environment
// on blank import.
package autoload

import (
	configx "github.com/mousaid/car-sales-agent/pkg/config"
	logx "github.com/mousaid/car-sales-agent/pkg/logger"
)

func init() {
	conf, err := configx.New[logx.Config]("LOG")
	if err != nil {
		logx.Init()
		return
	}
	logx.Init(*conf)
}
