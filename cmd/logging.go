package cmd

import (
	"os"

	"github.com/therdel/raytracer/log"
	"github.com/urfave/cli"
)

var logger = log.New("raytracer")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

// Log error and exit.
func Fatal(err error) {
	logger.Error(err)
	os.Exit(1)
}
