package main

import (
	"os"

	"github.com/cshum/vipsop/config"
	"github.com/cshum/vipsop/config/awsconfig"
	"github.com/cshum/vipsop/config/gcloudconfig"
	"github.com/cshum/vipsop/server"
)

func newServer(args ...string) *server.Server {
	return config.CreateServer(args, awsconfig.WithAWS, gcloudconfig.WithGCloud)
}

func main() {
	if srv := newServer(os.Args[1:]...); srv != nil {
		srv.Run()
	}
}
