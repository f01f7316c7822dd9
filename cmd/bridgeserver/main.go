package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/omni-labs/bridge/cmd/bridgeserver/server"
	"github.com/omni-labs/bridge/core"
)

func main() {
	_ = godotenv.Load()

	addr := os.Getenv("BRIDGE_API_ADDR")
	if addr == "" {
		addr = ":8082"
	}

	locker := core.NewLocker(core.NewInMemoryStore(), nil)
	srv := server.New(locker)

	logrus.Infof("bridge admin server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.NewRouter()); err != nil {
		logrus.Fatal(err)
	}
}
