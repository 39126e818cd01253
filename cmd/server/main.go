package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ranorsolutions/svc-routing-go/pkg/loader"
	"github.com/ranorsolutions/svc-routing-go/pkg/route"
	"github.com/ranorsolutions/svc-routing-go/pkg/server"
	"github.com/ranorsolutions/svc-routing-go/pkg/service"
)

func main() {
	printRoutes := flag.Bool("routes", false, "print the route table and exit")
	flag.Parse()

	svc, err := service.New()
	if err != nil {
		log.Fatal("fatal error creating service: ", err)
	}

	registerUsers(svc)

	if *printRoutes {
		table, err := route.Table(loader.LoadAll(svc.Store))
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(string(table))
		return
	}

	srv, err := server.New(svc, os.Getenv("API_VERSION"))
	if err != nil {
		log.Fatal("fatal error creating server: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		svc.Logger.Error("server stopped: %v", err)
		os.Exit(1)
	}
}
