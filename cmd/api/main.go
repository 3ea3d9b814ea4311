package main

import (
	"context"
	"log"

	"github.com/Apurer/go-checkout-api/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("checkout api exited: %v", err)
	}
}
