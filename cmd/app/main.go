package main

import (
	"context"
	"os"

	"github.com/medgrid/fhirgate/internal/service"
)

func main() {
	ctx := context.Background()

	svc, err := service.NewFHIRGateService(os.Getenv("FHIRGATE_CONFIG"))
	if err != nil {
		panic(err)
	}

	err = svc.Start(ctx)
	if err != nil {
		panic(err)
	}
}
