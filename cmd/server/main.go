// Package main implements the entry point for the tarea API server,
// which manages tasks and their file attachments backed by DynamoDB
// and S3, and publishes mutation events to SNS.
package main

import (
	"context"
	"log"
)

// main loads configuration, wires the AWS-backed stores into the
// service layer, and runs the HTTP server until interrupted.
func main() {
	ctx := context.Background()

	app, err := initializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
