package main

import (
	"log"

	"github.com/anime-shed/image-ocr-go/internal/config"
	"github.com/anime-shed/image-ocr-go/internal/container"
	"github.com/anime-shed/image-ocr-go/internal/logger"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"ocr_language":      cfg.OCRLanguage,
		"structured_errors": cfg.StructuredErrors,
		"blob_storage":      cfg.BlobStorageEnabled(),
	}).Info("Starting Lambda handler")

	lambda.Start(c.LambdaHandler().Handle)
}
