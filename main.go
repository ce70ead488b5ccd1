package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"

	"github.com/bootdotdev/tubely-aspect/internal/aspectratio"
	"github.com/bootdotdev/tubely-aspect/internal/database"
	"github.com/bootdotdev/tubely-aspect/internal/sampler"
	"github.com/bootdotdev/tubely-aspect/internal/settings"
)

type apiConfig struct {
	db        database.Client
	jwtSecret string
	platform  string
	port      string
	s3Client  *s3.Client
	s3Bucket  string
	s3Region  string
	sampler   sampler.Sampler
	arConfig  aspectratio.Config
	logger    *slog.Logger
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load(".env")

	pathToDB := mustEnv(logger, "DB_PATH")
	jwtSecret := mustEnv(logger, "JWT_SECRET")
	platform := mustEnv(logger, "PLATFORM")
	s3Bucket := mustEnv(logger, "S3_BUCKET")
	s3Region := mustEnv(logger, "S3_REGION")
	port := mustEnv(logger, "PORT")

	arConfig, err := settings.Load(os.Getenv("AR_CONFIG_PATH"))
	if err != nil {
		fatal(logger, "Couldn't load aspect ratio settings", err)
	}
	arConfig, err = settings.FromEnv(arConfig, os.Getenv)
	if err != nil {
		fatal(logger, "Invalid aspect ratio environment", err)
	}

	samplerOpts := sampler.DefaultOptions()
	if v := os.Getenv("AR_SAMPLES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fatal(logger, "Invalid AR_SAMPLES", err)
		}
		samplerOpts.Samples = n
	}

	db, err := database.NewClient(pathToDB)
	if err != nil {
		fatal(logger, "Couldn't connect to database", err)
	}
	defer db.Close()

	awsCfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(s3Region))
	if err != nil {
		fatal(logger, "Couldn't load AWS config", err)
	}

	cfg := apiConfig{
		db:        db,
		jwtSecret: jwtSecret,
		platform:  platform,
		port:      port,
		s3Client:  s3.NewFromConfig(awsCfg),
		s3Bucket:  s3Bucket,
		s3Region:  s3Region,
		sampler:   sampler.NewFFmpeg(samplerOpts, logger),
		arConfig:  arConfig,
		logger:    logger,
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: cfg.routes(),
	}

	logger.Info("Serving on port", "port", port,
		"canonical_ratios", arConfig.CanonicalRatios, "round_up", arConfig.RoundUp)
	if err := srv.ListenAndServe(); err != nil {
		fatal(logger, "Server stopped", err)
	}
}

func (cfg *apiConfig) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthz", handlerReadiness)

	mux.HandleFunc("POST /api/login", cfg.handlerLogin)
	mux.HandleFunc("POST /api/users", cfg.handlerUsersCreate)

	mux.HandleFunc("POST /api/videos", cfg.handlerVideoMetaCreate)
	mux.HandleFunc("GET /api/videos", cfg.handlerVideosRetrieve)
	mux.HandleFunc("GET /api/videos/{videoID}", cfg.handlerVideoGet)
	mux.HandleFunc("DELETE /api/videos/{videoID}", cfg.handlerVideoMetaDelete)
	mux.HandleFunc("POST /api/video_upload/{videoID}", cfg.handlerUploadVideo)
	mux.HandleFunc("POST /api/videos/{videoID}/reclassify", cfg.handlerVideoReclassify)

	mux.HandleFunc("POST /api/aspect_ratio/classify", cfg.handlerClassify)
	mux.HandleFunc("POST /api/aspect_ratio/round", cfg.handlerRound)

	mux.HandleFunc("POST /admin/reset", cfg.handlerReset)

	return noStoreMiddleware(mux)
}

func mustEnv(logger *slog.Logger, key string) string {
	v := os.Getenv(key)
	if v == "" {
		logger.Error("Required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}
