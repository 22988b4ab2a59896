package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"uarchive/internal/auth"
	"uarchive/internal/clock"
	"uarchive/internal/config"
	"uarchive/internal/domain"
	apphttp "uarchive/internal/http"
	"uarchive/internal/logging"
	"uarchive/internal/repository/sqlite"
	"uarchive/internal/service"
	"uarchive/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		logrus.Fatalf("setup logging: %v", err)
	}
	defer logCloser.Close()

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	applied, err := sqlite.Migrate(ctx, db)
	if err != nil {
		logger.Fatalf("migrate database: %v", err)
	}
	logger.WithField("applied", applied).Info("database migrations complete")

	userRepo := sqlite.NewUserRepository(db)
	courseRepo := sqlite.NewCourseRepository(db)
	problemRepo := sqlite.NewProblemRepository(db)
	commentRepo := sqlite.NewCommentRepository(db)
	summaryRepo := sqlite.NewSummaryRepository(db)

	clk := clock.NewRealClock()
	hasher := auth.NewPasswordHasher(auth.Argon2Params{
		MemoryKiB:   cfg.Auth.Argon2.MemoryKiB,
		Iterations:  cfg.Auth.Argon2.Iterations,
		Parallelism: cfg.Auth.Argon2.Parallelism,
	})
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenTTL(), clk)

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	resolver := service.NewCourseResolver(courseRepo)
	handler := apphttp.NewHandler(apphttp.Deps{
		Users:     service.NewUserService(userRepo, hasher, tokens, clk),
		Courses:   service.NewCourseService(courseRepo, resolver, clk),
		Problems:  service.NewProblemService(problemRepo, courseRepo, userRepo, resolver, clk, logger),
		Comments:  service.NewCommentService(commentRepo, problemRepo, userRepo, clk, logger),
		Summaries: service.NewSummaryService(summaryRepo, userRepo, resolver, storageSvc, service.AttachmentOptions{
			KeyPrefix: cfg.Storage.KeyPrefix,
			URLTTL:    cfg.AttachmentURLTTL(),
		}, clk, logger),
		Search:          service.NewSearchService(courseRepo, problemRepo),
		Identity:        auth.NewIdentityResolver(tokens, userRepo),
		ProblemVotes:    service.NewVoteLedger[domain.Problem]("problem", problemRepo),
		CommentVotes:    service.NewVoteLedger[domain.Comment]("comment", commentRepo),
		SummaryVotes:    service.NewVoteLedger[domain.Summary]("summary", summaryRepo),
		RequireVoteAuth: cfg.Auth.RequireVoteAuth,
		Logger:          logger,
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// buildStorage returns nil when no bucket is configured, which disables attachments.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("no storage bucket configured, summary attachments disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, cfg.Storage.Bucket)
}
