package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/Margays/config"
	"github.com/lshigami/Margays/database"
	_ "github.com/lshigami/Margays/docs" // Swagger docs - auto-generated
	adminctrl "github.com/lshigami/Margays/internal/controller/admin"
	userctrl "github.com/lshigami/Margays/internal/controller/user"
	"github.com/lshigami/Margays/internal/logger"
	"github.com/lshigami/Margays/internal/model"
	"github.com/lshigami/Margays/internal/repository"
	"github.com/lshigami/Margays/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title TOEIC Practice & Grading API
// @version 1.0
// @description API for TOEIC exam practice: attempt lifecycle, atomic grading, scaled score conversion, weak-area analysis and score recalculation after question edits.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewExamRepository,
			repository.NewQuestionRepository,
			repository.NewAttemptRepository,
			repository.NewAttemptAnswerRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewScoreConverterService,
			service.NewWeakAreaService,
			service.NewAdviceService,
			service.NewGradingService,
			service.NewExamService,
			func(
				examRepo repository.ExamRepository,
				questionRepo repository.QuestionRepository,
				attemptRepo repository.AttemptRepository,
				answerRepo repository.AttemptAnswerRepository,
				grading service.GradingService,
				weakArea service.WeakAreaService,
				advice service.AdviceService,
				db *gorm.DB,
			) service.AttemptService {
				return service.NewAttemptService(examRepo, questionRepo, attemptRepo, answerRepo, grading, weakArea, advice, db)
			},
			service.NewRecalculationService,
			service.NewAdminExamService,
		),

		// API Controllers Layer
		fx.Provide(
			userctrl.NewExamController,
			userctrl.NewAttemptController,
			adminctrl.NewAdminExamController,
		),

		// Invokers - Functions that are executed by Fx
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Zerolog-backed request logging
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	examCtrl *userctrl.ExamController,
	attemptCtrl *userctrl.AttemptController,
	adminExamCtrl *adminctrl.AdminExamController,
) {
	// Admin Routes (prefixed with /api/v1/admin)
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		adminAPIGroup.POST("/exams", adminExamCtrl.CreateExam)
		adminAPIGroup.PUT("/questions/:question_id/correct-choice", adminExamCtrl.UpdateCorrectChoice)
		adminAPIGroup.POST("/questions/:question_id/recalculate", adminExamCtrl.RecalculateQuestionScores)
	}

	// User Routes (prefixed with /api/v1)
	userAPIGroup := router.Group("/api/v1")
	{
		userAPIGroup.GET("/exams", examCtrl.GetAllExams)
		userAPIGroup.GET("/exams/:exam_id", examCtrl.GetExamDetails)

		userAPIGroup.POST("/attempts", attemptCtrl.StartAttempt)
		userAPIGroup.GET("/attempts/active", attemptCtrl.GetActiveAttempt)
		userAPIGroup.POST("/attempts/:attempt_id/submit", attemptCtrl.SubmitAttempt)
		userAPIGroup.GET("/attempts/:attempt_id/results", attemptCtrl.GetResults)
		userAPIGroup.GET("/progress", attemptCtrl.GetProgressSummary)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("TOEIC Practice API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Exam{},
		&model.Question{},
		&model.Choice{},
		&model.Attempt{},
		&model.AttemptAnswer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
