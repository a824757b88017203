package routes

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/voicepay/voicepay/internal/config"
	"github.com/voicepay/voicepay/internal/intent"
	"github.com/voicepay/voicepay/internal/invest"
	"github.com/voicepay/voicepay/internal/ledger"
	"github.com/voicepay/voicepay/internal/middleware"
	"github.com/voicepay/voicepay/internal/notification"
	"github.com/voicepay/voicepay/internal/payments"
	"github.com/voicepay/voicepay/internal/speech"
	"github.com/voicepay/voicepay/internal/transcribe"
	"github.com/voicepay/voicepay/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *gorm.DB
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. A nil DB falls
// back to in-memory stores; a nil Cache keeps conversation state in-process.
// Missing provider credentials degrade their feature rather than fail boot.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Cfg.FrontendURL,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	RegisterHealthRoutes(app, d)

	ctx := context.Background()

	// Stores
	var userRepo user.Repository
	var positionRepo invest.Repository
	var ledgerBackend ledger.Ledger
	if d.DB != nil {
		if err := d.DB.AutoMigrate(&user.User{}, &ledger.Transaction{}, &invest.Position{}); err != nil {
			return err
		}
		userRepo = user.NewGormRepository(d.DB)
		positionRepo = invest.NewGormRepository(d.DB)
		ledgerBackend = ledger.NewGormLedger(d.DB)
	} else {
		memRepo := user.NewMemoryRepository()
		userRepo = memRepo
		positionRepo = invest.NewMemoryRepository()
		ledgerBackend = ledger.NewInMemory(memRepo)
	}

	// Services
	userSvc := user.NewService(userRepo, d.Logger, ledgerBackend, positionRepo)
	if err := userSvc.Seed(ctx); err != nil {
		return err
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	paymentSvc := payments.NewService(userSvc, ledgerBackend, notifier)
	prices := invest.NewStaticPrices(defaultPriceSeed)
	investSvc := invest.NewService(userSvc, positionRepo, ledgerBackend, prices, notifier, d.Logger)

	var store intent.StateStore
	if d.Cache != nil {
		store = intent.NewRedisStore(d.Cache)
	} else {
		store = intent.NewMemoryStore()
	}

	var llm intent.LLM
	if d.Cfg.GeminiAPIKey != "" {
		gemini, err := intent.NewGemini(ctx, d.Cfg.GeminiAPIKey, d.Cfg.GeminiModel)
		if err != nil {
			d.Logger.Warn("gemini unavailable, using rule-based classifier", "error", err)
			llm = intent.NewHeuristic()
		} else {
			llm = gemini
		}
	} else {
		d.Logger.Info("GEMINI_API_KEY not set, using rule-based classifier")
		llm = intent.NewHeuristic()
	}
	intentSvc := intent.NewService(userSvc, ledgerBackend, investSvc, llm, store, d.Logger)

	var transcriber transcribe.Transcriber
	if d.Cfg.GroqAPIKey != "" {
		transcriber = transcribe.NewGroqClient(d.Cfg.GroqAPIKey, d.Cfg.WhisperModel)
	} else {
		d.Logger.Info("GROQ_API_KEY not set, transcription endpoint disabled")
	}

	var remoteSpeaker speech.Speaker
	if d.Cfg.ElevenLabsAPIKey != "" {
		remoteSpeaker = speech.NewElevenLabs(d.Cfg.ElevenLabsAPIKey, d.Cfg.VoiceIDs)
	}
	speechSvc := speech.NewService(remoteSpeaker, speech.NewSynthesizer(), d.Logger)

	// Handlers
	paymentHandler := payments.NewHandler(paymentSvc)
	investHandler := invest.NewHandler(investSvc)
	intentHandler := intent.NewHandler(intentSvc)
	transcribeHandler := transcribe.NewHandler(transcriber)
	speechHandler := speech.NewHandler(speechSvc)

	api := app.Group("/api")
	api.Post("/transcribe", transcribeHandler.Transcribe)
	api.Post("/process_voice", intentHandler.ProcessVoice)
	api.Post("/clear-conversation/:userID", intentHandler.ClearConversation)
	api.Post("/payment", paymentHandler.Pay)
	api.Post("/invest", investHandler.Invest)
	api.Get("/portfolio/:userID", investHandler.Portfolio)
	api.Get("/investment/top-performer", investHandler.TopPick)
	api.Post("/tts", speechHandler.Speak)

	RegisterUserRoutes(api, userSvc, ledgerBackend, investSvc)

	return nil
}

const defaultPriceSeed = 42
