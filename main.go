package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"

	"AtendeBot/ai"
	"AtendeBot/bot/chat"
	"AtendeBot/bot/whatsapp"
	"AtendeBot/entity"
	"AtendeBot/internal/config"
	repository "AtendeBot/internal/database"
	"AtendeBot/internal/http-server/api"
	"AtendeBot/internal/lib/logger"
	"AtendeBot/internal/lib/sl"
	"AtendeBot/internal/service/auth"
	"AtendeBot/internal/service/control"
	"AtendeBot/internal/service/ingest"
	"AtendeBot/internal/ws"
	"AtendeBot/rag"
)

// backend combines the services behind the HTTP API surface.
type backend struct {
	*chat.ChatEngine
	*repository.MongoDB
	authService    *auth.Service
	controlService *control.Service
	ingestService  *ingest.Service
}

func (b *backend) Login(ctx context.Context, username, password string) (string, error) {
	return b.authService.Login(ctx, username, password)
}

func (b *backend) Authenticate(ctx context.Context, token string) (*entity.AdminUser, error) {
	return b.authService.Authenticate(ctx, token)
}

func (b *backend) Assume(ctx context.Context, sessionID string) error {
	return b.controlService.Assume(ctx, sessionID)
}

func (b *backend) Release(ctx context.Context, sessionID string) error {
	return b.controlService.Release(ctx, sessionID)
}

func (b *backend) SendAsAgent(ctx context.Context, sessionID, text string) error {
	return b.controlService.SendAsAgent(ctx, sessionID, text)
}

func (b *backend) IngestFile(ctx context.Context, filename string, data []byte) (int, error) {
	return b.ingestService.IngestFile(ctx, filename, data)
}

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	// Forward error records to the ops Telegram chat if enabled
	if conf.Telegram.Enabled {
		tgBot, err := gotgbot.NewBot(conf.Telegram.ApiKey, nil)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			lg = logger.SetupTelegramHandler(lg, logger.NewBotSender(tgBot), conf.Telegram.AdminId, slog.LevelError)
			lg.With(
				slog.String("bot_name", tgBot.Username),
			).Info("telegram alerting initialized")
		}
	}

	lg.Info("starting atendebot", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.Error("mongo client", sl.Err(err))
		return
	}
	if db == nil {
		lg.Error("mongo is required, enable it in the config")
		return
	}
	lg.With(
		slog.String("host", conf.Mongo.Host),
		slog.String("port", conf.Mongo.Port),
		slog.String("user", conf.Mongo.User),
		slog.String("database", conf.Mongo.Database),
	).Info("mongo client initialized")

	if err := db.EnsureSessionIndexes(); err != nil {
		lg.Error("session indexes", sl.Err(err))
	}
	if err := db.EnsureMessageIndexes(); err != nil {
		lg.Error("message indexes", sl.Err(err))
	}
	if err := db.SeedDepartments(); err != nil {
		lg.Error("seeding departments", sl.Err(err))
	}
	if err := db.EnsureAdminUser(conf.Admin.Username, auth.HashPassword(conf.Admin.Password)); err != nil {
		lg.Error("seeding admin user", sl.Err(err))
	}

	gateway := ai.NewGateway(conf, db, lg)
	ragService := rag.NewService(db, gateway, lg)
	ingestService := ingest.NewIngestService(ragService, lg)

	engine := chat.NewChatEngine(db, db, db, db, ragService, gateway, lg)

	hub := ws.NewHub(lg)
	go hub.Run()
	engine.SetMessageListener(hub)

	authService := auth.NewAuthService(db, lg)

	controlService := control.NewControlService(db, db, lg)
	controlService.SetNotifier(hub)
	hub.SetHandler(controlService)

	var webhookSurface *whatsapp.GraphSocket
	var supervisor *whatsapp.Supervisor
	if conf.WhatsApp.Enabled {
		socket := whatsapp.NewGraphSocket(
			conf.WhatsApp.AccessToken,
			conf.WhatsApp.VerifyToken,
			conf.WhatsApp.AppSecret,
			conf.WhatsApp.PhoneNumberID,
			lg,
		)
		supervisor = whatsapp.NewSupervisor(socket, lg)
		socket.SetInboundHandler(func(sender, displayName, text string) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			result := engine.ProcessMessage(ctx, sender, text, entity.PlatformWhatsApp, &chat.Metadata{DisplayName: displayName})
			if result.Response == "" {
				return
			}
			if err := supervisor.Send(sender, result.Response, result.Options); err != nil {
				lg.Error("sending whatsapp reply", sl.Err(err), slog.String("recipient", sender))
			}
		})
		supervisor.Start(context.Background())
		controlService.SetChannelSender(supervisor)
		webhookSurface = socket
		lg.With(
			sl.Secret("access_token", conf.WhatsApp.AccessToken),
			slog.String("phone_number_id", conf.WhatsApp.PhoneNumberID),
		).Info("whatsapp channel initialized")
	}

	handler := &backend{
		ChatEngine:     engine,
		MongoDB:        db,
		authService:    authService,
		controlService: controlService,
		ingestService:  ingestService,
	}

	// *** blocking start with http server ***
	if webhookSurface != nil {
		err = api.New(conf, lg, handler, webhookSurface, supervisor, hub, authService)
	} else {
		err = api.New(conf, lg, handler, nil, nil, hub, authService)
	}
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
