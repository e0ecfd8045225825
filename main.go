package main

import (
	"MarketChat/bot"
	"MarketChat/impl/core"
	"MarketChat/internal/config"
	"MarketChat/internal/database"
	"MarketChat/internal/database/memstore"
	"MarketChat/internal/http-server/api"
	"MarketChat/internal/http-server/handlers/health"
	"MarketChat/internal/lib/logger"
	"MarketChat/internal/lib/sl"
	"MarketChat/internal/service/auth"
	"MarketChat/internal/service/autoreply"
	"MarketChat/internal/service/fanout"
	"MarketChat/internal/ws"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			// alerts only: info and debug stay in the log
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelWarn)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")

			go func() {
				if err := tgBot.Start(); err != nil {
					lg.Error("telegram bot error", sl.Err(err))
				}
			}()
		}
	}

	lg.Info("starting marketchat", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := core.New(lg)
	handler.SetHistoryLimit(conf.Chat.HistoryLimit)
	handler.SetTimeouts(
		time.Duration(conf.Chat.FanoutTimeout)*time.Second,
		time.Duration(conf.Chat.ReplyTimeout)*time.Second,
	)
	checks := map[string]health.Pinger{}

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
		return
	}
	if db != nil {
		if err = db.EnsureIndexes(ctx); err != nil {
			lg.Error("mongo indexes", sl.Err(err))
			return
		}
		handler.SetRepository(db)
		checks["mongo"] = db
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	} else {
		handler.SetRepository(memstore.New())
		lg.Warn("mongo disabled, rooms are kept in memory")
	}

	authService, err := auth.NewAuthService(conf, lg)
	if err != nil {
		lg.Error("auth service", sl.Err(err))
		return
	}
	handler.SetAuthService(authService)

	hub := ws.NewHub(lg)
	go hub.Run(ctx)

	rdb, err := fanout.NewRedisClient(ctx, conf)
	if err != nil {
		lg.Error("redis client", sl.Err(err))
		return
	}
	if rdb != nil {
		handler.SetPublisher(fanout.NewRedisPublisher(rdb, conf.Redis.ChannelPrefix))
		relay := fanout.NewRelay(rdb, conf.Redis.ChannelPrefix, hub, lg)
		go func() {
			if err := relay.Run(ctx); err != nil {
				lg.Error("redis relay stopped", sl.Err(err))
			}
		}()
		checks["redis"] = health.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		lg.With(
			slog.String("addr", conf.Redis.Addr),
			slog.String("prefix", conf.Redis.ChannelPrefix),
		).Info("redis fan-out initialized")
	} else {
		handler.SetPublisher(hub)
	}

	if responder := autoreply.NewResponder(conf, lg); responder != nil {
		handler.SetResponder(responder)
		lg.With(
			slog.String("model", conf.OpenAI.Model),
			sl.Secret("openai_key", conf.OpenAI.ApiKey),
		).Info("ai auto reply initialized")
	}

	server := api.New(conf, lg, handler, hub, checks)
	go func() {
		<-ctx.Done()
		lg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("server shutdown", sl.Err(err))
		}
	}()

	// *** blocking start with http server ***
	if err = server.Start(); err != nil {
		lg.Error("server start", sl.Err(err))
	}

	handler.Wait()
	if tgBot != nil {
		tgBot.Stop()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if db != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = db.Close(closeCtx)
		cancel()
	}
	lg.Info("service stopped")
}
