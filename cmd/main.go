package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xenn00/campus-chat/config"
	chat_handler "github.com/xenn00/campus-chat/internal/handlers/chat-handler"
	hub_handler "github.com/xenn00/campus-chat/internal/handlers/hub-handler"
	ws_handler "github.com/xenn00/campus-chat/internal/handlers/ws-handler"
	"github.com/xenn00/campus-chat/internal/presence"
	"github.com/xenn00/campus-chat/internal/queue"
	"github.com/xenn00/campus-chat/internal/registry"
	directory_repo "github.com/xenn00/campus-chat/internal/repo/directory"
	message_repo "github.com/xenn00/campus-chat/internal/repo/message"
	room_repo "github.com/xenn00/campus-chat/internal/repo/room"
	"github.com/xenn00/campus-chat/internal/routers"
	chat_service "github.com/xenn00/campus-chat/internal/use-case/chat-case"
	"github.com/xenn00/campus-chat/internal/websocket"
	"github.com/xenn00/campus-chat/internal/worker"
	worker_handler "github.com/xenn00/campus-chat/internal/worker/worker-handler"
	"github.com/xenn00/campus-chat/state"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appState, err := state.InitAppState(ctx, stop)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application state")
	}
	defer appState.Close()

	// Repos and trackers
	roomRepo := room_repo.NewRoomRepo(appState.DB)
	msgRepo := message_repo.NewMessageRepo(appState.Mongo)
	directory := directory_repo.NewCachedDirectory(directory_repo.NewDirectoryRepo(appState.DB), appState.Redis)
	tracker := presence.NewTracker(appState.Redis, directory)
	roomRegistry := registry.NewRoomRegistry()
	producer := queue.NewProducer(appState.Redis)

	// Socket plumbing
	wsHub := websocket.NewHub()
	log.Info().Msg("Websocket hub initialized")

	chatService := chat_service.NewChatService(roomRegistry, tracker, wsHub, roomRepo, msgRepo, directory, producer)

	wsHandler := websocket.NewHandler(ws_handler.NewWSEventHandler(wsHub, chatService))
	wsHandler.MaxConnections = int64(config.Conf.WS.MaxConnections)
	log.Info().Msg("Websocket handler initialized")

	r := routers.NewRouter(routers.Deps{
		WS:   wsHandler,
		Chat: chat_handler.NewChatHandler(chatService),
		Hub:  hub_handler.NewHubHandler(wsHub, wsHandler, tracker, roomRegistry),
	})

	// Background workers
	workerPool := worker.NewWorkerPool(appState.Redis, appState.Mongo, config.Conf.WORKER.Num, worker_handler.NewWorkerHandler(roomRepo))
	workerPool.Start(ctx)
	workerPool.StartDLQWorker(ctx)
	workerPool.StartDLQRetryConsumer(ctx)

	server := &http.Server{
		Addr:         config.Conf.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Msgf("Starting server on http://localhost%s", config.Conf.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(fmt.Sprintf("ListenAndServe failed: %v", err))
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown initiated...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("Graceful shutdown failed: %v\n", err)
	} else {
		fmt.Println("Server exited gracefully.")
	}

	wsHub.Close()
	workerPool.Wait()
}
