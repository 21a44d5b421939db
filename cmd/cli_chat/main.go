package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chat-demo/internal/config"
	"chat-demo/internal/conversation"
	"chat-demo/internal/service"
	"chat-demo/internal/storeclient"
	"chat-demo/internal/terminal"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "cli_chat",
		Short: "Terminal chat client for the chat-demo REST store",
		Long: `cli_chat logs in with phone and country, lists contacts and keeps the
selected conversation refreshed by polling the store.

Type a line to send it, or one of the commands shown by /help.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiURL, _ := cmd.Flags().GetString("api")
			verbose, _ := cmd.Flags().GetBool("verbose")
			audioSource, _ := cmd.Flags().GetString("audio-source")
			sessionID, _ := cmd.Flags().GetString("session")
			return run(cmd.Context(), apiURL, verbose, audioSource, sessionID)
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().String("api", "", "REST store base URL (defaults to API_BASE_URL)")
	rootCmd.Flags().BoolP("verbose", "v", false, "Log to stderr")
	rootCmd.Flags().String("audio-source", "", "File streamed as microphone input while recording")
	rootCmd.Flags().String("session", "", "Resume an existing session id")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, apiURL string, verbose bool, audioSource, sessionID string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if apiURL == "" {
		apiURL = cfg.APIBaseURL
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer logger.Sync()

	client := storeclient.New(apiURL, logger)
	app := &chatApp{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		notifier: terminal.NewNotifier(os.Stdout),
		auth: service.NewAuthenticator(logger, client, client.Sessions(), service.AuthOptions{
			ReadOnly: cfg.ReadOnly,
		}),
		guard: service.NewSessionGuard(logger, client.Sessions(), cfg.SessionTTLHours, nil),
	}
	for {
		session, err := app.authenticate(ctx, sessionID)
		if err != nil {
			if errors.Is(err, errQuit) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		sessionID = ""

		app.engine = conversation.NewEngine(logger, client, terminal.NewRenderer(os.Stdout, 72), app.notifier,
			terminal.Microphone{Source: audioSource}, conversation.Config{
				LocalUserID:  session.UserID,
				PollInterval: cfg.PollInterval,
			})

		chatCtx, cancel := context.WithCancel(ctx)
		eg, egCtx := errgroup.WithContext(chatCtx)
		eg.Go(func() error { return app.engine.PollMessages(egCtx) })

		next := app.chatLoop(egCtx, session)
		cancel()
		if err := eg.Wait(); err != nil {
			logger.Warn("poller stopped", zap.Error(err))
		}
		app.engine.Reset()

		if next == exitApp || ctx.Err() != nil {
			return nil
		}
	}
}
