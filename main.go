package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/wardenlabs/warden-core/agent"
	"github.com/wardenlabs/warden-core/config"
	"github.com/wardenlabs/warden-core/ipc"
	"github.com/wardenlabs/warden-core/telemetry"
)

const banner = `
██╗    ██╗ █████╗ ██████╗ ██████╗ ███████╗███╗   ██╗
██║    ██║██╔══██╗██╔══██╗██╔══██╗██╔════╝████╗  ██║
██║ █╗ ██║███████║██████╔╝██║  ██║█████╗  ██╔██╗ ██║
██║███╗██║██╔══██║██╔══██╗██║  ██║██╔══╝  ██║╚██╗██║
╚███╔███╔╝██║  ██║██║  ██║██████╔╝███████╗██║ ╚████║
 ╚══╝╚══╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝ ╚══════╝╚═╝  ╚═══╝

Autonomous Colony Tasking`

func main() {
	configPath := flag.String("config", "", "path to YAML config (embedded defaults if empty)")
	socketPath := flag.String("socket", "/tmp/warden.sock", "unix socket to listen on")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	slog.Info("starting warden", "config", *configPath)

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(*socketPath); err != nil {
		slog.Error("failed to clean up socket", "path", *socketPath, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", *socketPath)
	if err != nil {
		slog.Error("failed to listen on socket", "path", *socketPath, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(*socketPath)

	slog.Info("listening on domain socket", "path", *socketPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		sessions := 0
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			sessions++
			slog.Info("new connection accepted", "session", sessions)
			go handleConn(conn, cfg, sessions)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}

func handleConn(conn net.Conn, cfg *config.Config, session int) {
	rec := sessionRecorder(cfg, session)
	if om, ok := rec.(*telemetry.OutputManager); ok {
		defer om.Close()
	}

	c := ipc.NewConnection(conn, nil)
	a, err := agent.New(c, func() config.Config { return *cfg }, rec)
	if err != nil {
		slog.Error("session setup failed", "session", session, "error", err)
		conn.Close()
		return
	}
	c.RegisterHandler(ipc.TypeHello, a.HandleHello)
	c.RegisterHandler(ipc.TypeWorldState, a.HandleWorldState)
	c.RegisterHandler(ipc.TypeCommandResult, a.HandleCommandResult)
	c.ReadLoop()
	a.LogSessionStats()
}

// sessionRecorder builds one CSV output dir per session so concurrent
// colonies never interleave rows in the same file.
func sessionRecorder(cfg *config.Config, session int) telemetry.Recorder {
	if cfg.Telemetry.Dir == "" {
		return telemetry.Nop{}
	}
	dir := filepath.Join(cfg.Telemetry.Dir, fmt.Sprintf("session-%d", session))
	om, err := telemetry.NewOutputManager(dir)
	if err != nil {
		slog.Warn("telemetry output disabled", "error", err)
		return telemetry.Nop{}
	}
	return om
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
