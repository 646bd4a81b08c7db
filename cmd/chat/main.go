package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"livechat/internal/api"
	"livechat/internal/chaos"
	"livechat/internal/config"
	"livechat/internal/obs"
	"livechat/internal/realtime"
	"livechat/pkg/websocket"

	"github.com/grafana/pyroscope-go"
	"github.com/yanun0323/pkg/sys"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to JSON config overlaying the CHAT_* environment")
	username := flag.String("user", "", "Username to log in with")
	chatID := flag.String("chat", "", "Chat to open after login (default: first listed chat)")
	pyroscopeAddr := flag.String("pyroscope", "", "Pyroscope server address (empty=disable)")
	statsInterval := flag.Duration("stats", 0, "Interval between metrics log lines (0=disable)")
	chaosSeed := flag.Int64("chaos-seed", 0, "Chaos RNG seed (0=time based)")
	chaosFail := flag.Float64("chaos-fail", 0, "Probability of failing a websocket dial")
	chaosDrop := flag.Float64("chaos-drop", 0, "Probability of cutting the connection on an inbound frame")
	chaosDup := flag.Float64("chaos-dup", 0, "Probability of delivering an inbound frame twice")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "-user is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %+v", err)
	}

	if *pyroscopeAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "livechat/client",
			ServerAddress:   *pyroscopeAddr,
			Tags: map[string]string{
				"user": *username,
			},
			Logger: obs.DefaultLogger(),
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %+v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rest, err := api.NewClient(cfg.BaseURL, &http.Client{Timeout: api.DefaultTimeout})
	if err != nil {
		log.Fatalf("api client init failed: %+v", err)
	}

	opts := []realtime.Option{realtime.WithConfig(cfg)}
	chaosCfg := chaos.Config{
		Seed:          *chaosSeed,
		FailDialRate:  *chaosFail,
		DropRate:      *chaosDrop,
		DuplicateRate: *chaosDup,
	}
	if chaosCfg.Enabled() {
		dialer, err := chaos.NewDialer(websocket.NewDialer(websocket.Option{HandshakeTimeout: cfg.HandshakeTimeout}), chaosCfg)
		if err != nil {
			log.Fatalf("chaos dialer init failed: %+v", err)
		}
		opts = append(opts, realtime.WithDialer(dialer))
	}

	client := realtime.New(opts...)
	if *statsInterval > 0 {
		go obs.NewReporter(client.Metrics(), obs.DefaultLogger()).RunReportSchedule(ctx, *statsInterval)
	}

	s := newSession(rest, client, os.Stdout)
	if err := s.start(ctx, *username, *chatID); err != nil {
		log.Fatalf("session start failed: %+v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.close(closeCtx)
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sys.Shutdown():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := s.handle(ctx, line); quit {
				return
			}
		}
	}
}
