package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/pion/logging"

	"github.com/farouk15160/canbits/internal/bridge"
	"github.com/farouk15160/canbits/internal/canframe"
	"github.com/farouk15160/canbits/internal/config"
	myMqtt "github.com/farouk15160/canbits/internal/mqtt"
)

func main() {
	flag.Parse()
	opts := config.FromFlags()
	if err := opts.Validate(); err != nil {
		log.Fatalf("Invalid options: %v", err)
	}
	factory, err := opts.LoggerFactory(nil)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger := factory.NewLogger("main")

	// 1) Routing rules
	var routes *config.Config
	if opts.ConfigFile != "" {
		routes, err = config.LoadConfig(opts.ConfigFile, factory.NewLogger("config"))
		if err != nil {
			log.Fatalf("Error loading config at %s: %v", opts.ConfigFile, err)
		}
		logger.Infof("Loaded %d routes from %s", len(routes.Routes), opts.ConfigFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2) Sinks
	var current atomic.Pointer[bridge.Bridge]
	sinks := []bridge.Sink{bridge.NewLogSink(factory)}

	var mqttClient *myMqtt.Client
	if opts.Broker != "" {
		mqttClient, err = myMqtt.NewClientAndConnect(myMqtt.Config{
			Broker:   opts.Broker,
			ClientID: opts.ClientID,
			Username: opts.Username,
			Status: func() any {
				if b := current.Load(); b != nil {
					return b.Stats()
				}
				return nil
			},
			LoggerFactory: factory,
		})
		if err != nil {
			log.Fatalf("Failed to set up MQTT: %v", err)
		}
		defer mqttClient.Disconnect()
		sinks = append(sinks, bridge.NewMQTTSink(mqttClient))
	}

	if opts.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("Redis at %s not reachable yet: %v", opts.RedisAddr, err)
		}
		sinks = append(sinks, bridge.NewRedisSink(rdb))
	}

	if opts.CanIface != "" {
		bus, err := bridge.OpenCANBus(opts.CanIface, factory)
		if err != nil {
			log.Fatalf("Failed to open CAN interface: %v", err)
		}
		defer bus.Disconnect()
		sinks = append(sinks, bridge.NewCANSink(bus, factory))
	}

	b := bridge.New(bridge.Config{
		Decoder:       canframe.Decoder{StuffWidth: opts.EffectiveStuffWidth()},
		Routes:        routes,
		Format:        opts.Format,
		Sinks:         sinks,
		LoggerFactory: factory,
	})
	current.Store(b)

	if mqttClient != nil {
		if err := mqttClient.PublishStartInfo(config.AppName); err != nil {
			logger.Warnf("Could not publish start info: %v", err)
		}
	}

	// 3) Periodic status
	reporterDone := make(chan struct{})
	reportCtx, stopReporter := context.WithCancel(ctx)
	if opts.StatsInterval > 0 {
		go func() {
			defer close(reporterDone)
			b.RunReporter(reportCtx, opts.StatsInterval, report(mqttClient, logger))
		}()
	} else {
		close(reporterDone)
	}

	// 4) Input
	in, err := openInput(opts.Input)
	if err != nil {
		log.Fatalf("Failed to open input: %v", err)
	}
	defer in.Close()

	if err := b.Run(ctx, in); err != nil && ctx.Err() == nil {
		logger.Errorf("Input stopped: %v", err)
	}
	stopReporter()
	<-reporterDone
	logger.Info("Shutting down gracefully...")
}

func report(client *myMqtt.Client, logger logging.LeveledLogger) func(bridge.Snapshot) {
	return func(s bridge.Snapshot) {
		if client != nil {
			if err := client.PublishStatus(); err != nil {
				logger.Warnf("Status publish failed: %v", err)
			}
			return
		}
		logger.Infof("Stats: %d lines, %d decoded, %d failed, %d delivered, top errors %v",
			s.Lines, s.Decoded, s.Failed, s.Delivered, s.TopErrors())
	}
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}
