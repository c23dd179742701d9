package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/watchparty/internal/app"
)

type configVar[T any] struct {
	envKeys      []string
	flagKey      string
	defaultValue T
	usage        string
}

func (v configVar[T]) bind() {
	viper.BindEnv(append([]string{v.flagKey}, v.envKeys...)...)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

var (
	host = configVar[string]{
		envKeys:      []string{"SERVER_HOST"},
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	// PORT is what most platforms inject
	port = configVar[int]{
		envKeys:      []string{"SERVER_PORT", "PORT"},
		flagKey:      "port",
		defaultValue: 3000,
		usage:        "Server port",
	}
	logLevel = configVar[string]{
		envKeys:      []string{"SERVER_LOG_LEVEL"},
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	staticDir = configVar[string]{
		envKeys:      []string{"SERVER_STATIC_DIR"},
		flagKey:      "static-dir",
		defaultValue: "public",
		usage:        "Directory with static assets served at /",
	}
	historyLimit = configVar[int]{
		envKeys:      []string{"SERVER_HISTORY_LIMIT"},
		flagKey:      "history-limit",
		defaultValue: 100,
		usage:        "Maximum number of chat messages kept per room",
	}
	eventQueueSize = configVar[int]{
		envKeys:      []string{"SERVER_EVENT_QUEUE_SIZE"},
		flagKey:      "event-queue-size",
		defaultValue: 1024,
		usage:        "Inbound event queue size",
	}
	wsReadLimit = configVar[int64]{
		envKeys:      []string{"SERVER_WS_READ_LIMIT"},
		flagKey:      "ws-read-limit",
		defaultValue: 65536,
		usage:        "Maximum websocket message size in bytes",
	}
	wsSendBuffer = configVar[int]{
		envKeys:      []string{"SERVER_WS_SEND_BUFFER"},
		flagKey:      "ws-send-buffer",
		defaultValue: 64,
		usage:        "Outbound frames buffered per connection",
	}
	wsWriteTimeout = configVar[time.Duration]{
		envKeys:      []string{"SERVER_WS_WRITE_TIMEOUT"},
		flagKey:      "ws-write-timeout",
		defaultValue: 10 * time.Second,
		usage:        "Websocket write timeout",
	}
	wsPingPeriod = configVar[time.Duration]{
		envKeys:      []string{"SERVER_WS_PING_PERIOD"},
		flagKey:      "ws-ping-period",
		defaultValue: 30 * time.Second,
		usage:        "Websocket ping period",
	}
	instanceId = configVar[string]{
		envKeys:      []string{"SERVER_INSTANCE_ID"},
		flagKey:      "instance-id",
		defaultValue: defaultInstanceId(),
		usage:        "Instance id published to the room locator",
	}
	redisHost = configVar[string]{
		envKeys:      []string{"REDIS_HOST"},
		flagKey:      "redis-host",
		defaultValue: "",
		usage:        "Redis host, empty disables the room locator",
	}
	redisPort = configVar[int]{
		envKeys:      []string{"REDIS_PORT"},
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisPassword = configVar[string]{
		envKeys:      []string{"REDIS_PASSWORD"},
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
	locatorTTL = configVar[time.Duration]{
		envKeys:      []string{"SERVER_LOCATOR_TTL"},
		flagKey:      "locator-ttl",
		defaultValue: time.Minute,
		usage:        "Room locator key ttl",
	}
)

func defaultInstanceId() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return "watchparty"
	}

	return hostname
}

func loadAppConfig() *app.AppConfig {
	pflag.String(host.flagKey, host.defaultValue, host.usage)
	pflag.Int(port.flagKey, port.defaultValue, port.usage)
	pflag.String(logLevel.flagKey, logLevel.defaultValue, logLevel.usage)
	pflag.String(staticDir.flagKey, staticDir.defaultValue, staticDir.usage)
	pflag.Int(historyLimit.flagKey, historyLimit.defaultValue, historyLimit.usage)
	pflag.Int(eventQueueSize.flagKey, eventQueueSize.defaultValue, eventQueueSize.usage)
	pflag.Int64(wsReadLimit.flagKey, wsReadLimit.defaultValue, wsReadLimit.usage)
	pflag.Int(wsSendBuffer.flagKey, wsSendBuffer.defaultValue, wsSendBuffer.usage)
	pflag.Duration(wsWriteTimeout.flagKey, wsWriteTimeout.defaultValue, wsWriteTimeout.usage)
	pflag.Duration(wsPingPeriod.flagKey, wsPingPeriod.defaultValue, wsPingPeriod.usage)
	pflag.String(instanceId.flagKey, instanceId.defaultValue, instanceId.usage)
	pflag.String(redisHost.flagKey, redisHost.defaultValue, redisHost.usage)
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, redisPort.usage)
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, redisPassword.usage)
	pflag.Duration(locatorTTL.flagKey, locatorTTL.defaultValue, locatorTTL.usage)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	host.bind()
	port.bind()
	logLevel.bind()
	staticDir.bind()
	historyLimit.bind()
	eventQueueSize.bind()
	wsReadLimit.bind()
	wsSendBuffer.bind()
	wsWriteTimeout.bind()
	wsPingPeriod.bind()
	instanceId.bind()
	redisHost.bind()
	redisPort.bind()
	redisPassword.bind()
	locatorTTL.bind()

	config := &app.AppConfig{
		Host:           viper.GetString(host.flagKey),
		Port:           viper.GetInt(port.flagKey),
		LogLevel:       viper.GetString(logLevel.flagKey),
		StaticDir:      viper.GetString(staticDir.flagKey),
		HistoryLimit:   viper.GetInt(historyLimit.flagKey),
		EventQueueSize: viper.GetInt(eventQueueSize.flagKey),
		WSReadLimit:    viper.GetInt64(wsReadLimit.flagKey),
		WSSendBuffer:   viper.GetInt(wsSendBuffer.flagKey),
		WSWriteTimeout: viper.GetDuration(wsWriteTimeout.flagKey),
		WSPingPeriod:   viper.GetDuration(wsPingPeriod.flagKey),
		InstanceId:     viper.GetString(instanceId.flagKey),
		RedisHost:      viper.GetString(redisHost.flagKey),
		RedisPort:      viper.GetInt(redisPort.flagKey),
		RedisPassword:  viper.GetString(redisPassword.flagKey),
		LocatorTTL:     viper.GetDuration(locatorTTL.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	if err := app.Run(ctx, appConfig); err != nil {
		log.Fatal(err)
	}
}
