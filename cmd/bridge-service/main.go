// cmd/bridge-service/main.go
package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"casbridge/internal/pkg/bootstrap"
	"casbridge/internal/pkg/httpclient"
	"casbridge/internal/pkg/mq"
	"casbridge/internal/pkg/redis"
	"casbridge/internal/service/licensing/application"
	"casbridge/internal/service/licensing/domain/port"
	"casbridge/internal/service/licensing/infrastructure/adapter"
	"casbridge/internal/service/licensing/interfaces"
)

const serviceName = "bridge-service"

// main 是桥接服务的组装根：创建并组装所有依赖，然后交给 bootstrap 启动。
func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName:      serviceName,
		Port:             servicePort(),
		RegisterHandlers: registerHandlers,
	})
}

func servicePort() int {
	return bootstrap.GetCurrentConfig().Service.Port
}

func registerHandlers(appCtx bootstrap.AppCtx) {
	cfg := bootstrap.GetCurrentConfig()
	tracer := otel.Tracer(serviceName)

	// 共享的 HTTP 执行器，所有对 Cassandra 的调用都走它
	httpClient := httpclient.NewClient(tracer)

	// Redis 承载主机解析结果等进程间共享的选项
	redisClient, err := redis.NewClient(cfg.Infra.Redis.Addr, cfg.Infra.Redis.Password, cfg.Infra.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize redis client")
	}
	options := adapter.NewOptionsRedisAdapter(redisClient)
	hosts := adapter.NewCassandraHostResolver(options, cfg.Cassandra.OverrideURL, cfg.Service.Debug)

	// 商城数据库是可选依赖：没配 DSN 时订单与商品侧的补充信息会缺失，
	// 但纯透传类的操作仍然可用
	var woo *adapter.WooMySQLAdapter
	if cfg.Infra.MySQL.DSN != "" {
		db, err := gorm.Open(gormmysql.Open(cfg.Infra.MySQL.DSN), &gorm.Config{})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to store database")
		}
		woo = adapter.NewWooMySQLAdapter(db, cfg.Infra.MySQL.TablePrefix)
	} else {
		log.Warn().Msg("MYSQL_DSN not set, order and product lookups are disabled")
	}

	// 事件发布同样可选，关掉后成功上报只落远端不进管道
	var events port.EventSink
	var kafkaWriter *kafka.Writer
	if cfg.Infra.Kafka.Enabled {
		kafkaWriter = mq.NewWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.Topic)
		events = adapter.NewEventsKafkaAdapter(kafkaWriter)
	}

	var orders port.OrderProvider
	var products port.ProductProvider
	var posts port.PostProvider
	if woo != nil {
		orders = woo
		products = woo
		posts = woo
	}

	handler := interfaces.NewBridgeHandler(
		application.NewAuthService(httpClient, hosts, tracer),
		application.NewOrderItemService(httpClient, hosts, orders, tracer),
		application.NewSalesService(httpClient, hosts, orders, events, tracer),
		application.NewProductLogService(httpClient, hosts, products, events, tracer),
		application.NewPostService(httpClient, hosts, posts, tracer),
	)
	handler.RegisterRoutes(appCtx.Mux)

	appCtx.Mux.Handle("/metrics", promhttp.Handler())
	appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}
