// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config 是整个桥接服务的配置树，从 YAML 文件加载，少量键允许环境变量覆盖。
type Config struct {
	Service struct {
		Name  string `yaml:"name"`
		Port  int    `yaml:"port"`
		Debug bool   `yaml:"debug"`
	} `yaml:"service"`

	Cassandra struct {
		// 调试模式下直连的后端地址，替代线上入口
		OverrideURL string `yaml:"override_url"`
	} `yaml:"cassandra"`

	Infra struct {
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`

		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`

		MySQL struct {
			DSN         string `yaml:"dsn"`
			TablePrefix string `yaml:"table_prefix"`
		} `yaml:"mysql"`

		Kafka struct {
			Enabled bool     `yaml:"enabled"`
			Brokers []string `yaml:"brokers"`
			Topic   string   `yaml:"topic"`
		} `yaml:"kafka"`

		Nacos struct {
			ServerAddrs string `yaml:"server_addrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
	} `yaml:"infra"`
}

var (
	configOnce    sync.Once
	currentConfig *Config
)

// Init 加载配置。路径取 CONFIG_PATH，缺省 config.yaml；
// 文件不存在时退回默认值，方便本地起服务。
func Init() {
	configOnce.Do(func() {
		cfg := defaultConfig()

		path := getEnv("CONFIG_PATH", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			// 配置文件损坏宁可早死，也不要带着一半配置上线
			if err := yaml.Unmarshal(data, cfg); err != nil {
				panic("bootstrap: invalid config file " + path + ": " + err.Error())
			}
		}

		applyEnvOverrides(cfg)
		currentConfig = cfg
	})
}

// GetCurrentConfig 返回进程级配置。Init 之前调用会得到默认值。
func GetCurrentConfig() *Config {
	Init()
	return currentConfig
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Service.Name = "bridge-service"
	cfg.Service.Port = 8080
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.MySQL.TablePrefix = "wp_"
	cfg.Infra.Kafka.Topic = "cassandra-events"
	cfg.Infra.Nacos.ServerAddrs = "localhost:8848"
	cfg.Infra.Nacos.Group = "DEFAULT_GROUP"
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NACOS_SERVER_ADDRS"); v != "" {
		cfg.Infra.Nacos.ServerAddrs = v
	}
	if v := os.Getenv("NACOS_NAMESPACE"); v != "" {
		cfg.Infra.Nacos.Namespace = v
	}
	if v := os.Getenv("NACOS_GROUP"); v != "" {
		cfg.Infra.Nacos.Group = v
	}
	if v := os.Getenv("JAEGER_ENDPOINT"); v != "" {
		cfg.Infra.Jaeger.Endpoint = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Infra.Redis.Addr = v
	}
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.Infra.MySQL.DSN = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Infra.Kafka.Brokers = strings.Split(v, ",")
		cfg.Infra.Kafka.Enabled = true
	}
	if v := os.Getenv("CASSANDRA_OVERRIDE_URL"); v != "" {
		cfg.Cassandra.OverrideURL = v
	}
	if v := os.Getenv("DEBUG"); v == "1" || v == "true" {
		cfg.Service.Debug = true
	}
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
