package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config 结构体用于存储应用程序的配置信息
type Config struct {
	HTTPAddr            string
	StorageDriver       string // mongo 或 memory
	MongoURI            string
	MongoDatabase       string
	MongoConnectRetries int
	JWTSecret           string
	LogLevel            string
	FrontendURL         string
	InQueryLimit        int // 单次 in 查询的最大 id 数
	RedisAddr           string
	RedisPassword       string
	RateLimitPerMinute  int
	EventBus            string // none / nats / kafka
	NATSURL             string
	KafkaBrokers        []string
	KafkaTopic          string
	OTELEnabled         bool
	OTELEndpoint        string
	OTELServiceName     string
	Debug               bool // 是否开启调试模式
}

// AppConfig 是全局配置变量
var AppConfig Config

// Init 函数用于初始化配置
func Init() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("警告：无法加载 .env 文件: %v", err)
	}

	AppConfig = Load()
	validateConfig()

	if AppConfig.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("应用程序运行在调试模式")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("应用程序运行在生产模式")
	}

	log.Printf("配置加载完成。存储：%s，数据库：%s", AppConfig.StorageDriver, AppConfig.MongoDatabase)
}

// Load 从环境变量中读取配置
func Load() Config {
	return Config{
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		StorageDriver:       getEnv("STORAGE_DRIVER", "mongo"),
		MongoURI:            getEnv("MONGO_URI", ""),
		MongoDatabase:       getEnv("MONGO_DATABASE", "forum"),
		MongoConnectRetries: getEnvAsInt("MONGO_CONNECT_RETRIES", 5),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:5173"),
		InQueryLimit:        getEnvAsInt("IN_QUERY_LIMIT", 30),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RateLimitPerMinute:  getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		EventBus:            getEnv("EVENT_BUS", "none"),
		NATSURL:             getEnv("NATS_URL", "nats://localhost:4222"),
		KafkaBrokers:        getEnvAsList("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "forum-events"),
		OTELEnabled:         getEnvAsBool("OTEL_ENABLED", false),
		OTELEndpoint:        getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTELServiceName:     getEnv("OTEL_SERVICE_NAME", "community-forum"),
		Debug:               getEnvAsBool("DEBUG", false),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsList(key, defaultVal string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultVal), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validateConfig() {
	if AppConfig.StorageDriver == "mongo" && AppConfig.MongoURI == "" {
		log.Fatal("错误：MONGO_URI 未设置")
	}
	if AppConfig.JWTSecret == "" {
		log.Fatal("错误：JWT密钥未设置")
	}
	if AppConfig.InQueryLimit <= 0 {
		log.Fatal("错误：IN_QUERY_LIMIT 必须大于 0")
	}
}
