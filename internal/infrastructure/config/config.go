package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Match       MatchConfig      `mapstructure:"match"`
	Lexicon     LexiconConfig    `mapstructure:"lexicon"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// OpenRouterConfig OpenRouter 配置（自由文字生成器）
type OpenRouterConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RedisConfig Redis 配置（食譜語料庫與對話紀錄）
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// CacheConfig 生成器回應緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// MatchConfig 食譜配對設定
type MatchConfig struct {
	// CoverageThreshold 冰箱覆蓋率門檻；低於此值在 fridge-coverage 模式直接剔除
	CoverageThreshold  float64 `mapstructure:"coverage_threshold"`
	DefaultLimit       int     `mapstructure:"default_limit"`
	GenerationAttempts int     `mapstructure:"generation_attempts"`
	GenerationTarget   int     `mapstructure:"generation_target"`
}

// LexiconConfig 關鍵字詞庫，與評分邏輯分離，可由設定檔覆蓋
type LexiconConfig struct {
	Spicy   []string            `mapstructure:"spicy"`
	Light   []string            `mapstructure:"light"`
	Oily    []string            `mapstructure:"oily"`
	Cuisine map[string][]string `mapstructure:"cuisine"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（找不到不視為錯誤，容器環境常以環境變數注入）
	_ = godotenv.Load()

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	viper.BindEnv("openrouter.max_tokens", "MODEL_MAX_TOKENS")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 添加調試日誌（logger 尚未初始化，改用 fmt.Println）
	fmt.Println("Loading configuration", "openrouter_api_key:", maskAPIKey(viper.GetString("openrouter.api_key")), "openrouter_model:", viper.GetString("openrouter.model"))

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "fridge-chef")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// OpenRouter 設定
	viper.SetDefault("openrouter.enabled", false)
	viper.SetDefault("openrouter.model", "qwen/qwen2.5-vl-72b-instruct:free")
	viper.SetDefault("openrouter.max_tokens", 2048)
	viper.SetDefault("openrouter.timeout", "60s")

	// Redis 設定
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.key_prefix", "fridgechef")

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.cleanup_interval", "10m")

	// 配對設定
	// 覆蓋率門檻全系統只有這一處，所有呼叫點共用同一個值
	viper.SetDefault("match.coverage_threshold", 0.5)
	viper.SetDefault("match.default_limit", 3)
	viper.SetDefault("match.generation_attempts", 3)
	viper.SetDefault("match.generation_target", 3)

	// 詞庫預設值
	viper.SetDefault("lexicon.spicy", []string{
		"辣", "麻辣", "辣椒", "花椒", "泡椒", "剁椒", "辣油", "咖哩", "韓式辣醬", "spicy",
	})
	viper.SetDefault("lexicon.light", []string{
		"蒸", "清蒸", "水煮", "燙", "涼拌", "燉", "清炒",
	})
	viper.SetDefault("lexicon.oily", []string{
		"炸", "油炸", "酥炸", "煎", "爆炒", "紅燒", "油封",
	})
	viper.SetDefault("lexicon.cuisine", map[string][]string{
		"台式": {"滷", "三杯", "滷肉", "蚵仔", "米粉", "油蔥"},
		"中式": {"炒", "紅燒", "糖醋", "宮保", "麻婆"},
		"日式": {"味噌", "照燒", "丼", "壽司", "天婦羅", "唐揚"},
		"韓式": {"泡菜", "韓式", "辣醬", "石鍋", "部隊鍋"},
		"義式": {"義大利麵", "番茄醬", "起司", "披薩", "燉飯"},
		"泰式": {"打拋", "椰奶", "檸檬葉", "魚露", "酸辣"},
	})

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 去重設定
	viper.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	// 驗證配對設定
	if config.Match.CoverageThreshold < 0 || config.Match.CoverageThreshold > 1 {
		return fmt.Errorf("invalid coverage threshold")
	}
	if config.Match.DefaultLimit <= 0 {
		return fmt.Errorf("invalid default match limit")
	}
	if config.Match.GenerationAttempts <= 0 {
		return fmt.Errorf("invalid generation attempts")
	}
	if config.Match.GenerationTarget <= 0 {
		return fmt.Errorf("invalid generation target")
	}

	return nil
}
