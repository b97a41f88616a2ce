package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// GatewayMode - режим работы платежного шлюза.
// Выбирается явно в конфигурации и логируется при старте,
// никогда не выводится из отсутствия ключей.
type GatewayMode string

const (
	GatewayModeLive     GatewayMode = "live"
	GatewayModeSandbox  GatewayMode = "sandbox"
	GatewayModeDisabled GatewayMode = "disabled"
)

func (m GatewayMode) Valid() bool {
	switch m {
	case GatewayModeLive, GatewayModeSandbox, GatewayModeDisabled:
		return true
	}
	return false
}

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // в минутах
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`

	Midtrans struct {
		Mode      GatewayMode `yaml:"mode"` // live, sandbox, disabled
		ServerKey string      `yaml:"server_key"`
		ClientKey string      `yaml:"client_key"`
	} `yaml:"midtrans"`
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		log.Println("Загрузка из config.yaml (режим НЕ-тест)")

		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		normalize(&cfg)
		AppConfig = &cfg
		return
	}

	log.Println("Загрузка конфигурации из ПЕРЕМЕННЫХ ОКРУЖЕНИЯ (режим теста)")

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60

	cfg.Midtrans.Mode = GatewayMode(os.Getenv("MIDTRANS_MODE"))
	cfg.Midtrans.ServerKey = os.Getenv("MIDTRANS_SERVER_KEY")
	cfg.Midtrans.ClientKey = os.Getenv("MIDTRANS_CLIENT_KEY")

	cfg.Email.SMTPHost = "smtp.test.com"
	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "billing@fanbase.test"

	normalize(&cfg)
	AppConfig = &cfg
}

// normalize валидирует режим шлюза. Невалидный или пустой режим - это
// ошибка конфигурации: завершаем процесс, а не угадываем режим молча.
func normalize(cfg *Config) {
	if cfg.Midtrans.Mode == "" {
		cfg.Midtrans.Mode = GatewayModeDisabled
		log.Println("⚠️  midtrans.mode не задан: шлюз переведен в режим 'disabled' (mock). Платежи НЕ настоящие.")
		return
	}
	if !cfg.Midtrans.Mode.Valid() {
		log.Fatalf("invalid midtrans.mode %q: expected live, sandbox or disabled", cfg.Midtrans.Mode)
	}
	if cfg.Midtrans.Mode != GatewayModeDisabled && cfg.Midtrans.ServerKey == "" {
		log.Fatalf("midtrans.mode=%s requires midtrans.server_key", cfg.Midtrans.Mode)
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
