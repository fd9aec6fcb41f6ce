package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

type MysqlConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	DBName   string `json:"dbname"`
}

func (c *MysqlConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.Username, c.Password, c.Host, c.Port, c.DBName)
}

type MqttConfig struct {
	Broker   string `json:"broker"`
	ClientID string `json:"clientid"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
}

// 微信支付相关参数
type WechatPaymentConfig struct {
	AppID                string `json:"app_id"`
	MchID                string `json:"mch_id"`
	MchCertificateSerial string `json:"mch_certificate_serial"`
	MchPrivateKeyPath    string `json:"mch_private_key_path"`
	MchAPIV3Key          string `json:"mch_apiv3_key"`
	NotifyURL            string `json:"notify_url"`
}

// Configured reports whether provider credentials are usable. All credentials
// present selects the real adapter, none selects the mock; partial credentials
// are a deployment mistake and abort startup instead of silently taking
// unauthenticated payments through the mock.
func (c *WechatPaymentConfig) Configured() (bool, error) {
	fields := map[string]string{
		"app_id":                 c.AppID,
		"mch_id":                 c.MchID,
		"mch_certificate_serial": c.MchCertificateSerial,
		"mch_private_key_path":   c.MchPrivateKeyPath,
		"mch_apiv3_key":          c.MchAPIV3Key,
		"notify_url":             c.NotifyURL,
	}
	var missing []string
	present := 0
	for name, v := range fields {
		if v == "" {
			missing = append(missing, name)
		} else {
			present++
		}
	}
	if present == 0 {
		return false, nil
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return false, fmt.Errorf("partial wechat pay configuration, missing: %s", strings.Join(missing, ", "))
	}
	return true, nil
}

type Config struct {
	ServerPort      int32               `json:"server_port"`
	PublicURL       string              `json:"public_url"` // base for checkout links, must be reachable by payers
	APIKey          string              `json:"api_key"`
	Loglevel        string              `json:"log_level"`
	PublicRateLimit float64             `json:"public_rate_limit"` // req/s for public checkout routes
	Mysql           *MysqlConfig        `json:"mysql,omitempty"`
	Mqtt            *MqttConfig         `json:"mqtt,omitempty"`
	WechatPayment   WechatPaymentConfig `json:"wechat_payment"`
}

// LoadConfig reads the JSON config file and applies .env/environment
// overrides. A missing file is fine: everything can come from the environment.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:      8000,
		PublicURL:       "http://localhost:8000",
		Loglevel:        "info",
		PublicRateLimit: 20,
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// environment-only deployment
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)

	// a non-positive rate would shed every public request
	if cfg.PublicRateLimit <= 0 {
		cfg.PublicRateLimit = 20
	}
	return cfg, nil
}

// applyEnv keeps the variable names the deployment already uses.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PUBLIC_URL"); v != "" {
		cfg.PublicURL = v
	}
	if v := os.Getenv("NOVUS_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	wp := &cfg.WechatPayment
	if v := os.Getenv("WECHATPAY_APPID"); v != "" {
		wp.AppID = v
	}
	if v := os.Getenv("WECHATPAY_MCHID"); v != "" {
		wp.MchID = v
	}
	if v := os.Getenv("WECHATPAY_SERIAL_NO"); v != "" {
		wp.MchCertificateSerial = v
	}
	if v := os.Getenv("WECHATPAY_APIV3_KEY"); v != "" {
		wp.MchAPIV3Key = v
	}
	if v := os.Getenv("WECHATPAY_KEY_PATH"); v != "" {
		wp.MchPrivateKeyPath = v
	}
	if v := os.Getenv("WECHATPAY_NOTIFY_URL"); v != "" {
		wp.NotifyURL = v
	}
}
