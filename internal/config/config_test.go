package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullWechatConfig() WechatPaymentConfig {
	return WechatPaymentConfig{
		AppID:                "wx1234567890",
		MchID:                "1900000001",
		MchCertificateSerial: "5157F09EFDC096DE15EBE81A47057A72",
		MchPrivateKeyPath:    "/certs/apiclient_key.pem",
		MchAPIV3Key:          "0123456789abcdef0123456789abcdef",
		NotifyURL:            "https://pay.example.com/webhook/wechat_notify",
	}
}

func TestWechatPaymentConfig_Configured(t *testing.T) {
	cfg := fullWechatConfig()
	configured, err := cfg.Configured()
	assert.NoError(t, err)
	assert.True(t, configured)
}

func TestWechatPaymentConfig_NotConfigured(t *testing.T) {
	cfg := WechatPaymentConfig{}
	configured, err := cfg.Configured()
	assert.NoError(t, err)
	assert.False(t, configured)
}

// a deployment with some but not all credentials must abort startup, never
// silently fall back to the mock provider
func TestWechatPaymentConfig_PartialFailsFast(t *testing.T) {
	cfg := fullWechatConfig()
	cfg.MchAPIV3Key = ""

	configured, err := cfg.Configured()
	assert.False(t, configured)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mch_apiv3_key")
}

func TestWechatPaymentConfig_SingleFieldIsPartial(t *testing.T) {
	cfg := WechatPaymentConfig{MchID: "1900000001"}

	configured, err := cfg.Configured()
	assert.False(t, configured)
	assert.Error(t, err)
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"api_key":"secret-123","server_port":9000}`), 0o600))

	cfg, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "secret-123", cfg.APIKey)
	assert.Equal(t, int32(9000), cfg.ServerPort)
	assert.Equal(t, "http://localhost:8000", cfg.PublicURL)
	assert.Equal(t, "info", cfg.Loglevel)
	assert.Nil(t, cfg.Mysql)
}

func TestLoadConfig_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("NOVUS_API_KEY", "env-secret")
	t.Setenv("PUBLIC_URL", "https://pay.example.com")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "no-such-config.json"))
	assert.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.APIKey)
	assert.Equal(t, "https://pay.example.com", cfg.PublicURL)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"wechat_payment":{"mch_id":"file-mch"}}`), 0o600))
	t.Setenv("WECHATPAY_MCHID", "env-mch")

	cfg, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "env-mch", cfg.WechatPayment.MchID)
}

func TestLoadConfig_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_NonPositiveRateLimitFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"public_rate_limit":0}`), 0o600))

	cfg, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, float64(20), cfg.PublicRateLimit)

	assert.NoError(t, os.WriteFile(path, []byte(`{"public_rate_limit":-5}`), 0o600))
	cfg, err = LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, float64(20), cfg.PublicRateLimit)
}

func TestMysqlConfig_DSN(t *testing.T) {
	cfg := MysqlConfig{Username: "u", Password: "p", Host: "db", Port: "3306", DBName: "novuspay"}
	assert.Equal(t, "u:p@tcp(db:3306)/novuspay?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DSN())
}
