// internal/config/constants.go
package config

// アプリケーション情報
const (
	AppName    = "OnboardKeep"
	AppVersion = "1.0.0"
)

// デフォルト設定値
const (
	DefaultServerPort       = ":8080"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultPageSize         = 20
	DefaultJWTExpiryMinutes = 60
	DefaultMailerType       = "log"
)
