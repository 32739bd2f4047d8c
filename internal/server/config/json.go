package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/flagx"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/timex"
)

// JsonConfig is the JSON-file counterpart of Config. It uses
// timex.Duration for interval fields so files may write either "30s"
// style strings or integer nanoseconds. After unmarshalling, its fields
// are copied into the runtime Config.
type JsonConfig struct {
	DatabaseDSN  string `json:"database_dsn"`
	SiteTimezone string `json:"site_timezone"`

	SheetsCredentialsFile string `json:"sheets_credentials_file"`

	LogSpreadsheetID string `json:"log_spreadsheet_id"`
	LogSheetName     string `json:"log_sheet_name"`
	ArchiveMapFile   string `json:"archive_map_file"`

	FormSpreadsheetID string `json:"form_spreadsheet_id"`
	FormSheetName     string `json:"form_sheet_name"`
	FormStatusColumn  string `json:"form_status_column"`
	FormSheetGID      int64  `json:"form_sheet_gid"`

	TelegramEnabled       *bool          `json:"telegram_enabled"`
	TelegramBotToken      string         `json:"telegram_bot_token"`
	TelegramChatID        string         `json:"telegram_chat_id"`
	TelegramArchiveChatID string         `json:"telegram_archive_chat_id"`
	TelegramTimeout       timex.Duration `json:"telegram_timeout"`
	PointerFile           string         `json:"pointer_file"`

	FormSyncInterval  timex.Duration `json:"form_sync_interval"`
	LongTermInterval  timex.Duration `json:"long_term_interval"`
	NoShowSweepHour   *int           `json:"no_show_sweep_hour"`
	NoShowSweepMinute *int           `json:"no_show_sweep_minute"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags, when present. A missing flag means no overlay; an
// unreadable or invalid file panics, since running with half-applied
// configuration is worse than not starting.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlayString(&config.DatabaseDSN, c.DatabaseDSN)
	overlayString(&config.SiteTimezone, c.SiteTimezone)
	overlayString(&config.SheetsCredentialsFile, c.SheetsCredentialsFile)
	overlayString(&config.LogSpreadsheetID, c.LogSpreadsheetID)
	overlayString(&config.LogSheetName, c.LogSheetName)
	overlayString(&config.ArchiveMapFile, c.ArchiveMapFile)
	overlayString(&config.FormSpreadsheetID, c.FormSpreadsheetID)
	overlayString(&config.FormSheetName, c.FormSheetName)
	overlayString(&config.FormStatusColumn, c.FormStatusColumn)
	if c.FormSheetGID != 0 {
		config.FormSheetGID = c.FormSheetGID
	}
	if c.TelegramEnabled != nil {
		config.TelegramEnabled = *c.TelegramEnabled
	}
	overlayString(&config.TelegramBotToken, c.TelegramBotToken)
	overlayString(&config.TelegramChatID, c.TelegramChatID)
	overlayString(&config.TelegramArchiveChatID, c.TelegramArchiveChatID)
	overlayDuration(&config.TelegramTimeout, c.TelegramTimeout)
	overlayString(&config.PointerFile, c.PointerFile)
	overlayDuration(&config.FormSyncInterval, c.FormSyncInterval)
	overlayDuration(&config.LongTermInterval, c.LongTermInterval)
	if c.NoShowSweepHour != nil {
		config.NoShowSweepHour = *c.NoShowSweepHour
	}
	if c.NoShowSweepMinute != nil {
		config.NoShowSweepMinute = *c.NoShowSweepMinute
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlayDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
