package config

import (
	"flag"
	"os"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-z string   site time zone name (e.g., "Asia/Bangkok")
//	-s string   Google service-account credentials file
//	-l string   vehicle log spreadsheet id
//	-f string   form response spreadsheet id
//	-y string   archive map YAML file
//	-t string   Telegram bot token
//	-m string   Telegram main chat id
//	-r string   Telegram archive chat id
//
// The function first filters os.Args to only the flags it recognizes
// using flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-z", "-s", "-l", "-f", "-y", "-t", "-m", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SiteTimezone, "z", config.SiteTimezone, "site time zone name")
	fs.StringVar(&config.SheetsCredentialsFile, "s", config.SheetsCredentialsFile, "sheets credentials file")
	fs.StringVar(&config.LogSpreadsheetID, "l", config.LogSpreadsheetID, "vehicle log spreadsheet id")
	fs.StringVar(&config.FormSpreadsheetID, "f", config.FormSpreadsheetID, "form response spreadsheet id")
	fs.StringVar(&config.ArchiveMapFile, "y", config.ArchiveMapFile, "archive map YAML file")
	fs.StringVar(&config.TelegramBotToken, "t", config.TelegramBotToken, "Telegram bot token")
	fs.StringVar(&config.TelegramChatID, "m", config.TelegramChatID, "Telegram main chat id")
	fs.StringVar(&config.TelegramArchiveChatID, "r", config.TelegramArchiveChatID, "Telegram archive chat id")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
