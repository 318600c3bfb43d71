// Package telegram provides a client for sending batch-run summaries via
// the Telegram Bot API. It formats a finished analysis report into a
// MarkdownV2 message and handles delivery with retry logic.
package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kbidlab/bidscope/internal/models"
)

// Client handles Telegram notifications
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// Send delivers the report summary to the configured chat.
func (c *Client) Send(report *models.Report) error {
	message := FormatReport(report)

	msg := tgbotapi.NewMessage(c.chatID, message)
	msg.ParseMode = "MarkdownV2"

	// Send with retry
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// FormatReport formats a batch report into a Telegram MarkdownV2 message.
func FormatReport(report *models.Report) string {
	var b strings.Builder

	b.WriteString("📊 *Bid Rate Analysis Complete*\n\n")
	b.WriteString(fmt.Sprintf("🆔 Run: %s\n", escapeMarkdownV2(report.RunID)))
	b.WriteString(fmt.Sprintf("📋 Notices: %d total, %d analyzed, %d missing\n",
		report.Summary.Total, report.Summary.Filtered, report.Summary.Missing))

	if report.HotZone != nil {
		zoneStr := escapeMarkdownV2(fmt.Sprintf("%.2f%% ~ %.2f%%", report.HotZone.Start, report.HotZone.End))
		b.WriteString(fmt.Sprintf("🔥 Hot zone: %s \\(%d winners\\)\n", zoneStr, report.HotZone.Count))
	}

	b.WriteString(fmt.Sprintf("🌊 Blue ocean: %s\n", escapeMarkdownV2(report.Summary.BlueRange)))

	if report.Summary.RecommendedRate != nil {
		rateStr := escapeMarkdownV2(fmt.Sprintf("%.4f%%", *report.Summary.RecommendedRate))
		b.WriteString(fmt.Sprintf("🎯 Recommended rate: *%s*\n", rateStr))
	}

	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	result := ""
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			result += "\\" + string(char)
		default:
			result += string(char)
		}
	}
	return result
}
