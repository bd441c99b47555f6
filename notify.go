package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const webhookTimeout = 10 * time.Second

var statusColors = map[string]int{
	StatusCompleted:             0x00FF00,
	StatusCompletedWithWarnings: 0xFFFF00,
	StatusFailed:                0xFF0000,
}

var statusEmojis = map[string]string{
	StatusCompleted:             "✅",
	StatusCompletedWithWarnings: "⚠️",
	StatusFailed:                "❌",
}

type discordEmbed struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Color       int           `json:"color"`
	Footer      discordFooter `json:"footer"`
}

type discordFooter struct {
	Text string `json:"text"`
}

// formatDuration renders seconds as "Xm Ys" or "Ys".
func formatDuration(seconds float64) string {
	minutes := int(seconds) / 60
	secs := int(seconds) % 60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}

// errorLabel picks the most useful identifier for an error line.
func errorLabel(err HarvestError) string {
	if err.ID != "" {
		return err.ID
	}
	if err.URL != "" {
		return err.URL
	}
	return "unknown"
}

// sendDiscordNotification posts a run summary embed to a Discord webhook.
// Returns false (and logs) on failure; notification errors never affect
// the run outcome.
func sendDiscordNotification(webhookURL, workspaceName string, stats *BackupStats) bool {
	color, ok := statusColors[stats.Status]
	if !ok {
		color = 0x808080
	}
	emoji, ok := statusEmojis[stats.Status]
	if !ok {
		emoji = "📦"
	}

	lines := []string{
		fmt.Sprintf("**Pages:** %d", stats.Pages),
		fmt.Sprintf("**Databases:** %d", stats.Databases),
		fmt.Sprintf("**Files:** %d", stats.Files),
		fmt.Sprintf("**Duration:** %s", formatDuration(stats.Duration)),
	}

	if len(stats.Errors) > 0 {
		lines = append(lines, fmt.Sprintf("**Errors:** %d", len(stats.Errors)))
		shown := stats.Errors
		if len(shown) > 3 {
			shown = shown[:2]
		}
		for _, err := range shown {
			lines = append(lines, fmt.Sprintf("  • %s: %s", err.Category, errorLabel(err)))
		}
		if len(stats.Errors) > 3 {
			lines = append(lines, fmt.Sprintf("  • ... and %d more", len(stats.Errors)-2))
		}
	}

	payload := map[string]any{
		"embeds": []discordEmbed{{
			Title:       fmt.Sprintf("%s Notion Backup: %s", emoji, workspaceName),
			Description: joinLines(lines),
			Color:       color,
			Footer:      discordFooter{Text: "Status: " + stats.Status},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal Discord payload: %v", err)
		return false
	}

	client := &http.Client{Timeout: webhookTimeout}
	resp, err := client.Post(webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("Failed to send Discord notification: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("Failed to send Discord notification: %v", &HTTPError{StatusCode: resp.StatusCode, URL: webhookURL})
		return false
	}

	log.Printf("Sent Discord notification for %s", workspaceName)
	return true
}

func joinLines(lines []string) string {
	var sb bytes.Buffer
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// shouldNotify applies the notify_on gating: "always" sends everything,
// "error" sends only warning or failed runs.
func shouldNotify(notifyOn, status string) bool {
	switch notifyOn {
	case "always":
		return true
	case "error":
		return status == StatusCompletedWithWarnings || status == StatusFailed
	}
	return false
}
