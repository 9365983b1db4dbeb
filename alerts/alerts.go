// Package alerts posts operational failures to a Slack webhook so a broken
// effect sink or rule store shows up somewhere other than the process logs.
package alerts

import (
	"context"
	"crypto/md5"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/slack-go/slack"
)

const alertCooldown = 10 * time.Minute

type Notifier struct {
	webhookURL  string
	environment string
	appName     string

	mu            sync.Mutex
	alertedErrors map[string]time.Time // hash -> last alert time
}

// NewNotifier creates a notifier posting to the given Slack webhook. An
// empty webhook URL disables alerting; every Alert call becomes a no-op.
func NewNotifier(webhookURL, environment, appName string) *Notifier {
	return &Notifier{
		webhookURL:    webhookURL,
		environment:   environment,
		appName:       appName,
		alertedErrors: make(map[string]time.Time),
	}
}

// AlertError posts the error to Slack, attributed to the given source.
// The same error is not re-alerted within the cooldown window to prevent
// spam from a persistently failing dependency.
func (n *Notifier) AlertError(err error, source string) {
	if n.webhookURL == "" || err == nil {
		return
	}

	hash := fmt.Sprintf("%x", md5.Sum([]byte(source+err.Error())))

	n.mu.Lock()
	if last, ok := n.alertedErrors[hash]; ok && time.Since(last) < alertCooldown {
		n.mu.Unlock()
		return
	}
	n.alertedErrors[hash] = time.Now()
	n.mu.Unlock()

	// Posting must never block or fail the caller's dispatch
	go func() {
		msg := &slack.WebhookMessage{
			Text: fmt.Sprintf("🚨 *%s* (%s)\nSource: %s\nError: `%v`",
				n.appName, n.environment, source, err),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if postErr := slack.PostWebhookContext(ctx, n.webhookURL, msg); postErr != nil {
			log.Printf("❌ Failed to post alert to Slack: %v", postErr)
		}
	}()
}
