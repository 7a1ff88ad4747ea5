package notifications

import (
	"strings"

	"github.com/pulsefeed/backend/internal/models"
)

// template is the fixed per-type rendering recipe. Message supports the
// {sender} and {content} placeholders.
type template struct {
	Title   string
	Message string
	Icon    string
}

var templates = map[string]template{
	models.NotificationTypeLike: {
		Title:   "New Like",
		Message: "{sender} liked your post",
		Icon:    "❤️",
	},
	models.NotificationTypeComment: {
		Title:   "New Comment",
		Message: "{sender} commented on your post",
		Icon:    "💬",
	},
	models.NotificationTypeReply: {
		Title:   "Reply to Comment",
		Message: "{sender} replied to your comment",
		Icon:    "↪️",
	},
	models.NotificationTypeFollow: {
		Title:   "New Follower",
		Message: "{sender} started following you",
		Icon:    "👤",
	},
	models.NotificationTypeMention: {
		Title:   "Mention",
		Message: "{sender} mentioned you in a post",
		Icon:    "@",
	},
	models.NotificationTypeShare: {
		Title:   "Post Shared",
		Message: "{sender} shared your post",
		Icon:    "🔄",
	},
	models.NotificationTypeSystem: {
		Title:   "System Notification",
		Message: "{content}",
		Icon:    "🔔",
	},
}

// templateFor returns the template for the type, falling back to the system
// template for anything unknown.
func templateFor(notificationType string) template {
	if tpl, ok := templates[notificationType]; ok {
		return tpl
	}
	return templates[models.NotificationTypeSystem]
}

// render interpolates the template message. The rendered string is persisted
// with the notification so it never changes after the fact.
func (t template) render(senderName, content string) string {
	if senderName == "" {
		senderName = "Someone"
	}
	return strings.NewReplacer(
		"{sender}", senderName,
		"{content}", content,
	).Replace(t.Message)
}
