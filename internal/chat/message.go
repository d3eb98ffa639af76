package chat

import (
	"strings"
	"time"

	"github.com/rs/xid"
)

// Tag categorizes a routed message for the audit log.
type Tag string

const (
	TagGameMessages Tag = "GameMessages"
	TagModeration   Tag = "Moderation"
	TagHelloUser    Tag = "HelloUser"
	TagGoodbyeUser  Tag = "GoodbyeUser"
	TagUserChats    Tag = "UserChats"
	TagServer       Tag = "Server"
)

// Message is an immutable chat record produced by the router at append time.
type Message struct {
	ID   string
	Body string
	Tag  Tag
	Time time.Time
}

func newMessage(body string) Message {
	return Message{
		ID:   xid.New().String(),
		Body: body,
		Tag:  Classify(body),
		Time: time.Now(),
	}
}

// gamePrefixes are evaluated first; any match classifies the line as game traffic.
var gamePrefixes = []string{
	"GAME:",
	"QUESTION:",
	"CORRECT!",
	"TIME'S UP!",
	"CAPITAL GAME STARTED!",
	"GAME OVER!",
	"CURRENT SCORES:",
}

// Classify derives the audit tag for a message body. Rules are evaluated in
// priority order: game banners, admin removals, join/leave announcements,
// ordinary user chat (any line carrying a sender delimiter), and everything
// else as plain server output.
func Classify(body string) Tag {
	for _, p := range gamePrefixes {
		if strings.HasPrefix(body, p) {
			return TagGameMessages
		}
	}

	if strings.HasPrefix(body, "SERVER: ") && strings.Contains(body, "has been removed by an admin") {
		return TagModeration
	}

	switch {
	case isJoinAnnouncement(body):
		return TagHelloUser
	case isLeaveAnnouncement(body):
		return TagGoodbyeUser
	case strings.Contains(body, ":"):
		return TagUserChats
	default:
		return TagServer
	}
}

func isJoinAnnouncement(body string) bool {
	return strings.HasPrefix(body, "SERVER: ") && strings.Contains(body, "has joined the chat")
}

func isLeaveAnnouncement(body string) bool {
	return strings.HasPrefix(body, "SERVER: ") && strings.Contains(body, "has left the chat")
}

func isPresenceAnnouncement(body string) bool {
	return isJoinAnnouncement(body) || isLeaveAnnouncement(body)
}
