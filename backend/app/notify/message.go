// Package notify delivers best-effort ticket notifications.
//
// Producers hand a Message to an Outbox, which enqueues it and returns at
// once. A Dispatcher drains the queue in the background and forwards each
// message to a Sink. Delivery is at-most-once: failures are logged, counted
// and recorded, never retried and never reported back to the producer.
package notify

import (
	"fmt"
	"strings"

	"bugtracker/backend/app/models"
)

const (
	EventBugCreated = "bug.created"
	EventBugUpdated = "bug.updated"
)

type Message struct {
	ID    string `json:"id"`
	Event string `json:"event"`
	BugID uint   `json:"bug_id"`
	Text  string `json:"text"`
}

var headers = map[string]string{
	EventBugCreated: "New bug ticket created:",
	EventBugUpdated: "Bug ticket updated:",
}

// BugMessage summarises b as Telegram MarkdownV2 text.
func BugMessage(event string, b *models.Bug) Message {
	header, ok := headers[event]
	if !ok {
		header = event
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*\n", EscapeMarkdown(header))
	fmt.Fprintf(&sb, "Title: %s\n", EscapeMarkdown(b.Title))
	fmt.Fprintf(&sb, "Description: %s\n", EscapeMarkdown(b.Description))
	fmt.Fprintf(&sb, "Severity: %s\n", EscapeMarkdown(b.Severity))
	fmt.Fprintf(&sb, "Status: %s\n", EscapeMarkdown(b.Status))
	fmt.Fprintf(&sb, "Created by: %d\n", b.CreatedBy)
	fmt.Fprintf(&sb, "Project ID: %d", b.ProjectID)
	return Message{Event: event, BugID: b.ID, Text: sb.String()}
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"_", `\_`, "*", `\*`, "[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`,
	"~", `\~`, "`", "\\`", ">", `\>`, "#", `\#`, "+", `\+`, "-", `\-`,
	"=", `\=`, "|", `\|`, "{", `\{`, "}", `\}`, ".", `\.`, "!", `\!`,
)

// EscapeMarkdown escapes the characters reserved by Telegram MarkdownV2.
func EscapeMarkdown(s string) string { return markdownEscaper.Replace(s) }
