package lokalku

import "strings"

// Message is one conversational turn. Messages are created by
// [Store.Append] and are immutable afterwards.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp int64 // epoch milliseconds
}

// HistoryLine formats the message as "<Label>: <content>".
func (m Message) HistoryLine() string {
	return m.Role.Label() + ": " + m.Content
}

// ParseHistoryLine splits a line produced by HistoryLine back into role
// and content. Lines without a known label are treated as user text.
func ParseHistoryLine(line string) (Role, string) {
	if rest, ok := strings.CutPrefix(line, RoleAssistant.Label()+": "); ok {
		return RoleAssistant, rest
	}
	if rest, ok := strings.CutPrefix(line, RoleUser.Label()+": "); ok {
		return RoleUser, rest
	}
	return RoleUser, line
}
