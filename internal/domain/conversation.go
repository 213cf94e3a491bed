package domain

// Message is one turn in a session's timeline (user, assistant or system).
// A session is nothing more than the set of messages sharing a
// SessionID; its history is owned by the SessionMemory store and is
// capacity-bounded, oldest evicted first.
type Message struct {
	ID        MessageID
	SessionID SessionID
	Role      Role
	Content   string
	CreatedAt Timestamp
}
