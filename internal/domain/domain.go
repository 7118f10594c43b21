package domain

// Role tags the origin of a chat message. The set is closed: inference
// backends reject requests with roles outside of it.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one entry of an ordered chat-completion request. The system
// message must come first because many backends treat it specially.
type Message struct {
	Role    Role
	Content string
}

// Result is the tagged outcome of one summarization attempt. Exactly one of
// Summary and Err is meaningful.
type Result struct {
	URL     string
	Summary string
	Err     error
}

func (r Result) Failed() bool {
	return r.Err != nil
}
