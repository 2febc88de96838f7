package conversation

import "time"

// MaxTurns caps the rolling turn window kept per session. Oracles see at
// most this many turns; classification history is never truncated.
const MaxTurns = 10

type Turn struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// ClassificationSummary is the compact record of one full classification,
// enough to synthesize replies on follow-up turns without re-classifying.
type ClassificationSummary struct {
	Clase       string `json:"clase"`
	RequestType string `json:"tipo_solicitud"`
	Topic       string `json:"tema_principal"`
}

// UserInfo holds requester details accumulated opportunistically across
// turns. Fields fill in as the citizen mentions them; they are never
// cleared by a later turn that omits them.
type UserInfo struct {
	Name         string `json:"nombre"`
	Phone        string `json:"telefono"`
	IDDocument   string `json:"cedula"`
	Neighborhood string `json:"barrio"`
}

// Context is the per-session conversation state threaded through the intake
// pipeline. It is read and mutated by the router and persisted through a
// Store between turns.
type Context struct {
	SessionID       string                  `json:"session_id"`
	Turns           []Turn                  `json:"turns"`
	History         []ClassificationSummary `json:"classification_history"`
	CurrentTopic    string                  `json:"current_topic"`
	CurrentRadicado string                  `json:"current_radicado"`
	User            UserInfo                `json:"user_info"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

func NewContext(sessionID string) *Context {
	return &Context{SessionID: sessionID, UpdatedAt: time.Now().UTC()}
}

// AddTurn appends a turn and drops the oldest past MaxTurns.
func (c *Context) AddTurn(role, text string) {
	c.Turns = append(c.Turns, Turn{Role: role, Text: text, At: time.Now().UTC()})
	if n := len(c.Turns) - MaxTurns; n > 0 {
		c.Turns = c.Turns[n:]
	}
	c.UpdatedAt = time.Now().UTC()
}

// AddClassification appends to the full-classification history and updates
// the current topic when the summary names one.
func (c *Context) AddClassification(sum ClassificationSummary) {
	c.History = append(c.History, sum)
	if sum.Topic != "" {
		c.CurrentTopic = sum.Topic
	}
	c.UpdatedAt = time.Now().UTC()
}

// LastClassification returns the most recent summary, if any.
func (c *Context) LastClassification() (ClassificationSummary, bool) {
	if len(c.History) == 0 {
		return ClassificationSummary{}, false
	}
	return c.History[len(c.History)-1], true
}

// AbsorbUserInfo merges non-empty requester fields into the context,
// never overwriting a known value with an empty one.
func (c *Context) AbsorbUserInfo(info UserInfo) {
	if info.Name != "" {
		c.User.Name = info.Name
	}
	if info.Phone != "" {
		c.User.Phone = info.Phone
	}
	if info.IDDocument != "" {
		c.User.IDDocument = info.IDDocument
	}
	if info.Neighborhood != "" {
		c.User.Neighborhood = info.Neighborhood
	}
}

// clone returns a deep copy so store implementations can hand out contexts
// without sharing slice backing arrays.
func (c *Context) clone() *Context {
	cp := *c
	cp.Turns = append([]Turn(nil), c.Turns...)
	cp.History = append([]ClassificationSummary(nil), c.History...)
	return &cp
}
