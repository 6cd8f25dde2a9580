package chat

// Sender identifies who a message belongs to.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Language is the selector value shown in the widget.
type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageIndonesian Language = "id"
)

// Valid reports whether l is a known selector value.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageIndonesian
}

// Display names used in message headers.
const (
	BotName  = "Knowledge Assistant"
	UserName = "You"
)

// LoadingText is shown while a question is being processed.
const LoadingText = "Processing your question..."

// Fallback replies appended when the service could not answer.
const (
	ServiceErrorText = "Sorry, I encountered an error processing your request. Please try again."
	NetworkErrorText = "Sorry, I couldn't connect to the server. Please make sure the backend is running."
)

// Block is one rendered text block of a message.
type Block struct {
	Text     string   `json:"text"`
	Language Language `json:"language,omitempty"`
}

// Message is a single entry of the chat transcript.
type Message struct {
	ID      string  `json:"id"`
	Sender  Sender  `json:"sender"`
	Name    string  `json:"name"`
	Blocks  []Block `json:"blocks"`
	Loading bool    `json:"loading,omitempty"`
}

// EventKind says what happened to the transcript.
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventRemoved EventKind = "removed"
)

// Event is delivered to transcript observers.
type Event struct {
	Kind    EventKind `json:"type"`
	Message Message   `json:"message"`
}
