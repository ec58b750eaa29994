package domain

// StreamChatMessage is one message in a video's live chat. The server echoes
// sent messages back on the stream topic, so the local list is fed entirely
// by inbound traffic.
type StreamChatMessage struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}
