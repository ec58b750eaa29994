package domain

// RoomMember identifies one participant in a watch-party room. Email may be
// absent while the server is still populating the member list.
type RoomMember struct {
	UserID   int     `json:"userId"`
	Username string  `json:"username"`
	Email    *string `json:"email"`
}

// RoomState is the authoritative server view of one room at a point in time.
// A newer state replaces the previous one wholesale, never merged.
type RoomState struct {
	RoomID         string       `json:"roomId"`
	HostUserID     int          `json:"hostUserId"`
	HostUsername   string       `json:"hostUsername"`
	Members        []RoomMember `json:"members"`
	VideoIDs       []int        `json:"videoIds"`
	CurrentVideoID *int         `json:"currentVideoId"`
}

// EventVideoStarted is pushed when the host starts synchronized playback.
const EventVideoStarted = "VIDEO_STARTED"

// RoomEvent is a one-shot notification, not part of the durable room state.
// The transport may redeliver events after a reconnect, so consumers must
// treat (RoomID, EventID) as the identity of an event.
type RoomEvent struct {
	Type    string `json:"type"`
	RoomID  string `json:"roomId"`
	VideoID int    `json:"videoId"`
	EventID string `json:"eventId"`
}

// PublicRoom is the listing view of a room.
type PublicRoom struct {
	RoomID       string `json:"roomId"`
	HostUserID   int    `json:"hostUserId"`
	HostUsername string `json:"hostUsername"`
	IsPublic     bool   `json:"isPublic"`
	MemberCount  int    `json:"memberCount"`
	VideoCount   int    `json:"videoCount"`
}

// RoomDetails extends the listing view with the queue contents.
type RoomDetails struct {
	PublicRoom
	VideoIDs       []int `json:"videoIds"`
	CurrentVideoID *int  `json:"currentVideoId"`
}
