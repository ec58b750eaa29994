package domain

// Video is the public view of an uploaded video.
type Video struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags,omitempty"`
	ThumbnailPath string   `json:"thumbnailPath,omitempty"`
	VideoPath     string   `json:"videoPath,omitempty"`
	Username      string   `json:"username,omitempty"`
	UserID        int      `json:"userId,omitempty"`
	LikeCount     int      `json:"likeCount,omitempty"`
	CommentCount  int      `json:"commentCount,omitempty"`
	ViewCount     int      `json:"viewCount,omitempty"`
	Location      string   `json:"location,omitempty"`
	CreatedAt     string   `json:"createdAt,omitempty"`
}

// Comment is one public comment on a video.
type Comment struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	UserID    int    `json:"userId"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
}

// UserProfile is the public view of a registered user.
type UserProfile struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	CreatedAt string `json:"createdAt"`
}

// PopularVideo is one entry of the periodically computed popularity block.
type PopularVideo struct {
	VideoID       int     `json:"videoId"`
	Title         string  `json:"title"`
	ThumbnailPath *string `json:"thumbnailPath"`
	Score         float64 `json:"score"`
}

// PopularBlock is the latest popularity computation run.
type PopularBlock struct {
	RunAt string         `json:"runAt"`
	Top3  []PopularVideo `json:"top3"`
}
