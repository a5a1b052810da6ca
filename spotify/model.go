package spotify

// Response is the normalized payload. Track fields are null when nothing
// has been played.
type Response struct {
	IsPlaying   bool    `json:"isPlaying"`
	Track       *string `json:"track"`
	Artist      *string `json:"artist"`
	Album       *string `json:"album"`
	AlbumArt    *string `json:"albumArt"`
	URL         *string `json:"url"`
	URI         *string `json:"uri"`
	ProgressMs  *int    `json:"progressMs"`
	DurationMs  *int    `json:"durationMs"`
	LastUpdated string  `json:"lastUpdated"`
	Error       string  `json:"error,omitempty"`
}
