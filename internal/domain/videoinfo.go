package domain

// VideoInfo is the ephemeral result of a metadata lookup. It is produced
// fresh per request and never persisted; the client echoes CleanURL back in
// the subsequent download request.
type VideoInfo struct {
	Title        string   `json:"title"`
	Uploader     string   `json:"uploader"`
	Duration     string   `json:"duration"`
	ViewCount    int64    `json:"view_count"`
	Thumbnail    string   `json:"thumbnail"`
	VideoFormats []string `json:"video_formats"`
	CleanURL     string   `json:"clean_url"`
}
