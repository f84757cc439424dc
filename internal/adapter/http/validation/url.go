package validation

import "regexp"

// videoIDPatterns extract the 11-character video id from the URL shapes
// users paste (watch links, short links, embeds).
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:watch\?v=)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:embed/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`),
}

var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(https?://)?(www\.)?(youtube|youtu|youtube-nocookie)\.(com|be)/`),
	regexp.MustCompile(`(https?://)?(m\.)?youtube\.com/`),
}

// IsVideoURL reports whether the URL points at a supported video site.
func IsVideoURL(url string) bool {
	for _, p := range youtubePatterns {
		if p.MatchString(url) {
			return true
		}
	}
	return false
}

// CanonicalURL reduces a video URL to its canonical watch form, stripping
// playlist parameters, tracking junk, and mobile prefixes. URLs whose video
// id cannot be extracted are returned unchanged and left to the engine.
func CanonicalURL(url string) string {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return "https://www.youtube.com/watch?v=" + m[1]
		}
	}
	return url
}
