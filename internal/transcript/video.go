package transcript

import "regexp"

var (
	reVideoID = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)
	reBareID  = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
)

// ExtractVideoID returns the 11 character YouTube id in ref, which may
// be a watch URL, a short link, an embed URL or the bare id.
func ExtractVideoID(ref string) (string, bool) {
	if reBareID.MatchString(ref) {
		return ref, true
	}
	if m := reVideoID.FindStringSubmatch(ref); m != nil {
		return m[1], true
	}
	return "", false
}

// WatchURL builds the canonical watch URL for id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
