package common

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "auth-token"

// AudioCategories lists the tags an audio file may carry.
var AudioCategories = []string{
	"interview",
	"briefing",
	"radio-traffic",
	"surveillance",
	"evidence",
	"training",
	"emergency-call",
}

// IsAudioCategory reports whether tag is one of AudioCategories.
func IsAudioCategory(tag string) bool {
	for _, c := range AudioCategories {
		if c == tag {
			return true
		}
	}
	return false
}
