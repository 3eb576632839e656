package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Info is the parsed device metadata attached to login audit logs.
type Info struct {
	Browser  string
	OS       string
	Platform string
}

// Parse extracts browser, OS, and platform from a User-Agent header.
// Unknown or empty agents yield "unknown" fields rather than an error.
func Parse(userAgentString string) Info {
	info := Info{Browser: "unknown", OS: "unknown", Platform: "desktop"}
	if userAgentString == "" {
		return info
	}

	ua := useragent.New(userAgentString)
	if browser, _ := ua.Browser(); browser != "" {
		info.Browser = strings.ToLower(strings.TrimSpace(browser))
	}
	if os := ua.OS(); os != "" {
		info.OS = strings.ToLower(strings.TrimSpace(os))
	}
	if ua.Mobile() {
		info.Platform = "mobile"
	}
	return info
}
