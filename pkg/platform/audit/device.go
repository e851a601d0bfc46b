package audit

import (
	"github.com/mssola/useragent"
)

// DeviceSummary condenses a User-Agent header into a short label for the
// activity feed. Unknown agents yield an empty summary.
func DeviceSummary(uaHeader string) string {
	if uaHeader == "" {
		return ""
	}
	ua := useragent.New(uaHeader)
	browser, _ := ua.Browser()
	os := ua.OSInfo().Name
	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	case os != "":
		return os
	default:
		return ""
	}
}
