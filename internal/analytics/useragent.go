package analytics

import "strings"

// DeviceType classifies a user agent as tablet, mobile or desktop.
func DeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, marker := range []string{"tablet", "ipad", "playbook", "silk"} {
		if strings.Contains(ua, marker) {
			return "tablet"
		}
	}
	for _, marker := range []string{"mobile", "iphone", "ipod", "android", "blackberry", "opera mini", "iemobile"} {
		if strings.Contains(ua, marker) {
			return "mobile"
		}
	}
	return "desktop"
}

// Browser extracts the browser family from a user agent. The order
// matters: Edge and Chrome both carry "Chrome", Chrome carries "Safari".
func Browser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "edg"):
		return "Edge"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "safari"):
		return "Safari"
	case strings.Contains(ua, "opera"), strings.Contains(ua, "opr"):
		return "Opera"
	case strings.Contains(ua, "msie"), strings.Contains(ua, "trident"):
		return "IE"
	default:
		return "Other"
	}
}

// OS extracts the operating system family from a user agent.
func OS(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ipod"):
		return "iOS"
	case strings.Contains(ua, "macintosh"), strings.Contains(ua, "mac os"):
		return "macOS"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		return "Other"
	}
}
