package daverr

import "net/http"

const (
	StatusMultiStatus         = 207
	StatusUnprocessableEntity = 422
	StatusLocked              = 423
	StatusFailedDependency    = 424
	StatusInsufficientStorage = 507
)

var davStatusText = map[int]string{
	102:                       "Processing",
	StatusMultiStatus:         "Multi-Status",
	StatusUnprocessableEntity: "Unprocessable Entity",
	StatusLocked:              "Locked",
	StatusFailedDependency:    "Failed Dependency",
	StatusInsufficientStorage: "Insufficient Storage",
}

// StatusText returns the reason phrase of code, WebDAV extension codes included.
func StatusText(code int) string {
	if txt, ok := davStatusText[code]; ok {
		return txt
	}
	if txt := http.StatusText(code); len(txt) > 0 {
		return txt
	}
	return "Unknown Status"
}
