package progress

const (
	NoticeSuccess     = "success"
	NoticeDestructive = "destructive"
)

type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

// CertificateEnabled reports whether the download action is live. Only an exact
// 100 unlocks it.
func CertificateEnabled(pct int) bool {
	return pct == 100
}

// Certificate evaluates the download action locally. No artifact is generated.
func Certificate(pct int) (Notice, bool) {
	if !CertificateEnabled(pct) {
		return Notice{
			Title:       "Cannot Download Certificate",
			Description: "Complete all modules to unlock your certificate.",
			Variant:     NoticeDestructive,
		}, false
	}

	return Notice{
		Title:       "Certificate Downloaded",
		Description: "Your course certificate has been downloaded.",
		Variant:     NoticeSuccess,
	}, true
}
