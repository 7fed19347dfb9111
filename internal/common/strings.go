package common

// ElideString returns a version of s with the middle removed, so secrets
// can be identified in logs without being revealed.
func ElideString(s string) string {
	const chunkSize = 3

	// Too short to elide safely.
	if len(s) < 9 {
		return "***"
	}

	return s[:chunkSize] + "..." + s[len(s)-chunkSize:]
}
