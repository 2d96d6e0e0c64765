package ytlink

//////////////////////////////////////////////////

func isIDRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || r == '-' || r == '_'
}

func isIDString(s string, min, max int) bool {
	n := len(s)
	if n < min || n > max {
		return false
	}

	for _, r := range s {
		if !isIDRune(r) {
			return false
		}
	}

	return true
}

func IsValidVideoID(s string) bool {
	return isIDString(s, 6, 48)
}

func IsValidChannelID(s string) bool {
	return isIDString(s, 6, 64)
}

func IsValidPlaylistID(s string) bool {
	return isIDString(s, 2, 64)
}

// IsValidHandle checks an "@name" channel handle.
func IsValidHandle(s string) bool {
	if len(s) < 4 || len(s) > 31 || s[0] != '@' {
		return false
	}

	for _, r := range s[1:] {
		if !isIDRune(r) && r != '.' {
			return false
		}
	}

	return true
}
