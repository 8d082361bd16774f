package auth

// ValidationError reports a rejected username or password with the specific
// reason, so the UI can tell the user what to fix.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Reason }

func isAlnum(c byte) bool {
	return '0' <= c && c <= '9' || 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z'
}

// ValidateUsername accepts 1 to 16 characters from [0-9A-Za-z].
func ValidateUsername(username string) error {
	if username == "" {
		return &ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if len(username) > 16 {
		return &ValidationError{Field: "username", Reason: "must be at most 16 characters"}
	}
	for i := 0; i < len(username); i++ {
		if !isAlnum(username[i]) {
			return &ValidationError{Field: "username", Reason: "only letters and digits are allowed"}
		}
	}
	return nil
}

// ValidatePassword accepts 8 to 16 characters from [0-9A-Za-z] containing at
// least one digit, one lowercase, and one uppercase letter.
func ValidatePassword(password string) error {
	if len(password) < 8 || len(password) > 16 {
		return &ValidationError{Field: "password", Reason: "must be 8 to 16 characters"}
	}
	var digits, lower, upper int
	for i := 0; i < len(password); i++ {
		switch c := password[i]; {
		case '0' <= c && c <= '9':
			digits++
		case 'a' <= c && c <= 'z':
			lower++
		case 'A' <= c && c <= 'Z':
			upper++
		default:
			return &ValidationError{Field: "password", Reason: "only letters and digits are allowed"}
		}
	}
	if digits == 0 || lower == 0 || upper == 0 {
		return &ValidationError{Field: "password", Reason: "needs at least one digit, one lowercase, and one uppercase letter"}
	}
	return nil
}
