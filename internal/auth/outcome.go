package auth

// Paths the controller navigates to.
const (
	PathLanding  = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
)

// Views the controller renders.
const (
	ViewHome     = "home"
	ViewLogin    = "login"
	ViewRegister = "register"
)

// Level indicates how a notice should be presented.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

// Notice is a message for the user.
type Notice struct {
	Level   Level
	Message string
}

// IsZero reports whether there is no notice.
func (n Notice) IsZero() bool {
	return n.Message == ""
}

var (
	noticeValidation = Notice{
		Level:   LevelWarning,
		Message: "Please fill in a valid email address and password.",
	}
	noticeDuplicateEmail = Notice{
		Level:   LevelDanger,
		Message: "An account with this email address already exists.",
	}
	noticeUnavailable = Notice{
		Level:   LevelDanger,
		Message: "The service is temporarily unavailable, please try again later.",
	}
	noticeInvalidCredentials = Notice{
		Level:   LevelDanger,
		Message: "Invalid email address or password.",
	}
	noticeRegistered = Notice{
		Level:   LevelSuccess,
		Message: "Registration successful, you can now log in.",
	}
	noticeLoggedIn = Notice{
		Level:   LevelSuccess,
		Message: "You are now logged in.",
	}
	noticeLoggedOut = Notice{
		Level:   LevelInfo,
		Message: "You have been logged out.",
	}
)

// Outcome is the result of a Controller operation. It either redirects
// to another path, or renders a view.
//
// When redirecting, Notice should be shown on the next rendered page. When
// rendering a view, Notice is shown directly and Email holds the address
// to display or re-display in a form.
type Outcome struct {
	Redirect string
	View     string
	Notice   Notice
	Email    string
}

// IsRedirect reports whether the outcome is a redirect.
func (o Outcome) IsRedirect() bool {
	return o.Redirect != ""
}

func redirect(path string, n Notice) Outcome {
	return Outcome{
		Redirect: path,
		Notice:   n,
	}
}

func (o Outcome) with(n Notice) Outcome {
	o.Notice = n
	return o
}
