package session

type UserProfile struct {
	ID                 string   `json:"id"`
	Username           string   `json:"username"`
	Name               string   `json:"name,omitempty"`
	Email              string   `json:"email,omitempty"`
	Roles              []string `json:"roles"`
	MustChangePassword bool     `json:"mustChangePassword,omitempty"`
}

// State is the persisted session snapshot: what the browser app kept under
// its three local-storage keys.
type State struct {
	AccessToken  string
	RefreshToken string
	User         *UserProfile
}

// LoginResult is the /auth/login response payload.
type LoginResult struct {
	AccessToken        string       `json:"accessToken"`
	RefreshToken       string       `json:"refreshToken"`
	MustChangePassword bool         `json:"mustChangePassword"`
	User               *UserProfile `json:"user"`
}

type Phase int

const (
	PhaseAnonymous Phase = iota
	PhaseAuthenticating
	PhaseAuthenticated
	PhaseExpired
)

func (p Phase) String() string {
	switch p {
	case PhaseAnonymous:
		return "anonymous"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseExpired:
		return "expired"
	default:
		return "unknown"
	}
}
