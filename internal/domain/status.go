package domain

// AuthorizationStatus is the plugin's location permission state.
type AuthorizationStatus int

const (
	NotAuthorized AuthorizationStatus = iota
	Authorized
	AuthorizedForeground
)

func (s AuthorizationStatus) String() string {
	switch s {
	case NotAuthorized:
		return "NOT_AUTHORIZED"
	case Authorized:
		return "AUTHORIZED"
	case AuthorizedForeground:
		return "AUTHORIZED_FOREGROUND"
	default:
		return "UNKNOWN"
	}
}

// ServiceStatus is a snapshot of the plugin service.
type ServiceStatus struct {
	IsRunning               bool                `json:"isRunning"`
	LocationServicesEnabled bool                `json:"locationServicesEnabled"`
	Authorization           AuthorizationStatus `json:"authorization"`
}
