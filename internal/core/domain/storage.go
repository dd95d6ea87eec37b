package domain

// Durable storage keys shared with the web front end.
const (
	StorageKeyAuthToken = "autox_auth_token"
	StorageKeyUserData  = "autox_user_data"
	// StorageKeyTheme is reserved for the UI theme and unused here.
	StorageKeyTheme = "autox_theme"
)
