package constant

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	// GenerationFailureMessage is the canned turn shown when the
	// generation backend cannot be reached or returns a bad response.
	GenerationFailureMessage = "Sorry, something went wrong while preparing your response. Please try again in a moment."
)
