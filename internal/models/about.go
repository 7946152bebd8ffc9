package models

// About is the singleton profile shown on the landing page
type About struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Skills         []string `json:"skills"`
	ProfilePicture string   `json:"profilePicture"`
}
