package domain

// User is the console's view of an upstream user record.
type User struct {
	ID         string   `json:"id"`
	UserName   string   `json:"userName"`
	Email      string   `json:"email"`
	NationalID string   `json:"nationalId"`
	Roles      []string `json:"roles"`
}

// Role is an assignable upstream role. ID is what the assignment endpoint
// wants; Name is what filtering and display use.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Stats are the dashboard counters.
type Stats struct {
	TotalUsers int `json:"totalUsers"`
	Doctors    int `json:"doctors"`
	Patients   int `json:"patients"`
}

// CreateUserInput carries the create-user form fields.
type CreateUserInput struct {
	UserName        string
	Email           string
	Password        string
	ConfirmPassword string
	NationalID      string
	Roles           []string
	PhotoName       string
	Photo           []byte
}
