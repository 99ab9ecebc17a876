package model

import "time"

// Roles a user can hold.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Difficulty levels a learner can prefer.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// ValidLevel reports whether s is a known learner difficulty level.
func ValidLevel(s string) bool {
	switch s {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Profile is the free-form part of a user's account.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar"`
	Bio       string `json:"bio"`
}

// Preferences drive personalization.
type Preferences struct {
	FavoriteTopics  []string `json:"favoriteTopics"`
	DifficultyLevel string   `json:"difficultyLevel"`
}

// UserStats is the running aggregate updated on every completed quiz.
type UserStats struct {
	TotalQuizzesTaken int      `json:"totalQuizzesTaken"`
	TotalScore        int      `json:"totalScore"`
	AverageScore      float64  `json:"averageScore"`
	TopicsStudied     []string `json:"topicsStudied"`
}

// Goal is a user-defined or default learning goal.
type Goal struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Type      string     `json:"type"`
	Target    float64    `json:"target"`
	Current   float64    `json:"current"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Status    string     `json:"status"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// User is an account on the platform. PasswordHash never leaves the service layer.
type User struct {
	ID            string      `json:"id"`
	Username      string      `json:"username"`
	Email         string      `json:"email"`
	PasswordHash  string      `json:"-"`
	Profile       Profile     `json:"profile"`
	Preferences   Preferences `json:"preferences"`
	Stats         UserStats   `json:"stats"`
	Role          string      `json:"role"`
	LearningGoals []Goal      `json:"learningGoals,omitempty"`
	LastLogin     *time.Time  `json:"lastLogin,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// PublicUser is the response shape for a user.
type PublicUser struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Profile     Profile     `json:"profile"`
	Preferences Preferences `json:"preferences"`
	Stats       UserStats   `json:"stats"`
	Role        string      `json:"role"`
}

// Public strips credentials and bookkeeping fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Profile:     u.Profile,
		Preferences: u.Preferences,
		Stats:       u.Stats,
		Role:        u.Role,
	}
}
