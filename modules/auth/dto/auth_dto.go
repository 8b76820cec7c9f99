package dto

type RegisterClubRequest struct {
	ClubName          string `json:"clubName"`
	CollegeName       string `json:"collegeName"`
	ClubEmail         string `json:"clubEmail"`
	AdminName         string `json:"adminName"`
	AdminEmail        string `json:"adminEmail"`
	Password          string `json:"password"`
	AcademicYearLabel string `json:"academicYearLabel"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionRequest struct {
	Token string `json:"token"`
}

type CompleteClubRequest struct {
	ClubName          string `json:"clubName"`
	CollegeName       string `json:"collegeName"`
	ClubEmail         string `json:"clubEmail"`
	AcademicYearLabel string `json:"academicYearLabel"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ClubResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AuthResponse struct {
	Token string        `json:"token"`
	User  UserResponse  `json:"user"`
	Club  *ClubResponse `json:"club,omitempty"`
}

type SessionResponse struct {
	Redirect string `json:"redirect"`
}

type MeResponse struct {
	User         UserResponse `json:"user"`
	Club         ClubResponse `json:"club"`
	AcademicYear struct {
		YearLabel string `json:"yearLabel"`
	} `json:"academicYear"`
	Role string `json:"role"`
}
