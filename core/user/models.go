package user

// Roles mirror the backend's role enum.
const (
	RoleEmployee  = "EMPLOYEE"
	RoleMentor    = "MENTOR"
	RoleTeamLead  = "TEAM_LEAD"
	RoleAdmin     = "ADMIN"
	RoleLDManager = "LD_MANAGER"
)

// ReviewerRoles may accept a report or send it back for revision.
var ReviewerRoles = []string{RoleMentor, RoleTeamLead, RoleAdmin}

type User struct {
	ID           int    `json:"id"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	DepartmentID *int   `json:"department_id"`
}

// CanReviewReports reports whether the user may issue mentor decisions.
func (u User) CanReviewReports() bool {
	for _, role := range ReviewerRoles {
		if u.Role == role {
			return true
		}
	}
	return false
}
