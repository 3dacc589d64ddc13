package user

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/olety/Diplomatool/core"
)

// Groups
const (
	GroupStudent    = "Student"
	GroupSupervisor = "Supervisor"
	GroupReviewer   = "Reviewer"
)

var AllGroups = []string{GroupReviewer, GroupStudent, GroupSupervisor} // sorted

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Degree       string    `json:"degree"`
	Department   string    `json:"department"`
	FacultyID    string    `json:"faculty_id"`
	Groups       []string  `json:"groups"`
	IsAdmin      bool      `json:"is_admin"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) ShortName() string {
	return u.FirstName
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) InGroup(group string) bool {
	for _, g := range u.Groups {
		if g == group {
			return true
		}
	}
	return false
}

func (u User) IsStudent() bool    { return u.InGroup(GroupStudent) }
func (u User) IsSupervisor() bool { return u.InGroup(GroupSupervisor) }
func (u User) IsReviewer() bool   { return u.InGroup(GroupReviewer) }

// CanAccess reports whether usr may use a page restricted to group.
// Admins may use every page.
func CanAccess(usr User, group string) bool {
	return usr.IsAdmin || usr.InGroup(group)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email           string   `json:"email" validate:"required,email"`
	FirstName       string   `json:"first_name" validate:"required,max=150"`
	LastName        string   `json:"last_name" validate:"required,max=150"`
	Degree          string   `json:"degree" validate:"omitempty,max=50"`
	Department      string   `json:"department" validate:"omitempty,max=4,alphanum_"`
	FacultyID       string   `json:"faculty" validate:"omitempty,uuid"`
	Groups          []string `json:"groups" validate:"omitempty,allgroups"`
	IsAdmin         bool     `json:"is_admin"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Degree = core.CleanString(nu.Degree)
	nu.Department = core.CleanString(nu.Department)
	nu.FacultyID = core.CleanString(nu.FacultyID)
	nu.Groups = cleanGroups(nu.Groups)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, nu.Email)
}

type ResetPasswordRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

func (rr *ResetPasswordRequest) Validate(validate *validator.Validate) error {
	rr.Email = core.CleanString(rr.Email, true /* lower */)
	return validate.Struct(rr)
}

type ResetUserPassword struct {
	Token           string `json:"token" form:"token" validate:"required"`
	UID             string `json:"uid" form:"uid" validate:"required"`
	Password        string `json:"password" form:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

// GetFilter selects a single User; the first non-empty field is used.
type GetFilter struct {
	ID    string
	Email string
}

type QueryFilter struct {
	Group    string
	IsActive *bool
}

func cleanGroups(groups []string) []string {
	if len(groups) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(groups))
	cleaned := make([]string, 0, len(groups))
	for _, g := range groups {
		g = core.CleanString(g)
		if g == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		cleaned = append(cleaned, g)
	}
	sort.Strings(cleaned)
	return cleaned
}
