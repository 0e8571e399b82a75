package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/baraza/core"
)

// Roles
const (
	RoleStudent = "STUDENT"
	RoleTeacher = "TEACHER"
	RoleAdmin   = "ADMIN"
)

// Membership statuses
const (
	MembershipPending  = "pending"
	MembershipApproved = "approved"
	MembershipRejected = "rejected"
)

var (
	AllRoles = []string{RoleStudent, RoleTeacher, RoleAdmin}

	AllMembershipStatuses = []string{MembershipPending, MembershipApproved, MembershipRejected}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Administrator", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID               int       `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	PhotoURL         string    `json:"photoURL"`
	Role             string    `json:"role"`
	MembershipStatus string    `json:"membershipStatus"`
	Institute        string    `json:"institute"`
	Course           string    `json:"course"`
	Bio              string    `json:"bio"`
	ParasStones      int       `json:"parasStones"`
	Coins            int       `json:"coins"`
	IsActive         bool      `json:"is_active"`
	PasswordHash     []byte    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"` // UTC
	UpdatedAt        time.Time `json:"-"`         // UTC
	LastLogin        time.Time `json:"-"`         // UTC
}

func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// PublicInfo is the public projection of a User nested in content responses.
type PublicInfo struct {
	UID         int    `json:"uid"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	Institute   string `json:"institute"`
	Bio         string `json:"bio"`
}

func (u User) Public() PublicInfo {
	return PublicInfo{
		UID:         u.ID,
		DisplayName: u.DisplayName(),
		PhotoURL:    u.PhotoURL,
		Institute:   u.Institute,
		Bio:         u.Bio,
	}
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"omitempty,min=6,alphanum_"`
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	PhotoURL        string `json:"photoURL" validate:"omitempty,url"`
	Institute       string `json:"institute"`
	Course          string `json:"course"`
	Bio             string `json:"bio"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Role, MembershipStatus and IsActive may only be set by admins; the API layer
// enforces that.
type UpdateUser struct {
	Email            string `json:"email" validate:"omitempty,email"`
	Username         string `json:"username" validate:"omitempty,min=6,alphanum_"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	PhotoURL         string `json:"photoURL" validate:"omitempty,url"`
	Institute        string `json:"institute"`
	Course           string `json:"course"`
	Bio              string `json:"bio"`
	Role             string `json:"role" validate:"omitempty,role"`
	MembershipStatus string `json:"membershipStatus" validate:"omitempty,membership"`
	IsActive         *bool  `json:"is_active"`
	Password         string `json:"password" validate:"omitempty"`
	PasswordConfirm  string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate, svc *Service) error {
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}
	if uname := core.CleanString(uu.Username, true /* lower */); uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}
	if first := core.CleanString(uu.FirstName); first != "" {
		uu.FirstName = first
	} else {
		uu.FirstName = origUsr.FirstName
	}
	if last := core.CleanString(uu.LastName); last != "" {
		uu.LastName = last
	} else {
		uu.LastName = origUsr.LastName
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.checkUniqueness(uu.Username, uu.Email, origUsr)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Role        string    `query:"role"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == "" && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = strings.ToUpper(core.CleanString(qf.Role))
}
