package models

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

type Location struct {
	Village  string `json:"village,omitempty"`
	District string `json:"district,omitempty"`
	State    string `json:"state,omitempty"`
}

type Notifications struct {
	Email bool `json:"email"`
	App   bool `json:"app"`
}

type Preferences struct {
	Currency      string        `json:"currency"`
	Theme         string        `json:"theme"`
	Language      string        `json:"language"`
	DateFormat    string        `json:"dateFormat"`
	Notifications Notifications `json:"notifications"`
}

type FarmSize struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type FarmDetails struct {
	Name         string   `json:"name,omitempty"`
	Location     string   `json:"location,omitempty"`
	Size         FarmSize `json:"size"`
	PrimaryCrops []string `json:"primaryCrops"`
	FarmingType  string   `json:"farmingType"`
	FarmType     string   `json:"farmType,omitempty"`
}

// User is the persisted account. PasswordHash never leaves the server; use SafeUser.
type User struct {
	ID             string
	Username       string
	Email          string
	PasswordHash   string
	Role           string
	IsActive       bool
	AuthProvider   string
	LastLogin      *time.Time
	PhoneNumber    string
	ProfilePicture string
	Location       Location
	Preferences    Preferences
	FarmDetails    FarmDetails
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SafeUser is the public projection of a User.
type SafeUser struct {
	ID             string      `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	Role           string      `json:"role"`
	IsActive       bool        `json:"isActive"`
	AuthProvider   string      `json:"authProvider"`
	LastLogin      *time.Time  `json:"lastLogin,omitempty"`
	PhoneNumber    string      `json:"phoneNumber,omitempty"`
	ProfilePicture string      `json:"profilePicture,omitempty"`
	Location       Location    `json:"location"`
	Preferences    Preferences `json:"preferences"`
	FarmDetails    FarmDetails `json:"farmDetails"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

func NewSafeUser(u User) SafeUser {
	crops := u.FarmDetails.PrimaryCrops
	if crops == nil {
		crops = []string{}
	}
	farm := u.FarmDetails
	farm.PrimaryCrops = crops

	return SafeUser{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		IsActive:       u.IsActive,
		AuthProvider:   u.AuthProvider,
		LastLogin:      u.LastLogin,
		PhoneNumber:    u.PhoneNumber,
		ProfilePicture: u.ProfilePicture,
		Location:       u.Location,
		Preferences:    u.Preferences,
		FarmDetails:    farm,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// DefaultPreferences mirrors the account defaults of a new registration.
func DefaultPreferences() Preferences {
	return Preferences{
		Currency:      "INR",
		Theme:         "light",
		Language:      "en",
		DateFormat:    "DD/MM/YYYY",
		Notifications: Notifications{Email: true, App: true},
	}
}

func DefaultFarmDetails() FarmDetails {
	return FarmDetails{
		Size:         FarmSize{Unit: "acres"},
		PrimaryCrops: []string{},
		FarmingType:  "Conventional",
	}
}

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	themes          = []string{"light", "dark", "system"}
	languages       = []string{"en", "hi", "gu"}
	sizeUnits       = []string{"acres", "hectares"}
	farmingTypes    = []string{"Organic", "Conventional", "Mixed"}
)

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *RegisterInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

func (in RegisterInput) Validate() error {
	v := NewValidationError()
	validateUsername(v, in.Username)
	validateEmail(v, in.Email)
	if len(in.Password) < 6 {
		v.Add("password", "Password must be at least 6 characters")
	}
	return v.Err()
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(in.Email) == "" {
		v.Add("email", "Email is required")
	}
	if in.Password == "" {
		v.Add("password", "Password is required")
	}
	return v.Err()
}

func validateUsername(v *ValidationError, username string) {
	if !usernamePattern.MatchString(username) {
		v.Add("username", "Username must be 3-30 characters of letters, numbers or underscores")
	}
}

func validateEmail(v *ValidationError, email string) {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		v.Add("email", "Please enter a valid email address")
	}
}

// ProfileUpdate is a partial profile patch. Nested objects merge field by field.
type ProfileUpdate struct {
	Username       *string            `json:"username"`
	Email          *string            `json:"email"`
	PhoneNumber    *string            `json:"phoneNumber"`
	ProfilePicture *string            `json:"profilePicture"`
	Location       *LocationUpdate    `json:"location"`
	Preferences    *PreferencesUpdate `json:"preferences"`
	FarmDetails    *FarmDetailsUpdate `json:"farmDetails"`
}

type LocationUpdate struct {
	Village  *string `json:"village"`
	District *string `json:"district"`
	State    *string `json:"state"`
}

type NotificationsUpdate struct {
	Email *bool `json:"email"`
	App   *bool `json:"app"`
}

type PreferencesUpdate struct {
	Currency      *string              `json:"currency"`
	Theme         *string              `json:"theme"`
	Language      *string              `json:"language"`
	DateFormat    *string              `json:"dateFormat"`
	Notifications *NotificationsUpdate `json:"notifications"`
}

type FarmSizeUpdate struct {
	Value *float64 `json:"value"`
	Unit  *string  `json:"unit"`
}

type FarmDetailsUpdate struct {
	Name         *string         `json:"name"`
	Location     *string         `json:"location"`
	Size         *FarmSizeUpdate `json:"size"`
	PrimaryCrops []string        `json:"primaryCrops"`
	FarmingType  *string         `json:"farmingType"`
	FarmType     *string         `json:"farmType"`
}

func (p ProfileUpdate) Validate() error {
	v := NewValidationError()
	if p.Username != nil {
		validateUsername(v, strings.TrimSpace(*p.Username))
	}
	if p.Email != nil {
		validateEmail(v, strings.ToLower(strings.TrimSpace(*p.Email)))
	}
	if pr := p.Preferences; pr != nil {
		checkEnum(v, "preferences.theme", pr.Theme, themes)
		checkEnum(v, "preferences.language", pr.Language, languages)
	}
	if fd := p.FarmDetails; fd != nil {
		checkEnum(v, "farmDetails.farmingType", fd.FarmingType, farmingTypes)
		if fd.Size != nil {
			checkEnum(v, "farmDetails.size.unit", fd.Size.Unit, sizeUnits)
			if fd.Size.Value != nil && *fd.Size.Value < 0 {
				v.Add("farmDetails.size.value", "Farm size cannot be negative")
			}
		}
	}
	return v.Err()
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// ApplyTo merges the patch into u. Validate must have passed.
func (p ProfileUpdate) ApplyTo(u *User) {
	setString(&u.Username, p.Username)
	if p.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*p.Email))
	}
	setString(&u.PhoneNumber, p.PhoneNumber)
	setString(&u.ProfilePicture, p.ProfilePicture)

	if l := p.Location; l != nil {
		setString(&u.Location.Village, l.Village)
		setString(&u.Location.District, l.District)
		setString(&u.Location.State, l.State)
	}

	if pr := p.Preferences; pr != nil {
		setString(&u.Preferences.Currency, pr.Currency)
		setString(&u.Preferences.Theme, pr.Theme)
		setString(&u.Preferences.Language, pr.Language)
		setString(&u.Preferences.DateFormat, pr.DateFormat)
		if n := pr.Notifications; n != nil {
			if n.Email != nil {
				u.Preferences.Notifications.Email = *n.Email
			}
			if n.App != nil {
				u.Preferences.Notifications.App = *n.App
			}
		}
	}

	if fd := p.FarmDetails; fd != nil {
		setString(&u.FarmDetails.Name, fd.Name)
		setString(&u.FarmDetails.Location, fd.Location)
		setString(&u.FarmDetails.FarmingType, fd.FarmingType)
		setString(&u.FarmDetails.FarmType, fd.FarmType)
		if fd.PrimaryCrops != nil {
			u.FarmDetails.PrimaryCrops = fd.PrimaryCrops
		}
		if s := fd.Size; s != nil {
			if s.Value != nil {
				u.FarmDetails.Size.Value = *s.Value
			}
			setString(&u.FarmDetails.Size.Unit, s.Unit)
		}
	}
}

// AdminUserUpdate extends a profile patch with the fields only admins may change.
type AdminUserUpdate struct {
	ProfileUpdate
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

func (a AdminUserUpdate) Validate() error {
	err := a.ProfileUpdate.Validate()
	v := NewValidationError()
	if ve, ok := err.(*ValidationError); ok {
		v = ve
	}
	checkEnum(v, "role", a.Role, Roles)
	return v.Err()
}

func (a AdminUserUpdate) ApplyTo(u *User) {
	a.ProfileUpdate.ApplyTo(u)
	if a.Role != nil {
		u.Role = *a.Role
	}
	if a.IsActive != nil {
		u.IsActive = *a.IsActive
	}
}

// Identity is the already-authenticated caller.
type Identity struct {
	UserID string
	Role   string
}

func (id Identity) String() string {
	return fmt.Sprintf("%s(%s)", id.UserID, id.Role)
}
