package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core"
)

var (
	// errors
	ErrNotFound     = core.NewNotFoundError("user")
	ErrEmailExists  = errors.New("a user with this email already exists")
	ErrInvalidToken = errors.New("invalid or expired token")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		QueryUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		tokens  tokenGenerator
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		tokens: tokenGenerator{
			secretKey: []byte(conf.SecretKey),
			timeout:   conf.PasswordResetTimeoutDelta,
			now:       time.Now,
		},
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		ID:         core.NewID(),
		Email:      nu.Email,
		FirstName:  nu.FirstName,
		LastName:   nu.LastName,
		Degree:     nu.Degree,
		Department: nu.Department,
		FacultyID:  nu.FacultyID,
		Groups:     nu.Groups,
		IsAdmin:    nu.IsAdmin,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	if !core.IsValidID(id) {
		return User{}, ErrNotFound
	}
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

// QueryByGroup returns the active members of group.
func (svc *Service) QueryByGroup(ctx context.Context, group string) ([]User, error) {
	active := true
	return svc.repo.QueryUsers(ctx, QueryFilter{Group: group, IsActive: &active})
}

// QueryByIDs returns the users matching ids, keyed by ID. Unknown ids are skipped.
func (svc *Service) QueryByIDs(ctx context.Context, ids ...string) (map[string]User, error) {
	users := make(map[string]User, len(ids))
	for _, id := range ids {
		if _, ok := users[id]; ok || id == "" {
			continue
		}
		usr, err := svc.GetByID(ctx, id)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				continue
			}
			return nil, errors.Wrap(err, "getting user")
		}
		users[id] = usr
	}
	return users, nil
}

func (svc *Service) Save(ctx context.Context, usr User) (User, error) {
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) SetPassword(ctx context.Context, usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.Save(ctx, usr)
}

// RequestPasswordReset emails a reset link to the active user owning email.
// Unknown or inactive addresses are silently ignored.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil
		}
		return errors.Wrap(err, "getting user by email")
	}
	if !usr.IsActive {
		return nil
	}

	token, err := svc.tokens.makeToken(usr)
	if err != nil {
		return errors.Wrap(err, "making token")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]interface{}{
			"Name":  usr.ShortName(),
			"UID":   EncodeUID(usr),
			"Token": token,
		},
	})
	return nil
}

// ConfirmPasswordReset sets the new password once the reset token is verified.
func (svc *Service) ConfirmPasswordReset(ctx context.Context, data ResetUserPassword) (User, error) {
	invalid := core.NewValidationError(ErrInvalidToken, core.FieldError{Field: "token", Error: ErrInvalidToken.Error()})

	id, err := decodeUID(data.UID)
	if err != nil {
		return User{}, invalid
	}
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, invalid
		}
		return User{}, errors.Wrap(err, "getting user")
	}
	if err = svc.tokens.verifyToken(usr, data.Token); err != nil {
		return User{}, invalid
	}
	return svc.SetPassword(ctx, usr, data.Password)
}
