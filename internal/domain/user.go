package domain

import "context"

type User struct {
	ID                  string  `json:"user_id"`
	Email               string  `json:"email"`
	FirstName           string  `json:"first_name"`
	LastName            string  `json:"last_name"`
	Password            string  `json:"-"`
	Country             *string `json:"country"`
	BirthDate           *Date   `json:"birth_date"`
	CreationAccountDate Date    `json:"creation_account_date"`
}

// UserRegister is the inbound shape for signup and for full-replace updates.
type UserRegister struct {
	Email               string  `json:"email" validate:"required,email"`
	FirstName           string  `json:"first_name" validate:"required,min=1,max=50"`
	LastName            string  `json:"last_name" validate:"required,min=1,max=50"`
	Password            string  `json:"password" validate:"required,min=8,max=64"`
	Country             *string `json:"country" validate:"omitempty,max=60"`
	BirthDate           *Date   `json:"birth_date" validate:"omitempty,past"`
	CreationAccountDate Date    `json:"creation_account_date" validate:"required,past"`
}

// Fields returns every mutable column of the user set from r.
func (r *UserRegister) Fields() Fields {
	return Fields{
		UserFieldEmail:               r.Email,
		UserFieldFirstName:           r.FirstName,
		UserFieldLastName:            r.LastName,
		UserFieldPassword:            r.Password,
		UserFieldCountry:             r.Country,
		UserFieldBirthDate:           r.BirthDate,
		UserFieldCreationAccountDate: r.CreationAccountDate,
	}
}

type UserDeleted struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	DeleteMessage string `json:"delete_message"`
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, id string, fields Fields) (*User, error)
	Delete(ctx context.Context, id string) (*User, error)
}

type UserService interface {
	CreateUser(ctx context.Context, req *UserRegister) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, id string, req *UserRegister) (*User, error)
	DeleteUser(ctx context.Context, id string) (*UserDeleted, error)
	ImportUser(ctx context.Context, user *User) (bool, error)
}
