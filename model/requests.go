package model

// DateLayout is the wire format for birthday fields.
const DateLayout = "2006-01-02"

// AuthRequest is the login payload. Login accepts a username or an email.
type AuthRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries a freshly minted bearer token.
type AuthResponse struct {
	Token string `json:"token"`
}

// RegistrationRequest is the self-service signup payload. Username, email
// and password are the minimum; the rest is optional profile data.
type RegistrationRequest struct {
	FirstName  string `json:"firstName"`
	SecondName string `json:"secondName"`
	Email      string `json:"email" validate:"required,email"`
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	Birthday   string `json:"birthday"`
}

// UserCreateRequest is the administrative user-creation payload.
type UserCreateRequest struct {
	FirstName  string `json:"firstName" validate:"required"`
	SecondName string `json:"secondName"`
	Birthday   string `json:"birthday"`
}

// UserUpdateRequest updates a user's profile. Omitted fields keep their
// previous values.
type UserUpdateRequest struct {
	ID         uint    `json:"id" validate:"required"`
	FirstName  *string `json:"firstName"`
	SecondName *string `json:"secondName"`
	Birthday   *string `json:"birthday"`
}

// SecurityInfoRequest creates or updates a credential record. On update,
// omitted fields keep their previous values and a provided password is
// re-hashed before storage.
type SecurityInfoRequest struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// FavouriteStockRequest adds or removes a favourite for a target user.
type FavouriteStockRequest struct {
	UserID uint   `json:"userId" validate:"required"`
	Symbol string `json:"symbol" validate:"required"`
}
