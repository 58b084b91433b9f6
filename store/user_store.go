// Package store implements the persistence layer on GORM: users and their
// credentials, stock metadata and values, and favourite-stock links.
package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/stockwatch/stockwatch/database"
	"github.com/stockwatch/stockwatch/errors"
	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/model"
)

// UserStore persists users and their credentials.
type UserStore struct {
	db  *database.DB
	log *logger.Logger
}

// NewUserStore creates a UserStore.
func NewUserStore(db *database.DB, log *logger.Logger) *UserStore {
	return &UserStore{db: db, log: log.WithComponent("user_store")}
}

// FindByLogin resolves a credential by username or email, excluding
// soft-deleted users. Returns NoSuchUser when nothing matches.
func (s *UserStore) FindByLogin(ctx context.Context, identifier string) (*model.SecurityInfo, error) {
	var info model.SecurityInfo
	err := s.db.WithContext(ctx).
		Joins("JOIN users ON users.id = security_info.user_id AND users.is_deleted = ?", false).
		Where("security_info.username = ? OR security_info.email = ?", identifier, identifier).
		First(&info).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.NoSuchUser()
		}
		return nil, errors.DatabaseError(err)
	}
	return &info, nil
}

// LoginIsUsed reports whether either the email or the username already
// exists in any credential record, soft-deleted users included. Register
// runs the same check inside its transaction.
func (s *UserStore) LoginIsUsed(ctx context.Context, email, username string) (bool, error) {
	used, err := loginIsUsed(s.db.WithContext(ctx), email, username)
	if err != nil {
		return false, errors.DatabaseError(err)
	}
	return used, nil
}

func loginIsUsed(tx *gorm.DB, email, username string) (bool, error) {
	var count int64
	err := tx.Model(&model.SecurityInfo{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	return count > 0, err
}

// Register creates a user and its credential in one transaction. The
// duplicate check runs inside the transaction and the unique constraints
// on username and email catch the check-then-act race, so two concurrent
// registrations with the same identifiers cannot both succeed.
func (s *UserStore) Register(ctx context.Context, user *model.User, info *model.SecurityInfo) error {
	err := s.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		used, err := loginIsUsed(tx, info.Email, info.Username)
		if err != nil {
			return err
		}
		if used {
			return errors.DuplicateIdentifier()
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		info.UserID = user.ID
		return tx.Create(info).Error
	})
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return err
		}
		if database.IsDuplicate(err) {
			return errors.DuplicateIdentifier().WithCause(err)
		}
		return errors.DatabaseError(err)
	}

	s.log.Info("User registered", map[string]interface{}{
		"user_id":  user.ID,
		"username": info.Username,
	})
	return nil
}

// Get returns a user by id. Soft-deleted users are reported as missing.
func (s *UserStore) Get(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&user).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.NoSuchUser()
		}
		return nil, errors.DatabaseError(err)
	}
	return &user, nil
}

// List returns every non-deleted user.
func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	return users, nil
}

// Create inserts a bare user row without a credential. Administrative
// creation; the credential comes later via CreateSecurityInfo.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return errors.DatabaseError(err)
	}
	return nil
}

// Update rewrites a user's profile. Nil fields keep their previous values.
func (s *UserStore) Update(ctx context.Context, id uint, firstName, secondName *string, birthday *time.Time) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if firstName != nil {
		user.FirstName = *firstName
	}
	if secondName != nil {
		user.SecondName = *secondName
	}
	if birthday != nil {
		user.Birthday = birthday
	}
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, errors.DatabaseError(err)
	}
	return user, nil
}

// SoftDelete marks a user deleted. The row and credential remain.
func (s *UserStore) SoftDelete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if res.Error != nil {
		return errors.DatabaseError(res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NoSuchUser()
	}
	return nil
}

// HardDelete removes a user, its credential and its favourites in one
// transaction.
func (s *UserStore) HardDelete(ctx context.Context, id uint) error {
	err := s.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.NoSuchUser()
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.SecurityInfo{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", id).Delete(&model.FavouriteStock{}).Error
	})
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return err
		}
		return errors.DatabaseError(err)
	}
	return nil
}

// GetSecurityInfo returns the credential for a user id.
func (s *UserStore) GetSecurityInfo(ctx context.Context, userID uint) (*model.SecurityInfo, error) {
	var info model.SecurityInfo
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&info).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.NoSuchUser()
		}
		return nil, errors.DatabaseError(err)
	}
	return &info, nil
}

// ListSecurityInfo returns every credential record.
func (s *UserStore) ListSecurityInfo(ctx context.Context) ([]model.SecurityInfo, error) {
	var infos []model.SecurityInfo
	if err := s.db.WithContext(ctx).Order("user_id").Find(&infos).Error; err != nil {
		return nil, errors.DatabaseError(err)
	}
	return infos, nil
}

// CreateSecurityInfo attaches a credential to an existing user. Fails with
// NoSuchUser when the user is missing and DuplicateIdentifier when the
// username or email is taken.
func (s *UserStore) CreateSecurityInfo(ctx context.Context, info *model.SecurityInfo) error {
	err := s.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("id = ?", info.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errors.NoSuchUser()
		}
		return tx.Create(info).Error
	})
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return err
		}
		if database.IsDuplicate(err) {
			return errors.DuplicateIdentifier().WithCause(err)
		}
		return errors.DatabaseError(err)
	}
	return nil
}

// UpdateSecurityInfo rewrites a credential. Empty fields keep their
// previous values; the password is expected pre-hashed by the caller.
func (s *UserStore) UpdateSecurityInfo(ctx context.Context, userID uint, username, email, passwordHash string, role model.Role) (*model.SecurityInfo, error) {
	info, err := s.GetSecurityInfo(ctx, userID)
	if err != nil {
		return nil, err
	}
	if username != "" {
		info.Username = username
	}
	if email != "" {
		info.Email = email
	}
	if passwordHash != "" {
		info.PasswordHash = passwordHash
	}
	if role != "" {
		if !role.Valid() {
			return nil, errors.Validation("role must be one of: ADMIN USER")
		}
		info.Role = role
	}
	if err := s.db.WithContext(ctx).Save(info).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, errors.DuplicateIdentifier().WithCause(err)
		}
		return nil, errors.DatabaseError(err)
	}
	return info, nil
}

// DeleteSecurityInfo removes a user's credential record.
func (s *UserStore) DeleteSecurityInfo(ctx context.Context, userID uint) error {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.SecurityInfo{})
	if res.Error != nil {
		return errors.DatabaseError(res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NoSuchUser()
	}
	return nil
}

// EnsureAdmin seeds the default administrator when no credential with the
// given username exists. Idempotent across restarts.
func (s *UserStore) EnsureAdmin(ctx context.Context, username, email, passwordHash string) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.SecurityInfo{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return errors.DatabaseError(err)
	}
	if count > 0 {
		return nil
	}

	user := &model.User{FirstName: username}
	info := &model.SecurityInfo{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
	}
	if err := s.Register(ctx, user, info); err != nil {
		return err
	}
	s.log.Info("Default admin created", map[string]interface{}{
		"username": username,
	})
	return nil
}
