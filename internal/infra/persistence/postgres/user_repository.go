package postgres

import (
	"context"
	"time"

	"warden/internal/domain/entity"
	domainerrors "warden/internal/domain/errors"
	"warden/internal/domain/repository"
	"warden/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create persists a new user entity to the database. The unique index on
// email turns concurrent duplicate registrations into ErrEmailTaken rather
// than a second row.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrEmailTaken
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required user information")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("invalid foreign key reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Update the user entity with the generated ID and timestamps
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user by their normalized email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where("email = ?", email).First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// RecordFailedAttempt bumps the failed-attempt counter and arms the lockout
// deadline in one statement, so simultaneous failures cannot both read the
// same counter and lose an increment.
func (repo *userRepository) RecordFailedAttempt(ctx context.Context, id uuid.UUID, maxAttempts int, lockedUntil time.Time) (repository.LockoutState, error) {
	var state repository.LockoutState

	row := repo.db.WithContext(ctx).Raw(`
		UPDATE users
		SET failed_attempts = failed_attempts + 1,
		    locked_until = CASE WHEN failed_attempts + 1 >= ? THEN ? ELSE locked_until END,
		    updated_at = NOW()
		WHERE id = ?
		RETURNING failed_attempts, locked_until`,
		maxAttempts, lockedUntil, id,
	).Row()
	if err := row.Scan(&state.FailedAttempts, &state.LockedUntil); err != nil {
		return repository.LockoutState{}, errors.Wrap(err, "failed to record failed login attempt")
	}

	return state, nil
}

// RecordSuccessfulLogin resets the lockout counters and stamps the login time.
func (repo *userRepository) RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, now time.Time) error {
	result := repo.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"failed_attempts": 0,
			"locked_until":    nil,
			"last_login_at":   now,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to record successful login")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// UpdateProfile applies the patch column by column, leaving unspecified
// fields untouched.
func (repo *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, patch repository.ProfilePatch) error {
	if patch.Empty() {
		return nil
	}

	updates := make(map[string]any)
	if patch.DisplayName != nil {
		updates["display_name"] = *patch.DisplayName
	}
	if patch.Notifications != nil {
		updates["notifications_enabled"] = *patch.Notifications
	}
	if patch.Theme != nil {
		updates["theme"] = string(*patch.Theme)
	}
	if patch.PasswordHash != nil {
		updates["password_hash"] = *patch.PasswordHash
	}

	result := repo.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		if isNotNullConstraintViolation(result.Error) {
			return domainerrors.ErrUserUpdateFailed.WrapMessage("missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update user profile")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// Delete removes the user record.
func (repo *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.UserModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:            data.ID,
		Email:         data.Email,
		DisplayName:   data.DisplayName,
		PasswordHash:  data.PasswordHash,
		EmailVerified: data.EmailVerified,
		Preferences: entity.Preferences{
			Notifications: data.NotificationsEnabled,
			Theme:         entity.Theme(data.Theme),
		},
		FailedAttempts: data.FailedAttempts,
		LockedUntil:    data.LockedUntil,
		LastLoginAt:    data.LastLoginAt,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:                   data.ID,
		Email:                data.Email,
		DisplayName:          data.DisplayName,
		PasswordHash:         data.PasswordHash,
		EmailVerified:        data.EmailVerified,
		NotificationsEnabled: data.Preferences.Notifications,
		Theme:                string(data.Preferences.Theme),
		FailedAttempts:       data.FailedAttempts,
		LockedUntil:          data.LockedUntil,
		LastLoginAt:          data.LastLoginAt,
	}
}
