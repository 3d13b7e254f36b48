package controllers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/mewatch/internal/models"
	"github.com/amaumene/mewatch/internal/services/social"
	"github.com/amaumene/mewatch/internal/utils"
)

// ErrInvalidCredentials indicates a failed username/password check
var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthController issues local tokens and resolves social logins
type AuthController struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(db *models.Database, logger *logrus.Logger) *AuthController {
	return &AuthController{
		db:     db,
		logger: logger,
	}
}

// CreateUser provisions a local account with a password
func (c *AuthController) CreateUser(username, password string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := c.db.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ObtainToken validates credentials and returns the user's token,
// issuing one on first use
func (c *AuthController) ObtainToken(username, password string) (*models.AuthToken, error) {
	user, err := c.db.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return c.db.GetOrCreateToken(user.ID)
}

// SocialLogin resolves an external identity to a local user and token. On
// first login a user is created with a random username and the provider's
// personal info, plus the identity row linking them.
func (c *AuthController) SocialLogin(ctx context.Context, integration social.Integration, accessToken, externalUserID string) (*models.AuthToken, *models.User, error) {
	var user *models.User

	identity, err := c.db.GetSocialIdentity(integration.Type(), externalUserID)
	switch {
	case err == nil:
		user, err = c.db.GetUserByID(identity.UserID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve identity user: %w", err)
		}
	case errors.Is(err, models.ErrNotFound):
		info, err := integration.PersonalInfo(ctx, accessToken, externalUserID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch personal info: %w", err)
		}

		user = &models.User{
			Username:  uuid.NewString(),
			FirstName: info.FirstName,
			LastName:  info.LastName,
		}
		if err := c.db.CreateUser(user); err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}
		if err := c.db.CreateSocialIdentity(&models.SocialIdentity{
			SocialType:   integration.Type(),
			SocialUserID: externalUserID,
			UserID:       user.ID,
		}); err != nil {
			return nil, nil, fmt.Errorf("failed to create social identity: %w", err)
		}

		c.logger.WithFields(logrus.Fields{
			"provider":         integration.Type(),
			"external_user_id": externalUserID,
			"user_id":          user.ID,
		}).Info("Created user from social login")
	default:
		return nil, nil, err
	}

	token, err := c.db.GetOrCreateToken(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return token, user, nil
}
