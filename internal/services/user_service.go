package services

import (
	"database/sql"
	"fmt"
	"strings"

	"marketplace/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewUserService(db *sql.DB, logger zerolog.Logger) *UserService {
	return &UserService{
		db:     db,
		logger: logger,
	}
}

func (s *UserService) Register(req *models.RegisterRequest) (*models.User, error) {
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username, email, and password are required", ErrValidation)
	}

	var existingID int
	err := s.db.QueryRow("SELECT id FROM users WHERE email = ? OR username = ?", req.Email, req.Username).Scan(&existingID)
	if err == nil {
		return nil, ErrConflict
	} else if err != sql.ErrNoRows {
		s.logger.Error().Err(err).Msg("Error checking existing user")
		return nil, fmt.Errorf("database error: %w", err)
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error hashing password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var whatsapp interface{}
	if req.Whatsapp != "" {
		whatsapp = req.Whatsapp
	}

	result, err := s.db.Exec(
		"INSERT INTO users (username, email, password_hash, whatsapp) VALUES (?, ?, ?, ?)",
		req.Username, req.Email, hashedPassword, whatsapp,
	)
	if err != nil {
		// The unique indexes on username and email are the real guard; a
		// concurrent registration slips past the pre-check and lands here.
		if isDuplicateEntry(err) {
			return nil, ErrConflict
		}
		s.logger.Error().Err(err).Msg("Error creating user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	userID, err := result.LastInsertId()
	if err != nil {
		s.logger.Error().Err(err).Msg("Error getting user ID")
		return nil, fmt.Errorf("failed to get user ID: %w", err)
	}

	user, err := s.GetUserByID(int(userID))
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("user_id", user.ID).Str("username", user.Username).Msg("User registered successfully")
	return user, nil
}

func (s *UserService) Authenticate(req *models.LoginRequest) (*models.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	var whatsapp sql.NullString

	err := s.db.QueryRow(
		"SELECT id, username, email, password_hash, whatsapp, created_at FROM users WHERE username = ?",
		req.Username,
	).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &whatsapp, &user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error querying user")
		return nil, fmt.Errorf("database error: %w", err)
	}
	user.Whatsapp = whatsapp.String

	if !VerifyPassword(req.Password, user.PasswordHash) {
		s.logger.Warn().Str("username", req.Username).Msg("Failed authentication attempt")
		return nil, ErrInvalidCredentials
	}

	s.logger.Info().Int("user_id", user.ID).Str("username", user.Username).Msg("User authenticated successfully")
	return &user, nil
}

func (s *UserService) GetUserByID(userID int) (*models.User, error) {
	var user models.User
	var whatsapp sql.NullString

	err := s.db.QueryRow(
		"SELECT id, username, email, password_hash, whatsapp, created_at FROM users WHERE id = ?",
		userID,
	).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &whatsapp, &user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error fetching user")
		return nil, fmt.Errorf("database error: %w", err)
	}
	user.Whatsapp = whatsapp.String

	return &user, nil
}
