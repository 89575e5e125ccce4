package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// login checks the shared credential and issues a bearer token. With no
// password hash configured the endpoint reports the gate as disabled
// instead of accepting everything.
func (s *Server) login(c *fiber.Ctx) error {
	if s.cfg.PasswordHash == "" {
		return fiber.NewError(fiber.StatusServiceUnavailable, "login is not configured")
	}

	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed login payload")
	}
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "username and password are required")
	}

	if req.Username != s.cfg.Username ||
		bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(req.Password)) != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   req.Username,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL())),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "cannot sign token")
	}

	return c.JSON(fiber.Map{"token": token})
}

// requireToken gates a route on a valid bearer token. With no JWT secret
// configured the API runs open; single-operator kiosk installs have no
// credential to check against.
func (s *Server) requireToken(c *fiber.Ctx) error {
	if s.cfg.JWTSecret == "" {
		return c.Next()
	}

	const prefix = "Bearer "
	auth := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(auth, prefix) {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}
	raw := strings.TrimSpace(auth[len(prefix):])

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}

	c.Locals("subject", claims.Subject)
	return c.Next()
}
