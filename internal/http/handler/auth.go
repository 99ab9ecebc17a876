package handler

import (
	"github.com/gofiber/fiber/v2"

	"quizzed/internal/http/middleware"
	"quizzed/internal/service"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	FirstName       *string   `json:"firstName"`
	LastName        *string   `json:"lastName"`
	Bio             *string   `json:"bio"`
	FavoriteTopics  *[]string `json:"favoriteTopics"`
	DifficultyLevel *string   `json:"difficultyLevel"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Signup godoc
// @Summary  Create an account
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body signupRequest true "credentials"
// @Success  201 {object} map[string]any
// @Failure  400 {object} errorPayload
// @Router   /api/auth/signup [post]
func Signup(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req signupRequest
		if !parseBody(c, &req) {
			return invalidBody(c)
		}
		res, err := svc.Signup(c.UserContext(), service.SignupInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"message": "Account created successfully",
			"token":   res.Token,
			"user":    res.User,
		})
	}
}

// Login godoc
// @Summary  Exchange credentials for a token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body loginRequest true "credentials"
// @Success  200 {object} map[string]any
// @Failure  401 {object} errorPayload
// @Router   /api/auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if !parseBody(c, &req) {
			return invalidBody(c)
		}
		res, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Login successful",
			"token":   res.Token,
			"user":    res.User,
		})
	}
}

// Verify returns the user behind the bearer token.
func Verify() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.CurrentUser(c)
		return c.JSON(fiber.Map{"success": true, "user": u.Public()})
	}
}

func UpdateProfile(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req profileRequest
		if !parseBody(c, &req) {
			return invalidBody(c)
		}
		u, err := svc.UpdateProfile(c.UserContext(), middleware.CurrentUser(c).ID, service.ProfileUpdate{
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			Bio:             req.Bio,
			FavoriteTopics:  req.FavoriteTopics,
			DifficultyLevel: req.DifficultyLevel,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Profile updated successfully",
			"user":    u.Public(),
		})
	}
}

func ChangePassword(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req changePasswordRequest
		if !parseBody(c, &req) {
			return invalidBody(c)
		}
		err := svc.ChangePassword(c.UserContext(), middleware.CurrentUser(c).ID, req.CurrentPassword, req.NewPassword)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "message": "Password changed successfully"})
	}
}

// UploadAvatar accepts multipart/form-data with the image in field "file".
func UploadAvatar(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "Please provide an image file")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		avatar, err := svc.UploadAvatar(c.UserContext(), middleware.CurrentUser(c).ID, f, fh.Filename, ct, fh.Size)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"message": "Avatar uploaded successfully",
			"avatar":  avatar,
		})
	}
}

// GetAvatar streams a user's uploaded avatar.
func GetAvatar(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, info, err := svc.OpenAvatar(c.UserContext(), c.Params("userId"))
		if err != nil {
			return serviceError(c, err)
		}
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		if info.ETag != "" {
			c.Set(fiber.HeaderETag, info.ETag)
		}
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		return c.SendStream(rc, int(info.Size))
	}
}
