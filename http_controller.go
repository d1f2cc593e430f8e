package dashboard

import (
	stderrors "errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/nyaruka/phonenumbers"
)

// GetSession pulls the validated session out of the request locals.
func GetSession(c *fiber.Ctx, key string) (*SessionObject, error) {
	local := c.Locals(key)
	if local == nil {
		return nil, ErrUnableToFindSession
	}

	claims, ok := local.(AuthClaims)
	if claims == nil || !ok {
		return nil, ErrUnableToDecodeSession
	}

	return sessionFromAuthClaims(claims)
}

type AuthControllerRoutes struct {
	Register string
	Token    string
	Logout   string
	Users    string
	Admin    string
}

type AuthControllerViews struct {
	Dashboard string
	Login     string
	Error     string
}

type AuthController struct {
	Debug  bool
	Logger Logger
	Repo   RepositoryManager
	Auther *RouteAuthenticator
	Routes *AuthControllerRoutes
	Views  *AuthControllerViews
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = l
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func NewAuthController(repo RepositoryManager, auther *RouteAuthenticator, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Repo:   repo,
		Auther: auther,
		Routes: &AuthControllerRoutes{
			Register: "/auth/",
			Token:    "/auth/token",
			Logout:   "/auth/logout",
			Users:    "/users",
			Admin:    "/admin",
		},
		Views: &AuthControllerViews{
			Dashboard: "dashboard",
			Login:     "login",
			Error:     "errors/500",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the JSON API and the rendered views.
func RegisterAuthRoutes(app *fiber.App, controller *AuthController) {
	app.Post(controller.Routes.Register, controller.RegistrationCreate)
	app.Post(controller.Routes.Token, controller.TokenCreate)
	app.Post(controller.Routes.Logout, controller.LogOut)

	guard := controller.Auther.ProtectedRoute(controller.Auther.MakeClientRouteAuthErrorHandler(false))

	users := app.Group(controller.Routes.Users, guard)
	users.Get("/me", controller.CurrentUserShow)
	users.Put("/password", controller.PasswordUpdate)
	users.Put("/phone-number", controller.PhoneNumberUpdate)

	admin := app.Group(
		controller.Routes.Admin,
		controller.Auther.ProtectedRoute(
			controller.Auther.MakeClientRouteAuthErrorHandler(false),
			WithMinimumRole(string(RoleAdmin)),
		),
	)
	admin.Get("/users", controller.UserList)

	app.Get("/login", controller.LoginShow)
	app.Get("/", controller.Auther.ProtectedRoute(controller.viewAuthErrorHandler), controller.DashboardShow)
}

func (a *AuthController) LoginShow(c *fiber.Ctx) error {
	return c.Render(a.Views.Login, fiber.Map{
		"errors": nil,
	})
}

func (a *AuthController) DashboardShow(c *fiber.Ctx) error {
	session, err := GetSession(c, a.Auther.ContextKey())
	if err != nil {
		return a.renderError(c, err)
	}

	return c.Render(a.Views.Dashboard, fiber.Map{
		"username": session.GetUsername(),
		"role":     session.GetRole(),
	})
}

// LoginRequest is the credential payload for the token endpoint
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Username
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// TokenCreate exchanges credentials for a signed token. Any credential
// failure comes back as the same 401 response.
func (a *AuthController) TokenCreate(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("token create parse payload", "error", err)
		return a.unauthorized(c)
	}

	if err := payload.Validate(); err != nil {
		return a.unauthorized(c)
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	token, err := a.Auther.Login(c, payload)
	if err != nil {
		return a.unauthorized(c)
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (a *AuthController) LogOut(c *fiber.Ctx) error {
	a.Auther.Logout(c)
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// RegistrationCreatePayload is the registration payload
type RegistrationCreatePayload struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Username  string `form:"username" json:"username"`
	Email     string `form:"email" json:"email"`
	Phone     string `form:"phone_number" json:"phone_number"`
	Role      string `form:"role" json:"role"`
	Password  string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(0, 200)),
		validation.Field(&r.LastName, validation.Length(0, 200)),
		validation.Field(&r.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.By(ValidateOptionalPhoneNumber)),
		validation.Field(&r.Role, validation.By(ValidateOptionalRole)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AuthController) RegistrationCreate(c *fiber.Ctx) error {
	payload := new(RegistrationCreatePayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register user parse payload", "error", err)
		return a.renderError(c, errors.Wrap(err, errors.CategoryBadInput, "failed to parse body"))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload", "error", err)
		return a.renderError(c, errors.Wrap(err, errors.CategoryValidation, "invalid registration payload"))
	}

	var record *User

	req := RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Username:  payload.Username,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Role:      payload.Role,
		Password:  payload.Password,
		UseHashid: true,
		OnResponse: func(u *User) {
			record = u
		},
	}

	registerUser := RegisterUserHandler{repo: a.Repo}
	if err := registerUser.Execute(c.Context(), req); err != nil {
		a.Logger.Error("register user error", "error", err)
		return a.renderError(c, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(record))
		fmt.Println("============================")
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (a *AuthController) CurrentUserShow(c *fiber.Ctx) error {
	session, err := GetSession(c, a.Auther.ContextKey())
	if err != nil {
		return a.renderError(c, err)
	}

	user, err := a.Repo.Users().GetByID(c.Context(), session.GetUserID())
	if err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(user)
}

// PasswordUpdatePayload carries a password change request
type PasswordUpdatePayload struct {
	CurrentPassword string `form:"current_password" json:"current_password"`
	NewPassword     string `form:"new_password" json:"new_password"`
}

// Validate will validate the payload
func (r PasswordUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AuthController) PasswordUpdate(c *fiber.Ctx) error {
	session, err := GetSession(c, a.Auther.ContextKey())
	if err != nil {
		return a.renderError(c, err)
	}

	payload := new(PasswordUpdatePayload)
	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, errors.Wrap(err, errors.CategoryBadInput, "failed to parse body"))
	}

	if err := payload.Validate(); err != nil {
		return a.renderError(c, errors.Wrap(err, errors.CategoryValidation, "invalid password payload"))
	}

	changePassword := ChangePasswordHandler{repo: a.Repo}
	if err := changePassword.Execute(c.Context(), ChangePasswordMessage{
		UserID:          session.GetUserID(),
		CurrentPassword: payload.CurrentPassword,
		NewPassword:     payload.NewPassword,
	}); err != nil {
		a.Logger.Error("change password error", "error", err)
		return a.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Password updated successfully",
	})
}

// PhoneNumberUpdatePayload carries a phone number change request
type PhoneNumberUpdatePayload struct {
	Phone string `form:"phone_number" json:"phone_number"`
}

// Validate will validate the payload
func (r PhoneNumberUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Phone, validation.Required, validation.By(ValidatePhoneNumber)),
	)
}

func (a *AuthController) PhoneNumberUpdate(c *fiber.Ctx) error {
	session, err := GetSession(c, a.Auther.ContextKey())
	if err != nil {
		return a.renderError(c, err)
	}

	payload := new(PhoneNumberUpdatePayload)
	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, errors.Wrap(err, errors.CategoryBadInput, "failed to parse body"))
	}

	if err := payload.Validate(); err != nil {
		return a.renderError(c, errors.Wrap(err, errors.CategoryValidation, "invalid phone number payload"))
	}

	user, err := a.Repo.Users().GetByID(c.Context(), session.GetUserID())
	if err != nil {
		return a.renderError(c, err)
	}

	updated, err := a.Repo.Users().UpdatePhoneNumber(c.Context(), user.ID, payload.Phone)
	if err != nil {
		a.Logger.Error("update phone number error", "error", err)
		return a.renderError(c, err)
	}

	return c.JSON(updated)
}

func (a *AuthController) UserList(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	records, err := a.Repo.Users().List(c.Context(), limit, offset)
	if err != nil {
		a.Logger.Error("list users error", "error", err)
		return a.renderError(c, err)
	}

	return c.JSON(records)
}

func (a *AuthController) unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": ErrMismatchedHashAndPassword.Message,
	})
}

func (a *AuthController) viewAuthErrorHandler(c *fiber.Ctx, err error) error {
	a.Logger.Info("Authentication error, redirecting to login", "error", err)

	statusCode := fiber.StatusSeeOther
	if c.Method() == fiber.MethodGet {
		statusCode = fiber.StatusFound
	}
	return c.Redirect("/login", statusCode)
}

func (a *AuthController) renderError(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Request error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	status := fiber.StatusInternalServerError
	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		status = fiber.StatusUnauthorized
	case errors.CategoryValidation, errors.CategoryBadInput, errors.CategoryConflict:
		status = fiber.StatusBadRequest
	case errors.CategoryNotFound:
		status = fiber.StatusNotFound
	}

	body := fiber.Map{
		"message": richErr.Message,
	}
	if richErr.TextCode != "" {
		body["text_code"] = richErr.TextCode
	}

	return c.Status(status).JSON(body)
}

// ValidatePhoneNumber checks the value parses as a valid phone number.
func ValidatePhoneNumber(value any) error {
	raw, _ := value.(string)
	num, err := phonenumbers.Parse(raw, "US")
	if err != nil {
		return err
	}
	if !phonenumbers.IsValidNumber(num) {
		return stderrors.New("must be a valid phone number")
	}
	return nil
}

// ValidateOptionalPhoneNumber accepts an empty value, otherwise validates it.
func ValidateOptionalPhoneNumber(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	return ValidatePhoneNumber(value)
}

// ValidateOptionalRole accepts an empty value or a known role name.
func ValidateOptionalRole(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	if _, ok := ParseRole(raw); !ok {
		return stderrors.New("must be a valid role")
	}
	return nil
}
