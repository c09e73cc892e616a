package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"user-portal/internal/service"
	"user-portal/internal/session"
)

const (
	sessionCookie       = "portal_session"
	sessionCookieMaxAge = 24 * 60 * 60
)

// Handlers mantiene dependencias para las rutas del portal.
type Handlers struct {
	logger   *zap.Logger
	userServ *service.UserService
	flashes  session.Store
}

// NewHandlers crea una instancia de Handlers con las dependencias necesarias.
func NewHandlers(logger *zap.Logger, userServ *service.UserService, flashes session.Store) *Handlers {
	return &Handlers{
		logger:   logger,
		userServ: userServ,
		flashes:  flashes,
	}
}

// ShowLogin maneja GET /.
func (h *Handlers) ShowLogin(c *gin.Context) {
	h.render(c, "login.tmpl")
}

// ShowSignup maneja GET /signup.
func (h *Handlers) ShowSignup(c *gin.Context) {
	h.render(c, "signup.tmpl")
}

// Dashboard maneja GET /dashboard. Alcanzable sin autenticación; el login
// no guarda ninguna marca de sesión y aquí no se verifica ninguna.
func (h *Handlers) Dashboard(c *gin.Context) {
	h.render(c, "dashboard.tmpl")
}

// Signup maneja POST /signup.
func (h *Handlers) Signup(c *gin.Context) {
	var req struct {
		FullName string `form:"fullname" binding:"required"`
		Email    string `form:"email" binding:"required"`
		Phone    string `form:"phone" binding:"required"`
		Username string `form:"username" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("invalid signup request", zap.Error(err))
		h.flash(c, session.KindError, "Error occurred during signup")
		c.Redirect(http.StatusFound, "/signup")
		return
	}

	_, err := h.userServ.Register(c.Request.Context(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			h.flash(c, session.KindError, "Username already exists")
			c.Redirect(http.StatusFound, "/signup")
			return
		}
		h.logger.Error("signup failed", zap.Error(err))
		h.flash(c, session.KindError, "Error occurred during signup")
		c.Redirect(http.StatusFound, "/signup")
		return
	}

	h.flash(c, session.KindSuccess, "Signup successful! Please log in.")
	c.Redirect(http.StatusFound, "/")
}

// Login maneja POST /login. No guarda token ni marca de autenticación;
// el único efecto además del redirect es el flash.
func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Username string `form:"username" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		h.flash(c, session.KindError, "Error occurred during login")
		c.Redirect(http.StatusFound, "/")
		return
	}

	_, err := h.userServ.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			h.flash(c, session.KindError, "User not found")
		case errors.Is(err, service.ErrIncorrectPassword):
			h.flash(c, session.KindError, "Incorrect password")
		default:
			h.logger.Error("login failed", zap.Error(err))
			h.flash(c, session.KindError, "Error occurred during login")
		}
		c.Redirect(http.StatusFound, "/")
		return
	}

	h.flash(c, session.KindSuccess, "Login successful!")
	c.Redirect(http.StatusFound, "/dashboard")
}

// sessionID devuelve el identificador opaco de la sesión del visitante,
// emitiendo cookie nueva en el primer contacto. El id recién emitido se
// cachea en el contexto para que todo el request use el mismo.
func (h *Handlers) sessionID(c *gin.Context) string {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		return id
	}
	if id, ok := c.Get(sessionCookie); ok {
		return id.(string)
	}
	id := uuid.NewString()
	c.SetCookie(sessionCookie, id, sessionCookieMaxAge, "/", "", false, true)
	c.Set(sessionCookie, id)
	return id
}

func (h *Handlers) flash(c *gin.Context, kind, text string) {
	if err := h.flashes.Push(h.sessionID(c), session.Flash{Kind: kind, Text: text}); err != nil {
		h.logger.Error("queue flash failed", zap.Error(err))
	}
}

// render consume los flashes pendientes y los expone como successMsg y
// errorMsg; cada mensaje se muestra exactamente una vez.
func (h *Handlers) render(c *gin.Context, name string) {
	flashes, err := h.flashes.Pop(h.sessionID(c))
	if err != nil {
		h.logger.Error("read flashes failed", zap.Error(err))
	}

	var successMsg, errorMsg []string
	for _, f := range flashes {
		switch f.Kind {
		case session.KindSuccess:
			successMsg = append(successMsg, f.Text)
		case session.KindError:
			errorMsg = append(errorMsg, f.Text)
		}
	}

	c.HTML(http.StatusOK, name, gin.H{
		"successMsg": successMsg,
		"errorMsg":   errorMsg,
	})
}
