package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

// Register mounts the session routes. signout sits behind the gate;
// signin/signup are the way in.
func Register(rg *gin.RouterGroup, svc *Service, requireUser gin.HandlerFunc) {
	h := &Handler{svc: svc}

	rg.POST("/signin", h.signIn)
	rg.POST("/signup", h.signUp)
	rg.POST("/signout", requireUser, h.signOut)
}

type signInBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInBody
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "email and password required"})
		return
	}

	sess, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if ae, ok := AsAuthError(err); ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": ae.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "session": sess, "redirect_to": "/"})
}

type signUpBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (h *Handler) signUp(c *gin.Context) {
	var req signUpBody
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "email and password required"})
		return
	}

	if err := h.svc.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName); err != nil {
		if ae, ok := AsAuthError(err); ok {
			status := http.StatusBadRequest
			if ae.Code == CodeEmailExists {
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"ok": false, "error": ae.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":          true,
		"message":     "Please check your email to confirm your account before signing in.",
		"redirect_to": "/auth",
	})
}

func (h *Handler) signOut(c *gin.Context) {
	uid := UserID(c)
	if err := h.svc.SignOut(c.Request.Context(), uid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "redirect_to": "/auth"})
}
