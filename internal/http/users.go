package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/libris/internal/auth"
	"github.com/mrlokans/libris/internal/database/users"
	"github.com/mrlokans/libris/internal/services"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthController handles signup, login and logout.
type AuthController struct {
	accounts AccountService
	sessions *auth.SessionManager
	limiter  *auth.RateLimiter
	log      *zap.Logger
}

func NewAuthController(accounts AccountService, sessions *auth.SessionManager, limiter *auth.RateLimiter, log *zap.Logger) *AuthController {
	return &AuthController{accounts: accounts, sessions: sessions, limiter: limiter, log: log}
}

// Tags lists the labels a user may choose at signup.
func (ac *AuthController) Tags(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tags": services.UserTags})
}

// CSRFToken hands out the token for the X-CSRF-Token header.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrf_token": auth.GetCSRFToken(c)})
}

func (ac *AuthController) SignUp(c *gin.Context) {
	var in services.SignUpInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := ac.accounts.SignUp(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, ac.log, err, "signup")
		return
	}
	respondCreated(c, newUserResponse(user))
}

// Login verifies credentials and starts a session. Repeated failures for
// the same IP and username are locked out for a while.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username and password are required")
		return
	}

	ip := c.ClientIP()
	if ac.limiter != nil {
		if allowed, retryAfter := ac.limiter.Allow(ip, req.Username); !allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			respondError(c, http.StatusTooManyRequests, "too many login attempts, try again later")
			return
		}
	}

	user, err := ac.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) && ac.limiter != nil {
			if locked, _ := ac.limiter.RecordFailure(ip, req.Username); locked {
				ac.log.Warn("login locked out", zap.String("username", req.Username), zap.String("ip", ip))
			}
		}
		respondServiceError(c, ac.log, err, "login")
		return
	}
	if ac.limiter != nil {
		ac.limiter.RecordSuccess(ip, req.Username)
	}

	if err := ac.sessions.CreateSession(c.Request, user); err != nil {
		respondInternalError(c, ac.log, err, "create session")
		return
	}
	respondSuccess(c, "Login successful", newUserResponse(user))
}

func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.sessions.DestroySession(c.Request); err != nil {
		respondInternalError(c, ac.log, err, "destroy session")
		return
	}
	respondSuccess(c, "Logged out", nil)
}

type meResponse struct {
	UserResponse
	LoginAt string `json:"login_at,omitempty"`
}

// Me returns the logged-in user and when the session started.
func (ac *AuthController) Me(c *gin.Context) {
	resp := meResponse{UserResponse: newUserResponse(auth.CurrentUser(c))}
	if at := ac.sessions.LoginAt(c.Request); !at.IsZero() {
		resp.LoginAt = at.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}
