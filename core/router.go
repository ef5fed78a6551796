package core

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const maxRosterBodySize = 1 * 1024 * 1024

// NewRouter constructs the Gin engine with routes wired.
//
// Global middleware order matters: origin check, then the bearer-token
// authenticator (enriches context, never rejects), then the policy gate
// (the only stage that turns missing authentication into a 401).
func NewRouter(cfg Config, tokens *TokenService, auth AuthService, users UserRepository, students StudentRepository, limiter *LoginLimiter, market *MarketClient) *gin.Engine {
	startedAt := time.Now()
	r := gin.Default()

	r.Use(OriginMiddleware(cfg))
	r.Use(AuthMiddleware(tokens, users))
	r.Use(PolicyGate(DefaultRoutePolicy()))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "uptime": time.Since(startedAt).String()})
	})

	r.POST("/auth/login", func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
			return
		}
		if strings.TrimSpace(req.Username) == "" {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "username is required")
			return
		}

		if !limiter.Allow(c.Request.Context(), req.Username, c.ClientIP()) {
			respondError(c, http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", "too many login attempts, retry later")
			return
		}

		token, err := auth.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "username or password is wrong")
				return
			}
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "login failed")
			return
		}

		// Raw token body; clients echo it back in the Authorization header.
		c.String(http.StatusOK, token)
	})

	r.GET("/students", func(c *gin.Context) {
		list, err := students.List(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to list students")
			return
		}
		if list == nil {
			list = []Student{}
		}
		c.JSON(http.StatusOK, list)
	})

	r.GET("/students/:id", func(c *gin.Context) {
		id, ok := studentID(c)
		if !ok {
			return
		}
		s, err := students.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, ErrStudentNotFound) {
				respondError(c, http.StatusNotFound, "NOT_FOUND", "student not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to load student")
			return
		}
		c.JSON(http.StatusOK, s)
	})

	r.POST("/students", func(c *gin.Context) {
		in, ok := bindStudentInput(c)
		if !ok {
			return
		}
		s, err := students.Create(c.Request.Context(), in)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to create student")
			return
		}
		c.JSON(http.StatusCreated, s)
	})

	r.PUT("/students/:id", func(c *gin.Context) {
		id, ok := studentID(c)
		if !ok {
			return
		}
		in, ok := bindStudentInput(c)
		if !ok {
			return
		}
		s, err := students.Update(c.Request.Context(), id, in)
		if err != nil {
			if errors.Is(err, ErrStudentNotFound) {
				respondError(c, http.StatusNotFound, "NOT_FOUND", "student not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to update student")
			return
		}
		c.JSON(http.StatusOK, s)
	})

	r.DELETE("/students/:id", func(c *gin.Context) {
		id, ok := studentID(c)
		if !ok {
			return
		}
		if err := students.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, ErrStudentNotFound) {
				respondError(c, http.StatusNotFound, "NOT_FOUND", "student not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to delete student")
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.POST("/students/import", func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRosterBodySize))
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "failed to read roster")
			return
		}
		roster, err := ParseStudentRoster(body)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}

		created := 0
		for _, in := range roster {
			if _, err := students.Create(c.Request.Context(), in); err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "import aborted after "+strconv.Itoa(created)+" students")
				return
			}
			created++
		}
		c.JSON(http.StatusCreated, gin.H{"created": created})
	})

	r.GET("/crypto/listings", func(c *gin.Context) {
		params := map[string]string{}
		for _, key := range []string{"start", "limit", "convert"} {
			if v := c.Query(key); v != "" {
				params[key] = v
			}
		}
		body, err := market.Listings(c.Request.Context(), params)
		if err != nil {
			respondError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "market data unavailable")
			return
		}
		c.Data(http.StatusOK, "application/json", body)
	})

	return r
}

func studentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid student id")
		return 0, false
	}
	return id, true
}

func bindStudentInput(c *gin.Context) (StudentInput, bool) {
	var in StudentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
		return StudentInput{}, false
	}
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.FirstName == "" || in.LastName == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "first_name and last_name are required")
		return StudentInput{}, false
	}
	return in, true
}
