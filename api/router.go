// Package api contains all endpoints available
package api

import (
	"errors"
	"fmt"
	"time"

	"kvert/account-api/db"
	"kvert/account-api/internal"
	"kvert/account-api/internal/service"
	"kvert/account-api/internal/storage"
	"kvert/account-api/pkg/middleware"
	"kvert/account-api/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

// NewRouter assembles the full application: database, storage backend,
// mail queue and the route table
func NewRouter() (*gin.Engine, error) {
	makeLogger()

	d := &internal.Deps{
		Argon: security.New(),
		Mail:  service.NewMailQueue(service.NewSMTPMailer()),
	}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	d.DB = db

	var st storage.Storage
	if viper.GetString("storage.type") == "s3" {
		st, err = storage.NewS3()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage, %w", err)
		}
	} else {
		st, err = storage.NewLocal(viper.GetString("storage.avatar_dir"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage, %w", err)
		}
	}
	d.Avatars = service.NewAvatarService(st)

	d.Mail.StartWorkerPool()

	return New(d), nil
}

// New wires the route table onto a fresh engine. Split out from NewRouter
// so tests can inject their own deps
func New(d *internal.Deps) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	auth := middleware.NewAuthMiddleware(d.DB)
	turnstile := middleware.NewTurnstileMiddleware()
	rateLimit := viper.GetInt("security.rate_limit")
	maxUploadSize := viper.GetInt64("upload.max_size")

	m := router.Group("/api", middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
	}))
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", Heartbeat)
	}

	u := m.Group("/users", middleware.BodySizeLimiter(maxUploadSize))
	{
		// POST /api/users/signup	-> Registers a new user
		u.POST("/signup", turnstile, wrap(UserRegister, d))

		// POST /api/users/login 	-> Logs in a user and returns a bearer token
		u.POST("/login", wrap(UserLogin, d))

		// GET /api/users/logout	-> Invalidates the caller's session token
		u.GET("/logout", auth, wrap(UserLogout, d))

		// GET /api/users/current	-> Returns the caller's email and token
		u.GET("/current", auth, wrap(UserCurrent, d))

		// PATCH /api/users/avatars	-> Uploads and normalizes a new avatar
		u.PATCH("/avatars", auth, wrap(UserAvatar, d))

		// GET /api/users/verify/:token	-> Consumes a verification token
		u.GET("/verify/:token", wrap(UserVerify, d))

		// POST /api/users/verify	-> Resends the verification email
		u.POST("/verify", turnstile, wrap(UserVerifyResend, d))
	}

	if viper.GetString("storage.type") != "s3" {
		// GET /api/avatars/:file	-> Serves stored avatars directly
		m.GET("/avatars/:file", cacheFor(60), AvatarServe)
	}

	return router
}

func wrap(h func(*gin.Context, *internal.Deps), d *internal.Deps) gin.HandlerFunc {
	return func(c *gin.Context) { h(c, d) }
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}

// Kept so handlers don't each pull gorm in just for the not-found check
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
