package app

import (
	"database/sql"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "SIMAPRO-backend/docs"
	"SIMAPRO-backend/internal/inventory/assets"
	"SIMAPRO-backend/internal/inventory/borrows"
	"SIMAPRO-backend/internal/inventory/dashboard"
	"SIMAPRO-backend/internal/inventory/labels"
	"SIMAPRO-backend/internal/inventory/maintenance"
	"SIMAPRO-backend/internal/platform/access"
	"SIMAPRO-backend/internal/platform/auth"
	"SIMAPRO-backend/internal/platform/config"
	"SIMAPRO-backend/internal/platform/logger"
	"SIMAPRO-backend/internal/platform/notify"
	"SIMAPRO-backend/internal/platform/ratelimit"
)

// API のプレフィックス。NoRoute の SPA フォールバックから除外する
var apiPrefixes = []string{"/portal/", "/auth/", "/dashboard", "/staff/", "/swagger/", "/health-check"}

// Deps は NewRouter に渡す外部資源。Redis は nil 可
type Deps struct {
	Config *config.Config
	DB     *sql.DB
	Redis  *redis.Client
	Log    *slog.Logger
	Public fs.FS
}

// NewRouter はストアからハンドラまでを組み立てる。
// drain はシャットダウン時に呼び、送信中の通知を待つ
func NewRouter(d Deps) (*gin.Engine, func(), error) {
	cfg := d.Config
	ck, err := access.NewEnforcer()
	if err != nil {
		return nil, nil, err
	}
	loc := cfg.Location()
	secret := []byte(cfg.Auth.JWTSecret)

	assetSvc := assets.NewService(assets.NewStore(d.DB))
	borrowSvc := borrows.NewService(borrows.NewStore(d.DB), notifierOf(notify.NewMailer(cfg.SMTP)), loc)
	maintSvc := maintenance.NewService(maintenance.NewStore(d.DB), loc)
	dashSvc := dashboard.NewService(dashboard.NewStore(d.DB), borrowSvc, maintSvc, ck)
	userStore := auth.NewStore(d.DB)
	authSvc := auth.NewService(userStore, secret, cfg.Auth.TokenTTL)

	submitLimit := ratelimit.New(d.Redis, "submit", cfg.Portal.SubmitPerMinute, time.Minute).Middleware()
	lookupLimit := ratelimit.New(d.Redis, "lookup", cfg.Portal.LookupPerMinute, time.Minute).Middleware()

	r := gin.New()
	r.Use(logger.Middleware(d.Log), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowOrigins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Location"},
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	r.GET("/health-check", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 未認証ポータル
	portal := r.Group("/portal")
	assets.NewHandler(assetSvc).RegisterPortalRoutes(portal)
	borrows.NewHandler(borrowSvc, cfg.Portal.AllowEmployeeLookup).RegisterPortalRoutes(portal, submitLimit, lookupLimit)
	maintenance.NewHandler(maintSvc).RegisterPortalRoutes(portal, submitLimit)

	authH := auth.NewHandler(authSvc)
	authH.RegisterPublicRoutes(r.Group("/auth", lookupLimit))

	dash := r.Group("/dashboard", auth.RequireAuth(secret), auth.RequireActive(userStore), auth.RequireVerified(),
		auth.RequireCapability(ck, access.ObjDashboard, access.ActStats))
	dashboard.NewHandler(dashSvc).RegisterRoutes(dash)

	staff := r.Group("/staff", auth.RequireAuth(secret), auth.RequireActive(userStore), auth.RequireVerified())
	borrows.NewHandler(borrowSvc, cfg.Portal.AllowEmployeeLookup).
		RegisterStaffRoutes(staff.Group("", auth.RequireCapability(ck, access.ObjRequests, access.ActProcess)))
	maintenance.NewHandler(maintSvc).
		RegisterStaffRoutes(staff.Group("", auth.RequireCapability(ck, access.ObjMaintenance, access.ActProcess)))
	assetStaff := staff.Group("", auth.RequireCapability(ck, access.ObjAssets, access.ActManage))
	labels.NewHandler(labels.NewService(labels.NewStore(d.DB))).RegisterRoutes(assetStaff)
	assets.NewHandler(assetSvc).RegisterStaffRoutes(assetStaff)
	authH.RegisterAdminRoutes(staff.Group("", auth.RequireCapability(ck, access.ObjUsers, access.ActManage)))

	if d.Public != nil {
		r.NoRoute(spaFallback(d.Public))
	}
	return r, borrowSvc.Wait, nil
}

// notifierOf は未設定（nil）の Mailer を nil インターフェースにする
func notifierOf(m *notify.Mailer) borrows.Notifier {
	if m == nil {
		return nil
	}
	return m
}

func isAPIPath(p string) bool {
	for _, pre := range apiPrefixes {
		if strings.HasPrefix(p, pre) {
			return true
		}
	}
	return false
}

// spaFallback は埋め込んだ静的ファイルを返し、無ければ index.html にフォールバックする
func spaFallback(public fs.FS) gin.HandlerFunc {
	fileFS := http.FS(public)
	return func(c *gin.Context) {
		// API は対象外
		if isAPIPath(c.Request.URL.Path) {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "no such route"}})
			return
		}

		reqPath := strings.TrimPrefix(c.Request.URL.Path, "/")
		if reqPath == "" {
			reqPath = "index.html"
		}

		// 実ファイルがあるならそれを返す（Content-Type を推測、キャッシュ付与）
		if f, err := fileFS.Open(reqPath); err == nil {
			defer f.Close()
			if fi, err := f.Stat(); err == nil && !fi.IsDir() {
				if ct := mime.TypeByExtension(path.Ext(reqPath)); ct != "" {
					c.Header("Content-Type", ct)
				}
				if !strings.HasSuffix(reqPath, "index.html") {
					c.Header("Cache-Control", "public, max-age=86400, immutable")
				}
				http.ServeContent(c.Writer, c.Request, reqPath, fi.ModTime(), f)
				return
			}
		}

		// なければ index.html にフォールバック
		idx, err := fileFS.Open("index.html")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		defer idx.Close()
		fi, err := idx.Stat()
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Header("Content-Type", "text/html; charset=utf-8")
		http.ServeContent(c.Writer, c.Request, "index.html", fi.ModTime(), idx)
	}
}
