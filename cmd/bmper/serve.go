package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"bmper/internal/bitmap"
	"bmper/internal/config"
	"bmper/internal/handler"
	"bmper/internal/logging"
	"bmper/web"
)

// ServeCmd starts an HTTP server with the embedded preview client and a
// websocket endpoint streaming rendered frames of one image.
type ServeCmd struct {
	File     string `arg:"" help:"BMP or PCX file to preview"`
	Host     string `help:"Listen host (default: SERVER_HOST or 127.0.0.1)"`
	Port     string `help:"Listen port (default: SERVER_PORT or 8080)"`
	LogLevel string `help:"Log level (debug, info, warn, error)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.LoadWithOverrides(config.LoadOptions{
		Host:     strings.TrimSpace(c.Host),
		Port:     strings.TrimSpace(c.Port),
		LogLevel: strings.TrimSpace(c.LogLevel),
	})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.SetLevelFromString(cfg.Logging.Level)

	img, err := loadPreviewImage(c.File, cfg)
	if err != nil {
		return err
	}

	server, err := createServer(cfg, img)
	if err != nil {
		return err
	}

	logging.Info("serving %s on http://%s (TLS=%t)", c.File, server.Addr, cfg.Security.EnableTLS)

	return startServer(server, cfg)
}

// loadPreviewImage reads the image the preview serves, enforcing the
// configured file size and dimension bounds.
func loadPreviewImage(path string, cfg *config.Config) (*bitmap.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.Size() > cfg.Preview.MaxFileSize {
		return nil, fmt.Errorf("%s is %s, above the %s preview limit", path,
			humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(cfg.Preview.MaxFileSize)))
	}

	img, err := readImage(path)
	if err != nil {
		return nil, err
	}

	if img.Raster.Width > cfg.Preview.MaxWidth || img.Raster.Height > cfg.Preview.MaxHeight {
		return nil, fmt.Errorf("%s is %dx%d px, above the %dx%d preview limit", path,
			img.Raster.Width, img.Raster.Height, cfg.Preview.MaxWidth, cfg.Preview.MaxHeight)
	}

	return img, nil
}

func createServer(cfg *config.Config, img *bitmap.Image) (*http.Server, error) {
	dist, err := web.DistFS()
	if err != nil {
		return nil, fmt.Errorf("embedded client: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServerFS(dist))
	mux.Handle("/preview", handler.NewPreview(cfg, img))

	h := applySecurityMiddleware(mux, cfg)
	h = requestLoggingMiddleware(h)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, nil
}

func applySecurityMiddleware(next http.Handler, cfg *config.Config) http.Handler {
	h := next
	if cfg.Security.EnableRateLimit {
		h = rateLimitMiddleware(h, cfg.Security.RateLimitPerMinute)
	}
	h = corsMiddleware(h, cfg.Security.AllowedOrigins)
	h = securityHeadersMiddleware(h)

	return h
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; style-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss:")

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin, allowedOrigins, r.Host) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func originAllowed(origin string, allowedOrigins []string, host string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range allowedOrigins {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}

	if len(allowedOrigins) == 0 {
		return strings.Contains(origin, host)
	}

	return false
}

func rateLimitMiddleware(next http.Handler, perMinute int) http.Handler {
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Info("%s %s %s %s", r.RemoteAddr, r.Method, r.URL.Path, time.Since(start))
	})
}

func startServer(server *http.Server, cfg *config.Config) error {
	var err error
	if cfg.Security.EnableTLS {
		err = server.ListenAndServeTLS(cfg.Security.TLSCertFile, cfg.Security.TLSKeyFile)
	} else {
		err = server.ListenAndServe()
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}
