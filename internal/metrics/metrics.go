package metrics

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/arl/statsviz"
)

// Path 运行时监控页面地址
const Path = "/debug/statsviz/"

// NewServer 创建运行时监控服务，页面在 Path 下
func NewServer(addr string) (*http.Server, error) {
	mux := http.NewServeMux()
	if err := statsviz.Register(mux); err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}, nil
}

// Serve 后台启动监控服务，addr 为空时不启动
func Serve(addr string) (*http.Server, error) {
	if addr == "" {
		return nil, nil
	}
	srv, err := NewServer(addr)
	if err != nil {
		return nil, err
	}

	go func() {
		slog.Info("启动监控", "url", "http://"+addr+Path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	return srv, nil
}
