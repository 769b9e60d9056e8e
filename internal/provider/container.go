package provider

import (
	"github.com/modboard-next/internal/cache"
	"github.com/modboard-next/internal/config"
	"github.com/modboard-next/internal/gateway"
	"github.com/modboard-next/internal/logger"
	"github.com/modboard-next/internal/notify"
	"github.com/modboard-next/internal/queue"
	"github.com/modboard-next/internal/service"
	"github.com/modboard-next/internal/store"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	Store       store.Store
	QueueClient *queue.Client
	Notifier    notify.Notifier
	Gateway     gateway.Client

	// Services
	AuthService  *service.AuthService
	AdminService *service.AdminService
	RuleService  *service.RuleService
}

// NewContainer 基于已打开的存储组装依赖
func NewContainer(cfg *config.Config, st store.Store) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		Store:       st,
		QueueClient: queueClient,
		Notifier:    notify.New(cfg.Gateway),
		Gateway:     gateway.NewHTTPClient(cfg.Gateway),
	}

	c.AuthService = service.NewAuthService(cfg, st)
	c.AdminService = service.NewAdminService(st, c.AuthService)
	c.RuleService = service.NewRuleService(st, queueClient, c.Notifier)

	return c
}
