package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	logger "github.com/Gopher0727/GroupGuard/middleware/log"

	"github.com/Gopher0727/GroupGuard/internal/models"
	"github.com/Gopher0727/GroupGuard/internal/repositories"
	"github.com/Gopher0727/GroupGuard/internal/utils"
	"github.com/Gopher0727/GroupGuard/pkg/mq"
	"github.com/Gopher0727/GroupGuard/utils/ratelimit"
)

// Notification 告警通知事件，发布到通知主题由外部投递方消费
type Notification struct {
	OwnerID    string           `json:"owner_id"`
	GroupID    string           `json:"group_id"`
	GroupName  string           `json:"group_name"`
	AlertType  string           `json:"alert_type"`
	Message    string           `json:"message"`
	RiskLevel  models.RiskLevel `json:"risk_level"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// Notifier 通知发布接口，实现方不关心投递渠道
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// KafkaNotifier 把通知事件发布到 Kafka 通知主题
type KafkaNotifier struct {
	producer *mq.KafkaProducer
}

func NewKafkaNotifier(producer *mq.KafkaProducer) *KafkaNotifier {
	return &KafkaNotifier{producer: producer}
}

func (n *KafkaNotifier) Notify(_ context.Context, notification Notification) error {
	// 以群组ID为 key，同一群组的通知保持分区有序
	return n.producer.SendMessage(notification.GroupID, notification)
}

// Dispatcher 在告警事务提交后异步派发通知
// 属主的 alert_enabled 只约束通知，不影响告警行本身；
// 每个群组的通知经过限流，通知失败只记日志
type Dispatcher struct {
	notifier Notifier
	settings *repositories.SettingRepository
	limiter  ratelimit.Limiter
	pool     *utils.WorkerPool
	log      *logger.Logger

	limit  int
	window time.Duration
}

func NewDispatcher(
	notifier Notifier,
	settings *repositories.SettingRepository,
	limiter ratelimit.Limiter,
	pool *utils.WorkerPool,
	log *logger.Logger,
	limit int,
	window time.Duration,
) *Dispatcher {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Dispatcher{
		notifier: notifier,
		settings: settings,
		limiter:  limiter,
		pool:     pool,
		log:      log,
		limit:    limit,
		window:   window,
	}
}

// Dispatch 异步派发，立即返回，绝不阻塞调用方的告警路径
func (d *Dispatcher) Dispatch(n Notification) {
	if d == nil || d.notifier == nil {
		return
	}
	submitted := d.pool.Submit(func() {
		d.deliver(n)
	})
	if !submitted {
		d.log.Warn("通知队列已满，丢弃通知",
			zap.String("group_id", n.GroupID),
			zap.String("alert_type", n.AlertType),
		)
	}
}

func (d *Dispatcher) deliver(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	owners, err := d.enabledOwners()
	if err != nil {
		d.log.Error("读取属主配置失败", zap.Error(err))
		return
	}
	if len(owners) == 0 {
		return
	}

	if d.limiter != nil {
		allowed, err := d.limiter.Allow(ctx, "notify:group:"+n.GroupID, d.limit, d.window)
		if err != nil {
			d.log.Error("通知限流检查失败", zap.Error(err))
			return
		}
		if !allowed {
			d.log.Warn("群组通知被限流",
				zap.String("group_id", n.GroupID),
				zap.String("alert_type", n.AlertType),
			)
			return
		}
	}

	for _, owner := range owners {
		n.OwnerID = owner
		if err := d.notifier.Notify(ctx, n); err != nil {
			d.log.Error("发布通知失败",
				zap.String("group_id", n.GroupID),
				zap.String("owner_id", owner),
				zap.Error(err),
			)
		}
	}
}

func (d *Dispatcher) enabledOwners() ([]string, error) {
	settings, err := d.settings.List()
	if err != nil {
		return nil, err
	}
	var owners []string
	for _, s := range settings {
		if s.AlertEnabled {
			owners = append(owners, s.OwnerID)
		}
	}
	return owners, nil
}
