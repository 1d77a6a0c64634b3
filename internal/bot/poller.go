package bot

import (
	"context"
	"log"
	"time"

	"github.com/dishflow/shiftbot/internal/telegram"
)

// UpdateSource — срез клиента Telegram для long polling.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]telegram.Update, error)
}

// Poller тянет обновления и раздаёт их роутеру. Каждое обновление
// обрабатывается в своей горутине: события разных сотрудников идут
// параллельно, события одного — под замком его сессии.
type Poller struct {
	source UpdateSource
	router *Router
}

func NewPoller(source UpdateSource, router *Router) *Poller {
	return &Poller{source: source, router: router}
}

func (p *Poller) Run(ctx context.Context) {
	log.Println("✅ Бот запущен, ждём обновления")
	var offset int64
	for {
		if ctx.Err() != nil {
			return
		}
		updates, err := p.source.GetUpdates(ctx, offset, 50)
		if err != nil {
			log.Printf("Ошибка getUpdates: %v", err)
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		for _, upd := range updates {
			offset = upd.UpdateID + 1
			go p.router.HandleUpdate(ctx, upd)
		}
	}
}
