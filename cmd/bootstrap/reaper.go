package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"aurelia-commerce/internal/pkg/config"
	"aurelia-commerce/internal/usecase/commands"

	"go.uber.org/fx"
)

// ReaperModule runs the guest-cart reaper on a fixed interval for the
// lifetime of the process.
var ReaperModule = fx.Module("reaper",
	fx.Invoke(startCartReaper),
)

func startCartReaper(lc fx.Lifecycle, maintenance commands.MaintenanceCommands, cfg config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(cfg.Cart.ReapInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						reaped, err := maintenance.ReapExpiredCarts(ctx)
						if err != nil {
							logger.Error("cart reaper run failed", "error", err)
							continue
						}
						if reaped > 0 {
							logger.Info("reaped expired guest carts", "count", reaped)
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
