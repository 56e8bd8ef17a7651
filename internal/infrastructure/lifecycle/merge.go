package lifecycle

import (
	"context"
	"sync"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/ports"
)

// Merge fans several sources into one channel. The merged channel closes once every
// source has closed or ctx is done.
func Merge(ctx context.Context, sources ...ports.LifecycleSource) (<-chan domain.LifecycleEvent, error) {
	var inputs []<-chan domain.LifecycleEvent
	for _, src := range sources {
		if src == nil {
			continue
		}
		ch, err := src.Events(ctx)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, ch)
	}

	out := make(chan domain.LifecycleEvent)
	var wg sync.WaitGroup
	for _, in := range inputs {
		wg.Add(1)
		go func(in <-chan domain.LifecycleEvent) {
			defer wg.Done()
			for ev := range in {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}(in)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}
