package progress

import "go.uber.org/zap"

// Log reports progress as log lines. It suits non-interactive runs.
type Log struct {
	Total  int
	Logger *zap.Logger
}

// Run logs every event until events is closed
func (l *Log) Run(events <-chan Event) {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}

	done := 0
	for ev := range events {
		switch ev.Kind {
		case CodeStarted:
			log.Info("Redeeming code", zap.String("code", ev.Code), zap.Int("position", done+1), zap.Int("total", l.Total))
		case Increment:
			done++
		case Finished:
			log.Info("Redemption finished", zap.Int("processed", done), zap.Int("total", l.Total))
		}
	}
}
