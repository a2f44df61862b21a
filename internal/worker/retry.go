package worker

import "time"

// RetryPolicy - политика повторов при ошибках хранилища.
type RetryPolicy struct {
	// MaxAttempts - общее число попыток (default: 3).
	MaxAttempts int

	// InitialDelay - задержка перед второй попыткой (default: 500ms).
	InitialDelay time.Duration

	// MaxDelay - потолок задержки (default: 10s).
	MaxDelay time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 500 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 10 * time.Second
	}
	return p
}

// Backoff возвращает задержку после попытки attempt (с 1):
// InitialDelay * 2^(attempt-1), не больше MaxDelay.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.InitialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return min(delay, p.MaxDelay)
}
