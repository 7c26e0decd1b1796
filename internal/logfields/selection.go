package logfields

import "go.uber.org/zap"

func Role(val string) zap.Field {
	return zap.String("selection.role", val)
}

func Candidate(val string) zap.Field {
	return zap.String("selection.candidate", val)
}

func CounterKey(val string) zap.Field {
	return zap.String("selection.counter_key", val)
}

func CacheKey(val string) zap.Field {
	return zap.String("kv.cache_key", val)
}
