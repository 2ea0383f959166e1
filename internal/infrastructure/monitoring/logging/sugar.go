package logging

import "fmt"

// KeyValueLogger is the loosely-typed logging shape some packages accept
// to stay decoupled from the Field API.
type KeyValueLogger interface {
	Debug(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// NewKeyValueLogger adapts a Logger to the key/value calling convention.
// Pairs convert to Any fields; a trailing odd value is logged under
// "extra".
func NewKeyValueLogger(l Logger) KeyValueLogger {
	return kvLogger{l: l}
}

type kvLogger struct {
	l Logger
}

func (k kvLogger) Debug(msg string, keysAndValues ...interface{}) {
	k.l.Debug(msg, kvFields(keysAndValues)...)
}

func (k kvLogger) Error(msg string, keysAndValues ...interface{}) {
	k.l.Error(msg, kvFields(keysAndValues)...)
}

func kvFields(kv []interface{}) []Field {
	fields := make([]Field, 0, (len(kv)+1)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, Any(key, kv[i+1]))
	}
	if len(kv)%2 == 1 {
		fields = append(fields, Any("extra", kv[len(kv)-1]))
	}
	return fields
}
