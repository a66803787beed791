package sqsqueue

import "github.com/rs/zerolog"

var noopLogger = zerolog.Nop()
