package taskpool

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/corwin-dev/taskpool/metrics"
)

// defaultConfig centralizes default values for Config. It is applied by both
// New (when cfg is nil) and NewOptions (the options builder's starting point).
func defaultConfig() Config {
	processes := runtime.NumCPU()
	if processes < 1 {
		processes = 1
	}

	return Config{
		Processes:            uint(processes),
		MaxTasksPerChild:     0, // unlimited
		SubmissionBufferSize: 16,
		InputBufferSize:      0, // unbuffered: a put blocks until a worker is ready
		OutputBufferSize:     1024,
		SupervisorInterval:   100 * time.Millisecond,
		ErrorTagging:         false,
		Logger:               zerolog.Nop(),
		Metrics:              metrics.NewNoopProvider(),
	}
}
